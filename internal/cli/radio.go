package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/gousb"

	"github.com/herlein/gortl/pkg/config"
	"github.com/herlein/gortl/pkg/profiles"
	"github.com/herlein/gortl/pkg/r820t"
	"github.com/herlein/gortl/pkg/rtl2832"
)

// Radio is an opened dongle and its initialized R820T. Every tuner call
// goes through the demodulator's I2C repeater.
type Radio struct {
	Device *rtl2832.Device
	Tuner  *r820t.Tuner
}

// Open selects a dongle, brings up the baseband, checks for an R820T and
// initializes it. rtlXtalHz trims the RTL2832U crystal; 0 keeps 28.8 MHz.
func Open(usb *gousb.Context, selector rtl2832.DeviceSelector, rtlXtalHz uint32, logger *log.Logger, opts ...r820t.Option) (*Radio, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	device, err := rtl2832.SelectDevice(usb, selector)
	if err != nil {
		return nil, err
	}

	if rtlXtalHz != 0 {
		device.XtalHz = rtlXtalHz
	}

	if err := device.InitBaseband(); err != nil {
		device.Close()
		return nil, err
	}

	tuner := r820t.New(device.I2CBus(), device, append(opts, r820t.WithLogger(logger))...)
	err = device.WithRepeater(func() error {
		found, err := r820t.Probe(device.I2CBus())
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no %s on %s", r820t.Info.Name, device)
		}
		return tuner.Initialize()
	})
	if err != nil {
		device.Close()
		return nil, err
	}

	logger.Debug("opened", "device", device.String(), "bus", device.Bus, "addr", device.Address)
	return &Radio{Device: device, Tuner: tuner}, nil
}

// SetFrequency tunes through the repeater
func (r *Radio) SetFrequency(freqHz uint32) error {
	return r.Device.WithRepeater(func() error {
		return r.Tuner.SetFrequency(freqHz)
	})
}

// SetBandwidth selects the IF filter and moves the demodulator to the new IF
func (r *Radio) SetBandwidth(bwHz, sampleRate uint32) (uint32, error) {
	var ifHz uint32
	err := r.Device.WithRepeater(func() error {
		var err error
		ifHz, err = r.Tuner.SetBandwidth(bwHz, sampleRate)
		return err
	})
	if err != nil {
		return ifHz, err
	}
	return ifHz, r.Device.SetIFFreq(ifHz)
}

// PLL returns the settings of the last tune
func (r *Radio) PLL() r820t.PLLSettings {
	return r.Tuner.PLL()
}

// Apply applies a tuner configuration and moves the demodulator to the
// resulting IF
func (r *Radio) Apply(c config.TunerConfig) error {
	err := r.Device.WithRepeater(func() error {
		return config.ApplyToTuner(r.Tuner, c)
	})
	if ifErr := r.Device.SetIFFreq(r.Tuner.IFFreq()); ifErr != nil && err == nil {
		err = ifErr
	}
	return err
}

// ApplyProfile applies a tuning profile
func (r *Radio) ApplyProfile(p *profiles.Profile) error {
	err := r.Device.WithRepeater(func() error {
		return profiles.Apply(r.Tuner, p)
	})
	if ifErr := r.Device.SetIFFreq(r.Tuner.IFFreq()); ifErr != nil && err == nil {
		err = ifErr
	}
	return err
}

// Snapshot captures the tuner state with the dongle's identity
func (r *Radio) Snapshot() *config.Snapshot {
	snap := config.DumpFromTuner(r.Tuner)
	snap.Serial = r.Device.Serial
	snap.Manufacturer = r.Device.Manufacturer
	snap.Product = r.Device.Product
	return snap
}

// Close releases the dongle
func (r *Radio) Close() error {
	return r.Device.Close()
}
