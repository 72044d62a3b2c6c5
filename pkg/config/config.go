package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/herlein/gortl/pkg/r820t"
	"github.com/herlein/gortl/pkg/registers"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid tuner configuration")

// TunerConfig holds the settings applied to a tuner at startup
type TunerConfig struct {
	CrystalHz    uint32 `json:"crystal_hz" yaml:"crystal_hz"`
	CapMode      string `json:"cap_mode" yaml:"cap_mode"`
	Gain         string `json:"gain" yaml:"gain"`
	GainLevel    int    `json:"gain_level,omitempty" yaml:"gain_level,omitempty"`
	FrequencyHz  uint32 `json:"frequency_hz" yaml:"frequency_hz"`
	BandwidthHz  uint32 `json:"bandwidth_hz,omitempty" yaml:"bandwidth_hz,omitempty"`
	SampleRateHz uint32 `json:"sample_rate_hz" yaml:"sample_rate_hz"`
}

// Default returns the configuration used when no file is given
func Default() TunerConfig {
	return TunerConfig{
		CrystalHz:    r820t.DefaultCrystalHz,
		CapMode:      r820t.XtalLowCap30p.String(),
		Gain:         r820t.AutoGain{}.String(),
		FrequencyHz:  100000000,
		SampleRateHz: 2048000,
	}
}

// Validate checks that every field can be applied
func (c TunerConfig) Validate() error {
	if c.CrystalHz == 0 {
		return fmt.Errorf("%w: crystal frequency is zero", ErrInvalidConfig)
	}
	if _, err := r820t.ParseCapMode(c.CapMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := r820t.ParseGainMode(c.Gain, c.GainLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.BandwidthHz == 0 && c.SampleRateHz == 0 {
		return fmt.Errorf("%w: need a bandwidth or a sample rate", ErrInvalidConfig)
	}
	return nil
}

// Options returns the construction options for a tuner with this config
func (c TunerConfig) Options() ([]r820t.Option, error) {
	capMode, err := r820t.ParseCapMode(c.CapMode)
	if err != nil {
		return nil, err
	}
	return []r820t.Option{r820t.WithCrystal(c.CrystalHz), r820t.WithCapMode(capMode)}, nil
}

// ApplyToTuner sets gain, bandwidth and frequency on an initialized tuner.
// A zero frequency leaves the tuner where it is.
func ApplyToTuner(tuner *r820t.Tuner, c TunerConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}

	capMode, _ := r820t.ParseCapMode(c.CapMode)
	tuner.SetCapMode(capMode)

	gain, _ := r820t.ParseGainMode(c.Gain, c.GainLevel)
	if err := tuner.SetGainMode(gain); err != nil {
		return fmt.Errorf("failed to set gain: %w", err)
	}

	if _, err := tuner.SetBandwidth(c.BandwidthHz, c.SampleRateHz); err != nil {
		return fmt.Errorf("failed to set bandwidth: %w", err)
	}

	if c.FrequencyHz == 0 {
		return nil
	}
	if err := tuner.SetFrequency(c.FrequencyHz); err != nil {
		return fmt.Errorf("failed to tune to %d Hz: %w", c.FrequencyHz, err)
	}
	return nil
}

// RegisterMap maps register addresses such as "0x05" to their values
type RegisterMap map[string]uint8

// NewRegisterMap builds a map from a shadow snapshot
func NewRegisterMap(values [registers.ShadowCount]uint8) RegisterMap {
	m := make(RegisterMap, len(values))
	for i, v := range values {
		m[fmt.Sprintf("0x%02x", registers.ShadowStart+i)] = v
	}
	return m
}

// Values converts the map back to a register block
func (m RegisterMap) Values() ([registers.ShadowCount]uint8, error) {
	var out [registers.ShadowCount]uint8
	for key, v := range m {
		reg, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(key), "0x"), 16, 8)
		if err != nil {
			return out, fmt.Errorf("bad register key %q: %w", key, err)
		}
		if !registers.InWindow(uint8(reg)) {
			return out, fmt.Errorf("%w: %s", registers.ErrOutOfRange, key)
		}
		out[int(reg)-registers.ShadowStart] = v
	}
	return out, nil
}

// Snapshot is the state of a tuner at one point in time
type Snapshot struct {
	Serial       string            `json:"serial,omitempty" yaml:"serial,omitempty"`
	Manufacturer string            `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Product      string            `json:"product,omitempty" yaml:"product,omitempty"`
	Tuner        r820t.TunerInfo   `json:"tuner" yaml:"tuner"`
	Timestamp    time.Time         `json:"timestamp" yaml:"timestamp"`
	FrequencyHz  uint32            `json:"frequency_hz" yaml:"frequency_hz"`
	IFHz         uint32            `json:"if_hz" yaml:"if_hz"`
	Locked       bool              `json:"locked" yaml:"locked"`
	CapMode      string            `json:"cap_mode" yaml:"cap_mode"`
	Gain         string            `json:"gain,omitempty" yaml:"gain,omitempty"`
	PLL          r820t.PLLSettings `json:"pll" yaml:"pll"`
	Filter       r820t.FilterPlan  `json:"filter" yaml:"filter"`
	Registers    RegisterMap       `json:"registers" yaml:"registers"`
}

// DumpFromTuner captures the tuner state without touching the chip
func DumpFromTuner(tuner *r820t.Tuner) *Snapshot {
	snap := &Snapshot{
		Tuner:       tuner.Info(),
		Timestamp:   time.Now(),
		FrequencyHz: tuner.Frequency(),
		IFHz:        tuner.IFFreq(),
		Locked:      tuner.Locked(),
		CapMode:     tuner.CapMode().String(),
		PLL:         tuner.PLL(),
		Filter:      tuner.Filter(),
		Registers:   NewRegisterMap(tuner.Registers()),
	}
	if g := tuner.GainMode(); g != nil {
		snap.Gain = g.String()
	}
	return snap
}

// LOHz returns the local oscillator frequency of the snapshot
func (s *Snapshot) LOHz() uint64 {
	return uint64(s.FrequencyHz) + uint64(s.IFHz)
}
