// Package r820t drives the Rafael Micro R820T tuner found behind the
// RTL2832U demodulator of most RTL-SDR receivers. It translates a centre
// frequency and channel bandwidth into the register programming the tuner
// needs and applies it over the demodulator's I2C bridge.
package r820t

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/i2c"

	"github.com/herlein/gortl/pkg/registers"
)

// Defaults
const (
	DefaultCrystalHz = 28800000
	DefaultIFHz      = ifFreq6MHz
)

// Demodulator is the part of the RTL2832U the tuner configures during
// initialization
type Demodulator interface {
	DemodWriteReg(page uint8, addr uint16, val uint16, length int) error
	SetIFFreq(hz uint32) error
}

// Tuner is one R820T. It owns the register shadow and the tuning state;
// the bus and demodulator are borrowed and never closed. A Tuner is not
// safe for concurrent use.
type Tuner struct {
	dev    *i2c.Dev
	demod  Demodulator
	shadow *registers.Shadow
	logger *log.Logger

	freq    uint32
	ifFreq  uint32
	capMode CrystalCapMode
	xtal    uint32
	locked  bool
	gain    GainMode
	pll     PLLSettings
	filter  FilterPlan
}

// Option configures a Tuner
type Option func(*Tuner)

// WithCrystal sets the tuner reference crystal frequency
func WithCrystal(hz uint32) Option {
	return func(t *Tuner) {
		if hz != 0 {
			t.xtal = hz
		}
	}
}

// WithCapMode sets the crystal load capacitance mode
func WithCapMode(mode CrystalCapMode) Option {
	return func(t *Tuner) {
		t.capMode = mode
	}
}

// WithLogger replaces the default logger
func WithLogger(logger *log.Logger) Option {
	return func(t *Tuner) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func defaultLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: Info.ID,
		Level:  log.WarnLevel,
	})
}

// New creates a tuner talking to the chip at Info.I2CAddr on bus. Call
// Initialize before tuning.
func New(bus i2c.Bus, demod Demodulator, opts ...Option) *Tuner {
	t := &Tuner{
		dev:     &i2c.Dev{Bus: bus, Addr: Info.I2CAddr},
		demod:   demod,
		ifFreq:  DefaultIFHz,
		capMode: XtalLowCap30p,
		xtal:    DefaultCrystalHz,
		logger:  defaultLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.shadow = registers.NewShadow(t.dev)
	return t
}

// Initialize puts the demodulator in low-IF mode for this tuner and loads
// the power-on register block
func (t *Tuner) Initialize() error {
	// disable Zero-IF mode
	if err := t.demod.DemodWriteReg(1, 0xb1, 0x1a, 1); err != nil {
		return fmt.Errorf("failed to disable zero-IF: %w", err)
	}
	// only enable In-phase ADC input
	if err := t.demod.DemodWriteReg(0, 0x08, 0x4d, 1); err != nil {
		return fmt.Errorf("failed to select I input: %w", err)
	}
	// 3.57 MHz IF for the DVB-T 6 MHz mode, 4.57 MHz for 7 and 8 MHz
	if err := t.demod.SetIFFreq(DefaultIFHz); err != nil {
		return fmt.Errorf("failed to set demod IF: %w", err)
	}
	// enable spectrum inversion
	if err := t.demod.DemodWriteReg(1, 0x15, 0x01, 1); err != nil {
		return fmt.Errorf("failed to enable spectrum inversion: %w", err)
	}

	if err := t.shadow.BulkWrite(registers.ShadowStart, registers.InitBlock[:]); err != nil {
		return fmt.Errorf("failed to load init registers: %w", err)
	}
	t.ifFreq = DefaultIFHz

	t.logger.Debug("initialized", "addr", fmt.Sprintf("0x%02X", Info.I2CAddr), "xtal", t.xtal)
	return nil
}

// SetFrequency tunes to freqHz. The LO runs at freqHz plus the current IF.
// On ErrPLLNotLocked the programming stays in place and the caller may retune.
func (t *Tuner) SetFrequency(freqHz uint32) error {
	loHz := freqHz + t.ifFreq
	if loHz < freqHz {
		return fmt.Errorf("%w: %d Hz + IF %d Hz overflows", ErrFrequencyOutOfRange, freqHz, t.ifFreq)
	}

	if err := t.route(loHz); err != nil {
		return err
	}
	if _, err := t.setPLL(loHz); err != nil {
		return err
	}
	t.freq = freqHz
	return nil
}

// Info returns the tuner descriptor
func (t *Tuner) Info() TunerInfo {
	return Info
}

// IFFreq returns the current intermediate frequency in Hz
func (t *Tuner) IFFreq() uint32 {
	return t.ifFreq
}

// Frequency returns the last frequency successfully tuned
func (t *Tuner) Frequency() uint32 {
	return t.freq
}

// Locked reports whether the last tune locked the PLL
func (t *Tuner) Locked() bool {
	return t.locked
}

// CrystalHz returns the reference crystal frequency
func (t *Tuner) CrystalHz() uint32 {
	return t.xtal
}

// CapMode returns the crystal cap mode
func (t *Tuner) CapMode() CrystalCapMode {
	return t.capMode
}

// SetCapMode changes the crystal cap mode used by the next tune
func (t *Tuner) SetCapMode(mode CrystalCapMode) {
	t.capMode = mode
}

// GainMode returns the last gain mode applied, nil before any
func (t *Tuner) GainMode() GainMode {
	return t.gain
}

// PLL returns the settings of the last synthesis attempt
func (t *Tuner) PLL() PLLSettings {
	return t.pll
}

// Filter returns the last IF filter plan applied
func (t *Tuner) Filter() FilterPlan {
	return t.filter
}

// Registers returns the shadow of registers 0x05 through 0x1f
func (t *Tuner) Registers() [registers.ShadowCount]uint8 {
	return t.shadow.Snapshot()
}
