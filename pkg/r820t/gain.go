package r820t

import (
	"fmt"

	"github.com/herlein/gortl/pkg/registers"
)

// GainMode selects how the LNA, mixer and VGA gains are controlled.
// Implementations are AutoGain and ManualGain.
type GainMode interface {
	fmt.Stringer
	gainMode()
}

// AutoGain lets the LNA and mixer AGC loops run with a fixed VGA gain
type AutoGain struct{}

// ManualGain requests a fixed total gain in tenths of a dB
type ManualGain struct {
	Level int
}

func (AutoGain) gainMode() {}
func (ManualGain) gainMode() {}

func (AutoGain) String() string { return "auto" }

func (g ManualGain) String() string {
	return fmt.Sprintf("manual(%d.%d dB)", g.Level/10, abs(g.Level%10))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SetGainMode applies a gain mode. Manual gain is not supported yet and
// fails without touching the chip.
func (t *Tuner) SetGainMode(mode GainMode) error {
	switch m := mode.(type) {
	case AutoGain:
		// LNA auto
		if err := t.shadow.MaskedWrite(registers.RegLNA, 0x00, 0x10); err != nil {
			return fmt.Errorf("failed to set LNA gain mode: %w", err)
		}
		// Mixer auto
		if err := t.shadow.MaskedWrite(registers.RegMixer, 0x10, 0x10); err != nil {
			return fmt.Errorf("failed to set mixer gain mode: %w", err)
		}
		// Fixed VGA gain, 26.5 dB
		if err := t.shadow.MaskedWrite(registers.RegVGA, 0x0b, 0x9f); err != nil {
			return fmt.Errorf("failed to set VGA gain: %w", err)
		}
		t.gain = m
		return nil
	case ManualGain:
		return fmt.Errorf("%w: %s", ErrNotImplemented, m)
	default:
		return fmt.Errorf("%w: gain mode %v", ErrNotImplemented, mode)
	}
}

// ParseGainMode converts "auto" or a level in tenths of a dB to a GainMode
func ParseGainMode(mode string, level int) (GainMode, error) {
	switch mode {
	case "", "auto":
		return AutoGain{}, nil
	case "manual":
		return ManualGain{Level: level}, nil
	}
	return nil, fmt.Errorf("unknown gain mode %q", mode)
}
