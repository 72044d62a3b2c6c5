package r820t

import (
	"fmt"
	"strings"

	"github.com/herlein/gortl/pkg/registers"
)

// CrystalCapMode selects which crystal load capacitance column of the
// frequency range table is applied
type CrystalCapMode uint8

const (
	XtalLowCap30p CrystalCapMode = iota
	XtalLowCap20p
	XtalLowCap10p
	XtalLowCap0p
	XtalHighCap0p
)

const xtalDriveLow = 0x08

var capModeNames = map[CrystalCapMode]string{
	XtalLowCap30p: "low-30p",
	XtalLowCap20p: "low-20p",
	XtalLowCap10p: "low-10p",
	XtalLowCap0p:  "low-0p",
	XtalHighCap0p: "high-0p",
}

// String returns the mode name as used in config files
func (m CrystalCapMode) String() string {
	if name, ok := capModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("CrystalCapMode(%d)", uint8(m))
}

// ParseCapMode converts a mode name back to a CrystalCapMode
func ParseCapMode(name string) (CrystalCapMode, error) {
	for mode, n := range capModeNames {
		if strings.EqualFold(n, name) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCapMode, name)
}

// capDrive returns the R16 cap/drive bits for this mode from a range row.
// The 30p and 20p modes share a column in the calibration table.
func (m CrystalCapMode) capDrive(r FrequencyRange) (uint8, error) {
	switch m {
	case XtalLowCap30p, XtalLowCap20p:
		return r.XtalCap20p | xtalDriveLow, nil
	case XtalLowCap10p:
		return r.XtalCap10p | xtalDriveLow, nil
	case XtalLowCap0p:
		return r.XtalCap0p | xtalDriveLow, nil
	case XtalHighCap0p:
		return r.XtalCap0p, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidCapMode, uint8(m))
	}
}

// route programs the RF front end for freqHz: open drain, RF/poly mux,
// tracking filter band and crystal cap, then clears the IF filter state
// left from the previous tune.
func (t *Tuner) route(freqHz uint32) error {
	r := SelectRange(freqHz)

	capDrive, err := t.capMode.capDrive(r)
	if err != nil {
		return err
	}

	if err := t.shadow.MaskedWrite(registers.RegOpenDrain, r.OpenDrain, 0x08); err != nil {
		return fmt.Errorf("failed to set open drain: %w", err)
	}
	if err := t.shadow.MaskedWrite(registers.RegRFMux, r.RFMuxPoly, 0xc3); err != nil {
		return fmt.Errorf("failed to set RF mux: %w", err)
	}
	if err := t.shadow.BulkWrite(registers.RegTFBand, []byte{r.TFBand}); err != nil {
		return fmt.Errorf("failed to set tracking filter band: %w", err)
	}
	if err := t.shadow.MaskedWrite(registers.RegPLLDivider, capDrive, 0x0b); err != nil {
		return fmt.Errorf("failed to set xtal cap: %w", err)
	}
	if err := t.shadow.MaskedWrite(registers.RegMixerBuffer, 0x00, 0x3f); err != nil {
		return fmt.Errorf("failed to reset mixer buffer: %w", err)
	}
	if err := t.shadow.MaskedWrite(registers.RegIFFilterGain, 0x00, 0x3f); err != nil {
		return fmt.Errorf("failed to reset IF filter: %w", err)
	}

	t.logger.Debug("routed RF front end", "freq", freqHz, "band_mhz", r.ThresholdMHz, "cap", t.capMode)
	return nil
}
