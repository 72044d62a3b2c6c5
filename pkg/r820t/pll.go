package r820t

import (
	"fmt"

	"github.com/herlein/gortl/pkg/registers"
)

// PLL constraints
const (
	vcoMinKHz    = 1770000
	vcoMaxKHz    = 2 * vcoMinKHz
	vcoPowerRef  = 2
	maxNint      = 128/vcoPowerRef - 1
	minNint      = 13
	maxMixDiv    = 64
	maxSDMSteps  = 16
	lockAttempts = 2
)

// PLLState is the progress of one synthesis attempt
type PLLState uint8

const (
	PLLUnprogrammed PLLState = iota
	PLLSearching
	PLLProgrammed
	PLLLocked
	PLLUnlocked
	PLLFailed
)

func (s PLLState) String() string {
	switch s {
	case PLLUnprogrammed:
		return "unprogrammed"
	case PLLSearching:
		return "searching"
	case PLLProgrammed:
		return "programmed"
	case PLLLocked:
		return "locked"
	case PLLUnlocked:
		return "unlocked"
	case PLLFailed:
		return "failed"
	}
	return fmt.Sprintf("PLLState(%d)", uint8(s))
}

// PLLSettings records what the synthesizer programmed for one LO frequency
type PLLSettings struct {
	LOHz      uint32   `json:"lo_hz" yaml:"lo_hz"`
	CrystalHz uint32   `json:"crystal_hz" yaml:"crystal_hz"`
	MixDiv    uint32   `json:"mix_div" yaml:"mix_div"`
	DivNum    uint8    `json:"div_num" yaml:"div_num"`
	FineTune  uint8    `json:"vco_fine_tune" yaml:"vco_fine_tune"`
	VCOHz     uint64   `json:"vco_hz" yaml:"vco_hz"`
	N         uint8    `json:"nint" yaml:"nint"`
	SDM       uint16   `json:"sdm" yaml:"sdm"`
	Attempts  int      `json:"lock_attempts" yaml:"lock_attempts"`
	State     PLLState `json:"state" yaml:"state"`
}

// Locked reports whether the attempt ended with the PLL locked
func (s PLLSettings) Locked() bool {
	return s.State == PLLLocked
}

// ReconstructHz converts the programmed N and SDM word back to an LO frequency.
// The SDM search works in whole kHz and stops once about 1 kHz of VCO offset
// is left, so the VCO lands within 3 kHz of LOHz*MixDiv. At MixDiv 2 that is
// up to 1.5 kHz of LO error; larger dividers scale it down.
func (s PLLSettings) ReconstructHz() uint64 {
	if s.MixDiv == 0 {
		return 0
	}
	ref := 2 * uint64(s.CrystalHz)
	vco := uint64(s.N)*ref + uint64(s.SDM)*ref/65536
	return vco / uint64(s.MixDiv)
}

// mixerDivider finds the smallest post-VCO divider that puts freqKHz inside
// the VCO window and the number of halvings it takes to get back to 2.
func mixerDivider(freqKHz uint32) (uint32, uint8, error) {
	for mixDiv := uint32(2); mixDiv <= maxMixDiv; mixDiv <<= 1 {
		vco := uint64(freqKHz) * uint64(mixDiv)
		if vco < vcoMinKHz || vco >= vcoMaxKHz {
			continue
		}
		var divNum uint8
		for d := mixDiv; d > 2; d >>= 1 {
			divNum++
		}
		return mixDiv, divNum, nil
	}
	return 0, 0, fmt.Errorf("%w: no mixer divider for %d kHz", ErrFrequencyOutOfRange, freqKHz)
}

// adjustDivNum nudges the divider code toward the VCO's varactor centre
func adjustDivNum(divNum, fineTune uint8) uint8 {
	switch {
	case fineTune > vcoPowerRef && divNum > 0:
		return divNum - 1
	case fineTune < vcoPowerRef && divNum < 7:
		return divNum + 1
	}
	return divNum
}

// sdmWord computes the 16-bit fractional word for vcoFraKHz by successive
// approximation against halving fractions of the comparison frequency.
func sdmWord(vcoFraKHz, refKHz uint32) (uint16, int) {
	var sdm uint32
	nSdm := uint32(2)
	steps := 0
	for steps < maxSDMSteps && vcoFraKHz > 1 {
		steps++
		step := 2 * refKHz / nSdm
		if vcoFraKHz > step {
			sdm += 32768 / (nSdm / 2)
			vcoFraKHz -= step
			if nSdm >= 0x8000 {
				break
			}
		}
		nSdm <<= 1
	}
	return uint16(sdm), steps
}

// setPLL programs the synthesizer for loHz and polls for lock. The returned
// settings are kept on the tuner whether or not the PLL locked; an attempt
// that stops before the lock poll ends in PLLFailed with whatever it had
// already written.
func (t *Tuner) setPLL(loHz uint32) (settings PLLSettings, err error) {
	settings = PLLSettings{LOHz: loHz, CrystalHz: t.xtal, State: PLLSearching}
	t.locked = false
	defer func() {
		if err != nil && (settings.State == PLLSearching || settings.State == PLLProgrammed) {
			settings.State = PLLFailed
		}
		t.pll = settings
	}()

	freqKHz := (loHz + 500) / 1000
	refKHz := (t.xtal + 500) / 1000

	// refdiv2 off
	if err := t.shadow.MaskedWrite(registers.RegPLLDivider, 0x00, 0x10); err != nil {
		return settings, err
	}
	// PLL auto-tune 128 kHz for acquisition
	if err := t.shadow.MaskedWrite(registers.RegRFMux, 0x00, 0x0c); err != nil {
		return settings, err
	}
	// VCO current 100
	if err := t.shadow.MaskedWrite(registers.RegVCOCurrent, 0x80, 0xe0); err != nil {
		return settings, err
	}

	mixDiv, divNum, err := mixerDivider(freqKHz)
	if err != nil {
		return settings, err
	}
	settings.MixDiv = mixDiv

	status := make([]byte, 5)
	if err := t.shadow.Read(registers.RegStatus, status); err != nil {
		return settings, err
	}
	settings.FineTune = (status[registers.StatusFineTuneByte] & registers.StatusFineTuneMask) >> 4
	settings.DivNum = adjustDivNum(divNum, settings.FineTune)
	if err := t.shadow.MaskedWrite(registers.RegPLLDivider, settings.DivNum<<5, 0xe0); err != nil {
		return settings, err
	}

	vco := uint64(loHz) * uint64(mixDiv)
	settings.VCOHz = vco
	nint := vco / (2 * uint64(t.xtal))
	if nint > maxNint || nint < minNint {
		return settings, fmt.Errorf("%w: no valid PLL values for %d Hz (N=%d)", ErrFrequencyOutOfRange, loHz, nint)
	}
	settings.N = uint8(nint)

	ni := (settings.N - minNint) / 4
	si := settings.N - 4*ni - minNint
	if err := t.shadow.BulkWrite(registers.RegPLLNi, []byte{ni + si<<6}); err != nil {
		return settings, err
	}

	vcoFraKHz := uint32((vco - 2*uint64(t.xtal)*nint) / 1000)
	pwSDM := uint8(0x00)
	if vcoFraKHz == 0 {
		pwSDM = 0x08
	}
	if err := t.shadow.MaskedWrite(registers.RegVCOCurrent, pwSDM, 0x08); err != nil {
		return settings, err
	}

	sdm, steps := sdmWord(vcoFraKHz, refKHz)
	settings.SDM = sdm
	if err := t.shadow.BulkWrite(registers.RegSDMHigh, []byte{uint8(sdm >> 8)}); err != nil {
		return settings, err
	}
	if err := t.shadow.BulkWrite(registers.RegSDMLow, []byte{uint8(sdm & 0xff)}); err != nil {
		return settings, err
	}
	settings.State = PLLProgrammed

	t.logger.Debug("programmed PLL",
		"lo", loHz, "mix_div", mixDiv, "div_num", settings.DivNum,
		"nint", settings.N, "sdm", sdm, "sdm_steps", steps)

	locked := false
	lockStatus := status[:3]
	for attempt := 1; attempt <= lockAttempts; attempt++ {
		settings.Attempts = attempt
		if err := t.shadow.Read(registers.RegStatus, lockStatus); err != nil {
			return settings, err
		}
		if lockStatus[registers.StatusLockByte]&registers.StatusLockBit != 0 {
			locked = true
			break
		}
		if attempt == 1 {
			// Didn't lock, raise VCO current
			if err := t.shadow.MaskedWrite(registers.RegVCOCurrent, 0x60, 0xe0); err != nil {
				return settings, err
			}
		}
	}

	if !locked {
		settings.State = PLLUnlocked
		t.logger.Warn("PLL not locked", "lo", loHz, "attempts", settings.Attempts)
		return settings, fmt.Errorf("%w at %d Hz", ErrPLLNotLocked, loHz)
	}

	settings.State = PLLLocked
	t.locked = true

	// PLL auto-tune 8 kHz for tracking
	if err := t.shadow.MaskedWrite(registers.RegRFMux, 0x08, 0x08); err != nil {
		return settings, err
	}
	return settings, nil
}
