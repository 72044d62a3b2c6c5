// Package registers holds the R820T register map and the host-side shadow of
// the writable register window.
package registers

import "fmt"

// Writable register window mirrored by the shadow
const (
	ShadowStart  = 0x05
	ShadowCount  = 27 // 0x05 - 0x1f
	MaxI2CMsgLen = 8  // register address + up to 7 data bytes
)

// R820T register addresses
const (
	RegStatus       = 0x00 // Read-only status block (chip ID, lock, VCO fine tune)
	RegLNA          = 0x05 // LNA gain mode
	RegMixerBias    = 0x06
	RegMixer        = 0x07 // Mixer gain mode
	RegMixerBuffer  = 0x08 // Mixer buffer / image rejection phase
	RegIFFilterGain = 0x09 // IF filter / image rejection gain
	RegFilterPower  = 0x0a // Filter power and calibration
	RegFilterBW     = 0x0b // IF filter bandwidth, high-pass corners
	RegVGA          = 0x0c // VGA gain
	RegPLLDivider   = 0x10 // Mixer divider, refdiv2, xtal cap and drive
	RegVCOCurrent   = 0x12 // VCO bias current, SDM power
	RegPLLNi        = 0x14 // PLL integer divider (Ni + Si)
	RegSDMLow       = 0x15 // Sigma-delta word, low byte
	RegSDMHigh      = 0x16 // Sigma-delta word, high byte
	RegOpenDrain    = 0x17
	RegRFMux        = 0x1a // RF mux, polyphase mux, PLL auto-tune
	RegTFBand       = 0x1b // Tracking filter band
)

// Status block bits, as seen after bit reversal
const (
	StatusLockByte     = 2
	StatusLockBit      = 0x40
	StatusFineTuneByte = 4
	StatusFineTuneMask = 0x30
)

// InitBlock is the power-on programming for registers 0x05 through 0x1f.
var InitBlock = [ShadowCount]uint8{
	0x83, 0x32, 0x75,       // 05 to 07
	0xc0, 0x40, 0xd6, 0x6c, // 08 to 0b
	0xf5, 0x63, 0x75, 0x68, // 0c to 0f
	0x6c, 0x83, 0x80, 0x00, // 10 to 13
	0x0f, 0x00, 0xc0, 0x30, // 14 to 17
	0x48, 0xcc, 0x60, 0x00, // 18 to 1b
	0x54, 0xae, 0x4a, 0xc0, // 1c to 1f
}

var names = map[uint8]string{
	RegStatus:       "STATUS",
	RegLNA:          "LNA",
	RegMixerBias:    "MIXER_BIAS",
	RegMixer:        "MIXER",
	RegMixerBuffer:  "MIXER_BUF",
	RegIFFilterGain: "IF_FILTER",
	RegFilterPower:  "FILT_PWR",
	RegFilterBW:     "FILT_BW",
	RegVGA:          "VGA",
	RegPLLDivider:   "PLL_DIV",
	RegVCOCurrent:   "VCO_CUR",
	RegPLLNi:        "PLL_NI",
	RegSDMLow:       "SDM_LO",
	RegSDMHigh:      "SDM_HI",
	RegOpenDrain:    "OPEN_D",
	RegRFMux:        "RF_MUX",
	RegTFBand:       "TF_BAND",
}

// Name returns a short mnemonic for a register address
func Name(reg uint8) string {
	if name, ok := names[reg]; ok {
		return name
	}
	return fmt.Sprintf("R%02X", reg)
}

// InWindow reports whether reg is mirrored by the shadow
func InWindow(reg uint8) bool {
	return reg >= ShadowStart && int(reg) < ShadowStart+ShadowCount
}
