package r820t

import (
	"fmt"

	"github.com/herlein/gortl/pkg/registers"
)

// IF filter constants
const (
	ifFreqWide   = 4570000 // 7 and 8 MHz channels
	ifFreq6MHz   = 3570000
	ifFreqNarrow = 2300000
	filtHPBW1    = 350000
	filtHPBW2    = 380000
)

// ifLowPassBW lists the IF low-pass filter corners, widest first
var ifLowPassBW = [10]int64{
	1700000, 1600000, 1550000, 1450000, 1200000,
	900000, 700000, 550000, 450000, 350000,
}

// FilterPlan is the IF filter programming for one requested bandwidth
type FilterPlan struct {
	Reg0A      uint8  `json:"reg_0a" yaml:"reg_0a"`
	Reg0B      uint8  `json:"reg_0b" yaml:"reg_0b"`
	IFHz       uint32 `json:"if_hz" yaml:"if_hz"`
	AchievedHz uint32 `json:"achieved_hz" yaml:"achieved_hz"`
	LowPassIdx int    `json:"low_pass_index" yaml:"low_pass_index"`
}

// PlanBandwidth picks the IF filter settings and IF centre for bwHz.
// Wide requests use fixed DVB-T settings; anything narrower than a 6 MHz
// channel is built from the high-pass corners and the low-pass table.
func PlanBandwidth(bwHz uint32) FilterPlan {
	bw := int64(bwHz)

	switch {
	case bw > 7000000:
		return FilterPlan{Reg0A: 0x10, Reg0B: 0x0b, IFHz: ifFreqWide, AchievedHz: 8000000, LowPassIdx: -1}
	case bw > 6000000:
		return FilterPlan{Reg0A: 0x10, Reg0B: 0x2a, IFHz: ifFreqWide, AchievedHz: 7000000, LowPassIdx: -1}
	case bw > ifLowPassBW[0]+filtHPBW1+filtHPBW2:
		return FilterPlan{Reg0A: 0x10, Reg0B: 0x6b, IFHz: ifFreq6MHz, AchievedHz: 6000000, LowPassIdx: -1}
	}

	plan := FilterPlan{Reg0A: 0x00, Reg0B: 0x80}
	ifHz := int64(ifFreqNarrow)
	var realBW int64

	if bw > ifLowPassBW[0]+filtHPBW1 {
		bw -= filtHPBW2
		ifHz += filtHPBW2
		realBW += filtHPBW2
	} else {
		plan.Reg0B |= 0x20
	}

	if bw > ifLowPassBW[0] {
		bw -= filtHPBW1
		ifHz += filtHPBW1
		realBW += filtHPBW1
	} else {
		plan.Reg0B |= 0x40
	}

	// the entry just before the first corner the budget exceeds
	lpIdx := 0
	for i, corner := range ifLowPassBW {
		if bw > corner {
			break
		}
		lpIdx = i
	}
	plan.Reg0B |= uint8(15 - lpIdx)
	realBW += ifLowPassBW[lpIdx]

	plan.LowPassIdx = lpIdx
	plan.AchievedHz = uint32(realBW)
	plan.IFHz = uint32(ifHz - realBW/2)
	return plan
}

// SetBandwidth selects the IF filter for bwHz and returns the new IF
// frequency. A zero bandwidth follows the sample rate.
func (t *Tuner) SetBandwidth(bwHz, sampleRate uint32) (uint32, error) {
	if bwHz == 0 {
		bwHz = sampleRate
	}
	plan := PlanBandwidth(bwHz)

	t.ifFreq = plan.IFHz
	t.filter = plan

	if err := t.shadow.MaskedWrite(registers.RegFilterPower, plan.Reg0A, 0x10); err != nil {
		return t.ifFreq, fmt.Errorf("failed to set filter power: %w", err)
	}
	if err := t.shadow.MaskedWrite(registers.RegFilterBW, plan.Reg0B, 0xef); err != nil {
		return t.ifFreq, fmt.Errorf("failed to set filter bandwidth: %w", err)
	}

	t.logger.Debug("selected IF filter", "bw", bwHz, "if", plan.IFHz, "achieved", plan.AchievedHz, "reg_0b", plan.Reg0B)
	return t.ifFreq, nil
}
