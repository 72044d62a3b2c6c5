package r820t

// FrequencyRange is one row of the RF front-end calibration table. Each row
// applies from ThresholdMHz up to the next row's threshold.
type FrequencyRange struct {
	ThresholdMHz uint32
	OpenDrain    uint8 // R23[3]
	RFMuxPoly    uint8 // R26[7:6] RF mux, R26[1:0] polymux
	TFBand       uint8 // R27[7:0] tracking filter band
	XtalCap20p   uint8 // R16[1:0]
	XtalCap10p   uint8
	XtalCap0p    uint8
}

var frequencyRanges = [21]FrequencyRange{
	{0, 0x08, 0x02, 0xdf, 0x02, 0x01, 0x00},
	{50, 0x08, 0x02, 0xbe, 0x02, 0x01, 0x00},
	{55, 0x08, 0x02, 0x8b, 0x02, 0x01, 0x00},
	{60, 0x08, 0x02, 0x7b, 0x02, 0x01, 0x00},
	{65, 0x08, 0x02, 0x69, 0x02, 0x01, 0x00},
	{70, 0x08, 0x02, 0x58, 0x02, 0x01, 0x00},
	{75, 0x00, 0x02, 0x44, 0x02, 0x01, 0x00},
	{80, 0x00, 0x02, 0x44, 0x02, 0x01, 0x00},
	{90, 0x00, 0x02, 0x34, 0x01, 0x01, 0x00},
	{100, 0x00, 0x02, 0x34, 0x01, 0x01, 0x00},
	{110, 0x00, 0x02, 0x24, 0x01, 0x01, 0x00},
	{120, 0x00, 0x02, 0x24, 0x01, 0x01, 0x00},
	{140, 0x00, 0x02, 0x14, 0x01, 0x01, 0x00},
	{180, 0x00, 0x02, 0x13, 0x00, 0x00, 0x00},
	{220, 0x00, 0x02, 0x13, 0x00, 0x00, 0x00},
	{250, 0x00, 0x02, 0x11, 0x00, 0x00, 0x00},
	{280, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00},
	{310, 0x00, 0x41, 0x00, 0x00, 0x00, 0x00},
	{450, 0x00, 0x41, 0x00, 0x00, 0x00, 0x00},
	{588, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00},
	{650, 0x00, 0x40, 0x00, 0x00, 0x00, 0x00},
}

// SelectRange returns the table row with the largest threshold not above
// freqHz. Frequencies past the last threshold use the last row.
func SelectRange(freqHz uint32) FrequencyRange {
	freqMHz := freqHz / 1000000
	selected := frequencyRanges[0]
	for _, r := range frequencyRanges {
		if freqMHz < r.ThresholdMHz {
			break
		}
		selected = r
	}
	return selected
}

// Ranges returns a copy of the calibration table
func Ranges() []FrequencyRange {
	out := make([]FrequencyRange, len(frequencyRanges))
	copy(out, frequencyRanges[:])
	return out
}
