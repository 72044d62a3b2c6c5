package r820t

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSelectRange(t *testing.T) {
	tests := []struct {
		freq uint32
		want uint32
	}{
		{0, 0},
		{49999999, 0},
		{50000000, 50},
		{59000000, 55},
		{100000000, 100},
		{139999999, 120},
		{433920000, 310},
		{649999999, 588},
		{650000000, 650},
		{1700000000, 650},
		{math.MaxUint32, 650},
	}

	for _, tt := range tests {
		r := SelectRange(tt.freq)
		assert.Equal(t, tt.want, r.ThresholdMHz, "freq %d", tt.freq)
	}
}

func TestSelectRangeRow(t *testing.T) {
	r := SelectRange(59000000)
	assert.Equal(t, uint8(0x08), r.OpenDrain)
	assert.Equal(t, uint8(0x02), r.RFMuxPoly)
	assert.Equal(t, uint8(0x8b), r.TFBand)
	assert.Equal(t, uint8(0x02), r.XtalCap20p)
}

func TestRangesAscending(t *testing.T) {
	ranges := Ranges()
	require.Len(t, ranges, 21)
	assert.Equal(t, uint32(0), ranges[0].ThresholdMHz)
	for i := 1; i < len(ranges); i++ {
		assert.Greater(t, ranges[i].ThresholdMHz, ranges[i-1].ThresholdMHz)
	}

	// callers get a copy
	ranges[0].TFBand = 0
	assert.Equal(t, uint8(0xdf), SelectRange(0).TFBand)
}

func TestSelectRangeProperty(t *testing.T) {
	ranges := Ranges()
	rapid.Check(t, func(t *rapid.T) {
		freq := rapid.Uint32().Draw(t, "freq")
		mhz := freq / 1000000
		r := SelectRange(freq)

		if r.ThresholdMHz > mhz {
			t.Fatalf("threshold %d above %d MHz", r.ThresholdMHz, mhz)
		}
		for _, other := range ranges {
			if other.ThresholdMHz <= mhz && other.ThresholdMHz > r.ThresholdMHz {
				t.Fatalf("%d MHz picked %d, %d is closer", mhz, r.ThresholdMHz, other.ThresholdMHz)
			}
		}
	})
}
