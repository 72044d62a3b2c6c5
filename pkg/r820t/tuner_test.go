package r820t

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/herlein/gortl/pkg/r820t/r820ttest"
	"github.com/herlein/gortl/pkg/registers"
)

func newTestTuner(t *testing.T, opts ...Option) (*Tuner, *r820ttest.Chip, *r820ttest.Demod) {
	t.Helper()
	chip := r820ttest.NewChip()
	demod := &r820ttest.Demod{}
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	tuner := New(chip, demod, opts...)
	require.NoError(t, tuner.Initialize())
	return tuner, chip, demod
}

func TestInitialize(t *testing.T) {
	tuner, chip, demod := newTestTuner(t)

	assert.Equal(t, []r820ttest.DemodWrite{
		{Page: 1, Addr: 0xb1, Val: 0x1a, Length: 1},
		{Page: 0, Addr: 0x08, Val: 0x4d, Length: 1},
		{Page: 1, Addr: 0x15, Val: 0x01, Length: 1},
	}, demod.Writes)
	assert.Equal(t, uint32(3570000), demod.IFHz)
	assert.Equal(t, uint32(3570000), tuner.IFFreq())

	require.Len(t, chip.Frames, 4)
	for _, f := range chip.Frames {
		assert.LessOrEqual(t, len(f), registers.MaxI2CMsgLen)
	}
	for i, v := range registers.InitBlock {
		assert.Equal(t, v, chip.Reg(uint8(registers.ShadowStart+i)), "reg 0x%02X", registers.ShadowStart+i)
	}
	assert.Equal(t, registers.InitBlock, tuner.Registers())
}

func TestInitializeDemodError(t *testing.T) {
	chip := r820ttest.NewChip()
	demod := &r820ttest.Demod{Err: errors.New("usb stall")}
	tuner := New(chip, demod, WithLogger(log.New(io.Discard)))

	err := tuner.Initialize()
	assert.ErrorIs(t, err, demod.Err)
	assert.Empty(t, chip.Frames)
}

func TestTuneBeforeInitialize(t *testing.T) {
	tuner := New(r820ttest.NewChip(), &r820ttest.Demod{}, WithLogger(log.New(io.Discard)))
	err := tuner.SetFrequency(100000000)
	assert.ErrorIs(t, err, registers.ErrUninitialized)
}

func TestSetFrequency(t *testing.T) {
	tuner, chip, _ := newTestTuner(t)

	require.NoError(t, tuner.SetFrequency(100000000))
	assert.True(t, tuner.Locked())
	assert.Equal(t, uint32(100000000), tuner.Frequency())

	pll := tuner.PLL()
	assert.Equal(t, PLLLocked, pll.State)
	assert.Equal(t, uint32(103570000), pll.LOHz)
	assert.Equal(t, uint32(32), pll.MixDiv)
	assert.Equal(t, uint8(4), pll.DivNum)
	assert.Equal(t, uint8(57), pll.N)
	assert.Equal(t, uint16(0x89f6), pll.SDM)
	assert.Equal(t, 1, pll.Attempts)
	assert.InDelta(t, float64(pll.LOHz), float64(pll.ReconstructHz()), 1000)

	// RF front end for the 100 MHz row
	assert.Equal(t, uint8(0x30), chip.Reg(registers.RegOpenDrain))
	assert.Equal(t, uint8(0x34), chip.Reg(registers.RegTFBand))
	assert.Equal(t, uint8(0xc0), chip.Reg(registers.RegMixerBuffer))
	assert.Equal(t, uint8(0x40), chip.Reg(registers.RegIFFilterGain))

	// divider 4, 20p cap with low drive
	assert.Equal(t, uint8(0x8d), chip.Reg(registers.RegPLLDivider))
	assert.Equal(t, uint8(0x0b), chip.Reg(registers.RegPLLNi))
	assert.Equal(t, uint8(0x89), chip.Reg(registers.RegSDMHigh))
	assert.Equal(t, uint8(0xf6), chip.Reg(registers.RegSDMLow))
	assert.Equal(t, uint8(0x80), chip.Reg(registers.RegVCOCurrent))
	// mux 0x02 with auto-tune back at 8 kHz
	assert.Equal(t, uint8(0x2a), chip.Reg(registers.RegRFMux))
}

func TestSetFrequencyAfterBandwidth(t *testing.T) {
	tuner, chip, _ := newTestTuner(t)

	_, err := tuner.SetBandwidth(2048000, 2048000)
	require.NoError(t, err)
	require.NoError(t, tuner.SetFrequency(100000000))

	pll := tuner.PLL()
	assert.Equal(t, uint32(101625000), pll.LOHz)
	assert.Equal(t, uint8(56), pll.N)
	assert.Equal(t, uint16(0x7556), pll.SDM)
	// N=56 is ni 10, si 3
	assert.Equal(t, uint8(0xca), chip.Reg(registers.RegPLLNi))
	assert.InDelta(t, float64(pll.LOHz), float64(pll.ReconstructHz()), 1000)
}

func TestSetFrequencyMixerDivider(t *testing.T) {
	tuner, _, _ := newTestTuner(t)

	pll, err := tuner.setPLL(300000000)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), pll.MixDiv)
	assert.Equal(t, uint16(0xaaaa), pll.SDM)
	assert.InDelta(t, 300000000, float64(pll.ReconstructHz()), 1000)
}

func TestSetFrequencyFineTune(t *testing.T) {
	tests := []struct {
		fineTune uint8
		divNum   uint8
	}{
		{0, 5},
		{1, 5},
		{2, 4},
		{3, 3},
	}

	for _, tt := range tests {
		tuner, chip, _ := newTestTuner(t)
		chip.FineTune = tt.fineTune

		require.NoError(t, tuner.SetFrequency(100000000))
		assert.Equal(t, tt.fineTune, tuner.PLL().FineTune)
		assert.Equal(t, tt.divNum, tuner.PLL().DivNum, "fine tune %d", tt.fineTune)
		assert.Equal(t, tt.divNum, chip.Reg(registers.RegPLLDivider)>>5)
	}
}

func TestSetFrequencyNoLock(t *testing.T) {
	tuner, chip, _ := newTestTuner(t)
	chip.Lock = r820ttest.LockNever

	err := tuner.SetFrequency(100000000)
	require.ErrorIs(t, err, ErrPLLNotLocked)
	assert.False(t, tuner.Locked())
	assert.Zero(t, tuner.Frequency())

	pll := tuner.PLL()
	assert.Equal(t, PLLUnlocked, pll.State)
	assert.Equal(t, lockAttempts, pll.Attempts)
	// the programming stays in place
	assert.Equal(t, uint16(0x89f6), pll.SDM)
	assert.Equal(t, uint8(0x89), chip.Reg(registers.RegSDMHigh))
	// VCO current raised, auto-tune left at 128 kHz
	assert.Equal(t, uint8(0x60), chip.Reg(registers.RegVCOCurrent))
	assert.Equal(t, uint8(0x22), chip.Reg(registers.RegRFMux))
}

func TestSetFrequencyLockAfterBoost(t *testing.T) {
	tuner, chip, _ := newTestTuner(t)
	chip.Lock = r820ttest.LockAfterBoost

	require.NoError(t, tuner.SetFrequency(100000000))
	assert.True(t, tuner.Locked())
	assert.Equal(t, 2, tuner.PLL().Attempts)
	assert.Equal(t, uint8(0x60), chip.Reg(registers.RegVCOCurrent))

	// the next tune starts over at the initial VCO current
	chip.Lock = r820ttest.LockAlways
	require.NoError(t, tuner.SetFrequency(144390000))
	assert.Equal(t, 1, tuner.PLL().Attempts)
	assert.Equal(t, uint8(0x80), chip.Reg(registers.RegVCOCurrent))
}

func TestSetFrequencyOutOfRange(t *testing.T) {
	tuner, _, _ := newTestTuner(t)

	for _, freq := range []uint32{10000000, 1800000000, 0xffffff00} {
		err := tuner.SetFrequency(freq)
		assert.ErrorIs(t, err, ErrFrequencyOutOfRange, "freq %d", freq)
		assert.False(t, tuner.Locked())
	}
}

func TestSetFrequencyNAboveRange(t *testing.T) {
	tuner, chip, _ := newTestTuner(t, WithCrystal(16000000))
	chip.Reset()

	// 103.57 MHz LO * 32 / 32 MHz gives N=103
	err := tuner.SetFrequency(100000000)
	require.ErrorIs(t, err, ErrFrequencyOutOfRange)
	assert.False(t, tuner.Locked())
	assert.Zero(t, tuner.Frequency())

	for _, reg := range []uint8{registers.RegPLLNi, registers.RegSDMLow, registers.RegSDMHigh} {
		assert.Empty(t, chip.FramesTo(reg), "reg 0x%02X", reg)
	}
	assert.Equal(t, uint8(4<<5), chip.Reg(registers.RegPLLDivider)&0xe0)

	pll := tuner.PLL()
	assert.Equal(t, PLLFailed, pll.State)
	assert.Equal(t, uint32(103570000), pll.LOHz)
	assert.Equal(t, uint32(16000000), pll.CrystalHz)
	assert.Equal(t, uint32(32), pll.MixDiv)
	assert.Equal(t, uint8(4), pll.DivNum)
	assert.Equal(t, uint64(3314240000), pll.VCOHz)
	assert.Zero(t, pll.N)
	assert.Zero(t, pll.SDM)
	assert.Zero(t, pll.Attempts)
}

func TestSetFrequencyNBelowRange(t *testing.T) {
	tuner, chip, _ := newTestTuner(t, WithCrystal(70000000))
	chip.Reset()

	// 900 MHz LO * 2 / 140 MHz gives N=12
	err := tuner.SetFrequency(896430000)
	require.ErrorIs(t, err, ErrFrequencyOutOfRange)
	assert.Empty(t, chip.FramesTo(registers.RegPLLNi))

	pll := tuner.PLL()
	assert.Equal(t, PLLFailed, pll.State)
	assert.Equal(t, uint32(2), pll.MixDiv)
	assert.Equal(t, uint8(0), pll.DivNum)
	assert.Equal(t, uint64(1800000000), pll.VCOHz)
	assert.Zero(t, pll.N)
}

func TestSetFrequencyNoMixerDivider(t *testing.T) {
	tuner, _, _ := newTestTuner(t)
	require.NoError(t, tuner.SetFrequency(100000000))

	require.ErrorIs(t, tuner.SetFrequency(10000000), ErrFrequencyOutOfRange)
	pll := tuner.PLL()
	assert.Equal(t, PLLFailed, pll.State)
	assert.Equal(t, uint32(13570000), pll.LOHz)
	assert.Zero(t, pll.MixDiv)
	assert.False(t, pll.Locked())
}

func TestCapModes(t *testing.T) {
	tests := []struct {
		mode CrystalCapMode
		cap  uint8
	}{
		{XtalLowCap30p, 0x09},
		{XtalLowCap20p, 0x09},
		{XtalLowCap10p, 0x09},
		{XtalLowCap0p, 0x08},
		{XtalHighCap0p, 0x00},
	}

	for _, tt := range tests {
		tuner, chip, _ := newTestTuner(t, WithCapMode(tt.mode))
		require.NoError(t, tuner.SetFrequency(100000000))
		assert.Equal(t, tt.cap, chip.Reg(registers.RegPLLDivider)&0x0b, "mode %s", tt.mode)
	}
}

func TestInvalidCapMode(t *testing.T) {
	tuner, chip, _ := newTestTuner(t)
	chip.Reset()
	tuner.SetCapMode(CrystalCapMode(42))

	err := tuner.SetFrequency(100000000)
	assert.ErrorIs(t, err, ErrInvalidCapMode)
	assert.Empty(t, chip.Frames)
}

func TestParseCapMode(t *testing.T) {
	for _, mode := range []CrystalCapMode{XtalLowCap30p, XtalLowCap20p, XtalLowCap10p, XtalLowCap0p, XtalHighCap0p} {
		parsed, err := ParseCapMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
	_, err := ParseCapMode("medium")
	assert.ErrorIs(t, err, ErrInvalidCapMode)
}

func TestSetGainMode(t *testing.T) {
	tuner, chip, _ := newTestTuner(t)

	require.NoError(t, tuner.SetGainMode(AutoGain{}))
	assert.Equal(t, AutoGain{}, tuner.GainMode())
	assert.Equal(t, uint8(0x83), chip.Reg(registers.RegLNA))
	assert.Equal(t, uint8(0x75), chip.Reg(registers.RegMixer))
	assert.Equal(t, uint8(0x6b), chip.Reg(registers.RegVGA))
}

func TestSetGainModeManual(t *testing.T) {
	tuner, chip, _ := newTestTuner(t)
	chip.Reset()

	err := tuner.SetGainMode(ManualGain{Level: 296})
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Empty(t, chip.Frames)
	assert.Nil(t, tuner.GainMode())
}

func TestParseGainMode(t *testing.T) {
	mode, err := ParseGainMode("", 0)
	require.NoError(t, err)
	assert.Equal(t, AutoGain{}, mode)

	mode, err = ParseGainMode("manual", -15)
	require.NoError(t, err)
	assert.Equal(t, "manual(-1.5 dB)", mode.String())

	_, err = ParseGainMode("agc", 0)
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {
	ok, err := Probe(r820ttest.NewChip())
	require.NoError(t, err)
	assert.True(t, ok)

	chip := r820ttest.NewChip()
	chip.Regs[0] = 0x00
	ok, err = Probe(chip)
	require.NoError(t, err)
	assert.False(t, ok)

	chip = r820ttest.NewChip()
	chip.Addr = 0x1a
	_, err = Probe(chip)
	assert.Error(t, err)
}

func TestRecordedFrames(t *testing.T) {
	rec := &i2ctest.Record{Bus: r820ttest.NewChip()}
	tuner := New(rec, &r820ttest.Demod{}, WithLogger(log.New(io.Discard)))
	require.NoError(t, tuner.Initialize())

	require.Len(t, rec.Ops, 4)
	assert.Equal(t, Info.I2CAddr, rec.Ops[0].Addr)
	assert.Equal(t, append([]byte{0x05}, registers.InitBlock[:7]...), rec.Ops[0].W)
	assert.Equal(t, byte(0x1a), rec.Ops[3].W[0])
	assert.Len(t, rec.Ops[3].W, 7)

	require.NoError(t, tuner.SetFrequency(162400000))
	for _, op := range rec.Ops[4:] {
		assert.Equal(t, Info.I2CAddr, op.Addr)
		assert.LessOrEqual(t, len(op.W), registers.MaxI2CMsgLen)
	}
}

func TestWithCrystal(t *testing.T) {
	tuner := New(r820ttest.NewChip(), &r820ttest.Demod{}, WithCrystal(0))
	assert.Equal(t, uint32(DefaultCrystalHz), tuner.CrystalHz())

	tuner = New(r820ttest.NewChip(), &r820ttest.Demod{}, WithCrystal(16000000))
	assert.Equal(t, uint32(16000000), tuner.CrystalHz())
}
