package profiles

import (
	"errors"
	"io"
	"path/filepath"
	"sort"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herlein/gortl/pkg/config"
	"github.com/herlein/gortl/pkg/r820t"
	"github.com/herlein/gortl/pkg/r820t/r820ttest"
)

func simulatorPlan(p *Profile) (*config.Snapshot, error) {
	return p.Plan(r820ttest.NewChip(), &r820ttest.Demod{})
}

func TestListSortedAndUnique(t *testing.T) {
	names := List()
	assert.True(t, sort.StringsAreSorted(names))

	seen := map[string]bool{}
	for _, name := range names {
		assert.False(t, seen[name], "duplicate profile %s", name)
		seen[name] = true
	}
	assert.Len(t, names, len(All()))
	assert.Contains(t, names, "fm-100m")
	assert.Contains(t, names, "adsb")
	assert.Contains(t, names, "noaa-19-apt")
}

func TestGet(t *testing.T) {
	p, err := Get("aprs-na")
	require.NoError(t, err)
	assert.Equal(t, uint32(144390000), p.FrequencyHz)

	_, err = Get("shortwave")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestFactories(t *testing.T) {
	assert.Equal(t, "fm-88.5m", NewFMBroadcast(88500000).Name)
	assert.Equal(t, "airband-121.5m", NewAirband(121500000).Name)

	p, err := NewNOAAAPT(18)
	require.NoError(t, err)
	assert.Equal(t, uint32(137912500), p.FrequencyHz)
	_, err = NewNOAAAPT(17)
	assert.Error(t, err)

	p, err = NewWeatherRadio(7)
	require.NoError(t, err)
	assert.Equal(t, uint32(162550000), p.FrequencyHz)
	_, err = NewWeatherRadio(0)
	assert.Error(t, err)

	_, err = NewAPRS("au")
	assert.Error(t, err)
}

// every built-in profile must lock on a well behaved chip
func TestAllProfilesPlan(t *testing.T) {
	for _, p := range All() {
		t.Run(p.Name, func(t *testing.T) {
			plan, err := simulatorPlan(p)
			require.NoError(t, err)
			assert.True(t, plan.Locked)
			assert.Equal(t, p.FrequencyHz, plan.FrequencyHz)
			assert.InDelta(t, float64(plan.PLL.LOHz), float64(plan.PLL.ReconstructHz()), 1500)
		})
	}
}

func TestApply(t *testing.T) {
	chip := r820ttest.NewChip()
	tuner := r820t.New(chip, &r820ttest.Demod{},
		r820t.WithCapMode(r820t.XtalLowCap10p), r820t.WithLogger(log.New(io.Discard)))
	require.NoError(t, tuner.Initialize())

	require.NoError(t, Apply(tuner, NewADSB()))
	assert.Equal(t, uint32(1090000000), tuner.Frequency())
	assert.Equal(t, uint32(1625000), tuner.IFFreq())
	assert.Equal(t, r820t.XtalLowCap10p, tuner.CapMode())

	chip.Lock = r820ttest.LockNever
	err := Apply(tuner, NewISM433())
	assert.ErrorIs(t, err, r820t.ErrPLLNotLocked)
}

func TestTunerConfig(t *testing.T) {
	base := config.Default()
	base.CapMode = "low-0p"

	c := NewAIS().TunerConfig(base)
	assert.Equal(t, uint32(162000000), c.FrequencyHz)
	assert.Equal(t, uint32(1536000), c.SampleRateHz)
	assert.Equal(t, "low-0p", c.CapMode)
	assert.NoError(t, c.Validate())
}

func TestPlanUsesGivenBus(t *testing.T) {
	chip := r820ttest.NewChip()
	chip.Lock = r820ttest.LockNever

	_, err := NewADSB().Plan(chip, &r820ttest.Demod{})
	assert.ErrorIs(t, err, r820t.ErrPLLNotLocked)
	assert.NotEmpty(t, chip.FramesTo(0x14))
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := NewISM433()
	plan, err := simulatorPlan(p)
	require.NoError(t, err)

	for _, ext := range []string{".json", ".yaml"} {
		path := filepath.Join(dir, p.Name+ext)
		require.NoError(t, p.SaveToFile(path, plan))

		pc, err := LoadProfileFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, *p, pc.Profile)
		require.NotNil(t, pc.Plan)
		assert.Equal(t, uint32(433920000), pc.Plan.FrequencyHz)
		assert.NotEmpty(t, pc.Plan.Registers)
	}
}

func TestSaveWithoutPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ais.yaml")
	require.NoError(t, NewAIS().SaveToFile(path, nil))

	pc, err := LoadProfileFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, *NewAIS(), pc.Profile)
	assert.Nil(t, pc.Plan)
}

func TestGenerateProfiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateProfiles(dir, ".json", simulatorPlan))

	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, len(All()))

	pc, err := LoadProfileFromFile(filepath.Join(dir, NewADSB().Name+".json"))
	require.NoError(t, err)
	require.NotNil(t, pc.Plan)
	assert.True(t, pc.Plan.Locked)
}

func TestGeneratePlanError(t *testing.T) {
	planErr := errors.New("no chip")
	err := GenerateProfiles(t.TempDir(), ".json", func(*Profile) (*config.Snapshot, error) {
		return nil, planErr
	})
	assert.ErrorIs(t, err, planErr)
}
