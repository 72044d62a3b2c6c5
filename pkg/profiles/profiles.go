// Package profiles provides pre-defined tuning profiles for an R820T receiver.
// Each profile is a centre frequency, channel bandwidth, sample rate and gain
// mode suited to one kind of signal.
package profiles

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/i2c"

	"github.com/herlein/gortl/pkg/config"
	"github.com/herlein/gortl/pkg/r820t"
)

// ErrUnknownProfile is returned by Get for names not in the registry
var ErrUnknownProfile = errors.New("unknown profile")

// Profile represents one receive configuration
type Profile struct {
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	FrequencyHz  uint32 `json:"frequency_hz" yaml:"frequency_hz"`
	BandwidthHz  uint32 `json:"bandwidth_hz,omitempty" yaml:"bandwidth_hz,omitempty"` // 0 follows the sample rate
	SampleRateHz uint32 `json:"sample_rate_hz" yaml:"sample_rate_hz"`
	Gain         string `json:"gain" yaml:"gain"`
	GainLevel    int    `json:"gain_level,omitempty" yaml:"gain_level,omitempty"`
}

// ProfileConfig is the file format for a profile and its register plan
type ProfileConfig struct {
	Profile Profile          `json:"profile" yaml:"profile"`
	Plan    *config.Snapshot `json:"plan,omitempty" yaml:"plan,omitempty"`
}

// TunerConfig merges the profile into base, keeping the crystal and cap mode
func (p *Profile) TunerConfig(base config.TunerConfig) config.TunerConfig {
	base.FrequencyHz = p.FrequencyHz
	base.BandwidthHz = p.BandwidthHz
	base.SampleRateHz = p.SampleRateHz
	base.Gain = p.Gain
	base.GainLevel = p.GainLevel
	return base
}

// Apply tunes an initialized tuner to the profile
func Apply(tuner *r820t.Tuner, p *Profile) error {
	base := config.Default()
	base.CrystalHz = tuner.CrystalHz()
	base.CapMode = tuner.CapMode().String()

	if err := config.ApplyToTuner(tuner, p.TunerConfig(base)); err != nil {
		return fmt.Errorf("failed to apply profile %s: %w", p.Name, err)
	}
	return nil
}

// Plan initializes a fresh tuner on bus with the default configuration,
// applies the profile and returns the resulting tuner state, register map
// included. Plans are usually made against an r820ttest chip.
func (p *Profile) Plan(bus i2c.Bus, demod r820t.Demodulator) (*config.Snapshot, error) {
	base := config.Default()
	opts, err := base.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, r820t.WithLogger(log.New(io.Discard)))

	tuner := r820t.New(bus, demod, opts...)
	if err := tuner.Initialize(); err != nil {
		return nil, err
	}
	if err := Apply(tuner, p); err != nil {
		return nil, err
	}
	return config.DumpFromTuner(tuner), nil
}

// Planner produces the register plan stored next to a profile
type Planner func(p *Profile) (*config.Snapshot, error)

// SaveToFile saves a profile, as JSON or YAML by extension. plan may be nil.
func (p *Profile) SaveToFile(path string, plan *config.Snapshot) error {
	if err := config.WriteFile(ProfileConfig{Profile: *p, Plan: plan}, path); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.Name, err)
	}
	return nil
}

// LoadProfileFromFile loads a profile file written by SaveToFile. Hand
// written files may leave out the plan.
func LoadProfileFromFile(path string) (*ProfileConfig, error) {
	var pc ProfileConfig
	if err := config.ReadFile(path, &pc); err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if pc.Profile.Name == "" {
		pc.Profile.Name = filepath.Base(path)
	}
	return &pc, nil
}

// GenerateProfiles writes every registered profile to basePath. With a nil
// planner the files carry no plan.
func GenerateProfiles(basePath, ext string, planner Planner) error {
	for _, p := range All() {
		var plan *config.Snapshot
		if planner != nil {
			var err error
			if plan, err = planner(p); err != nil {
				return fmt.Errorf("failed to plan profile %s: %w", p.Name, err)
			}
		}
		filename := filepath.Join(basePath, p.Name+ext)
		if err := p.SaveToFile(filename, plan); err != nil {
			return err
		}
	}
	return nil
}

// formatFrequency formats a frequency for use in profile names
func formatFrequency(hz uint32) string {
	mhz := float64(hz) / 1e6
	if mhz == float64(int(mhz)) {
		return fmt.Sprintf("%.0fm", mhz)
	}
	return fmt.Sprintf("%gm", mhz)
}
