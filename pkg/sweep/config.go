package sweep

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/herlein/gortl/pkg/config"
)

// Defaults
const (
	DefaultStartHz = 24000000
	DefaultStopHz  = 1766000000
	DefaultStepHz  = 1000000
	DefaultDwell   = 0
	MaxSteps       = 1 << 20
	maxDwell       = 10 * time.Second
)

// Config defines one sweep
type Config struct {
	StartHz uint32 `json:"start_hz" yaml:"start_hz"`
	StopHz  uint32 `json:"stop_hz" yaml:"stop_hz"`
	StepHz  uint32 `json:"step_hz" yaml:"step_hz"`

	// Dwell is the wait after each tune
	Dwell time.Duration `json:"dwell" yaml:"dwell"`

	// Logger for per-step debug output (optional, not serialized)
	Logger *log.Logger `json:"-" yaml:"-"`
}

// DefaultConfig returns a sweep over the whole tuning range in 1 MHz steps
func DefaultConfig() Config {
	return Config{
		StartHz: DefaultStartHz,
		StopHz:  DefaultStopHz,
		StepHz:  DefaultStepHz,
		Dwell:   DefaultDwell,
	}
}

// Validate checks the configuration for errors
func (c Config) Validate() error {
	if c.StartHz > c.StopHz {
		return fmt.Errorf("%w: %w: %d > %d", ErrInvalidConfig, ErrInvalidRange, c.StartHz, c.StopHz)
	}
	if c.StepHz == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidStep)
	}
	if c.Dwell < 0 || c.Dwell > maxDwell {
		return fmt.Errorf("%w: %w: %s", ErrInvalidConfig, ErrInvalidDwell, c.Dwell)
	}
	if c.Steps() > MaxSteps {
		return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, ErrTooManySteps, c.Steps())
	}
	return nil
}

// Steps returns the number of frequencies the sweep visits
func (c Config) Steps() int {
	if c.StepHz == 0 || c.StartHz > c.StopHz {
		return 0
	}
	return int((c.StopHz-c.StartHz)/c.StepHz) + 1
}

// Frequencies lists the sweep frequencies from start, stop included when it
// falls on a step
func (c Config) Frequencies() []uint32 {
	n := c.Steps()
	freqs := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		freqs = append(freqs, c.StartHz+uint32(i)*c.StepHz)
	}
	return freqs
}

// LoadConfigFile reads a sweep configuration from JSON or YAML
func LoadConfigFile(path string) (Config, error) {
	c := DefaultConfig()
	if err := config.ReadFile(path, &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}
