// Package sweep steps a tuner across a frequency range and records where
// the PLL locks.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/herlein/gortl/pkg/r820t"
)

// Tuner is the part of an R820T driver a sweep needs
type Tuner interface {
	SetFrequency(freqHz uint32) error
	PLL() r820t.PLLSettings
}

// Run tunes to every frequency of cfg in order and sends one Result per
// step. PLL lock failures and unreachable frequencies are recorded; any other
// tuner error stops the sweep and is returned. Run closes results when it
// returns.
func Run(ctx context.Context, tuner Tuner, cfg Config, results chan<- Result) error {
	defer close(results)

	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	for _, freq := range cfg.Frequencies() {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := step(tuner, freq)
		if err != nil {
			return fmt.Errorf("sweep stopped at %d Hz: %w", freq, err)
		}
		logger.Debug("sweep step", "freq", freq, "outcome", result.Outcome, "lo", result.PLL.LOHz)

		select {
		case results <- result:
		case <-ctx.Done():
			return ctx.Err()
		}

		if cfg.Dwell > 0 {
			timer := time.NewTimer(cfg.Dwell)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
	return nil
}

func step(tuner Tuner, freq uint32) (Result, error) {
	result := Result{FrequencyHz: freq}

	err := tuner.SetFrequency(freq)
	result.Timestamp = time.Now()
	switch {
	case err == nil:
		result.Outcome = Locked
		result.PLL = tuner.PLL()
	case errors.Is(err, r820t.ErrPLLNotLocked):
		result.Outcome = Unlocked
		result.PLL = tuner.PLL()
	case errors.Is(err, r820t.ErrFrequencyOutOfRange):
		result.Outcome = Unreachable
	default:
		return result, err
	}
	return result, nil
}

// Collect runs a sweep and gathers every result
func Collect(ctx context.Context, tuner Tuner, cfg Config) ([]Result, error) {
	ch := make(chan Result)
	errc := make(chan error, 1)
	go func() {
		errc <- Run(ctx, tuner, cfg, ch)
	}()

	var results []Result
	for r := range ch {
		results = append(results, r)
	}
	return results, <-errc
}
