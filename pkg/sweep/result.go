package sweep

import (
	"time"

	"github.com/herlein/gortl/pkg/r820t"
)

// Outcome is what happened at one sweep step
type Outcome int

const (
	// Locked means the PLL locked
	Locked Outcome = iota
	// Unlocked means the PLL was programmed but did not lock
	Unlocked
	// Unreachable means no divider or N value covers the frequency
	Unreachable
)

func (o Outcome) String() string {
	switch o {
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	case Unreachable:
		return "unreachable"
	}
	return "unknown"
}

// Result holds the outcome of one sweep step
type Result struct {
	FrequencyHz uint32
	Outcome     Outcome
	PLL         r820t.PLLSettings // zero when unreachable
	Timestamp   time.Time
}

// Span is a run of consecutive steps with the same outcome
type Span struct {
	StartHz uint32
	StopHz  uint32
	Outcome Outcome
	Steps   int
}

// Summary counts outcomes and merges consecutive steps into spans
type Summary struct {
	Locked      int
	Unlocked    int
	Unreachable int
	Spans       []Span
}

// Summarize builds a Summary from results in sweep order
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Outcome {
		case Locked:
			s.Locked++
		case Unlocked:
			s.Unlocked++
		case Unreachable:
			s.Unreachable++
		}

		if n := len(s.Spans); n > 0 && s.Spans[n-1].Outcome == r.Outcome {
			s.Spans[n-1].StopHz = r.FrequencyHz
			s.Spans[n-1].Steps++
			continue
		}
		s.Spans = append(s.Spans, Span{StartHz: r.FrequencyHz, StopHz: r.FrequencyHz, Outcome: r.Outcome, Steps: 1})
	}
	return s
}
