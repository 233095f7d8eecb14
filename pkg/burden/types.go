// Package burden implements the physical-burden and work-relatedness scoring
// used in occupational musculoskeletal-disorder evaluations.
//
// Every function in this package is pure: results depend only on the
// arguments, nothing is cached and nothing blocks, so callers may evaluate
// many patient records concurrently without coordination.
package burden

import (
	"fmt"
	"time"
)

// Level is the ordinal physical-burden classification of a single job.
// The numeric values preserve the ordering Low < MediumLow < MediumHigh < High.
type Level int

const (
	Low Level = iota + 1
	MediumLow
	MediumHigh
	High
)

// String returns the canonical name of the level.
func (l Level) String() string {
	switch l {
	case Low:
		return "Low"
	case MediumLow:
		return "MediumLow"
	case MediumHigh:
		return "MediumHigh"
	case High:
		return "High"
	default:
		return "Unknown"
	}
}

// IsValid reports whether l is one of the four defined levels.
func (l Level) IsValid() bool {
	return l >= Low && l <= High
}

// ParseLevel converts a canonical level name back into a Level.
func ParseLevel(s string) (Level, bool) {
	for _, l := range []Level{Low, MediumLow, MediumHigh, High} {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Result is the derived burden of one job: its level and the score band
// associated with that level.
type Result struct {
	Level    Level   `json:"level"`
	MinScore float64 `json:"min_score"`
	MaxScore float64 `json:"max_score"`
}

// Range is a work-relatedness percentage range. Values are kept at full
// precision; use Round1 when presenting them.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Midpoint returns (Min+Max)/2.
func (r Range) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// IsZero reports whether both bounds are zero.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Verdict is the binary cumulative-burden sufficiency judgement.
type Verdict string

const (
	Sufficient   Verdict = "Sufficient"
	Insufficient Verdict = "Insufficient"
)

// String returns the verdict name.
func (v Verdict) String() string {
	return string(v)
}

// IsValid reports whether v is a known verdict.
func (v Verdict) IsValid() bool {
	return v == Sufficient || v == Insufficient
}

// Job is the exposure record of a single job as consumed by the aggregator.
// A zero Start or End means the date is absent. When Override is set it
// replaces the period computed from the dates.
type Job struct {
	LoadWeightGrams        float64
	SquattingMinutesPerDay float64
	Start                  time.Time
	End                    time.Time
	Override               *Duration
}

// Period resolves the employment duration of the job, preferring a manual
// override over the date-derived value.
func (j Job) Period() Duration {
	if j.Override != nil {
		return *j.Override
	}
	return Computed(WorkPeriodYears(j.Start, j.End))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, ok := ParseLevel(string(text))
	if !ok {
		return fmt.Errorf("unknown burden level %q", string(text))
	}
	*l = parsed
	return nil
}
