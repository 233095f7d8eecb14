package burden

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Load-weight thresholds in grams and squatting thresholds in minutes/day.
const (
	weightHeavy    = 3000.0
	weightModerate = 2000.0

	squatLong     = 180.0
	squatModerate = 120.0
	squatShort    = 60.0
)

var (
	highBurden       = Result{Level: High, MinScore: 6.0, MaxScore: 9.0}
	mediumHighBurden = Result{Level: MediumHigh, MinScore: 3.0, MaxScore: 6.0}
	mediumLowBurden  = Result{Level: MediumLow, MinScore: 2.0, MaxScore: 4.0}
	lowBurden        = Result{Level: Low, MinScore: 1.0, MaxScore: 2.0}
)

// Classify maps a job's daily load weight (grams) and squatting duration
// (minutes per day) onto a burden level and its score band.
//
// The rules are evaluated top to bottom and the first match wins. Clauses
// mirror the rule table literally, including the ones implied by others
// (W≥3000 ∧ T≥120 under High); do not reorder or simplify them.
func Classify(loadWeightGrams, squattingMinutesPerDay float64) Result {
	w := nonNegative(loadWeightGrams)
	t := nonNegative(squattingMinutesPerDay)

	switch {
	case (w >= weightHeavy && t >= squatLong) ||
		(w >= weightHeavy && t >= squatModerate) ||
		(w >= weightModerate && t >= squatLong):
		return highBurden
	case (w >= weightHeavy && t >= squatShort) ||
		(w >= weightModerate && t >= squatModerate) ||
		(w < weightModerate && t >= squatModerate):
		return mediumHighBurden
	case (w >= weightHeavy && t < squatShort) ||
		(w >= weightModerate && t < squatModerate) ||
		(w < weightModerate && t >= squatShort):
		return mediumLowBurden
	default:
		return lowBurden
	}
}

// ClassifyJob is Classify applied to a Job.
func ClassifyJob(j Job) Result {
	return Classify(j.LoadWeightGrams, j.SquattingMinutesPerDay)
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// CoerceNumber parses form input leniently: surrounding space is ignored,
// a trailing non-numeric suffix ("2500g") is dropped, and anything that
// does not start with a number yields 0. Negative, NaN and infinite values
// also yield 0.
func CoerceNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return nonNegative(v)
	}
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return nonNegative(v)
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
