package burden

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

const (
	secondsPerDay = 24 * 60 * 60
	daysPerYear   = 365.25
)

// DurationSource tells whether a Duration was derived from dates or entered
// manually.
type DurationSource string

const (
	SourceComputed   DurationSource = "computed"
	SourceOverridden DurationSource = "overridden"
)

// Duration is an employment duration in fractional years, tagged with its
// origin. Construct values with Computed or Overridden.
type Duration struct {
	years  float64
	source DurationSource
	// Whole years and months as entered; only meaningful for overrides.
	wholeYears, months int
}

// Computed wraps a date-derived period.
func Computed(years float64) Duration {
	return Duration{years: nonNegative(years), source: SourceComputed}
}

// Overridden wraps a manually entered period of y years and m months.
// Months of 12 or more carry into years.
func Overridden(y, m int) Duration {
	if y < 0 {
		y = 0
	}
	if m < 0 {
		m = 0
	}
	y, m = y+m/12, m%12
	return Duration{
		years:      float64(y) + float64(m)/12,
		source:     SourceOverridden,
		wholeYears: y,
		months:     m,
	}
}

// Years resolves the duration to a plain number of years.
func (d Duration) Years() float64 { return d.years }

// Source returns whether d was computed or overridden.
func (d Duration) Source() DurationSource {
	if d.source == "" {
		return SourceComputed
	}
	return d.source
}

// IsOverride reports whether d was entered manually.
func (d Duration) IsOverride() bool { return d.source == SourceOverridden }

// YearsMonths splits d into whole years and remaining months. Overrides
// return the values as entered; computed durations round years×12 to the
// nearest month first.
func (d Duration) YearsMonths() (int, int) {
	if d.IsOverride() {
		return d.wholeYears, d.months
	}
	total := int(math.Round(d.years * 12))
	return total / 12, total % 12
}

// String renders d as "<Y> years <M> months".
func (d Duration) String() string {
	y, m := d.YearsMonths()
	return fmt.Sprintf("%d years %d months", y, m)
}

// WorkPeriodYears returns the elapsed time between start and end in Julian
// years (days / 365.25). It returns 0 when either date is absent (zero) or
// when end precedes start.
func WorkPeriodYears(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	seconds := end.Unix() - start.Unix()
	if seconds <= 0 {
		return 0
	}
	return float64(seconds) / secondsPerDay / daysPerYear
}

// FormatWorkPeriod renders the period between start and end as
// "<Y> years <M> months", or "-" when either date is absent.
func FormatWorkPeriod(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return "-"
	}
	return Computed(WorkPeriodYears(start, end)).String()
}

var (
	overrideYears  = regexp.MustCompile(`(?i)(?:^|[^\d.,])(\d+)\s*(년|years?|yrs?|y)`)
	overrideMonths = regexp.MustCompile(`(?i)(?:^|[^\d.,])(\d+)\s*(개월|months?|mos?|m)`)
	fractional     = regexp.MustCompile(`\d[.,]\d`)
)

// ParseOverride reads a manually entered period such as "3 years 6 months",
// "3년 6개월" or "3y 6m". It reports false when the text names neither
// years nor months, when both are zero, or when any number has a fractional
// part ("1.5 years").
func ParseOverride(s string) (Duration, bool) {
	if fractional.MatchString(s) {
		return Duration{}, false
	}
	y := firstInt(overrideYears, s)
	m := firstInt(overrideMonths, s)
	if y == 0 && m == 0 {
		return Duration{}, false
	}
	return Overridden(y, m), true
}

func firstInt(re *regexp.Regexp, s string) int {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return n
}
