package burden

import "math"

// baselineAge is the age below or at which no occupational contribution is
// attributed; the excess over it is the non-occupational baseline term.
const baselineAge = 30

// AgeFactor returns age − 30.
func AgeFactor(age int) float64 {
	return float64(age - baselineAge)
}

// Relatedness aggregates the burden and period of every job with the
// patient's age into a work-relatedness percentage range:
//
//	sumMin = Σ (minScore − 1) × years
//	sumMax = Σ (maxScore − 1) × years
//	min%   = max(0, sumMin / (ageFactor + sumMin) × 100)
//	max%   = max(0, sumMax / (ageFactor + sumMax) × 100)
//
// The range is zero when there are no jobs or age ≤ 30.
func Relatedness(jobs []Job, age int) Range {
	if len(jobs) == 0 || age <= baselineAge {
		return Range{}
	}

	var sumMin, sumMax float64
	for _, j := range jobs {
		b := ClassifyJob(j)
		p := j.Period().Years()
		sumMin += (b.MinScore - 1) * p
		sumMax += (b.MaxScore - 1) * p
	}

	af := AgeFactor(age)
	return Range{
		Min: share(sumMin, af),
		Max: share(sumMax, af),
	}
}

// share computes max(0, sum/(af+sum)×100), degrading to 0 instead of
// producing NaN or ±Inf.
func share(sum, af float64) float64 {
	denom := af + sum
	if denom == 0 {
		return 0
	}
	v := sum / denom * 100
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// sufficiencyThreshold is the midpoint percentage at or above which the
// cumulative burden is judged sufficient.
const sufficiencyThreshold = 50.0

// CumulativeVerdict judges the cumulative burden from the unrounded
// midpoint of r. Values are not rounded to one decimal first, so
// Range{49.96, 49.96} is Insufficient even though it displays as 50.0.
func CumulativeVerdict(r Range) Verdict {
	if r.Midpoint() >= sufficiencyThreshold {
		return Sufficient
	}
	return Insufficient
}
