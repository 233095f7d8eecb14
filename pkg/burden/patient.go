package burden

import (
	"math"
	"time"
)

// AgeAt returns the patient's age in whole years on the reference date,
// truncating on the calendar: the year count drops by one until the
// birthday has been reached in the reference year. Absent dates, or a
// reference date before birth, yield 0.
func AgeAt(birth, reference time.Time) int {
	if birth.IsZero() || reference.IsZero() {
		return 0
	}
	age := reference.Year() - birth.Year()
	if reference.Month() < birth.Month() ||
		(reference.Month() == birth.Month() && reference.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// BMI returns weight / height² with height in centimetres and weight in
// kilograms, rounded to one decimal. Missing or non-positive inputs yield 0.
func BMI(heightCM, weightKG float64) float64 {
	h := nonNegative(heightCM)
	w := nonNegative(weightKG)
	if h == 0 || w == 0 {
		return 0
	}
	m := h / 100
	return Round1(w / (m * m))
}

// Round1 rounds v to one decimal place. It is the presentation boundary for
// relatedness percentages.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
