package rules

import (
	"math"

	"github.com/irfndi/meets-match-sub000/internal/domain/model"
)

// Compatibility weights. Fixed design constants, not user-configurable.
const (
	weightDistance  = 0.4
	weightAge       = 0.2
	weightGender    = 0.2
	weightInterests = 0.2
)

// CompatibilityScore computes the weighted compatibility of two profiles in
// [0, 1]. Pairs missing preferences or coordinates score 0; callers filter
// those out up front, this is the backstop. The result is symmetric and
// rounded to 4 decimal places.
func CompatibilityScore(a, b *model.UserProfile) float64 {
	if !a.Scoreable() || !b.Scoreable() {
		return 0
	}

	total := weightDistance * distanceComponent(a, b)
	total += weightAge * ageComponent(a, b)
	total += weightGender * genderComponent(a, b)
	total += weightInterests * interestComponent(a.Interests, b.Interests)

	return math.Round(total*10000) / 10000
}

// Linear decay to 0 at the larger of the two stated distance preferences.
func distanceComponent(a, b *model.UserProfile) float64 {
	maxPref := a.Preferences.MaxDistanceKM
	if b.Preferences.MaxDistanceKM > maxPref {
		maxPref = b.Preferences.MaxDistanceKM
	}
	if maxPref <= 0 {
		return 0
	}

	distance := DistanceKM(a.Location.Lat, a.Location.Lon, b.Location.Lat, b.Location.Lon)
	value := 1 - distance/float64(maxPref)
	if value < 0 {
		return 0
	}
	return value
}

// Full credit when both ages satisfy the other side's window, half credit
// when exactly one does.
func ageComponent(a, b *model.UserProfile) float64 {
	aFits := b.Preferences.AgeInRange(a.Age)
	bFits := a.Preferences.AgeInRange(b.Age)
	switch {
	case aFits && bFits:
		return 1
	case aFits || bFits:
		return 0.5
	default:
		return 0
	}
}

// All-or-nothing: both directions must accept. Unknown gender fails both.
func genderComponent(a, b *model.UserProfile) float64 {
	if a.Gender == nil || b.Gender == nil {
		return 0
	}
	if a.Preferences.GenderPreference.Accepts(*b.Gender) && b.Preferences.GenderPreference.Accepts(*a.Gender) {
		return 1
	}
	return 0
}

// Overlap proportional to the smaller interest set.
func interestComponent(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, interest := range a {
		set[interest] = struct{}{}
	}

	shared := 0
	for _, interest := range b {
		if _, ok := set[interest]; ok {
			shared++
		}
	}

	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(shared) / float64(smaller)
}
