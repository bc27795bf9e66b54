package model

import (
	"strings"
	"time"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
)

const (
	MaxBioLength = 300
	MaxInterests = 10
	MaxPhotos    = 5
)

type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

type Preferences struct {
	MinAge           int                    `json:"min_age"`
	MaxAge           int                    `json:"max_age"`
	GenderPreference enums.GenderPreference `json:"gender_preference"`
	MaxDistanceKM    int                    `json:"max_distance_km"`
	Tier             enums.PremiumTier      `json:"premium_tier"`
}

// AgeInRange reports whether the given age (nil means unknown) falls inside
// the preferred [MinAge, MaxAge] window.
func (p Preferences) AgeInRange(age *int) bool {
	if age == nil {
		return false
	}
	return *age >= p.MinAge && *age <= p.MaxAge
}

type UserProfile struct {
	ID                string        `json:"id"`
	Age               *int          `json:"age"`
	Gender            *enums.Gender `json:"gender"`
	Bio               string        `json:"bio"`
	Interests         []string      `json:"interests"`
	Photos            []string      `json:"photos"`
	Location          *Location     `json:"location"`
	Preferences       *Preferences  `json:"preferences"`
	IsActive          bool          `json:"is_active"`
	IsSleeping        bool          `json:"is_sleeping"`
	IsProfileComplete bool          `json:"is_profile_complete"`
	LastActive        time.Time     `json:"last_active"`
}

// Scoreable reports whether the profile carries everything the compatibility
// scorer needs. Profiles failing this check score 0 against any counterpart.
func (u *UserProfile) Scoreable() bool {
	return u != nil && u.Preferences != nil && u.Location != nil
}

// MatchEligible reports whether the profile may appear in candidate pools.
func (u *UserProfile) MatchEligible() bool {
	return u != nil && u.IsProfileComplete && u.IsActive && !u.IsSleeping
}

// NormalizeInterests lowercases, trims, deduplicates and caps an interest
// list. Order of first appearance is preserved.
func NormalizeInterests(interests []string) []string {
	out := make([]string, 0, len(interests))
	seen := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		value := strings.ToLower(strings.TrimSpace(interest))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
		if len(out) == MaxInterests {
			break
		}
	}
	return out
}
