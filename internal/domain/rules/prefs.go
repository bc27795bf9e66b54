package rules

import (
	"errors"
	"fmt"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
	"github.com/irfndi/meets-match-sub000/internal/domain/model"
)

const (
	MinPreferenceAge = 10
	MaxPreferenceAge = 65
	MinDistanceKM    = 1
	MaxDistanceKM    = 500
)

var ErrInvalidPreferences = errors.New("invalid preferences")

// ValidatePreferences enforces the write-time bounds on preference fields.
// Invalid values are rejected before anything reaches the store.
func ValidatePreferences(p model.Preferences) error {
	if p.MinAge < MinPreferenceAge || p.MinAge > MaxPreferenceAge {
		return fmt.Errorf("min age %d out of [%d, %d]: %w", p.MinAge, MinPreferenceAge, MaxPreferenceAge, ErrInvalidPreferences)
	}
	if p.MaxAge < MinPreferenceAge || p.MaxAge > MaxPreferenceAge {
		return fmt.Errorf("max age %d out of [%d, %d]: %w", p.MaxAge, MinPreferenceAge, MaxPreferenceAge, ErrInvalidPreferences)
	}
	if p.MinAge > p.MaxAge {
		return fmt.Errorf("min age %d above max age %d: %w", p.MinAge, p.MaxAge, ErrInvalidPreferences)
	}
	if p.MaxDistanceKM < MinDistanceKM || p.MaxDistanceKM > MaxDistanceKM {
		return fmt.Errorf("max distance %d out of [%d, %d]: %w", p.MaxDistanceKM, MinDistanceKM, MaxDistanceKM, ErrInvalidPreferences)
	}
	if _, ok := enums.ParseGenderPreference(string(p.GenderPreference)); !ok {
		return fmt.Errorf("unknown gender preference %q: %w", p.GenderPreference, ErrInvalidPreferences)
	}
	return nil
}
