package enums

import "strings"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func ParseGender(input string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(input))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	default:
		return "", false
	}
}

type GenderPreference string

const (
	PreferMale   GenderPreference = "male"
	PreferFemale GenderPreference = "female"
	PreferAny    GenderPreference = "any"
)

func ParseGenderPreference(input string) (GenderPreference, bool) {
	switch GenderPreference(strings.ToLower(strings.TrimSpace(input))) {
	case PreferMale:
		return PreferMale, true
	case PreferFemale:
		return PreferFemale, true
	case PreferAny:
		return PreferAny, true
	default:
		return "", false
	}
}

// Accepts reports whether a candidate of the given gender satisfies the preference.
func (p GenderPreference) Accepts(g Gender) bool {
	return p == PreferAny || string(p) == string(g)
}
