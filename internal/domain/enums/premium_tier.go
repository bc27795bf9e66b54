package enums

import "strings"

type PremiumTier string

const (
	TierFree  PremiumTier = "free"
	TierPro   PremiumTier = "pro"
	TierAdmin PremiumTier = "admin"
)

func ParsePremiumTier(input string) (PremiumTier, bool) {
	switch PremiumTier(strings.ToLower(strings.TrimSpace(input))) {
	case TierFree:
		return TierFree, true
	case TierPro:
		return TierPro, true
	case TierAdmin:
		return TierAdmin, true
	default:
		return "", false
	}
}
