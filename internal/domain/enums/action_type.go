package enums

import "strings"

type ActionType string

const (
	ActionLike    ActionType = "LIKE"
	ActionDislike ActionType = "DISLIKE"
)

func ParseActionType(input string) (ActionType, bool) {
	switch ActionType(strings.ToUpper(strings.TrimSpace(input))) {
	case ActionLike:
		return ActionLike, true
	case ActionDislike:
		return ActionDislike, true
	default:
		return "", false
	}
}
