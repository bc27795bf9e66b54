package model

import (
	"time"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
)

// DislikeWindow is how long a DISLIKE keeps its target hidden from the
// actor's candidate pool. After the window the target is eligible again.
const DislikeWindow = 72 * time.Hour

type Action struct {
	ActorID   string           `json:"actor_id"`
	TargetID  string           `json:"target_id"`
	Type      enums.ActionType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
}
