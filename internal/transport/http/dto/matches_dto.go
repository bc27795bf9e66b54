package dto

import (
	"time"

	"github.com/irfndi/meets-match-sub000/internal/domain/model"
)

type MatchResponse struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Matches []MatchResponse `json:"matches"`
}

func NewMatchesResponse(matches []model.Match) MatchesResponse {
	out := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchResponse{
			ID:        m.ID,
			User1ID:   m.User1ID,
			User2ID:   m.User2ID,
			CreatedAt: m.CreatedAt,
		})
	}
	return MatchesResponse{Matches: out}
}
