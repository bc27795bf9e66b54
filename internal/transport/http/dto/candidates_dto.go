package dto

import (
	"github.com/irfndi/meets-match-sub000/internal/domain/model"
)

type LocationResponse struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
}

type CandidateResponse struct {
	ID        string            `json:"id"`
	Age       *int              `json:"age,omitempty"`
	Gender    string            `json:"gender,omitempty"`
	Bio       string            `json:"bio,omitempty"`
	Interests []string          `json:"interests"`
	Photos    []string          `json:"photos"`
	Location  *LocationResponse `json:"location,omitempty"`
}

type CandidatesResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

func NewCandidateResponse(p model.UserProfile) CandidateResponse {
	resp := CandidateResponse{
		ID:        p.ID,
		Age:       p.Age,
		Bio:       p.Bio,
		Interests: p.Interests,
		Photos:    p.Photos,
	}
	if resp.Interests == nil {
		resp.Interests = []string{}
	}
	if resp.Photos == nil {
		resp.Photos = []string{}
	}
	if p.Gender != nil {
		resp.Gender = string(*p.Gender)
	}
	if p.Location != nil {
		resp.Location = &LocationResponse{
			Lat:     p.Location.Lat,
			Lon:     p.Location.Lon,
			City:    p.Location.City,
			Country: p.Location.Country,
		}
	}
	return resp
}
