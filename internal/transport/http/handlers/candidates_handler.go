package handlers

import (
	"net/http"

	matchingsvc "github.com/irfndi/meets-match-sub000/internal/services/matching"
	"github.com/irfndi/meets-match-sub000/internal/transport/http/dto"
	httperrors "github.com/irfndi/meets-match-sub000/internal/transport/http/errors"
)

type CandidatesHandler struct {
	service *matchingsvc.Service
}

func NewCandidatesHandler(service *matchingsvc.Service) *CandidatesHandler {
	return &CandidatesHandler{service: service}
}

func (h *CandidatesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "user identity required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHING_SERVICE_UNAVAILABLE", "matching service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 10)
	offset := parseIntOrDefault(r.URL.Query().Get("offset"), 0)
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	profiles, err := h.service.Candidates(r.Context(), userID, limit, offset)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load candidates")
		return
	}

	candidates := make([]dto.CandidateResponse, 0, len(profiles))
	for _, p := range profiles {
		candidates = append(candidates, dto.NewCandidateResponse(p))
	}

	httperrors.Write(w, http.StatusOK, dto.CandidatesResponse{
		Candidates: candidates,
		Limit:      limit,
		Offset:     offset,
	})
}
