package handlers

import (
	"net/http"

	matchessvc "github.com/irfndi/meets-match-sub000/internal/services/matches"
	"github.com/irfndi/meets-match-sub000/internal/transport/http/dto"
	httperrors "github.com/irfndi/meets-match-sub000/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "user identity required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 20)

	matches, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewMatchesResponse(matches))
}
