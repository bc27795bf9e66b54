package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
	actionssvc "github.com/irfndi/meets-match-sub000/internal/services/actions"
	"github.com/irfndi/meets-match-sub000/internal/transport/http/dto"
	httperrors "github.com/irfndi/meets-match-sub000/internal/transport/http/errors"
)

type ActionsHandler struct {
	service *actionssvc.Service
}

func NewActionsHandler(service *actionssvc.Service) *ActionsHandler {
	return &ActionsHandler{service: service}
}

func (h *ActionsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "user identity required")
		return
	}
	if h.service == nil {
		writeInternal(w, "ACTIONS_SERVICE_UNAVAILABLE", "actions service is unavailable")
		return
	}

	var req dto.ActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if strings.TrimSpace(req.TargetID) == "" || strings.TrimSpace(req.Action) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and action are required")
		return
	}

	action, ok := enums.ParseActionType(req.Action)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unsupported action")
		return
	}

	mutual, err := h.service.Record(r.Context(), userID, req.TargetID, action)
	if err != nil {
		switch {
		case errors.Is(err, actionssvc.ErrSelfAction):
			writeBadRequest(w, "VALIDATION_ERROR", "cannot act on yourself")
		case errors.Is(err, actionssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid action request")
		case errors.Is(err, actionssvc.ErrRateLimited):
			var rl *actionssvc.RateLimitError
			retryAfter := int64(0)
			if errors.As(err, &rl) {
				retryAfter = rl.RetryAfterSec
			}
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "RATE_LIMITED",
				Message:       "too many like actions, slow down",
				RetryAfterSec: retryAfter,
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to record action")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ActionResponse{
		OK:           true,
		MatchCreated: mutual,
	})
}
