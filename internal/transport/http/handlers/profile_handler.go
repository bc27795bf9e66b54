package handlers

import (
	"errors"
	"net/http"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
	"github.com/irfndi/meets-match-sub000/internal/domain/model"
	"github.com/irfndi/meets-match-sub000/internal/domain/rules"
	pgrepo "github.com/irfndi/meets-match-sub000/internal/repo/postgres"
	profilessvc "github.com/irfndi/meets-match-sub000/internal/services/profiles"
	"github.com/irfndi/meets-match-sub000/internal/transport/http/dto"
	httperrors "github.com/irfndi/meets-match-sub000/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilessvc.Service
}

func NewProfileHandler(service *profilessvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load profile")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewCandidateResponse(profile))
}

func (h *ProfileHandler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req dto.PreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	pref, ok := enums.ParseGenderPreference(req.GenderPreference)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown gender preference")
		return
	}

	err := h.service.UpdatePreferences(r.Context(), userID, model.Preferences{
		MinAge:           req.MinAge,
		MaxAge:           req.MaxAge,
		GenderPreference: pref,
		MaxDistanceKM:    req.MaxDistanceKM,
	})
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrInvalidPreferences):
			writeBadRequest(w, "VALIDATION_ERROR", "preferences out of bounds")
		case errors.Is(err, pgrepo.ErrProfileNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update preferences")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ProfileHandler) HandleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req dto.LocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	err := h.service.UpdateLocation(r.Context(), userID, model.Location{
		Lat:     req.Lat,
		Lon:     req.Lon,
		City:    req.City,
		Country: req.Country,
	})
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrProfileNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		case errors.Is(err, profilessvc.ErrInvalidLocation):
			writeBadRequest(w, "VALIDATION_ERROR", "coordinates out of range")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update location")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ProfileHandler) HandleSleep(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req dto.SleepRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.service.SetSleeping(r.Context(), userID, req.Sleeping); err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to update sleep state")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ProfileHandler) identify(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "user identity required")
		return "", false
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return "", false
	}
	return userID, true
}
