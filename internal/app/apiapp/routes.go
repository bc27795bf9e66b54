package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	actionssvc "github.com/irfndi/meets-match-sub000/internal/services/actions"
	matchessvc "github.com/irfndi/meets-match-sub000/internal/services/matches"
	matchingsvc "github.com/irfndi/meets-match-sub000/internal/services/matching"
	profilessvc "github.com/irfndi/meets-match-sub000/internal/services/profiles"
	httperrors "github.com/irfndi/meets-match-sub000/internal/transport/http/errors"
	"github.com/irfndi/meets-match-sub000/internal/transport/http/handlers"
)

type Dependencies struct {
	MatchingService *matchingsvc.Service
	ActionsService  *actionssvc.Service
	MatchesService  *matchessvc.Service
	ProfilesService *profilessvc.Service
	Logger          *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	candidatesHandler := handlers.NewCandidatesHandler(deps.MatchingService)
	actionsHandler := handlers.NewActionsHandler(deps.ActionsService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchesService)
	profileHandler := handlers.NewProfileHandler(deps.ProfilesService)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httperrors.Write(w, http.StatusOK, struct {
			Status string `json:"status"`
		}{Status: "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/candidates", candidatesHandler.Handle)
		r.Post("/actions", actionsHandler.Handle)
		r.Get("/matches", matchesHandler.Handle)
		r.Get("/profile", profileHandler.HandleGet)
		r.Put("/profile/preferences", profileHandler.HandleUpdatePreferences)
		r.Put("/profile/location", profileHandler.HandleUpdateLocation)
		r.Post("/profile/sleep", profileHandler.HandleSleep)
	})
}
