package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
	"github.com/irfndi/meets-match-sub000/internal/domain/model"
	"github.com/irfndi/meets-match-sub000/internal/domain/rules"
	redrepo "github.com/irfndi/meets-match-sub000/internal/repo/redis"
)

var ErrInvalidLocation = errors.New("invalid coordinates")

type Store interface {
	Get(ctx context.Context, userID string) (model.UserProfile, error)
	GetMany(ctx context.Context, userIDs []string) ([]model.UserProfile, error)
	UpdatePreferences(ctx context.Context, userID string, p model.Preferences) error
	SaveLocation(ctx context.Context, userID string, loc model.Location, at time.Time) error
	SetSleeping(ctx context.Context, userID string, sleeping bool) error
}

type CacheDropper interface {
	Delete(ctx context.Context, keys ...string) error
}

type Dependencies struct {
	Store  Store
	Cache  CacheDropper
	Logger *zap.Logger
}

// Service is the user directory. Writes that change how a user ranks or
// filters candidates drop that user's cached candidate page.
type Service struct {
	store  Store
	cache  CacheDropper
	logger *zap.Logger

	now func() time.Time
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		store:  deps.Store,
		cache:  deps.Cache,
		logger: deps.Logger,
		now:    time.Now,
	}, nil
}

func (s *Service) Get(ctx context.Context, userID string) (model.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.UserProfile{}, fmt.Errorf("user id is required")
	}
	return s.store.Get(ctx, userID)
}

// GetMany resolves profiles best-effort, omitting IDs that do not exist.
func (s *Service) GetMany(ctx context.Context, userIDs []string) ([]model.UserProfile, error) {
	if len(userIDs) == 0 {
		return []model.UserProfile{}, nil
	}
	return s.store.GetMany(ctx, userIDs)
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, p model.Preferences) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if p.Tier == "" {
		p.Tier = enums.TierFree
	}
	if err := rules.ValidatePreferences(p); err != nil {
		return err
	}
	if err := s.store.UpdatePreferences(ctx, userID, p); err != nil {
		return err
	}

	s.dropCandidateCache(ctx, userID)
	return nil
}

func (s *Service) UpdateLocation(ctx context.Context, userID string, loc model.Location) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if !rules.ValidateCoordinates(loc.Lat, loc.Lon) {
		return fmt.Errorf("coordinates (%f, %f) out of range: %w", loc.Lat, loc.Lon, ErrInvalidLocation)
	}
	if err := s.store.SaveLocation(ctx, userID, loc, s.now()); err != nil {
		return err
	}

	s.dropCandidateCache(ctx, userID)
	return nil
}

func (s *Service) SetSleeping(ctx context.Context, userID string, sleeping bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	return s.store.SetSleeping(ctx, userID, sleeping)
}

// dropCandidateCache forces the next candidate request to re-rank. A cache
// failure only shortens the staleness window, so it is not surfaced.
func (s *Service) dropCandidateCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, redrepo.CandidatesKey(userID)); err != nil {
		s.logger.Warn("candidate cache drop failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
