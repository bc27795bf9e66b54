package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/irfndi/meets-match-sub000/internal/domain/model"
	redrepo "github.com/irfndi/meets-match-sub000/internal/repo/redis"
)

const (
	likedTTL     = 10 * time.Minute
	dislikedTTL  = 24 * time.Hour
	dislikersTTL = 10 * time.Minute
)

type ActionStore interface {
	LikedTargets(ctx context.Context, actorID string) ([]string, error)
	RecentDislikedTargets(ctx context.Context, actorID string, since time.Time) ([]string, error)
	Dislikers(ctx context.Context, targetID string) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Dependencies struct {
	Actions ActionStore
	Cache   Cache
	Logger  *zap.Logger
}

// Service exposes the derived exclusion sets built from the action log.
// Sets are cached as JSON arrays so an empty result is still a cache hit.
type Service struct {
	actions ActionStore
	cache   Cache
	logger  *zap.Logger

	now func() time.Time
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Actions == nil {
		return nil, fmt.Errorf("actions store is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		actions: deps.Actions,
		cache:   deps.Cache,
		logger:  deps.Logger,
		now:     time.Now,
	}, nil
}

// LikedIDs returns every user the actor has ever liked.
func (s *Service) LikedIDs(ctx context.Context, actorID string) ([]string, error) {
	return s.cachedSet(ctx, redrepo.LikedSetKey(actorID), likedTTL, func(ctx context.Context) ([]string, error) {
		return s.actions.LikedTargets(ctx, actorID)
	})
}

// DislikedIDs returns users the actor disliked within the re-show window.
func (s *Service) DislikedIDs(ctx context.Context, actorID string) ([]string, error) {
	since := s.now().Add(-model.DislikeWindow)
	return s.cachedSet(ctx, redrepo.DislikedSetKey(actorID), dislikedTTL, func(ctx context.Context) ([]string, error) {
		return s.actions.RecentDislikedTargets(ctx, actorID, since)
	})
}

// DislikingMeIDs returns users who have disliked the given user, without a
// window: someone who said no is never shown the asker again.
func (s *Service) DislikingMeIDs(ctx context.Context, userID string) ([]string, error) {
	return s.cachedSet(ctx, redrepo.DislikersSetKey(userID), dislikersTTL, func(ctx context.Context) ([]string, error) {
		return s.actions.Dislikers(ctx, userID)
	})
}

// InvalidateActor drops the actor-side cached sets after a recorded action.
func (s *Service) InvalidateActor(ctx context.Context, actorID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx,
		redrepo.LikedSetKey(actorID),
		redrepo.DislikedSetKey(actorID),
		redrepo.CandidatesKey(actorID),
	)
}

// InvalidateTarget drops the target-side cached sets.
func (s *Service) InvalidateTarget(ctx context.Context, targetID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx,
		redrepo.DislikersSetKey(targetID),
		redrepo.CandidatesKey(targetID),
	)
}

// cachedSet serves the set from cache when possible and falls back to the
// durable query on a miss or a cache failure. Durable results, including
// empty ones, are written back with the set's TTL.
func (s *Service) cachedSet(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]string, error)) ([]string, error) {
	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("ledger cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			ids, decodeErr := decodeIDs(raw)
			if decodeErr == nil {
				return ids, nil
			}
			s.logger.Warn("ledger cache entry corrupt", zap.String("key", key), zap.Error(decodeErr))
		}
	}

	ids, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}

	if s.cache != nil {
		raw, err := encodeIDs(ids)
		if err != nil {
			s.logger.Warn("ledger cache encode failed", zap.String("key", key), zap.Error(err))
			return ids, nil
		}
		if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
			s.logger.Warn("ledger cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return ids, nil
}

func encodeIDs(ids []string) (string, error) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode id set: %w", err)
	}
	return string(raw), nil
}

func decodeIDs(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode id set: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
