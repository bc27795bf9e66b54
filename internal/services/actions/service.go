package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
)

var (
	ErrValidation  = errors.New("invalid action request")
	ErrSelfAction  = errors.New("actor and target must differ")
	ErrRateLimited = errors.New("like rate limit exceeded")
)

// RateLimitError carries the retry hint alongside the ErrRateLimited kind.
type RateLimitError struct {
	RetryAfterSec int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("like rate limit exceeded, retry in %ds", e.RetryAfterSec)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// TxRunner executes fn inside a single durable-store transaction.
type TxRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

type ActionWriter interface {
	Create(ctx context.Context, tx pgx.Tx, actorID, targetID string, action enums.ActionType, now time.Time) error
}

type MatchCreator interface {
	CreateIfMutualLike(ctx context.Context, tx pgx.Tx, actorID, targetID string) (bool, error)
}

type Invalidator interface {
	InvalidateActor(ctx context.Context, actorID string) error
	InvalidateTarget(ctx context.Context, targetID string) error
}

type LikeGate interface {
	AllowLike(ctx context.Context, userID string) (int64, bool, error)
}

type Dependencies struct {
	Tx      TxRunner
	Actions ActionWriter
	Matches MatchCreator
	Ledger  Invalidator
	Limiter LikeGate
	Logger  *zap.Logger
}

// Service records like/dislike actions and detects mutual matches. The
// action write is the source of truth: write failures propagate, cache
// invalidation failures do not.
type Service struct {
	runTx   TxRunner
	actions ActionWriter
	matches MatchCreator
	ledger  Invalidator
	limiter LikeGate
	logger  *zap.Logger

	now func() time.Time
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if deps.Actions == nil {
		return nil, fmt.Errorf("action writer is required")
	}
	if deps.Matches == nil {
		return nil, fmt.Errorf("match creator is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		runTx:   deps.Tx,
		actions: deps.Actions,
		matches: deps.Matches,
		ledger:  deps.Ledger,
		limiter: deps.Limiter,
		logger:  deps.Logger,
		now:     time.Now,
	}, nil
}

// Record writes an action and reports whether it completed a mutual match.
func (s *Service) Record(ctx context.Context, actorID, targetID string, action enums.ActionType) (bool, error) {
	actorID = strings.TrimSpace(actorID)
	targetID = strings.TrimSpace(targetID)
	if actorID == "" || targetID == "" {
		return false, fmt.Errorf("actor and target ids are required: %w", ErrValidation)
	}
	if actorID == targetID {
		return false, ErrSelfAction
	}
	if action != enums.ActionLike && action != enums.ActionDislike {
		return false, fmt.Errorf("unknown action type %q: %w", action, ErrValidation)
	}

	if action == enums.ActionLike && s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowLike(ctx, actorID)
		if err != nil {
			// A broken limiter must not block actions.
			s.logger.Warn("like rate check failed",
				zap.String("actor_id", actorID),
				zap.Error(err))
		} else if !allowed {
			return false, &RateLimitError{RetryAfterSec: retryAfter}
		}
	}

	mutual := false
	err := s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.actions.Create(ctx, tx, actorID, targetID, action, s.now()); err != nil {
			return fmt.Errorf("write action: %w", err)
		}
		if action == enums.ActionLike {
			matched, err := s.matches.CreateIfMutualLike(ctx, tx, actorID, targetID)
			if err != nil {
				return fmt.Errorf("check mutual like: %w", err)
			}
			mutual = matched
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.invalidate(ctx, actorID, targetID, action, mutual)

	return mutual, nil
}

// invalidate clears the actor's cached view after every action. The target's
// view changes only when they were disliked or just matched.
func (s *Service) invalidate(ctx context.Context, actorID, targetID string, action enums.ActionType, mutual bool) {
	if s.ledger == nil {
		return
	}

	if err := s.ledger.InvalidateActor(ctx, actorID); err != nil {
		s.logger.Warn("actor cache invalidation failed",
			zap.String("actor_id", actorID),
			zap.Error(err))
	}

	if action == enums.ActionDislike || mutual {
		if err := s.ledger.InvalidateTarget(ctx, targetID); err != nil {
			s.logger.Warn("target cache invalidation failed",
				zap.String("target_id", targetID),
				zap.Error(err))
		}
	}
}
