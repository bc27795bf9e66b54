package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
)

type ActionRepo struct {
	pool *pgxpool.Pool
}

func NewActionRepo(pool *pgxpool.Pool) *ActionRepo {
	return &ActionRepo{pool: pool}
}

func (r *ActionRepo) Create(ctx context.Context, tx pgx.Tx, actorID, targetID string, action enums.ActionType, now time.Time) error {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(targetID) == "" {
		return fmt.Errorf("invalid action payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO actions (
	actor_id,
	target_id,
	action,
	created_at
) VALUES ($1, $2, $3, $4)
`, actorID, targetID, string(action), now.UTC()); err != nil {
		return fmt.Errorf("create action: %w", err)
	}

	return nil
}

// LikedTargets returns every user the actor has ever liked. Likes are
// permanent exclusions.
func (r *ActionRepo) LikedTargets(ctx context.Context, actorID string) ([]string, error) {
	return r.listTargets(ctx, `
SELECT DISTINCT target_id
FROM actions
WHERE actor_id = $1 AND action = 'LIKE'
`, actorID)
}

// RecentDislikedTargets returns users the actor disliked at or after the
// given cutoff.
func (r *ActionRepo) RecentDislikedTargets(ctx context.Context, actorID string, since time.Time) ([]string, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, fmt.Errorf("actor id is required")
	}
	if r.pool == nil {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT DISTINCT target_id
FROM actions
WHERE actor_id = $1 AND action = 'DISLIKE' AND created_at > $2
`, actorID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("list recent disliked targets: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

// Dislikers returns every user who has disliked the target, with no expiry.
func (r *ActionRepo) Dislikers(ctx context.Context, targetID string) ([]string, error) {
	if strings.TrimSpace(targetID) == "" {
		return nil, fmt.Errorf("target id is required")
	}
	if r.pool == nil {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT DISTINCT actor_id
FROM actions
WHERE target_id = $1 AND action = 'DISLIKE'
`, targetID)
	if err != nil {
		return nil, fmt.Errorf("list dislikers: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

func (r *ActionRepo) listTargets(ctx context.Context, query, actorID string) ([]string, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, fmt.Errorf("actor id is required")
	}
	if r.pool == nil {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("list action targets: %w", err)
	}
	defer rows.Close()

	return collectIDs(rows)
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate user ids: %w", rows.Err())
	}
	return ids, nil
}
