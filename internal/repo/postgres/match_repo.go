package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/irfndi/meets-match-sub000/internal/domain/model"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// CreateIfMutualLike creates a match when the target has already liked the
// actor. The pair is normalized so the smaller ID comes first; the unique
// constraint on (user1_id, user2_id) makes concurrent attempts idempotent.
func (r *MatchRepo) CreateIfMutualLike(ctx context.Context, tx pgx.Tx, actorID, targetID string) (bool, error) {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(targetID) == "" {
		return false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM actions
WHERE actor_id = $1 AND target_id = $2 AND action = 'LIKE'
LIMIT 1
`, targetID, actorID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	user1, user2 := model.NormalizePair(actorID, targetID)

	var matchID string
	err = tx.QueryRow(ctx, `
INSERT INTO matches (
	id,
	user1_id,
	user2_id,
	created_at
) VALUES ($1, $2, $3, NOW())
ON CONFLICT (user1_id, user2_id) DO NOTHING
RETURNING id
`, uuid.NewString(), user1, user2).Scan(&matchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Match already exists; the race loser reports mutual too.
			return true, nil
		}
		return false, fmt.Errorf("create match: %w", err)
	}

	return matchID != "", nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID string, limit int) ([]model.Match, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Match{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user1_id, user2_id, created_at
FROM matches
WHERE user1_id = $1 OR user2_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, limit)
	for rows.Next() {
		var item model.Match
		var createdAt time.Time
		if err := rows.Scan(&item.ID, &item.User1ID, &item.User2ID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		item.CreatedAt = createdAt
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}
