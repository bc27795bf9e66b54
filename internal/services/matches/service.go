package matches

import (
	"context"
	"fmt"
	"strings"

	"github.com/irfndi/meets-match-sub000/internal/domain/model"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Store interface {
	ListForUser(ctx context.Context, userID string, limit int) ([]model.Match, error)
}

type Service struct {
	store Store
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("match store is required")
	}
	return &Service{store: store}, nil
}

// List returns the user's matches, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]model.Match, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	matches, err := s.store.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []model.Match{}
	}
	return matches, nil
}
