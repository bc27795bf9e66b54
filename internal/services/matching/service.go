package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/irfndi/meets-match-sub000/internal/domain/model"
	"github.com/irfndi/meets-match-sub000/internal/domain/rules"
	pgrepo "github.com/irfndi/meets-match-sub000/internal/repo/postgres"
	redrepo "github.com/irfndi/meets-match-sub000/internal/repo/redis"
)

const (
	candidatesTTL = 30 * time.Minute

	defaultLimit = 10
	maxLimit     = 50

	fetchBatchSize = 50
)

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.UserProfile, error)
	GetMany(ctx context.Context, userIDs []string) ([]model.UserProfile, error)
	ListCandidateIDs(ctx context.Context, q pgrepo.CandidatePoolQuery) ([]string, error)
}

type ExclusionSets interface {
	LikedIDs(ctx context.Context, actorID string) ([]string, error)
	DislikedIDs(ctx context.Context, actorID string) ([]string, error)
	DislikingMeIDs(ctx context.Context, userID string) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type PhotoSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Dependencies struct {
	Profiles ProfileStore
	Ledger   ExclusionSets
	Cache    Cache
	Photos   PhotoSigner
	Logger   *zap.Logger
}

type Config struct {
	PoolLimit        int
	FetchConcurrency int
	StoreTimeout     time.Duration
	PhotoURLTTL      time.Duration
}

// Service ranks candidate profiles for a requester. Listing is best-effort:
// infrastructure failures degrade to an empty result instead of an error.
type Service struct {
	profiles ProfileStore
	ledger   ExclusionSets
	cache    Cache
	photos   PhotoSigner
	logger   *zap.Logger
	cfg      Config

	now func() time.Time
}

func NewService(deps Dependencies, cfg Config) (*Service, error) {
	if deps.Profiles == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("exclusion sets are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.PoolLimit <= 0 {
		cfg.PoolLimit = 1000
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 8
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 3 * time.Second
	}
	if cfg.PhotoURLTTL <= 0 {
		cfg.PhotoURLTTL = 5 * time.Minute
	}

	return &Service{
		profiles: deps.Profiles,
		ledger:   deps.Ledger,
		cache:    deps.Cache,
		photos:   deps.Photos,
		logger:   deps.Logger,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// Candidates returns at most limit ranked profiles for the requester,
// skipping the first offset entries of the ranking.
func (s *Service) Candidates(ctx context.Context, requesterID string, limit, offset int) ([]model.UserProfile, error) {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return []model.UserProfile{}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	requester, err := s.profiles.Get(ctx, requesterID)
	if err != nil {
		s.failOpen(requesterID, "load requester", err)
		return []model.UserProfile{}, nil
	}
	if !requester.Scoreable() {
		return []model.UserProfile{}, nil
	}

	if cached, ok := s.readCachedPage(ctx, requesterID, limit, offset); ok {
		return cached, nil
	}

	pool, err := s.rawPool(ctx, requesterID)
	if err != nil {
		s.failOpen(requesterID, "query candidate pool", err)
		return []model.UserProfile{}, nil
	}

	excluded, err := s.exclusionSet(ctx, requesterID)
	if err != nil {
		s.failOpen(requesterID, "load exclusion sets", err)
		return []model.UserProfile{}, nil
	}

	// Re-apply the exclusion sets against the coarse pool. The durable query
	// already filters, but the cached sets are fresher than a replica read.
	survivors := make([]string, 0, len(pool))
	for _, id := range pool {
		if _, skip := excluded[id]; skip {
			continue
		}
		survivors = append(survivors, id)
	}
	if len(survivors) == 0 {
		return []model.UserProfile{}, nil
	}

	scored := s.fetchAndScore(ctx, &requester, survivors)
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].poolIndex < scored[j].poolIndex
	})

	page := slicePage(scored, offset, limit)

	s.cachePage(ctx, requesterID, page, limit, offset)

	out := make([]model.UserProfile, 0, len(page))
	for _, c := range page {
		out = append(out, s.withSignedPhotos(ctx, c.profile))
	}
	return out, nil
}

type scoredCandidate struct {
	profile   model.UserProfile
	score     float64
	poolIndex int
}

func (s *Service) rawPool(ctx context.Context, requesterID string) ([]string, error) {
	return s.profiles.ListCandidateIDs(ctx, pgrepo.CandidatePoolQuery{
		RequesterID:   requesterID,
		DislikedSince: s.now().Add(-model.DislikeWindow),
		Limit:         s.cfg.PoolLimit,
	})
}

func (s *Service) exclusionSet(ctx context.Context, requesterID string) (map[string]struct{}, error) {
	liked, err := s.ledger.LikedIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("liked set: %w", err)
	}
	disliked, err := s.ledger.DislikedIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("disliked set: %w", err)
	}
	dislikers, err := s.ledger.DislikingMeIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("dislikers set: %w", err)
	}

	excluded := make(map[string]struct{}, len(liked)+len(disliked)+len(dislikers)+1)
	excluded[requesterID] = struct{}{}
	for _, id := range liked {
		excluded[id] = struct{}{}
	}
	for _, id := range disliked {
		excluded[id] = struct{}{}
	}
	for _, id := range dislikers {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}

// fetchAndScore resolves survivor profiles in bounded concurrent batches and
// scores them against the requester. A failed batch or an unscoreable profile
// is dropped, never fatal.
func (s *Service) fetchAndScore(ctx context.Context, requester *model.UserProfile, survivors []string) []scoredCandidate {
	poolIndex := make(map[string]int, len(survivors))
	for i, id := range survivors {
		poolIndex[id] = i
	}

	batches := make([][]string, 0, len(survivors)/fetchBatchSize+1)
	for start := 0; start < len(survivors); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(survivors) {
			end = len(survivors)
		}
		batches = append(batches, survivors[start:end])
	}

	results := make([][]model.UserProfile, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			profiles, err := s.profiles.GetMany(gctx, batch)
			if err != nil {
				s.logger.Warn("candidate batch fetch failed",
					zap.String("requester_id", requester.ID),
					zap.Int("batch_size", len(batch)),
					zap.Error(err))
				return nil
			}
			results[i] = profiles
			return nil
		})
	}
	_ = g.Wait()

	scored := make([]scoredCandidate, 0, len(survivors))
	for _, profiles := range results {
		for _, p := range profiles {
			idx, known := poolIndex[p.ID]
			if !known {
				continue
			}
			if !p.MatchEligible() || !p.Scoreable() {
				continue
			}
			scored = append(scored, scoredCandidate{
				profile:   p,
				score:     rules.CompatibilityScore(requester, &p),
				poolIndex: idx,
			})
		}
	}
	return scored
}

func slicePage(scored []scoredCandidate, offset, limit int) []scoredCandidate {
	if offset >= len(scored) {
		return nil
	}
	end := offset + limit
	if end > len(scored) {
		end = len(scored)
	}
	return scored[offset:end]
}

// cachedPage is the single cache entry per requester. It remembers which
// page it holds; a request for any other page recomputes from scratch and
// overwrites it.
type cachedPage struct {
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	IDs    []string `json:"ids"`
}

// readCachedPage serves a previously computed page without rescoring. A
// mismatched limit or offset is a miss. IDs that no longer resolve are
// dropped.
func (s *Service) readCachedPage(ctx context.Context, requesterID string, limit, offset int) ([]model.UserProfile, bool) {
	if s.cache == nil {
		return nil, false
	}

	key := redrepo.CandidatesKey(requesterID)
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("candidate cache read failed",
			zap.String("requester_id", requesterID),
			zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var page cachedPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		s.logger.Warn("candidate cache entry corrupt",
			zap.String("requester_id", requesterID),
			zap.Error(err))
		return nil, false
	}
	if page.Limit != limit || page.Offset != offset {
		return nil, false
	}
	if len(page.IDs) == 0 {
		return []model.UserProfile{}, true
	}

	profiles, err := s.profiles.GetMany(ctx, page.IDs)
	if err != nil {
		s.failOpen(requesterID, "resolve cached candidates", err)
		return []model.UserProfile{}, true
	}

	byID := make(map[string]model.UserProfile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	out := make([]model.UserProfile, 0, len(page.IDs))
	for _, id := range page.IDs {
		p, found := byID[id]
		if !found {
			continue
		}
		out = append(out, s.withSignedPhotos(ctx, p))
	}
	return out, true
}

func (s *Service) cachePage(ctx context.Context, requesterID string, page []scoredCandidate, limit, offset int) {
	if s.cache == nil {
		return
	}

	ids := make([]string, 0, len(page))
	for _, c := range page {
		ids = append(ids, c.profile.ID)
	}

	raw, err := json.Marshal(cachedPage{Limit: limit, Offset: offset, IDs: ids})
	if err != nil {
		s.logger.Warn("candidate cache encode failed",
			zap.String("requester_id", requesterID),
			zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, redrepo.CandidatesKey(requesterID), string(raw), candidatesTTL); err != nil {
		s.logger.Warn("candidate cache write failed",
			zap.String("requester_id", requesterID),
			zap.Error(err))
	}
}

// withSignedPhotos swaps storage keys for presigned URLs. A key that fails
// to sign is passed through untouched.
func (s *Service) withSignedPhotos(ctx context.Context, p model.UserProfile) model.UserProfile {
	if s.photos == nil || len(p.Photos) == 0 {
		return p
	}

	signed := make([]string, len(p.Photos))
	for i, key := range p.Photos {
		url, err := s.photos.PresignGet(ctx, key, s.cfg.PhotoURLTTL)
		if err != nil {
			s.logger.Warn("photo presign failed",
				zap.String("user_id", p.ID),
				zap.String("photo_key", key),
				zap.Error(err))
			signed[i] = key
			continue
		}
		signed[i] = url
	}
	p.Photos = signed
	return p
}

func (s *Service) failOpen(requesterID, step string, err error) {
	s.logger.Error("candidate listing degraded to empty",
		zap.String("requester_id", requesterID),
		zap.String("step", step),
		zap.Error(err))
}
