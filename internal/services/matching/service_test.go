package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
	"github.com/irfndi/meets-match-sub000/internal/domain/model"
	pgrepo "github.com/irfndi/meets-match-sub000/internal/repo/postgres"
	redrepo "github.com/irfndi/meets-match-sub000/internal/repo/redis"
)

type stubProfileStore struct {
	profiles map[string]model.UserProfile
	pool     []string

	getErr  error
	listErr error
	manyErr error

	getManyCalls int
	listCalls    int
}

func (s *stubProfileStore) Get(_ context.Context, userID string) (model.UserProfile, error) {
	if s.getErr != nil {
		return model.UserProfile{}, s.getErr
	}
	p, ok := s.profiles[userID]
	if !ok {
		return model.UserProfile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func (s *stubProfileStore) GetMany(_ context.Context, userIDs []string) ([]model.UserProfile, error) {
	s.getManyCalls++
	if s.manyErr != nil {
		return nil, s.manyErr
	}
	out := make([]model.UserProfile, 0, len(userIDs))
	for _, id := range userIDs {
		if p, ok := s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProfileStore) ListCandidateIDs(_ context.Context, _ pgrepo.CandidatePoolQuery) ([]string, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.pool, nil
}

type stubLedger struct {
	liked     []string
	disliked  []string
	dislikers []string
	err       error
}

func (s *stubLedger) LikedIDs(context.Context, string) ([]string, error) {
	return s.liked, s.err
}

func (s *stubLedger) DislikedIDs(context.Context, string) ([]string, error) {
	return s.disliked, s.err
}

func (s *stubLedger) DislikingMeIDs(context.Context, string) ([]string, error) {
	return s.dislikers, s.err
}

func intp(v int) *int { return &v }

func genderp(g enums.Gender) *enums.Gender { return &g }

func testProfile(id string, age int, gender enums.Gender, lat, lon float64, interests ...string) model.UserProfile {
	return model.UserProfile{
		ID:        id,
		Age:       intp(age),
		Gender:    genderp(gender),
		Interests: interests,
		Photos:    []string{id + "/photo-1.jpg"},
		Location:  &model.Location{Lat: lat, Lon: lon, City: "Jakarta", Country: "ID"},
		Preferences: &model.Preferences{
			MinAge:           18,
			MaxAge:           60,
			GenderPreference: enums.PreferAny,
			MaxDistanceKM:    100,
			Tier:             enums.TierFree,
		},
		IsActive:          true,
		IsProfileComplete: true,
		LastActive:        time.Now(),
	}
}

func newTestService(t *testing.T, store *stubProfileStore, ledger *stubLedger) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc, err := NewService(Dependencies{
		Profiles: store,
		Ledger:   ledger,
		Cache:    redrepo.NewCacheRepo(client),
		Logger:   zap.NewNop(),
	}, Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return svc, mr
}

func candidateIDs(profiles []model.UserProfile) []string {
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestCandidatesExcludesInteractedUsers(t *testing.T) {
	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{
			"me":       testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
			"liked":    testProfile("liked", 29, enums.GenderMale, -6.2, 106.8, "music"),
			"disliked": testProfile("disliked", 29, enums.GenderMale, -6.2, 106.8, "music"),
			"rejecter": testProfile("rejecter", 29, enums.GenderMale, -6.2, 106.8, "music"),
			"fresh":    testProfile("fresh", 29, enums.GenderMale, -6.2, 106.8, "music"),
		},
		pool: []string{"me", "liked", "disliked", "rejecter", "fresh"},
	}
	ledger := &stubLedger{
		liked:     []string{"liked"},
		disliked:  []string{"disliked"},
		dislikers: []string{"rejecter"},
	}
	svc, _ := newTestService(t, store, ledger)

	got, err := svc.Candidates(context.Background(), "me", 10, 0)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}

	ids := candidateIDs(got)
	if len(ids) != 1 || ids[0] != "fresh" {
		t.Fatalf("expected only fresh candidate, got %v", ids)
	}
}

func TestCandidatesRankedByScoreDescending(t *testing.T) {
	near := testProfile("near", 30, enums.GenderMale, -6.2, 106.8, "music", "travel")
	far := testProfile("far", 30, enums.GenderMale, -7.2, 108.0, "music", "travel")
	noOverlap := testProfile("plain", 30, enums.GenderMale, -6.2, 106.8)

	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{
			"me":    testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music", "travel"),
			"near":  near,
			"far":   far,
			"plain": noOverlap,
		},
		pool: []string{"far", "plain", "near"},
	}
	svc, _ := newTestService(t, store, &stubLedger{})

	got, err := svc.Candidates(context.Background(), "me", 10, 0)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}

	ids := candidateIDs(got)
	if len(ids) != 3 || ids[0] != "near" {
		t.Fatalf("expected near ranked first, got %v", ids)
	}
}

func TestCandidatesTieBreakByPoolOrder(t *testing.T) {
	twin := func(id string) model.UserProfile {
		return testProfile(id, 30, enums.GenderMale, -6.2, 106.8, "music")
	}
	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{
			"me": testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
			"b":  twin("b"),
			"a":  twin("a"),
			"c":  twin("c"),
		},
		pool: []string{"b", "a", "c"},
	}
	svc, _ := newTestService(t, store, &stubLedger{})

	got, err := svc.Candidates(context.Background(), "me", 10, 0)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}

	ids := candidateIDs(got)
	want := []string{"b", "a", "c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("tie order broken: got %v want %v", ids, want)
		}
	}
}

func TestCandidatesServedFromCacheWithoutRescoring(t *testing.T) {
	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{
			"me": testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
			"c1": testProfile("c1", 30, enums.GenderMale, -6.2, 106.8, "music"),
		},
		pool: []string{"c1"},
	}
	svc, _ := newTestService(t, store, &stubLedger{})
	ctx := context.Background()

	first, err := svc.Candidates(ctx, "me", 5, 0)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.Candidates(ctx, "me", 5, 0)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if store.listCalls != 1 {
		t.Fatalf("expected one pool query, got %d", store.listCalls)
	}
	firstIDs, secondIDs := candidateIDs(first), candidateIDs(second)
	if len(firstIDs) != len(secondIDs) {
		t.Fatalf("page drifted within cache window: %v vs %v", firstIDs, secondIDs)
	}
	for i := range firstIDs {
		if firstIDs[i] != secondIDs[i] {
			t.Fatalf("page drifted within cache window: %v vs %v", firstIDs, secondIDs)
		}
	}
}

func TestCandidatesCachesPostSlicePage(t *testing.T) {
	profiles := map[string]model.UserProfile{
		"me": testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
	}
	pool := []string{"c1", "c2", "c3", "c4"}
	for _, id := range pool {
		profiles[id] = testProfile(id, 30, enums.GenderMale, -6.2, 106.8, "music")
	}
	store := &stubProfileStore{profiles: profiles, pool: pool}
	svc, mr := newTestService(t, store, &stubLedger{})

	got, err := svc.Candidates(context.Background(), "me", 2, 0)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected page of 2, got %d", len(got))
	}

	raw, err := mr.Get(redrepo.CandidatesKey("me"))
	if err != nil {
		t.Fatalf("read cache key: %v", err)
	}
	if raw != `{"limit":2,"offset":0,"ids":["c1","c2"]}` {
		t.Fatalf("cached page = %s, want post-slice ids only", raw)
	}
}

func TestCandidatesNextPageRecomputes(t *testing.T) {
	profiles := map[string]model.UserProfile{
		"me": testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
	}
	pool := []string{"c1", "c2", "c3", "c4"}
	for _, id := range pool {
		profiles[id] = testProfile(id, 30, enums.GenderMale, -6.2, 106.8, "music")
	}
	store := &stubProfileStore{profiles: profiles, pool: pool}
	svc, _ := newTestService(t, store, &stubLedger{})
	ctx := context.Background()

	page1, err := svc.Candidates(ctx, "me", 2, 0)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	page2, err := svc.Candidates(ctx, "me", 2, 2)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}

	if ids := candidateIDs(page1); len(ids) != 2 || ids[0] != "c1" || ids[1] != "c2" {
		t.Fatalf("first page = %v, want [c1 c2]", ids)
	}
	if ids := candidateIDs(page2); len(ids) != 2 || ids[0] != "c3" || ids[1] != "c4" {
		t.Fatalf("second page = %v, want [c3 c4]", ids)
	}
	if store.listCalls != 2 {
		t.Fatalf("expected a fresh ranking per page, got %d pool queries", store.listCalls)
	}

	// The second page is now the cached one.
	if _, err := svc.Candidates(ctx, "me", 2, 2); err != nil {
		t.Fatalf("repeat second page: %v", err)
	}
	if store.listCalls != 2 {
		t.Fatalf("repeated page must come from cache, got %d pool queries", store.listCalls)
	}
}

func TestCandidatesChangedLimitRecomputes(t *testing.T) {
	profiles := map[string]model.UserProfile{
		"me": testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
	}
	pool := []string{"c1", "c2", "c3"}
	for _, id := range pool {
		profiles[id] = testProfile(id, 30, enums.GenderMale, -6.2, 106.8, "music")
	}
	store := &stubProfileStore{profiles: profiles, pool: pool}
	svc, _ := newTestService(t, store, &stubLedger{})
	ctx := context.Background()

	first, err := svc.Candidates(ctx, "me", 2, 0)
	if err != nil {
		t.Fatalf("limit 2: %v", err)
	}
	second, err := svc.Candidates(ctx, "me", 3, 0)
	if err != nil {
		t.Fatalf("limit 3: %v", err)
	}

	if len(first) != 2 || len(second) != 3 {
		t.Fatalf("page sizes = %d, %d, want 2 and 3", len(first), len(second))
	}
	if store.listCalls != 2 {
		t.Fatalf("changed limit must recompute, got %d pool queries", store.listCalls)
	}
}

func TestCandidatesDislikedUserReappearsAfterWindow(t *testing.T) {
	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{
			"me": testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
			"b":  testProfile("b", 30, enums.GenderMale, -6.2, 106.8, "music"),
		},
		pool: []string{"b"},
	}
	ledger := &stubLedger{disliked: []string{"b"}}
	svc, mr := newTestService(t, store, ledger)
	ctx := context.Background()

	got, err := svc.Candidates(ctx, "me", 5, 0)
	if err != nil {
		t.Fatalf("candidates during window: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("disliked user must be excluded, got %v", candidateIDs(got))
	}

	// Dislike ages out of the 72h window and the cached page is dropped.
	ledger.disliked = nil
	mr.Del(redrepo.CandidatesKey("me"))

	got, err = svc.Candidates(ctx, "me", 5, 0)
	if err != nil {
		t.Fatalf("candidates after window: %v", err)
	}
	ids := candidateIDs(got)
	if len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("expected disliked user to reappear, got %v", ids)
	}
}

func TestCandidatesCacheExpiryRecomputes(t *testing.T) {
	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{
			"me": testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
			"c1": testProfile("c1", 30, enums.GenderMale, -6.2, 106.8, "music"),
		},
		pool: []string{"c1"},
	}
	svc, mr := newTestService(t, store, &stubLedger{})
	ctx := context.Background()

	if _, err := svc.Candidates(ctx, "me", 5, 0); err != nil {
		t.Fatalf("first call: %v", err)
	}

	mr.FastForward(31 * time.Minute)

	if _, err := svc.Candidates(ctx, "me", 5, 0); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if store.listCalls != 2 {
		t.Fatalf("expected recompute after TTL, got %d pool queries", store.listCalls)
	}
}

func TestCandidatesUnscoreableRequesterReturnsEmpty(t *testing.T) {
	incomplete := model.UserProfile{ID: "me", IsActive: true}
	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{"me": incomplete},
		pool:     []string{"c1"},
	}
	svc, _ := newTestService(t, store, &stubLedger{})

	got, err := svc.Candidates(context.Background(), "me", 5, 0)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result for unscoreable requester, got %v", candidateIDs(got))
	}
	if store.listCalls != 0 {
		t.Fatal("pool should not be queried for an unscoreable requester")
	}
}

func TestCandidatesFailsOpenOnStoreError(t *testing.T) {
	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{
			"me": testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
		},
		listErr: errors.New("pg down"),
	}
	svc, _ := newTestService(t, store, &stubLedger{})

	got, err := svc.Candidates(context.Background(), "me", 5, 0)
	if err != nil {
		t.Fatalf("expected fail-open, got error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result on store failure, got %v", candidateIDs(got))
	}
}

func TestCandidatesDropsMissingAndIneligibleProfiles(t *testing.T) {
	sleeping := testProfile("sleeping", 30, enums.GenderMale, -6.2, 106.8, "music")
	sleeping.IsSleeping = true

	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{
			"me":       testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
			"ok":       testProfile("ok", 30, enums.GenderMale, -6.2, 106.8, "music"),
			"sleeping": sleeping,
		},
		pool: []string{"ok", "deleted", "sleeping"},
	}
	svc, _ := newTestService(t, store, &stubLedger{})

	got, err := svc.Candidates(context.Background(), "me", 10, 0)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}

	ids := candidateIDs(got)
	if len(ids) != 1 || ids[0] != "ok" {
		t.Fatalf("expected only eligible candidate, got %v", ids)
	}
}

func TestCandidatesOffsetBeyondRanking(t *testing.T) {
	store := &stubProfileStore{
		profiles: map[string]model.UserProfile{
			"me": testProfile("me", 30, enums.GenderFemale, -6.2, 106.8, "music"),
			"c1": testProfile("c1", 30, enums.GenderMale, -6.2, 106.8, "music"),
		},
		pool: []string{"c1"},
	}
	svc, _ := newTestService(t, store, &stubLedger{})

	got, err := svc.Candidates(context.Background(), "me", 5, 10)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty page past end, got %v", candidateIDs(got))
	}
}
