package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/irfndi/meets-match-sub000/internal/domain/enums"
	"github.com/irfndi/meets-match-sub000/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

type CandidatePoolQuery struct {
	RequesterID   string
	DislikedSince time.Time
	Limit         int
}

const profileColumns = `
	user_id,
	age,
	gender,
	COALESCE(bio, ''),
	COALESCE(interests, '{}'),
	COALESCE(photos, '{}'),
	lat,
	lon,
	COALESCE(city, ''),
	COALESCE(country, ''),
	min_age,
	max_age,
	gender_preference,
	max_distance_km,
	COALESCE(premium_tier, 'free'),
	is_active,
	is_sleeping,
	is_profile_complete,
	last_active`

func (r *ProfileRepo) Get(ctx context.Context, userID string) (model.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return model.UserProfile{}, fmt.Errorf("user id is required")
	}
	if r.pool == nil {
		return model.UserProfile{}, ErrProfileNotFound
	}

	row := r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserProfile{}, ErrProfileNotFound
		}
		return model.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// GetMany fetches profiles for the given IDs. Missing IDs are omitted, not
// reported as errors.
func (r *ProfileRepo) GetMany(ctx context.Context, userIDs []string) ([]model.UserProfile, error) {
	if len(userIDs) == 0 {
		return []model.UserProfile{}, nil
	}
	if r.pool == nil {
		return []model.UserProfile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE user_id = ANY($1)
`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("get profiles batch: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.UserProfile, 0, len(userIDs))
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}

	return profiles, nil
}

// ListCandidateIDs returns the raw candidate pool for a requester. The SQL
// filter is coarse: the selector re-applies exclusions against live cached
// sets because this read may come from a stale replica.
func (r *ProfileRepo) ListCandidateIDs(ctx context.Context, q CandidatePoolQuery) ([]string, error) {
	if strings.TrimSpace(q.RequesterID) == "" {
		return nil, fmt.Errorf("requester id is required")
	}
	if q.Limit <= 0 || q.Limit > 1000 {
		q.Limit = 1000
	}
	if r.pool == nil {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT p.user_id
FROM profiles p
WHERE
	p.user_id <> $1
	AND p.is_active
	AND NOT p.is_sleeping
	AND p.is_profile_complete
	AND NOT EXISTS (
		SELECT 1
		FROM actions a
		WHERE a.actor_id = $1
			AND a.target_id = p.user_id
			AND a.action = 'LIKE'
	)
	AND NOT EXISTS (
		SELECT 1
		FROM actions a
		WHERE a.actor_id = $1
			AND a.target_id = p.user_id
			AND a.action = 'DISLIKE'
			AND a.created_at > $2
	)
ORDER BY p.last_active DESC, p.user_id
LIMIT $3
`, q.RequesterID, q.DislikedSince.UTC(), q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list candidate pool: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, q.Limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan candidate id: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidate pool: %w", rows.Err())
	}

	return ids, nil
}

func (r *ProfileRepo) UpdatePreferences(ctx context.Context, userID string, p model.Preferences) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET
	min_age = $2,
	max_age = $3,
	gender_preference = $4,
	max_distance_km = $5,
	premium_tier = $6
WHERE user_id = $1
`, userID, p.MinAge, p.MaxAge, string(p.GenderPreference), p.MaxDistanceKM, string(p.Tier))
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepo) SaveLocation(ctx context.Context, userID string, loc model.Location, at time.Time) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET
	lat = $2,
	lon = $3,
	city = $4,
	country = $5,
	last_active = $6
WHERE user_id = $1
`, userID, loc.Lat, loc.Lon, loc.City, loc.Country, at.UTC())
	if err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *ProfileRepo) SetSleeping(ctx context.Context, userID string, sleeping bool) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET is_sleeping = $2
WHERE user_id = $1
`, userID, sleeping)
	if err != nil {
		return fmt.Errorf("set sleeping: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func scanProfile(row pgx.Row) (model.UserProfile, error) {
	var (
		profile     model.UserProfile
		gender      *string
		lat, lon    *float64
		city        string
		country     string
		minAge      *int
		maxAge      *int
		genderPref  *string
		maxDistance *int
		tier        string
	)

	if err := row.Scan(
		&profile.ID,
		&profile.Age,
		&gender,
		&profile.Bio,
		&profile.Interests,
		&profile.Photos,
		&lat,
		&lon,
		&city,
		&country,
		&minAge,
		&maxAge,
		&genderPref,
		&maxDistance,
		&tier,
		&profile.IsActive,
		&profile.IsSleeping,
		&profile.IsProfileComplete,
		&profile.LastActive,
	); err != nil {
		return model.UserProfile{}, err
	}

	if gender != nil {
		if parsed, ok := enums.ParseGender(*gender); ok {
			profile.Gender = &parsed
		}
	}
	if lat != nil && lon != nil {
		profile.Location = &model.Location{Lat: *lat, Lon: *lon, City: city, Country: country}
	}
	if minAge != nil && maxAge != nil && genderPref != nil && maxDistance != nil {
		prefTier, ok := enums.ParsePremiumTier(tier)
		if !ok {
			prefTier = enums.TierFree
		}
		prefGender, ok := enums.ParseGenderPreference(*genderPref)
		if !ok {
			prefGender = enums.PreferAny
		}
		profile.Preferences = &model.Preferences{
			MinAge:           *minAge,
			MaxAge:           *maxAge,
			GenderPreference: prefGender,
			MaxDistanceKM:    *maxDistance,
			Tier:             prefTier,
		}
	}

	return profile, nil
}
