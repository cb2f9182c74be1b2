package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrViewerNotFound = errors.New("viewer profile not found")

type CandidateRepo struct {
	pool *pgxpool.Pool
}

func NewCandidateRepo(pool *pgxpool.Pool) *CandidateRepo {
	return &CandidateRepo{pool: pool}
}

type DeckViewerContext struct {
	UserID       int64
	City         string
	State        string
	SeekingTypes []string
}

type DeckQuery struct {
	ViewerUserID int64
	PoolLimit    int
}

type CandidateRecord struct {
	UserID        int64
	DisplayName   string
	Headline      string
	City          string
	State         string
	AvatarKey     string
	Bio           string
	PortfolioTags []string
	AvgRating     float64
	ReviewCount   int
	EventCount    int
	LastActiveAt  *time.Time
}

func (r *CandidateRepo) GetViewerContext(ctx context.Context, userID int64) (DeckViewerContext, error) {
	if userID <= 0 {
		return DeckViewerContext{}, fmt.Errorf("invalid viewer user id")
	}
	if r.pool == nil {
		return DeckViewerContext{}, fmt.Errorf("postgres pool is nil")
	}

	var viewer DeckViewerContext
	err := r.pool.QueryRow(ctx, `
SELECT
	p.user_id,
	COALESCE(p.city, ''),
	COALESCE(p.state, ''),
	COALESCE(pref.seeking_types, '{}')
FROM profiles p
LEFT JOIN preferences pref ON pref.user_id = p.user_id
WHERE p.user_id = $1
`, userID).Scan(
		&viewer.UserID,
		&viewer.City,
		&viewer.State,
		&viewer.SeekingTypes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeckViewerContext{}, ErrViewerNotFound
		}
		return DeckViewerContext{}, fmt.Errorf("get deck viewer context: %w", err)
	}

	return viewer, nil
}

// ListCandidates pulls the discoverable pool for a viewer. Exclusions live
// here so a card the viewer already acted on can never resurface: the viewer
// themselves, anyone they swiped in either direction, profiles that opted out
// of discovery, and profiles without a professional sub-profile.
func (r *CandidateRepo) ListCandidates(ctx context.Context, q DeckQuery) ([]CandidateRecord, error) {
	if q.ViewerUserID <= 0 {
		return nil, fmt.Errorf("invalid viewer user id")
	}
	if q.PoolLimit <= 0 {
		q.PoolLimit = 200
	}
	if r.pool == nil {
		return []CandidateRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	p.user_id,
	COALESCE(p.display_name, ''),
	COALESCE(p.headline, ''),
	COALESCE(p.city, ''),
	COALESCE(p.state, ''),
	COALESCE(p.avatar_key, ''),
	COALESCE(p.bio, ''),
	COALESCE(pp.portfolio_tags, '{}'),
	COALESCE(pp.avg_rating, 0),
	COALESCE(pp.review_count, 0),
	COALESCE(pp.event_count, 0),
	p.last_active_at
FROM profiles p
JOIN pro_profiles pp ON pp.user_id = p.user_id
LEFT JOIN preferences pref ON pref.user_id = p.user_id
WHERE
	p.user_id <> $1
	AND COALESCE(pref.discoverable, TRUE)
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.swiper_user_id = $1 AND s.target_user_id = p.user_id
	)
ORDER BY p.last_active_at DESC NULLS LAST, p.user_id DESC
LIMIT $2
`, q.ViewerUserID, q.PoolLimit)
	if err != nil {
		return nil, fmt.Errorf("list deck candidates: %w", err)
	}
	defer rows.Close()

	items := make([]CandidateRecord, 0, q.PoolLimit)
	for rows.Next() {
		var item CandidateRecord
		if err := rows.Scan(
			&item.UserID,
			&item.DisplayName,
			&item.Headline,
			&item.City,
			&item.State,
			&item.AvatarKey,
			&item.Bio,
			&item.PortfolioTags,
			&item.AvgRating,
			&item.ReviewCount,
			&item.EventCount,
			&item.LastActiveAt,
		); err != nil {
			return nil, fmt.Errorf("scan deck candidate: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate deck candidates: %w", rows.Err())
	}

	return items, nil
}
