package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepo reads the externally-owned profile data this core consumes.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

type ProfileCard struct {
	UserID        int64
	DisplayName   string
	Headline      string
	City          string
	State         string
	Bio           string
	PortfolioTags []string
}

func (r *ProfileRepo) GetCard(ctx context.Context, userID int64) (ProfileCard, error) {
	if userID <= 0 {
		return ProfileCard{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return ProfileCard{}, fmt.Errorf("postgres pool is nil")
	}

	var card ProfileCard
	err := r.pool.QueryRow(ctx, `
SELECT
	p.user_id,
	COALESCE(p.display_name, ''),
	COALESCE(p.headline, ''),
	COALESCE(p.city, ''),
	COALESCE(p.state, ''),
	COALESCE(p.bio, ''),
	COALESCE(pp.portfolio_tags, '{}')
FROM profiles p
LEFT JOIN pro_profiles pp ON pp.user_id = p.user_id
WHERE p.user_id = $1
`, userID).Scan(
		&card.UserID,
		&card.DisplayName,
		&card.Headline,
		&card.City,
		&card.State,
		&card.Bio,
		&card.PortfolioTags,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileCard{}, ErrProfileNotFound
		}
		return ProfileCard{}, fmt.Errorf("get profile card: %w", err)
	}

	return card, nil
}
