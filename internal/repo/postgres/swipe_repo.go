package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSwipeNotFound = errors.New("swipe not found")

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	SwiperUserID int64
	TargetUserID int64
	Direction    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Upsert records a directional decision. One row per ordered (swiper, target)
// pair: a repeat decision overwrites the direction only.
func (r *SwipeRepo) Upsert(ctx context.Context, tx pgx.Tx, swiperUserID, targetUserID int64, direction string, now time.Time) (SwipeRecord, error) {
	if swiperUserID <= 0 || targetUserID <= 0 || strings.TrimSpace(direction) == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	swiper_user_id,
	target_user_id,
	direction,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (swiper_user_id, target_user_id) DO UPDATE SET
	direction = EXCLUDED.direction,
	updated_at = EXCLUDED.updated_at
RETURNING swiper_user_id, target_user_id, direction, created_at, updated_at
`, swiperUserID, targetUserID, strings.ToUpper(strings.TrimSpace(direction)), now.UTC()).Scan(
		&rec.SwiperUserID,
		&rec.TargetUserID,
		&rec.Direction,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return SwipeRecord{}, fmt.Errorf("upsert swipe: %w", err)
	}

	return rec, nil
}

// HasLike reports whether swiper has a stored LIKE pointed at target.
func (r *SwipeRepo) HasLike(ctx context.Context, tx pgx.Tx, swiperUserID, targetUserID int64) (bool, error) {
	if swiperUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid swipe lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE swiper_user_id = $1 AND target_user_id = $2 AND direction = 'LIKE'
LIMIT 1
`, swiperUserID, targetUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	return true, nil
}

func (r *SwipeRepo) Get(ctx context.Context, swiperUserID, targetUserID int64) (SwipeRecord, error) {
	if swiperUserID <= 0 || targetUserID <= 0 {
		return SwipeRecord{}, fmt.Errorf("invalid swipe lookup payload")
	}
	if r.pool == nil {
		return SwipeRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec SwipeRecord
	err := r.pool.QueryRow(ctx, `
SELECT swiper_user_id, target_user_id, direction, created_at, updated_at
FROM swipes
WHERE swiper_user_id = $1 AND target_user_id = $2
`, swiperUserID, targetUserID).Scan(
		&rec.SwiperUserID,
		&rec.TargetUserID,
		&rec.Direction,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SwipeRecord{}, ErrSwipeNotFound
		}
		return SwipeRecord{}, fmt.Errorf("get swipe: %w", err)
	}

	return rec, nil
}
