package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ndvoropaev/linkup/internal/domain/rules"
)

const (
	MatchStatusMatched = "matched"
	MatchStatusExpired = "expired"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	ID        int64
	UserAID   int64
	UserBID   int64
	Status    string
	ThreadID  string
	Summary   *string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type ActiveMatchRecord struct {
	ID           int64
	TargetUserID int64
	ThreadID     string
	DisplayName  string
	Headline     string
	City         string
	State        string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// GetByPair reads the match for a participant pair regardless of argument
// order. The second return value reports existence.
func (r *MatchRepo) GetByPair(ctx context.Context, tx pgx.Tx, userID, targetID int64) (MatchRecord, bool, error) {
	if userID <= 0 || targetID <= 0 {
		return MatchRecord{}, false, fmt.Errorf("invalid match pair payload")
	}
	if tx == nil {
		return MatchRecord{}, false, fmt.Errorf("transaction is required")
	}

	userA, userB := rules.CanonicalPair(userID, targetID)

	var rec MatchRecord
	err := tx.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, status, thread_id, summary, created_at, expires_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.Status,
		&rec.ThreadID,
		&rec.Summary,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, false, nil
		}
		return MatchRecord{}, false, fmt.Errorf("get match by pair: %w", err)
	}

	return rec, true, nil
}

// Insert creates the match row keyed on the canonical pair. The unique index
// on (user_a_id, user_b_id) arbitrates concurrent reciprocal-like detections:
// the loser observes the conflict, gets created=false, and must re-read the
// winner's row.
func (r *MatchRepo) Insert(ctx context.Context, tx pgx.Tx, userID, targetID int64, threadID string, now, expiresAt time.Time) (int64, bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID || strings.TrimSpace(threadID) == "" {
		return 0, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return 0, false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if !expiresAt.After(now) {
		return 0, false, fmt.Errorf("match expiry must be after creation")
	}

	userA, userB := rules.CanonicalPair(userID, targetID)

	var matchID int64
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	status,
	thread_id,
	created_at,
	expires_at
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id
`, userA, userB, MatchStatusMatched, threadID, now.UTC(), expiresAt.UTC()).Scan(&matchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("create match: %w", err)
	}

	return matchID, true, nil
}

func (r *MatchRepo) GetForUser(ctx context.Context, matchID, userID int64) (MatchRecord, error) {
	if matchID <= 0 || userID <= 0 {
		return MatchRecord{}, fmt.Errorf("invalid match lookup payload")
	}
	if r.pool == nil {
		return MatchRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec MatchRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, status, thread_id, summary, created_at, expires_at
FROM matches
WHERE id = $1 AND (user_a_id = $2 OR user_b_id = $2)
`, matchID, userID).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.Status,
		&rec.ThreadID,
		&rec.Summary,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match for user: %w", err)
	}

	return rec, nil
}

// ListActiveForUser returns non-expired matches newest first, each carrying
// the other participant's profile fields.
func (r *MatchRepo) ListActiveForUser(ctx context.Context, userID int64, limit, offset int) ([]ActiveMatchRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if r.pool == nil {
		return []ActiveMatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS target_user_id,
	m.thread_id,
	COALESCE(p.display_name, ''),
	COALESCE(p.headline, ''),
	COALESCE(p.city, ''),
	COALESCE(p.state, ''),
	m.created_at,
	m.expires_at
FROM matches m
JOIN profiles p ON p.user_id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND m.status = $2
ORDER BY m.created_at DESC, m.id DESC
LIMIT $3 OFFSET $4
`, userID, MatchStatusMatched, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	defer rows.Close()

	items := make([]ActiveMatchRecord, 0, limit)
	for rows.Next() {
		var item ActiveMatchRecord
		if err := rows.Scan(
			&item.ID,
			&item.TargetUserID,
			&item.ThreadID,
			&item.DisplayName,
			&item.Headline,
			&item.City,
			&item.State,
			&item.CreatedAt,
			&item.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("scan active match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active matches: %w", rows.Err())
	}

	return items, nil
}

// SetSummaryIfEmpty persists generated summary text at most once. Repeat
// enrichment attempts after a success are no-ops.
func (r *MatchRepo) SetSummaryIfEmpty(ctx context.Context, matchID int64, summary string) error {
	if matchID <= 0 {
		return fmt.Errorf("invalid match id")
	}
	if strings.TrimSpace(summary) == "" {
		return fmt.Errorf("summary is required")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE matches
SET summary = $2
WHERE id = $1 AND summary IS NULL
`, matchID, summary); err != nil {
		return fmt.Errorf("set match summary: %w", err)
	}

	return nil
}

// ExpireDue flips every matched row past its expiry to expired and returns
// the number of rows affected. A second run right after the first mutates
// nothing.
func (r *MatchRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result, err := r.pool.Exec(ctx, `
UPDATE matches
SET status = $1
WHERE status = $2 AND expires_at <= $3
`, MatchStatusExpired, MatchStatusMatched, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("expire due matches: %w", err)
	}

	return result.RowsAffected(), nil
}
