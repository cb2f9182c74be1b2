package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PreferenceRepo struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepo(pool *pgxpool.Pool) *PreferenceRepo {
	return &PreferenceRepo{pool: pool}
}

type PreferenceRecord struct {
	UserID       int64
	Discoverable bool
	SeekingTypes []string
	BudgetMin    *int
	BudgetMax    *int
}

// PreferenceUpdate carries partial-update semantics: nil fields are left
// untouched.
type PreferenceUpdate struct {
	Discoverable *bool
	SeekingTypes []string
	BudgetMin    *int
	BudgetMax    *int
}

// Get returns stored preferences, or the discoverable-by-default record when
// the user never saved any.
func (r *PreferenceRepo) Get(ctx context.Context, userID int64) (PreferenceRecord, error) {
	if userID <= 0 {
		return PreferenceRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return PreferenceRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec PreferenceRecord
	err := r.pool.QueryRow(ctx, `
SELECT user_id, discoverable, COALESCE(seeking_types, '{}'), budget_min, budget_max
FROM preferences
WHERE user_id = $1
`, userID).Scan(
		&rec.UserID,
		&rec.Discoverable,
		&rec.SeekingTypes,
		&rec.BudgetMin,
		&rec.BudgetMax,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PreferenceRecord{
				UserID:       userID,
				Discoverable: true,
				SeekingTypes: []string{},
			}, nil
		}
		return PreferenceRecord{}, fmt.Errorf("get preferences: %w", err)
	}

	return rec, nil
}

func (r *PreferenceRepo) Upsert(ctx context.Context, userID int64, upd PreferenceUpdate) (PreferenceRecord, error) {
	if userID <= 0 {
		return PreferenceRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return PreferenceRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec PreferenceRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO preferences (
	user_id,
	discoverable,
	seeking_types,
	budget_min,
	budget_max,
	updated_at
) VALUES (
	$1,
	COALESCE($2, TRUE),
	COALESCE($3, '{}'),
	$4,
	$5,
	NOW()
)
ON CONFLICT (user_id) DO UPDATE SET
	discoverable = COALESCE($2, preferences.discoverable),
	seeking_types = COALESCE($3, preferences.seeking_types),
	budget_min = COALESCE($4, preferences.budget_min),
	budget_max = COALESCE($5, preferences.budget_max),
	updated_at = NOW()
RETURNING user_id, discoverable, COALESCE(seeking_types, '{}'), budget_min, budget_max
`, userID, upd.Discoverable, upd.SeekingTypes, upd.BudgetMin, upd.BudgetMax).Scan(
		&rec.UserID,
		&rec.Discoverable,
		&rec.SeekingTypes,
		&rec.BudgetMin,
		&rec.BudgetMax,
	)
	if err != nil {
		return PreferenceRecord{}, fmt.Errorf("upsert preferences: %w", err)
	}

	return rec, nil
}
