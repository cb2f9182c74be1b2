package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ndvoropaev/linkup/internal/domain/rules"
)

type ThreadRepo struct {
	pool *pgxpool.Pool
}

func NewThreadRepo(pool *pgxpool.Pool) *ThreadRepo {
	return &ThreadRepo{pool: pool}
}

// Create opens the conversation channel joining both participants. Runs
// inside the match-creation transaction so a thread never exists without its
// match and vice versa.
func (r *ThreadRepo) Create(ctx context.Context, tx pgx.Tx, threadID string, userID, targetID int64, now time.Time) error {
	if strings.TrimSpace(threadID) == "" || userID <= 0 || targetID <= 0 || userID == targetID {
		return fmt.Errorf("invalid thread payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	userA, userB := rules.CanonicalPair(userID, targetID)

	if _, err := tx.Exec(ctx, `
INSERT INTO threads (
	id,
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, $3, $4)
`, threadID, userA, userB, now.UTC()); err != nil {
		return fmt.Errorf("create thread: %w", err)
	}

	return nil
}
