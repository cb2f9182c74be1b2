package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

type NotificationRecord struct {
	RecipientUserID int64
	Kind            string
	Title           string
	Body            string
	Link            string
}

// Create inserts a notification row. Read/unread lifecycle is owned by the
// notification center, not by this core.
func (r *NotificationRepo) Create(ctx context.Context, tx pgx.Tx, rec NotificationRecord, now time.Time) error {
	if rec.RecipientUserID <= 0 || strings.TrimSpace(rec.Kind) == "" || strings.TrimSpace(rec.Title) == "" {
		return fmt.Errorf("invalid notification payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO notifications (
	recipient_user_id,
	kind,
	title,
	body,
	link,
	is_read,
	created_at
) VALUES ($1, $2, $3, $4, $5, FALSE, $6)
`, rec.RecipientUserID, rec.Kind, rec.Title, rec.Body, rec.Link, now.UTC()); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}
