package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ndvoropaev/linkup/internal/domain/rules"
	pgrepo "github.com/ndvoropaev/linkup/internal/repo/postgres"
	"github.com/ndvoropaev/linkup/internal/services/enrichment"
)

const (
	DirectionLike = "LIKE"
	DirectionPass = "PASS"

	notificationKindMatch = "match_created"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrUnsupportedDirection = errors.New("unsupported direction")
)

// TooFastError reports like-rate throttling with a retry hint.
type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return fmt.Sprintf("too many likes, retry after %ds", e.RetryAfterSec)
}

func IsTooFast(err error) (TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return tf, true
	}
	return TooFastError{}, false
}

type SwipeStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, swiperUserID, targetUserID int64, direction string, now time.Time) (pgrepo.SwipeRecord, error)
	HasLike(ctx context.Context, tx pgx.Tx, swiperUserID, targetUserID int64) (bool, error)
}

type MatchStore interface {
	GetByPair(ctx context.Context, tx pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, bool, error)
	Insert(ctx context.Context, tx pgx.Tx, userID, targetID int64, threadID string, now, expiresAt time.Time) (int64, bool, error)
	SetSummaryIfEmpty(ctx context.Context, matchID int64, summary string) error
}

type ThreadStore interface {
	Create(ctx context.Context, tx pgx.Tx, threadID string, userID, targetID int64, now time.Time) error
}

type NotificationStore interface {
	Create(ctx context.Context, tx pgx.Tx, rec pgrepo.NotificationRecord, now time.Time) error
}

type ProfileStore interface {
	GetCard(ctx context.Context, userID int64) (pgrepo.ProfileCard, error)
}

type RateLimiter interface {
	AllowLike(ctx context.Context, userID int64) (int64, bool, error)
}

type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Enricher interface {
	Summary(ctx context.Context, a, b enrichment.Profile) (string, bool)
}

type Config struct {
	MatchTTL       time.Duration
	SummaryTimeout time.Duration
}

type SwipeResult struct {
	Matched  bool
	MatchID  int64
	ThreadID string
}

type Service struct {
	tx            TxRunner
	swipeStore    SwipeStore
	matchStore    MatchStore
	threadStore   ThreadStore
	notifications NotificationStore
	profiles      ProfileStore
	rateLimiter   RateLimiter
	enricher      Enricher
	cfg           Config
	logger        *zap.Logger
	now           func() time.Time
	newThreadID   func() string
}

type Dependencies struct {
	Tx            TxRunner
	SwipeStore    SwipeStore
	MatchStore    MatchStore
	ThreadStore   ThreadStore
	Notifications NotificationStore
	Profiles      ProfileStore
	RateLimiter   RateLimiter
	Enricher      Enricher
	Logger        *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MatchTTL <= 0 {
		cfg.MatchTTL = rules.MatchTTL
	}
	if cfg.SummaryTimeout <= 0 {
		cfg.SummaryTimeout = 10 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		tx:            deps.Tx,
		swipeStore:    deps.SwipeStore,
		matchStore:    deps.MatchStore,
		threadStore:   deps.ThreadStore,
		notifications: deps.Notifications,
		profiles:      deps.Profiles,
		rateLimiter:   deps.RateLimiter,
		enricher:      deps.Enricher,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
		newThreadID:   func() string { return uuid.NewString() },
	}
}

// Swipe upserts the directional decision and, on a like, runs mutual-interest
// detection. Match, thread and both notifications commit in one transaction;
// summary enrichment is scheduled detached after commit and can never fail
// the swipe.
func (s *Service) Swipe(ctx context.Context, swiperID, targetID int64, direction string) (SwipeResult, error) {
	if swiperID <= 0 || targetID <= 0 || swiperID == targetID {
		return SwipeResult{}, ErrValidation
	}

	normalized, err := normalizeDirection(direction)
	if err != nil {
		return SwipeResult{}, err
	}

	if s.tx == nil || s.swipeStore == nil || s.matchStore == nil || s.threadStore == nil || s.notifications == nil {
		return SwipeResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	if normalized == DirectionLike && s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowLike(ctx, swiperID)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("apply like rate limiter: %w", err)
		}
		if !allowed {
			return SwipeResult{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()

	result := SwipeResult{}
	matchCreated := false
	if err := s.tx.WithTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := s.swipeStore.Upsert(txCtx, tx, swiperID, targetID, normalized, now); err != nil {
			return err
		}
		if normalized != DirectionLike {
			return nil
		}

		reciprocal, err := s.swipeStore.HasLike(txCtx, tx, targetID, swiperID)
		if err != nil {
			return err
		}
		if !reciprocal {
			return nil
		}

		// Concurrent detection from the other side may have already won.
		existing, found, err := s.matchStore.GetByPair(txCtx, tx, swiperID, targetID)
		if err != nil {
			return err
		}
		if found {
			result = SwipeResult{Matched: true, MatchID: existing.ID, ThreadID: existing.ThreadID}
			return nil
		}

		threadID := s.newThreadID()
		matchID, created, err := s.matchStore.Insert(txCtx, tx, swiperID, targetID, threadID, now, now.Add(s.cfg.MatchTTL))
		if err != nil {
			return err
		}
		if !created {
			// Lost the reciprocal-like race: the unique pair index let
			// exactly one insert through. Resolve to the winner's match.
			winner, found, err := s.matchStore.GetByPair(txCtx, tx, swiperID, targetID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("match insert conflicted but no match row found")
			}
			result = SwipeResult{Matched: true, MatchID: winner.ID, ThreadID: winner.ThreadID}
			return nil
		}

		if err := s.threadStore.Create(txCtx, tx, threadID, swiperID, targetID, now); err != nil {
			return err
		}
		if err := s.createMatchNotifications(txCtx, tx, matchID, swiperID, targetID, now); err != nil {
			return err
		}

		matchCreated = true
		result = SwipeResult{Matched: true, MatchID: matchID, ThreadID: threadID}
		return nil
	}); err != nil {
		return SwipeResult{}, err
	}

	if matchCreated {
		go s.enrichMatch(result.MatchID, swiperID, targetID)
	}

	return result, nil
}

func (s *Service) createMatchNotifications(ctx context.Context, tx pgx.Tx, matchID, swiperID, targetID int64, now time.Time) error {
	swiperName := s.displayName(ctx, swiperID)
	targetName := s.displayName(ctx, targetID)
	link := fmt.Sprintf("/matches/%d", matchID)

	pairs := []struct {
		recipient int64
		otherName string
	}{
		{recipient: swiperID, otherName: targetName},
		{recipient: targetID, otherName: swiperName},
	}

	for _, p := range pairs {
		body := "You and " + p.otherName + " are interested in working together."
		if p.otherName == "" {
			body = "You have a new match."
		}
		if err := s.notifications.Create(ctx, tx, pgrepo.NotificationRecord{
			RecipientUserID: p.recipient,
			Kind:            notificationKindMatch,
			Title:           "New match",
			Body:            body,
			Link:            link,
		}, now); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) displayName(ctx context.Context, userID int64) string {
	if s.profiles == nil {
		return ""
	}
	card, err := s.profiles.GetCard(ctx, userID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(card.DisplayName)
}

// enrichMatch runs detached from the swipe request. Its failures are logged
// and dropped: the committed match stays valid without a summary.
func (s *Service) enrichMatch(matchID, swiperID, targetID int64) {
	if s.enricher == nil || s.profiles == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SummaryTimeout)
	defer cancel()

	swiperCard, err := s.profiles.GetCard(ctx, swiperID)
	if err != nil {
		s.logger.Warn("enrichment profile read failed", zap.Int64("match_id", matchID), zap.Error(err))
		return
	}
	targetCard, err := s.profiles.GetCard(ctx, targetID)
	if err != nil {
		s.logger.Warn("enrichment profile read failed", zap.Int64("match_id", matchID), zap.Error(err))
		return
	}

	summary, ok := s.enricher.Summary(ctx, enrichmentProfile(swiperCard), enrichmentProfile(targetCard))
	if !ok {
		return
	}

	if err := s.matchStore.SetSummaryIfEmpty(ctx, matchID, summary); err != nil {
		s.logger.Warn("persist match summary failed", zap.Int64("match_id", matchID), zap.Error(err))
	}
}

func enrichmentProfile(card pgrepo.ProfileCard) enrichment.Profile {
	return enrichment.Profile{
		DisplayName:   card.DisplayName,
		Headline:      card.Headline,
		City:          card.City,
		State:         card.State,
		Bio:           card.Bio,
		PortfolioTags: append([]string(nil), card.PortfolioTags...),
	}
}

func normalizeDirection(input string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case DirectionLike:
		return DirectionLike, nil
	case DirectionPass:
		return DirectionPass, nil
	default:
		return "", ErrUnsupportedDirection
	}
}
