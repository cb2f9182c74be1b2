package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ndvoropaev/linkup/internal/domain/rules"
	pgrepo "github.com/ndvoropaev/linkup/internal/repo/postgres"
)

const (
	defaultPoolSize = 200
	avatarURLTTL    = 5 * time.Minute
)

var (
	ErrValidation    = errors.New("validation error")
	ErrRankingFailed = errors.New("ranking failed")
)

type Repository interface {
	GetViewerContext(ctx context.Context, userID int64) (pgrepo.DeckViewerContext, error)
	ListCandidates(ctx context.Context, q pgrepo.DeckQuery) ([]pgrepo.CandidateRecord, error)
}

type AvatarURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	PoolSize int
}

type Card struct {
	UserID          int64
	DisplayName     string
	Headline        string
	City            string
	State           string
	AvatarURL       *string
	AvgRating       float64
	ReviewCount     int
	EventCount      int
	Specializations []string
	Score           float64
}

type Service struct {
	repo       Repository
	avatarSign AvatarURLSigner
	cfg        Config
	now        func() time.Time
}

func NewService(repo Repository, cfg Config) *Service {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}

	return &Service{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *Service) AttachAvatarSigner(signer AvatarURLSigner) {
	s.avatarSign = signer
}

// GetDeck scores the discoverable pool for a requester and returns the top
// slice. Any read failure surfaces as a single opaque ranking error: a
// partial or corrupt deck is never returned.
func (s *Service) GetDeck(ctx context.Context, requesterID int64, limit int) ([]Card, error) {
	if requesterID <= 0 {
		return nil, ErrValidation
	}
	if s.repo == nil {
		return nil, fmt.Errorf("deck repository is nil")
	}
	limit = rules.ClampDeckSize(limit)

	viewer, err := s.repo.GetViewerContext(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRankingFailed, err)
	}

	candidates, err := s.repo.ListCandidates(ctx, pgrepo.DeckQuery{
		ViewerUserID: requesterID,
		PoolLimit:    s.cfg.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRankingFailed, err)
	}

	now := s.now().UTC()
	seeking := normalizeTags(viewer.SeekingTypes)

	type scored struct {
		candidate pgrepo.CandidateRecord
		score     float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, scored{
			candidate: candidate,
			score:     scoreCandidate(viewer, seeking, candidate, now),
		})
	}

	// Stable: ties keep pool order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	cards := make([]Card, 0, len(ranked))
	for _, entry := range ranked {
		cards = append(cards, Card{
			UserID:          entry.candidate.UserID,
			DisplayName:     entry.candidate.DisplayName,
			Headline:        entry.candidate.Headline,
			City:            entry.candidate.City,
			State:           entry.candidate.State,
			AvatarURL:       s.buildAvatarURL(ctx, entry.candidate.AvatarKey),
			AvgRating:       entry.candidate.AvgRating,
			ReviewCount:     entry.candidate.ReviewCount,
			EventCount:      entry.candidate.EventCount,
			Specializations: append([]string(nil), entry.candidate.PortfolioTags...),
			Score:           entry.score,
		})
	}

	return cards, nil
}

func scoreCandidate(viewer pgrepo.DeckViewerContext, seeking []string, candidate pgrepo.CandidateRecord, now time.Time) float64 {
	total := rules.LocationScore(viewer.City, viewer.State, candidate.City, candidate.State)
	total += rules.ReputationScore(candidate.AvgRating, candidate.ReviewCount)
	total += rules.SpecializationScore(seeking, candidateText(candidate))

	lastActive := time.Time{}
	if candidate.LastActiveAt != nil {
		lastActive = *candidate.LastActiveAt
	}
	total += rules.RecencyScore(lastActive, now)

	return total
}

func candidateText(candidate pgrepo.CandidateRecord) string {
	parts := make([]string, 0, len(candidate.PortfolioTags)+1)
	parts = append(parts, candidate.Bio)
	parts = append(parts, candidate.PortfolioTags...)
	return strings.Join(parts, " ")
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *Service) buildAvatarURL(ctx context.Context, key string) *string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		value := trimmed
		return &value
	}
	if s.avatarSign == nil {
		return nil
	}

	url, err := s.avatarSign.PresignGet(ctx, trimmed, avatarURLTTL)
	if err != nil {
		return nil
	}
	value := strings.TrimSpace(url)
	if value == "" {
		return nil
	}
	return &value
}
