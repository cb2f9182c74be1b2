package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgrepo "github.com/ndvoropaev/linkup/internal/repo/postgres"
	"github.com/ndvoropaev/linkup/internal/services/enrichment"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("match not found")
)

type MatchStore interface {
	ListActiveForUser(ctx context.Context, userID int64, limit, offset int) ([]pgrepo.ActiveMatchRecord, error)
	GetForUser(ctx context.Context, matchID, userID int64) (pgrepo.MatchRecord, error)
}

type ProfileStore interface {
	GetCard(ctx context.Context, userID int64) (pgrepo.ProfileCard, error)
}

type Icebreaker interface {
	Icebreakers(ctx context.Context, a, b enrichment.Profile) []string
}

type Service struct {
	matchStore MatchStore
	profiles   ProfileStore
	icebreaker Icebreaker
}

type Dependencies struct {
	MatchStore MatchStore
	Profiles   ProfileStore
	Icebreaker Icebreaker
}

type MatchItem struct {
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

type MatchDetail struct {
	ID           int64
	TargetUserID int64
	ThreadID     string
	Status       string
	Summary      *string
	Icebreakers  []string
	DisplayName  string
	Headline     string
	City         string
	State        string
	Bio          string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func NewService(deps Dependencies) *Service {
	return &Service{
		matchStore: deps.MatchStore,
		profiles:   deps.Profiles,
		icebreaker: deps.Icebreaker,
	}
}

// List returns active matches newest first, each exposing the other
// participant's profile.
func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}

	rows, err := s.matchStore.ListActiveForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			ID:           row.ID,
			TargetUserID: row.TargetUserID,
			ThreadID:     row.ThreadID,
			DisplayName:  row.DisplayName,
			Headline:     row.Headline,
			City:         row.City,
			State:        row.State,
			CreatedAt:    row.CreatedAt,
			ExpiresAt:    row.ExpiresAt,
		})
	}
	return items, nil
}

// Detail loads one match for a participant, with the generated summary when
// available and on-demand icebreakers. Icebreaker failures degrade to an
// empty list, never an error.
func (s *Service) Detail(ctx context.Context, matchID, userID int64) (MatchDetail, error) {
	if matchID <= 0 || userID <= 0 {
		return MatchDetail{}, ErrValidation
	}
	if s.matchStore == nil || s.profiles == nil {
		return MatchDetail{}, fmt.Errorf("match detail dependencies are not configured")
	}

	rec, err := s.matchStore.GetForUser(ctx, matchID, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return MatchDetail{}, ErrNotFound
		}
		return MatchDetail{}, err
	}

	targetID := rec.UserAID
	if targetID == userID {
		targetID = rec.UserBID
	}

	target, err := s.profiles.GetCard(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return MatchDetail{}, ErrNotFound
		}
		return MatchDetail{}, err
	}

	detail := MatchDetail{
		ID:           rec.ID,
		TargetUserID: targetID,
		ThreadID:     rec.ThreadID,
		Status:       rec.Status,
		Summary:      rec.Summary,
		Icebreakers:  []string{},
		DisplayName:  target.DisplayName,
		Headline:     target.Headline,
		City:         target.City,
		State:        target.State,
		Bio:          target.Bio,
		CreatedAt:    rec.CreatedAt,
		ExpiresAt:    rec.ExpiresAt,
	}

	if s.icebreaker != nil {
		requester, err := s.profiles.GetCard(ctx, userID)
		if err == nil {
			detail.Icebreakers = s.icebreaker.Icebreakers(ctx, toEnrichmentProfile(requester), toEnrichmentProfile(target))
		}
	}

	return detail, nil
}

func toEnrichmentProfile(card pgrepo.ProfileCard) enrichment.Profile {
	return enrichment.Profile{
		DisplayName:   card.DisplayName,
		Headline:      card.Headline,
		City:          card.City,
		State:         card.State,
		Bio:           card.Bio,
		PortfolioTags: append([]string(nil), card.PortfolioTags...),
	}
}
