package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndvoropaev/linkup/internal/domain/rules"
	pgrepo "github.com/ndvoropaev/linkup/internal/repo/postgres"
)

type repoStub struct {
	viewer    pgrepo.DeckViewerContext
	viewerErr error

	candidates []pgrepo.CandidateRecord
	listErr    error

	lastQuery pgrepo.DeckQuery
}

func (r *repoStub) GetViewerContext(_ context.Context, _ int64) (pgrepo.DeckViewerContext, error) {
	return r.viewer, r.viewerErr
}

func (r *repoStub) ListCandidates(_ context.Context, q pgrepo.DeckQuery) ([]pgrepo.CandidateRecord, error) {
	r.lastQuery = q
	return r.candidates, r.listErr
}

func timePtr(t time.Time) *time.Time { return &t }

func newDeckService(repo *repoStub) *Service {
	svc := NewService(repo, Config{})
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestGetDeckScoresExampleFromAustin(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &repoStub{
		viewer: pgrepo.DeckViewerContext{UserID: 1, City: "Austin", State: "TX"},
		candidates: []pgrepo.CandidateRecord{
			{UserID: 2, City: "Austin", State: "TX", AvgRating: 4.5, ReviewCount: 12, LastActiveAt: timePtr(now)},
			{UserID: 3, City: "Denver", State: "CO", AvgRating: 4.5, ReviewCount: 12, LastActiveAt: timePtr(now)},
		},
	}
	svc := newDeckService(repo)

	cards, err := svc.GetDeck(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected both candidates, got %d", len(cards))
	}
	if cards[0].UserID != 2 || cards[1].UserID != 3 {
		t.Fatalf("local candidate must rank first: %+v", cards)
	}
	if cards[0].Score != 77.5 {
		t.Fatalf("Austin candidate score: got %v want 77.5", cards[0].Score)
	}
	if cards[1].Score != 41.5 {
		t.Fatalf("Denver candidate score: got %v want 41.5", cards[1].Score)
	}
}

func TestGetDeckStableSortKeepsPoolOrderOnTies(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	same := pgrepo.CandidateRecord{City: "Austin", State: "TX", AvgRating: 4.0, ReviewCount: 10, LastActiveAt: timePtr(now)}

	first, second, third := same, same, same
	first.UserID = 21
	second.UserID = 22
	third.UserID = 23

	repo := &repoStub{
		viewer:     pgrepo.DeckViewerContext{UserID: 1, City: "Austin", State: "TX"},
		candidates: []pgrepo.CandidateRecord{first, second, third},
	}
	svc := newDeckService(repo)

	cards, err := svc.GetDeck(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	for i, want := range []int64{21, 22, 23} {
		if cards[i].UserID != want {
			t.Fatalf("tie order broken at %d: got %d want %d", i, cards[i].UserID, want)
		}
	}
}

func TestGetDeckTruncatesToLimit(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &repoStub{viewer: pgrepo.DeckViewerContext{UserID: 1, City: "Austin", State: "TX"}}
	for i := int64(0); i < 30; i++ {
		repo.candidates = append(repo.candidates, pgrepo.CandidateRecord{
			UserID:       100 + i,
			City:         "Austin",
			State:        "TX",
			LastActiveAt: timePtr(now),
		})
	}
	svc := newDeckService(repo)

	cards, err := svc.GetDeck(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	if len(cards) != 5 {
		t.Fatalf("deck must be truncated to limit: got %d", len(cards))
	}

	cards, err = svc.GetDeck(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("get deck default limit: %v", err)
	}
	if len(cards) != rules.DefaultDeckSize {
		t.Fatalf("default limit: got %d want %d", len(cards), rules.DefaultDeckSize)
	}
}

func TestGetDeckSpecializationOverlap(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &repoStub{
		viewer: pgrepo.DeckViewerContext{UserID: 1, City: "Austin", State: "TX", SeekingTypes: []string{"wedding", "drone"}},
		candidates: []pgrepo.CandidateRecord{
			{UserID: 2, City: "Austin", State: "TX", Bio: "Wedding photographer", PortfolioTags: []string{"drone"}, LastActiveAt: timePtr(now)},
			{UserID: 3, City: "Austin", State: "TX", Bio: "Studio portraits", LastActiveAt: timePtr(now)},
		},
	}
	svc := newDeckService(repo)

	cards, err := svc.GetDeck(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	if cards[0].UserID != 2 {
		t.Fatalf("overlapping candidate must rank first")
	}
	if diff := cards[0].Score - cards[1].Score; diff != rules.SpecializationMaxScore {
		t.Fatalf("full overlap should add the whole specialization cap, diff=%v", diff)
	}
}

func TestGetDeckMonotonicInReviewCount(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	base := pgrepo.CandidateRecord{UserID: 2, City: "Austin", State: "TX", AvgRating: 4.0, LastActiveAt: timePtr(now)}

	prev := -1.0
	for count := 0; count <= 12; count += 2 {
		candidate := base
		candidate.ReviewCount = count
		repo := &repoStub{
			viewer:     pgrepo.DeckViewerContext{UserID: 1, City: "Austin", State: "TX"},
			candidates: []pgrepo.CandidateRecord{candidate},
		}
		cards, err := newDeckService(repo).GetDeck(context.Background(), 1, 1)
		if err != nil {
			t.Fatalf("get deck: %v", err)
		}
		if cards[0].Score < prev {
			t.Fatalf("score decreased as reviewCount grew: %v < %v at count=%d", cards[0].Score, prev, count)
		}
		prev = cards[0].Score
	}
}

func TestGetDeckOpaqueErrorOnPoolFailure(t *testing.T) {
	repo := &repoStub{
		viewer:  pgrepo.DeckViewerContext{UserID: 1, City: "Austin", State: "TX"},
		listErr: errors.New("connection refused"),
	}
	svc := newDeckService(repo)

	cards, err := svc.GetDeck(context.Background(), 1, 10)
	if !errors.Is(err, ErrRankingFailed) {
		t.Fatalf("expected ErrRankingFailed, got %v", err)
	}
	if cards != nil {
		t.Fatalf("no partial deck may be returned, got %+v", cards)
	}
}

func TestGetDeckOpaqueErrorOnViewerFailure(t *testing.T) {
	repo := &repoStub{viewerErr: errors.New("timeout")}
	svc := newDeckService(repo)

	if _, err := svc.GetDeck(context.Background(), 1, 10); !errors.Is(err, ErrRankingFailed) {
		t.Fatalf("expected ErrRankingFailed, got %v", err)
	}
}

func TestGetDeckRejectsInvalidRequester(t *testing.T) {
	svc := newDeckService(&repoStub{})

	if _, err := svc.GetDeck(context.Background(), 0, 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGetDeckNoSeekingTagsNeitherPenalizedNorRewarded(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	candidate := pgrepo.CandidateRecord{UserID: 2, City: "Austin", State: "TX", AvgRating: 4.5, ReviewCount: 12, Bio: "wedding drone", LastActiveAt: timePtr(now)}

	withTags := &repoStub{
		viewer:     pgrepo.DeckViewerContext{UserID: 1, City: "Austin", State: "TX"},
		candidates: []pgrepo.CandidateRecord{candidate},
	}
	cards, err := newDeckService(withTags).GetDeck(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	if cards[0].Score != 77.5 {
		t.Fatalf("no seeking tags must contribute exactly 0: got %v", cards[0].Score)
	}
}
