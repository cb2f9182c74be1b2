package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	pgrepo "github.com/ndvoropaev/linkup/internal/repo/postgres"
	authsvc "github.com/ndvoropaev/linkup/internal/services/auth"
	matchessvc "github.com/ndvoropaev/linkup/internal/services/matches"
)

type stubMatchStore struct {
	active []pgrepo.ActiveMatchRecord
	byID   map[int64]pgrepo.MatchRecord
}

func (s *stubMatchStore) ListActiveForUser(_ context.Context, _ int64, limit, offset int) ([]pgrepo.ActiveMatchRecord, error) {
	if offset >= len(s.active) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.active) {
		end = len(s.active)
	}
	return s.active[offset:end], nil
}

func (s *stubMatchStore) GetForUser(_ context.Context, matchID, userID int64) (pgrepo.MatchRecord, error) {
	rec, ok := s.byID[matchID]
	if !ok || (rec.UserAID != userID && rec.UserBID != userID) {
		return pgrepo.MatchRecord{}, pgrepo.ErrMatchNotFound
	}
	return rec, nil
}

type stubProfileStore struct {
	cards map[int64]pgrepo.ProfileCard
}

func (s *stubProfileStore) GetCard(_ context.Context, userID int64) (pgrepo.ProfileCard, error) {
	card, ok := s.cards[userID]
	if !ok {
		return pgrepo.ProfileCard{}, pgrepo.ErrProfileNotFound
	}
	return card, nil
}

func newMatchesHandler(t *testing.T) *MatchesHandler {
	t.Helper()

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	summary := "Both booked weddings in Austin this spring."
	svc := matchessvc.NewService(matchessvc.Dependencies{
		MatchStore: &stubMatchStore{
			active: []pgrepo.ActiveMatchRecord{
				{ID: 7, TargetUserID: 2, ThreadID: "thread-7", DisplayName: "Dana", City: "Austin", CreatedAt: created, ExpiresAt: created.Add(72 * time.Hour)},
			},
			byID: map[int64]pgrepo.MatchRecord{
				7: {ID: 7, UserAID: 1, UserBID: 2, Status: pgrepo.MatchStatusMatched, ThreadID: "thread-7", Summary: &summary, CreatedAt: created, ExpiresAt: created.Add(72 * time.Hour)},
			},
		},
		Profiles: &stubProfileStore{cards: map[int64]pgrepo.ProfileCard{
			1: {UserID: 1, DisplayName: "Riley"},
			2: {UserID: 2, DisplayName: "Dana", City: "Austin"},
		}},
	})
	return NewMatchesHandler(svc)
}

func TestMatchesHandlerListReturnsItems(t *testing.T) {
	h := newMatchesHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: 1, Role: "user"}))
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		Items []struct {
			ID           int64  `json:"id"`
			TargetUserID int64  `json:"target_user_id"`
			ThreadID     string `json:"thread_id"`
			DisplayName  string `json:"display_name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("unexpected item count: %d", len(payload.Items))
	}
	if payload.Items[0].ID != 7 || payload.Items[0].TargetUserID != 2 || payload.Items[0].ThreadID != "thread-7" {
		t.Fatalf("unexpected item: %+v", payload.Items[0])
	}
}

func TestMatchesHandlerListRequiresAuth(t *testing.T) {
	h := newMatchesHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMatchesHandlerDetailExposesSummary(t *testing.T) {
	h := newMatchesHandler(t)

	rec := performMatchDetailRequest(t, h, "7", 1)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		ID          int64    `json:"id"`
		Summary     *string  `json:"summary"`
		Icebreakers []string `json:"icebreakers"`
		DisplayName string   `json:"display_name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != 7 {
		t.Fatalf("unexpected match id: %d", payload.ID)
	}
	if payload.Summary == nil || *payload.Summary == "" {
		t.Fatalf("expected summary in detail response")
	}
	if payload.Icebreakers == nil {
		t.Fatalf("icebreakers must be present, possibly empty")
	}
	if payload.DisplayName != "Dana" {
		t.Fatalf("unexpected display name: %q", payload.DisplayName)
	}
}

func TestMatchesHandlerDetailHidesForeignMatch(t *testing.T) {
	h := newMatchesHandler(t)

	rec := performMatchDetailRequest(t, h, "7", 999)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMatchesHandlerDetailRejectsBadID(t *testing.T) {
	h := newMatchesHandler(t)

	rec := performMatchDetailRequest(t, h, "abc", 1)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func performMatchDetailRequest(t *testing.T, h *MatchesHandler, matchID string, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/v1/matches/"+matchID, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("matchID", matchID)
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(authsvc.WithIdentity(ctx, authsvc.Identity{UserID: userID, Role: "user"}))
	rec := httptest.NewRecorder()
	h.Detail(rec, req)
	return rec
}
