package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/ndvoropaev/linkup/internal/repo/postgres"
	authsvc "github.com/ndvoropaev/linkup/internal/services/auth"
	swipesvc "github.com/ndvoropaev/linkup/internal/services/swipes"
)

type fakeTxRunner struct{}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

type fakeSwipeStore struct {
	mutual bool
}

func (f *fakeSwipeStore) Upsert(_ context.Context, _ pgx.Tx, swiperUserID, targetUserID int64, direction string, now time.Time) (pgrepo.SwipeRecord, error) {
	return pgrepo.SwipeRecord{
		SwiperUserID: swiperUserID,
		TargetUserID: targetUserID,
		Direction:    direction,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (f *fakeSwipeStore) HasLike(context.Context, pgx.Tx, int64, int64) (bool, error) {
	return f.mutual, nil
}

type fakeMatchStore struct {
	nextID int64
}

func (f *fakeMatchStore) GetByPair(context.Context, pgx.Tx, int64, int64) (pgrepo.MatchRecord, bool, error) {
	return pgrepo.MatchRecord{}, false, nil
}

func (f *fakeMatchStore) Insert(context.Context, pgx.Tx, int64, int64, string, time.Time, time.Time) (int64, bool, error) {
	f.nextID++
	return f.nextID, true, nil
}

func (f *fakeMatchStore) SetSummaryIfEmpty(context.Context, int64, string) error {
	return nil
}

type fakeThreadStore struct{}

func (fakeThreadStore) Create(context.Context, pgx.Tx, string, int64, int64, time.Time) error {
	return nil
}

type fakeNotificationStore struct{}

func (fakeNotificationStore) Create(context.Context, pgx.Tx, pgrepo.NotificationRecord, time.Time) error {
	return nil
}

type blockedLimiter struct {
	retryAfter int64
}

func (l blockedLimiter) AllowLike(context.Context, int64) (int64, bool, error) {
	return l.retryAfter, false, nil
}

func newSwipeService(mutual bool, limiter swipesvc.RateLimiter) *swipesvc.Service {
	return swipesvc.NewService(swipesvc.Dependencies{
		Tx:            fakeTxRunner{},
		SwipeStore:    &fakeSwipeStore{mutual: mutual},
		MatchStore:    &fakeMatchStore{},
		ThreadStore:   fakeThreadStore{},
		Notifications: fakeNotificationStore{},
		RateLimiter:   limiter,
	}, swipesvc.Config{})
}

func TestSwipeHandlerRequiresAuth(t *testing.T) {
	h := NewSwipeHandler(newSwipeService(false, nil))

	body := bytes.NewReader([]byte(`{"target_id":5,"direction":"LIKE"}`))
	req := httptest.NewRequest(http.MethodPost, "/v1/swipe", body)
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestSwipeHandlerRejectsUnsupportedDirection(t *testing.T) {
	h := NewSwipeHandler(newSwipeService(false, nil))

	rec := performSwipeRequest(t, h, 5, "SIDEWAYS")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestSwipeHandlerRejectsMalformedBody(t *testing.T) {
	h := NewSwipeHandler(newSwipeService(false, nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/swipe", bytes.NewReader([]byte(`{not json`)))
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: 101, Role: "user"}))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSwipeHandlerReportsMutualMatch(t *testing.T) {
	h := NewSwipeHandler(newSwipeService(true, nil))

	rec := performSwipeRequest(t, h, 5, "LIKE")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		OK       bool   `json:"ok"`
		Matched  bool   `json:"matched"`
		MatchID  *int64 `json:"match_id"`
		ThreadID string `json:"thread_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK || !payload.Matched {
		t.Fatalf("expected matched response, got %+v", payload)
	}
	if payload.MatchID == nil || *payload.MatchID <= 0 {
		t.Fatalf("expected match_id in matched response")
	}
	if payload.ThreadID == "" {
		t.Fatalf("expected thread_id in matched response")
	}
}

func TestSwipeHandlerOmitsMatchFieldsOnOneSidedLike(t *testing.T) {
	h := NewSwipeHandler(newSwipeService(false, nil))

	rec := performSwipeRequest(t, h, 5, "LIKE")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["matched"] != false {
		t.Fatalf("expected matched=false, got %v", payload["matched"])
	}
	if _, present := payload["match_id"]; present {
		t.Fatalf("match_id must be omitted on one-sided like")
	}
}

func TestSwipeHandlerReturnsTooFastWithRetryHint(t *testing.T) {
	h := NewSwipeHandler(newSwipeService(false, blockedLimiter{retryAfter: 42}))

	rec := performSwipeRequest(t, h, 5, "LIKE")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "TOO_FAST" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
	if payload.RetryAfterSec != 42 {
		t.Fatalf("unexpected retry_after_sec: %d", payload.RetryAfterSec)
	}
}

func performSwipeRequest(t *testing.T, h *SwipeHandler, targetID int64, direction string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"target_id": targetID,
		"direction": direction,
	})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/swipe", bytes.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 101,
		Role:   "user",
	}))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}
