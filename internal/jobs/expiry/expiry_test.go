package expiry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type expirerStub struct {
	due     map[int64]time.Time // match id -> expires at
	expired map[int64]bool
	err     error
	calls   int
	lastNow time.Time
}

func (s *expirerStub) ExpireDue(_ context.Context, now time.Time) (int64, error) {
	s.calls++
	s.lastNow = now
	if s.err != nil {
		return 0, s.err
	}

	var count int64
	for id, expiresAt := range s.due {
		if s.expired[id] {
			continue
		}
		if !expiresAt.After(now) {
			s.expired[id] = true
			count++
		}
	}
	return count, nil
}

func TestSweepExpiresOnlyDueMatches(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	stub := &expirerStub{
		due: map[int64]time.Time{
			1: now.Add(-time.Minute),
			2: now,
			3: now.Add(time.Hour),
		},
		expired: map[int64]bool{},
	}
	job := New(stub, time.Hour, nil)
	job.now = func() time.Time { return now }

	count, err := job.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 expired, got %d", count)
	}
	if stub.expired[3] {
		t.Fatalf("future match must be left untouched")
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	stub := &expirerStub{
		due:     map[int64]time.Time{1: now.Add(-time.Minute)},
		expired: map[int64]bool{},
	}
	job := New(stub, time.Hour, nil)
	job.now = func() time.Time { return now }

	if count, _ := job.Sweep(context.Background()); count != 1 {
		t.Fatalf("first sweep should expire one match, got %d", count)
	}
	count, err := job.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if count != 0 {
		t.Fatalf("second consecutive sweep must expire zero rows, got %d", count)
	}
}

func TestSweepWrapsStoreError(t *testing.T) {
	stub := &expirerStub{err: errors.New("connection reset")}
	job := New(stub, time.Hour, nil)

	if _, err := job.Sweep(context.Background()); err == nil {
		t.Fatalf("store failure must surface")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	stub := &expirerStub{due: map[int64]time.Time{}, expired: map[int64]bool{}}
	job := New(stub, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("run did not stop after cancel")
	}
	if stub.calls == 0 {
		t.Fatalf("ticker should have driven at least one sweep")
	}
}
