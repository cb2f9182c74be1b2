package preferences

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	pgrepo "github.com/ndvoropaev/linkup/internal/repo/postgres"
)

const maxSeekingTypes = 20

var ErrValidation = errors.New("validation error")

type Store interface {
	Get(ctx context.Context, userID int64) (pgrepo.PreferenceRecord, error)
	Upsert(ctx context.Context, userID int64, upd pgrepo.PreferenceUpdate) (pgrepo.PreferenceRecord, error)
}

type Preferences struct {
	Discoverable bool
	SeekingTypes []string
	BudgetMin    *int
	BudgetMax    *int
}

// Update carries partial semantics: nil fields stay untouched.
type Update struct {
	Discoverable *bool
	SeekingTypes []string
	BudgetMin    *int
	BudgetMax    *int
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, userID int64) (Preferences, error) {
	if userID <= 0 {
		return Preferences{}, ErrValidation
	}
	if s.store == nil {
		return Preferences{}, fmt.Errorf("preference store is nil")
	}

	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	return fromRecord(rec), nil
}

func (s *Service) Update(ctx context.Context, userID int64, upd Update) (Preferences, error) {
	if userID <= 0 {
		return Preferences{}, ErrValidation
	}
	if s.store == nil {
		return Preferences{}, fmt.Errorf("preference store is nil")
	}

	if upd.BudgetMin != nil && *upd.BudgetMin < 0 {
		return Preferences{}, ErrValidation
	}
	if upd.BudgetMax != nil && *upd.BudgetMax < 0 {
		return Preferences{}, ErrValidation
	}
	if upd.BudgetMin != nil && upd.BudgetMax != nil && *upd.BudgetMin > *upd.BudgetMax {
		return Preferences{}, ErrValidation
	}

	var seeking []string
	if upd.SeekingTypes != nil {
		seeking = normalizeSeekingTypes(upd.SeekingTypes)
		if len(seeking) > maxSeekingTypes {
			return Preferences{}, ErrValidation
		}
	}

	rec, err := s.store.Upsert(ctx, userID, pgrepo.PreferenceUpdate{
		Discoverable: upd.Discoverable,
		SeekingTypes: seeking,
		BudgetMin:    upd.BudgetMin,
		BudgetMax:    upd.BudgetMax,
	})
	if err != nil {
		return Preferences{}, err
	}
	return fromRecord(rec), nil
}

func fromRecord(rec pgrepo.PreferenceRecord) Preferences {
	return Preferences{
		Discoverable: rec.Discoverable,
		SeekingTypes: append([]string{}, rec.SeekingTypes...),
		BudgetMin:    rec.BudgetMin,
		BudgetMax:    rec.BudgetMax,
	}
}

func normalizeSeekingTypes(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	sort.Strings(out)
	return out
}
