package handlers

import (
	"context"
	"net/http"

	authsvc "github.com/ndvoropaev/linkup/internal/services/auth"
	"github.com/ndvoropaev/linkup/internal/transport/http/dto"
	httperrors "github.com/ndvoropaev/linkup/internal/transport/http/errors"
)

// MatchSweeper expires overdue matches on demand.
type MatchSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type AdminHandler struct {
	sweeper MatchSweeper
}

func NewAdminHandler(sweeper MatchSweeper) *AdminHandler {
	return &AdminHandler{sweeper: sweeper}
}

func (h *AdminHandler) SweepMatches(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.sweeper == nil {
		writeInternal(w, "SWEEP_UNAVAILABLE", "match sweeper is unavailable")
		return
	}

	expired, err := h.sweeper.Sweep(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to sweep matches")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SweepResponse{OK: true, Expired: expired})
}
