package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/ndvoropaev/linkup/internal/services/auth"
	preferencessvc "github.com/ndvoropaev/linkup/internal/services/preferences"
	"github.com/ndvoropaev/linkup/internal/transport/http/dto"
	httperrors "github.com/ndvoropaev/linkup/internal/transport/http/errors"
)

type PreferencesHandler struct {
	service *preferencessvc.Service
}

func NewPreferencesHandler(service *preferencessvc.Service) *PreferencesHandler {
	return &PreferencesHandler{service: service}
}

func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PREFERENCES_SERVICE_UNAVAILABLE", "preferences service is unavailable")
		return
	}

	prefs, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, preferencessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid preferences request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load preferences")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, toPreferencesResponse(prefs))
}

func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PREFERENCES_SERVICE_UNAVAILABLE", "preferences service is unavailable")
		return
	}

	var req dto.PreferencesUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	prefs, err := h.service.Update(r.Context(), identity.UserID, preferencessvc.Update{
		Discoverable: req.Discoverable,
		SeekingTypes: req.SeekingTypes,
		BudgetMin:    req.BudgetMin,
		BudgetMax:    req.BudgetMax,
	})
	if err != nil {
		switch {
		case errors.Is(err, preferencessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid preferences update")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to update preferences")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, toPreferencesResponse(prefs))
}

func toPreferencesResponse(prefs preferencessvc.Preferences) dto.PreferencesResponse {
	return dto.PreferencesResponse{
		Discoverable: prefs.Discoverable,
		SeekingTypes: prefs.SeekingTypes,
		BudgetMin:    prefs.BudgetMin,
		BudgetMax:    prefs.BudgetMax,
	}
}
