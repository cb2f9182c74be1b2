package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/ndvoropaev/linkup/internal/services/auth"
	matchessvc "github.com/ndvoropaev/linkup/internal/services/matches"
	"github.com/ndvoropaev/linkup/internal/transport/http/dto"
	httperrors "github.com/ndvoropaev/linkup/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 50)
	offset := parseIntOrDefault(r.URL.Query().Get("offset"), 0)

	items, err := h.service.List(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		}
		return
	}

	responseItems := make([]dto.MatchItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.MatchItemResponse{
			ID:           item.ID,
			TargetUserID: item.TargetUserID,
			ThreadID:     item.ThreadID,
			DisplayName:  item.DisplayName,
			Headline:     item.Headline,
			City:         item.City,
			State:        item.State,
			CreatedAt:    item.CreatedAt,
			ExpiresAt:    item.ExpiresAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: responseItems})
}

func (h *MatchesHandler) Detail(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	matchID, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil || matchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	detail, err := h.service.Detail(r.Context(), matchID, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match request")
		case errors.Is(err, matchessvc.ErrNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load match")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MatchDetailResponse{
		ID:           detail.ID,
		TargetUserID: detail.TargetUserID,
		ThreadID:     detail.ThreadID,
		Status:       detail.Status,
		Summary:      detail.Summary,
		Icebreakers:  detail.Icebreakers,
		DisplayName:  detail.DisplayName,
		Headline:     detail.Headline,
		City:         detail.City,
		State:        detail.State,
		Bio:          detail.Bio,
		CreatedAt:    detail.CreatedAt,
		ExpiresAt:    detail.ExpiresAt,
	})
}
