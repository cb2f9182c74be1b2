package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/ndvoropaev/linkup/internal/services/auth"
	discoverysvc "github.com/ndvoropaev/linkup/internal/services/discovery"
	"github.com/ndvoropaev/linkup/internal/transport/http/dto"
	httperrors "github.com/ndvoropaev/linkup/internal/transport/http/errors"
)

type DeckHandler struct {
	service *discoverysvc.Service
}

func NewDeckHandler(service *discoverysvc.Service) *DeckHandler {
	return &DeckHandler{service: service}
}

func (h *DeckHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DECK_SERVICE_UNAVAILABLE", "deck service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 0)

	cards, err := h.service.GetDeck(r.Context(), identity.UserID, limit)
	if err != nil {
		switch {
		case errors.Is(err, discoverysvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid deck request")
		default:
			writeInternal(w, "RANKING_FAILED", "failed to build deck")
		}
		return
	}

	items := make([]dto.DeckCardResponse, 0, len(cards))
	for _, card := range cards {
		items = append(items, dto.DeckCardResponse{
			UserID:          card.UserID,
			DisplayName:     card.DisplayName,
			Headline:        card.Headline,
			City:            card.City,
			State:           card.State,
			AvatarURL:       card.AvatarURL,
			AvgRating:       card.AvgRating,
			ReviewCount:     card.ReviewCount,
			EventCount:      card.EventCount,
			Specializations: card.Specializations,
			Score:           card.Score,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.DeckResponse{Items: items})
}
