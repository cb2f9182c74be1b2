package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/ndvoropaev/linkup/internal/services/auth"
	discoverysvc "github.com/ndvoropaev/linkup/internal/services/discovery"
	matchessvc "github.com/ndvoropaev/linkup/internal/services/matches"
	preferencessvc "github.com/ndvoropaev/linkup/internal/services/preferences"
	swipesvc "github.com/ndvoropaev/linkup/internal/services/swipes"
	"github.com/ndvoropaev/linkup/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager         *authsvc.JWTManager
	DiscoveryService   *discoverysvc.Service
	SwipeService       *swipesvc.Service
	MatchService       *matchessvc.Service
	PreferencesService *preferencessvc.Service
	MatchSweeper       handlers.MatchSweeper
	Logger             *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	deckHandler := handlers.NewDeckHandler(deps.DiscoveryService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	preferencesHandler := handlers.NewPreferencesHandler(deps.PreferencesService)
	adminHandler := handlers.NewAdminHandler(deps.MatchSweeper)

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)
	adminRoleMW := RequireRole("OWNER", "SUPPORT")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.With(authMW).Get("/deck", deckHandler.Handle)
		r.With(authMW).Post("/swipe", swipeHandler.Handle)
		r.With(authMW).Get("/matches", matchesHandler.List)
		r.With(authMW).Get("/matches/{matchID}", matchesHandler.Detail)
		r.With(authMW).Get("/preferences", preferencesHandler.Get)
		r.With(authMW).Patch("/preferences", preferencesHandler.Update)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(authMW, adminRoleMW).Post("/matches/sweep", adminHandler.SweepMatches)
	})
}
