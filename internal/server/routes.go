package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"textrecords/internal/db"
	"textrecords/internal/handlers"
	"textrecords/internal/handlers/api"
	"textrecords/internal/middleware"
)

// ErrNoAuthProvider is returned when neither OIDC nor local accounts are enabled.
var ErrNoAuthProvider = errors.New("no authentication provider enabled: set OIDC_ISSUER or ENABLE_LOCAL_ACCOUNTS")

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB, gatherer prometheus.Gatherer) error {
	if !s.Cfg.IsOIDCEnabled() && !s.Cfg.EnableLocalAccounts {
		return ErrNoAuthProvider
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(database)

	// Initialize handlers
	tallyHandler := handlers.NewTallyHandler(s.Cfg, s.Display, s.Logger)
	recordsHandler := handlers.NewRecordsHandler(database, s.Cfg, s.Display, s.Logger)
	accountHandler := handlers.NewAccountHandler(database, s.Cfg, s.Logger)
	probeHandler := handlers.NewProbeHandler(database)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Auth routes
	if s.Cfg.IsOIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database, s.Logger)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
	} else {
		s.Logger.Info("OIDC sign-in disabled, set OIDC_ISSUER to enable")
	}
	s.App.Get("/auth/logout", handlers.Logout)

	s.App.Get("/login", authMiddleware.OptionalAuth, accountHandler.ShowLogin)
	if s.Cfg.EnableLocalAccounts {
		s.App.Post("/login", accountHandler.Login)
		s.App.Get("/register", accountHandler.ShowRegister)
		s.App.Post("/register", accountHandler.Register)
	}

	// Frontend routes - always require authentication
	s.App.Get("/", authMiddleware.RequireAuth, tallyHandler.Index)
	s.App.Get("/sample", authMiddleware.RequireAuth, tallyHandler.Sample)
	s.App.Post("/process", authMiddleware.RequireAuth, tallyHandler.Process)
	s.App.Post("/view/toggle", authMiddleware.RequireAuth, tallyHandler.ToggleView)
	s.App.Get("/search", authMiddleware.RequireAuth, tallyHandler.Search)
	s.App.Get("/filter", authMiddleware.RequireAuth, tallyHandler.Filter)
	s.App.Get("/suggest", authMiddleware.RequireAuth, tallyHandler.Suggest)
	s.App.Get("/records", authMiddleware.RequireAuth, recordsHandler.History)
	s.App.Post("/records/save", authMiddleware.RequireAuth, recordsHandler.Save)

	// JSON API
	apiTally := api.NewTallyHandler(s.Cfg, s.Logger)
	apiRecords := api.NewRecordHandler(database, s.Cfg, s.Logger)

	v1 := s.App.Group("/api/v1", authMiddleware.RequireAPIAuth)
	v1.Post("/tally", apiTally.Tally)
	v1.Post("/tally/find", apiTally.Find)
	v1.Get("/records", apiRecords.List)
	v1.Post("/records", apiRecords.Save)
	v1.Get("/records/find", apiRecords.Find)

	s.Logger.Info("routes registered",
		zap.Bool("oidc", s.Cfg.IsOIDCEnabled()),
		zap.Bool("local_accounts", s.Cfg.EnableLocalAccounts))

	return nil
}
