// Package server wires the router, middleware, and handlers, and owns the
// server lifecycle. It is the composition root: every dependency chain is
// assembled in New, and nothing below this package knows about the others'
// concrete types.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/forgeworld/forge/internal/auth"
	"github.com/forgeworld/forge/internal/handler"
	"github.com/forgeworld/forge/internal/middleware"
	"github.com/forgeworld/forge/internal/readme"
	sqliteRepo "github.com/forgeworld/forge/internal/repository/sqlite"
	"github.com/forgeworld/forge/internal/service"
)

// Config holds server configuration, resolved by main from the environment.
type Config struct {
	Port          int
	DBPath        string
	SessionSecret string

	// Admin is the fixed administrative account. Admin.PasswordHash is
	// already a bcrypt hash; the plaintext never reaches this package.
	Admin service.AdminConfig

	// ReadmeEndpoint is the optional text generation API for README
	// drafts. Empty means the template fallback is used directly.
	ReadmeEndpoint string
	ReadmeAPIKey   string
}

// Server is the HTTP server and the resources it owns. The database
// connection is closed during shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, services, handlers,
// routes. Each layer receives only the interfaces it needs.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	auditService := service.NewAuditService(s.db, s.logger)
	accountService := service.NewAccountService(
		s.db, s.db, s.db,
		auditService, passwords, tokens,
		s.config.Admin, s.logger,
	)
	repoService := service.NewRepoService(s.db, s.logger)
	statsService := service.NewStatsService(s.db, s.db, s.db)

	var generator readme.Generator
	if s.config.ReadmeEndpoint != "" {
		generator = readme.NewHTTPGenerator(s.config.ReadmeEndpoint, s.config.ReadmeAPIKey)
	}
	readmeService := readme.NewService(generator, s.logger)

	authHandler := handler.NewAuthHandler(accountService, s.logger)
	repoHandler := handler.NewRepoHandler(repoService, accountService, statsService, readmeService, s.logger)
	adminHandler := handler.NewAdminHandler(accountService, auditService, statsService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Session-holder routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
			r.Put("/me", authHandler.HandleUpdateProfile)
			r.Put("/me/avatar", authHandler.HandleUpdateAvatar)
			r.Get("/me/repos", repoHandler.HandleMine)
			r.Put("/repos/{id}", repoHandler.HandleUpdate)
			r.Delete("/repos/{id}", repoHandler.HandleDelete)
		})

		// Public reads; creation works signed out too (anonymous owner).
		r.Get("/repos", repoHandler.HandleList)
		r.Get("/repos/pinned", repoHandler.HandlePinned)
		r.Get("/repos/{id}", repoHandler.HandleGet)
		r.With(auth.OptionalAuth(tokens)).Post("/repos", repoHandler.HandleCreate)
		r.Post("/repos/{id}/readme", repoHandler.HandleGenerateReadme)
		r.Get("/stats", repoHandler.HandleStats)

		// Admin console.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(tokens))
			r.Get("/admin/stats", adminHandler.HandleStats)
			r.Get("/admin/users", adminHandler.HandleListUsers)
			r.Delete("/admin/users/{email}", adminHandler.HandleDeleteUser)
			r.Get("/admin/logs", adminHandler.HandleListLogs)
			r.Get("/admin/sessions", adminHandler.HandleListSessions)
		})
	})

	return nil
}

// Start seeds the starter catalogue, serves HTTP, and handles graceful
// shutdown. It blocks until SIGINT/SIGTERM or a server error.
func (s *Server) Start() error {
	defer s.db.Close()

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	n, err := s.db.Seed(seedCtx)
	cancelSeed()
	if err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if n > 0 {
		s.logger.Info("seeded starter repositories", slog.Int("count", n))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
