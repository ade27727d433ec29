// Package server is the composition root: it opens the database, builds the
// services and handlers, mounts the routes and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/mentor-directory/internal/auth"
	"github.com/sakif/mentor-directory/internal/config"
	"github.com/sakif/mentor-directory/internal/handler"
	"github.com/sakif/mentor-directory/internal/middleware"
	sqliteRepo "github.com/sakif/mentor-directory/internal/repository/sqlite"
	"github.com/sakif/mentor-directory/internal/search"
	"github.com/sakif/mentor-directory/internal/service"
)

// Server owns the router and the database connection. The database is
// closed when Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path, logger)
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

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the database without starting the listener.
func (s *Server) Close() error { return s.db.Close() }

func (s *Server) setupRoutes() error {
	cfg := s.config

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	aliases, err := search.LoadAliases(cfg.Search.AliasesFile)
	if err != nil {
		return fmt.Errorf("loading aliases: %w", err)
	}
	engine := search.NewEngine(aliases, nil)

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(cfg.Auth.BcryptCost)

	var google *auth.GoogleProvider
	if cfg.Auth.Google.Enabled() {
		google = auth.NewGoogleProvider(
			cfg.Auth.Google.ClientID,
			cfg.Auth.Google.ClientSecret,
			cfg.Auth.Google.CallbackURL,
			cfg.Auth.EmailDomain,
		)
	}

	accountService := service.NewAccountService(
		s.db, s.db, tokens, passwords,
		service.NewLogNotifier(s.logger),
		cfg.Auth.EmailDomain, s.logger,
	)
	profileService := service.NewProfileService(s.db, s.db, cfg.Auth.EmailDomain, s.logger)
	mentorService := service.NewMentorService(
		s.db, s.db, s.db, engine,
		cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize,
		s.logger,
	)

	accountHandler := handler.NewAccountHandler(accountService, google, tokens, cfg.Auth.CookieSecure, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)
	mentorHandler := handler.NewMentorHandler(mentorService, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	if google != nil {
		s.router.Get("/auth/google/login", accountHandler.HandleGoogleLogin)
		s.router.Get("/auth/google/callback", accountHandler.HandleGoogleCallback)
	}

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/accounts", accountHandler.HandleRegister)
		r.With(requireAuth).Post("/accounts/verify", accountHandler.HandleVerify)
		r.Post("/password-reset/request", accountHandler.HandleRequestReset)
		r.Post("/password-reset", accountHandler.HandleReset)

		r.Post("/auth/login", accountHandler.HandleLogin)
		r.Post("/auth/logout", accountHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", profileHandler.HandleGet)
			r.Patch("/me", profileHandler.HandlePatch)

			r.Route("/mentors", func(r chi.Router) {
				r.Post("/me", mentorHandler.HandleBecome)
				r.Get("/me", mentorHandler.HandleGetMine)
				r.Patch("/me", mentorHandler.HandlePatchMine)
				r.Get("/search", mentorHandler.HandleSearch)
				r.Get("/{id}", mentorHandler.HandleGet)
			})
		})
	})

	s.logger.Debug("routes configured",
		slog.Bool("google_sign_in", google != nil),
		slog.Int("alias_groups", aliases.Len()),
	)
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Start() error {
	defer s.db.Close()

	cfg := s.config.Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", cfg.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", cfg.Port)),
			slog.String("database", s.config.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
