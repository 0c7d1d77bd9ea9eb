// Package server is the composition root: it wires configuration, the
// database, storage, services, and handlers into a chi router and owns the
// server lifecycle.
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
	"github.com/go-chi/cors"

	"github.com/sakif/portfolio-backend/internal/auth"
	"github.com/sakif/portfolio-backend/internal/config"
	"github.com/sakif/portfolio-backend/internal/handler"
	"github.com/sakif/portfolio-backend/internal/middleware"
	sqliteRepo "github.com/sakif/portfolio-backend/internal/repository/sqlite"
	"github.com/sakif/portfolio-backend/internal/service"
	"github.com/sakif/portfolio-backend/internal/storage"
)

// Server holds the router and the resources it owns. The database is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain. Each layer receives only the
// interfaces it needs; nothing below the handler layer sees HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	blobs, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(blobs); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes(blobs *storage.Local) error {
	hasher := auth.NewHasher(auth.HashParams{
		SaltLength: s.cfg.HashSaltLength,
		Time:       s.cfg.HashTime,
		Memory:     s.cfg.HashMemoryKiB,
		Threads:    s.cfg.HashParallelism,
		KeyLength:  s.cfg.HashKeyLength,
	}, auth.DefaultPolicy())

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return err
	}

	var github *auth.GitHubProvider
	if s.cfg.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.cfg.GitHubClientID, s.cfg.GitHubClientSecret, s.cfg.GitHubCallbackURL)
	}

	authSvc := service.NewAuthService(s.db, hasher, tokens, s.logger, s.cfg.LoginDistinctErrors)
	userSvc := service.NewUserService(s.db, hasher, s.logger)
	projectSvc := service.NewProjectService(s.db, s.db, s.logger)
	pageSvc := service.NewPageDataService(s.db, s.logger)
	fileSvc := service.NewFileService(s.db, blobs, s.cfg.AllowedFileTypes, s.cfg.AllowedExtensions, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, github, s.logger)
	userHandler := handler.NewUserHandler(userSvc, s.logger)
	projectHandler := handler.NewProjectHandler(projectSvc, s.logger)
	pageHandler := handler.NewPageDataHandler(pageSvc, s.logger)
	fileHandler := handler.NewFileHandler(fileSvc, s.cfg.MaxUploadBytes, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := auth.RequireAuth(tokens, s.db, s.logger)
	requireAdmin := auth.RequireAdmin(tokens, s.db, s.logger)

	if github != nil {
		s.router.Route("/auth/github", func(r chi.Router) {
			r.Get("/login", authHandler.GitHubLogin)
			r.Get("/callback", authHandler.GitHubCallback)
		})
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Public reads so the frontend renders without a session.
		r.Get("/projects", projectHandler.List)
		r.Get("/projects/{id}", projectHandler.Get)
		r.Get("/page-data/{page}", pageHandler.Get)
		r.Get("/files", fileHandler.List)
		r.Get("/files/{id}", fileHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", userHandler.Me)
			r.Get("/users/{id}", userHandler.Get)
			r.Put("/users/{id}", userHandler.Update)
			r.Put("/users/{id}/password", userHandler.ChangePassword)
			r.Delete("/users/{id}", userHandler.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/users", userHandler.List)
			r.Put("/users/{id}/admin", userHandler.SetAdmin)

			r.Post("/projects", projectHandler.Create)
			r.Put("/projects/{id}", projectHandler.Update)
			r.Delete("/projects/{id}", projectHandler.Delete)

			r.Post("/page-data/{page}", pageHandler.Create)
			r.Put("/page-data/{page}", pageHandler.Update)
			r.Delete("/page-data/{page}", pageHandler.Delete)

			r.Post("/files/upload/{fileType}", fileHandler.Upload)
			r.Put("/files/{id}", fileHandler.Update)
			r.Delete("/files/{id}", fileHandler.Delete)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully
// and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
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
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
			slog.Bool("github_login", s.cfg.GitHubEnabled()),
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
