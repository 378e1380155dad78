// Package server is the composition root: it wires the database, upstream
// clients, services and handlers together and owns the HTTP server lifecycle.
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

	"github.com/sajj-ina/only-code-connect/internal/auth"
	"github.com/sajj-ina/only-code-connect/internal/config"
	"github.com/sajj-ina/only-code-connect/internal/github"
	"github.com/sajj-ina/only-code-connect/internal/handler"
	"github.com/sajj-ina/only-code-connect/internal/middleware"
	"github.com/sajj-ina/only-code-connect/internal/notion"
	sqliteRepo "github.com/sajj-ina/only-code-connect/internal/repository/sqlite"
	"github.com/sajj-ina/only-code-connect/internal/service"
)

// Server owns the router, the database connection, and the configuration.
// The database is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, builds the full dependency chain and registers all
// routes. Handlers only see services; services only see repository interfaces
// and upstream clients.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
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

// setupRoutes configures the middleware stack and all route handlers.
//
// Routes:
//
//	GET  /                        → liveness greeting
//	POST /token                   → password grant login
//	GET  /validate-token          → bearer token check (protected)
//	GET  /api/github/login        → redirect to GitHub authorization
//	GET  /api/github/callback     → complete the OAuth flow
//	GET  /api/github/student      → stored profile of the token owner
//	GET  /api/github/repos        → import repositories as projects
//	GET  /api/github/projects     → list stored projects
//	GET  /api/notion/pages        → list visible Notion pages
//	GET  /api/notion/page/{id}    → fetch one page's blocks
//	GET  /api/notion/load_pages   → import pages as projects
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	accountService, err := service.NewAccountService(
		s.config.Auth.Username,
		s.config.Auth.Password,
		auth.NewPasswordService(),
		tokens,
		s.logger,
	)
	if err != nil {
		return fmt.Errorf("creating account service: %w", err)
	}

	githubClient := github.New(github.Config{
		ClientID:     s.config.GitHub.ClientID,
		ClientSecret: s.config.GitHub.ClientSecret,
		CallbackURL:  s.config.GitHub.CallbackURL,
	}, s.logger)
	notionClient := notion.New(notion.Config{APIKey: s.config.Notion.APIKey}, s.logger)

	linker := service.NewLinkerService(githubClient, s.db, s.db, s.logger)
	importer := service.NewImporterService(githubClient, notionClient, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(accountService, s.logger)
	githubHandler := handler.NewGitHubHandler(linker, importer, s.logger)
	notionHandler := handler.NewNotionHandler(importer, s.logger)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message": "ello mate"}`)
	})

	s.router.Post("/token", authHandler.HandleToken)
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/validate-token", authHandler.HandleValidate)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/github", func(r chi.Router) {
			r.Get("/login", githubHandler.HandleLogin)
			r.Get("/callback", githubHandler.HandleCallback)
			r.Get("/student", githubHandler.HandleStudent)
			r.Get("/repos", githubHandler.HandleRepos)
			r.Get("/projects", githubHandler.HandleProjects)
		})
		r.Route("/notion", func(r chi.Router) {
			r.Get("/pages", notionHandler.HandlePages)
			r.Get("/page/{id}", notionHandler.HandlePage)
			r.Get("/load_pages", notionHandler.HandleLoadPages)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests (30s budget), close the
// database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         ":" + s.config.Port,
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
			slog.String("port", s.config.Port),
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
