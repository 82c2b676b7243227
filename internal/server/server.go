// Package server wires the application together: database, auth pipeline,
// services, handlers, routes, and the HTTP server lifecycle. It is the
// composition root — every dependency is assembled here and nowhere else.
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

	"github.com/yukio/micropost/internal/auth"
	"github.com/yukio/micropost/internal/handler"
	"github.com/yukio/micropost/internal/middleware"
	sqliteRepo "github.com/yukio/micropost/internal/repository/sqlite"
	"github.com/yukio/micropost/internal/service"
)

// Config holds server configuration, loaded from the environment by main.
type Config struct {
	Port   int
	DBPath string

	// Firebase configuration. When FirebaseProjectID is set the server
	// verifies tokens against Firebase and the local register/login routes
	// are not registered.
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	// JWTSecret enables dev mode: tokens are issued and verified locally.
	// Exactly one of the two auth backends must be configured.
	JWTSecret string
}

// Server owns the router and every long-lived resource behind it. The
// database connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, verifier, token cache,
// services, and handlers. Each layer only receives the interfaces it needs.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Pick the token verifier. Firebase wins when configured; the local JWT
	// service is the dev-mode fallback and also unlocks register/login.
	var (
		verifier auth.Verifier
		tokens   *auth.TokenService
	)
	switch {
	case s.config.FirebaseProjectID != "":
		fv, err := auth.NewFirebaseVerifier(context.Background(),
			s.config.FirebaseProjectID, s.config.FirebaseCredentialsFile)
		if err != nil {
			return fmt.Errorf("creating firebase verifier: %w", err)
		}
		verifier = fv
		s.logger.Info("token verification via firebase",
			slog.String("project", s.config.FirebaseProjectID))
	case s.config.JWTSecret != "":
		ts, err := auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		verifier = ts
		tokens = ts
		s.logger.Info("token verification via local JWT (dev mode)")
	default:
		return errors.New("no auth backend configured: set FIREBASE_PROJECT_ID or JWT_SECRET")
	}

	cache := auth.NewTokenCache(auth.DefaultCacheTTL)
	authenticator := auth.NewAuthenticator(verifier, cache, s.logger)

	authService := service.NewAuthService(s.db.Users, tokens, auth.NewPasswordService(), s.logger)
	postService := service.NewPostService(s.db.Posts, s.db.Likes, s.db.Comments, s.logger)
	likeService := service.NewLikeService(s.db.Posts, s.db.Likes, s.logger)
	demoService := service.NewDemoService(s.db.Users, s.db.Demo, s.logger)

	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService, authService)
	likeHandler := handler.NewLikeHandler(likeService, authService)
	demoHandler := handler.NewDemoHandler(demoService)

	s.router.Route("/api", func(r chi.Router) {
		// Dev-mode account routes. Not registered when a real identity
		// provider handles sign-up.
		if tokens != nil {
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		}

		// The feed personalizes for logged-in viewers but serves anonymous
		// ones too.
		r.Group(func(r chi.Router) {
			r.Use(authenticator.OptionalAuth)
			r.Get("/posts", postHandler.List)
		})

		// Everything else requires a verified token.
		r.Group(func(r chi.Router) {
			r.Use(authenticator.RequireAuth)

			r.Get("/user", authHandler.Me)

			r.Post("/posts", postHandler.Create)
			r.Get("/posts/user/{userID}", postHandler.ListByUser)
			r.Get("/posts/{id}", postHandler.Get)
			r.Delete("/posts/{id}", postHandler.Delete)

			r.Post("/posts/{id}/like", likeHandler.Like)
			r.Delete("/posts/{id}/like", likeHandler.Unlike)
			r.Get("/posts/{id}/like/status", likeHandler.Status)

			r.Get("/posts/{id}/comments", postHandler.Comments)
			r.Post("/posts/{id}/comments", postHandler.CreateComment)
		})

		// Demo reset is deliberately unauthenticated; it only touches
		// accounts whose external UID the caller already knows.
		r.Post("/demo/reset", demoHandler.Reset)
	})

	return nil
}

// Router exposes the configured router, mainly for httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

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
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server: graceful shutdown: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
