package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/account-be/internal/auth"
	"github.com/hongminglow/account-be/internal/config"
	"github.com/hongminglow/account-be/internal/http/handlers"
	"github.com/hongminglow/account-be/internal/logger"
	"github.com/hongminglow/account-be/internal/metrics"
	"github.com/hongminglow/account-be/internal/middleware"
	"github.com/hongminglow/account-be/internal/storage"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Users         storage.UserStore
	Verifier      handlers.Verifier
	Authenticator *auth.Authenticator
	DB            handlers.Pinger
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// Routes builds the full handler chain.
func Routes(cfg config.Config, deps Deps) http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(deps.Authenticator, deps.Logger, deps.Metrics)
	cookie := handlers.CookieOptions{Secure: cfg.Cookie.Secure}

	handlers.NewHealthHandler(time.Now(), deps.DB).Register(mux)
	handlers.NewAuthHandler(deps.Users, deps.Verifier, deps.Authenticator,
		handlers.AuthOptions{InitPoint: cfg.InitPoint, Cookie: cookie},
		deps.Logger, deps.Metrics,
	).Register(mux, requireAuth)
	handlers.NewUserHandler(deps.Users, deps.Authenticator, cookie, deps.Logger).Register(mux, requireAuth)
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	return middleware.Logging(deps.Logger, deps.Metrics, middleware.CORS(cfg.CORSOrigins, mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
