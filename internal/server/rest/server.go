// Package rest exposes the task API over HTTP. Every route is declared in a
// single table together with its access level.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/logging"
	"github.com/dmitrijs2005/taskapi/internal/ratelimit"
	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/dmitrijs2005/taskapi/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	CORSAllowedOrigins []string
	// AuthLimiter throttles signup and signin per client IP. Nil disables it.
	AuthLimiter *ratelimit.Store
	Health      Pinger
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// friends. Without it the limiter keys on the TCP peer.
	TrustProxyHeaders bool
}

type Server struct {
	address     string
	logger      logging.Logger
	users       *services.UserService
	tasks       *services.TaskService
	creds       *auth.Credentials
	health      Pinger
	cors        []string
	trustProxy  bool
	authLimiter func(http.Handler) http.Handler
}

func NewServer(a string, l logging.Logger, us *services.UserService, ts *services.TaskService, creds *auth.Credentials, opts Options) *Server {
	s := &Server{
		address:    a,
		logger:     l.With("module", "http_server"),
		users:      us,
		tasks:      ts,
		creds:      creds,
		health:     opts.Health,
		cors:       opts.CORSAllowedOrigins,
		trustProxy: opts.TrustProxyHeaders,
	}

	if opts.AuthLimiter != nil {
		s.authLimiter = ratelimit.Middleware(opts.AuthLimiter, ratelimit.Options{
			OnReject: func(w http.ResponseWriter, r *http.Request, _ time.Duration) {
				s.logger.Warn(r.Context(), "rate limited", "path", r.URL.Path, "remote", r.RemoteAddr)
				writeStatus(w, http.StatusTooManyRequests, "Too many requests, slow down")
			},
		})
	}

	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	if len(s.cors) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cors,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", common.AuthTokenHeaderName},
			ExposedHeaders: []string{common.AuthTokenHeaderName},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusMethodNotAllowed, "Cannot "+r.Method+" "+r.URL.Path)
	})

	s.mount(r)
	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
