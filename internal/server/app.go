// Package server initializes and runs the task API: it opens the store,
// wires the services, and serves the REST API together with the gRPC
// health endpoint until it is signalled to stop.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskapi/internal/logging"
	"github.com/dmitrijs2005/taskapi/internal/ratelimit"
	"github.com/dmitrijs2005/taskapi/internal/server/config"
	"github.com/dmitrijs2005/taskapi/internal/server/rest"

	gs "github.com/dmitrijs2005/taskapi/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	backend *Backend
	limiter *ratelimit.Store
}

func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	b, err := OpenBackend(ctx, c, l)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: l, backend: b}
	if c.AuthRateLimitRPS > 0 {
		app.limiter = ratelimit.NewStore(c.AuthRateLimitRPS, c.AuthRateLimitBurst)
	}

	return app, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewServer(app.config.EndpointAddrHTTP, app.logger, app.backend.Users, app.backend.Tasks, app.backend.Creds, rest.Options{
		CORSAllowedOrigins: app.config.CORSAllowedOrigins,
		AuthLimiter:        app.limiter,
		Health:             app.backend.Repos,
		TrustProxyHeaders:  app.config.TrustProxyHeaders,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.backend.Repos, 0)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	if app.limiter != nil {
		app.limiter.StartJanitor(ctx)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.backend.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
