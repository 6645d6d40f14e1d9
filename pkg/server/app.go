package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"FinPulse/pkg/config"
	xhttp "FinPulse/pkg/http"
	applogger "FinPulse/pkg/logger"
)

// Runner is the main unit of work of a process. Run blocks until ctx is
// cancelled or the work fails.
type Runner interface {
	Name() string
	Run(ctx context.Context) error
}

// App encapsulates one process's lifecycle: an optional HTTP server next to
// a blocking Runner.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	runner     Runner
	httpServer *xhttp.Server
}

// New creates a new App. srv may be nil.
func New(cfg *config.Config, l *applogger.Logger, runner Runner, srv *xhttp.Server) *App {
	return &App{cfg: cfg, log: l, runner: runner, httpServer: srv}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("starting",
		applogger.String("process", a.runner.Name()),
		applogger.String("env", a.cfg.Environment),
	)

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.log.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	runErr := a.runner.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		a.log.Error("runner stopped with error", applogger.Error(runErr))
	} else {
		runErr = nil
		a.log.Info("shutdown signal received")
	}
	return errors.Join(runErr, a.shutdown())
}

func (a *App) shutdown() error {
	a.log.Info("shutting down...")
	var err error
	if a.httpServer != nil {
		if serr := a.httpServer.Stop(context.Background()); serr != nil {
			a.log.Error("http shutdown error", applogger.Error(serr))
			err = serr
		}
	}
	a.log.Info("shutdown complete")
	return err
}
