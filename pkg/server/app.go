package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"Sully/pkg/config"
	xhttp "Sully/pkg/http"
	applogger "Sully/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP server plus every
// closable infrastructure client, shut down in reverse registration order.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	logger     *applogger.Logger
	httpServer *xhttp.Server

	closers []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

// New creates the App.
func New(cfg *config.Config, handler xhttp.Handler, logger *applogger.Logger) *App {
	return &App{cfg: cfg, handler: handler, logger: logger}
}

// AddCloser registers an infrastructure client to close on shutdown.
// Nil closers are ignored so optional components can be passed directly.
func (a *App) AddCloser(name string, c io.Closer) {
	if c == nil {
		return
	}
	a.closers = append(a.closers, namedCloser{name: name, c: c})
}

// Run starts the HTTP server and blocks until an interrupt arrives.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("assistant started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("symbols", a.cfg.Assistant.Symbols),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		nc := a.closers[i]
		if err := nc.c.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("component", nc.name), applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
