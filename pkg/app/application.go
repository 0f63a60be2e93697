package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	"github.com/MNhat168/sport-zone-sub002/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// Handler is anything that can hang its routes on a router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Application owns the HTTP server lifecycle: middleware assembly, startup
// and signal-driven graceful shutdown.
type Application struct {
	cfg    *config.Config
	server *http.Server
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(handlers ...Handler) {
	router := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	var httpHandler http.Handler = router
	httpHandler = middleware.RequestTimeout(a.cfg.RequestTimeout)(httpHandler)
	httpHandler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(httpHandler)
	httpHandler = middleware.RequestLogging(a.cfg.Log)(httpHandler)
	httpHandler = middleware.Recovery(a.cfg.Log)(httpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
