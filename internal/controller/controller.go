package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pageserve/internal/config"
	"pageserve/internal/controller/handler"
	"pageserve/internal/controller/middleware"
	route "pageserve/internal/controller/routes"
	"pageserve/internal/logger"
	"pageserve/internal/view"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	Config     config.Config
	log        logger.Logger
	router     *gin.Engine
	httpServer *http.Server
}

// NewController wires the middleware chain, routes and HTTP server. static
// may be nil when no assets are served.
func NewController(cfg config.Config, l logger.Logger, views view.Renderer, static fs.FS) (*Controller, error) {
	if l == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if views == nil {
		return nil, fmt.Errorf("view renderer is required")
	}

	c := &Controller{
		Config: cfg,
		log:    l,
		router: gin.New(),
	}

	if err := c.configureRouter(views, static); err != nil {
		return nil, err
	}

	c.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      c.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return c, nil
}

// Handler exposes the routed engine, mainly for tests.
func (c *Controller) Handler() http.Handler {
	return c.router
}

func (c *Controller) configureRouter(views view.Renderer, static fs.FS) error {
	// log the peer address, not a client-supplied forwarding header
	if err := c.router.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to configure trusted proxies: %w", err)
	}

	h := handler.NewHandler(c.log, views)

	c.router.Use(
		gin.CustomRecoveryWithWriter(io.Discard, h.Recover),
		middleware.RequestID(),
		middleware.CORS(c.Config.CORSOrigins),
		middleware.BestEffort(c.log, "observer", middleware.Observer(c.log)),
		h.Errors(),
	)

	route.RegisterRoutes(c.router, h, static)
	return nil
}

// Serve listens until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// the server down within the configured timeout.
func (c *Controller) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", c.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.httpServer.Addr, err)
	}

	return c.serve(ctx, ln)
}

func (c *Controller) serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		c.log.Info("Serving pageserve at http://" + ln.Addr().String())
		serveErr <- c.httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	c.log.Info("Shutdown signal received, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Config.ShutdownTimeout)
	defer cancel()

	if err := c.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	c.log.Info("Server shut down cleanly")
	return nil
}
