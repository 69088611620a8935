package main

import (
	"context"
	"fmt"
	"log"

	"pageserve/internal/config"
	"pageserve/internal/controller"
	"pageserve/internal/logger"
	"pageserve/internal/view"
	"pageserve/web"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("pageserve: %v", err)
	}
}

func run(cfg config.Config) error {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	l, err := logger.New(&logger.LoggerConfig{
		Level:       logger.LogLevel(cfg.LogLevel),
		Development: cfg.Debug,
		LogDir:      cfg.LogDir,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer l.Cleanup()

	if !cfg.Debug && cfg.UsesDefaultSecret() {
		l.Warn("SECRET_KEY is unset, running with the development secret")
	}

	templates, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to open templates: %w", err)
	}
	views, err := view.New(templates, web.TemplatePattern)
	if err != nil {
		return err
	}

	static, err := web.Static()
	if err != nil {
		return fmt.Errorf("failed to open static assets: %w", err)
	}

	ctrl, err := controller.NewController(cfg, l, views, static)
	if err != nil {
		return fmt.Errorf("failed to set up controller: %w", err)
	}

	if err := ctrl.Serve(context.Background()); err != nil {
		l.Error("server stopped", "error", err.Error())
		return err
	}
	return nil
}
