package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brownie44l1/catdog-api/internal/config"
	"github.com/Brownie44l1/catdog-api/internal/handlers"
	"github.com/Brownie44l1/catdog-api/internal/model"
	"github.com/Brownie44l1/catdog-api/internal/pipeline"
	"github.com/Brownie44l1/catdog-api/internal/setup"

	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %s", err))
	}

	log, err := setup.NewLogger(cfg.Debug)
	if err != nil {
		panic("Failed init logger")
	}
	defer func() {
		_ = log.Sync()
	}()
	defer model.Shutdown()

	p := pipeline.New(
		pipeline.ModelLoader(cfg.Model.Path, cfg.Model.Options(), log),
		cfg.Labels.Labels(),
		log,
	)
	defer p.Close()
	handler := handlers.NewHandler(p)

	e := echo.New()
	e.HideBanner = true
	handlers.RegisterRoutes(e, handler, log)

	log.Infow("server starting",
		"port", cfg.Port,
		"model", cfg.Model.Path,
		"labels", cfg.Labels,
	)
	log.Info("endpoints: GET /health, GET /metrics, POST */predict")

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
		return 1
	case <-ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorw("shutdown failed", "error", err)
	}
	return 0
}
