package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/hexagon-backend/internal/config"
	"github.com/DoyleJ11/hexagon-backend/internal/httpapi"
	"github.com/DoyleJ11/hexagon-backend/internal/hub"
	"github.com/DoyleJ11/hexagon-backend/internal/logging"
	"github.com/DoyleJ11/hexagon-backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	h := hub.NewHub(logger, cfg.BoardRadius)

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, httpapi.Options{
		SignalingURL: cfg.SignalingURL,
		WS: ws.Config{
			HandshakeTimeout: cfg.HandshakeTimeout,
			OutboxSize:       cfg.OutboxSize,
			OriginPatterns:   cfg.AllowedOrigins,
		},
	}, logger)

	srv := &http.Server{Addr: cfg.Addr(), Handler: handler}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.Int("board_radius", cfg.BoardRadius))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
