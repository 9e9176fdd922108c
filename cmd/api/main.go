package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mindfulai/mindful-shell/internal/config"
	"github.com/mindfulai/mindful-shell/internal/handler"
	"github.com/mindfulai/mindful-shell/internal/service/chat"
	"github.com/mindfulai/mindful-shell/pkg/backend"
	applog "github.com/mindfulai/mindful-shell/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := applog.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded, using system environment only", zap.Error(envErr))
	}

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	chatSvc := chat.NewService(backendClient,
		chat.WithLogger(logger),
		chat.WithHistoryWindow(cfg.Chat.HistoryWindow),
		chat.WithFollowUpDays(cfg.Chat.FollowUpDays),
	)
	logger.Info("chat backend configured",
		zap.String("baseURL", cfg.Backend.BaseURL),
		zap.Duration("timeout", cfg.Backend.Timeout),
	)

	router := handler.NewRouter(chatSvc, backendClient, logger, cfg.Server.AllowedOrigin)

	startServer(ctx, logger, cfg.Server, router)

	// 等待尚未完成的档案推送。
	chatSvc.Wait()
}

func startServer(ctx context.Context, logger *zap.Logger, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("MindfulAI shell listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
