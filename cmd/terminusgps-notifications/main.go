package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/terminusgps/terminusgps-notifications/internal/config"
	httpapi "github.com/terminusgps/terminusgps-notifications/internal/http"
	"github.com/terminusgps/terminusgps-notifications/internal/metrics"
	"github.com/terminusgps/terminusgps-notifications/internal/remote"
	"github.com/terminusgps/terminusgps-notifications/internal/repository"
	"github.com/terminusgps/terminusgps-notifications/internal/service"
	"github.com/terminusgps/terminusgps-notifications/internal/store"
	"github.com/terminusgps/terminusgps-notifications/pkg/database"
	"github.com/terminusgps/terminusgps-notifications/pkg/logger"
	redispkg "github.com/terminusgps/terminusgps-notifications/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "terminusgps-notifications")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	metrics.Init()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redispkg.NewRedisClient(&cfg.Redis)
	defer redispkg.Close(redisClient)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redispkg.Ping(pingCtx, redisClient); err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	pingCancel()

	notificationsRepo := repository.NewPostgresNotificationsRepository(db)
	customersRepo := repository.NewPostgresCustomersRepository(db)
	drafts := store.NewRedisDraftStore(redisClient, cfg.Workflow.DraftTTL)
	remoteClient := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout, log)

	notifications := service.NewNotificationService(
		notificationsRepo,
		customersRepo,
		remoteClient,
		redisClient,
		cfg.Workflow.EventStream,
		cfg.Remote.CallbackURL,
		cfg.Remote.ResourceName,
		log,
	)
	workflow := service.NewWorkflowService(drafts, notifications, log)

	router := httpapi.NewRouter(log)
	router.RegisterRoutes(
		httpapi.NewNotificationHandler(notifications, log),
		httpapi.NewWorkflowHandler(workflow, drafts, log),
		httpapi.NewTriggerKindsHandler(log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		log.Error("server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}
