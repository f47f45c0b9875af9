package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/taskboard/internal/app/repositories"
	"github.com/kalpovskii/taskboard/internal/app/services"
	"github.com/kalpovskii/taskboard/internal/config"
	"github.com/kalpovskii/taskboard/internal/kafka"
	"github.com/kalpovskii/taskboard/internal/logging"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()

	repo, err := openRepository(ctx, cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("task store ready", slog.String("driver", cfg.DB.Driver))

	var closers []func() error
	closers = append(closers, repo.Close)

	var cache repositories.TaskCache = repositories.NoopTaskCache{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, requests will fall through to the store", slog.Any("error", err))
		}
		redisCache := repositories.NewRedisTaskRepository(rdb)
		cache = redisCache
		closers = append(closers, redisCache.Close)
	}

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithCacheTTL(cfg.Cache.TaskTTL, cfg.Cache.ListTTL),
	}
	if cfg.Kafka.Broker != "" {
		producer := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.Topic)
		opts = append(opts, services.WithEvents(producer))
		closers = append(closers, producer.Close)
		logger.Info("publishing task events", slog.String("broker", cfg.Kafka.Broker), slog.String("topic", cfg.Kafka.Topic))
	}

	service := services.NewTaskService(repo, cache, opts...)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           setupRouter(service, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("task service started", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"task-service": func(ctx context.Context) error {
				logger.Info("graceful shutdown initiated")
				err := srv.Shutdown(ctx)
				for _, closeFn := range closers {
					err = errors.Join(err, closeFn())
				}
				return err
			},
		},
	)

	exitCode := <-wait
	logger.Info("task service exited", slog.Int("code", exitCode))
	os.Exit(exitCode)
}

func openRepository(ctx context.Context, cfg config.DBConfig) (repositories.TaskRepository, error) {
	switch cfg.Driver {
	case "sqlite":
		return repositories.OpenSQLite(cfg.SQLitePath, cfg.Debug)
	default:
		return repositories.NewPostgresTaskRepo(ctx, cfg.PostgresDSN)
	}
}
