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
	"github.com/kalpovskii/taskboard/internal/config"
	"github.com/kalpovskii/taskboard/internal/logging"
)

const (
	shutdownTimeout = 15 * time.Second
	upstreamTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ValidateGateway(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	p := &proxy{
		upstream: cfg.API.UpstreamURL,
		client:   &http.Client{Timeout: upstreamTimeout},
		log:      logger,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.API.Port,
		Handler:           setupRouter(p, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API started", slog.String("addr", srv.Addr), slog.String("upstream", p.upstream))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
		},
	)

	os.Exit(<-wait)
}
