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

	"github.com/glitch-app/glitch/internal/bootstrap"
	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/infra/authn"
	"github.com/glitch-app/glitch/internal/infra/blob"
	"github.com/glitch-app/glitch/internal/infra/cache"
	"github.com/glitch-app/glitch/internal/infra/db"
	mq "github.com/glitch-app/glitch/internal/infra/queue"
	"github.com/glitch-app/glitch/internal/jobs"
	"github.com/glitch-app/glitch/internal/modules/handler"
	"github.com/glitch-app/glitch/internal/router"
	"github.com/glitch-app/glitch/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

//	@title						GLITCH API
//	@version					1.0
//	@description				Location-based quests: create, discover nearby, join, chat and review.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inj := bootstrap.BuildContainer()
	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		return err
	}
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	// telemetry before anything that registers otel plugins
	if err := telemetry.Setup(ctx, cfg); err != nil {
		log.Warn("telemetry disabled", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(sctx); err != nil {
			log.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	gdb, err := do.Invoke[*gorm.DB](inj)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() { _ = db.Close(gdb) }()

	// redis and rabbitmq are optional, but once configured they must be reachable
	rdb, err := do.Invoke[*redis.Client](inj)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if rdb != nil {
		defer func() { _ = cache.Close(rdb) }()
	}
	pub, err := do.Invoke[*mq.Publisher](inj)
	if err != nil {
		return fmt.Errorf("rabbitmq: %w", err)
	}
	if pub != nil {
		defer func() { _ = pub.Close() }()
	}

	if _, err := do.Invoke[*blob.S3Deps](inj); err != nil {
		return fmt.Errorf("s3: %w", err)
	}

	auth, err := do.Invoke[authn.Provider](inj)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	engine := router.NewRouter(router.RouterDeps{
		Config:        cfg,
		Log:           log,
		Auth:          auth,
		QuestHandler:  do.MustInvoke[*handler.QuestHandler](inj),
		ReviewHandler: do.MustInvoke[*handler.ReviewHandler](inj),
		ChatHandler:   do.MustInvoke[*handler.ChatHandler](inj),
		UserHandler:   do.MustInvoke[*handler.UserHandler](inj),
		MediaHandler:  do.MustInvoke[*handler.MediaHandler](inj),
	})

	if cfg.Scheduler.Enabled {
		sched, err := do.Invoke[*jobs.Scheduler](inj)
		if err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				log.Warn("scheduler stop", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
