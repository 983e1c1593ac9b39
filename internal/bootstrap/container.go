package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/glitch-app/glitch/internal/config"
	"github.com/glitch-app/glitch/internal/infra/authn"
	"github.com/glitch-app/glitch/internal/infra/blob"
	"github.com/glitch-app/glitch/internal/infra/cache"
	"github.com/glitch-app/glitch/internal/infra/db"
	"github.com/glitch-app/glitch/internal/infra/logger"
	mq "github.com/glitch-app/glitch/internal/infra/queue"
	"github.com/glitch-app/glitch/internal/jobs"
	"github.com/glitch-app/glitch/internal/modules/handler"
	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/glitch-app/glitch/internal/modules/repo"
	"github.com/glitch-app/glitch/internal/modules/service"
	"github.com/glitch-app/glitch/internal/telemetry"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sweepLockPrefix = "glitch:lock:"

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.NewForEnv(cfg.App.Env, cfg.Log.Level)
	})

	do.Provide(inj, func(i *do.Injector) (clockwork.Clock, error) {
		return clockwork.NewRealClock(), nil
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if telemetry.Enabled(cfg) {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				log.Warn("gorm otel plugin", zap.Error(err))
			}
		}

		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := d.AutoMigrate(model.All()...); err != nil {
				return nil, err
			}
		}

		if err := EnsureSeedUserExists(context.Background(), d, cfg, log); err != nil {
			return nil, err
		}

		return d, nil
	})

	// Redis is optional; without it sweeps run unlocked.
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Redis.Addr == "" {
			return nil, nil
		}
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if telemetry.Enabled(cfg) {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				do.MustInvoke[*zap.Logger](i).Warn("redis otel plugin", zap.Error(err))
			}
		}
		return rdb, nil
	})
	do.Provide(inj, func(i *do.Injector) (gocron.Locker, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb := do.MustInvoke[*redis.Client](i)
		if rdb == nil {
			return nil, nil
		}
		return cache.NewSweepLocker(rdb, sweepLockPrefix, cfg.Scheduler.LockTTL), nil
	})

	// RabbitMQ DialFunc for connection and reconnection
	do.Provide(inj, func(i *do.Injector) (mq.DialFunc, error) {
		cfg := do.MustInvoke[*config.Config](i)

		dialFn := func() (*amqp.Connection, error) {
			useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(cfg.RabbitMQ.URL, "amqps://")

			if useTLS {
				tlsConfig := &tls.Config{
					MinVersion: tls.VersionTLS12,
				}
				url := cfg.RabbitMQ.URL
				if strings.HasPrefix(url, "amqp://") {
					url = strings.Replace(url, "amqp://", "amqps://", 1)
				}
				return amqp.DialTLS(url, tlsConfig)
			}

			return amqp.Dial(cfg.RabbitMQ.URL)
		}

		return dialFn, nil
	})

	// RabbitMQ Connection, nil when no broker is configured
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return dialFn()
	})

	// RabbitMQ Publisher
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		conn := do.MustInvoke[*amqp.Connection](i)
		if conn == nil {
			return nil, nil
		}
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		dialFn := do.MustInvoke[mq.DialFunc](i)
		return mq.NewPublisher(conn, log, cfg, dialFn)
	})
	do.Provide(inj, func(i *do.Injector) (*service.Events, error) {
		var pub service.EventPublisher
		if p := do.MustInvoke[*mq.Publisher](i); p != nil {
			pub = p
		}
		return service.NewEvents(
			pub,
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.QuestRepo, error) {
		return repo.NewQuestRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ReviewRepo, error) {
		return repo.NewReviewRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ChatRepo, error) {
		return repo.NewChatRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.QuotaService, error) {
		return service.NewQuotaService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[repo.QuestRepo](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[clockwork.Clock](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.GamificationService, error) {
		return service.NewGamificationService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*service.Events](i),
			do.MustInvoke[clockwork.Clock](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.QuestService, error) {
		return service.NewQuestService(
			do.MustInvoke[repo.QuestRepo](i),
			do.MustInvoke[repo.ReviewRepo](i),
			do.MustInvoke[service.QuotaService](i),
			do.MustInvoke[*service.Events](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[clockwork.Clock](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.DiscoveryService, error) {
		return service.NewDiscoveryService(
			do.MustInvoke[repo.QuestRepo](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[clockwork.Clock](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ReviewService, error) {
		return service.NewReviewService(
			do.MustInvoke[repo.ReviewRepo](i),
			do.MustInvoke[repo.QuestRepo](i),
			do.MustInvoke[service.GamificationService](i),
			do.MustInvoke[*service.Events](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[clockwork.Clock](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ChatService, error) {
		return service.NewChatService(
			do.MustInvoke[repo.ChatRepo](i),
			do.MustInvoke[repo.QuestRepo](i),
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*service.Events](i),
			do.MustInvoke[clockwork.Clock](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		return service.NewUserService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*config.Config](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MediaService, error) {
		var store service.MediaStore
		if s3 := do.MustInvoke[*blob.S3Deps](i); s3 != nil {
			store = s3
		}
		return service.NewMediaService(store, do.MustInvoke[*config.Config](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.SweepService, error) {
		return service.NewSweepService(
			do.MustInvoke[repo.QuestRepo](i),
			do.MustInvoke[*service.Events](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[clockwork.Clock](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Auth
	do.Provide(inj, func(i *do.Injector) (authn.Provider, error) {
		return authn.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[repo.UserRepo](i),
		)
	})

	// Jobs
	do.Provide(inj, func(i *do.Injector) (*jobs.Scheduler, error) {
		return jobs.New(
			do.MustInvoke[service.SweepService](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[clockwork.Clock](i),
			do.MustInvoke[*zap.Logger](i),
			do.MustInvoke[gocron.Locker](i),
		)
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.QuestHandler, error) {
		return handler.NewQuestHandler(
			do.MustInvoke[service.QuestService](i),
			do.MustInvoke[service.DiscoveryService](i),
			do.MustInvoke[service.QuotaService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ReviewHandler, error) {
		return handler.NewReviewHandler(do.MustInvoke[service.ReviewService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ChatHandler, error) {
		return handler.NewChatHandler(do.MustInvoke[service.ChatService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.UserHandler, error) {
		return handler.NewUserHandler(do.MustInvoke[service.UserService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MediaHandler, error) {
		return handler.NewMediaHandler(do.MustInvoke[service.MediaService](i)), nil
	})
	return inj
}
