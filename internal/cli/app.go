package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/recurring-service/internal/cache"
	"github.com/Dan9191/recurring-service/internal/config"
	"github.com/Dan9191/recurring-service/internal/repository"
	"github.com/Dan9191/recurring-service/internal/service"
	"github.com/Dan9191/recurring-service/internal/utils/email"
)

// app holds the collaborators shared by every command
type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *sql.DB
	svc *service.Service

	closers []func() error
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg.LogLevel)
	a := &app{cfg: cfg, log: logger}

	db, err := repository.Open(ctx, cfg.DBDriver, cfg.DBConn)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	repo := repository.NewRepository(db, cfg.DBDriver)
	if err := repo.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var c cache.Cache = cache.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr)
		if err := rc.Ping(ctx); err != nil {
			logger.Warnf("Redis at %s unavailable, using in-memory cache: %v", cfg.RedisAddr, err)
			rc.Close()
		} else {
			c = rc
			a.closers = append(a.closers, rc.Close)
		}
	}

	var notifier service.Notifier
	if cfg.NotificationsEnabled() {
		notifier = email.NewSender(cfg, logger)
	}

	a.svc = service.NewService(repo, c, notifier, logger, cfg)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warnf("Failed to release resource: %v", err)
		}
	}
	a.closers = nil
}
