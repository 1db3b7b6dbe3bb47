// Package bootstrap wires config into the logger, database, cache and
// services shared by both binaries.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"gin-gorm-scaffold/internal/core/auth"
	"gin-gorm-scaffold/internal/core/cache"
	"gin-gorm-scaffold/internal/core/config"
	"gin-gorm-scaffold/internal/core/database"
	"gin-gorm-scaffold/internal/core/logger"
	"gin-gorm-scaffold/internal/core/repository"
	"gin-gorm-scaffold/internal/feature/healthcheck"
	"gin-gorm-scaffold/internal/feature/user"
	"gin-gorm-scaffold/internal/repo"
	"gin-gorm-scaffold/internal/service"
	"gin-gorm-scaffold/internal/transport/http/router"
)

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Cache *cache.Cache
	Deps  router.Deps

	closers []func()
}

// NewLogger builds the process logger from the log section.
func NewLogger(c config.Log) (*zap.Logger, func()) {
	return logger.Build(logger.Options{
		Level:       c.Level,
		JSON:        c.JSON,
		AddCaller:   true,
		Development: !c.JSON,
		Rotate: logger.FileRotate{
			Enable:     c.File.Enable,
			Filename:   c.File.Filename,
			MaxSizeMB:  c.File.MaxSizeMB,
			MaxBackups: c.File.MaxBackups,
			MaxAgeDays: c.File.MaxAgeDays,
			Compress:   c.File.Compress,
		},
	})
}

// NewRequestLogger returns the access-log sink: a dedicated rotated file
// when log.requests_file is enabled, otherwise base itself.
func NewRequestLogger(c config.Log, base *zap.Logger) (*zap.Logger, func()) {
	f := c.RequestsFile
	if !f.Enable {
		return base, func() {}
	}
	return logger.Build(logger.Options{
		Level:      "info",
		JSON:       c.JSON,
		NoConsole:  true,
		NoSampling: true,
		Rotate: logger.FileRotate{
			Enable:     true,
			Filename:   f.Filename,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		},
	})
}

// New opens everything cfg asks for. On error whatever was opened is
// already closed.
func New(cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{Cfg: cfg, Log: l}
	if err := a.open(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open() (err error) {
	cfg, l := a.Cfg, a.Log
	a.closers = append(a.closers, logger.RedirectStdLog(l.Named("std"), zapcore.InfoLevel))

	a.DB, err = database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThresholdMs:    cfg.DB.SlowThresholdMs,
		Logger:             l,
	})
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	a.closers = append(a.closers, func() {
		if err := database.Close(a.DB); err != nil {
			l.Warn("close database", zap.Error(err))
		}
	})
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := a.DB.AutoMigrate(&user.UserModel{}); err != nil {
			return errors.Wrap(err, "automigrate")
		}
		l.Info("automigrate done")
	}

	probes := []healthcheck.Probe{healthcheck.DBProbe{DB: a.DB}}
	if cfg.Redis.Enable {
		a.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		a.Cache.Prefix = cfg.App.Name
		a.closers = append(a.closers, func() { _ = a.Cache.Close() })
		probes = append(probes, healthcheck.RedisProbe{Cache: a.Cache})
		l.Info("redis enabled", zap.String("addr", cfg.Redis.Addr))
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	users := repo.NewUserRepo(a.DB, repository.WithLogger(l.Named("repository")))

	health := healthcheck.NewModule(
		healthcheck.NewUseCase(time.Duration(cfg.Health.ProbeTimeoutMs)*time.Millisecond, probes...),
		a.Cache,
		time.Duration(cfg.Health.CacheTTLSec)*time.Second,
		l.Named("healthcheck"),
	)

	reqLog, closeReqLog := NewRequestLogger(cfg.Log, l)
	a.closers = append(a.closers, closeReqLog)

	a.Deps = router.Deps{
		Log:        l,
		RequestLog: reqLog,
		Cfg:        cfg,
		JWT:        jwter,
		Users:      service.NewUserService(users, jwter, l.Named("user")),
		UserRepo:   users,
		Modules:    router.NewRegistry(health),
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Serve runs srv until ctx is done, then shuts it down within grace.
func Serve(ctx context.Context, l *zap.Logger, srv *http.Server, grace time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	l.Info("server started", zap.String("addr", srv.Addr))

	select {
	case err := <-errc:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	l.Info("server stopped gracefully", zap.String("addr", srv.Addr))
	return nil
}
