package healthcheck

import (
	"context"

	"gorm.io/gorm"

	"gin-gorm-scaffold/internal/core/cache"
)

type DBProbe struct{ DB *gorm.DB }

func (p DBProbe) Check(ctx context.Context) ServiceStatus {
	return timed(ctx, "db", func(ctx context.Context) error {
		var one int
		return p.DB.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
	})
}

type RedisProbe struct{ Cache *cache.Cache }

func (p RedisProbe) Check(ctx context.Context) ServiceStatus {
	return timed(ctx, "redis", p.Cache.Ping)
}
