package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// GetOrLoadJSON is GetOrLoad for JSON values. A cached "null" yields
// (nil, nil).
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		return b, errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		// 缓存内容损坏：丢弃后回源
		_ = c.Invalidate(ctx, key)
		return nil, errors.Wrapf(err, "decode cached %s", key)
	}
	return &out, nil
}
