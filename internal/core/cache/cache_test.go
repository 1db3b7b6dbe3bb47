package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type report struct {
	Status string `json:"status"`
}

func TestNilCacheLoadsEveryTime(t *testing.T) {
	var c *Cache
	calls := 0
	load := func(context.Context) (*report, error) {
		calls++
		return &report{Status: "OK"}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, load)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != "OK" {
			t.Fatalf("got %+v", got)
		}
	}
	if calls != 3 {
		t.Fatalf("loader called %d times", calls)
	}
	if err := c.Invalidate(context.Background(), "k"); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNilCacheNullAndError(t *testing.T) {
	var c *Cache
	got, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*report, error) {
		return nil, nil
	})
	if err != nil || got != nil {
		t.Fatalf("got %+v, %v", got, err)
	}

	boom := errors.New("boom")
	_, err = GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*report, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestPingWithoutRedis(t *testing.T) {
	var c *Cache
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected an error without redis")
	}
}
