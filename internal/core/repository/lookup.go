package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Getter is anything that raises ErrObjectNotFound for a missing id.
type Getter[R any] interface {
	Get(ctx context.Context, id uuid.UUID) (R, error)
}

// Find turns a missing row into (nil, nil). Every other failure propagates.
func Find[R any](ctx context.Context, g Getter[R], id uuid.UUID) (*R, error) {
	v, err := g.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// Exists reports whether id is present.
func Exists[R any](ctx context.Context, g Getter[R], id uuid.UUID) (bool, error) {
	v, err := Find(ctx, g, id)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}
