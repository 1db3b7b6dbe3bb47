package repository

import (
	"context"

	"gorm.io/gorm"

	"gin-gorm-scaffold/internal/core/pagination"
)

// gormQuery runs Count and Window on the same transaction so both reads
// see the same snapshot.
type gormQuery[E any] struct {
	tx    *gorm.DB
	scope func(*gorm.DB) *gorm.DB
	order string
}

var _ pagination.Query[struct{}] = (*gormQuery[struct{}])(nil)

func (q *gormQuery[E]) base(ctx context.Context) *gorm.DB {
	db := q.tx.WithContext(ctx).Model(new(E))
	if q.scope != nil {
		db = q.scope(db)
	}
	return db
}

func (q *gormQuery[E]) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := q.base(ctx).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (q *gormQuery[E]) Window(ctx context.Context, offset, limit int) ([]E, error) {
	var rows []E
	err := q.base(ctx).Order(q.order).Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
