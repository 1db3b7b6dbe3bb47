// Package repository is the generic CRUD layer between handlers and GORM.
//
// Every operation runs in its own transaction and returns only *Error
// failures (see Classify). Entities are described by a Mapping; there is
// one engine, Gorm, for all of them.
package repository

import (
	"context"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gin-gorm-scaffold/internal/core/pagination"
)

// CRUD is the operation set exposed to handlers and services.
type CRUD[R, C, U any] interface {
	Get(ctx context.Context, id uuid.UUID) (R, error)
	GetOrNone(ctx context.Context, id uuid.UUID) (*R, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]R, error)
	Create(ctx context.Context, in C) (R, error)
	BulkCreate(ctx context.Context, in []C) ([]R, error)
	Update(ctx context.Context, in U) (R, error)
	BulkUpdate(ctx context.Context, in []U) ([]R, error)
	// Delete reports whether a row was removed; a missing row is not an error.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListPaginated(ctx context.Context, req pagination.Request) (*pagination.Page[R], error)
}

const (
	opGet        = "get"
	opGetByIDs   = "get_by_ids"
	opCreate     = "create"
	opBulkCreate = "bulk_create"
	opUpdate     = "update"
	opBulkUpdate = "bulk_update"
	opDelete     = "delete"
	opList       = "list_paginated"
)

type options struct {
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Gorm repository.
type Option func(*options)

// WithLogger logs failed operations.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithValidator replaces the validator used on create/update inputs.
func WithValidator(v *validator.Validate) Option {
	return func(o *options) { o.validate = v }
}

// WithClock overrides the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewValidator reads the same `binding` tags gin uses, so a request struct
// validated at the edge passes here unchanged.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}

// Gorm is the generic engine. It holds no per-call state and is safe for
// concurrent use.
type Gorm[E, R, C, U any] struct {
	db   *gorm.DB
	m    Mapping[E, R, C, U]
	opts options
}

var _ CRUD[struct{}, struct{}, struct{}] = (*Gorm[struct{}, struct{}, struct{}, struct{}])(nil)

// New builds a repository for the entity described by m.
func New[E, R, C, U any](db *gorm.DB, m Mapping[E, R, C, U], opts ...Option) *Gorm[E, R, C, U] {
	o := options{
		log:      zap.NewNop(),
		validate: NewValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Gorm[E, R, C, U]{db: db, m: m, opts: o}
}

// Entity returns the configured entity name.
func (r *Gorm[E, R, C, U]) Entity() string { return r.m.Entity }

// Session runs fn in one transaction: commit on success, rollback on error,
// panic or context cancellation. The returned error is always an *Error.
// Concrete repositories use it for their own queries.
func (r *Gorm[E, R, C, U]) Session(ctx context.Context, op string, fn func(tx *gorm.DB) error) (err error) {
	start := time.Now()
	defer func() { observe(r.m.Entity, op, start, err) }()

	if err = r.db.WithContext(ctx).Transaction(fn); err != nil {
		return r.fail(op, err)
	}
	return nil
}

func (r *Gorm[E, R, C, U]) fail(op string, err error) error {
	mapped := Classify(err)
	fields := []zap.Field{
		zap.String("entity", r.m.Entity),
		zap.String("op", op),
		zap.Stringer("kind", mapped.Kind),
		zap.String("detail", mapped.Detail),
	}
	if mapped.Kind == KindNotFound {
		r.opts.log.Debug("repository miss", fields...)
	} else {
		r.opts.log.Warn("repository failure", fields...)
	}
	return mapped
}

func (r *Gorm[E, R, C, U]) check(op string, v any) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil
	}
	if err := r.opts.validate.Struct(v); err != nil {
		return r.fail(op, err)
	}
	return nil
}

func (r *Gorm[E, R, C, U]) byID(tx *gorm.DB, id any) *gorm.DB {
	return tx.Where(clause.Eq{Column: clause.Column{Name: r.m.idColumn()}, Value: id})
}

// Get fetches exactly one row; a missing row is ErrObjectNotFound.
func (r *Gorm[E, R, C, U]) Get(ctx context.Context, id uuid.UUID) (R, error) {
	var out R
	err := r.Session(ctx, opGet, func(tx *gorm.DB) error {
		var row E
		res := r.byID(r.m.scoped(tx.Model(&row)), id).Limit(1).Find(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return NotFound(r.m.Entity, id)
		}
		out = r.m.ToView(&row)
		return nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}

// GetOrNone is Get with an absent result instead of ErrObjectNotFound.
func (r *Gorm[E, R, C, U]) GetOrNone(ctx context.Context, id uuid.UUID) (*R, error) {
	return Find[R](ctx, r, id)
}

// GetByIDs returns the rows found among ids, in store order.
func (r *Gorm[E, R, C, U]) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]R, error) {
	if len(ids) == 0 {
		return []R{}, nil
	}
	var out []R
	err := r.Session(ctx, opGetByIDs, func(tx *gorm.DB) error {
		var rows []E
		q := r.m.scoped(tx.Model(new(E))).Where(clause.IN{Column: clause.Column{Name: r.m.idColumn()}, Values: idValues(ids)})
		if err := q.Find(&rows).Error; err != nil {
			return err
		}
		out = r.m.views(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts one row and reads it back in the same statement.
func (r *Gorm[E, R, C, U]) Create(ctx context.Context, in C) (R, error) {
	var out R
	if err := r.check(opCreate, in); err != nil {
		return out, err
	}
	err := r.Session(ctx, opCreate, func(tx *gorm.DB) error {
		row, err := r.m.FromCreate(in)
		if err != nil {
			return err
		}
		if err := tx.Clauses(clause.Returning{}).Create(&row).Error; err != nil {
			return err
		}
		if err := reread(tx, &row); err != nil {
			return err
		}
		out = r.m.ToView(&row)
		return nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}

// BulkCreate inserts all rows in one batch; either every row commits or none.
// Views come back in input order.
func (r *Gorm[E, R, C, U]) BulkCreate(ctx context.Context, in []C) ([]R, error) {
	if len(in) == 0 {
		return []R{}, nil
	}
	for i := range in {
		if err := r.check(opBulkCreate, in[i]); err != nil {
			return nil, err
		}
	}
	var out []R
	err := r.Session(ctx, opBulkCreate, func(tx *gorm.DB) error {
		rows := make([]E, 0, len(in))
		for _, c := range in {
			row, err := r.m.FromCreate(c)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		if err := tx.Clauses(clause.Returning{}).Create(&rows).Error; err != nil {
			return err
		}
		for i := range rows {
			if err := reread(tx, &rows[i]); err != nil {
				return err
			}
		}
		out = r.m.views(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Gorm[E, R, C, U]) updateOne(tx *gorm.DB, in U) (R, error) {
	var zero R
	id := r.m.UpdateID(in)
	set, err := r.m.Changes(in)
	if err != nil {
		return zero, err
	}
	changes := make(map[string]any, len(set)+1)
	for k, v := range set {
		changes[k] = v
	}
	changes[r.m.updatedAtColumn()] = r.opts.now()

	var row E
	res := r.byID(r.m.scoped(tx.Model(&row)).Clauses(clause.Returning{}), id).Updates(changes)
	if res.Error != nil {
		return zero, res.Error
	}
	if supportsReturning(tx) {
		if res.RowsAffected == 0 {
			return zero, NotFound(r.m.Entity, id)
		}
		return r.m.ToView(&row), nil
	}

	// Without clientFoundRows MySQL reports changed rows only, so an update
	// that rewrites identical values affects 0. Existence is decided by the
	// re-read instead.
	var fresh E
	res = r.byID(r.m.scoped(tx.Model(&fresh)), id).Limit(1).Find(&fresh)
	if res.Error != nil {
		return zero, res.Error
	}
	if res.RowsAffected == 0 {
		return zero, NotFound(r.m.Entity, id)
	}
	return r.m.ToView(&fresh), nil
}

// MySQL has no RETURNING; GORM drops the clause there, so rows are re-read
// inside the same transaction.
func supportsReturning(tx *gorm.DB) bool {
	return tx.Dialector.Name() != "mysql"
}

// reread loads row again by its primary key where RETURNING is unavailable,
// so timestamps carry the column's stored precision.
func reread[E any](tx *gorm.DB, row *E) error {
	if supportsReturning(tx) {
		return nil
	}
	return tx.Take(row).Error
}

// Update applies only the fields set on in and returns the updated row.
func (r *Gorm[E, R, C, U]) Update(ctx context.Context, in U) (R, error) {
	var out R
	if err := r.check(opUpdate, in); err != nil {
		return out, err
	}
	err := r.Session(ctx, opUpdate, func(tx *gorm.DB) error {
		v, err := r.updateOne(tx, in)
		out = v
		return err
	})
	if err != nil {
		var zero R
		return zero, err
	}
	return out, nil
}

// BulkUpdate applies every partial update in one transaction. A missing id
// fails the whole batch. Callers must not rely on result order.
func (r *Gorm[E, R, C, U]) BulkUpdate(ctx context.Context, in []U) ([]R, error) {
	if len(in) == 0 {
		return []R{}, nil
	}
	for i := range in {
		if err := r.check(opBulkUpdate, in[i]); err != nil {
			return nil, err
		}
	}
	var out []R
	err := r.Session(ctx, opBulkUpdate, func(tx *gorm.DB) error {
		out = make([]R, 0, len(in))
		for _, u := range in {
			v, err := r.updateOne(tx, u)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the row. Deleting a missing row succeeds with false.
func (r *Gorm[E, R, C, U]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.Session(ctx, opDelete, func(tx *gorm.DB) error {
		res := r.byID(r.m.scoped(tx.Model(new(E))), id).Delete(new(E))
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// ListPaginated returns one page over all rows of the entity. Count and
// window share the transaction.
func (r *Gorm[E, R, C, U]) ListPaginated(ctx context.Context, req pagination.Request) (*pagination.Page[R], error) {
	if err := req.Validate(); err != nil {
		return nil, r.fail(opList, err)
	}
	var out *pagination.Page[R]
	err := r.Session(ctx, opList, func(tx *gorm.DB) error {
		q := &gormQuery[E]{tx: tx, scope: r.m.Scope, order: r.m.order()}
		page, err := pagination.Paginate(ctx, q, req, func(row E) R { return r.m.ToView(&row) })
		if err != nil {
			return err
		}
		out = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func idValues(ids []uuid.UUID) []any {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
