package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mapping describes one entity to the generic engine:
// E is the GORM model, R the read view, C the create input, U the update input.
type Mapping[E, R, C, U any] struct {
	// Entity is the name used in not-found details and metrics, e.g. "User".
	Entity string

	// FromCreate builds a new row. The identifier is assigned on insert.
	FromCreate func(in C) (E, error)
	// ToView projects a fetched row.
	ToView func(row *E) R
	// UpdateID returns the target row of an update.
	UpdateID func(in U) uuid.UUID
	// Changes returns only the columns explicitly set on in.
	Changes func(in U) (map[string]any, error)

	// Scope narrows every read, update and delete (listing included). Optional.
	Scope func(tx *gorm.DB) *gorm.DB
	// Order is the declared listing order; defaults to "created_at ASC, id ASC".
	Order string

	IDColumn        string // default "id"
	UpdatedAtColumn string // default "updated_at"
}

func (m *Mapping[E, R, C, U]) idColumn() string {
	if m.IDColumn != "" {
		return m.IDColumn
	}
	return "id"
}

func (m *Mapping[E, R, C, U]) updatedAtColumn() string {
	if m.UpdatedAtColumn != "" {
		return m.UpdatedAtColumn
	}
	return "updated_at"
}

func (m *Mapping[E, R, C, U]) order() string {
	if m.Order != "" {
		return m.Order
	}
	return "created_at ASC, " + m.idColumn() + " ASC"
}

func (m *Mapping[E, R, C, U]) scoped(tx *gorm.DB) *gorm.DB {
	if m.Scope != nil {
		return m.Scope(tx)
	}
	return tx
}

func (m *Mapping[E, R, C, U]) views(rows []E) []R {
	out := make([]R, 0, len(rows))
	for i := range rows {
		out = append(out, m.ToView(&rows[i]))
	}
	return out
}
