package repository

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is one fixed category of repository failure.
type Kind uint8

const (
	// KindRepository is the generic base kind; unclassified failures use it.
	KindRepository Kind = iota
	// KindStore is the base of every failure raised by the store itself.
	KindStore
	KindConnection
	KindIntegrity
	KindData
	KindOperational
	KindTimeout
	KindQuery
	KindInternal
	// KindNotFound refines KindRepository directly, not KindStore.
	KindNotFound
)

var kindNames = map[Kind]string{
	KindRepository:  "repository",
	KindStore:       "store",
	KindConnection:  "connection",
	KindIntegrity:   "integrity",
	KindData:        "data",
	KindOperational: "operational",
	KindTimeout:     "timeout",
	KindQuery:       "query",
	KindInternal:    "internal",
	KindNotFound:    "not_found",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// parent returns the kind k refines. KindRepository is its own parent.
func (k Kind) parent() Kind {
	switch k {
	case KindConnection, KindIntegrity, KindData, KindOperational, KindTimeout, KindQuery, KindInternal:
		return KindStore
	default:
		return KindRepository
	}
}

// refines reports whether k is target or a descendant of it.
func (k Kind) refines(target Kind) bool {
	for {
		if k == target {
			return true
		}
		if k == KindRepository {
			return false
		}
		k = k.parent()
	}
}

// Error is the only error type returned by repository operations.
// It keeps the message of the underlying failure, never the failure itself.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "repository: " + e.Kind.String() + " error"
	}
	return e.Detail
}

// Is matches the package sentinels along the kind hierarchy, so
// errors.Is(connErr, ErrStore) and errors.Is(notFound, ErrRepository) hold.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Detail != "" {
		return false
	}
	return e.Kind.refines(t.Kind)
}

// Sentinels for errors.Is. They carry no detail.
var (
	ErrRepository     = &Error{Kind: KindRepository}
	ErrStore          = &Error{Kind: KindStore}
	ErrConnection     = &Error{Kind: KindConnection}
	ErrIntegrity      = &Error{Kind: KindIntegrity}
	ErrData           = &Error{Kind: KindData}
	ErrOperational    = &Error{Kind: KindOperational}
	ErrTimeout        = &Error{Kind: KindTimeout}
	ErrQuery          = &Error{Kind: KindQuery}
	ErrInternal       = &Error{Kind: KindInternal}
	ErrObjectNotFound = &Error{Kind: KindNotFound}
)

var detailPrefix = map[Kind]string{
	KindRepository:  "Exception of unknown origin",
	KindStore:       "Database error",
	KindConnection:  "Database connection error",
	KindIntegrity:   "Data integrity violation",
	KindData:        "Error in data or its structure",
	KindOperational: "Database operation error",
	KindTimeout:     "Query execution timeout",
	KindQuery:       "Error executing the query",
	KindInternal:    "Internal error",
	KindNotFound:    "Object not found",
}

func newError(kind Kind, cause error) *Error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: kind, Detail: detailPrefix[kind] + ": " + msg}
}

// NotFound builds the error returned when no row carries id.
func NotFound(entity string, id uuid.UUID) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf("%s with id: %s not found", entity, id)}
}

// KindOf returns the kind of err, or KindRepository when err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := asError(err); ok {
		return e.Kind
	}
	return KindRepository
}
