package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means a record id has no row in the table.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownType means the type classification lookup missed.
	ErrUnknownType = errors.New("unknown type")
)

// Source is the record-store capability the traversal layers depend on.
// Two variants exist: MemoryStore holds the fully materialized table,
// SQLiteStore queries the parser dump incrementally. Callers never depend
// on the variant.
type Source interface {
	// RecordsByType returns all records of the given type in record order.
	// A type with no records yields an empty slice, not an error.
	RecordsByType(ctx context.Context, typeName string) ([]*Record, error)
	// Record fetches a single record by id.
	Record(ctx context.Context, id uint32) (*Record, error)
	// TypeName resolves the type classification of an id.
	TypeName(ctx context.Context, id uint32) (string, error)
}
