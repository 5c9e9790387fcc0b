package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the incremental-query Source: records stay in the parser
// dump database and every lookup is a query. No index copy, no load step;
// the dump's primary key IS the by-id index. Suited to models too large to
// materialize.
//
// Expected dump schema:
//
//	CREATE TABLE records (
//	    id     INTEGER NOT NULL UNIQUE,
//	    type   TEXT NOT NULL,
//	    fields TEXT NOT NULL
//	);
//	CREATE INDEX idx_records_type ON records(type);
//
// id must NOT be the primary key: INTEGER PRIMARY KEY aliases rowid, which
// would turn rowid order into id order. With id merely UNIQUE, rowid stays
// the auto-assigned insertion sequence, and rowid order is record order,
// matching the insertion order the materialized variant preserves.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLiteStore opens a parser dump read-only.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(4)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA query_only=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set query_only: %w", err)
	}
	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// RecordsByType implements Source.
func (s *SQLiteStore) RecordsByType(ctx context.Context, typeName string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, fields FROM records WHERE type = ? ORDER BY rowid", typeName)
	if err != nil {
		return nil, fmt.Errorf("query records of %s: %w", typeName, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var records []*Record
	for rows.Next() {
		var id int64
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		fields, err := DecodeFields([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", id, err)
		}
		records = append(records, &Record{ID: uint32(id), Type: typeName, Fields: fields})
	}
	return records, rows.Err()
}

// Record implements Source.
func (s *SQLiteStore) Record(ctx context.Context, id uint32) (*Record, error) {
	var typeName, raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT type, fields FROM records WHERE id = ?", id).Scan(&typeName, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch record %d: %w", id, err)
	}
	fields, err := DecodeFields([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", id, err)
	}
	return &Record{ID: id, Type: typeName, Fields: fields}, nil
}

// TypeName implements Source.
func (s *SQLiteStore) TypeName(ctx context.Context, id uint32) (string, error) {
	var typeName string
	err := s.db.QueryRowContext(ctx,
		"SELECT type FROM records WHERE id = ?", id).Scan(&typeName)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnknownType
	}
	if err != nil {
		return "", fmt.Errorf("classify record %d: %w", id, err)
	}
	return typeName, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
