package store

import (
	"context"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// MemoryStore is the materialized-table Source: every record is held in
// RAM, keyed by id and grouped by type in insertion order. Insertion order
// is the record order of the parser dump, which the tree builder relies on
// for its "first project record wins" tie-break.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uint32]*Record
	byType  map[string][]*Record
	present *roaring.Bitmap
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uint32]*Record),
		byType:  make(map[string][]*Record),
		present: roaring.New(),
	}
}

// Add inserts a record. A duplicate id replaces the by-id entry but keeps
// the first occurrence's position in type order.
func (s *MemoryStore) Add(r *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.byID[r.ID]; !seen {
		s.byType[r.Type] = append(s.byType[r.Type], r)
	}
	s.byID[r.ID] = r
	s.present.Add(r.ID)
}

// Has reports id membership via the presence bitmap.
func (s *MemoryStore) Has(id uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.present.Contains(id)
}

// Len returns the number of records in the table.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// DanglingRefs counts reference fields whose target id is absent from the
// table. Reported as a load diagnostic; dangling references are tolerated
// until a traversal actually dereferences one.
func (s *MemoryStore) DanglingRefs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, r := range s.byID {
		for _, v := range r.Fields {
			for _, id := range RefIDs(v) {
				if !s.present.Contains(id) {
					n++
				}
			}
		}
	}
	return n
}

// RecordsByType implements Source.
func (s *MemoryStore) RecordsByType(_ context.Context, typeName string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.byType[typeName]
	out := make([]*Record, len(records))
	copy(out, records)
	return out, nil
}

// Record implements Source.
func (s *MemoryStore) Record(_ context.Context, id uint32) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// TypeName implements Source.
func (s *MemoryStore) TypeName(_ context.Context, id uint32) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return "", ErrUnknownType
	}
	return r.Type, nil
}
