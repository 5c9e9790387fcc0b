// Package props answers property queries over the flat record table:
// which property sets, type objects, or materials relate to an element,
// with optional recursive dereferencing of the payload.
package props

import (
	"context"
	"fmt"

	"github.com/agentic-research/ifcgraph/internal/schema"
	"github.com/agentic-research/ifcgraph/internal/store"
)

// Resolver depends only on the Source capability.
type Resolver struct {
	src store.Source
}

func NewResolver(src store.Source) *Resolver {
	return &Resolver{src: src}
}

// RelatedRecords returns every record related to elementID through the
// given relation kind.
//
// The orientation is the reverse of aggregation relations: property-set
// relations point from property-holder to element, so elementID is matched
// against the RELATED field and the result ids are read from the RELATING
// field. Both fields accept the scalar and array shapes.
//
// With recursive set, each fetched record is expanded into a new record
// graph in which every reference field is replaced by its fully expanded
// target. Source records are never mutated, and nothing is shared: a
// property set referenced by many elements expands into an independent
// copy at every occurrence, which can be large for heavily reused sets.
func (r *Resolver) RelatedRecords(ctx context.Context, elementID uint32, desc schema.Descriptor, recursive bool) ([]*store.Record, error) {
	relations, err := r.src.RecordsByType(ctx, desc.RelationType)
	if err != nil {
		return nil, fmt.Errorf("fetch %s records: %w", desc.RelationType, err)
	}

	var ids []uint32
	for _, rel := range relations {
		if store.ContainsRef(rel.Fields[desc.RelatedField], elementID) {
			ids = append(ids, store.RefIDs(rel.Fields[desc.RelatingField])...)
		}
	}

	records := make([]*store.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := r.src.Record(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch related record %d: %w", id, err)
		}
		if recursive {
			rec, err = r.expand(ctx, rec)
			if err != nil {
				return nil, err
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// expand returns a new record whose reference fields are replaced by their
// expanded targets. A record with no reference fields comes back as an
// equal copy.
func (r *Resolver) expand(ctx context.Context, rec *store.Record) (*store.Record, error) {
	out := &store.Record{
		ID:     rec.ID,
		Type:   rec.Type,
		Fields: make(map[string]any, len(rec.Fields)),
	}
	for name, v := range rec.Fields {
		ev, err := r.expandValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("field %s of record %d: %w", name, rec.ID, err)
		}
		out.Fields[name] = ev
	}
	return out, nil
}

func (r *Resolver) expandValue(ctx context.Context, v any) (any, error) {
	switch t := v.(type) {
	case store.Ref:
		target, err := r.src.Record(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("dereference record %d: %w", t.ID, err)
		}
		return r.expand(ctx, target)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			ev, err := r.expandValue(ctx, el)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	}
	return v, nil
}
