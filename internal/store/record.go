package store

import (
	"encoding/json"
	"fmt"
)

// Ref is a field value that points at another record by id.
// The parser frontend encodes it on the wire as {"ref": N}.
type Ref struct {
	ID uint32
}

// Record is one row of the flat relational table emitted by the parser
// frontend. Fields hold scalars (string, float64, bool, nil), Ref values,
// or []any of those. A Record is immutable once loaded; resolvers build
// new records instead of rewriting fields in place.
type Record struct {
	ID     uint32
	Type   string
	Fields map[string]any
}

// RefIDs extracts the referenced ids from a field value.
// A scalar Ref yields one id, an array yields the ids of its Ref elements
// in order. Non-reference values yield nothing.
func RefIDs(v any) []uint32 {
	switch t := v.(type) {
	case Ref:
		return []uint32{t.ID}
	case []any:
		var ids []uint32
		for _, el := range t {
			if ref, ok := el.(Ref); ok {
				ids = append(ids, ref.ID)
			}
		}
		return ids
	}
	return nil
}

// ContainsRef reports whether a field value references id, checking both
// the scalar and array shapes.
func ContainsRef(v any, id uint32) bool {
	switch t := v.(type) {
	case Ref:
		return t.ID == id
	case []any:
		for _, el := range t {
			if ref, ok := el.(Ref); ok && ref.ID == id {
				return true
			}
		}
	}
	return false
}

// DecodeFields converts a raw JSON fields object into the in-memory field
// representation, turning every {"ref": N} object into a Ref.
func DecodeFields(raw []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	decoded := make(map[string]any, len(fields))
	for name, v := range fields {
		decoded[name] = decodeValue(v)
	}
	return decoded, nil
}

func decodeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			if id, ok := t["ref"]; ok {
				if n, ok := id.(float64); ok {
					return Ref{ID: uint32(n)}
				}
			}
		}
		// Nested objects other than references pass through untouched.
		return t
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = decodeValue(el)
		}
		return out
	}
	return v
}

// AsMap renders the record as a plain JSON-marshalable structure.
// Ref values become {"ref": N}; nested *Record values (produced by
// recursive resolution) become nested maps.
func (r *Record) AsMap() map[string]any {
	m := map[string]any{
		"id":   r.ID,
		"type": r.Type,
	}
	fields := make(map[string]any, len(r.Fields))
	for name, v := range r.Fields {
		fields[name] = encodeValue(v)
	}
	m["fields"] = fields
	return m
}

// FieldsMap renders just the fields as a plain JSON-marshalable map.
func (r *Record) FieldsMap() map[string]any {
	fields := make(map[string]any, len(r.Fields))
	for name, v := range r.Fields {
		fields[name] = encodeValue(v)
	}
	return fields
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case Ref:
		return map[string]any{"ref": t.ID}
	case *Record:
		return t.AsMap()
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = encodeValue(el)
		}
		return out
	}
	return v
}
