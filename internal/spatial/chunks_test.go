package spatial

import (
	"reflect"
	"testing"

	"github.com/agentic-research/ifcgraph/internal/schema"
	"github.com/agentic-research/ifcgraph/internal/store"
)

func aggRecord(id, relating uint32, related ...uint32) *store.Record {
	relatedVals := make([]any, len(related))
	for i, r := range related {
		relatedVals[i] = store.Ref{ID: r}
	}
	return &store.Record{
		ID:   id,
		Type: "IFCRELAGGREGATES",
		Fields: map[string]any{
			"RelatingObject": store.Ref{ID: relating},
			"RelatedObjects": relatedVals,
		},
	}
}

func TestBuildChunksEmptyInput(t *testing.T) {
	chunks := BuildChunks(nil, schema.Default().Aggregates)
	if len(chunks) != 0 {
		t.Errorf("chunks = %v, want empty map", chunks)
	}
}

func TestBuildChunksPreservesFirstSeenOrder(t *testing.T) {
	records := []*store.Record{
		aggRecord(100, 1, 5, 3),
		aggRecord(101, 2, 9),
		aggRecord(102, 1, 7),
	}
	chunks := BuildChunks(records, schema.Default().Aggregates)

	// Two relation records for relating id 1 concatenate in record order.
	if !reflect.DeepEqual(chunks[1], []uint32{5, 3, 7}) {
		t.Errorf("chunks[1] = %v, want [5 3 7]", chunks[1])
	}
	if !reflect.DeepEqual(chunks[2], []uint32{9}) {
		t.Errorf("chunks[2] = %v, want [9]", chunks[2])
	}
}

func TestBuildChunksScalarRelatedField(t *testing.T) {
	rec := &store.Record{
		ID:   100,
		Type: "IFCRELAGGREGATES",
		Fields: map[string]any{
			"RelatingObject": store.Ref{ID: 1},
			"RelatedObjects": store.Ref{ID: 2},
		},
	}
	chunks := BuildChunks([]*store.Record{rec}, schema.Default().Aggregates)
	if !reflect.DeepEqual(chunks[1], []uint32{2}) {
		t.Errorf("chunks[1] = %v, want [2]", chunks[1])
	}
}

func TestBuildChunksSkipsRecordsWithoutRelatingRef(t *testing.T) {
	rec := &store.Record{
		ID:     100,
		Type:   "IFCRELAGGREGATES",
		Fields: map[string]any{"RelatedObjects": store.Ref{ID: 2}},
	}
	chunks := BuildChunks([]*store.Record{rec}, schema.Default().Aggregates)
	if len(chunks) != 0 {
		t.Errorf("chunks = %v, want empty map", chunks)
	}
}
