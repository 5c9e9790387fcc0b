// Package spatial reconstructs the hierarchical building structure from
// the flat relation records of a parsed model.
package spatial

import (
	"github.com/agentic-research/ifcgraph/internal/schema"
	"github.com/agentic-research/ifcgraph/internal/store"
)

// ChunkMap is the adjacency map for one relation kind: relating id →
// related ids in first-seen order. Built once per relation kind per model
// and reused for every node during tree assembly, so assembly costs
// O(relations) instead of O(nodes × relations).
type ChunkMap map[uint32][]uint32

// BuildChunks indexes relation records into a ChunkMap. The relating field
// is read as a single reference, the related field as a reference or an
// array of references. Several relation records may contribute to the same
// relating id; their related ids concatenate in record order. The source
// format produces this legitimately, so it is not collapsed.
func BuildChunks(records []*store.Record, desc schema.Descriptor) ChunkMap {
	chunks := make(ChunkMap)
	for _, r := range records {
		relating := store.RefIDs(r.Fields[desc.RelatingField])
		if len(relating) == 0 {
			continue
		}
		related := store.RefIDs(r.Fields[desc.RelatedField])
		chunks[relating[0]] = append(chunks[relating[0]], related...)
	}
	return chunks
}

// Chunks bundles the two relation kinds that both contribute children to
// the spatial tree.
type Chunks struct {
	Aggregates ChunkMap
	Spatial    ChunkMap
}
