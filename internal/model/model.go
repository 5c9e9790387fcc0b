// Package model ties a loaded record table to the traversal layers and
// tracks open models in a registry.
package model

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/agentic-research/ifcgraph/api"
	"github.com/agentic-research/ifcgraph/internal/geom"
	"github.com/agentic-research/ifcgraph/internal/props"
	"github.com/agentic-research/ifcgraph/internal/schema"
	"github.com/agentic-research/ifcgraph/internal/spatial"
	"github.com/agentic-research/ifcgraph/internal/store"
)

// Model is one open building model. It exclusively owns its chunk maps,
// its assembled tree, and its draw batches; nothing is shared across
// models. The chunk maps are built once at open and reused by every
// traversal of that model.
type Model struct {
	ID     int
	Schema schema.Set

	src      store.Source
	chunks   spatial.Chunks
	resolver *props.Resolver

	// Geometry accumulates into the model's own assembler; the material
	// cache inside it is per-model.
	Geometry *geom.Assembler
}

func newModel(ctx context.Context, src store.Source, set schema.Set) (*Model, error) {
	aggRecords, err := src.RecordsByType(ctx, set.Aggregates.RelationType)
	if err != nil {
		return nil, fmt.Errorf("fetch aggregation relations: %w", err)
	}
	spatRecords, err := src.RecordsByType(ctx, set.Spatial.RelationType)
	if err != nil {
		return nil, fmt.Errorf("fetch spatial relations: %w", err)
	}
	return &Model{
		Schema: set,
		src:    src,
		chunks: spatial.Chunks{
			Aggregates: spatial.BuildChunks(aggRecords, set.Aggregates),
			Spatial:    spatial.BuildChunks(spatRecords, set.Spatial),
		},
		resolver: props.NewResolver(src),
		Geometry: geom.NewAssembler(),
	}, nil
}

// SpatialStructure assembles the model's spatial tree, rooted at the
// project record.
func (m *Model) SpatialStructure(ctx context.Context, includeProperties bool) (*api.TreeNode, error) {
	b := spatial.NewBuilder(m.src, m.chunks, m.Schema.ProjectType)
	return b.Build(ctx, includeProperties)
}

// PropertySets returns the property sets related to an element.
func (m *Model) PropertySets(ctx context.Context, elementID uint32, recursive bool) ([]*store.Record, error) {
	return m.resolver.RelatedRecords(ctx, elementID, m.Schema.PropertySets, recursive)
}

// TypeProperties returns the type objects related to an element.
func (m *Model) TypeProperties(ctx context.Context, elementID uint32, recursive bool) ([]*store.Record, error) {
	return m.resolver.RelatedRecords(ctx, elementID, m.Schema.TypeOf, recursive)
}

// MaterialsProperties returns the material definitions related to an
// element.
func (m *Model) MaterialsProperties(ctx context.Context, elementID uint32, recursive bool) ([]*store.Record, error) {
	return m.resolver.RelatedRecords(ctx, elementID, m.Schema.Materials, recursive)
}

// ItemIDsOfType returns the ids of every record of the given type, in
// record order.
func (m *Model) ItemIDsOfType(ctx context.Context, typeName string) ([]uint32, error) {
	records, err := m.src.RecordsByType(ctx, typeName)
	if err != nil {
		return nil, fmt.Errorf("fetch %s records: %w", typeName, err)
	}
	ids := make([]uint32, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids, nil
}

// ItemsOfType returns the full records of the given type, in record order.
func (m *Model) ItemsOfType(ctx context.Context, typeName string) ([]*store.Record, error) {
	return m.src.RecordsByType(ctx, typeName)
}

// Record exposes the by-id lookup of the underlying source.
func (m *Model) Record(ctx context.Context, id uint32) (*store.Record, error) {
	return m.src.Record(ctx, id)
}

// close releases the underlying store when it holds resources.
func (m *Model) close() error {
	if c, ok := m.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (m *Model) logFields() []zap.Field {
	return []zap.Field{
		zap.Int("model", m.ID),
		zap.Int("aggregate_parents", len(m.chunks.Aggregates)),
		zap.Int("spatial_parents", len(m.chunks.Spatial)),
	}
}
