package spatial

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/ifcgraph/api"
	"github.com/agentic-research/ifcgraph/internal/store"
)

var (
	// ErrMissingRoot means the model has no project-type record.
	ErrMissingRoot = errors.New("no project record in model")
	// ErrMalformedHierarchy means the relation data forms a cycle.
	// Acyclic relation data is a precondition of tree assembly; a cycle is
	// malformed input, not something to silently repair.
	ErrMalformedHierarchy = errors.New("cycle in containment relations")
)

// Builder assembles the spatial tree for one model. It depends only on the
// Source capability and the pre-built chunk maps, never on the store
// variant behind them.
type Builder struct {
	src         store.Source
	chunks      Chunks
	projectType string

	// claimed maps a child id to the parent that first discovered it.
	// First-discovered parent wins; later parents skip the child.
	claimed map[uint32]uint32
}

func NewBuilder(src store.Source, chunks Chunks, projectType string) *Builder {
	return &Builder{
		src:         src,
		chunks:      chunks,
		projectType: projectType,
	}
}

// Build finds the model's project record and assembles the tree below it.
// When several project records exist (malformed but observed in the wild)
// the first in record order wins, deterministically. includeProperties
// inlines each node's own field payload as it is discovered.
func (b *Builder) Build(ctx context.Context, includeProperties bool) (*api.TreeNode, error) {
	projects, err := b.src.RecordsByType(ctx, b.projectType)
	if err != nil {
		return nil, fmt.Errorf("fetch %s records: %w", b.projectType, err)
	}
	if len(projects) == 0 {
		return nil, ErrMissingRoot
	}
	return b.BuildFrom(ctx, projects[0].ID, includeProperties)
}

// BuildFrom assembles the tree rooted at rootID. Children are discovered
// depth-first: aggregates-derived ids first, then spatial-containment ids,
// each in chunk order, appended into one children sequence without
// deduplication. An id related to the same parent under both kinds
// appears twice, exactly as the relations encode it.
func (b *Builder) BuildFrom(ctx context.Context, rootID uint32, includeProperties bool) (*api.TreeNode, error) {
	typeName, err := b.src.TypeName(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("classify root %d: %w", rootID, err)
	}
	root := &api.TreeNode{ID: rootID, Type: typeName}
	if includeProperties {
		if err := b.inlineProperties(ctx, root); err != nil {
			return nil, err
		}
	}

	b.claimed = make(map[uint32]uint32)
	path := roaring.New()
	path.Add(rootID)
	if err := b.expand(ctx, root, path, includeProperties); err != nil {
		return nil, err
	}
	return root, nil
}

// expand fills in node's children and recurses. path carries the ids on
// the current ancestor chain; revisiting one means the relations encode a
// cycle and the whole build fails rather than recursing forever.
func (b *Builder) expand(ctx context.Context, node *api.TreeNode, path *roaring.Bitmap, includeProperties bool) error {
	childIDs := append([]uint32{}, b.chunks.Aggregates[node.ID]...)
	childIDs = append(childIDs, b.chunks.Spatial[node.ID]...)

	for _, id := range childIDs {
		if path.Contains(id) {
			return fmt.Errorf("%w: record %d is its own ancestor", ErrMalformedHierarchy, id)
		}
		if parent, taken := b.claimed[id]; taken && parent != node.ID {
			continue
		}
		b.claimed[id] = node.ID

		typeName, err := b.src.TypeName(ctx, id)
		if err != nil {
			return fmt.Errorf("classify record %d: %w", id, err)
		}
		child := &api.TreeNode{ID: id, Type: typeName}
		if includeProperties {
			if err := b.inlineProperties(ctx, child); err != nil {
				return err
			}
		}

		path.Add(id)
		if err := b.expand(ctx, child, path, includeProperties); err != nil {
			return err
		}
		path.Remove(id)

		node.Children = append(node.Children, child)
	}
	return nil
}

func (b *Builder) inlineProperties(ctx context.Context, node *api.TreeNode) error {
	rec, err := b.src.Record(ctx, node.ID)
	if err != nil {
		return fmt.Errorf("fetch properties of record %d: %w", node.ID, err)
	}
	node.Properties = rec.FieldsMap()
	return nil
}
