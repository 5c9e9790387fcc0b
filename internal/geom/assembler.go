// Package geom turns the placed geometry fragments emitted by the parser
// into a minimal set of per-appearance draw batches.
package geom

import (
	"strconv"

	mst "github.com/flywave/go-mst"
	"github.com/flywave/go3d/vec3"
)

// ColorKey is the appearance key fragments are grouped by. Two fragments
// share a batch only on an exact floating point match of all four
// components. No tolerance.
type ColorKey struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Key renders the concatenated string form used for map lookups.
func (c ColorKey) Key() string {
	return strconv.FormatFloat(c.R, 'g', -1, 64) + "-" +
		strconv.FormatFloat(c.G, 'g', -1, 64) + "-" +
		strconv.FormatFloat(c.B, 'g', -1, 64) + "-" +
		strconv.FormatFloat(c.A, 'g', -1, 64)
}

// Fragment is one placed geometry instance for one element. Fragments are
// produced once by the parser, consumed into a batch, then discarded.
// Indices are triangle index triples into Vertices/Normals.
type Fragment struct {
	ElementID uint32
	Vertices  []vec3.T
	Normals   []vec3.T
	Indices   []uint32
	Color     ColorKey
}

// Batch is the merged renderable geometry for all fragments of one model
// sharing a ColorKey. Elements lists the element ids in merge order; the
// i-th face group of Node carries Batchid i and belongs to Elements[i],
// which keeps element→batch membership stable.
type Batch struct {
	Color    ColorKey
	Elements []uint32
	Node     *mst.MeshNode
	Material *mst.BaseMaterial
}

// Assembler accumulates fragments for one model. Within a color group,
// fragments sharing an element id merge into one entry (repeated
// placements of one element consolidate); distinct elements stay separate
// entries until the final per-color merge.
type Assembler struct {
	groups     map[string]*colorGroup
	groupOrder []string
	materials  map[string]*mst.BaseMaterial
}

type colorGroup struct {
	color     ColorKey
	byElement map[uint32]*mst.MeshNode
	order     []uint32
}

func NewAssembler() *Assembler {
	return &Assembler{
		groups:    make(map[string]*colorGroup),
		materials: make(map[string]*mst.BaseMaterial),
	}
}

// Add consumes one fragment into its color group.
func (a *Assembler) Add(f Fragment) {
	key := f.Color.Key()
	g, ok := a.groups[key]
	if !ok {
		g = &colorGroup{
			color:     f.Color,
			byElement: make(map[uint32]*mst.MeshNode),
		}
		a.groups[key] = g
		a.groupOrder = append(a.groupOrder, key)
	}

	node, ok := g.byElement[f.ElementID]
	if !ok {
		node = &mst.MeshNode{}
		g.byElement[f.ElementID] = node
		g.order = append(g.order, f.ElementID)
	}
	appendFragment(node, f)
}

// appendFragment merges a fragment into a mesh node, rebasing its indices
// onto the node's current vertex count.
func appendFragment(node *mst.MeshNode, f Fragment) {
	base := uint32(len(node.Vertices))
	node.Vertices = append(node.Vertices, f.Vertices...)
	node.Normals = append(node.Normals, f.Normals...)

	var group *mst.MeshTriangle
	if len(node.FaceGroup) > 0 {
		group = node.FaceGroup[len(node.FaceGroup)-1]
	} else {
		group = &mst.MeshTriangle{}
		node.FaceGroup = append(node.FaceGroup, group)
	}
	for i := 0; i+2 < len(f.Indices); i += 3 {
		group.Faces = append(group.Faces, &mst.Face{
			Vertex: [3]uint32{
				f.Indices[i] + base,
				f.Indices[i+1] + base,
				f.Indices[i+2] + base,
			},
		})
	}
}

// Material returns the one material instance for a color key, building it
// on first use and never recreating it afterwards.
func (a *Assembler) Material(c ColorKey) *mst.BaseMaterial {
	key := c.Key()
	if m, ok := a.materials[key]; ok {
		return m
	}
	m := &mst.BaseMaterial{
		Color: [3]byte{
			colorByte(c.R),
			colorByte(c.G),
			colorByte(c.B),
		},
		Transparency: float32(1 - c.A),
	}
	a.materials[key] = m
	return m
}

// colorByte converts a [0,1] component to a byte, clamping out-of-range
// input instead of letting the byte conversion wrap.
func colorByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v * 255)
}

// Batches merges every color group into a single batch per color, in
// first-seen color order. Element entries concatenate in merge order; no
// vertex is dropped, so a batch's vertex count is the exact sum of its
// fragments' vertex counts.
func (a *Assembler) Batches() []*Batch {
	batches := make([]*Batch, 0, len(a.groupOrder))
	for _, key := range a.groupOrder {
		g := a.groups[key]
		merged := &mst.MeshNode{}
		batch := &Batch{
			Color:    g.color,
			Node:     merged,
			Material: a.Material(g.color),
		}
		for i, elemID := range g.order {
			src := g.byElement[elemID]
			base := uint32(len(merged.Vertices))
			merged.Vertices = append(merged.Vertices, src.Vertices...)
			merged.Normals = append(merged.Normals, src.Normals...)
			group := &mst.MeshTriangle{Batchid: int32(i)}
			for _, face := range src.FaceGroup {
				for _, f := range face.Faces {
					group.Faces = append(group.Faces, &mst.Face{
						Vertex: [3]uint32{
							f.Vertex[0] + base,
							f.Vertex[1] + base,
							f.Vertex[2] + base,
						},
					})
				}
			}
			merged.FaceGroup = append(merged.FaceGroup, group)
			batch.Elements = append(batch.Elements, elemID)
		}
		batches = append(batches, batch)
	}
	return batches
}
