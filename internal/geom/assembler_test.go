package geom

import (
	"testing"

	"github.com/flywave/go3d/vec3"
)

var (
	red  = ColorKey{R: 1, A: 1}
	blue = ColorKey{B: 1, A: 1}
)

func quad(base float32) Fragment {
	return Fragment{
		Vertices: []vec3.T{
			{base, 0, 0}, {base + 1, 0, 0}, {base + 1, 1, 0}, {base, 1, 0},
		},
		Normals: []vec3.T{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestMergePreservesVertexCount(t *testing.T) {
	a := NewAssembler()

	f1 := quad(0)
	f1.ElementID = 7
	f1.Color = red
	f2 := quad(10)
	f2.ElementID = 7
	f2.Color = red
	a.Add(f1)
	a.Add(f2)

	batches := a.Batches()
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	if got := len(batches[0].Node.Vertices); got != 8 {
		t.Errorf("vertices = %d, want sum of fragments (8)", got)
	}
	if got := len(batches[0].Node.Normals); got != 8 {
		t.Errorf("normals = %d, want 8", got)
	}
}

func TestMergeRebasesIndices(t *testing.T) {
	a := NewAssembler()

	f1 := quad(0)
	f1.ElementID = 7
	f1.Color = red
	f2 := quad(10)
	f2.ElementID = 7
	f2.Color = red
	a.Add(f1)
	a.Add(f2)

	node := a.Batches()[0].Node
	var faces int
	for _, g := range node.FaceGroup {
		for _, f := range g.Faces {
			faces++
			for _, v := range f.Vertex {
				if int(v) >= len(node.Vertices) {
					t.Fatalf("face index %d out of range (%d vertices)", v, len(node.Vertices))
				}
			}
		}
	}
	if faces != 4 {
		t.Errorf("faces = %d, want 4", faces)
	}
	// Second fragment's faces must point at the rebased vertex range.
	last := node.FaceGroup[len(node.FaceGroup)-1]
	lastFace := last.Faces[len(last.Faces)-1]
	if lastFace.Vertex[0] < 4 {
		t.Errorf("rebased face starts at %d, want >= 4", lastFace.Vertex[0])
	}
}

func TestDistinctElementsStaySeparateWithinColor(t *testing.T) {
	a := NewAssembler()

	f1 := quad(0)
	f1.ElementID = 1
	f1.Color = red
	f2 := quad(5)
	f2.ElementID = 2
	f2.Color = red
	a.Add(f1)
	a.Add(f2)

	batches := a.Batches()
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	b := batches[0]
	if len(b.Elements) != 2 || b.Elements[0] != 1 || b.Elements[1] != 2 {
		t.Errorf("elements = %v, want [1 2]", b.Elements)
	}
	if len(b.Node.FaceGroup) != 2 {
		t.Errorf("face groups = %d, want one per element", len(b.Node.FaceGroup))
	}
	if b.Node.FaceGroup[0].Batchid != 0 || b.Node.FaceGroup[1].Batchid != 1 {
		t.Error("face group batch ids must match element order")
	}
}

func TestOneBatchPerColor(t *testing.T) {
	a := NewAssembler()
	f1 := quad(0)
	f1.ElementID = 1
	f1.Color = red
	f2 := quad(0)
	f2.ElementID = 1
	f2.Color = blue
	a.Add(f1)
	a.Add(f2)

	batches := a.Batches()
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}
	if batches[0].Color != red || batches[1].Color != blue {
		t.Error("batches must come out in first-seen color order")
	}
}

func TestMaterialCachedPerColorKey(t *testing.T) {
	a := NewAssembler()
	m1 := a.Material(red)
	m2 := a.Material(red)
	if m1 != m2 {
		t.Error("material for a color key must never be recreated")
	}
	if m1.Color != [3]byte{255, 0, 0} {
		t.Errorf("material color = %v, want [255 0 0]", m1.Color)
	}

	// Exact floating point match required: a nearby color is a new key.
	near := ColorKey{R: 1 - 1e-12, A: 1}
	if a.Material(near) == m1 {
		t.Error("near-equal colors must not share a material")
	}
}

func TestMaterialClampsOutOfRangeComponents(t *testing.T) {
	a := NewAssembler()

	over := a.Material(ColorKey{R: 1.5, G: 2, B: 1, A: 1})
	if over.Color != [3]byte{255, 255, 255} {
		t.Errorf("overrange color = %v, want clamped to [255 255 255]", over.Color)
	}

	under := a.Material(ColorKey{R: -0.5, A: 1})
	if under.Color != [3]byte{0, 0, 0} {
		t.Errorf("negative color = %v, want clamped to [0 0 0]", under.Color)
	}
}

func TestBatchMaterialMatchesCache(t *testing.T) {
	a := NewAssembler()
	f := quad(0)
	f.ElementID = 1
	f.Color = red
	a.Add(f)

	if a.Batches()[0].Material != a.Material(red) {
		t.Error("batch must carry the cached material instance")
	}
}
