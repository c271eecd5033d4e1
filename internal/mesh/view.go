package mesh

import "github.com/Faultbox/shatter/pkg/math"

// View is a working copy of a Source with positions pre-scaled into world
// units. It owns its attribute tables so subdivision can append fabricated
// vertices without touching the caller's data.
type View struct {
	positions []math.Vec3
	normals   []math.Vec3
	uvs       []math.Vec2
	tangents  []math.Vec4

	queues []*TriangleQueue
	total  int
}

// NewView builds a View over src. A zero scale is treated as (1, 1, 1).
func NewView(src *Source, scale math.Vec3) *View {
	if scale == (math.Vec3{}) {
		scale = math.Vec3{X: 1, Y: 1, Z: 1}
	}

	n := len(src.Positions)
	v := &View{
		positions: make([]math.Vec3, n),
		normals:   padded(src.Normals, n),
		uvs:       padded(src.UVs, n),
		tangents:  padded(src.Tangents, n),
		queues:    make([]*TriangleQueue, len(src.Submeshes)),
	}
	for i, p := range src.Positions {
		v.positions[i] = p.Mul(scale)
	}

	for s, indices := range src.Submeshes {
		q := &TriangleQueue{}
		for i := 0; i+2 < len(indices); i += 3 {
			q.Enqueue(v.NewTriangle(indices[i], indices[i+1], indices[i+2]))
		}
		v.queues[s] = q
		v.total += q.Len()
	}
	return v
}

// padded copies src into a slice of exactly n elements, zero-filling the tail.
func padded[T any](src []T, n int) []T {
	out := make([]T, n)
	copy(out, src)
	return out
}

// SubmeshCount returns the number of submeshes.
func (v *View) SubmeshCount() int {
	return len(v.queues)
}

// Queue returns the triangle queue of a submesh.
func (v *View) Queue(submesh int) *TriangleQueue {
	return v.queues[submesh]
}

// TotalTriangles returns the source triangle count across all submeshes,
// as it was before any subdivision.
func (v *View) TotalTriangles() int {
	return v.total
}

// VertexCount returns the number of vertices, including fabricated ones.
func (v *View) VertexCount() int {
	return len(v.positions)
}

// Position returns the world-space position of vertex i.
func (v *View) Position(i int) math.Vec3 {
	return v.positions[i]
}

// Vertex returns all attributes of vertex i.
func (v *View) Vertex(i int) Vertex {
	return Vertex{
		Position: v.positions[i],
		UV:       v.uvs[i],
		Normal:   v.normals[i],
		Tangent:  v.tangents[i],
	}
}

// NewTriangle creates a triangle and caches its edge cross product.
func (v *View) NewTriangle(i0, i1, i2 int) Triangle {
	p0 := v.positions[i0]
	p1 := v.positions[i1]
	p2 := v.positions[i2]
	return Triangle{I0: i0, I1: i1, I2: i2, Cross: p1.Sub(p0).Cross(p2.Sub(p0))}
}
