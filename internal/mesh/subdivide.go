package mesh

import "github.com/Faultbox/shatter/internal/random"

// Midpoints are jittered into this range so shattering doesn't look regular.
const (
	midpointMin = 0.4
	midpointMax = 0.6
)

// Subdivide splits t into four triangles and pushes them onto the priority
// tier of q. The corners are rotated so the longest edge comes first; its
// midpoint is joined to the opposite corner and to the other two midpoints.
// The children keep t's winding.
func (v *View) Subdivide(t Triangle, q *TriangleQueue, rng random.Source) [4]Triangle {
	children := v.Split(t, rng)
	q.PushPriority(children[:]...)
	return children
}

// Split fabricates the three edge midpoints of t and returns the four
// children without queueing them.
func (v *View) Split(t Triangle, rng random.Source) [4]Triangle {
	p0 := v.positions[t.I0]
	p1 := v.positions[t.I1]
	p2 := v.positions[t.I2]
	l0 := p0.Sub(p1).LengthSq()
	l1 := p1.Sub(p2).LengthSq()
	l2 := p2.Sub(p0).LengthSq()

	var a0, a1, a2 int
	switch {
	case l0 >= l1 && l0 >= l2:
		a0, a1, a2 = t.I0, t.I1, t.I2
	case l1 >= l2:
		a0, a1, a2 = t.I1, t.I2, t.I0
	default:
		a0, a1, a2 = t.I2, t.I0, t.I1
	}

	n0 := v.fabricateVertex(a0, a1, rng)
	n1 := v.fabricateVertex(a1, a2, rng)
	n2 := v.fabricateVertex(a2, a0, rng)

	return [4]Triangle{
		v.NewTriangle(a0, n0, n2),
		v.NewTriangle(n0, a1, n1),
		v.NewTriangle(n0, n1, a2),
		v.NewTriangle(n0, a2, n2),
	}
}

// fabricateVertex appends a vertex interpolated between i0 and i1 across all
// attributes and returns its index.
func (v *View) fabricateVertex(i0, i1 int, rng random.Source) int {
	f := rng.Float32Range(midpointMin, midpointMax)
	v.positions = append(v.positions, v.positions[i0].Lerp(v.positions[i1], f))
	v.normals = append(v.normals, v.normals[i0].Lerp(v.normals[i1], f))
	v.uvs = append(v.uvs, v.uvs[i0].Lerp(v.uvs[i1], f))
	v.tangents = append(v.tangents, v.tangents[i0].Lerp(v.tangents[i1], f))
	return len(v.positions) - 1
}
