package shatter

import (
	"github.com/Faultbox/shatter/internal/mesh"
	"github.com/Faultbox/shatter/internal/random"
	"github.com/Faultbox/shatter/pkg/math"
)

// patchVertex is a deduplicated source vertex plus the patch-local triangles
// that reference it.
type patchVertex struct {
	mesh.Vertex
	tris []int
}

// patchTriangle indexes patch vertices.
type patchTriangle struct {
	i0, i1, i2 int
	cross      math.Vec3
}

// patch is a contiguous group of triangles destined to become one fragment.
type patch struct {
	vertices  []patchVertex
	triangles []patchTriangle
	lookup    map[int]int
	area      float32
}

func newPatch() *patch {
	return &patch{lookup: make(map[int]int)}
}

// vertexFor maps a source vertex index to its patch-local index.
func (p *patch) vertexFor(view *mesh.View, src int) int {
	if i, ok := p.lookup[src]; ok {
		return i
	}
	i := len(p.vertices)
	p.lookup[src] = i
	p.vertices = append(p.vertices, patchVertex{Vertex: view.Vertex(src)})
	return i
}

// add appends t to the patch.
func (p *patch) add(view *mesh.View, t mesh.Triangle) {
	ti := len(p.triangles)
	i0 := p.vertexFor(view, t.I0)
	i1 := p.vertexFor(view, t.I1)
	i2 := p.vertexFor(view, t.I2)
	p.vertices[i0].tris = append(p.vertices[i0].tris, ti)
	p.vertices[i1].tris = append(p.vertices[i1].tris, ti)
	p.vertices[i2].tris = append(p.vertices[i2].tris, ti)
	p.triangles = append(p.triangles, patchTriangle{i0: i0, i1: i1, i2: i2, cross: t.Cross})
}

// patchBuilder grows patches out of one view's triangle queues.
type patchBuilder struct {
	view       *mesh.View
	rng        random.Source
	targetArea float32

	// subdivisions counts triangles split for being larger than targetArea.
	subdivisions int
}

// extract grows one patch from q, which must not be empty.
//
// Every triangle accepted after the first must share a world position with
// one already accepted; candidates that don't are sent to the back of their
// tier, at most quota/2 times. Growth stops when the quota is met or the
// accumulated area exceeds targetArea.
//
// A triangle larger than targetArea is subdivided and the patch is
// abandoned: an empty patch is returned and the triangles it had accepted go
// back onto the priority tier behind the four children.
func (b *patchBuilder) extract(q *mesh.TriangleQueue, maxTris int) *patch {
	quota := min(q.Len(), b.rng.IntRange(maxTris-1, maxTris+1))
	retries := quota / 2

	p := newPatch()
	used := make(map[math.Vec3]struct{}, 3*quota)
	var accepted []mesh.Triangle

	for len(p.triangles) < quota && retries >= 0 {
		t, tier, ok := q.Dequeue()
		if !ok {
			break
		}

		p0 := b.view.Position(t.I0)
		p1 := b.view.Position(t.I1)
		p2 := b.view.Position(t.I2)
		if len(used) > 0 && !touches(used, p0, p1, p2) {
			q.Requeue(t, tier)
			retries--
			continue
		}

		area := t.Area()
		if area > b.targetArea {
			b.view.Subdivide(t, q, b.rng)
			b.subdivisions++
			q.PushPriority(accepted...)
			return newPatch()
		}

		p.add(b.view, t)
		accepted = append(accepted, t)
		used[p0] = struct{}{}
		used[p1] = struct{}{}
		used[p2] = struct{}{}

		p.area += area
		if p.area > b.targetArea {
			break
		}
	}
	return p
}

func touches(used map[math.Vec3]struct{}, ps ...math.Vec3) bool {
	for _, p := range ps {
		if _, ok := used[p]; ok {
			return true
		}
	}
	return false
}
