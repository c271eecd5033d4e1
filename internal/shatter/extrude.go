package shatter

import (
	"slices"

	"github.com/Faultbox/shatter/pkg/math"
)

// backContraction pulls back vertices towards the back midpoint so they
// don't z-fight with perpendicular neighbouring fragments.
const backContraction = 0.2

// extrude turns a flat patch into a closed shell: the front face, a mirrored
// back face pushed thickness units against the average normal, and two
// triangles for every boundary edge.
func extrude(p *patch, submesh int, thickness float32) Fragment {
	var normal, centroid math.Vec3
	for _, t := range p.triangles {
		centroid = centroid.
			Add(p.vertices[t.i0].Position).
			Add(p.vertices[t.i1].Position).
			Add(p.vertices[t.i2].Position)
		normal = normal.Add(t.cross)
	}

	back := normal.Normalize().Scale(-thickness)
	backMid := centroid.Scale(1 / float32(3*len(p.triangles))).Add(back)

	n := len(p.vertices)
	f := Fragment{
		Submesh:        submesh,
		Positions:      make([]math.Vec3, 2*n),
		Normals:        make([]math.Vec3, 2*n),
		UVs:            make([]math.Vec2, 2*n),
		Tangents:       make([]math.Vec4, 2*n),
		FrontVertices:  n,
		FrontTriangles: len(p.triangles),
	}
	for k, v := range p.vertices {
		f.Positions[k] = v.Position
		f.Normals[k] = v.Normal
		f.UVs[k] = v.UV
		f.Tangents[k] = v.Tangent

		f.Positions[n+k] = v.Position.Add(back).Lerp(backMid, backContraction)
		f.Normals[n+k] = v.Normal.Neg()
		f.UVs[n+k] = math.One2.Sub(v.UV)
		f.Tangents[n+k] = v.Tangent
	}

	// front + back + at most three walls of two triangles each
	f.Triangles = make([]int, 0, 3*8*len(p.triangles))
	for _, t := range p.triangles {
		f.Triangles = append(f.Triangles, t.i0, t.i1, t.i2)
	}
	for ti, t := range p.triangles {
		f.Triangles = append(f.Triangles, t.i0+n, t.i2+n, t.i1+n)
		f.sideWall(p, ti, t.i0, t.i1)
		f.sideWall(p, ti, t.i1, t.i2)
		f.sideWall(p, ti, t.i2, t.i0)
	}
	return f
}

// sideWall adds a quad between front edge (a, b) of triangle ti and its back
// twin, unless the edge is interior to the patch.
func (f *Fragment) sideWall(p *patch, ti, a, b int) {
	if p.interiorEdge(ti, a, b) {
		return
	}
	n := f.FrontVertices
	f.Triangles = append(f.Triangles,
		a, a+n, b,
		a+n, b+n, b,
	)
	f.BoundaryEdges++
}

// interiorEdge reports whether some triangle other than ti uses both a and b.
func (p *patch) interiorEdge(ti, a, b int) bool {
	tb := p.vertices[b].tris
	for _, x := range p.vertices[a].tris {
		if x != ti && slices.Contains(tb, x) {
			return true
		}
	}
	return false
}
