package mesh

import "github.com/Faultbox/shatter/pkg/math"

// SingleTriangle returns a one-submesh source holding a single triangle with
// a +Z normal.
func SingleTriangle(p0, p1, p2 math.Vec3) *Source {
	n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	return &Source{
		Positions: []math.Vec3{p0, p1, p2},
		Normals:   []math.Vec3{n, n, n},
		UVs:       []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
		Submeshes: [][]int{{0, 1, 2}},
	}
}

// Plane returns a flat grid of cols x rows quads in the XY plane facing +Z,
// with shared vertices. Each quad is split along its diagonal.
func Plane(cols, rows int, cell float32) *Source {
	src := &Source{}
	for y := 0; y <= rows; y++ {
		for x := 0; x <= cols; x++ {
			src.Positions = append(src.Positions, math.Vec3{X: float32(x) * cell, Y: float32(y) * cell})
			src.Normals = append(src.Normals, math.Vec3{Z: 1})
			src.UVs = append(src.UVs, math.Vec2{X: float32(x) / float32(cols), Y: float32(y) / float32(rows)})
			src.Tangents = append(src.Tangents, math.Vec4{X: 1, W: 1})
		}
	}

	stride := cols + 1
	var tris []int
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := y*stride + x
			tris = append(tris, i, i+1, i+stride+1, i, i+stride+1, i+stride)
		}
	}
	src.Submeshes = [][]int{tris}
	return src
}

// cubeFaces lists each face as (normal, u, v) with u x v = normal.
// Every face after the first shares an edge with an earlier one.
var cubeFaces = [6][3]math.Vec3{
	{{X: 1}, {Y: 1}, {Z: 1}},
	{{Y: 1}, {Z: 1}, {X: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {Y: 1}, {X: 1}},
}

// Cube returns an axis-aligned cube centred on the origin with 24 vertices
// (four per face, for flat normals) and 12 outward-facing triangles, each
// face split along one diagonal.
func Cube(size float32) *Source {
	h := size / 2
	src := &Source{}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	var tris []int
	for _, f := range cubeFaces {
		n, u, v := f[0], f[1], f[2]
		base := len(src.Positions)
		for k, c := range corners {
			p := n.Add(u.Scale(c[0])).Add(v.Scale(c[1])).Scale(h)
			src.Positions = append(src.Positions, p)
			src.Normals = append(src.Normals, n)
			src.UVs = append(src.UVs, uvs[k])
			src.Tangents = append(src.Tangents, math.Vec4{X: u.X, Y: u.Y, Z: u.Z, W: 1})
		}
		tris = append(tris, base, base+1, base+2, base, base+2, base+3)
	}
	src.Submeshes = [][]int{tris}
	return src
}
