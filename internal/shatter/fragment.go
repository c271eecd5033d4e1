package shatter

import "github.com/Faultbox/shatter/pkg/math"

// Fragment is one closed-shell piece of debris. Vertices are the front
// vertices followed by their back twins. Triangles holds FrontTriangles front
// triangles first, then for every front triangle its mirrored back triangle
// followed by its side-wall quads.
type Fragment struct {
	Submesh int

	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Tangents  []math.Vec4
	Triangles []int

	FrontVertices  int
	FrontTriangles int
	BoundaryEdges  int
}

// VertexCount returns the total number of vertices.
func (f *Fragment) VertexCount() int {
	return len(f.Positions)
}

// TriangleCount returns the total number of triangles.
func (f *Fragment) TriangleCount() int {
	return len(f.Triangles) / 3
}

// Triangle returns the vertex indices of triangle i.
func (f *Fragment) Triangle(i int) [3]int {
	return [3]int{f.Triangles[3*i], f.Triangles[3*i+1], f.Triangles[3*i+2]}
}

// FrontArea returns the area of the front face.
func (f *Fragment) FrontArea() float32 {
	var area float32
	for i := 0; i < f.FrontTriangles; i++ {
		t := f.Triangle(i)
		p0 := f.Positions[t[0]]
		area += f.Positions[t[1]].Sub(p0).Cross(f.Positions[t[2]].Sub(p0)).Length() / 2
	}
	return area
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (f *Fragment) Bounds() (lo, hi math.Vec3) {
	if len(f.Positions) == 0 {
		return lo, hi
	}
	lo, hi = f.Positions[0], f.Positions[0]
	for _, p := range f.Positions[1:] {
		lo = math.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = math.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}
