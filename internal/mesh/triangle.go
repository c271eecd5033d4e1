package mesh

import "github.com/Faultbox/shatter/pkg/math"

// Vertex is the full attribute set of one vertex.
type Vertex struct {
	Position math.Vec3
	UV       math.Vec2
	Normal   math.Vec3
	Tangent  math.Vec4
}

// Triangle references three vertices of a View and caches the front-facing
// edge cross product (p1-p0)x(p2-p0).
type Triangle struct {
	I0, I1, I2 int
	Cross      math.Vec3
}

// Area returns the triangle's area.
func (t Triangle) Area() float32 {
	return t.Cross.Length() / 2
}

// Indices returns the three vertex indices in winding order.
func (t Triangle) Indices() [3]int {
	return [3]int{t.I0, t.I1, t.I2}
}
