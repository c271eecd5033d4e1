package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// One2 is the vector (1, 1).
var One2 = Vec2{1, 1}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Lerp interpolates between v and other by t.
func (v Vec2) Lerp(other Vec2, t float32) Vec2 {
	return Vec2{Lerp(v.X, other.X, t), Lerp(v.Y, other.Y, t)}
}
