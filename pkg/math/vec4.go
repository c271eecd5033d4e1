package math

// Vec4 is a 4D vector. Tangents store handedness in W.
type Vec4 struct {
	X, Y, Z, W float32
}

// Lerp interpolates between v and other by t.
func (v Vec4) Lerp(other Vec4, t float32) Vec4 {
	return Vec4{
		Lerp(v.X, other.X, t),
		Lerp(v.Y, other.Y, t),
		Lerp(v.Z, other.Z, t),
		Lerp(v.W, other.W, t),
	}
}
