// Package shatter decomposes a surface mesh into closed-shell fragments that
// look like shattered debris.
//
// A Decomposer turns a Request into a Sequence. Each call to Sequence.Next
// grows one contiguous patch of triangles under an area budget, subdividing
// triangles that are too large, and extrudes the patch into a Fragment with a
// front face, a mirrored back face and side walls along the patch boundary.
// Sequences are pull-based so a host can spread the work over many frames
// with the runner package.
package shatter

// Params controls the size and thickness of fragments.
type Params struct {
	// TargetPartCount is the number of fragments to aim for. Depending on
	// TargetArea the result may be much larger.
	TargetPartCount int `yaml:"target_part_count"`
	// TargetArea is the approximate front-face area of one fragment.
	TargetArea float32 `yaml:"target_area"`
	// ThicknessMin and ThicknessMax bound the random extrusion depth.
	ThicknessMin float32 `yaml:"thickness_min"`
	ThicknessMax float32 `yaml:"thickness_max"`
}

// DefaultParams returns the stock scatter parameters.
func DefaultParams() Params {
	return Params{
		TargetPartCount: 50,
		TargetArea:      0.4,
		ThicknessMin:    0.3,
		ThicknessMax:    0.35,
	}
}

// Merge returns p with every zero field replaced by the value from fallback.
func (p Params) Merge(fallback Params) Params {
	if p.TargetPartCount == 0 {
		p.TargetPartCount = fallback.TargetPartCount
	}
	if p.TargetArea == 0 {
		p.TargetArea = fallback.TargetArea
	}
	if p.ThicknessMin == 0 {
		p.ThicknessMin = fallback.ThicknessMin
	}
	if p.ThicknessMax == 0 {
		p.ThicknessMax = fallback.ThicknessMax
	}
	return p
}

// normalized makes p safe to decompose with. A non-positive area would
// subdivide forever.
func (p Params) normalized() Params {
	def := DefaultParams()
	if p.TargetPartCount <= 0 {
		p.TargetPartCount = def.TargetPartCount
	}
	if p.TargetArea <= 0 {
		p.TargetArea = def.TargetArea
	}
	if p.ThicknessMax < p.ThicknessMin {
		p.ThicknessMax = p.ThicknessMin
	}
	return p
}
