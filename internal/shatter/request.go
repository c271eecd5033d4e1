package shatter

import (
	"github.com/Faultbox/shatter/internal/mesh"
	"github.com/Faultbox/shatter/pkg/math"
)

// Request asks for one target's mesh to be scattered. The core never
// modifies Mesh.
type Request struct {
	Target Target
	Mesh   *mesh.Source
	// Scale converts mesh units to world units. Zero means (1, 1, 1).
	Scale math.Vec3
	// Params overrides the decomposer's defaults; zero fields are ignored.
	Params Params

	// DestroyOriginal destroys the target once its fragments exist.
	DestroyOriginal bool
	// DestroySourceMesh releases the target's mesh asset afterwards.
	DestroySourceMesh bool
	// SkipBakeCheck always decomposes, ignoring Baked.
	SkipBakeCheck bool
	// Baked is a precomputed decomposition of the same target, if any.
	Baked BakeSource
}

// BakeStatus is the availability of a precomputed decomposition.
type BakeStatus int

// Bake states as seen by a scatter run.
const (
	// BakePending means the fragments are not computed yet.
	BakePending BakeStatus = iota
	// BakeReady means the fragments are cached and may be constructed.
	BakeReady
	// BakeMaterialized means instances were already built from the fragments.
	BakeMaterialized
	// BakeAborted means the bake was dropped and will never complete.
	BakeAborted
)

// BakeSource exposes a precomputed decomposition.
type BakeSource interface {
	BakeStatus() BakeStatus
	// Fragments returns the cached fragments once ready.
	Fragments() []Fragment
	// FragmentCount returns the number of fragments produced, even after the
	// cached list has been released.
	FragmentCount() int
}
