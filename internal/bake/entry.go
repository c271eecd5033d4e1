// Package bake precomputes decompositions in the background of a host's
// update loop and caches them for later scatter runs.
package bake

import (
	"fmt"

	"github.com/Faultbox/shatter/internal/mesh"
	"github.com/Faultbox/shatter/internal/shatter"
	"github.com/Faultbox/shatter/pkg/math"
)

// Method selects how far an entry is baked.
type Method int

// Bake methods.
const (
	// Geometry caches the fragment list only.
	Geometry Method = iota
	// Instances also materializes the fragments into scene instances.
	Instances
)

// String returns the method name used in configuration files.
func (m Method) String() string {
	if m == Instances {
		return "instances"
	}
	return "geometry"
}

// ParseMethod parses a method name.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "geometry":
		return Geometry, nil
	case "instances":
		return Instances, nil
	default:
		return Geometry, fmt.Errorf("unknown bake method %q", s)
	}
}

// State is the lifecycle state of an entry.
type State int

// Entry states.
const (
	Queued State = iota
	Decomposing
	Decomposed
	Materializing
	Done
	Aborted
)

var stateNames = [...]string{"queued", "decomposing", "decomposed", "materializing", "done", "aborted"}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// EntryOptions shape the fragments of a baked target.
type EntryOptions struct {
	Thickness          float32
	ThicknessDeviation float32
	DebrisAreaTarget   float32
	TargetPartCount    int
	Method             Method
}

// DefaultEntryOptions returns the stock bake options.
func DefaultEntryOptions() EntryOptions {
	return EntryOptions{
		Thickness:          0.3,
		ThicknessDeviation: 0.5,
		DebrisAreaTarget:   2,
		TargetPartCount:    50,
		Method:             Geometry,
	}
}

// Params converts the options to scatter parameters. The deviation is
// clamped to [0, 0.9] so thickness stays positive.
func (o EntryOptions) Params() shatter.Params {
	dev := math.Clamp(o.ThicknessDeviation, 0, 0.9)
	return shatter.Params{
		TargetPartCount: o.TargetPartCount,
		TargetArea:      o.DebrisAreaTarget,
		ThicknessMin:    o.Thickness * (1 - dev),
		ThicknessMax:    o.Thickness * (1 + dev),
	}
}

// Entry is one target waiting for, or holding, a baked decomposition.
// It implements shatter.BakeSource so a later scatter run can reuse it.
type Entry struct {
	req    *shatter.Request
	method Method
	state  State

	fragments       []shatter.Fragment
	count           int
	sourceTriangles int
	subdivisions    int
	materialized    bool
}

// NewEntry prepares target's mesh for baking. Baking never destroys the
// target or its mesh.
func NewEntry(target shatter.Target, src *mesh.Source, scale math.Vec3, opts EntryOptions) *Entry {
	return &Entry{
		req: &shatter.Request{
			Target:        target,
			Mesh:          src,
			Scale:         scale,
			Params:        opts.Params(),
			SkipBakeCheck: true,
		},
		method: opts.Method,
	}
}

// Request returns the decomposition request of the entry.
func (e *Entry) Request() *shatter.Request {
	return e.req
}

// Target returns the baked target.
func (e *Entry) Target() shatter.Target {
	return e.req.Target
}

// Method returns the bake method.
func (e *Entry) Method() Method {
	return e.method
}

// State returns the lifecycle state.
func (e *Entry) State() State {
	return e.state
}

// SourceTriangles returns the triangle count of the decomposed mesh.
func (e *Entry) SourceTriangles() int {
	return e.sourceTriangles
}

// Subdivisions returns the number of triangles split while baking.
func (e *Entry) Subdivisions() int {
	return e.subdivisions
}

// Release drops the cached fragments. The fragment count is kept.
func (e *Entry) Release() {
	e.fragments = nil
}

// BakeStatus implements shatter.BakeSource. Once the target is gone the
// cached fragments are released.
func (e *Entry) BakeStatus() shatter.BakeStatus {
	switch {
	case e.state == Aborted:
		return shatter.BakeAborted
	case !e.alive():
		e.Release()
		return shatter.BakeAborted
	case e.state != Done:
		return shatter.BakePending
	case e.materialized:
		return shatter.BakeMaterialized
	default:
		return shatter.BakeReady
	}
}

// Fragments implements shatter.BakeSource.
func (e *Entry) Fragments() []shatter.Fragment {
	return e.fragments
}

// FragmentCount implements shatter.BakeSource.
func (e *Entry) FragmentCount() int {
	return e.count
}

func (e *Entry) alive() bool {
	t := e.req.Target
	return t != nil && !t.Destroyed()
}
