// Package mesh adapts raw source mesh data into the working set used by
// decomposition: scaled attribute tables, per-submesh triangle queues, and
// triangle subdivision.
package mesh

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/shatter/pkg/math"
)

// Source validation errors.
var (
	ErrNoPositions     = errors.New("mesh has no vertex positions")
	ErrNoSubmeshes     = errors.New("mesh has no submeshes")
	ErrPartialTriangle = errors.New("submesh index count is not a multiple of 3")
	ErrIndexOutOfRange = errors.New("triangle index out of range")
)

// Source is the raw, caller-owned mesh data. Normals, UVs and tangents may be
// shorter than Positions; missing entries read as zero. Each submesh is a flat
// list of triangle indices into the vertex arrays.
type Source struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Tangents  []math.Vec4
	Submeshes [][]int
}

// TriangleCount returns the number of triangles across all submeshes.
func (s *Source) TriangleCount() int {
	n := 0
	for _, sub := range s.Submeshes {
		n += len(sub) / 3
	}
	return n
}

// Validate reports every structural problem with the source. Decomposition
// assumes a source that passed validation.
func (s *Source) Validate() error {
	if s == nil || len(s.Positions) == 0 {
		return ErrNoPositions
	}
	if len(s.Submeshes) == 0 {
		return ErrNoSubmeshes
	}

	var err error
	for i, sub := range s.Submeshes {
		if len(sub)%3 != 0 {
			err = multierr.Append(err, fmt.Errorf("submesh %d: %w (%d indices)", i, ErrPartialTriangle, len(sub)))
		}
		for j, idx := range sub {
			if idx < 0 || idx >= len(s.Positions) {
				err = multierr.Append(err, fmt.Errorf("submesh %d index %d: %w (%d, %d vertices)",
					i, j, ErrIndexOutOfRange, idx, len(s.Positions)))
				break // one report per submesh is enough
			}
		}
	}
	return err
}
