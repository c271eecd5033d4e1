package shatter

import (
	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/internal/mesh"
	"github.com/Faultbox/shatter/internal/random"
)

// Decomposer creates decomposition sequences. It is not safe for concurrent
// use; all sequences share its random source.
type Decomposer struct {
	defaults Params
	rng      random.Source
	log      *zap.Logger
}

// NewDecomposer returns a Decomposer using defaults for any parameter a
// request leaves zero.
func NewDecomposer(defaults Params, rng random.Source) *Decomposer {
	return &Decomposer{
		defaults: defaults.Merge(DefaultParams()),
		rng:      rng,
		log:      logger.Named("decompose"),
	}
}

// Defaults returns the decomposer's default parameters.
func (d *Decomposer) Defaults() Params {
	return d.defaults
}

// Decompose returns the fragment sequence for req. Nothing is computed until
// Next is called. Requests without a live target, for targets that are
// already scattered, or whose target refuses to be scattered yield an empty
// sequence.
func (d *Decomposer) Decompose(req *Request) *Sequence {
	s := &Sequence{}
	if req == nil || !alive(req.Target) || req.Mesh == nil {
		s.done = true
		return s
	}
	name := req.Target.Name()
	if IsScattered(name) {
		d.log.Debug("target already scattered", zap.String("target", name))
		s.done = true
		return s
	}

	params := req.Params.Merge(d.defaults)
	switch instr := ResolveInstruction(req.Target).(type) {
	case RefuseInstruction:
		d.log.Debug("target refuses to be scattered", zap.String("target", name))
		s.done = true
		return s
	case CustomInstruction:
		params = instr.Params.Merge(params)
	}
	params = params.normalized()

	s.view = mesh.NewView(req.Mesh, req.Scale)
	s.params = params
	s.rng = d.rng
	s.log = d.log
	s.maxTris = max(2, s.view.TotalTriangles()/params.TargetPartCount)
	s.builder = patchBuilder{view: s.view, rng: d.rng, targetArea: params.TargetArea}
	return s
}

// Sequence lazily produces the fragments of one request, submesh by submesh
// in source order. It is single-use: once Next reports false it stays
// exhausted.
type Sequence struct {
	view    *mesh.View
	params  Params
	rng     random.Source
	log     *zap.Logger
	builder patchBuilder

	submesh int
	maxTris int
	emitted int
	done    bool
}

// Next returns the next fragment, or false once every submesh is exhausted.
func (s *Sequence) Next() (Fragment, bool) {
	if s.done {
		return Fragment{}, false
	}

	for s.submesh < s.view.SubmeshCount() {
		q := s.view.Queue(s.submesh)
		if q.Empty() {
			s.submesh++
			continue
		}

		p := s.builder.extract(q, s.maxTris)
		if len(p.triangles) == 0 {
			continue
		}

		thickness := s.rng.Float32Range(s.params.ThicknessMin, s.params.ThicknessMax)
		s.emitted++
		return extrude(p, s.submesh, thickness), true
	}

	s.done = true
	s.log.Debug("decomposition finished",
		zap.Int("source_triangles", s.view.TotalTriangles()),
		zap.Int("fragments", s.emitted),
		zap.Int("subdivisions", s.builder.subdivisions),
	)
	return Fragment{}, false
}

// Collect drains the sequence and returns the remaining fragments.
func (s *Sequence) Collect() []Fragment {
	var out []Fragment
	for {
		f, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, f)
	}
}

// Done reports whether the sequence is exhausted.
func (s *Sequence) Done() bool {
	return s.done
}

// Empty reports whether the sequence was a no-op from the start.
func (s *Sequence) Empty() bool {
	return s.view == nil
}

// SourceTriangles returns the triangle count of the source mesh.
func (s *Sequence) SourceTriangles() int {
	if s.view == nil {
		return 0
	}
	return s.view.TotalTriangles()
}

// Emitted returns the number of fragments produced so far.
func (s *Sequence) Emitted() int {
	return s.emitted
}

// Subdivisions returns the number of triangles split so far.
func (s *Sequence) Subdivisions() int {
	return s.builder.subdivisions
}

// Params returns the resolved parameters of a non-empty sequence.
func (s *Sequence) Params() Params {
	return s.params
}
