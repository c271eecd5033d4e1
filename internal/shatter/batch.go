package shatter

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/internal/runner"
)

// Host is the scene side of a scatter run.
type Host interface {
	Constructor
	// DestroyMesh releases the mesh asset of req's target.
	DestroyMesh(req *Request)
	// Destroy removes the target from the scene.
	Destroy(t Target)
}

// Stats summarizes a scatter run.
type Stats struct {
	SourceTriangles int
	Fragments       int
	Triangles       int
	// Subdivisions counts triangles split for being larger than the
	// target area. Fragments constructed from a bake don't add to it.
	Subdivisions int
	// RunningTime is the time spent working, excluding suspended ticks.
	RunningTime time.Duration
}

// Scatterer runs batches of requests against a host.
type Scatterer struct {
	decomposer *Decomposer
	host       Host
	maxSlice   time.Duration
	opts       []runner.Option
	log        *zap.Logger
}

// NewScatterer returns a Scatterer that spends at most maxSlice per tick
// (zero for no limit).
func NewScatterer(d *Decomposer, host Host, maxSlice time.Duration, opts ...runner.Option) *Scatterer {
	return &Scatterer{
		decomposer: d,
		host:       host,
		maxSlice:   maxSlice,
		opts:       opts,
		log:        logger.Named("scatter"),
	}
}

// Run prepares a scatter run over reqs. Nothing happens until the host ticks
// the returned Run. done, if not nil, receives the stats once every request
// has been handled, before targets marked DestroyOriginal are destroyed.
func (s *Scatterer) Run(reqs []*Request, done func(Stats)) *Run {
	b := &batch{decomposer: s.decomposer, host: s.host, reqs: reqs, log: s.log}
	return &Run{
		batch:  b,
		runner: runner.New(b, s.maxSlice, s.opts...),
		done:   done,
	}
}

// Run is an in-progress scatter run.
type Run struct {
	batch    *batch
	runner   *runner.Runner
	done     func(Stats)
	finished bool
}

// Tick advances the run by one slice and reports whether it is finished.
func (r *Run) Tick() bool {
	if r.finished {
		return true
	}
	if !r.runner.Tick() {
		return false
	}
	r.finished = true

	stats := r.Stats()
	r.batch.log.Info("scatter finished",
		zap.Int("requests", len(r.batch.reqs)),
		zap.Int("source_triangles", stats.SourceTriangles),
		zap.Int("fragments", stats.Fragments),
		zap.Int("triangles", stats.Triangles),
		zap.Int("subdivisions", stats.Subdivisions),
		zap.Duration("running_time", stats.RunningTime),
		zap.Int("suspensions", r.runner.Suspensions()),
	)
	if r.done != nil {
		r.done(stats)
	}
	for _, t := range r.batch.destroy {
		if alive(t) {
			r.batch.host.Destroy(t)
		}
	}
	return true
}

// Stats returns the stats accumulated so far.
func (r *Run) Stats() Stats {
	stats := r.batch.stats
	stats.RunningTime = r.runner.ActiveTime()
	return stats
}

// Runner exposes the underlying runner for scheduling metrics.
func (r *Run) Runner() *runner.Runner {
	return r.runner
}

type phase int

const (
	phaseWaitBake phase = iota
	phaseDecompose
	phaseConstruct
)

// current is the request being worked on.
type current struct {
	req       *Request
	phase     phase
	seq       *Sequence
	fragments []Fragment
	pos       int
	built     int
}

// batch is the producer behind a Run: one step constructs one fragment.
type batch struct {
	decomposer *Decomposer
	host       Host
	reqs       []*Request
	log        *zap.Logger

	next    int
	cur     *current
	stats   Stats
	destroy []Target
}

// Step implements runner.Producer.
func (b *batch) Step() runner.Status {
	for {
		if b.cur == nil {
			if b.next >= len(b.reqs) {
				return runner.Exhausted
			}
			b.begin(b.reqs[b.next])
			b.next++
			continue
		}

		c := b.cur
		if !alive(c.req.Target) {
			b.log.Debug("target destroyed mid-scatter", zap.Int("request", b.next-1))
			b.cur = nil
			continue
		}

		switch c.phase {
		case phaseWaitBake:
			switch c.req.Baked.BakeStatus() {
			case BakePending:
				return runner.Wait
			case BakeReady:
				c.fragments = c.req.Baked.Fragments()
				c.phase = phaseConstruct
			case BakeMaterialized:
				b.stats.Fragments += c.req.Baked.FragmentCount()
				b.finish()
			case BakeAborted:
				b.decompose(c)
			}

		case phaseDecompose:
			f, ok := c.seq.Next()
			if !ok {
				b.finish()
				continue
			}
			b.construct(c, f)
			return runner.Progress

		case phaseConstruct:
			if c.pos >= len(c.fragments) {
				b.finish()
				continue
			}
			f := c.fragments[c.pos]
			c.pos++
			b.construct(c, f)
			return runner.Progress
		}
	}
}

func (b *batch) begin(req *Request) {
	if req == nil || !Scatterable(req.Target) {
		return
	}
	c := &current{req: req}
	b.cur = c
	if !req.SkipBakeCheck && req.Baked != nil {
		c.phase = phaseWaitBake
		return
	}
	b.decompose(c)
}

func (b *batch) decompose(c *current) {
	c.seq = b.decomposer.Decompose(c.req)
	c.phase = phaseDecompose
	b.stats.SourceTriangles += c.seq.SourceTriangles()
}

func (b *batch) construct(c *current, f Fragment) {
	c.built++
	b.host.Construct(c.req, c.built, f)
	b.stats.Fragments++
	b.stats.Triangles += f.TriangleCount()
}

// finish applies the request's destroy flags and moves on.
func (b *batch) finish() {
	req := b.cur.req
	if b.cur.seq != nil {
		b.stats.Subdivisions += b.cur.seq.Subdivisions()
	}
	b.cur = nil
	if req.DestroySourceMesh {
		b.host.DestroyMesh(req)
	}
	if req.DestroyOriginal {
		b.destroy = append(b.destroy, req.Target)
	}
}
