package bake

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/internal/runner"
	"github.com/Faultbox/shatter/internal/shatter"
)

// DefaultSliceBudget is the per-tick time the queue may spend.
const DefaultSliceBudget = 15 * time.Millisecond

// Options configures a Queue.
type Options struct {
	// SliceBudget bounds the work done per Tick. Zero means DefaultSliceBudget.
	SliceBudget time.Duration
	// Clock overrides time.Now, for tests.
	Clock runner.Clock
	// OnStateChange, if set, observes every entry state transition.
	OnStateChange func(e *Entry, s State)
}

// Metrics describes how the queue has been scheduled so far.
type Metrics struct {
	Ticks        int
	Suspensions  int
	Fragments    int
	ActiveTime   time.Duration
	LongestSlice time.Duration
}

type phase int

const (
	phaseGeometry phase = iota
	phaseMaterialize
)

// Queue is a two-stage bake pipeline: entries are decomposed first and, if
// they ask for it, materialized afterwards. The host owns the queue and calls
// Tick once per update; the queue is not safe for concurrent use.
//
// The driver drains all pending geometry, then materializes at most one
// entry, then returns to geometry, so materialization never starves behind a
// long geometry backlog and a single tick stays within the slice budget.
type Queue struct {
	decomposer   *shatter.Decomposer
	materializer shatter.Constructor
	opts         Options
	log          *zap.Logger

	geometry    []*Entry
	materialize []*Entry

	driver    *runner.Runner
	phase     phase
	cur       *Entry
	seq       *shatter.Sequence
	collector *shatter.Collector
	build     runner.Producer

	metrics Metrics
}

// New creates an idle queue. materializer builds instances for entries baked
// with the Instances method and may be nil if no entry uses it.
func New(d *shatter.Decomposer, materializer shatter.Constructor, opts Options) *Queue {
	if opts.SliceBudget <= 0 {
		opts.SliceBudget = DefaultSliceBudget
	}
	return &Queue{
		decomposer:   d,
		materializer: materializer,
		opts:         opts,
		log:          logger.Named("bake"),
	}
}

// Enqueue adds e to the geometry stage and starts the driver if it is idle.
func (q *Queue) Enqueue(e *Entry) {
	q.setState(e, Queued)
	q.geometry = append(q.geometry, e)
	if q.driver != nil {
		return
	}

	var opts []runner.Option
	if q.opts.Clock != nil {
		opts = append(opts, runner.WithClock(q.opts.Clock))
	}
	q.phase = phaseGeometry
	q.driver = runner.New(runner.ProducerFunc(q.step), q.opts.SliceBudget, opts...)
}

// Tick runs one slice of the driver. It reports whether the queue is idle
// afterwards; ticking an idle queue does nothing.
func (q *Queue) Tick() bool {
	if q.driver == nil {
		return true
	}
	done := q.driver.Tick()
	q.collectMetrics(q.driver, done)
	if !done {
		return false
	}
	q.driver = nil
	q.log.Debug("bake queue idle",
		zap.Int("ticks", q.metrics.Ticks),
		zap.Duration("active", q.metrics.ActiveTime),
	)
	return true
}

// Running reports whether the driver is active.
func (q *Queue) Running() bool {
	return q.driver != nil
}

// Pending returns the lengths of the geometry and materialization lists.
func (q *Queue) Pending() (geometry, materialize int) {
	return len(q.geometry), len(q.materialize)
}

// Metrics returns scheduling metrics accumulated across driver runs.
func (q *Queue) Metrics() Metrics {
	return q.metrics
}

func (q *Queue) collectMetrics(r *runner.Runner, done bool) {
	q.metrics.Ticks++
	if !done {
		q.metrics.Suspensions++
	}
	if r.LongestSlice() > q.metrics.LongestSlice {
		q.metrics.LongestSlice = r.LongestSlice()
	}
	if done {
		q.metrics.ActiveTime += r.ActiveTime()
	}
}

// step is the driver's producer: one step is one fragment decomposed or one
// instance built.
func (q *Queue) step() runner.Status {
	for {
		switch q.phase {
		case phaseGeometry:
			if q.cur == nil {
				if len(q.geometry) == 0 {
					q.phase = phaseMaterialize
					continue
				}
				q.startGeometry(q.pop(&q.geometry))
				continue
			}
			if !q.cur.alive() {
				q.abort()
				continue
			}
			if q.collector.Step() == runner.Exhausted {
				q.finishGeometry()
				continue
			}
			q.metrics.Fragments++
			return runner.Progress

		case phaseMaterialize:
			if q.cur == nil {
				if len(q.materialize) == 0 {
					if len(q.geometry) == 0 {
						return runner.Exhausted
					}
					q.phase = phaseGeometry
					continue
				}
				q.startMaterialize(q.pop(&q.materialize))
				continue
			}
			if !q.cur.alive() {
				q.abort()
				q.phase = phaseGeometry
				continue
			}
			if q.build.Step() == runner.Exhausted {
				q.finishMaterialize()
				q.phase = phaseGeometry
				continue
			}
			return runner.Progress
		}
	}
}

func (q *Queue) pop(list *[]*Entry) *Entry {
	e := (*list)[0]
	(*list)[0] = nil
	*list = (*list)[1:]
	return e
}

func (q *Queue) startGeometry(e *Entry) {
	q.cur = e
	if !e.alive() {
		q.abort()
		return
	}
	q.setState(e, Decomposing)
	q.seq = q.decomposer.Decompose(e.req)
	e.sourceTriangles = q.seq.SourceTriangles()
	q.collector = shatter.NewCollector(q.seq)
}

func (q *Queue) finishGeometry() {
	e := q.cur
	e.fragments = q.collector.Fragments()
	e.count = len(e.fragments)
	e.subdivisions = q.seq.Subdivisions()
	q.cur, q.seq, q.collector = nil, nil, nil

	q.setState(e, Decomposed)
	q.log.Debug("geometry baked",
		zap.String("target", e.req.Target.Name()),
		zap.Int("source_triangles", e.sourceTriangles),
		zap.Int("fragments", e.count),
		zap.Int("subdivisions", e.subdivisions),
	)
	if e.method == Instances {
		if q.materializer != nil {
			q.materialize = append(q.materialize, e)
			return
		}
		// Without a materializer the cached fragments are the result.
		q.log.Warn("no materializer, keeping baked geometry",
			zap.String("target", e.req.Target.Name()))
		e.method = Geometry
	}
	q.setState(e, Done)
}

func (q *Queue) startMaterialize(e *Entry) {
	q.cur = e
	q.setState(e, Materializing)
	q.build = shatter.ConstructAll(e.req, e.fragments, q.materializer, nil)
}

// finishMaterialize releases the cached fragments; the instances own the
// geometry from here on.
func (q *Queue) finishMaterialize() {
	e := q.cur
	q.cur, q.build = nil, nil
	e.fragments = nil
	e.materialized = true
	q.setState(e, Done)
	q.log.Debug("instances baked",
		zap.String("target", e.req.Target.Name()),
		zap.Int("fragments", e.count),
	)
}

// abort drops the current entry because its target is gone.
func (q *Queue) abort() {
	e := q.cur
	q.cur, q.seq, q.collector, q.build = nil, nil, nil, nil
	e.fragments = nil
	q.setState(e, Aborted)
	name := "<nil>"
	if e.req.Target != nil {
		name = e.req.Target.Name()
	}
	q.log.Debug("bake aborted, target destroyed", zap.String("target", name))
}

func (q *Queue) setState(e *Entry, s State) {
	e.state = s
	if q.opts.OnStateChange != nil {
		q.opts.OnStateChange(e, s)
	}
}
