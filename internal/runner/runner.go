// Package runner drives cooperative work in bounded wall-clock slices.
//
// Work is expressed as a Producer that advances one item per Step. The host
// calls Runner.Tick once per scheduling tick; Tick steps the producer until it
// is exhausted or the slice budget is spent, then returns so the host can get
// on with its frame. Nothing here blocks or spawns goroutines.
package runner

import "time"

// Status is the outcome of one Producer step.
type Status int

// Step outcomes.
const (
	// Progress means one item was produced and more may follow.
	Progress Status = iota
	// Wait means the producer cannot continue this tick and wants to be
	// resumed on the next one.
	Wait
	// Exhausted means the producer is finished. It is not stepped again.
	Exhausted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Progress:
		return "progress"
	case Wait:
		return "wait"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Producer is a resumable sequence of work items.
type Producer interface {
	Step() Status
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc func() Status

// Step implements Producer.
func (f ProducerFunc) Step() Status {
	return f()
}

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Runner steps a Producer within a per-tick time budget.
type Runner struct {
	producer Producer
	maxSlice time.Duration
	now      Clock

	done        bool
	ticks       int
	suspensions int
	steps       int
	active      time.Duration
	longest     time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock used to measure slices.
func WithClock(c Clock) Option {
	return func(r *Runner) {
		r.now = c
	}
}

// New creates a Runner for p. A maxSlice of zero runs p to completion within
// a single Tick (unless p itself asks to Wait).
func New(p Producer, maxSlice time.Duration, opts ...Option) *Runner {
	r := &Runner{
		producer: p,
		maxSlice: maxSlice,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tick runs one slice and reports whether the producer is finished.
// Calling Tick on a finished Runner is a no-op returning true.
func (r *Runner) Tick() bool {
	if r.done {
		return true
	}
	r.ticks++

	start := r.now()
	defer func() {
		slice := r.now().Sub(start)
		r.active += slice
		if slice > r.longest {
			r.longest = slice
		}
	}()

	for {
		switch r.producer.Step() {
		case Exhausted:
			r.done = true
			return true
		case Wait:
			r.suspensions++
			return false
		}
		r.steps++
		if r.maxSlice > 0 && r.now().Sub(start) > r.maxSlice {
			r.suspensions++
			return false
		}
	}
}

// RunToCompletion ticks until the producer is finished and returns the
// number of ticks it took. Only use this where blocking the caller is fine.
func (r *Runner) RunToCompletion() int {
	n := 0
	for !r.Tick() {
		n++
	}
	return n + 1
}

// Done reports whether the producer is finished.
func (r *Runner) Done() bool {
	return r.done
}

// Ticks returns how many times Tick did work.
func (r *Runner) Ticks() int {
	return r.ticks
}

// Suspensions returns how many times the runner yielded before finishing.
func (r *Runner) Suspensions() int {
	return r.suspensions
}

// Steps returns the number of items produced.
func (r *Runner) Steps() int {
	return r.steps
}

// ActiveTime returns the cumulative time spent inside Tick.
func (r *Runner) ActiveTime() time.Duration {
	return r.active
}

// LongestSlice returns the longest single Tick.
func (r *Runner) LongestSlice() time.Duration {
	return r.longest
}
