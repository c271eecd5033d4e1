package shatter

import "github.com/Faultbox/shatter/internal/runner"

// Constructor turns fragments into live scene instances. index is the
// 1-based fragment number within the request, matching FragmentName.
type Constructor interface {
	Construct(req *Request, index int, f Fragment)
}

// Collector is a runner.Producer that drains a Sequence into a slice, one
// fragment per step.
type Collector struct {
	seq       *Sequence
	fragments []Fragment
}

// NewCollector returns a Collector over seq.
func NewCollector(seq *Sequence) *Collector {
	return &Collector{seq: seq}
}

// Step implements runner.Producer.
func (c *Collector) Step() runner.Status {
	f, ok := c.seq.Next()
	if !ok {
		return runner.Exhausted
	}
	c.fragments = append(c.fragments, f)
	return runner.Progress
}

// Fragments returns the fragments collected so far.
func (c *Collector) Fragments() []Fragment {
	return c.fragments
}

// ConstructAll returns a producer handing each fragment to c, one per step.
// onEach, if not nil, is called after every construction.
func ConstructAll(req *Request, fragments []Fragment, c Constructor, onEach func(Fragment)) runner.Producer {
	next := 0
	return runner.ProducerFunc(func() runner.Status {
		if next >= len(fragments) {
			return runner.Exhausted
		}
		f := fragments[next]
		next++
		c.Construct(req, next, f)
		if onEach != nil {
			onEach(f)
		}
		return runner.Progress
	})
}
