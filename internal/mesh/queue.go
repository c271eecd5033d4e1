package mesh

// Tier identifies which FIFO of a TriangleQueue a triangle came from.
type Tier int

// Queue tiers.
const (
	Primary Tier = iota
	Priority
)

// String returns the tier name.
func (t Tier) String() string {
	if t == Priority {
		return "priority"
	}
	return "primary"
}

// fifo is a slice-backed FIFO that reuses its storage once drained.
type fifo struct {
	items []Triangle
	head  int
}

func (f *fifo) len() int {
	return len(f.items) - f.head
}

func (f *fifo) push(t Triangle) {
	f.items = append(f.items, t)
}

func (f *fifo) pop() Triangle {
	t := f.items[f.head]
	f.head++
	switch {
	case f.head == len(f.items):
		f.items = f.items[:0]
		f.head = 0
	case f.head >= 64 && f.head*2 >= len(f.items):
		n := copy(f.items, f.items[f.head:])
		f.items = f.items[:n]
		f.head = 0
	}
	return t
}

// TriangleQueue is the working set of one submesh. Triangles on the priority
// tier are always dequeued before any on the primary tier.
type TriangleQueue struct {
	primary  fifo
	priority fifo
}

// Len returns the number of queued triangles across both tiers.
func (q *TriangleQueue) Len() int {
	return q.primary.len() + q.priority.len()
}

// Empty reports whether both tiers are empty.
func (q *TriangleQueue) Empty() bool {
	return q.Len() == 0
}

// PriorityLen returns the number of triangles on the priority tier.
func (q *TriangleQueue) PriorityLen() int {
	return q.priority.len()
}

// Enqueue appends t to the primary tier.
func (q *TriangleQueue) Enqueue(t Triangle) {
	q.primary.push(t)
}

// PushPriority appends triangles, in order, to the priority tier.
func (q *TriangleQueue) PushPriority(tris ...Triangle) {
	for _, t := range tris {
		q.priority.push(t)
	}
}

// Requeue appends t to the back of the given tier.
func (q *TriangleQueue) Requeue(t Triangle, tier Tier) {
	if tier == Priority {
		q.priority.push(t)
		return
	}
	q.primary.push(t)
}

// Dequeue removes the next triangle, preferring the priority tier.
// ok is false when the queue is empty.
func (q *TriangleQueue) Dequeue() (t Triangle, tier Tier, ok bool) {
	if q.priority.len() > 0 {
		return q.priority.pop(), Priority, true
	}
	if q.primary.len() > 0 {
		return q.primary.pop(), Primary, true
	}
	return Triangle{}, Primary, false
}
