package shatter

import (
	"reflect"
	"testing"
	"time"

	"github.com/Faultbox/shatter/internal/mesh"
	"github.com/Faultbox/shatter/internal/random"
	"github.com/Faultbox/shatter/internal/runner"
	"github.com/Faultbox/shatter/pkg/math"
)

type constructed struct {
	target string
	index  int
	frag   Fragment
}

// fakeHost records everything a scatter run asks of the scene.
type fakeHost struct {
	built         []constructed
	meshDestroyed []string
	destroyed     []string

	// onConstruct runs after each construction, if set.
	onConstruct func(req *Request, index int)
}

func (h *fakeHost) Construct(req *Request, index int, f Fragment) {
	h.built = append(h.built, constructed{req.Target.Name(), index, f})
	if h.onConstruct != nil {
		h.onConstruct(req, index)
	}
}

func (h *fakeHost) DestroyMesh(req *Request) {
	h.meshDestroyed = append(h.meshDestroyed, req.Target.Name())
}

func (h *fakeHost) Destroy(t Target) {
	h.destroyed = append(h.destroyed, t.Name())
	t.(*fakeTarget).destroyed = true
}

// fakeBake is a BakeSource whose status the test controls.
type fakeBake struct {
	status    BakeStatus
	fragments []Fragment
	// readyAfter flips a pending bake to ready after this many polls.
	readyAfter int
}

func (b *fakeBake) BakeStatus() BakeStatus {
	if b.status == BakePending && b.readyAfter > 0 {
		b.readyAfter--
		if b.readyAfter == 0 {
			b.status = BakeReady
		}
		return BakePending
	}
	return b.status
}

func (b *fakeBake) Fragments() []Fragment { return b.fragments }
func (b *fakeBake) FragmentCount() int    { return len(b.fragments) }

// steppingClock advances by step every time it is read.
func steppingClock(step time.Duration) runner.Clock {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func runAll(t *testing.T, r *Run) int {
	t.Helper()
	for i := 1; i <= 10000; i++ {
		if r.Tick() {
			return i
		}
	}
	t.Fatal("scatter run did not finish")
	return 0
}

func TestScatterRun(t *testing.T) {
	host := &fakeHost{}
	box := &fakeTarget{name: "box"}
	red := &fakeTarget{name: "red", instr: RefuseInstruction{}}
	floor := &fakeTarget{name: "floor"}
	reqs := []*Request{
		{Target: box, Mesh: mesh.Cube(1), Params: Params{TargetPartCount: 4, TargetArea: 1}, DestroyOriginal: true},
		{Target: red, Mesh: mesh.Cube(1), DestroyOriginal: true},
		{Target: floor, Mesh: mesh.Plane(4, 4, 1), Params: Params{TargetArea: 2}, DestroySourceMesh: true},
	}

	var stats Stats
	called := false
	run := NewScatterer(NewDecomposer(DefaultParams(), random.New(11)), host, 0).Run(reqs, func(s Stats) {
		called = true
		stats = s
		if len(host.destroyed) != 0 {
			t.Error("targets destroyed before the done callback")
		}
	})

	if ticks := runAll(t, run); ticks != 1 {
		t.Errorf("expected a single tick without a slice budget, got %d", ticks)
	}
	if !called {
		t.Fatal("done callback not called")
	}

	if stats.SourceTriangles != 12+32 {
		t.Errorf("SourceTriangles = %d, want 44", stats.SourceTriangles)
	}
	if stats.Fragments != len(host.built) {
		t.Errorf("Fragments = %d, constructed %d", stats.Fragments, len(host.built))
	}
	tris := 0
	for _, c := range host.built {
		tris += c.frag.TriangleCount()
		if c.target == "red" {
			t.Error("refusing target was scattered")
		}
	}
	if stats.Triangles != tris {
		t.Errorf("Triangles = %d, want %d", stats.Triangles, tris)
	}

	// fragment indices restart at 1 for every request
	if host.built[0].index != 1 {
		t.Errorf("first fragment index = %d, want 1", host.built[0].index)
	}
	for i := 1; i < len(host.built); i++ {
		prev, cur := host.built[i-1], host.built[i]
		if cur.target == prev.target && cur.index != prev.index+1 {
			t.Errorf("fragment %d index %d follows %d", i, cur.index, prev.index)
		}
		if cur.target != prev.target && cur.index != 1 {
			t.Errorf("first fragment of %s has index %d", cur.target, cur.index)
		}
	}

	if !reflect.DeepEqual(host.destroyed, []string{"box"}) {
		t.Errorf("destroyed = %v, want [box]", host.destroyed)
	}
	if !reflect.DeepEqual(host.meshDestroyed, []string{"floor"}) {
		t.Errorf("mesh destroyed = %v, want [floor]", host.meshDestroyed)
	}
	if !box.Destroyed() || red.Destroyed() {
		t.Error("unexpected destroy state")
	}
}

func TestScatterRunSkipsDestroyedTarget(t *testing.T) {
	first := &fakeTarget{name: "first"}
	second := &fakeTarget{name: "second"}
	host := &fakeHost{}
	host.onConstruct = func(req *Request, index int) {
		if req.Target == first && index == 1 {
			first.destroyed = true
		}
	}

	reqs := []*Request{
		{Target: first, Mesh: mesh.Plane(4, 4, 1), Params: Params{TargetPartCount: 8, TargetArea: 1}, DestroyOriginal: true},
		{Target: second, Mesh: mesh.Cube(1), Params: Params{TargetPartCount: 3, TargetArea: 1}},
	}
	run := NewScatterer(NewDecomposer(DefaultParams(), random.New(2)), host, 0).Run(reqs, nil)
	runAll(t, run)

	firstCount, secondCount := 0, 0
	for _, c := range host.built {
		switch c.target {
		case "first":
			firstCount++
		case "second":
			secondCount++
		}
	}
	if firstCount != 1 {
		t.Errorf("destroyed target got %d fragments, want 1", firstCount)
	}
	if secondCount == 0 {
		t.Error("sibling request was not processed")
	}
	if len(host.destroyed) != 0 {
		t.Errorf("aborted request should not be destroyed again, got %v", host.destroyed)
	}
}

func TestScatterRunWaitsForBake(t *testing.T) {
	baked := NewDecomposer(DefaultParams(), random.New(4)).
		Decompose(request(mesh.Cube(1), Params{TargetPartCount: 3, TargetArea: 1})).Collect()
	bake := &fakeBake{status: BakePending, fragments: baked, readyAfter: 2}

	host := &fakeHost{}
	req := &Request{Target: &fakeTarget{name: "house"}, Mesh: mesh.Cube(1), Baked: bake}
	run := NewScatterer(NewDecomposer(DefaultParams(), random.New(4)), host, 0).Run([]*Request{req}, nil)

	ticks := runAll(t, run)
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3 (two waits)", ticks)
	}
	if run.Runner().Suspensions() != 2 {
		t.Errorf("suspensions = %d, want 2", run.Runner().Suspensions())
	}
	if len(host.built) != len(baked) {
		t.Fatalf("constructed %d fragments, want %d baked", len(host.built), len(baked))
	}
	for i, c := range host.built {
		if !reflect.DeepEqual(c.frag, baked[i]) {
			t.Errorf("fragment %d differs from the baked one", i)
		}
	}
	if run.Stats().SourceTriangles != 0 {
		t.Error("baked requests should not decompose")
	}
}

func TestScatterRunBakeStates(t *testing.T) {
	frags := []Fragment{{Triangles: make([]int, 24)}, {Triangles: make([]int, 24)}}
	tests := []struct {
		name       string
		status     BakeStatus
		skipCheck  bool
		built      int
		fragments  int
		decomposed bool
	}{
		{"materialized adopts instances", BakeMaterialized, false, 0, 2, false},
		{"ready constructs cached", BakeReady, false, 2, 2, false},
		{"aborted decomposes", BakeAborted, false, -1, -1, true},
		{"skip check decomposes", BakeReady, true, -1, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &fakeHost{}
			req := &Request{
				Target:        &fakeTarget{name: "house"},
				Mesh:          mesh.Cube(1),
				Params:        Params{TargetPartCount: 2, TargetArea: 3},
				Baked:         &fakeBake{status: tt.status, fragments: frags},
				SkipBakeCheck: tt.skipCheck,
			}
			run := NewScatterer(NewDecomposer(DefaultParams(), random.New(8)), host, 0).Run([]*Request{req}, nil)
			runAll(t, run)

			stats := run.Stats()
			if tt.decomposed {
				if stats.SourceTriangles != 12 {
					t.Errorf("expected a fresh decomposition, SourceTriangles = %d", stats.SourceTriangles)
				}
				if len(host.built) == 0 {
					t.Error("expected constructed fragments")
				}
				return
			}
			if len(host.built) != tt.built {
				t.Errorf("constructed %d, want %d", len(host.built), tt.built)
			}
			if stats.Fragments != tt.fragments {
				t.Errorf("Fragments = %d, want %d", stats.Fragments, tt.fragments)
			}
		})
	}
}

func TestSliceBudgetDoesNotChangeResults(t *testing.T) {
	build := func(maxSlice time.Duration) (*fakeHost, *Run) {
		host := &fakeHost{}
		reqs := []*Request{
			{Target: &fakeTarget{name: "a"}, Mesh: mesh.Plane(6, 6, 1), Params: Params{TargetPartCount: 10, TargetArea: 1}},
			{Target: &fakeTarget{name: "b"}, Mesh: mesh.Cube(2), Params: Params{TargetPartCount: 5, TargetArea: 1}},
		}
		s := NewScatterer(NewDecomposer(DefaultParams(), random.New(77)), host, maxSlice,
			runner.WithClock(steppingClock(time.Millisecond)))
		return host, s.Run(reqs, nil)
	}

	unbounded, runA := build(0)
	sliced, runB := build(3 * time.Millisecond)
	runAll(t, runA)
	ticks := runAll(t, runB)

	if runA.Runner().Suspensions() != 0 {
		t.Errorf("unbounded run suspended %d times", runA.Runner().Suspensions())
	}
	if ticks < 2 || runB.Runner().Suspensions() == 0 {
		t.Errorf("sliced run should suspend, got %d ticks", ticks)
	}
	if !reflect.DeepEqual(unbounded.built, sliced.built) {
		t.Error("slice budget changed the produced fragments")
	}
}

func TestScatterRunCountsSubdivisions(t *testing.T) {
	slab := func() *Request {
		return &Request{
			Target: &fakeTarget{name: "slab"},
			Mesh:   mesh.SingleTriangle(math.Vec3{}, math.Vec3{X: 5}, math.Vec3{Y: 2}),
			Params: Params{TargetArea: 1},
		}
	}

	seq := NewDecomposer(DefaultParams(), random.New(4)).Decompose(slab())
	seq.Collect()
	if seq.Subdivisions() == 0 {
		t.Fatal("expected the oversized triangle to be split")
	}

	var stats Stats
	run := NewScatterer(NewDecomposer(DefaultParams(), random.New(4)), &fakeHost{}, 0).Run([]*Request{slab()}, func(s Stats) {
		stats = s
	})
	runAll(t, run)

	if stats.Subdivisions != seq.Subdivisions() {
		t.Errorf("Subdivisions = %d, want %d", stats.Subdivisions, seq.Subdivisions())
	}
}
