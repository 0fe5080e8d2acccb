package trail

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/dynamo"
)

type bodies map[dynamo.Handle]*dynamo.Body

func (b bodies) Body(h dynamo.Handle) *dynamo.Body { return b[h] }

func newBodies(n int) bodies {
	out := bodies{}
	for i := 0; i < n; i++ {
		b := dynamo.NewBody(1, nil)
		b.Position = mgl64.Vec3{float64(i), 0, 0}
		out[dynamo.Handle(i)] = b
	}
	return out
}

func quiet() *log.Logger { return log.New(io.Discard) }

func newTrail(t *testing.T, src bodies, k, s int) *Trail {
	t.Helper()
	tr := New(src, Options{StepsPerObject: s, Logger: quiet()})
	for i := 0; i < k; i++ {
		if err := tr.Track(dynamo.Handle(i)); err != nil {
			t.Fatalf("track %d: %v", i, err)
		}
	}
	tr.BuildMesh()
	return tr
}

func TestVisibleCountSaturates(t *testing.T) {
	tests := []struct {
		k, s, steps int
	}{
		{1, 1, 5},
		{3, 2, 1},
		{3, 2, 2},
		{3, 2, 7},
		{12, 240, 300},
		{5, 10, 9},
	}

	for _, tt := range tests {
		tr := newTrail(t, newBodies(tt.k), tt.k, tt.s)
		if tr.Capacity() != tt.k*tt.s {
			t.Fatalf("expected capacity %d, got %d", tt.k*tt.s, tr.Capacity())
		}
		for n := 1; n <= tt.steps; n++ {
			tr.PhysicsStepped(1.0 / 60)
			want := min(n*tt.k, tt.k*tt.s)
			if tr.VisibleCount() != want {
				t.Fatalf("k=%d s=%d after %d steps: expected visible %d, got %d", tt.k, tt.s, n, want, tr.VisibleCount())
			}
			if tr.Cursor() < 0 || tr.Cursor() >= tr.Capacity() {
				t.Fatalf("cursor %d outside [0, %d)", tr.Cursor(), tr.Capacity())
			}
		}
	}
}

func TestWraparoundOverwritesOldestStep(t *testing.T) {
	const k, s = 3, 4
	src := newBodies(k)
	tr := newTrail(t, src, k, s)

	// step n writes x = 100*n + i for object i
	write := func(n int) {
		for i := 0; i < k; i++ {
			src[dynamo.Handle(i)].Position = mgl64.Vec3{float64(100*n + i), 0, 0}
		}
		tr.PhysicsStepped(1.0 / 60)
	}
	for n := 0; n < s; n++ {
		write(n)
	}

	for n := s; n < 3*s; n++ {
		before := append([]Instance(nil), tr.Instances()...)
		write(n)
		after := tr.Instances()
		for idx := range after {
			old := int(before[idx].Position[0])
			cur := int(after[idx].Position[0])
			if old == cur {
				continue
			}
			if old/100 != n-s || cur/100 != n || old%100 != cur%100 {
				t.Errorf("step %d: index %d went from %d to %d", n, idx, old, cur)
			}
		}
		changed := 0
		for idx := range after {
			if before[idx] != after[idx] {
				changed++
			}
		}
		if changed != k {
			t.Errorf("step %d: expected %d overwritten instances, got %d", n, k, changed)
		}
	}
}

func TestResetCounterIdempotent(t *testing.T) {
	tr := newTrail(t, newBodies(2), 2, 3)
	tr.PhysicsStepped(0)
	tr.PhysicsStepped(0)

	tr.ResetCounter()
	if tr.Cursor() != 0 || tr.VisibleCount() != 0 {
		t.Fatalf("expected zero counters, got cursor %d visible %d", tr.Cursor(), tr.VisibleCount())
	}
	tr.ResetCounter()
	if tr.Cursor() != 0 || tr.VisibleCount() != 0 {
		t.Errorf("second reset changed counters: cursor %d visible %d", tr.Cursor(), tr.VisibleCount())
	}
	if tr.Capacity() != 6 {
		t.Errorf("reset released storage, capacity %d", tr.Capacity())
	}

	tr.PhysicsStepped(0)
	if tr.VisibleCount() != 2 || len(tr.Instances()) != 2 {
		t.Errorf("expected 2 visible after restart, got %d", tr.VisibleCount())
	}
}

func TestScenarioRingOfSix(t *testing.T) {
	src := newBodies(3)
	tr := newTrail(t, src, 3, 2)

	tr.PhysicsStepped(0)
	if tr.VisibleCount() != 3 {
		t.Fatalf("after 1 step expected 3 visible, got %d", tr.VisibleCount())
	}
	first := append([]Instance(nil), tr.Instances()[:3]...)

	for _, b := range src {
		b.Position = b.Position.Add(mgl64.Vec3{0, 1, 0})
	}
	tr.PhysicsStepped(0)
	if tr.VisibleCount() != 6 {
		t.Fatalf("after 2 steps expected 6 visible, got %d", tr.VisibleCount())
	}

	for _, b := range src {
		b.Position = b.Position.Add(mgl64.Vec3{0, 1, 0})
	}
	tr.PhysicsStepped(0)
	if tr.VisibleCount() != 6 {
		t.Fatalf("after 3 steps expected 6 visible, got %d", tr.VisibleCount())
	}
	for i, in := range tr.Instances()[:3] {
		if in == first[i] {
			t.Errorf("instance %d from step 1 was not overwritten", i)
		}
		if in.Position[1] != 2 {
			t.Errorf("instance %d expected step-3 height 2, got %f", i, in.Position[1])
		}
	}
}

func TestTrackAfterBuildRejected(t *testing.T) {
	tr := newTrail(t, newBodies(3), 2, 5)

	err := tr.Track(2)
	if !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
	if len(tr.Tracked()) != 2 {
		t.Errorf("expected tracked count unchanged at 2, got %d", len(tr.Tracked()))
	}
	if tr.Capacity() != 10 {
		t.Errorf("expected capacity unchanged at 10, got %d", tr.Capacity())
	}
}

func TestBeforeBuildIsNoop(t *testing.T) {
	tr := New(newBodies(1), Options{Logger: quiet()})
	tr.Track(0)

	tr.PhysicsStepped(0)
	tr.ResetCounter()

	if tr.Built() || tr.VisibleCount() != 0 || len(tr.Instances()) != 0 {
		t.Error("expected unbuilt trail to ignore steps")
	}
	if tr.StepsPerObject() != DefaultStepsPerObject {
		t.Errorf("expected default steps %d, got %d", DefaultStepsPerObject, tr.StepsPerObject())
	}
}

func TestEmptyTrail(t *testing.T) {
	tr := New(newBodies(0), Options{Logger: quiet()})
	tr.BuildMesh()
	tr.PhysicsStepped(0)

	if tr.Capacity() != 0 || tr.VisibleCount() != 0 || tr.Fill() != 0 {
		t.Error("expected empty trail to stay empty")
	}
}

func TestRebuildKeepsSet(t *testing.T) {
	tr := newTrail(t, newBodies(2), 2, 3)
	tr.PhysicsStepped(0)

	tr.BuildMesh()
	if tr.Capacity() != 6 || tr.VisibleCount() != 0 || tr.Cursor() != 0 {
		t.Errorf("unexpected rebuild state: capacity %d visible %d cursor %d", tr.Capacity(), tr.VisibleCount(), tr.Cursor())
	}
}

func TestInstanceMatrix(t *testing.T) {
	in := Instance{
		Position:   mgl64.Vec3{1, 2, 3},
		Quaternion: mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 0, 1}),
	}
	p := in.Matrix().Mul4x1(mgl64.Vec4{1, 0, 0, 1})

	want := mgl64.Vec4{1, 3, 3, 1}
	for i := range want {
		if diff := p[i] - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("expected %v, got %v", want, p)
		}
	}
}

func TestOrderedOldestFirst(t *testing.T) {
	src := newBodies(2)
	tr := newTrail(t, src, 2, 3)

	for n := 0; n < 5; n++ {
		for i := 0; i < 2; i++ {
			src[dynamo.Handle(i)].Position = mgl64.Vec3{float64(10*n + i), 0, 0}
		}
		tr.PhysicsStepped(0)
	}

	got := tr.Ordered()
	want := []float64{20, 21, 30, 31, 40, 41}
	if len(got) != len(want) {
		t.Fatalf("expected %d instances, got %d", len(want), len(got))
	}
	for i, x := range want {
		if got[i].Position[0] != x {
			t.Errorf("index %d: expected x %v, got %v", i, x, got[i].Position[0])
		}
	}

	tr.ResetCounter()
	tr.PhysicsStepped(0)
	if got := tr.Ordered(); len(got) != 2 || got[0].Position[0] != 40 {
		t.Errorf("expected single fresh step after reset, got %v", got)
	}
}

func TestInstancesIsACopy(t *testing.T) {
	src := newBodies(1)
	tr := newTrail(t, src, 1, 2)
	tr.PhysicsStepped(0)

	got := tr.Instances()
	got[0].Position = mgl64.Vec3{99, 99, 99}

	if again := tr.Instances(); again[0].Position[0] != 0 {
		t.Errorf("ring changed through returned slice: %v", again[0].Position)
	}
}
