package gui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/afterimage/internal/camera"
	"github.com/san-kum/afterimage/internal/input"
	"github.com/san-kum/afterimage/internal/picker"
)

func TestParseColor(t *testing.T) {
	c, err := parseColor("#B5AC01", 0.7)
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 0xB5 || c.G != 0xAC || c.B != 0x01 || c.A != 178 {
		t.Errorf("unexpected color %+v", c)
	}

	if _, err := parseColor("olive", 1); err == nil {
		t.Error("expected error for non-hex color")
	}
}

func TestCursorMapping(t *testing.T) {
	var applied []int32
	cur := &cursor{apply: func(c int32) { applied = append(applied, c) }}

	cur.SetCursor(picker.CursorGrab)
	cur.SetCursor(picker.CursorGrabbing)
	cur.SetCursor(picker.CursorDefault)

	want := []int32{rl.MouseCursorPointingHand, rl.MouseCursorResizeAll, rl.MouseCursorDefault}
	if len(applied) != len(want) {
		t.Fatalf("expected %d cursor changes, got %d", len(want), len(applied))
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Errorf("change %d: expected %d, got %d", i, want[i], applied[i])
		}
	}
	if cur.style != picker.CursorDefault {
		t.Errorf("expected last style default, got %s", cur.style)
	}
}

func TestToCamera3D(t *testing.T) {
	c := camera.New(16.0 / 9)
	rc := toCamera3D(c)

	if rc.Position != toVector3(c.Position) || rc.Target != toVector3(c.Target) {
		t.Errorf("camera placement not copied: %+v", rc)
	}
	if rc.Fovy != 35 || rc.Projection != rl.CameraPerspective {
		t.Errorf("unexpected projection fov %f mode %d", rc.Fovy, rc.Projection)
	}
}

func TestTransformTriangles(t *testing.T) {
	tris := [][3]mgl64.Vec3{{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}
	got := transformTriangles(nil, tris, mgl64.Translate3D(1, 2, 3))

	want := []rl.Vector3{{X: 1, Y: 2, Z: 3}, {X: 2, Y: 2, Z: 3}, {X: 1, Y: 3, Z: 3}}
	if len(got) != len(want) {
		t.Fatalf("expected %d vertices, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vertex %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTelemetryPoints(t *testing.T) {
	if telemetryPoints([]float64{1}, 0, 0, 100, 10) != nil {
		t.Error("expected no line for a single sample")
	}

	pts := telemetryPoints([]float64{0, 1, 0.5}, 10, 20, 100, 10)
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	if pts[0].X != 10 || pts[2].X != 110 {
		t.Errorf("unexpected x span %f..%f", pts[0].X, pts[2].X)
	}
	if pts[0].Y != 30 || pts[1].Y != 20 || pts[2].Y != 25 {
		t.Errorf("unexpected heights %f %f %f", pts[0].Y, pts[1].Y, pts[2].Y)
	}
}

func TestPointerCallsKeepMotionWithButtons(t *testing.T) {
	tests := []struct {
		name string
		m    mouseFrame
		want []pointerCall
	}{
		{"idle", mouseFrame{}, nil},
		{"move", mouseFrame{moved: true}, []pointerCall{{input.Move, true}}},
		{"press and move", mouseFrame{leftPressed: true, moved: true},
			[]pointerCall{{input.Move, true}, {input.Down, true}}},
		{"flick release", mouseFrame{leftReleased: true, moved: true},
			[]pointerCall{{input.Move, true}, {input.Up, true}}},
		{"right press", mouseFrame{rightPressed: true}, []pointerCall{{input.Down, false}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pointerCalls(tt.m)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("call %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

