package build

import (
	"math"
	"testing"

	"wildscrap.game/internal/sim/mathx"
)

func TestRotate_FourTimesIsIdentity(t *testing.T) {
	s := NewState(Wall)
	for start := 0; start < 4; start++ {
		before := s.Radians()
		r := s
		for i := 0; i < 4; i++ {
			r = r.Rotate()
		}
		if r.Radians() != before {
			t.Fatalf("start=%d: got %v want %v", start, r.Radians(), before)
		}
		s = s.Rotate()
	}
}

func TestRotate_StaysInFullTurn(t *testing.T) {
	s := NewState(Floor)
	for i := 0; i < 1001; i++ {
		s = s.Rotate()
		if r := s.Radians(); r < 0 || r >= FullTurn {
			t.Fatalf("rotation out of range: %v", r)
		}
	}
	if s.Quarters != 1001%4 {
		t.Fatalf("quarters: got %d", s.Quarters)
	}
}

func TestSelect_Unconditional(t *testing.T) {
	s := NewState(Wall)
	s = s.Select(Ramp)
	if s.BuildMode || s.Selected != Ramp {
		t.Fatalf("select outside build mode: %+v", s)
	}
	s = s.Select("castle")
	if s.Selected != Ramp {
		t.Fatalf("unknown kind changed selection: %+v", s)
	}
	if NewState("castle").Selected != Wall {
		t.Fatalf("unknown default kind not replaced")
	}
}

func TestToggle(t *testing.T) {
	s := NewState(Wall).Toggle()
	if !s.BuildMode {
		t.Fatalf("expected build mode")
	}
	if s.Toggle().BuildMode {
		t.Fatalf("expected build mode off")
	}
}

func TestNormalizeRadians(t *testing.T) {
	cases := map[float64]float64{
		0:               0,
		-math.Pi / 2:    3 * math.Pi / 2,
		5 * math.Pi / 2: math.Pi / 2,
		math.NaN():      0,
	}
	for in, want := range cases {
		if got := NormalizeRadians(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("NormalizeRadians(%v)=%v want %v", in, got, want)
		}
	}
}

func TestPlacementPoint_SnapsToGrid(t *testing.T) {
	p := PlacementPoint(mathx.V(0.4, 1.7, 0.3), 0, 4, 2)
	if p != mathx.V(0, 0, -4) {
		t.Fatalf("got %+v", p)
	}
	p = PlacementPoint(mathx.V(0, 0, 0), math.Pi/2, 4, 2)
	if p.X != -4 || p.Z != 0 || p.Y != 0 {
		t.Fatalf("turned: got %+v", p)
	}
}
