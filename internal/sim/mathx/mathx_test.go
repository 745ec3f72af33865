package mathx

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRotateY_QuarterTurn(t *testing.T) {
	// Forward (-Z) turned a quarter to the left faces -X.
	got := V(0, 0, -1).RotateY(math.Pi / 2)
	if !near(got.X, -1) || !near(got.Z, 0) {
		t.Fatalf("got %+v", got)
	}
}

func TestModF(t *testing.T) {
	if got := ModF(-math.Pi/2, 2*math.Pi); !near(got, 3*math.Pi/2) {
		t.Fatalf("got %v", got)
	}
	if got := Mod(-1, 4); got != 3 {
		t.Fatalf("got %d", got)
	}
}

func TestUnit_DeterministicAndInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		u := Unit(42, i, 7)
		if u < 0 || u >= 1 {
			t.Fatalf("out of range: %v", u)
		}
		if u != Unit(42, i, 7) {
			t.Fatalf("not deterministic")
		}
	}
	if Unit(1, 0, 0) == Unit(2, 0, 0) {
		t.Fatalf("seed ignored")
	}
}

func TestNorm_Zero(t *testing.T) {
	if (Vec3{}).Norm() != (Vec3{}) {
		t.Fatalf("zero vector norm")
	}
}
