package build

import (
	"math"

	"wildscrap.game/internal/sim/mathx"
)

// Kind is the closed set of placeable structures. Renderers switch on it.
type Kind string

const (
	Wall    Kind = "wall"
	Floor   Kind = "floor"
	Ramp    Kind = "ramp"
	Shelter Kind = "shelter"
)

var Kinds = []Kind{Wall, Floor, Ramp, Shelter}

func (k Kind) Valid() bool {
	switch k {
	case Wall, Floor, Ramp, Shelter:
		return true
	}
	return false
}

const (
	QuarterTurn = math.Pi / 2
	FullTurn    = 2 * math.Pi
)

// State is the player's build-mode state. Rotation is a quarter-turn count in
// [0,3] so that four rotations land exactly where they started.
type State struct {
	BuildMode bool
	Selected  Kind
	Quarters  int
}

func NewState(selected Kind) State {
	if !selected.Valid() {
		selected = Wall
	}
	return State{Selected: selected}
}

func (s State) Toggle() State {
	s.BuildMode = !s.BuildMode
	return s
}

// Select does not check BuildMode; unknown kinds leave the selection unchanged.
func (s State) Select(k Kind) State {
	if k.Valid() {
		s.Selected = k
	}
	return s
}

func (s State) Rotate() State {
	s.Quarters = normalizeQuarters(s.Quarters + 1)
	return s
}

func (s State) Radians() float64 { return float64(s.Quarters) * QuarterTurn }

func normalizeQuarters(q int) int { return mathx.Mod(q, 4) }

// NormalizeRadians wraps an arbitrary rotation into [0, 2π).
func NormalizeRadians(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	r = mathx.ModF(r, FullTurn)
	if r >= FullTurn {
		r = 0
	}
	return r
}

// Structure is an immutable placed-structure record.
type Structure struct {
	ID       string     `json:"id"`
	Position mathx.Vec3 `json:"position"`
	Kind     Kind       `json:"kind"`
	Rotation float64    `json:"rotation"`
}

// PlacementPoint returns the spot reach units in front of a player at origin
// facing yaw, snapped to grid on x/z and dropped to the ground plane.
func PlacementPoint(origin mathx.Vec3, yaw, reach, grid float64) mathx.Vec3 {
	p := mathx.V(0, 0, -reach).RotateY(yaw).Add(origin)
	if grid > 0 {
		p.X = math.Round(p.X/grid) * grid
		p.Z = math.Round(p.Z/grid) * grid
	}
	p.Y = 0
	return p
}
