package world

import (
	"math"

	"wildscrap.game/internal/sim/input"
	"wildscrap.game/internal/sim/mathx"
)

// Player is the avatar pose. Y stays on the ground plane.
type Player struct {
	Pos mathx.Vec3 `json:"pos"`
	Yaw float64    `json:"yaw"`
}

// Forward is the unit facing direction; yaw 0 faces -Z.
func (p Player) Forward() mathx.Vec3 {
	return mathx.V(0, 0, -1).RotateY(p.Yaw)
}

// Velocity turns a move vector into world velocity. Only the signs of the
// move axes matter, so keyboard and joystick move at the same speed.
func (p Player) Velocity(move input.Vec2, speed float64) mathx.Vec3 {
	var d mathx.Vec3
	switch {
	case move.Y > 0:
		d.Z = -1
	case move.Y < 0:
		d.Z = 1
	}
	switch {
	case move.X < 0:
		d.X = -1
	case move.X > 0:
		d.X = 1
	}
	return d.Norm().Scale(speed).RotateY(p.Yaw)
}

// Step turns by look.x and moves for dt seconds.
func (p Player) Step(f input.Frame, speed, lookScale, dt float64) Player {
	p.Yaw -= f.Look.X * lookScale
	p.Yaw = mathx.ModF(p.Yaw, 2*math.Pi)
	p.Pos = p.Pos.Add(p.Velocity(f.Move, speed).Scale(dt))
	return p
}
