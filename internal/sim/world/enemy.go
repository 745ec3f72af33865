package world

import (
	"math/rand/v2"

	"wildscrap.game/internal/sim/mathx"
	"wildscrap.game/internal/sim/tuning"
)

// Enemy chases the player in a straight line and bites at close range.
type Enemy struct {
	ID  int        `json:"id"`
	Pos mathx.Vec3 `json:"pos"`
}

type Chaser struct {
	cfg tuning.Enemies
	rng *rand.Rand
}

func NewChaser(cfg tuning.Enemies, seed int64) *Chaser {
	return &Chaser{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15)),
	}
}

// Step moves e toward target for dt seconds and reports whether it bites
// this frame. Outside aggro range the enemy idles.
func (c *Chaser) Step(e Enemy, target mathx.Vec3, dt float64) (Enemy, bool) {
	to := mathx.V(target.X-e.Pos.X, 0, target.Z-e.Pos.Z)
	dist := to.Len()
	if dist < c.cfg.AggroRange && dist > c.cfg.BiteRange {
		e.Pos = e.Pos.Add(to.Norm().Scale(c.cfg.Speed * dt))
	}
	if dist < c.cfg.BiteRange && c.rng.Float64() < c.cfg.BiteChance {
		return e, true
	}
	return e, false
}
