package world

import (
	"wildscrap.game/internal/sim/input"
	"wildscrap.game/internal/sim/inventory"
	"wildscrap.game/internal/sim/mathx"
	"wildscrap.game/internal/sim/tuning"
)

// Field is the world-side state the frame loop drives: the player pose,
// resource nodes and enemies. It is owned by one goroutine.
type Field struct {
	player  Player
	nodes   []Node
	enemies []Enemy
	chaser  *Chaser

	speed     float64
	lookScale float64
}

func NewField(t tuning.Tuning) *Field {
	f := &Field{
		nodes:     Scatter(t.WorldGen),
		chaser:    NewChaser(t.Enemies, t.WorldGen.Seed),
		speed:     t.Player.Speed,
		lookScale: t.Player.LookScale,
	}
	for i, p := range t.Enemies.Spawns {
		f.enemies = append(f.enemies, Enemy{ID: i + 1, Pos: mathx.FromArray(p)})
	}
	return f
}

func (f *Field) Player() Player { return f.player }

// MovePlayer applies one frame of input to the player.
func (f *Field) MovePlayer(in input.Frame, dt float64) {
	f.player = f.player.Step(in, f.speed, f.lookScale, dt)
}

// StepEnemies advances every enemy and returns the number of bites landed.
func (f *Field) StepEnemies(dt float64) int {
	bites := 0
	for i := range f.enemies {
		var bit bool
		f.enemies[i], bit = f.chaser.Step(f.enemies[i], f.player.Pos, dt)
		if bit {
			bites++
		}
	}
	return bites
}

func (f *Field) RaycastResource(origin, dir mathx.Vec3, maxDist float64) (Hit, bool) {
	i, t, ok := Raycast(f.nodes, origin, dir, maxDist)
	if !ok {
		return Hit{}, false
	}
	return Hit{NodeID: f.nodes[i].ID, Resource: f.nodes[i].Kind.Resource(), Dist: t}, true
}

// Collect hides the node and returns its resource. A node yields once.
func (f *Field) Collect(id string) (inventory.Resource, bool) {
	for i := range f.nodes {
		n := &f.nodes[i]
		if n.ID != id || n.Collected {
			continue
		}
		n.Collected = true
		return n.Kind.Resource(), true
	}
	return "", false
}

// Respawn restores the scattered nodes and places the player and enemies back
// at their start positions.
func (f *Field) Respawn(t tuning.Tuning) {
	*f = *NewField(t)
}

// View is a copy safe to hand to other goroutines.
func (f *Field) View() FieldView {
	v := FieldView{Player: f.player, Enemies: append([]Enemy(nil), f.enemies...)}
	for _, n := range f.nodes {
		if n.Collected {
			v.Collected = append(v.Collected, n.ID)
		}
	}
	return v
}

type FieldView struct {
	Player    Player   `json:"player"`
	Enemies   []Enemy  `json:"enemies"`
	Collected []string `json:"collected,omitempty"`
}

// Nodes returns a copy of every node including collected ones.
func (f *Field) Nodes() []Node { return append([]Node(nil), f.nodes...) }
