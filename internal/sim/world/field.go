package world

import (
	"fmt"
	"math"

	"wildscrap.game/internal/sim/inventory"
	"wildscrap.game/internal/sim/mathx"
	"wildscrap.game/internal/sim/tuning"
)

type NodeKind string

const (
	Tree      NodeKind = "tree"
	Rock      NodeKind = "rock"
	ScrapPile NodeKind = "scrap"
)

// Resource is what one hit on the node yields.
func (k NodeKind) Resource() inventory.Resource {
	switch k {
	case Tree:
		return inventory.Wood
	case Rock:
		return inventory.Stone
	case ScrapPile:
		return inventory.Scrap
	}
	return ""
}

// Node is a gatherable resource in the world. A collected node is hidden and
// no longer hit by raycasts.
type Node struct {
	ID        string     `json:"id"`
	Kind      NodeKind   `json:"kind"`
	Pos       mathx.Vec3 `json:"pos"`
	Radius    float64    `json:"radius"`
	Collected bool       `json:"collected"`
}

// Scatter places trees, rocks and scrap on the ground plane. The layout depends
// only on the seed and counts.
func Scatter(g tuning.WorldGen) []Node {
	out := make([]Node, 0, g.Trees+g.Rocks+g.Scrap)
	layer := 0
	place := func(kind NodeKind, n int, spread float64) {
		for i := 0; i < n; i++ {
			x := (mathx.Unit(g.Seed, i, layer) - 0.5) * spread
			z := (mathx.Unit(g.Seed, i, layer+1) - 0.5) * spread
			out = append(out, Node{
				ID:     fmt.Sprintf("%s-%d", kind, i),
				Kind:   kind,
				Pos:    mathx.V(x, 0, z),
				Radius: g.NodeRadius,
			})
		}
		layer += 2
	}
	place(Tree, g.Trees, g.TreeSpread)
	place(Rock, g.Rocks, g.RockSpread)
	place(ScrapPile, g.Scrap, g.ScrapSpread)
	return out
}

type Hit struct {
	NodeID   string
	Resource inventory.Resource
	Dist     float64
}

// Query is the world-side collaborator the core asks to resolve attacks.
type Query interface {
	RaycastResource(origin, dir mathx.Vec3, maxDist float64) (Hit, bool)
}

// Raycast finds the nearest uncollected node hit by a ray on the XZ plane
// within maxDist. Nodes are treated as vertical cylinders.
func Raycast(nodes []Node, origin, dir mathx.Vec3, maxDist float64) (int, float64, bool) {
	d := mathx.V(dir.X, 0, dir.Z).Norm()
	if d.Len() == 0 {
		return -1, 0, false
	}
	best, bestT := -1, math.Inf(1)
	for i := range nodes {
		n := &nodes[i]
		if n.Collected {
			continue
		}
		oc := mathx.V(n.Pos.X-origin.X, 0, n.Pos.Z-origin.Z)
		r2 := n.Radius * n.Radius
		c2 := oc.Dot(oc)
		var t float64
		if c2 <= r2 {
			t = 0
		} else {
			proj := oc.Dot(d)
			if proj <= 0 {
				continue
			}
			miss2 := c2 - proj*proj
			if miss2 > r2 {
				continue
			}
			t = proj - math.Sqrt(r2-miss2)
		}
		if t > maxDist || t >= bestT {
			continue
		}
		best, bestT = i, t
	}
	if best < 0 {
		return -1, 0, false
	}
	return best, bestT, true
}
