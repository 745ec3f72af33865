package main

import (
	"fmt"
	"math"
	"math/rand/v2"

	"wildscrap.game/internal/protocol"
)

const (
	wanderEvery = 40 // states between heading changes
	buildWood   = 3
)

// brain turns STATE frames into the messages a wandering player would send:
// walk, swing at whatever is ahead, drop a wall now and then, respawn on death.
type brain struct {
	rng       *rand.Rand
	saveEvery int

	n        int
	reqs     int
	swinging bool
	dead     bool
}

func newBrain(seed uint64, saveEvery int) *brain {
	return &brain{
		rng:       rand.New(rand.NewPCG(seed, seed^0x5bd1e995)),
		saveEvery: saveEvery,
	}
}

func (b *brain) next(st *protocol.StateMsg) []any {
	b.n++
	var out []any

	if st.IsDead {
		if !b.dead {
			b.dead = true
			out = append(out, b.cmd(protocol.CmdMsg{Op: "reset"}))
		}
		return out
	}
	b.dead = false

	if b.n%wanderEvery == 1 {
		heading := b.rng.Float64() * 2 * math.Pi
		out = append(out, protocol.InputMsg{
			Type:            protocol.TypeInput,
			ProtocolVersion: protocol.Version,
			Move:            &protocol.Vec2{X: math.Sin(heading), Y: math.Cos(heading)},
			Look:            &protocol.Vec2{X: b.rng.Float64()*2 - 1},
		})
	}

	// Alternate press and release so every other frame is a fresh swing.
	b.swinging = !b.swinging
	swing := b.swinging
	out = append(out, protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Actions:         &protocol.Actions{Attack: &swing},
	})

	if st.Inventory.Wood >= buildWood && !st.IsBuildMode {
		out = append(out,
			b.cmd(protocol.CmdMsg{Op: "toggle_build"}),
			b.cmd(protocol.CmdMsg{Op: "remove_item", Resource: "wood", Amount: buildWood}),
		)
	} else if st.IsBuildMode {
		place := true
		out = append(out,
			protocol.InputMsg{Type: protocol.TypeInput, ProtocolVersion: protocol.Version, Actions: &protocol.Actions{Build: &place}},
			b.cmd(protocol.CmdMsg{Op: "toggle_build"}),
		)
	}

	if b.saveEvery > 0 && b.n%b.saveEvery == 0 {
		out = append(out, b.cmd(protocol.CmdMsg{Op: "save"}))
	}
	return out
}

func (b *brain) cmd(c protocol.CmdMsg) protocol.CmdMsg {
	b.reqs++
	c.Type = protocol.TypeCmd
	c.ProtocolVersion = protocol.Version
	c.ReqID = fmt.Sprintf("bot-%d", b.reqs)
	return c
}
