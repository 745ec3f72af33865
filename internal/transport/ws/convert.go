package ws

import (
	"math"

	"wildscrap.game/internal/protocol"
	"wildscrap.game/internal/sim/build"
	"wildscrap.game/internal/sim/game"
	"wildscrap.game/internal/sim/inventory"
	"wildscrap.game/internal/sim/mathx"
)

type reject struct {
	code string
	msg  string
}

// toCommand validates a CMD frame. Fields an op does not read are ignored.
func toCommand(m protocol.CmdMsg) (game.Command, *reject) {
	cmd := game.Command{Op: game.Op(m.Op)}
	if !cmd.Op.Valid() {
		return cmd, &reject{protocol.ErrUnknownOp, "unknown op: " + m.Op}
	}
	switch cmd.Op {
	case game.OpAddItem, game.OpRemoveItem:
		r := inventory.Resource(m.Resource)
		if !r.Valid() {
			return cmd, &reject{protocol.ErrInvalidTarget, "unknown resource: " + m.Resource}
		}
		if m.Amount < 0 {
			return cmd, &reject{protocol.ErrBadRequest, "amount must be >= 0"}
		}
		cmd.Resource, cmd.Amount = r, m.Amount
	case game.OpTakeDamage:
		if m.Damage < 0 || math.IsNaN(m.Damage) || math.IsInf(m.Damage, 0) {
			return cmd, &reject{protocol.ErrBadRequest, "damage must be a finite number >= 0"}
		}
		cmd.Damage = m.Damage
	case game.OpSetBuildItem:
		k := build.Kind(m.Kind)
		if !k.Valid() {
			return cmd, &reject{protocol.ErrInvalidTarget, "unknown kind: " + m.Kind}
		}
		cmd.Kind = k
	case game.OpAddStructure:
		if m.Kind != "" {
			k := build.Kind(m.Kind)
			if !k.Valid() {
				return cmd, &reject{protocol.ErrInvalidTarget, "unknown kind: " + m.Kind}
			}
			cmd.Kind = k
		}
		if m.Position != nil {
			p := mathx.FromArray(*m.Position)
			cmd.Position = &p
		}
		cmd.Rotation = m.Rotation
	}
	return cmd, nil
}

func stateMsg(st *game.State) protocol.StateMsg {
	m := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            st.Tick,
		HP:              st.HP,
		Hunger:          st.Hunger,
		Thirst:          st.Thirst,
		IsDead:          st.IsDead,
		Inventory: protocol.Inventory{
			Wood:  st.Inventory.Wood,
			Stone: st.Inventory.Stone,
			Scrap: st.Inventory.Scrap,
			Water: st.Inventory.Water,
		},
		Structures:        make([]protocol.Structure, 0, len(st.Structures)),
		IsBuildMode:       st.IsBuildMode,
		SelectedBuildKind: string(st.SelectedBuildKind),
		BuildRotation:     st.BuildRotation,
		Time:              st.Time,
		Daylight: protocol.Daylight{
			IsDay:            st.Daylight.IsDay,
			SunIntensity:     st.Daylight.SunIntensity,
			AmbientIntensity: st.Daylight.AmbientIntensity,
			SunPosition:      st.Daylight.SunPosition,
		},
		Player:    protocol.Pose{Pos: st.World.Player.Pos.ToArray(), Yaw: st.World.Player.Yaw},
		Enemies:   make([]protocol.Pose, 0, len(st.World.Enemies)),
		Collected: st.World.Collected,
	}
	for _, s := range st.Structures {
		m.Structures = append(m.Structures, protocol.Structure{
			ID:       s.ID,
			Position: s.Position.ToArray(),
			Kind:     string(s.Kind),
			Rotation: s.Rotation,
		})
	}
	for _, e := range st.World.Enemies {
		m.Enemies = append(m.Enemies, protocol.Pose{ID: e.ID, Pos: e.Pos.ToArray()})
	}
	return m
}
