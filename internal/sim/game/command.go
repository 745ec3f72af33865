package game

import (
	"wildscrap.game/internal/sim/build"
	"wildscrap.game/internal/sim/inventory"
	"wildscrap.game/internal/sim/mathx"
)

type Op string

const (
	OpAddItem      Op = "add_item"
	OpRemoveItem   Op = "remove_item"
	OpTakeDamage   Op = "take_damage"
	OpToggleBuild  Op = "toggle_build"
	OpSetBuildItem Op = "set_build_item"
	OpRotate       Op = "rotate"
	OpAddStructure Op = "add_structure"
	OpReset        Op = "reset"
	OpSave         Op = "save"
	OpLoad         Op = "load"
)

func (o Op) Valid() bool {
	switch o {
	case OpAddItem, OpRemoveItem, OpTakeDamage, OpToggleBuild, OpSetBuildItem,
		OpRotate, OpAddStructure, OpReset, OpSave, OpLoad:
		return true
	}
	return false
}

// Command is one mutator call posted to the loop. Only the fields the op
// reads are used.
type Command struct {
	Op Op

	Resource inventory.Resource
	Amount   int // defaults to 1 for add_item/remove_item
	Damage   float64
	Kind     build.Kind

	// Position and Rotation are optional for add_structure. A nil Position
	// places at the snapped point in front of the player; a nil Rotation uses
	// the current build rotation.
	Position *mathx.Vec3
	Rotation *float64
}
