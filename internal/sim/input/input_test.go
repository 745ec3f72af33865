package input

import "testing"

func TestState_LatestValueWins(t *testing.T) {
	s := New()
	s.SetMove(1, 0)
	s.SetMove(-0.5, 0.25)
	s.SetLook(0.1, -0.2)
	f := s.Poll()
	if f.Move != (Vec2{X: -0.5, Y: 0.25}) {
		t.Fatalf("move: got %+v", f.Move)
	}
	if f.Look != (Vec2{X: 0.1, Y: -0.2}) {
		t.Fatalf("look: got %+v", f.Look)
	}
}

func TestState_SetActionIgnoresUnknown(t *testing.T) {
	s := New()
	s.SetAction(ActionAttack, true)
	s.SetAction("dance", true)
	f := s.Poll()
	if !f.Actions.Attack || f.Actions.Build || f.Actions.Jump {
		t.Fatalf("actions: got %+v", f.Actions)
	}
	if Action("dance").Valid() {
		t.Fatalf("unknown action reported valid")
	}
}

func TestState_ConsumeClearsFlag(t *testing.T) {
	s := New()
	s.SetAction(ActionBuild, true)
	if !s.Consume(ActionBuild) {
		t.Fatalf("expected build to be set")
	}
	if s.Consume(ActionBuild) {
		t.Fatalf("expected build to be cleared")
	}
	if s.Poll().Actions.Build {
		t.Fatalf("poll still sees build")
	}
}

func TestKeys_EightDirections(t *testing.T) {
	s := New()
	var k Keys
	k.Key("KeyW", true, false, s)
	k.Key("KeyD", true, false, s)
	if f := s.Poll(); f.Move != (Vec2{X: 1, Y: 1}) {
		t.Fatalf("W+D: got %+v", f.Move)
	}
	k.Key("ArrowDown", true, false, s)
	if f := s.Poll(); f.Move != (Vec2{X: 1, Y: 0}) {
		t.Fatalf("W+S+D: got %+v", f.Move)
	}
	k.Key("KeyW", false, false, s)
	k.Key("KeyD", false, false, s)
	if f := s.Poll(); f.Move != (Vec2{X: 0, Y: -1}) {
		t.Fatalf("S: got %+v", f.Move)
	}
}

func TestKeys_ActionsAndRepeat(t *testing.T) {
	s := New()
	var k Keys
	k.Key("KeyF", true, false, s)
	k.Key("Space", true, false, s)
	f := s.Poll()
	if !f.Actions.Attack || !f.Actions.Jump {
		t.Fatalf("actions: got %+v", f.Actions)
	}
	// A repeated keyup must not be applied.
	k.Key("KeyF", false, true, s)
	if !s.Poll().Actions.Attack {
		t.Fatalf("repeat event was applied")
	}
	k.Key("KeyF", false, false, s)
	if s.Poll().Actions.Attack {
		t.Fatalf("attack not released")
	}
}
