package input

// Keys tracks held movement keys for keyboard clients and emulates the joystick
// move vector from them.
type Keys struct {
	up, down, left, right bool
}

// Key applies a key transition to s, including any action the key maps to.
// Repeats are ignored; the move vector is recomputed on every transition.
func (k *Keys) Key(code string, down, repeat bool, s *State) {
	if repeat {
		return
	}
	switch code {
	case "KeyW", "ArrowUp":
		k.up = down
	case "KeyS", "ArrowDown":
		k.down = down
	case "KeyA", "ArrowLeft":
		k.left = down
	case "KeyD", "ArrowRight":
		k.right = down
	}
	x, y := k.Move()
	s.SetMove(x, y)

	if a, ok := keyAction(code); ok {
		s.SetAction(a, down)
	}
}

// Move resolves the held keys into one of 8 directions (or zero).
func (k *Keys) Move() (x, y float64) {
	if k.up {
		y++
	}
	if k.down {
		y--
	}
	if k.right {
		x++
	}
	if k.left {
		x--
	}
	return x, y
}

func keyAction(code string) (Action, bool) {
	switch code {
	case "Space":
		return ActionJump, true
	case "KeyF":
		return ActionAttack, true
	case "KeyE":
		return ActionBuild, true
	}
	return "", false
}
