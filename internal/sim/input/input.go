// Package input is the shared input blackboard polled by the frame loop.
//
// Writers (transports, device capture) store the latest values; the loop reads a
// consistent Frame once per tick. Intermediate transitions between polls are not
// observed.
package input

import "sync"

type Action string

const (
	ActionAttack Action = "attack"
	ActionBuild  Action = "build"
	ActionJump   Action = "jump"
)

func (a Action) Valid() bool {
	switch a {
	case ActionAttack, ActionBuild, ActionJump:
		return true
	}
	return false
}

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Actions struct {
	Attack bool `json:"attack"`
	Build  bool `json:"build"`
	Jump   bool `json:"jump"`
}

type Frame struct {
	Move    Vec2    `json:"move"`
	Look    Vec2    `json:"look"`
	Actions Actions `json:"actions"`
}

type State struct {
	mu sync.Mutex
	f  Frame
}

func New() *State { return &State{} }

func (s *State) SetMove(x, y float64) {
	s.mu.Lock()
	s.f.Move = Vec2{X: x, Y: y}
	s.mu.Unlock()
}

func (s *State) SetLook(x, y float64) {
	s.mu.Lock()
	s.f.Look = Vec2{X: x, Y: y}
	s.mu.Unlock()
}

// SetAction sets one action flag. Unknown names are ignored.
func (s *State) SetAction(name Action, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch name {
	case ActionAttack:
		s.f.Actions.Attack = value
	case ActionBuild:
		s.f.Actions.Build = value
	case ActionJump:
		s.f.Actions.Jump = value
	}
}

func (s *State) Poll() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f
}

// Consume clears an edge-triggered action after the loop has handled it and
// reports whether it was set.
func (s *State) Consume(name Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var p *bool
	switch name {
	case ActionAttack:
		p = &s.f.Actions.Attack
	case ActionBuild:
		p = &s.f.Actions.Build
	case ActionJump:
		p = &s.f.Actions.Jump
	default:
		return false
	}
	was := *p
	*p = false
	return was
}
