package main

import (
	"testing"

	"wildscrap.game/internal/protocol"
)

func cmds(out []any) []protocol.CmdMsg {
	var got []protocol.CmdMsg
	for _, m := range out {
		if c, ok := m.(protocol.CmdMsg); ok {
			got = append(got, c)
		}
	}
	return got
}

func TestBrainResetsOncePerDeath(t *testing.T) {
	b := newBrain(1, 0)
	dead := &protocol.StateMsg{IsDead: true}
	got := cmds(b.next(dead))
	if len(got) != 1 || got[0].Op != "reset" || got[0].ReqID == "" {
		t.Fatalf("first dead frame: %+v", got)
	}
	if out := b.next(dead); len(out) != 0 {
		t.Fatalf("second dead frame sent %d messages", len(out))
	}
	b.next(&protocol.StateMsg{})
	if got := cmds(b.next(dead)); len(got) != 1 || got[0].Op != "reset" {
		t.Fatalf("new death: %+v", got)
	}
}

func TestBrainBuildsWithWood(t *testing.T) {
	b := newBrain(1, 0)
	got := cmds(b.next(&protocol.StateMsg{Inventory: protocol.Inventory{Wood: 3}}))
	if len(got) != 2 || got[0].Op != "toggle_build" || got[1].Op != "remove_item" || got[1].Amount != 3 {
		t.Fatalf("enter build: %+v", got)
	}

	out := b.next(&protocol.StateMsg{IsBuildMode: true})
	placed := false
	for _, m := range out {
		if in, ok := m.(protocol.InputMsg); ok && in.Actions != nil && in.Actions.Build != nil && *in.Actions.Build {
			placed = true
		}
	}
	if !placed {
		t.Fatalf("no build action in build mode: %+v", out)
	}
	if got := cmds(out); len(got) != 1 || got[0].Op != "toggle_build" {
		t.Fatalf("leave build: %+v", got)
	}
}

func TestBrainWanderIsSeeded(t *testing.T) {
	a, b := newBrain(7, 0), newBrain(7, 0)
	ma := a.next(&protocol.StateMsg{})[0].(protocol.InputMsg)
	mb := b.next(&protocol.StateMsg{})[0].(protocol.InputMsg)
	if ma.Move == nil || *ma.Move != *mb.Move || *ma.Look != *mb.Look {
		t.Fatalf("same seed diverged: %+v vs %+v", ma.Move, mb.Move)
	}
}

func TestBrainSavesPeriodically(t *testing.T) {
	b := newBrain(1, 3)
	saves := 0
	for i := 0; i < 9; i++ {
		for _, c := range cmds(b.next(&protocol.StateMsg{})) {
			if c.Op == "save" {
				saves++
			}
		}
	}
	if saves != 3 {
		t.Fatalf("saves=%d want 3", saves)
	}
}
