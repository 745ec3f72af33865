package main

import (
	"bytes"
	"strings"
	"testing"

	"wildscrap.game/internal/sim/game"
)

func TestSummaryTracksPlacementsSinceReset(t *testing.T) {
	s := newSummary()
	for _, e := range []game.Event{
		{Tick: 1, Type: game.EventPlaced, ID: "a"},
		{Tick: 2, Type: game.EventPlaced, ID: "b"},
		{Tick: 3, Type: game.EventSaved, HP: 80},
		{Tick: 4, Type: game.EventReset},
		{Tick: 5, Type: game.EventPlaced, ID: "c"},
	} {
		s.add(e)
	}
	if len(s.placed) != 1 || s.placed[0] != "c" {
		t.Fatalf("placed=%v", s.placed)
	}
	if s.lastSaved == nil || s.lastSaved.Tick != 3 || s.lastSaved.HP != 80 {
		t.Fatalf("lastSaved=%+v", s.lastSaved)
	}
	var buf bytes.Buffer
	s.print(&buf)
	out := buf.String()
	if !strings.Contains(out, "events=5") || !strings.Contains(out, "STRUCTURE_PLACED=3") || !strings.Contains(out, "placed_since_reset=1") {
		t.Fatalf("summary:\n%s", out)
	}
}

func TestFilter(t *testing.T) {
	f := filter{from: 10, to: 20, types: parseTypes("death, reset")}
	cases := []struct {
		e    game.Event
		want bool
	}{
		{game.Event{Tick: 9, Type: game.EventDeath}, false},
		{game.Event{Tick: 10, Type: game.EventDeath}, true},
		{game.Event{Tick: 20, Type: game.EventReset}, true},
		{game.Event{Tick: 21, Type: game.EventReset}, false},
		{game.Event{Tick: 15, Type: game.EventPlaced}, false},
	}
	for _, c := range cases {
		if got := f.match(c.e); got != c.want {
			t.Fatalf("match(%+v)=%v want %v", c.e, got, c.want)
		}
	}
	if !(filter{}).match(game.Event{Tick: 99, Type: "X"}) {
		t.Fatalf("empty filter should match everything")
	}
}
