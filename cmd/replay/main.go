package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	persistlog "wildscrap.game/internal/persistence/log"
	"wildscrap.game/internal/persistence/savefile"
	"wildscrap.game/internal/sim/game"
)

func main() {
	var (
		eventsDir = flag.String("events", "./data/events", "events dir containing events-*.jsonl.zst")
		savePath  = flag.String("save", "", "path to a .save.zst to compare against (optional)")
		fromTick  = flag.Uint64("from_tick", 0, "first tick to print (inclusive)")
		toTick    = flag.Uint64("to_tick", 0, "last tick to print (inclusive, 0 = no limit)")
		types     = flag.String("type", "", "comma-separated event types to print (default all)")
		quiet     = flag.Bool("quiet", false, "print only the summary")
	)
	flag.Parse()

	files, err := persistlog.ListFiles(*eventsDir, "events")
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no event files in", *eventsDir)
		os.Exit(1)
	}

	f := filter{from: *fromTick, to: *toTick, types: parseTypes(*types)}
	sum := newSummary()
	out := io.Writer(os.Stdout)
	if *quiet {
		out = io.Discard
	}
	for _, path := range files {
		err := persistlog.ReadEvents(path, func(e game.Event) error {
			sum.add(e)
			if f.match(e) {
				b, _ := json.Marshal(e)
				fmt.Fprintf(out, "%s %s\n", filepath.Base(path), b)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "read events:", err)
			os.Exit(1)
		}
	}
	sum.print(os.Stdout)

	if *savePath == "" {
		return
	}
	hdr, snap, err := savefile.ReadFile(*savePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read save:", err)
		os.Exit(1)
	}
	fmt.Printf("save slot=%d saved_at=%s hp=%.1f structures=%d\n", hdr.Slot, hdr.SavedAt, snap.HP, len(snap.Structures))
	if sum.lastSaved == nil {
		fmt.Println("journal has no SAVED event to compare")
		return
	}
	last := sum.lastSaved
	if last.SavedHP == nil || *last.SavedHP != snap.HP || last.Structures != len(snap.Structures) {
		fmt.Printf("MISMATCH: last SAVED at tick %d does not describe the save file\n", last.Tick)
		os.Exit(1)
	}
	fmt.Printf("OK: last SAVED at tick %d matches save file\n", sum.lastSaved.Tick)
}

type filter struct {
	from, to uint64
	types    map[string]bool
}

func parseTypes(s string) map[string]bool {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	m := map[string]bool{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			m[t] = true
		}
	}
	return m
}

func (f filter) match(e game.Event) bool {
	if e.Tick < f.from || (f.to != 0 && e.Tick > f.to) {
		return false
	}
	return f.types == nil || f.types[e.Type]
}

// summary counts journal events and tracks the structures placed since the
// last reset or load.
type summary struct {
	counts    map[string]int
	total     int
	placed    []string
	lastSaved *game.Event
}

func newSummary() *summary { return &summary{counts: map[string]int{}} }

func (s *summary) add(e game.Event) {
	s.total++
	s.counts[e.Type]++
	switch e.Type {
	case game.EventPlaced:
		s.placed = append(s.placed, e.ID)
	case game.EventReset, game.EventLoaded:
		s.placed = s.placed[:0]
	case game.EventSaved:
		ev := e
		s.lastSaved = &ev
	}
}

func (s *summary) print(w io.Writer) {
	types := make([]string, 0, len(s.counts))
	for t := range s.counts {
		types = append(types, t)
	}
	sort.Strings(types)
	fmt.Fprintf(w, "events=%d", s.total)
	for _, t := range types {
		fmt.Fprintf(w, " %s=%d", t, s.counts[t])
	}
	fmt.Fprintf(w, "\nplaced_since_reset=%d\n", len(s.placed))
}
