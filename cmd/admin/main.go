package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wildscrap.game/internal/persistence/archive"
	"wildscrap.game/internal/persistence/save"
	"wildscrap.game/internal/persistence/savedb"
	"wildscrap.game/internal/persistence/savefile"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "show":
			showCmd(os.Args[2:])
			return
		case "clear":
			clearCmd(os.Args[2:])
			return
		case "export":
			exportCmd(os.Args[2:])
			return
		case "import":
			importCmd(os.Args[2:])
			return
		case "archives":
			archivesCmd(os.Args[2:])
			return
		case "decode":
			decodeCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "save", "load":
			persistCmd(os.Args[1], os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func openDB(dataDir, dbPath string) *savedb.SQLiteStore {
	path := strings.TrimSpace(dbPath)
	if path == "" {
		path = filepath.Join(dataDir, "saves.sqlite")
	}
	db, err := savedb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return db
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	_ = fs.Parse(args)

	db := openDB(*dataDir, *dbPath)
	defer db.Close()
	slots, err := db.List(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}
	if len(slots) == 0 {
		fmt.Println("no saves")
	}
	for _, s := range slots {
		fmt.Printf("slot=%d hp=%.1f structures=%d updated=%s\n", s.ID, s.HP, s.Structures, s.UpdatedAt)
	}
}

func showCmd(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	slot := fs.Int64("slot", save.DefaultSlot, "save slot id")
	_ = fs.Parse(args)

	db := openDB(*dataDir, *dbPath)
	defer db.Close()
	snap, err := db.Fetch(context.Background(), *slot)
	if errors.Is(err, save.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "slot %d is empty\n", *slot)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "fetch:", err)
		os.Exit(1)
	}
	printJSON(snap)
}

func clearCmd(args []string) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	slot := fs.Int64("slot", save.DefaultSlot, "save slot id")
	_ = fs.Parse(args)

	db := openDB(*dataDir, *dbPath)
	defer db.Close()
	if err := db.Delete(context.Background(), *slot); err != nil {
		fmt.Fprintln(os.Stderr, "delete:", err)
		os.Exit(1)
	}
	fmt.Printf("cleared slot %d\n", *slot)
}

// exportCmd copies a sqlite slot into a standalone save file.
func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	slot := fs.Int64("slot", save.DefaultSlot, "save slot id")
	out := fs.String("out", "", "output .save.zst path (required)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*out) == "" {
		fmt.Fprintln(os.Stderr, "missing -out")
		os.Exit(2)
	}
	db := openDB(*dataDir, *dbPath)
	defer db.Close()
	snap, err := db.Fetch(context.Background(), *slot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fetch:", err)
		os.Exit(1)
	}
	hdr := savefile.Header{Version: savefile.Version, Slot: *slot, SavedAt: time.Now().UTC().Format(time.RFC3339Nano)}
	if err := savefile.WriteFile(*out, hdr, snap); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	fmt.Printf("exported slot %d to %s\n", *slot, *out)
}

// importCmd validates a save file and writes it into a sqlite slot.
func importCmd(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	slot := fs.Int64("slot", save.DefaultSlot, "save slot id")
	in := fs.String("in", "", "input .save.zst path (required)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*in) == "" {
		fmt.Fprintln(os.Stderr, "missing -in")
		os.Exit(2)
	}
	_, snap, err := savefile.ReadFile(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	if err := snap.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid save:", err)
		os.Exit(1)
	}
	db := openDB(*dataDir, *dbPath)
	defer db.Close()
	if err := db.Upsert(context.Background(), *slot, snap); err != nil {
		fmt.Fprintln(os.Stderr, "upsert:", err)
		os.Exit(1)
	}
	fmt.Printf("imported %s into slot %d\n", *in, *slot)
}

// archivesCmd lists previous versions kept by the file backend.
func archivesCmd(args []string) {
	fs := flag.NewFlagSet("archives", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	slot := fs.Int64("slot", save.DefaultSlot, "save slot id")
	_ = fs.Parse(args)

	files, err := archive.List(filepath.Join(*dataDir, "saves"), *slot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list archives:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("no archives for slot %d\n", *slot)
	}
	for _, f := range files {
		hdr, snap, err := savefile.ReadFile(f)
		if err != nil {
			fmt.Printf("%s unreadable: %v\n", f, err)
			continue
		}
		fmt.Printf("%s saved_at=%s hp=%.1f structures=%d\n", f, hdr.SavedAt, snap.HP, len(snap.Structures))
	}
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: admin decode <file.save.zst>")
		os.Exit(2)
	}
	hdr, snap, err := savefile.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	printJSON(struct {
		Header   savefile.Header `json:"header"`
		Snapshot save.Snapshot   `json:"snapshot"`
	}{hdr, snap})
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
