package savefile

import (
	"context"
	"errors"
	"os"
	"reflect"
	"sync"
	"testing"

	"wildscrap.game/internal/persistence/archive"
	"wildscrap.game/internal/persistence/save"
	"wildscrap.game/internal/sim/inventory"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())

	if _, err := s.Fetch(ctx, save.DefaultSlot); !errors.Is(err, save.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	snap := save.Snapshot{
		HP:         41.9,
		Inventory:  inventory.Counts{Stone: 4, Water: 2},
		Structures: []save.StructureV1{{ID: "x", Position: [3]float64{0, 0, -4}, Kind: "shelter", Rotation: 3.141592653589793}},
	}
	if err := s.Upsert(ctx, save.DefaultSlot, snap); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.Fetch(ctx, save.DefaultSlot)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("got %+v want %+v", got, snap)
	}

	hdr, _, err := ReadFile(s.PathForSlot(save.DefaultSlot))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if hdr.Version != Version || hdr.Slot != save.DefaultSlot || hdr.SavedAt == "" {
		t.Fatalf("header: %+v", hdr)
	}
	if _, err := os.Stat(s.PathForSlot(save.DefaultSlot) + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestStore_CorruptFileIsAnError(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir())
	if err := os.WriteFile(s.PathForSlot(2), []byte("not zstd"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := s.Fetch(ctx, 2)
	if err == nil || errors.Is(err, save.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestStore_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	s := New(t.TempDir()).WithArchive(3)

	const writers = 8
	written := map[float64]bool{}
	for round := 0; round < 10; round++ {
		errs := make(chan error, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			hp := float64(round*writers + i + 1)
			written[hp] = true
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.Upsert(ctx, save.DefaultSlot, save.Snapshot{HP: hp})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("round %d: upsert: %v", round, err)
			}
		}
		got, err := s.Fetch(ctx, save.DefaultSlot)
		if err != nil {
			t.Fatalf("round %d: fetch: %v", round, err)
		}
		if !written[got.HP] {
			t.Fatalf("round %d: slot holds hp=%v, never written", round, got.HP)
		}
	}
}

func TestStore_ArchivesPreviousVersions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(dir).WithArchive(2)

	for _, hp := range []float64{10, 20, 30, 40} {
		if err := s.Upsert(ctx, save.DefaultSlot, save.Snapshot{HP: hp}); err != nil {
			t.Fatalf("upsert %v: %v", hp, err)
		}
	}
	files, err := archive.List(dir, save.DefaultSlot)
	if err != nil {
		t.Fatalf("list archives: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("archives=%d want 2", len(files))
	}
	_, oldest, err := ReadFile(files[0])
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if oldest.HP != 20 {
		t.Fatalf("oldest archived hp=%v want 20", oldest.HP)
	}
	cur, err := s.Fetch(ctx, save.DefaultSlot)
	if err != nil || cur.HP != 40 {
		t.Fatalf("current=%+v err=%v", cur, err)
	}
}
