package savefile

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"wildscrap.game/internal/persistence/archive"
	"wildscrap.game/internal/persistence/save"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	Slot    int64  `json:"slot"`
	SavedAt string `json:"saved_at"`
}

// Store keeps one zstd-compressed file per slot: a JSON header line followed
// by the JSON snapshot. Upserts are serialized so the temp file, archive and
// rename of one save never interleave with another.
type Store struct {
	dir  string
	keep int

	mu sync.Mutex
}

var _ save.Store = (*Store)(nil)

func New(dir string) *Store { return &Store{dir: dir} }

// WithArchive keeps up to keep previous versions of each slot under
// dir/archives when a save overwrites it.
func (s *Store) WithArchive(keep int) *Store {
	s.keep = keep
	return s
}

func (s *Store) PathForSlot(slot int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("slot-%d.save.zst", slot))
}

func (s *Store) Upsert(ctx context.Context, slot int64, snap save.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.Structures == nil {
		snap.Structures = []save.StructureV1{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PathForSlot(slot)
	tmp := path + ".tmp"
	hdr := Header{Version: Version, Slot: slot, SavedAt: time.Now().UTC().Format(time.RFC3339Nano)}
	if err := WriteFile(tmp, hdr, snap); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write slot %d: %w", slot, err)
	}
	if _, _, err := archive.ArchiveSlotFile(s.dir, path, slot, s.keep, time.Now()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("archive slot %d: %w", slot, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write slot %d: %w", slot, err)
	}
	return nil
}

func (s *Store) Fetch(ctx context.Context, slot int64) (save.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return save.Snapshot{}, err
	}
	_, snap, err := ReadFile(s.PathForSlot(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return save.Snapshot{}, save.ErrNotFound
	}
	if err != nil {
		return save.Snapshot{}, fmt.Errorf("read slot %d: %w", slot, err)
	}
	return snap, nil
}

func WriteFile(path string, hdr Header, snap save.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)

	hb, _ := json.Marshal(hdr)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func ReadFile(path string) (Header, save.Snapshot, error) {
	var (
		hdr  Header
		snap save.Snapshot
	)
	f, err := os.Open(path)
	if err != nil {
		return hdr, snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, snap, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, snap, fmt.Errorf("header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, snap, fmt.Errorf("header: %w", err)
	}
	if hdr.Version != Version {
		return hdr, snap, fmt.Errorf("unsupported save version %d", hdr.Version)
	}
	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return hdr, snap, fmt.Errorf("json decode: %w", err)
	}
	return hdr, snap, nil
}
