package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type SlotArchiveMeta struct {
	Slot      int64  `json:"slot"`
	Source    string `json:"source"`
	Latest    string `json:"latest"`
	CreatedAt string `json:"created_at"`
	Kept      int    `json:"kept"`
}

// ArchiveSlotFile copies the current save file for a slot into
// `saveDir/archives/slot_<N>/` before it gets overwritten, keeping at most
// keep copies (oldest removed first). A missing source is not an error.
func ArchiveSlotFile(saveDir, src string, slot int64, keep int, now time.Time) (archivedPath string, archived bool, err error) {
	if keep <= 0 {
		return "", false, nil
	}
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}

	dir := SlotDir(saveDir, slot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, err
	}
	dst := filepath.Join(dir, now.UTC().Format("20060102T150405.000000000Z")+".save.zst")
	if err := copyFile(src, dst); err != nil {
		return "", false, err
	}

	kept, err := prune(dir, keep)
	if err != nil {
		return dst, true, err
	}
	meta := SlotArchiveMeta{
		Slot:      slot,
		Source:    filepath.Base(src),
		Latest:    filepath.Base(dst),
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
		Kept:      kept,
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644)
	}
	return dst, true, nil
}

func SlotDir(saveDir string, slot int64) string {
	return filepath.Join(saveDir, "archives", fmt.Sprintf("slot_%03d", slot))
}

// List returns the archived copies for a slot, oldest first.
func List(saveDir string, slot int64) ([]string, error) {
	dir := SlotDir(saveDir, slot)
	names, err := archivedNames(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// archivedNames sorts oldest first since names are UTC timestamps.
func archivedNames(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range ents {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".save.zst") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func prune(dir string, keep int) (int, error) {
	names, err := archivedNames(dir)
	if err != nil {
		return 0, err
	}
	for len(names) > keep {
		if err := os.Remove(filepath.Join(dir, names[0])); err != nil {
			return len(names), err
		}
		names = names[1:]
	}
	return len(names), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
