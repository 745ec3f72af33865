package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"wildscrap.game/internal/persistence/save"
	"wildscrap.game/internal/persistence/savedb"
	"wildscrap.game/internal/persistence/savefile"
)

type saveBackend interface {
	save.Store
	Close() error
}

type nopCloser struct{ save.Store }

func (nopCloser) Close() error { return nil }

// openSaveBackend picks the row store behind save/load. archiveKeep only
// applies to the file backend.
func openSaveBackend(kind, dataDir string, archiveKeep int, logger *log.Logger) (saveBackend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "sqlite":
		path := filepath.Join(dataDir, "saves.sqlite")
		db, err := savedb.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		logger.Printf("save backend: sqlite path=%s", path)
		return db, nil
	case "file":
		dir := filepath.Join(dataDir, "saves")
		logger.Printf("save backend: file dir=%s archive_keep=%d", dir, archiveKeep)
		return nopCloser{savefile.New(dir).WithArchive(archiveKeep)}, nil
	case "memory", "none":
		logger.Printf("save backend: memory (saves are lost on exit)")
		return nopCloser{save.NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unknown save backend %q (want sqlite|file|memory)", kind)
	}
}

// loggingStore logs every persistence round trip.
type loggingStore struct {
	save.Store
	logger *log.Logger
}

func (s loggingStore) Upsert(ctx context.Context, slot int64, snap save.Snapshot) error {
	err := s.Store.Upsert(ctx, slot, snap)
	if err == nil {
		s.logger.Printf("saved slot=%d hp=%.1f structures=%d", slot, snap.HP, len(snap.Structures))
	}
	return err
}

func (s loggingStore) Fetch(ctx context.Context, slot int64) (save.Snapshot, error) {
	snap, err := s.Store.Fetch(ctx, slot)
	if err == nil {
		s.logger.Printf("loaded slot=%d hp=%.1f structures=%d", slot, snap.HP, len(snap.Structures))
	}
	return snap, err
}
