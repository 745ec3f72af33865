package savedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"wildscrap.game/internal/persistence/save"
)

// SQLiteStore is the save-slot row store. One row per slot; writes replace the row.
type SQLiteStore struct {
	db *sql.DB
}

var _ save.Store = (*SQLiteStore)(nil)

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS saves (
			id INTEGER PRIMARY KEY,
			hp REAL NOT NULL,
			inventory_json TEXT NOT NULL,
			structures_json TEXT NOT NULL,
			structures INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Upsert(ctx context.Context, slot int64, snap save.Snapshot) error {
	if snap.Structures == nil {
		snap.Structures = []save.StructureV1{}
	}
	inv, err := json.Marshal(snap.Inventory)
	if err != nil {
		return err
	}
	sts, err := json.Marshal(snap.Structures)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO saves(id,hp,inventory_json,structures_json,structures,updated_at) VALUES(?,?,?,?,?,?)`,
		slot, snap.HP, string(inv), string(sts), len(snap.Structures), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert slot %d: %w", slot, err)
	}
	return nil
}

func (s *SQLiteStore) Fetch(ctx context.Context, slot int64) (save.Snapshot, error) {
	var (
		snap     save.Snapshot
		inv, sts string
	)
	row := s.db.QueryRowContext(ctx, `SELECT hp,inventory_json,structures_json FROM saves WHERE id=?`, slot)
	if err := row.Scan(&snap.HP, &inv, &sts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return save.Snapshot{}, save.ErrNotFound
		}
		return save.Snapshot{}, fmt.Errorf("fetch slot %d: %w", slot, err)
	}
	if err := json.Unmarshal([]byte(inv), &snap.Inventory); err != nil {
		return save.Snapshot{}, fmt.Errorf("slot %d inventory: %w", slot, err)
	}
	if err := json.Unmarshal([]byte(sts), &snap.Structures); err != nil {
		return save.Snapshot{}, fmt.Errorf("slot %d structures: %w", slot, err)
	}
	return snap, nil
}

// SlotInfo is row metadata for admin listings.
type SlotInfo struct {
	ID         int64   `json:"id"`
	HP         float64 `json:"hp"`
	Structures int     `json:"structures"`
	UpdatedAt  string  `json:"updated_at"`
}

func (s *SQLiteStore) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,hp,structures,updated_at FROM saves ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SlotInfo
	for rows.Next() {
		var r SlotInfo
		if err := rows.Scan(&r.ID, &r.HP, &r.Structures, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete empties a slot. Deleting an empty slot is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, slot int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE id=?`, slot)
	return err
}
