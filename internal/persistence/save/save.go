// Package save defines the persisted save-slot record and the store contract
// its backends implement.
package save

import (
	"context"
	"errors"
	"fmt"
	"math"

	"wildscrap.game/internal/sim/build"
	"wildscrap.game/internal/sim/inventory"
)

// DefaultSlot is the single save slot the game reads and writes.
const DefaultSlot int64 = 1

var ErrNotFound = errors.New("save slot not found")

// Snapshot is the persisted subset of game state.
type Snapshot struct {
	HP         float64          `json:"hp"`
	Inventory  inventory.Counts `json:"inventory"`
	Structures []StructureV1    `json:"structures"`
}

type StructureV1 struct {
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Kind     string     `json:"kind"`
	Rotation float64    `json:"rotation"`
}

// Store is a row store keyed by slot id. Upsert inserts or replaces the row;
// Fetch returns ErrNotFound when the slot is empty.
type Store interface {
	Upsert(ctx context.Context, slot int64, snap Snapshot) error
	Fetch(ctx context.Context, slot int64) (Snapshot, error)
}

// Validate rejects records that cannot be applied to live state.
func (s Snapshot) Validate() error {
	if math.IsNaN(s.HP) || s.HP < 0 || s.HP > 100 {
		return fmt.Errorf("hp out of range: %v", s.HP)
	}
	c := s.Inventory
	if c.Wood < 0 || c.Stone < 0 || c.Scrap < 0 || c.Water < 0 {
		return fmt.Errorf("negative inventory count")
	}
	seen := make(map[string]struct{}, len(s.Structures))
	for i, st := range s.Structures {
		if st.ID == "" {
			return fmt.Errorf("structures[%d]: empty id", i)
		}
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("structures[%d]: duplicate id %q", i, st.ID)
		}
		seen[st.ID] = struct{}{}
		if !build.Kind(st.Kind).Valid() {
			return fmt.Errorf("structures[%d]: unknown kind %q", i, st.Kind)
		}
	}
	return nil
}
