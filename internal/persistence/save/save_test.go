package save

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"wildscrap.game/internal/sim/build"
	"wildscrap.game/internal/sim/inventory"
	"wildscrap.game/internal/sim/mathx"
)

func sample() Snapshot {
	return Snapshot{
		HP:        72.5,
		Inventory: inventory.Counts{Wood: 3, Stone: 1},
		Structures: []StructureV1{
			{ID: "s-1", Position: [3]float64{2, 0, -4}, Kind: "wall", Rotation: 1.5707963267948966},
			{ID: "s-2", Position: [3]float64{4, 0, -4}, Kind: "floor", Rotation: 0},
		},
	}
}

func TestSnapshot_MatchesSchema(t *testing.T) {
	schema, err := jsonschema.Compile(filepath.Join("..", "..", "..", "schemas", "save.schema.json"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := json.Marshal(sample())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := schema.Validate(v); err != nil {
		t.Fatalf("validate: %v", err)
	}

	var bad any
	_ = json.Unmarshal([]byte(`{"hp":10,"inventory":{"wood":-1,"stone":0,"scrap":0,"water":0},"structures":[]}`), &bad)
	if err := schema.Validate(bad); err == nil {
		t.Fatalf("expected negative count to fail schema")
	}
}

func TestSnapshot_Validate(t *testing.T) {
	if err := sample().Validate(); err != nil {
		t.Fatalf("valid sample rejected: %v", err)
	}
	s := sample()
	s.HP = 101
	if err := s.Validate(); err == nil {
		t.Fatalf("expected hp error")
	}
	s = sample()
	s.Structures[1].ID = "s-1"
	if err := s.Validate(); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	s = sample()
	s.Structures[0].Kind = "tower"
	if err := s.Validate(); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestStructures_Convert(t *testing.T) {
	in := []build.Structure{{ID: "a", Position: mathx.V(1, 2, 3), Kind: build.Ramp, Rotation: build.QuarterTurn}}
	out := DecodeStructures(EncodeStructures(in))
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("got %+v want %+v", out, in)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if _, err := m.Fetch(ctx, DefaultSlot); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	snap := sample()
	if err := m.Upsert(ctx, DefaultSlot, snap); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	snap.Structures[0].ID = "mutated"
	got, err := m.Fetch(ctx, DefaultSlot)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Structures[0].ID != "s-1" {
		t.Fatalf("store aliases caller slice")
	}
}
