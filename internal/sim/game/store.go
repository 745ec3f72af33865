package game

import (
	"github.com/google/uuid"

	"wildscrap.game/internal/persistence/save"
	"wildscrap.game/internal/sim/build"
	"wildscrap.game/internal/sim/inventory"
	"wildscrap.game/internal/sim/mathx"
	"wildscrap.game/internal/sim/survival"
	"wildscrap.game/internal/sim/tuning"
)

type Config struct {
	Rates survival.Rates

	StartHPMilli     int
	StartHungerMilli int
	StartThirstMilli int
	StartClockMilli  int
	StartBuildKind   build.Kind

	// NewID mints structure ids. Defaults to random UUIDs.
	NewID func() string
}

func ConfigFromTuning(t tuning.Tuning) Config {
	return Config{
		Rates:            survival.RatesFromTuning(t.Survival),
		StartHPMilli:     tuning.Milli(t.Start.HP),
		StartHungerMilli: tuning.Milli(t.Start.Hunger),
		StartThirstMilli: tuning.Milli(t.Start.Thirst),
		StartClockMilli:  tuning.Milli(t.Start.Time),
		StartBuildKind:   build.Kind(t.Start.Build),
	}
}

func (c *Config) applyDefaults() {
	if c.StartHPMilli <= 0 {
		c.StartHPMilli = survival.MaxMilli
	}
	if c.StartHungerMilli <= 0 {
		c.StartHungerMilli = survival.MaxMilli
	}
	if c.StartThirstMilli <= 0 {
		c.StartThirstMilli = survival.MaxMilli
	}
	if c.StartClockMilli < 0 || c.StartClockMilli >= survival.DayMilli {
		c.StartClockMilli = 0
	}
	if !c.StartBuildKind.Valid() {
		c.StartBuildKind = build.Wall
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
}

// Store is the survival state container. It has a single owner: every method
// must be called from the same goroutine (the Loop, or a test). Each mutator
// applies as one step; no mutator fails.
type Store struct {
	cfg Config

	vitals     survival.Vitals
	clock      int
	inv        inventory.Inventory
	build      build.State
	structures []build.Structure
}

func NewStore(cfg Config) *Store {
	cfg.applyDefaults()
	s := &Store{cfg: cfg}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.vitals = survival.NewVitals(s.cfg.StartHPMilli, s.cfg.StartHungerMilli, s.cfg.StartThirstMilli)
	s.clock = s.cfg.StartClockMilli
	s.inv = inventory.Inventory{}
	for _, r := range inventory.All {
		s.inv[r] = 0
	}
	s.build = build.NewState(s.cfg.StartBuildKind)
	s.structures = nil
}

// Tick advances survival by one step. It is a no-op once dead.
func (s *Store) Tick() {
	s.vitals, s.clock = survival.Tick(s.vitals, s.clock, s.cfg.Rates)
}

func (s *Store) AddItem(r inventory.Resource, amount int)    { s.inv.Add(r, amount) }
func (s *Store) RemoveItem(r inventory.Resource, amount int) { s.inv.Remove(r, amount) }

// TakeDamage applies damage even when already dead; hp floors at zero.
// Damage resolves to 0.001 hp, so amounts below 0.0005 have no effect.
func (s *Store) TakeDamage(amount float64) {
	s.vitals = survival.TakeDamage(s.vitals, survival.DamageMilli(amount))
}

func (s *Store) ToggleBuildMode()         { s.build = s.build.Toggle() }
func (s *Store) SetBuildItem(k build.Kind) { s.build = s.build.Select(k) }
func (s *Store) RotateStructure()         { s.build = s.build.Rotate() }

// AddStructure places kind at pos using the current build rotation.
func (s *Store) AddStructure(pos mathx.Vec3, kind build.Kind) (build.Structure, bool) {
	return s.AddStructureRotated(pos, kind, s.build.Radians())
}

// AddStructureRotated places kind at pos with an explicit rotation. There is no
// cost, collision or occupancy check; only an unknown kind is refused.
func (s *Store) AddStructureRotated(pos mathx.Vec3, kind build.Kind, rotation float64) (build.Structure, bool) {
	if !kind.Valid() {
		return build.Structure{}, false
	}
	st := build.Structure{
		ID:       s.newStructureID(),
		Position: pos,
		Kind:     kind,
		Rotation: build.NormalizeRadians(rotation),
	}
	s.structures = append(s.structures, st)
	return st, true
}

func (s *Store) newStructureID() string {
	for {
		id := s.cfg.NewID()
		if id != "" && !s.hasStructure(id) {
			return id
		}
	}
}

func (s *Store) hasStructure(id string) bool {
	for _, st := range s.structures {
		if st.ID == id {
			return true
		}
	}
	return false
}

// ResetGame restores vitals, clock, inventory, build state and structures.
func (s *Store) ResetGame() { s.reset() }

// Snapshot captures the persisted subset: hp, inventory, structures.
func (s *Store) Snapshot() save.Snapshot {
	return save.Snapshot{
		HP:         s.vitals.HP(),
		Inventory:  s.inv.Counts(),
		Structures: save.EncodeStructures(s.structures),
	}
}

// ApplySnapshot replaces hp, inventory and structures together. A snapshot that
// fails validation leaves the store untouched. Hunger, thirst, clock and build
// state are never changed by a load.
func (s *Store) ApplySnapshot(snap save.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	s.vitals = survival.WithHP(s.vitals, tuning.Milli(snap.HP))
	s.inv = inventory.FromCounts(snap.Inventory)
	s.structures = save.DecodeStructures(snap.Structures)
	return nil
}

func (s *Store) Vitals() survival.Vitals { return s.vitals }
func (s *Store) Dead() bool             { return s.vitals.Dead }
func (s *Store) BuildState() build.State { return s.build }
func (s *Store) Hours() float64         { return float64(s.clock) / 1000 }

// View returns a read-only copy of the state. Structures share the store's
// backing array up to the current length; records are never mutated in place.
func (s *Store) View() View {
	return View{
		HP:                s.vitals.HP(),
		Hunger:            s.vitals.Hunger(),
		Thirst:            s.vitals.Thirst(),
		IsDead:            s.vitals.Dead,
		Inventory:         s.inv.Counts(),
		Structures:        s.structures[:len(s.structures):len(s.structures)],
		IsBuildMode:       s.build.BuildMode,
		SelectedBuildKind: s.build.Selected,
		BuildRotation:     s.build.Radians(),
		Time:              s.Hours(),
		Daylight:          survival.DaylightAt(s.Hours()),
	}
}

// View is what renderers and the HUD read each frame.
type View struct {
	HP                float64           `json:"hp"`
	Hunger            float64           `json:"hunger"`
	Thirst            float64           `json:"thirst"`
	IsDead            bool              `json:"is_dead"`
	Inventory         inventory.Counts  `json:"inventory"`
	Structures        []build.Structure `json:"structures"`
	IsBuildMode       bool              `json:"is_build_mode"`
	SelectedBuildKind build.Kind        `json:"selected_build_kind"`
	BuildRotation     float64           `json:"build_rotation"`
	Time              float64           `json:"time"`
	Daylight          survival.Daylight `json:"daylight"`
}
