package tuning

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	Survival Survival `yaml:"survival"`
	Start    Start    `yaml:"start"`
	Player   Player   `yaml:"player"`
	Build    Build    `yaml:"build"`
	WorldGen WorldGen `yaml:"world_gen"`
	Enemies  Enemies  `yaml:"enemies"`
	Persist  Persist  `yaml:"persistence"`
}

// Survival rates are applied once per tick.
type Survival struct {
	HungerDecay      float64 `yaml:"hunger_decay"`
	ThirstDecay      float64 `yaml:"thirst_decay"`
	StarvationDamage float64 `yaml:"starvation_damage"`
	TimeDecay        float64 `yaml:"time_decay"`
}

type Start struct {
	HP     float64 `yaml:"hp"`
	Hunger float64 `yaml:"hunger"`
	Thirst float64 `yaml:"thirst"`
	Time   float64 `yaml:"time"`
	Build  string  `yaml:"build_item"`
}

type Player struct {
	Speed      float64 `yaml:"speed"`
	LookScale  float64 `yaml:"look_scale"`
	MeleeRange float64 `yaml:"melee_range"`
}

type Build struct {
	Reach    float64 `yaml:"reach"`
	GridSize float64 `yaml:"grid_size"`
}

type WorldGen struct {
	Seed        int64   `yaml:"seed"`
	Trees       int     `yaml:"trees"`
	TreeSpread  float64 `yaml:"tree_spread"`
	Rocks       int     `yaml:"rocks"`
	RockSpread  float64 `yaml:"rock_spread"`
	Scrap       int     `yaml:"scrap"`
	ScrapSpread float64 `yaml:"scrap_spread"`
	NodeRadius  float64 `yaml:"node_radius"`
}

type Enemies struct {
	Spawns     [][3]float64 `yaml:"spawns"`
	AggroRange float64      `yaml:"aggro_range"`
	BiteRange  float64      `yaml:"bite_range"`
	Speed      float64      `yaml:"speed"`
	BiteDamage float64      `yaml:"bite_damage"`
	BiteChance float64      `yaml:"bite_chance"`
}

type Persist struct {
	SlotID          int64 `yaml:"slot_id"`
	FenceStaleLoads bool  `yaml:"fence_stale_loads"`
	TimeoutMs       int   `yaml:"timeout_ms"`
}

// Defaults mirrors configs/tuning.yaml.
func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      60,
		Survival: Survival{
			HungerDecay:      0.005,
			ThirstDecay:      0.008,
			StarvationDamage: 0.1,
			TimeDecay:        0.005,
		},
		Start: Start{HP: 100, Hunger: 100, Thirst: 100, Time: 8, Build: "wall"},
		Player: Player{
			Speed:      10,
			LookScale:  0.05,
			MeleeRange: 4,
		},
		Build: Build{Reach: 4, GridSize: 2},
		WorldGen: WorldGen{
			Seed:        1337,
			Trees:       30,
			TreeSpread:  80,
			Rocks:       20,
			RockSpread:  80,
			Scrap:       15,
			ScrapSpread: 60,
			NodeRadius:  0.5,
		},
		Enemies: Enemies{
			Spawns:     [][3]float64{{10, 0, 10}},
			AggroRange: 20,
			BiteRange:  1.5,
			Speed:      3,
			BiteDamage: 5,
			BiteChance: 0.05,
		},
		Persist: Persist{SlotID: 1, FenceStaleLoads: true, TimeoutMs: 5000},
	}
}

// Load reads a tuning file on top of Defaults, so a partial file only overrides what it names.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 || t.TickRateHz > 1000 {
		return fmt.Errorf("tick_rate_hz out of range: %d", t.TickRateHz)
	}
	rates := map[string]float64{
		"hunger_decay":      t.Survival.HungerDecay,
		"thirst_decay":      t.Survival.ThirstDecay,
		"starvation_damage": t.Survival.StarvationDamage,
		"time_decay":        t.Survival.TimeDecay,
	}
	for name, v := range rates {
		if v < 0 {
			return fmt.Errorf("survival.%s must be >= 0", name)
		}
		if v > 0 && Milli(v) == 0 {
			return fmt.Errorf("survival.%s below resolution (0.001): %v", name, v)
		}
	}
	for name, v := range map[string]float64{"hp": t.Start.HP, "hunger": t.Start.Hunger, "thirst": t.Start.Thirst} {
		if v <= 0 || v > 100 {
			return fmt.Errorf("start.%s must be in (0,100]", name)
		}
	}
	if t.Start.Time < 0 || t.Start.Time >= 24 {
		return fmt.Errorf("start.time must be in [0,24)")
	}
	if t.Enemies.BiteChance < 0 || t.Enemies.BiteChance > 1 {
		return fmt.Errorf("enemies.bite_chance must be in [0,1]")
	}
	if t.Persist.SlotID <= 0 {
		return fmt.Errorf("persistence.slot_id must be > 0")
	}
	return nil
}

// Milli converts a tuning value to thousandths, the fixed-point unit used by the sim.
func Milli(v float64) int {
	return int(math.Round(v * 1000))
}
