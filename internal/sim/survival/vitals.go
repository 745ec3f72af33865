package survival

import (
	"math"

	"wildscrap.game/internal/sim/tuning"
)

// Vitals and the clock are kept in thousandths so that long tick sequences
// stay exact (100 - 12500*0.005 is exactly 37.5, not 37.50000000001).
const (
	MaxMilli = 100_000
	DayMilli = 24_000
)

type Vitals struct {
	HPMilli     int
	HungerMilli int
	ThirstMilli int
	Dead        bool
}

// Rates are the per-tick decrements, in thousandths.
type Rates struct {
	HungerDecay      int
	ThirstDecay      int
	StarvationDamage int
	TimeDecay        int
}

func RatesFromTuning(s tuning.Survival) Rates {
	return Rates{
		HungerDecay:      tuning.Milli(s.HungerDecay),
		ThirstDecay:      tuning.Milli(s.ThirstDecay),
		StarvationDamage: tuning.Milli(s.StarvationDamage),
		TimeDecay:        tuning.Milli(s.TimeDecay),
	}
}

func NewVitals(hpMilli, hungerMilli, thirstMilli int) Vitals {
	v := Vitals{
		HPMilli:     clampMilli(hpMilli),
		HungerMilli: clampMilli(hungerMilli),
		ThirstMilli: clampMilli(thirstMilli),
	}
	v.Dead = v.HPMilli == 0
	return v
}

func (v Vitals) HP() float64     { return float64(v.HPMilli) / 1000 }
func (v Vitals) Hunger() float64 { return float64(v.HungerMilli) / 1000 }
func (v Vitals) Thirst() float64 { return float64(v.ThirstMilli) / 1000 }

// Starving reports whether either meter is empty.
func (v Vitals) Starving() bool {
	return v.HungerMilli == 0 || v.ThirstMilli == 0
}

// Tick applies one survival step and advances the clock. Death is absorbing:
// a dead Vitals and its clock come back unchanged.
func Tick(v Vitals, clockMilli int, r Rates) (Vitals, int) {
	if v.Dead {
		return v, clockMilli
	}
	v.HungerMilli = floorZero(v.HungerMilli - r.HungerDecay)
	v.ThirstMilli = floorZero(v.ThirstMilli - r.ThirstDecay)
	if v.Starving() {
		v.HPMilli = floorZero(v.HPMilli - r.StarvationDamage)
	}
	clockMilli = AdvanceClock(clockMilli, r.TimeDecay)
	v.Dead = v.HPMilli == 0
	return v, clockMilli
}

// TakeDamage subtracts hp regardless of Dead; hp never goes below zero.
func TakeDamage(v Vitals, amountMilli int) Vitals {
	if amountMilli < 0 {
		amountMilli = 0
	}
	v.HPMilli = floorZero(v.HPMilli - amountMilli)
	v.Dead = v.HPMilli == 0
	return v
}

// DamageMilli converts a damage amount to thousandths. NaN and negative
// amounts are 0; anything at or above full hp (including +Inf) is MaxMilli.
// Amounts below 0.0005 round to 0.
func DamageMilli(amount float64) int {
	if math.IsNaN(amount) || amount <= 0 {
		return 0
	}
	if amount >= MaxMilli/1000 {
		return MaxMilli
	}
	return tuning.Milli(amount)
}

// WithHP replaces hp (e.g. from a loaded save) and recomputes Dead.
func WithHP(v Vitals, hpMilli int) Vitals {
	v.HPMilli = clampMilli(hpMilli)
	v.Dead = v.HPMilli == 0
	return v
}

// AdvanceClock moves time of day forward, wrapping to exactly 0 at 24h.
func AdvanceClock(clockMilli, deltaMilli int) int {
	next := clockMilli + deltaMilli
	if next >= DayMilli {
		return 0
	}
	return next
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clampMilli(n int) int {
	if n > MaxMilli {
		return MaxMilli
	}
	return floorZero(n)
}
