package inventory

import "sort"

type Resource string

const (
	Wood  Resource = "wood"
	Stone Resource = "stone"
	Scrap Resource = "scrap"
	Water Resource = "water"
)

// All lists the resource kinds in display order.
var All = []Resource{Wood, Stone, Scrap, Water}

func (r Resource) Valid() bool {
	switch r {
	case Wood, Stone, Scrap, Water:
		return true
	}
	return false
}

// Inventory maps resource kind to count. Absent kinds count as zero and no
// entry is ever negative.
type Inventory map[Resource]int

func (inv Inventory) Count(r Resource) int { return inv[r] }

// Add increases a count. Unknown kinds and non-positive amounts are ignored.
func (inv Inventory) Add(r Resource, amount int) {
	if !r.Valid() || amount <= 0 {
		return
	}
	inv[r] += amount
}

// Remove decreases a count, flooring at zero. Removing more than is held is not
// an error.
func (inv Inventory) Remove(r Resource, amount int) {
	if !r.Valid() || amount <= 0 {
		return
	}
	n := inv[r] - amount
	if n < 0 {
		n = 0
	}
	inv[r] = n
}

func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for k, n := range inv {
		out[k] = n
	}
	return out
}

// Keys returns the held kinds sorted by name.
func (inv Inventory) Keys() []Resource {
	keys := make([]Resource, 0, len(inv))
	for k := range inv {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Counts is the fixed-field form used on the wire and in saves.
type Counts struct {
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
	Scrap int `json:"scrap"`
	Water int `json:"water"`
}

func (inv Inventory) Counts() Counts {
	return Counts{Wood: inv[Wood], Stone: inv[Stone], Scrap: inv[Scrap], Water: inv[Water]}
}

// FromCounts builds an inventory, clamping negative counts to zero.
func FromCounts(c Counts) Inventory {
	inv := Inventory{}
	for r, n := range map[Resource]int{Wood: c.Wood, Stone: c.Stone, Scrap: c.Scrap, Water: c.Water} {
		if n < 0 {
			n = 0
		}
		inv[r] = n
	}
	return inv
}
