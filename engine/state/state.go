// Package state holds the mutable game state and the inventory helpers
// that operate on it.
package state

import (
	"github.com/nathoo/spiritfield/engine/balance"
	"github.com/nathoo/spiritfield/engine/field"
	"github.com/nathoo/spiritfield/types"
)

// State is the complete mutable game state.
type State struct {
	Fields          [balance.FieldCount]field.Field
	Inventory       map[types.Item]int
	Proficiency     int
	Flame           types.FlameLevel
	Refining        bool
	RefineRemaining float64
	PestTimer       float64
}

// NewState creates a fresh game state: 16 empty fields, the default
// inventory template, zero proficiency, low flame, idle furnace.
func NewState() *State {
	s := &State{
		Inventory: DefaultInventory(),
		Flame:     types.FlameLow,
	}
	for i := range s.Fields {
		s.Fields[i] = field.New()
	}
	return s
}

// DefaultInventory returns a zeroed count for every known item.
func DefaultInventory() map[types.Item]int {
	inv := make(map[types.Item]int, len(balance.Items))
	for _, it := range balance.Items {
		inv[it] = 0
	}
	return inv
}

// ValidIndex reports whether i addresses one of the fields.
func ValidIndex(i int) bool {
	return i >= 0 && i < balance.FieldCount
}

// Count returns how many of item the inventory holds. Unknown items are 0.
func Count(s *State, item types.Item) int {
	return s.Inventory[item]
}

// Add increases the count of item by n.
func Add(s *State, item types.Item, n int) {
	if n <= 0 {
		return
	}
	if s.Inventory == nil {
		s.Inventory = DefaultInventory()
	}
	s.Inventory[item] += n
}

// Consume removes n of item if at least n are held. It returns false and
// leaves the inventory untouched otherwise.
func Consume(s *State, item types.Item, n int) bool {
	if n < 0 || s.Inventory[item] < n {
		return false
	}
	s.Inventory[item] -= n
	return true
}

// InventoryCopy returns a snapshot of the inventory that callers may keep.
func InventoryCopy(s *State) map[types.Item]int {
	inv := DefaultInventory()
	for k, v := range s.Inventory {
		inv[k] = v
	}
	return inv
}

// GrowingFields returns the indices of planted fields that are not ready.
func GrowingFields(s *State) []int {
	var idx []int
	for i := range s.Fields {
		if !s.Fields[i].IsEmpty() && !s.Fields[i].IsReady() {
			idx = append(idx, i)
		}
	}
	return idx
}

// ReadyFields returns the indices of fields holding a harvestable crop.
func ReadyFields(s *State) []int {
	var idx []int
	for i := range s.Fields {
		if s.Fields[i].IsReady() {
			idx = append(idx, i)
		}
	}
	return idx
}
