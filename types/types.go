// Package types defines the shared data structures for the spiritfield engine.
// It holds type definitions only.
package types

// Item identifies a crop kind or a refined good held in the inventory.
type Item string

// Known items. Empty is the crop sentinel of an unplanted field and is never
// held in the inventory.
const (
	Empty     Item = "empty"
	FireGrass Item = "fire_grass"
	WoodGrass Item = "wood_grass"
	Pill      Item = "pill"
)

// FlameLevel is the refining furnace setting. The zero value is not valid;
// use FlameLow.
type FlameLevel string

const (
	FlameLow  FlameLevel = "low"
	FlameMid  FlameLevel = "mid"
	FlameHigh FlameLevel = "high"
)

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb   string
	Index  int    // field index, -1 when absent
	All    bool   // "harvest all"
	Object string // optional crop or flame argument
	Amount float64
}

// Event is emitted by the engine whenever the game state changes.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single tick or command.
type Result struct {
	Events []Event
	Output []string
}
