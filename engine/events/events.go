// Package events defines the game events emitted by the engine and a
// single-pass dispatcher that hands them to interested handlers.
package events

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/spiritfield/types"
)

// Event types.
const (
	Planted         = "planted"
	FieldReady      = "field_ready"
	Harvested       = "harvested"
	PestAttack      = "pest_attack"
	RefineStarted   = "refine_started"
	RefineSucceeded = "refine_succeeded"
	RefineFailed    = "refine_failed"
	FlameChanged    = "flame_changed"
)

// Handler receives one dispatched event.
type Handler func(types.Event)

// Dispatch hands every event to every handler registered for its type.
// Handlers registered under "*" see all events. It is a single pass:
// events emitted by a handler are not part of the same dispatch.
func Dispatch(evts []types.Event, handlers map[string][]Handler) {
	for _, evt := range evts {
		for _, h := range handlers[evt.Type] {
			h(evt)
		}
		for _, h := range handlers["*"] {
			h(evt)
		}
	}
}

// New builds an event, copying data pairs into the payload.
// Pairs are key, value, key, value, ...
func New(typ string, pairs ...any) types.Event {
	data := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k, ok := pairs[i].(string); ok {
			data[k] = pairs[i+1]
		}
	}
	return types.Event{Type: typ, Data: data}
}

// Attrs flattens the payload into sorted key/value pairs, for structured
// loggers.
func Attrs(evt types.Event) []any {
	keys := make([]string, 0, len(evt.Data))
	for k := range evt.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		attrs = append(attrs, k, evt.Data[k])
	}
	return attrs
}

// Describe renders an event as a line of player-facing text.
func Describe(evt types.Event) string {
	switch evt.Type {
	case Planted:
		return fmt.Sprintf("Planted %s in field %d.", ItemName(item(evt, "crop")), intVal(evt, "field"))
	case FieldReady:
		return fmt.Sprintf("Field %d is ready for harvest: %s.", intVal(evt, "field"), ItemName(item(evt, "crop")))
	case Harvested:
		return fmt.Sprintf("Harvested %s from field %d.", ItemName(item(evt, "crop")), intVal(evt, "field"))
	case PestAttack:
		lost, _ := evt.Data["fields"].([]int)
		if len(lost) == 0 {
			return "Pests swarm the farm, but find nothing to eat."
		}
		return fmt.Sprintf("Pest attack! Spirit grass lost in %s.", fieldList(lost))
	case RefineStarted:
		return fmt.Sprintf("Started refining with %s flame.", evt.Data["flame"])
	case RefineSucceeded:
		return fmt.Sprintf("Refining succeeded! +1 pill (proficiency %d).", intVal(evt, "proficiency"))
	case RefineFailed:
		return "Refining failed. The fire grass turned to ash."
	case FlameChanged:
		return fmt.Sprintf("Flame set to %s.", evt.Data["flame"])
	default:
		return evt.Type
	}
}

// ItemName turns an item id into display text: "fire_grass" -> "fire grass".
func ItemName(it types.Item) string {
	return strings.ReplaceAll(string(it), "_", " ")
}

func item(evt types.Event, key string) types.Item {
	if it, ok := evt.Data[key].(types.Item); ok {
		return it
	}
	return types.Empty
}

func intVal(evt types.Event, key string) int {
	if n, ok := evt.Data[key].(int); ok {
		return n
	}
	return -1
}

func fieldList(idx []int) string {
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = fmt.Sprintf("%d", n)
	}
	if len(parts) == 1 {
		return "field " + parts[0]
	}
	return "fields " + strings.Join(parts, ", ")
}
