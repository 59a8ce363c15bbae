// Package engine provides the Engine that owns the game state and advances
// it: per-tick growth, pest attacks and refining, plus the player actions
// (plant, harvest, refine, flame) and the Step() command orchestrator.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/nathoo/spiritfield/engine/balance"
	"github.com/nathoo/spiritfield/engine/events"
	"github.com/nathoo/spiritfield/engine/field"
	"github.com/nathoo/spiritfield/engine/parser"
	"github.com/nathoo/spiritfield/engine/state"
	"github.com/nathoo/spiritfield/types"
)

// Engine holds the balance, the mutable state and the random source.
// It is not safe for concurrent use; one driver loop owns it.
type Engine struct {
	Balance *balance.Balance
	State   *state.State
	RNG     *RNG
	Log     *slog.Logger

	pending  []types.Event
	handlers map[string][]events.Handler
}

// New creates an engine over s. A nil balance uses the reference tuning and
// a nil state starts a fresh game.
func New(b *balance.Balance, s *state.State, seed int64) *Engine {
	if b == nil {
		b = balance.Default()
	}
	if s == nil {
		s = state.NewState()
	}
	e := &Engine{
		Balance:  b,
		State:    s,
		RNG:      NewRNG(seed),
		Log:      slog.Default(),
		handlers: map[string][]events.Handler{},
	}
	e.On("*", e.logEvent)
	return e
}

// On registers h for events of type typ, or for every event when typ is "*".
// Handlers run as each event is emitted.
func (e *Engine) On(typ string, h events.Handler) {
	e.handlers[typ] = append(e.handlers[typ], h)
}

// Fields returns the 16 fields in row-major order.
// The slice is a copy; mutate fields through the engine.
func (e *Engine) Fields() []field.Field {
	fields := e.State.Fields
	return fields[:]
}

// Inventory returns a copy of the item counts.
func (e *Engine) Inventory() map[types.Item]int {
	return state.InventoryCopy(e.State)
}

func (e *Engine) Flame() types.FlameLevel  { return e.State.Flame }
func (e *Engine) Proficiency() int         { return e.State.Proficiency }
func (e *Engine) Refining() bool           { return e.State.Refining }
func (e *Engine) RefineRemaining() float64 { return e.State.RefineRemaining }

// SuccessRate is the chance the next refine resolves into a pill.
func (e *Engine) SuccessRate() float64 {
	return e.Balance.SuccessRate(e.State.Proficiency, e.State.Flame)
}

// Update advances the simulation by dt seconds: field growth, then the
// furnace, then the pest check. A negative or non-finite dt counts as 0.
func (e *Engine) Update(dt float64) {
	if !(dt >= 0) || math.IsInf(dt, 1) {
		dt = 0
	}
	s := e.State

	for i := range s.Fields {
		if s.Fields[i].Update(dt) {
			e.emit(events.New(events.FieldReady, "field", i, "crop", s.Fields[i].Crop()))
		}
	}

	if s.Refining {
		s.RefineRemaining -= dt
		if s.RefineRemaining <= 0 {
			e.resolveRefine()
			s.Refining = false
			s.RefineRemaining = 0
		}
	}

	s.PestTimer += dt
	if s.PestTimer >= e.Balance.PestCheckInterval {
		if e.RNG.Chance(e.Balance.PestAttackProbability) {
			e.pestAttack()
		}
		s.PestTimer = 0
	}
}

// pestAttack destroys every growing crop. Ready crops are immune.
func (e *Engine) pestAttack() {
	lost := state.GrowingFields(e.State)
	for _, i := range lost {
		e.State.Fields[i].Clear()
	}
	if lost == nil {
		lost = []int{}
	}
	e.emit(events.New(events.PestAttack, "fields", lost))
}

// Plant sows crop in field idx. It fails without side effects if idx is out
// of range, the field is occupied, or crop cannot be planted.
func (e *Engine) Plant(idx int, crop types.Item) bool {
	if !state.ValidIndex(idx) || !balance.IsCrop(crop) {
		return false
	}
	f := &e.State.Fields[idx]
	if !f.IsEmpty() {
		return false
	}
	f.Plant(crop, e.Balance.GrowthFor(crop))
	e.emit(events.New(events.Planted, "field", idx, "crop", crop))
	return true
}

// Harvest collects the ready crop in field idx into the inventory.
func (e *Engine) Harvest(idx int) (types.Item, bool) {
	if !state.ValidIndex(idx) || !e.State.Fields[idx].IsReady() {
		return "", false
	}
	crop, ok := e.State.Fields[idx].Harvest()
	if !ok {
		return "", false
	}
	state.Add(e.State, crop, 1)
	e.emit(events.New(events.Harvested, "field", idx, "crop", crop))
	return crop, true
}

// StartRefining lights the furnace. Materials are consumed when the refine
// resolves, not now. It fails if a refine is already running or there is
// not enough fire grass.
func (e *Engine) StartRefining() bool {
	s := e.State
	if s.Refining || state.Count(s, types.FireGrass) < e.Balance.RefineCost {
		return false
	}
	s.Refining = true
	s.RefineRemaining = e.Balance.RefineTime
	e.emit(events.New(events.RefineStarted, "flame", s.Flame))
	return true
}

// SetFlameLevel overwrites the flame setting.
func (e *Engine) SetFlameLevel(level types.FlameLevel) {
	e.State.Flame = level
	e.emit(events.New(events.FlameChanged, "flame", level))
}

// CycleFlame steps the flame Low → Mid → High → Low and returns the new level.
func (e *Engine) CycleFlame() types.FlameLevel {
	next := balance.NextFlame(e.State.Flame)
	e.SetFlameLevel(next)
	return next
}

// resolveRefine runs once when the furnace timer expires.
func (e *Engine) resolveRefine() {
	s := e.State
	if !state.Consume(s, types.FireGrass, e.Balance.RefineCost) {
		return
	}
	rate := e.SuccessRate()
	if e.RNG.Chance(rate) {
		state.Add(s, types.Pill, 1)
		s.Proficiency += e.Balance.ProficiencyGain
		e.emit(events.New(events.RefineSucceeded, "rate", rate, "proficiency", s.Proficiency))
		return
	}
	e.emit(events.New(events.RefineFailed, "rate", rate, "proficiency", s.Proficiency))
}

// TakeEvents returns the events emitted since the last call and clears the
// buffer.
func (e *Engine) TakeEvents() []types.Event {
	evts := e.pending
	e.pending = nil
	return evts
}

func (e *Engine) emit(evt types.Event) {
	e.pending = append(e.pending, evt)
	events.Dispatch([]types.Event{evt}, e.handlers)
}

func (e *Engine) logEvent(evt types.Event) {
	if e.Log == nil {
		return
	}
	level := slog.LevelInfo
	if evt.Type == events.PestAttack {
		level = slog.LevelWarn
	}
	e.Log.Log(context.Background(), level, evt.Type, events.Attrs(evt)...)
}

// Tick advances the simulation by dt and reports what happened.
func (e *Engine) Tick(dt float64) types.Result {
	e.Update(dt)
	return e.drain(types.Result{})
}

// drain moves pending events into result, describing each one.
func (e *Engine) drain(result types.Result) types.Result {
	for _, evt := range e.TakeEvents() {
		result.Events = append(result.Events, evt)
		result.Output = append(result.Output, events.Describe(evt))
	}
	return result
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	intent := parser.Parse(input)
	switch intent.Verb {
	case "":
		result.Output = append(result.Output, "What do you want to do?")
	case "plant":
		result.Output = append(result.Output, e.cmdPlant(intent)...)
	case "harvest":
		result.Output = append(result.Output, e.cmdHarvest(intent)...)
	case "refine":
		result.Output = append(result.Output, e.cmdRefine()...)
	case "flame":
		result.Output = append(result.Output, e.cmdFlame(intent)...)
	case "wait":
		if intent.Object != "" {
			result.Output = append(result.Output, fmt.Sprintf("%q is not a number of seconds.", intent.Object))
			break
		}
		if intent.Amount < 0 {
			result.Output = append(result.Output, "Time only moves forward.")
			break
		}
		e.Update(intent.Amount)
		result.Output = append(result.Output, fmt.Sprintf("You wait %s.", formatSeconds(intent.Amount)))
	case "inventory":
		result.Output = append(result.Output, e.describeInventory())
	case "look":
		result.Output = append(result.Output, e.Describe()...)
	default:
		result.Output = append(result.Output, fmt.Sprintf("I don't know how to %q.", intent.Verb))
	}

	return e.drain(result)
}

func (e *Engine) cmdPlant(intent types.Intent) []string {
	if intent.Index < 0 {
		return []string{"Plant where? (plant <field 0-15> [crop])"}
	}
	crop := types.FireGrass
	if intent.Object != "" {
		crop = types.Item(intent.Object)
	}
	switch {
	case !state.ValidIndex(intent.Index):
		return []string{fmt.Sprintf("There is no field %d.", intent.Index)}
	case !balance.IsCrop(crop):
		return []string{fmt.Sprintf("You can't plant %s.", events.ItemName(crop))}
	case !e.State.Fields[intent.Index].IsEmpty():
		return []string{fmt.Sprintf("Field %d is already planted.", intent.Index)}
	}
	e.Plant(intent.Index, crop)
	return nil
}

func (e *Engine) cmdHarvest(intent types.Intent) []string {
	if intent.All {
		ready := state.ReadyFields(e.State)
		if len(ready) == 0 {
			return []string{"Nothing is ready to harvest."}
		}
		for _, i := range ready {
			e.Harvest(i)
		}
		return nil
	}
	if intent.Index < 0 {
		return []string{"Harvest which field? (harvest <field 0-15> | harvest all)"}
	}
	if !state.ValidIndex(intent.Index) {
		return []string{fmt.Sprintf("There is no field %d.", intent.Index)}
	}
	if _, ok := e.Harvest(intent.Index); !ok {
		f := &e.State.Fields[intent.Index]
		if f.IsEmpty() {
			return []string{fmt.Sprintf("Field %d is empty.", intent.Index)}
		}
		return []string{fmt.Sprintf("The %s in field %d is still growing (%.0f%%).",
			events.ItemName(f.Crop()), intent.Index, f.Progress()*100)}
	}
	return nil
}

func (e *Engine) cmdRefine() []string {
	if e.State.Refining {
		return []string{fmt.Sprintf("The furnace is already burning (%s left).", formatSeconds(e.State.RefineRemaining))}
	}
	if !e.StartRefining() {
		return []string{fmt.Sprintf("You need %d fire grass to refine (have %d).",
			e.Balance.RefineCost, state.Count(e.State, types.FireGrass))}
	}
	return nil
}

func (e *Engine) cmdFlame(intent types.Intent) []string {
	if intent.Object == "" {
		e.CycleFlame()
		return nil
	}
	lvl, ok := balance.ParseFlame(intent.Object)
	if !ok {
		return []string{fmt.Sprintf("Unknown flame %q. Use low, mid or high.", intent.Object)}
	}
	e.SetFlameLevel(lvl)
	return nil
}

// Describe summarizes the farm, inventory and furnace as text lines.
func (e *Engine) Describe() []string {
	s := e.State
	var lines []string
	for row := 0; row < balance.GridSize; row++ {
		cells := make([]string, 0, balance.GridSize)
		for col := 0; col < balance.GridSize; col++ {
			i := row*balance.GridSize + col
			cells = append(cells, fmt.Sprintf("%2d:%s", i, cellText(&s.Fields[i])))
		}
		lines = append(lines, strings.Join(cells, "  "))
	}
	lines = append(lines, e.describeInventory())
	furnace := "idle"
	if s.Refining {
		furnace = fmt.Sprintf("refining, %s left", formatSeconds(s.RefineRemaining))
	}
	lines = append(lines, fmt.Sprintf("Flame: %s | Proficiency: %d | Success: %.0f%% | Furnace: %s",
		s.Flame, s.Proficiency, e.SuccessRate()*100, furnace))
	return lines
}

func (e *Engine) describeInventory() string {
	parts := make([]string, 0, len(balance.Items))
	for _, it := range balance.Items {
		parts = append(parts, fmt.Sprintf("%s %d", events.ItemName(it), state.Count(e.State, it)))
	}
	return "Inventory: " + strings.Join(parts, ", ") + "."
}

// cellText is the compact label of a field in text listings.
func cellText(f *field.Field) string {
	switch {
	case f.IsEmpty():
		return "·········"
	case f.IsReady():
		return fmt.Sprintf("%-5s RDY", shortName(f.Crop()))
	default:
		return fmt.Sprintf("%-5s %2.0f%%", shortName(f.Crop()), f.Progress()*100)
	}
}

func shortName(it types.Item) string {
	name, _, _ := strings.Cut(string(it), "_")
	return name
}

func formatSeconds(s float64) string {
	switch {
	case s == 1:
		return "1 second"
	case s == math.Trunc(s):
		return fmt.Sprintf("%.0f seconds", s)
	}
	return fmt.Sprintf("%.1f seconds", s)
}
