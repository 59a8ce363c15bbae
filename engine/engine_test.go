package engine

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/nathoo/spiritfield/engine/balance"
	"github.com/nathoo/spiritfield/engine/events"
	"github.com/nathoo/spiritfield/engine/state"
	"github.com/nathoo/spiritfield/types"
)

// testEngine builds an engine with pests disabled. tune may adjust the
// balance further before the engine is created.
func testEngine(tune func(b *balance.Balance)) *Engine {
	b := balance.Default()
	b.PestAttackProbability = 0
	if tune != nil {
		tune(b)
	}
	e := New(b, nil, 42)
	e.Log = slog.New(slog.DiscardHandler)
	return e
}

func outputContains(output []string, substr string) bool {
	for _, line := range output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func eventTypes(evts []types.Event) []string {
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.Type
	}
	return out
}

func hasEvent(evts []types.Event, typ string) bool {
	for _, e := range evts {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestNew_FreshState(t *testing.T) {
	e := New(nil, nil, 1)

	if len(e.Fields()) != balance.FieldCount {
		t.Fatalf("expected %d fields, got %d", balance.FieldCount, len(e.Fields()))
	}
	for i, f := range e.Fields() {
		if !f.IsEmpty() {
			t.Errorf("field %d not empty", i)
		}
	}
	if e.Flame() != types.FlameLow {
		t.Errorf("expected low flame, got %q", e.Flame())
	}
	if e.Proficiency() != 0 || e.Refining() {
		t.Errorf("expected idle furnace and 0 proficiency")
	}
	if e.Balance.RefineCost != balance.RefineCost {
		t.Errorf("expected default balance")
	}
}

func TestPlantGrowHarvest(t *testing.T) {
	e := testEngine(nil)

	if !e.Plant(0, types.FireGrass) {
		t.Fatal("plant on empty field failed")
	}
	if e.Plant(0, types.FireGrass) {
		t.Fatal("plant on occupied field succeeded")
	}

	e.Update(9.5)
	if _, ok := e.Harvest(0); ok {
		t.Fatal("harvested before ready")
	}

	e.Update(0.5)
	if !e.Fields()[0].IsReady() {
		t.Fatal("expected field ready after 10s")
	}
	crop, ok := e.Harvest(0)
	if !ok || crop != types.FireGrass {
		t.Fatalf("Harvest = %q, %v", crop, ok)
	}
	if got := e.Inventory()[types.FireGrass]; got != 1 {
		t.Errorf("expected 1 fire_grass, got %d", got)
	}
	if !e.Fields()[0].IsEmpty() {
		t.Error("expected field empty after harvest")
	}
	if _, ok := e.Harvest(0); ok {
		t.Error("second harvest succeeded")
	}
}

func TestPlant_Rejects(t *testing.T) {
	e := testEngine(nil)

	tests := []struct {
		name string
		idx  int
		crop types.Item
	}{
		{"negative index", -1, types.FireGrass},
		{"index too large", balance.FieldCount, types.FireGrass},
		{"pill is not a crop", 3, types.Pill},
		{"empty is not a crop", 3, types.Empty},
		{"unknown crop", 3, types.Item("moonflower")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if e.Plant(tt.idx, tt.crop) {
				t.Errorf("Plant(%d, %q) succeeded", tt.idx, tt.crop)
			}
		})
	}
	for i, f := range e.Fields() {
		if !f.IsEmpty() {
			t.Errorf("field %d changed", i)
		}
	}
}

func TestHarvest_OutOfRange(t *testing.T) {
	e := testEngine(nil)
	if _, ok := e.Harvest(-1); ok {
		t.Error("harvest(-1) succeeded")
	}
	if _, ok := e.Harvest(16); ok {
		t.Error("harvest(16) succeeded")
	}
}

func TestUpdate_CropGrowthOverride(t *testing.T) {
	e := testEngine(func(b *balance.Balance) {
		b.CropGrowth[types.WoodGrass] = 20
	})
	e.Plant(1, types.FireGrass)
	e.Plant(2, types.WoodGrass)

	e.Update(10)
	if !e.Fields()[1].IsReady() {
		t.Error("fire grass should be ready at 10s")
	}
	if e.Fields()[2].IsReady() {
		t.Error("wood grass should still be growing at 10s")
	}
	e.Update(10)
	if !e.Fields()[2].IsReady() {
		t.Error("wood grass should be ready at 20s")
	}
}

func TestUpdate_FieldReadyEventOnce(t *testing.T) {
	e := testEngine(nil)
	e.Plant(5, types.WoodGrass)
	e.TakeEvents()

	e.Update(10)
	evts := e.TakeEvents()
	if len(evts) != 1 || evts[0].Type != events.FieldReady {
		t.Fatalf("expected one field_ready, got %v", eventTypes(evts))
	}
	if evts[0].Data["field"] != 5 {
		t.Errorf("expected field 5, got %v", evts[0].Data["field"])
	}

	e.Update(10)
	if evts := e.TakeEvents(); len(evts) != 0 {
		t.Errorf("expected no events, got %v", eventTypes(evts))
	}
}

func TestStartRefining(t *testing.T) {
	e := testEngine(nil)

	if e.StartRefining() {
		t.Fatal("refine started without materials")
	}

	state.Add(e.State, types.FireGrass, 1)
	if e.StartRefining() {
		t.Fatal("refine started with 1 fire_grass")
	}

	state.Add(e.State, types.FireGrass, 1)
	if !e.StartRefining() {
		t.Fatal("refine failed with 2 fire_grass")
	}
	if !e.Refining() || e.RefineRemaining() != balance.RefineTime {
		t.Errorf("expected refining with %vs left, got %v %v", balance.RefineTime, e.Refining(), e.RefineRemaining())
	}
	if got := e.Inventory()[types.FireGrass]; got != 2 {
		t.Errorf("materials consumed at start: have %d", got)
	}

	state.Add(e.State, types.FireGrass, 2)
	if e.StartRefining() {
		t.Error("second concurrent refine started")
	}
	if e.RefineRemaining() != balance.RefineTime {
		t.Error("second start reset the timer")
	}
}

func TestRefine_Success(t *testing.T) {
	e := testEngine(func(b *balance.Balance) {
		b.BaseSuccessRate = 1
	})
	state.Add(e.State, types.FireGrass, 3)
	e.StartRefining()

	e.Update(4.9)
	if !e.Refining() {
		t.Fatal("refine resolved early")
	}
	e.Update(0.1)

	if e.Refining() {
		t.Fatal("expected furnace idle")
	}
	inv := e.Inventory()
	if inv[types.FireGrass] != 1 {
		t.Errorf("expected 1 fire_grass left, got %d", inv[types.FireGrass])
	}
	if inv[types.Pill] != 1 {
		t.Errorf("expected 1 pill, got %d", inv[types.Pill])
	}
	if e.Proficiency() != balance.ProficiencyGain {
		t.Errorf("expected proficiency %d, got %d", balance.ProficiencyGain, e.Proficiency())
	}
	if !hasEvent(e.TakeEvents(), events.RefineSucceeded) {
		t.Error("expected refine_succeeded event")
	}
}

func TestRefine_Failure(t *testing.T) {
	e := testEngine(func(b *balance.Balance) {
		b.BaseSuccessRate = 0
		b.ProficiencyBonus = 0
	})
	state.Add(e.State, types.FireGrass, 2)
	e.StartRefining()
	e.Update(5)

	inv := e.Inventory()
	if inv[types.FireGrass] != 0 {
		t.Errorf("expected fire_grass consumed, got %d", inv[types.FireGrass])
	}
	if inv[types.Pill] != 0 {
		t.Errorf("expected no pill, got %d", inv[types.Pill])
	}
	if e.Proficiency() != 0 {
		t.Errorf("expected proficiency unchanged, got %d", e.Proficiency())
	}
	if !hasEvent(e.TakeEvents(), events.RefineFailed) {
		t.Error("expected refine_failed event")
	}
}

func TestRefine_MaterialsGoneAtResolution(t *testing.T) {
	e := testEngine(func(b *balance.Balance) {
		b.BaseSuccessRate = 1
	})
	state.Add(e.State, types.FireGrass, 2)
	e.StartRefining()
	state.Consume(e.State, types.FireGrass, 1)

	e.Update(5)
	if e.Refining() {
		t.Error("expected furnace idle")
	}
	if e.Inventory()[types.Pill] != 0 || e.Proficiency() != 0 {
		t.Error("refine resolved without materials")
	}
	if e.Inventory()[types.FireGrass] != 1 {
		t.Error("inventory changed on aborted refine")
	}
}

func TestRefine_PillAndProficiencyMoveTogether(t *testing.T) {
	e := testEngine(nil)
	state.Add(e.State, types.FireGrass, 40)

	for i := 0; i < 20; i++ {
		pills, prof := e.Inventory()[types.Pill], e.Proficiency()
		if !e.StartRefining() {
			t.Fatalf("round %d: refine did not start", i)
		}
		e.Update(balance.RefineTime)

		dPill := e.Inventory()[types.Pill] - pills
		dProf := e.Proficiency() - prof
		if dPill*balance.ProficiencyGain != dProf {
			t.Fatalf("round %d: pill +%d but proficiency +%d", i, dPill, dProf)
		}
	}
	if e.Inventory()[types.FireGrass] != 0 {
		t.Errorf("expected all fire_grass consumed, got %d", e.Inventory()[types.FireGrass])
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		prof  int
		flame types.FlameLevel
		want  float64
	}{
		{0, types.FlameLow, 0.5},
		{0, types.FlameMid, 0.6},
		{0, types.FlameHigh, 0.7},
		{10, types.FlameHigh, 0.8},
		{100, types.FlameHigh, 1.7},
	}
	for _, tt := range tests {
		e := testEngine(nil)
		e.State.Proficiency = tt.prof
		e.State.Flame = tt.flame
		if got := e.SuccessRate(); got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("SuccessRate(prof=%d, %s) = %v, want %v", tt.prof, tt.flame, got, tt.want)
		}
	}
}

func TestCycleFlame(t *testing.T) {
	e := testEngine(nil)

	want := []types.FlameLevel{types.FlameMid, types.FlameHigh, types.FlameLow}
	for i, w := range want {
		if got := e.CycleFlame(); got != w {
			t.Errorf("cycle %d: got %q, want %q", i, got, w)
		}
	}
	if e.Flame() != types.FlameLow {
		t.Errorf("expected low after three cycles, got %q", e.Flame())
	}
}

func TestSetFlameLevel(t *testing.T) {
	e := testEngine(nil)
	e.SetFlameLevel(types.FlameHigh)
	if e.Flame() != types.FlameHigh {
		t.Errorf("got %q", e.Flame())
	}
	evts := e.TakeEvents()
	if len(evts) != 1 || evts[0].Type != events.FlameChanged {
		t.Errorf("expected flame_changed, got %v", eventTypes(evts))
	}
}

func TestPests_SpareReadyFields(t *testing.T) {
	e := testEngine(func(b *balance.Balance) {
		b.PestAttackProbability = 1
		b.PestCheckInterval = 5
		b.CropGrowth[types.WoodGrass] = 100
	})
	e.Plant(0, types.FireGrass)
	e.Update(4)
	e.Plant(1, types.WoodGrass)
	e.TakeEvents()

	// t=5: both crops are still growing.
	e.Update(1)
	evts := e.TakeEvents()
	if !hasEvent(evts, events.PestAttack) {
		t.Fatalf("expected pest attack, got %v", eventTypes(evts))
	}
	if !e.Fields()[0].IsEmpty() || !e.Fields()[1].IsEmpty() {
		t.Error("growing fields survived a pest attack")
	}

	e.Plant(2, types.FireGrass)
	e.Update(10) // ready, and the pest timer hits 5 again
	if !e.Fields()[2].IsReady() {
		t.Fatal("expected field 2 ready")
	}
	e.Update(5)
	if !e.Fields()[2].IsReady() {
		t.Error("pests destroyed a ready field")
	}
}

func TestPests_TimerResets(t *testing.T) {
	e := testEngine(func(b *balance.Balance) {
		b.PestAttackProbability = 1
	})

	e.Update(4)
	if hasEvent(e.TakeEvents(), events.PestAttack) {
		t.Fatal("pest check fired before interval")
	}
	e.Update(1)
	if !hasEvent(e.TakeEvents(), events.PestAttack) {
		t.Fatal("pest check did not fire at interval")
	}
	if e.State.PestTimer != 0 {
		t.Errorf("expected timer reset, got %v", e.State.PestTimer)
	}
	e.Update(3)
	if hasEvent(e.TakeEvents(), events.PestAttack) {
		t.Error("pest check fired early after reset")
	}
}

func TestPests_NeverWithZeroProbability(t *testing.T) {
	e := testEngine(nil)
	for i := range e.State.Fields {
		e.State.Fields[i].Plant(types.FireGrass, 1000)
	}
	for i := 0; i < 200; i++ {
		e.Update(5)
	}
	if len(state.GrowingFields(e.State)) != balance.FieldCount {
		t.Error("crops lost with pests disabled")
	}
}

func TestUpdate_InvalidDtIgnored(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
	}{
		{"negative", -50},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"negative inf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEngine(nil)
			state.Add(e.State, types.FireGrass, 2)
			e.Plant(0, types.FireGrass)
			e.StartRefining()
			e.Update(1)

			e.Update(tt.dt)

			if got := e.Fields()[0].Elapsed(); got != 1 {
				t.Errorf("growth elapsed = %v, want 1", got)
			}
			if got := e.RefineRemaining(); got != 4 {
				t.Errorf("refine remaining = %v, want 4", got)
			}
			if got := e.State.PestTimer; got != 1 {
				t.Errorf("pest timer = %v, want 1", got)
			}
		})
	}
}

func TestStep_WaitRejectsNonNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"wait nan", `"nan" is not a number of seconds.`},
		{"wait inf", `"inf" is not a number of seconds.`},
		{"wait -inf", `"-inf" is not a number of seconds.`},
		{"wait soon", `"soon" is not a number of seconds.`},
		{"wait -3", "Time only moves forward."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := testEngine(nil)
			e.Plant(0, types.FireGrass)
			result := e.Step(tt.input)
			if len(result.Output) != 1 || result.Output[0] != tt.want {
				t.Errorf("Step(%q) = %v, want %q", tt.input, result.Output, tt.want)
			}
			if e.Fields()[0].Elapsed() != 0 || e.State.PestTimer != 0 {
				t.Errorf("rejected wait moved time: elapsed %v, pest timer %v",
					e.Fields()[0].Elapsed(), e.State.PestTimer)
			}
		})
	}
}

func TestStep_WaitNaNKeepsFurnaceRunning(t *testing.T) {
	e := testEngine(func(b *balance.Balance) { b.BaseSuccessRate = 1 })
	state.Add(e.State, types.FireGrass, 2)
	if !e.StartRefining() {
		t.Fatal("StartRefining failed")
	}

	e.Step("wait nan")
	e.Update(5)

	if e.Refining() {
		t.Fatalf("furnace still refining, %v left", e.RefineRemaining())
	}
	if got := state.Count(e.State, types.Pill); got != 1 {
		t.Errorf("pills = %d, want 1", got)
	}
	if math.IsNaN(e.State.PestTimer) {
		t.Error("pest timer became NaN")
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	e := testEngine(nil)
	fields := e.Fields()
	fields[3].Plant(types.FireGrass, 1)
	if !e.Fields()[3].IsEmpty() {
		t.Error("writing to the Fields() result changed the game state")
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		s    float64
		want string
	}{
		{1, "1 second"},
		{0, "0 seconds"},
		{10, "10 seconds"},
		{2.5, "2.5 seconds"},
		{1e12, "1000000000000 seconds"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.s); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestDeterministicSeed(t *testing.T) {
	run := func() (int, int) {
		e := testEngine(func(b *balance.Balance) {
			b.PestAttackProbability = 0.3
		})
		state.Add(e.State, types.FireGrass, 20)
		for i := 0; i < 10; i++ {
			e.StartRefining()
			e.Plant(i, types.FireGrass)
			e.Update(5)
		}
		return e.Inventory()[types.Pill], len(state.GrowingFields(e.State))
	}
	p1, g1 := run()
	p2, g2 := run()
	if p1 != p2 || g1 != g2 {
		t.Errorf("same seed diverged: (%d,%d) vs (%d,%d)", p1, g1, p2, g2)
	}
}

// --- Step ---

func TestStep_PlantDefaultsToFireGrass(t *testing.T) {
	e := testEngine(nil)
	result := e.Step("plant 3")

	if e.Fields()[3].Crop() != types.FireGrass {
		t.Errorf("expected fire_grass in field 3, got %q", e.Fields()[3].Crop())
	}
	if !outputContains(result.Output, "Planted fire grass in field 3") {
		t.Errorf("unexpected output %v", result.Output)
	}
	if !hasEvent(result.Events, events.Planted) {
		t.Error("expected planted event in result")
	}
}

func TestStep_PlantErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plant", "Plant where?"},
		{"plant 99", "no field 99"},
		{"plant 1 pill", "can't plant pill"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := testEngine(nil)
			result := e.Step(tt.input)
			if !outputContains(result.Output, tt.want) {
				t.Errorf("Step(%q) = %v, want %q", tt.input, result.Output, tt.want)
			}
		})
	}

	e := testEngine(nil)
	e.Step("plant 1")
	if result := e.Step("plant 1 wood"); !outputContains(result.Output, "already planted") {
		t.Errorf("expected occupied message, got %v", result.Output)
	}
}

func TestStep_WaitAndHarvest(t *testing.T) {
	e := testEngine(nil)
	e.Step("plant 0")
	e.Step("plant 1 wood")

	result := e.Step("harvest 0")
	if !outputContains(result.Output, "still growing") {
		t.Errorf("expected growing message, got %v", result.Output)
	}

	result = e.Step("wait 10")
	if !outputContains(result.Output, "You wait 10 seconds") {
		t.Errorf("expected wait message, got %v", result.Output)
	}
	if !outputContains(result.Output, "Field 0 is ready") || !outputContains(result.Output, "Field 1 is ready") {
		t.Errorf("expected ready messages, got %v", result.Output)
	}

	e.Step("harvest all")
	inv := e.Inventory()
	if inv[types.FireGrass] != 1 || inv[types.WoodGrass] != 1 {
		t.Errorf("expected one of each grass, got %v", inv)
	}

	if result := e.Step("harvest all"); !outputContains(result.Output, "Nothing is ready") {
		t.Errorf("expected nothing-ready message, got %v", result.Output)
	}
	if result := e.Step("harvest 4"); !outputContains(result.Output, "Field 4 is empty") {
		t.Errorf("expected empty message, got %v", result.Output)
	}
}

func TestStep_Refine(t *testing.T) {
	e := testEngine(func(b *balance.Balance) {
		b.BaseSuccessRate = 1
	})

	if result := e.Step("refine"); !outputContains(result.Output, "need 2 fire grass") {
		t.Errorf("expected materials message, got %v", result.Output)
	}

	state.Add(e.State, types.FireGrass, 2)
	result := e.Step("refine")
	if !outputContains(result.Output, "Started refining with low flame") {
		t.Errorf("expected start message, got %v", result.Output)
	}
	if result := e.Step("refine"); !outputContains(result.Output, "already burning") {
		t.Errorf("expected busy message, got %v", result.Output)
	}

	result = e.Step("wait 5")
	if !outputContains(result.Output, "Refining succeeded") {
		t.Errorf("expected success message, got %v", result.Output)
	}
}

func TestStep_Flame(t *testing.T) {
	e := testEngine(nil)

	e.Step("flame")
	if e.Flame() != types.FlameMid {
		t.Errorf("expected mid after toggle, got %q", e.Flame())
	}
	e.Step("set flame low")
	if e.Flame() != types.FlameLow {
		t.Errorf("expected low, got %q", e.Flame())
	}
	result := e.Step("flame blue")
	if !outputContains(result.Output, "Unknown flame") {
		t.Errorf("expected unknown flame message, got %v", result.Output)
	}
	if e.Flame() != types.FlameLow {
		t.Errorf("invalid flame changed level to %q", e.Flame())
	}
}

func TestStep_InventoryAndLook(t *testing.T) {
	e := testEngine(nil)
	state.Add(e.State, types.Pill, 3)

	result := e.Step("inventory")
	if !outputContains(result.Output, "pill 3") {
		t.Errorf("expected pill count, got %v", result.Output)
	}

	e.Step("plant 5")
	result = e.Step("look")
	if len(result.Output) != balance.GridSize+2 {
		t.Fatalf("expected %d lines, got %v", balance.GridSize+2, result.Output)
	}
	if !strings.Contains(result.Output[1], " 5:fire") {
		t.Errorf("expected field 5 on row 1, got %q", result.Output[1])
	}
	if !outputContains(result.Output, "Success: 50%") {
		t.Errorf("expected success rate, got %v", result.Output)
	}
}

func TestStep_UnknownAndEmpty(t *testing.T) {
	e := testEngine(nil)

	if result := e.Step(""); !outputContains(result.Output, "What do you want") {
		t.Errorf("got %v", result.Output)
	}
	if result := e.Step("dance"); !outputContains(result.Output, "don't know how") {
		t.Errorf("got %v", result.Output)
	}
}

func TestTick_DescribesEvents(t *testing.T) {
	e := testEngine(nil)
	e.Plant(7, types.FireGrass)
	e.TakeEvents()

	result := e.Tick(10)
	if len(result.Events) != 1 || len(result.Output) != 1 {
		t.Fatalf("expected one event and line, got %v / %v", eventTypes(result.Events), result.Output)
	}
	if result.Output[0] != "Field 7 is ready for harvest: fire grass." {
		t.Errorf("got %q", result.Output[0])
	}
	if len(e.TakeEvents()) != 0 {
		t.Error("Tick did not drain events")
	}
}

func TestOn_SeesEmittedEvents(t *testing.T) {
	e := testEngine(nil)
	var ready, all []string
	e.On(events.FieldReady, func(evt types.Event) { ready = append(ready, evt.Type) })
	e.On("*", func(evt types.Event) { all = append(all, evt.Type) })

	e.Plant(0, types.FireGrass)
	e.Update(10)

	if len(ready) != 1 {
		t.Errorf("field_ready handler ran %d times, want 1", len(ready))
	}
	if strings.Join(all, ",") != "planted,field_ready" {
		t.Errorf("wildcard saw %v", all)
	}
}

func TestEventsAreLogged(t *testing.T) {
	e := testEngine(func(b *balance.Balance) { b.PestAttackProbability = 1 })
	var buf bytes.Buffer
	e.Log = slog.New(slog.NewTextHandler(&buf, nil))

	e.Plant(2, types.FireGrass)
	e.Update(5)

	out := buf.String()
	if !strings.Contains(out, "level=INFO msg=planted crop=fire_grass field=2") {
		t.Errorf("missing planted record in %q", out)
	}
	if !strings.Contains(out, "level=WARN msg=pest_attack fields=[2]") {
		t.Errorf("missing pest record in %q", out)
	}
}
