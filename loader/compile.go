// Package loader reads Lua balance files into a balance.Balance.
// The Lua VM is discarded after loading; no Lua runs during play.
package loader

import (
	"fmt"
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/spiritfield/engine/balance"
	"github.com/nathoo/spiritfield/types"
)

// rawCrop holds a Crop table before compilation.
type rawCrop struct {
	id    string
	table *lua.LTable
}

// section reads typed keys out of one Lua table and remembers which keys
// were consumed, so leftovers can be reported.
type section struct {
	tbl  *lua.LTable
	path string
	ve   *ValidationError
	seen map[string]bool
}

func newSection(tbl *lua.LTable, path string, ve *ValidationError) *section {
	return &section{tbl: tbl, path: path, ve: ve, seen: map[string]bool{}}
}

// number copies a numeric key into dst. Absent keys leave dst untouched.
func (s *section) number(key string, dst *float64) {
	s.seen[key] = true
	v := s.tbl.RawGetString(key)
	if v == lua.LNil {
		return
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		s.errorf("%s.%s must be a number, got %s", s.path, key, v.Type())
		return
	}
	*dst = float64(n)
}

// integer copies a whole-number key into dst.
func (s *section) integer(key string, dst *int) {
	s.seen[key] = true
	v := s.tbl.RawGetString(key)
	if v == lua.LNil {
		return
	}
	n, ok := v.(lua.LNumber)
	if !ok {
		s.errorf("%s.%s must be a number, got %s", s.path, key, v.Type())
		return
	}
	f := float64(n)
	if f != math.Trunc(f) {
		s.errorf("%s.%s must be a whole number, got %v", s.path, key, f)
		return
	}
	*dst = int(f)
}

// table returns the nested section under key, or nil if absent.
func (s *section) table(key string) *section {
	s.seen[key] = true
	v := s.tbl.RawGetString(key)
	if v == lua.LNil {
		return nil
	}
	t, ok := v.(*lua.LTable)
	if !ok {
		s.errorf("%s.%s must be a table, got %s", s.path, key, v.Type())
		return nil
	}
	return newSection(t, s.path+"."+key, s.ve)
}

// finish warns about keys that were never read. Typos land here.
func (s *section) finish() {
	var unknown []string
	s.tbl.ForEach(func(k, _ lua.LValue) {
		if !s.seen[k.String()] {
			unknown = append(unknown, k.String())
		}
	})
	sort.Strings(unknown)
	for _, k := range unknown {
		s.ve.Warnings = append(s.ve.Warnings, fmt.Sprintf("%s: unknown key %q ignored", s.path, k))
	}
}

func (s *section) errorf(format string, args ...any) {
	s.ve.Errors = append(s.ve.Errors, fmt.Sprintf(format, args...))
}

// compile applies all collected Lua tables on top of the reference tuning.
func compile(coll *collector) (*balance.Balance, *ValidationError) {
	b := balance.Default()
	ve := &ValidationError{}

	if len(coll.balance) > 1 {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"Balance defined %d times; later definitions override earlier ones", len(coll.balance)))
	}
	for _, tbl := range coll.balance {
		compileBalance(b, newSection(tbl, "Balance", ve))
	}

	seen := map[string]bool{}
	for _, raw := range coll.crops {
		if seen[raw.id] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("Crop %q defined more than once", raw.id))
		}
		seen[raw.id] = true
		compileCrop(b, raw, ve)
	}

	return b, ve
}

func compileBalance(b *balance.Balance, s *section) {
	s.number("growth_time", &b.GrowthTime)

	if pest := s.table("pest"); pest != nil {
		pest.number("interval", &b.PestCheckInterval)
		pest.number("probability", &b.PestAttackProbability)
		pest.finish()
	}

	if refine := s.table("refine"); refine != nil {
		refine.number("time", &b.RefineTime)
		refine.integer("cost", &b.RefineCost)
		refine.number("base_success", &b.BaseSuccessRate)
		refine.number("proficiency_bonus", &b.ProficiencyBonus)
		refine.integer("proficiency_gain", &b.ProficiencyGain)
		if fb := refine.table("flame_bonus"); fb != nil {
			for _, lvl := range []types.FlameLevel{types.FlameLow, types.FlameMid, types.FlameHigh} {
				v := b.FlameBonus[lvl]
				fb.number(string(lvl), &v)
				b.FlameBonus[lvl] = v
			}
			fb.finish()
		}
		refine.finish()
	}

	s.finish()
}

func compileCrop(b *balance.Balance, raw rawCrop, ve *ValidationError) {
	crop := types.Item(raw.id)
	if !balance.IsCrop(crop) {
		ve.Errors = append(ve.Errors, fmt.Sprintf("Crop %q: unknown crop", raw.id))
		return
	}
	s := newSection(raw.table, fmt.Sprintf("Crop %q", raw.id), ve)
	if raw.table.RawGetString("growth_time") == lua.LNil {
		s.errorf("%s: growth_time is required", s.path)
	}
	growth := b.GrowthFor(crop)
	s.number("growth_time", &growth)
	b.CropGrowth[crop] = growth
	s.finish()
}

// sortedLuaFiles returns .lua files in a directory, with balance.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var mainFile string
	var others []string
	for _, f := range files {
		if f == "balance.lua" {
			mainFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if mainFile != "" {
		return append([]string{mainFile}, others...)
	}
	return others
}
