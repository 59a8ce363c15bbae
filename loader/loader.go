package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/spiritfield/engine/balance"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	balance []*lua.LTable
	crops   []rawCrop
}

// Load reads a balance file, or every .lua file in a directory, applies it
// on top of the reference tuning, validates the result, and returns it.
// Problems are collected into a *ValidationError; warnings are logged.
func Load(path string) (*balance.Balance, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading balance %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = discover(path)
		if err != nil {
			return nil, err
		}
	}

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(f); err != nil {
			return nil, fmt.Errorf("executing %s: %w", filepath.Base(f), err)
		}
	}

	b, ve := compile(coll)
	validate(b, ve)

	for _, w := range ve.Warnings {
		slog.Warn("balance file", "path", path, "warning", w)
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}
	return b, nil
}

// discover lists the .lua files in dir in load order.
func discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading balance directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	sorted := sortedLuaFiles(luaFiles)
	for i, f := range sorted {
		sorted[i] = filepath.Join(dir, f)
	}
	return sorted, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Remove math.random and math.randomseed; balance files are plain data.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}
