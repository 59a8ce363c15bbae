package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Balance { growth_time = 10, pest = {...}, refine = {...} }
	L.SetGlobal("Balance", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.balance = append(coll.balance, tbl)
		return 0
	}))

	// Crop "id" { growth_time = 20 }: curried, Crop("id") returns a function that takes a table.
	L.SetGlobal("Crop", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.crops = append(coll.crops, rawCrop{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}
