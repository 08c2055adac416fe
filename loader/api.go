package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the Lua constructors as globals. All of the
// "id"-taking constructors are curried: Action("id") returns a function
// that takes the definition table, so content reads as
//
//	Action "normal_tree" { skill = "woodcutting", ... }
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	L.SetGlobal("Action", curried(L, func(id string, tbl *lua.LTable) {
		coll.actions = append(coll.actions, rawDef{id: id, table: tbl})
	}))
	L.SetGlobal("Item", curried(L, func(id string, tbl *lua.LTable) {
		coll.items = append(coll.items, rawDef{id: id, table: tbl})
	}))
	L.SetGlobal("Equipment", curried(L, func(id string, tbl *lua.LTable) {
		coll.equipment = append(coll.equipment, rawDef{id: id, table: tbl})
	}))
	L.SetGlobal("Shop", curried(L, func(id string, tbl *lua.LTable) {
		coll.shops = append(coll.shops, rawDef{id: id, table: tbl})
	}))
	L.SetGlobal("Monster", curried(L, func(id string, tbl *lua.LTable) {
		coll.monsters = append(coll.monsters, rawDef{id: id, table: tbl})
	}))
}

func curried(L *lua.LState, collect func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			collect(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}
