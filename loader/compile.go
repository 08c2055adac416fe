// Package loader loads Lua game content into Go structs at startup.
// The Lua VM is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"

	"github.com/nathoo/idlecore/catalog"
	"github.com/nathoo/idlecore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds a definition table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// eachEntry iterates the array part of a table, yielding table entries.
func eachEntry(tbl *lua.LTable, fn func(entry *lua.LTable)) {
	if tbl == nil {
		return
	}
	for i := 1; i <= tbl.MaxN(); i++ {
		if entry, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			fn(entry)
		}
	}
}

// compile converts all collected Lua data into a catalog.
func compile(coll *collector) (*catalog.Catalog, error) {
	cat := &catalog.Catalog{
		Actions:   map[string]types.ActionDef{},
		Items:     map[string]types.ItemDef{},
		Equipment: map[string]types.EquipmentDef{},
		Shops:     map[string]types.ShopDef{},
		Monsters:  map[string]types.MonsterDef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	cat.Game = types.GameDef{
		Title:   getString(coll.game, "title"),
		Author:  getString(coll.game, "author"),
		Version: getString(coll.game, "version"),
	}

	for _, raw := range coll.items {
		if _, dup := cat.Items[raw.id]; dup {
			return nil, fmt.Errorf("duplicate item %q", raw.id)
		}
		cat.Items[raw.id] = compileItem(raw)
	}
	for _, raw := range coll.equipment {
		if _, dup := cat.Equipment[raw.id]; dup {
			return nil, fmt.Errorf("duplicate equipment %q", raw.id)
		}
		if _, dup := cat.Items[raw.id]; dup {
			return nil, fmt.Errorf("id %q defined as both item and equipment", raw.id)
		}
		cat.Equipment[raw.id] = compileEquipment(raw)
	}
	for _, raw := range coll.actions {
		if _, dup := cat.Actions[raw.id]; dup {
			return nil, fmt.Errorf("duplicate action %q", raw.id)
		}
		cat.Actions[raw.id] = compileAction(raw)
	}
	for _, raw := range coll.shops {
		if _, dup := cat.Shops[raw.id]; dup {
			return nil, fmt.Errorf("duplicate shop %q", raw.id)
		}
		cat.Shops[raw.id] = compileShop(raw)
	}
	for _, raw := range coll.monsters {
		if _, dup := cat.Monsters[raw.id]; dup {
			return nil, fmt.Errorf("duplicate monster %q", raw.id)
		}
		cat.Monsters[raw.id] = compileMonster(raw)
	}

	return cat, nil
}

func compileItem(raw rawDef) types.ItemDef {
	tbl := raw.table
	return types.ItemDef{
		ID:        raw.id,
		Name:      getString(tbl, "name"),
		Icon:      getString(tbl, "icon"),
		SellPrice: getInt(tbl, "sell_price"),
		HealsFor:  getInt(tbl, "heals_for"),
	}
}

func compileEquipment(raw rawDef) types.EquipmentDef {
	tbl := raw.table
	def := types.EquipmentDef{
		ID:        raw.id,
		Name:      getString(tbl, "name"),
		Icon:      getString(tbl, "icon"),
		Slot:      types.EquipmentSlot(getString(tbl, "slot")),
		SellPrice: getInt(tbl, "sell_price"),
	}
	if stats := getTable(tbl, "stats"); stats != nil {
		def.Stats = types.EquipmentStats{
			AttackBonus:   getInt(stats, "attack"),
			StrengthBonus: getInt(stats, "strength"),
			DefenceBonus:  getInt(stats, "defence"),
			RangedBonus:   getInt(stats, "ranged"),
			MagicBonus:    getInt(stats, "magic"),
		}
	}
	if reqs := getTable(tbl, "requires"); reqs != nil {
		def.Requirements = map[types.SkillID]int{}
		reqs.ForEach(func(k, v lua.LValue) {
			ks, kok := k.(lua.LString)
			vn, vok := v.(lua.LNumber)
			if kok && vok {
				def.Requirements[types.SkillID(ks)] = int(vn)
			}
		})
	}
	return def
}

func compileAction(raw rawDef) types.ActionDef {
	tbl := raw.table
	def := types.ActionDef{
		ID:            raw.id,
		Name:          getString(tbl, "name"),
		SkillID:       types.SkillID(getString(tbl, "skill")),
		LevelRequired: getInt(tbl, "level"),
		XP:            getNumber(tbl, "xp"),
		Duration:      getNumber(tbl, "duration"),
	}
	if def.LevelRequired == 0 {
		def.LevelRequired = 1
	}
	if produces := getTable(tbl, "produces"); produces != nil {
		def.ItemProduced = &types.ItemStack{
			ItemID:   getString(produces, "item"),
			Quantity: getInt(produces, "quantity"),
		}
		if def.ItemProduced.Quantity == 0 {
			def.ItemProduced.Quantity = 1
		}
	}
	eachEntry(getTable(tbl, "consumes"), func(entry *lua.LTable) {
		stack := types.ItemStack{
			ItemID:   getString(entry, "item"),
			Quantity: getInt(entry, "quantity"),
		}
		if stack.Quantity == 0 {
			stack.Quantity = 1
		}
		def.InputItems = append(def.InputItems, stack)
	})
	eachEntry(getTable(tbl, "bonus_drops"), func(entry *lua.LTable) {
		def.BonusDrops = append(def.BonusDrops, types.BonusDrop{
			ItemID:   getString(entry, "item"),
			Chance:   getNumber(entry, "chance"),
			Quantity: getInt(entry, "quantity"),
		})
	})
	return def
}

func compileShop(raw rawDef) types.ShopDef {
	tbl := raw.table
	def := types.ShopDef{
		ID:   raw.id,
		Name: getString(tbl, "name"),
	}
	eachEntry(getTable(tbl, "items"), func(entry *lua.LTable) {
		def.Items = append(def.Items, types.ShopEntry{
			ItemID:   getString(entry, "item"),
			BuyPrice: getInt(entry, "price"),
		})
	})
	return def
}

func compileMonster(raw rawDef) types.MonsterDef {
	tbl := raw.table
	def := types.MonsterDef{
		ID:            raw.id,
		Name:          getString(tbl, "name"),
		Hitpoints:     getInt(tbl, "hitpoints"),
		MaxHit:        getInt(tbl, "max_hit"),
		AttackSpeed:   getNumber(tbl, "attack_speed"),
		AttackBonus:   getInt(tbl, "attack_bonus"),
		StrengthBonus: getInt(tbl, "strength_bonus"),
		DefenceBonus:  getInt(tbl, "defence_bonus"),
		XPReward:      getNumber(tbl, "xp"),
	}
	eachEntry(getTable(tbl, "drops"), func(entry *lua.LTable) {
		drop := types.MonsterDrop{
			ItemID:      getString(entry, "item"),
			Chance:      getNumber(entry, "chance"),
			MinQuantity: getInt(entry, "min"),
			MaxQuantity: getInt(entry, "max"),
		}
		if drop.MinQuantity == 0 {
			drop.MinQuantity = 1
		}
		if drop.MaxQuantity < drop.MinQuantity {
			drop.MaxQuantity = drop.MinQuantity
		}
		def.Drops = append(def.Drops, drop)
	})
	return def
}
