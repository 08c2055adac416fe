// Package catalog holds the immutable game-content tables: skilling
// actions, items, equipment, shops, and monsters. The engine and the save
// validator treat these as read-only lookup data.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/nathoo/idlecore/types"
)

// Catalog is the compiled, validated content set for one game.
type Catalog struct {
	Game      types.GameDef
	Actions   map[string]types.ActionDef
	Items     map[string]types.ItemDef
	Equipment map[string]types.EquipmentDef
	Shops     map[string]types.ShopDef
	Monsters  map[string]types.MonsterDef
}

// Action looks up a skilling action definition.
func (c *Catalog) Action(id string) (types.ActionDef, bool) {
	def, ok := c.Actions[id]
	return def, ok
}

// Item looks up a plain item definition.
func (c *Catalog) Item(id string) (types.ItemDef, bool) {
	def, ok := c.Items[id]
	return def, ok
}

// EquipmentDef looks up an equipment definition.
func (c *Catalog) EquipmentDef(id string) (types.EquipmentDef, bool) {
	def, ok := c.Equipment[id]
	return def, ok
}

// Shop looks up a shop definition.
func (c *Catalog) Shop(id string) (types.ShopDef, bool) {
	def, ok := c.Shops[id]
	return def, ok
}

// Monster looks up a monster definition.
func (c *Catalog) Monster(id string) (types.MonsterDef, bool) {
	def, ok := c.Monsters[id]
	return def, ok
}

// ValidItemID reports whether id names a known item or equipment piece.
// Inventory entries must satisfy this at the save boundary.
func (c *Catalog) ValidItemID(id string) bool {
	if _, ok := c.Items[id]; ok {
		return true
	}
	_, ok := c.Equipment[id]
	return ok
}

// IsEquipment reports whether id names an equipment piece.
func (c *Catalog) IsEquipment(id string) bool {
	_, ok := c.Equipment[id]
	return ok
}

// SellPrice returns the sell price for an item or equipment piece,
// or 0 for unknown IDs.
func (c *Catalog) SellPrice(id string) int {
	if def, ok := c.Items[id]; ok {
		return def.SellPrice
	}
	if def, ok := c.Equipment[id]; ok {
		return def.SellPrice
	}
	return 0
}

// ActionsForSkill returns the actions for one skill sorted by level gate,
// then ID. Used by the action pickers.
func (c *Catalog) ActionsForSkill(skill types.SkillID) []types.ActionDef {
	var defs []types.ActionDef
	for _, def := range c.Actions {
		if def.SkillID == skill {
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].LevelRequired != defs[j].LevelRequired {
			return defs[i].LevelRequired < defs[j].LevelRequired
		}
		return defs[i].ID < defs[j].ID
	})
	return defs
}

// Digest returns a stable hash of the compiled content, useful for
// diagnosing "same save, different content" reports.
func (c *Catalog) Digest() string {
	ids := struct {
		Actions   []string `json:"actions"`
		Items     []string `json:"items"`
		Equipment []string `json:"equipment"`
		Shops     []string `json:"shops"`
		Monsters  []string `json:"monsters"`
	}{
		Actions:   sortedKeys(c.Actions),
		Items:     sortedKeys(c.Items),
		Equipment: sortedKeys(c.Equipment),
		Shops:     sortedKeys(c.Shops),
		Monsters:  sortedKeys(c.Monsters),
	}
	raw, _ := json.Marshal(ids)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
