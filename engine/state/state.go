// Package state owns the canonical player state: skills, inventory,
// equipment, gold, and the current action. All mutation goes through the
// Store; the replay engine only ever sees snapshots, and its results are
// committed here atomically.
package state

import (
	"errors"
	"time"

	"github.com/nathoo/idlecore/catalog"
	"github.com/nathoo/idlecore/engine/sim"
	"github.com/nathoo/idlecore/experience"
	"github.com/nathoo/idlecore/types"
)

var (
	// ErrMissingInputs means the player lacks a required input item.
	ErrMissingInputs = errors.New("missing required input items")
	// ErrLevelTooLow means the skill level gate is not met.
	ErrLevelTooLow = errors.New("skill level too low")
	// ErrNotEquipment means the item cannot be equipped.
	ErrNotEquipment = errors.New("item is not equipment")
	// ErrNotInShop means the shop does not sell the item.
	ErrNotInShop = errors.New("shop does not sell this item")
	// ErrNotEnoughGold means the purchase costs more than the player has.
	ErrNotEnoughGold = errors.New("not enough gold")
	// ErrNotEnoughItems means the player holds fewer than requested.
	ErrNotEnoughItems = errors.New("not enough items")
)

// hitpointsFloorXP is the XP a fresh hitpoints skill starts with
// (level 10).
var hitpointsFloorXP = experience.XPForLevel(10)

// Store owns one PlayerState and exposes the mutation operations used by
// the engine, combat, shop, and the UI layers.
type Store struct {
	cat   *catalog.Catalog
	state types.PlayerState
}

// NewStore creates a store with a fresh player.
func NewStore(cat *catalog.Catalog) *Store {
	return &Store{cat: cat, state: initialState()}
}

func initialState() types.PlayerState {
	return types.PlayerState{
		Skills:       initialSkills(),
		Inventory:    map[string]int{},
		Equipment:    map[types.EquipmentSlot]string{},
		LastTickTime: time.Now().UnixMilli(),
	}
}

func initialSkills() map[types.SkillID]types.SkillState {
	skills := make(map[types.SkillID]types.SkillState, len(types.AllSkills))
	for _, id := range types.AllSkills {
		skills[id] = types.SkillState{}
	}
	skills[types.Hitpoints] = types.SkillState{XP: hitpointsFloorXP}
	return skills
}

// Catalog returns the content catalog the store validates against.
func (s *Store) Catalog() *catalog.Catalog {
	return s.cat
}

// Snapshot returns a deep copy of the player state.
func (s *Store) Snapshot() types.PlayerState {
	out := s.state
	out.Skills = make(map[types.SkillID]types.SkillState, len(s.state.Skills))
	for id, sk := range s.state.Skills {
		out.Skills[id] = sk
	}
	out.Inventory = copyInventory(s.state.Inventory)
	out.Equipment = make(map[types.EquipmentSlot]string, len(s.state.Equipment))
	for slot, id := range s.state.Equipment {
		out.Equipment[slot] = id
	}
	if s.state.CurrentAction != nil {
		action := *s.state.CurrentAction
		out.CurrentAction = &action
	}
	return out
}

// LoadFrom replaces the player state wholesale with sanitized save data.
// Skills absent from the save keep their fresh-player defaults.
func (s *Store) LoadFrom(ps types.PlayerState) {
	fresh := initialState()
	for id, sk := range ps.Skills {
		fresh.Skills[id] = sk
	}
	if ps.Inventory != nil {
		fresh.Inventory = copyInventory(ps.Inventory)
	}
	if ps.Equipment != nil {
		fresh.Equipment = make(map[types.EquipmentSlot]string, len(ps.Equipment))
		for slot, id := range ps.Equipment {
			fresh.Equipment[slot] = id
		}
	}
	fresh.Gold = ps.Gold
	if ps.CurrentAction != nil {
		action := *ps.CurrentAction
		fresh.CurrentAction = &action
	}
	if ps.LastTickTime > 0 {
		fresh.LastTickTime = ps.LastTickTime
	}
	s.state = fresh
}

// Reset returns the store to a fresh player.
func (s *Store) Reset() {
	s.state = initialState()
}

// StartAction begins a skilling action, replacing any active one. The
// level gate must be met and every declared input must currently be in
// stock for at least one completion.
func (s *Store) StartAction(def types.ActionDef) error {
	if s.SkillLevel(def.SkillID) < def.LevelRequired {
		return ErrLevelTooLow
	}
	for _, req := range def.InputItems {
		if s.state.Inventory[req.ItemID] < req.Quantity {
			return ErrMissingInputs
		}
	}
	action := types.Action{
		SkillID:    def.SkillID,
		ActionID:   def.ID,
		Duration:   def.Duration,
		XPReward:   def.XP,
		ItemReward: def.ItemProduced,
		InputItems: def.InputItems,
		BonusDrops: def.BonusDrops,
	}
	s.state.CurrentAction = &action
	return nil
}

// StopAction clears the current action, discarding partial progress
// toward the next completion.
func (s *Store) StopAction() {
	s.state.CurrentAction = nil
}

// CurrentAction returns a copy of the active action, or nil.
func (s *Store) CurrentAction() *types.Action {
	if s.state.CurrentAction == nil {
		return nil
	}
	action := *s.state.CurrentAction
	return &action
}

// Tick advances the current action by deltaMs through the replay engine
// and commits the result: XP credited, materials consumed, outputs and
// bonus drops added, carry-over elapsed time stored. When materials run
// out the action is cleared rather than left dangling. The same path
// serves a 100ms live tick and a capped offline gap.
func (s *Store) Tick(deltaMs float64, rng sim.Roller) sim.Result {
	if s.state.CurrentAction == nil {
		return sim.Result{StopReason: sim.StopTimeExhausted}
	}

	// The engine mutates a snapshot; the live ledger is replaced only
	// on commit.
	inv := copyInventory(s.state.Inventory)
	result := sim.Replay(*s.state.CurrentAction, deltaMs, inv, rng)

	for id, xp := range result.XPBySkill {
		s.addXPUnchecked(id, xp)
	}
	pruneAndClamp(inv)
	s.state.Inventory = inv

	if result.StopReason == sim.StopOutOfMaterials {
		s.state.CurrentAction = nil
	} else {
		action := *s.state.CurrentAction
		action.ElapsedMs = result.RemainingElapsed
		s.state.CurrentAction = &action
	}
	return result
}

// MarkTicked records the wall-clock anchor used for offline-gap
// computation on the next load.
func (s *Store) MarkTicked(nowMs int64) {
	s.state.LastTickTime = nowMs
}

// LastTickTime returns the wall-clock anchor of the last committed tick.
func (s *Store) LastTickTime() int64 {
	return s.state.LastTickTime
}

// AddXP credits XP to a skill, clamped to the level-99 threshold.
// Negative amounts are ignored: XP never decreases during normal play.
func (s *Store) AddXP(id types.SkillID, amount float64) {
	if amount <= 0 {
		return
	}
	s.addXPUnchecked(id, amount)
}

func (s *Store) addXPUnchecked(id types.SkillID, amount float64) {
	sk := s.state.Skills[id]
	sk.XP += amount
	if sk.XP > experience.MaxXP {
		sk.XP = experience.MaxXP
	}
	if sk.XP < 0 {
		sk.XP = 0
	}
	s.state.Skills[id] = sk
}

// SkillXP returns the XP in a skill.
func (s *Store) SkillXP(id types.SkillID) float64 {
	return s.state.Skills[id].XP
}

// SkillLevel returns the derived level of a skill.
func (s *Store) SkillLevel(id types.SkillID) int {
	return experience.LevelForXP(s.state.Skills[id].XP)
}

// ItemCount returns the held quantity of an item; absent entries are 0.
func (s *Store) ItemCount(id string) int {
	return s.state.Inventory[id]
}

// HasItem reports whether at least qty of an item is held.
func (s *Store) HasItem(id string, qty int) bool {
	return s.state.Inventory[id] >= qty
}

// AddItem credits qty of an item, clamped to the max stack.
func (s *Store) AddItem(id string, qty int) {
	if qty <= 0 {
		return
	}
	total := s.state.Inventory[id] + qty
	if total > types.MaxStack || total < 0 {
		total = types.MaxStack
	}
	s.state.Inventory[id] = total
}

// RemoveItem debits qty of an item. Returns false, without mutating,
// if fewer are held.
func (s *Store) RemoveItem(id string, qty int) bool {
	if qty <= 0 {
		return true
	}
	have := s.state.Inventory[id]
	if have < qty {
		return false
	}
	if have == qty {
		delete(s.state.Inventory, id)
	} else {
		s.state.Inventory[id] = have - qty
	}
	return true
}

// Inventory returns a copy of the inventory ledger.
func (s *Store) Inventory() map[string]int {
	return copyInventory(s.state.Inventory)
}

// Gold returns the current gold amount.
func (s *Store) Gold() int {
	return s.state.Gold
}

// AddGold credits gold, clamped to the max stack.
func (s *Store) AddGold(n int) {
	if n <= 0 {
		return
	}
	total := s.state.Gold + n
	if total > types.MaxStack || total < 0 {
		total = types.MaxStack
	}
	s.state.Gold = total
}

// SpendGold debits gold. Returns false, without mutating, on shortfall.
func (s *Store) SpendGold(n int) bool {
	if n < 0 {
		return false
	}
	if s.state.Gold < n {
		return false
	}
	s.state.Gold -= n
	return true
}

// CanEquip reports whether the player meets an equipment piece's skill
// requirements.
func (s *Store) CanEquip(id string) bool {
	def, ok := s.cat.EquipmentDef(id)
	if !ok {
		return false
	}
	for skill, level := range def.Requirements {
		if s.SkillLevel(skill) < level {
			return false
		}
	}
	return true
}

// EquipItem moves one unit of an equipment item from inventory to its
// slot. A previously equipped item in that slot returns to inventory;
// it is never duplicated or lost.
func (s *Store) EquipItem(id string) error {
	def, ok := s.cat.EquipmentDef(id)
	if !ok {
		return ErrNotEquipment
	}
	if !s.CanEquip(id) {
		return ErrLevelTooLow
	}
	if !s.RemoveItem(id, 1) {
		return ErrNotEnoughItems
	}
	if displaced, ok := s.state.Equipment[def.Slot]; ok {
		s.AddItem(displaced, 1)
	}
	s.state.Equipment[def.Slot] = id
	return nil
}

// UnequipSlot moves the equipped item in a slot back to inventory.
// Returns false if the slot is empty.
func (s *Store) UnequipSlot(slot types.EquipmentSlot) bool {
	id, ok := s.state.Equipment[slot]
	if !ok {
		return false
	}
	s.AddItem(id, 1)
	delete(s.state.Equipment, slot)
	return true
}

// EquippedItem returns the item in a slot.
func (s *Store) EquippedItem(slot types.EquipmentSlot) (string, bool) {
	id, ok := s.state.Equipment[slot]
	return id, ok
}

// Equipment returns a copy of the equipment map.
func (s *Store) Equipment() map[types.EquipmentSlot]string {
	out := make(map[types.EquipmentSlot]string, len(s.state.Equipment))
	for slot, id := range s.state.Equipment {
		out[slot] = id
	}
	return out
}

// Buy purchases qty of an item from a shop.
func (s *Store) Buy(shopID, itemID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	shop, ok := s.cat.Shop(shopID)
	if !ok {
		return ErrNotInShop
	}
	var entry *types.ShopEntry
	for i := range shop.Items {
		if shop.Items[i].ItemID == itemID {
			entry = &shop.Items[i]
			break
		}
	}
	if entry == nil {
		return ErrNotInShop
	}
	cost := entry.BuyPrice * qty
	if !s.SpendGold(cost) {
		return ErrNotEnoughGold
	}
	s.AddItem(itemID, qty)
	return nil
}

// Sell converts qty of an item into gold at its catalog sell price.
func (s *Store) Sell(itemID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	if !s.RemoveItem(itemID, qty) {
		return ErrNotEnoughItems
	}
	s.AddGold(s.cat.SellPrice(itemID) * qty)
	return nil
}

func copyInventory(inv map[string]int) map[string]int {
	out := make(map[string]int, len(inv))
	for id, qty := range inv {
		out[id] = qty
	}
	return out
}

// pruneAndClamp drops zero-quantity entries and caps stacks after a
// replay commit.
func pruneAndClamp(inv map[string]int) {
	for id, qty := range inv {
		switch {
		case qty <= 0:
			delete(inv, id)
		case qty > types.MaxStack:
			inv[id] = types.MaxStack
		}
	}
}
