package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/idlecore/catalog"
	"github.com/nathoo/idlecore/experience"
	"github.com/nathoo/idlecore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled catalog for referential integrity and
// consistency. Definitions with broken references fail loading rather
// than surfacing as runtime faults mid-session.
func validate(cat *catalog.Catalog) error {
	ve := &ValidationError{}

	if cat.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.title is required")
	}

	for id, action := range cat.Actions {
		validateAction(id, action, cat, ve)
	}
	for id, def := range cat.Equipment {
		validateEquipment(id, def, ve)
	}
	for id, shop := range cat.Shops {
		for _, entry := range shop.Items {
			if !cat.ValidItemID(entry.ItemID) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"shop %q sells undefined item %q", id, entry.ItemID))
			}
			if entry.BuyPrice <= 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"shop %q item %q has non-positive price %d", id, entry.ItemID, entry.BuyPrice))
			}
		}
	}
	for id, monster := range cat.Monsters {
		validateMonster(id, monster, cat, ve)
	}

	warnUnreferencedItems(cat, ve)

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateAction(id string, action types.ActionDef, cat *catalog.Catalog, ve *ValidationError) {
	if !knownSkill(action.SkillID) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"action %q uses unknown skill %q", id, action.SkillID))
	}
	if action.Duration <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"action %q has non-positive duration %v", id, action.Duration))
	}
	if action.LevelRequired < 1 || action.LevelRequired > experience.MaxLevel {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"action %q requires level %d, outside 1-%d", id, action.LevelRequired, experience.MaxLevel))
	}
	if action.XP < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"action %q has negative xp %v", id, action.XP))
	}
	if action.ItemProduced != nil {
		if !cat.ValidItemID(action.ItemProduced.ItemID) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q produces undefined item %q", id, action.ItemProduced.ItemID))
		}
		if action.ItemProduced.Quantity <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q produces non-positive quantity %d", id, action.ItemProduced.Quantity))
		}
	}
	for _, input := range action.InputItems {
		if !cat.ValidItemID(input.ItemID) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q consumes undefined item %q", id, input.ItemID))
		}
		if input.Quantity <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q consumes non-positive quantity of %q", id, input.ItemID))
		}
	}
	for _, drop := range action.BonusDrops {
		if !cat.ValidItemID(drop.ItemID) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q bonus drop references undefined item %q", id, drop.ItemID))
		}
		if drop.Chance < 0 || drop.Chance > 1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"action %q bonus drop %q chance %v outside [0,1]", id, drop.ItemID, drop.Chance))
		}
	}
}

func validateEquipment(id string, def types.EquipmentDef, ve *ValidationError) {
	if !knownSlot(def.Slot) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"equipment %q uses unknown slot %q", id, def.Slot))
	}
	for skill, level := range def.Requirements {
		if !knownSkill(skill) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"equipment %q requires unknown skill %q", id, skill))
		}
		if level < 1 || level > experience.MaxLevel {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"equipment %q requires %s level %d, outside 1-%d", id, skill, level, experience.MaxLevel))
		}
	}
}

func validateMonster(id string, monster types.MonsterDef, cat *catalog.Catalog, ve *ValidationError) {
	if monster.Hitpoints <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"monster %q has non-positive hitpoints %d", id, monster.Hitpoints))
	}
	if monster.AttackSpeed <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"monster %q has non-positive attack speed %v", id, monster.AttackSpeed))
	}
	if monster.MaxHit < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"monster %q has negative max hit %d", id, monster.MaxHit))
	}
	for _, drop := range monster.Drops {
		if !cat.ValidItemID(drop.ItemID) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"monster %q drops undefined item %q", id, drop.ItemID))
		}
		if drop.Chance < 0 || drop.Chance > 1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"monster %q drop %q chance %v outside [0,1]", id, drop.ItemID, drop.Chance))
		}
		if drop.MinQuantity > drop.MaxQuantity {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"monster %q drop %q min %d exceeds max %d", id, drop.ItemID, drop.MinQuantity, drop.MaxQuantity))
		}
	}
}

// warnUnreferencedItems flags items no action, shop, or monster can
// ever hand out. Usually a typo in the producing side.
func warnUnreferencedItems(cat *catalog.Catalog, ve *ValidationError) {
	referenced := map[string]bool{}
	for _, action := range cat.Actions {
		if action.ItemProduced != nil {
			referenced[action.ItemProduced.ItemID] = true
		}
		for _, input := range action.InputItems {
			referenced[input.ItemID] = true
		}
		for _, drop := range action.BonusDrops {
			referenced[drop.ItemID] = true
		}
	}
	for _, shop := range cat.Shops {
		for _, entry := range shop.Items {
			referenced[entry.ItemID] = true
		}
	}
	for _, monster := range cat.Monsters {
		for _, drop := range monster.Drops {
			referenced[drop.ItemID] = true
		}
	}
	for id := range cat.Items {
		if !referenced[id] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"item %q is not produced, sold, or dropped by anything", id))
		}
	}
}

func knownSkill(id types.SkillID) bool {
	for _, s := range types.AllSkills {
		if s == id {
			return true
		}
	}
	return false
}

func knownSlot(slot types.EquipmentSlot) bool {
	for _, s := range types.AllEquipmentSlots {
		if s == slot {
			return true
		}
	}
	return false
}
