package save

import (
	"fmt"
	"math"

	"github.com/nathoo/idlecore/catalog"
	"github.com/nathoo/idlecore/experience"
	"github.com/nathoo/idlecore/types"
)

// Issue is one validation finding: a critical error or an auto-fixed
// warning.
type Issue struct {
	Field   string
	Message string
	Action  string
}

// Report is the outcome of the validation pipeline. Data is nil only
// when Valid is false (no usable save). ChecksumOK is a separate signal
// from sanitization: a mismatch suggests external tampering, while
// warnings cover internally inconsistent but benign fields.
type Report struct {
	Valid      bool
	Modified   bool
	ChecksumOK bool
	Errors     []Issue
	Warnings   []Issue
	Data       *SaveData
}

func (r *Report) warn(field, message, action string) {
	r.Modified = true
	r.Warnings = append(r.Warnings, Issue{Field: field, Message: message, Action: action})
}

// futureToleranceMs allows lastSaveTime to be slightly ahead of the
// local clock before it is treated as invalid.
const futureToleranceMs = 60 * 1000

// Sanitize validates the untyped save tree against the content catalog
// and produces a typed, in-bounds copy plus a report. Only a bad version
// aborts; every other problem is repaired with a warning.
func Sanitize(tree map[string]any, cat *catalog.Catalog, nowMs int64) Report {
	report := Report{Valid: true, ChecksumOK: VerifyChecksum(tree)}

	// 1. Version. Anything but a positive integer means the blob is not
	// a save we understand: abort.
	version, ok := tree["version"].(float64)
	if !ok || version < 1 || version != math.Trunc(version) {
		report.Valid = false
		report.Errors = append(report.Errors, Issue{
			Field:   "version",
			Message: "invalid save version",
		})
		return report
	}

	sd := SaveData{
		Version:   int(version),
		Skills:    map[types.SkillID]types.SkillState{},
		Inventory: map[string]int{},
		Equipment: map[types.EquipmentSlot]string{},
	}

	// 2. Last save time.
	lastSave, ok := tree["lastSaveTime"].(float64)
	if !ok || !isFinite(lastSave) || lastSave < 0 || lastSave > float64(nowMs+futureToleranceMs) {
		sd.LastSaveTime = nowMs
		report.warn("lastSaveTime", "invalid timestamp", "reset to current time")
	} else {
		sd.LastSaveTime = int64(lastSave)
	}

	sanitizeSkills(tree, &sd, &report)
	sanitizeInventory(tree, cat, &sd, &report)
	sanitizeGold(tree, &sd, &report)
	sanitizeEquipment(tree, cat, &sd, &report)
	sanitizeAction(tree, &sd, &report)

	report.Data = &sd
	return report
}

// sanitizeSkills fills all sixteen known skills, repairing missing,
// negative, non-finite, or over-cap XP. Unknown skill IDs are ignored:
// the enum is closed.
func sanitizeSkills(tree map[string]any, sd *SaveData, report *Report) {
	skills, ok := tree["skills"].(map[string]any)
	if !ok {
		skills = map[string]any{}
		report.warn("skills", "missing skills object", "initialized empty")
	}

	for _, id := range types.AllSkills {
		field := "skills." + string(id)
		entry, ok := skills[string(id)].(map[string]any)
		if !ok {
			sd.Skills[id] = types.SkillState{XP: defaultXP(id)}
			report.warn(field, "missing or invalid skill data", "reset to default XP")
			continue
		}
		xp, ok := entry["xp"].(float64)
		switch {
		case !ok || !isFinite(xp):
			sd.Skills[id] = types.SkillState{XP: defaultXP(id)}
			report.warn(field+".xp", "missing or non-numeric XP", "reset to default XP")
		case xp < 0:
			sd.Skills[id] = types.SkillState{}
			report.warn(field+".xp", fmt.Sprintf("negative XP: %v", xp), "reset to 0")
		case xp > experience.MaxXP:
			sd.Skills[id] = types.SkillState{XP: experience.MaxXP}
			report.warn(field+".xp", fmt.Sprintf("XP exceeds maximum: %v", xp),
				fmt.Sprintf("capped to %v", experience.MaxXP))
		default:
			sd.Skills[id] = types.SkillState{XP: xp}
		}
	}
}

// defaultXP is the reset floor for a skill. Hitpoints floors at the XP
// for level 10: the player never has a level-1 HP skill.
func defaultXP(id types.SkillID) float64 {
	if id == types.Hitpoints {
		return experience.XPForLevel(10)
	}
	return 0
}

func sanitizeInventory(tree map[string]any, cat *catalog.Catalog, sd *SaveData, report *Report) {
	inv, ok := tree["inventory"].(map[string]any)
	if !ok {
		report.warn("inventory", "invalid inventory object", "reset to empty")
		return
	}

	for id, raw := range inv {
		field := "inventory." + id
		if !cat.ValidItemID(id) {
			report.warn(field, "unknown item ID", "removed from inventory")
			continue
		}
		qty, ok := raw.(float64)
		if !ok || !isFinite(qty) || qty < 0 || qty != math.Trunc(qty) {
			report.warn(field, fmt.Sprintf("invalid quantity: %v", raw), "reset to 0")
			continue
		}
		if qty > types.MaxStack {
			report.warn(field, fmt.Sprintf("quantity exceeds maximum: %v", qty),
				fmt.Sprintf("capped to %d", types.MaxStack))
			qty = types.MaxStack
		}
		// Zero-quantity entries are pruned.
		if qty > 0 {
			sd.Inventory[id] = int(qty)
		}
	}
}

func sanitizeGold(tree map[string]any, sd *SaveData, report *Report) {
	gold, ok := tree["gold"].(float64)
	switch {
	case !ok || !isFinite(gold) || gold < 0:
		report.warn("gold", fmt.Sprintf("invalid gold amount: %v", tree["gold"]), "reset to 0")
	case gold > types.MaxStack:
		sd.Gold = types.MaxStack
		report.warn("gold", fmt.Sprintf("gold exceeds maximum: %v", gold),
			fmt.Sprintf("capped to %d", types.MaxStack))
	default:
		sd.Gold = int(gold)
	}
}

// sanitizeEquipment checks each slot against the equipment catalog and
// the already-sanitized skills. Items failing level requirements are
// returned to inventory, never deleted.
func sanitizeEquipment(tree map[string]any, cat *catalog.Catalog, sd *SaveData, report *Report) {
	equip, ok := tree["equipment"].(map[string]any)
	if !ok {
		report.warn("equipment", "invalid equipment object", "reset to empty")
		return
	}

	for rawSlot, rawID := range equip {
		slot := types.EquipmentSlot(rawSlot)
		field := "equipment." + rawSlot
		if !knownSlot(slot) {
			report.warn(field, "invalid equipment slot", "removed")
			continue
		}
		id, ok := rawID.(string)
		if !ok || id == "" {
			report.warn(field, "invalid equipped item", "unequipped")
			continue
		}
		def, ok := cat.EquipmentDef(id)
		if !ok {
			report.warn(field, fmt.Sprintf("invalid equipment ID: %s", id), "unequipped")
			continue
		}
		if def.Slot != slot {
			report.warn(field, fmt.Sprintf("item %s cannot go in %s slot", id, rawSlot), "unequipped")
			continue
		}
		if !meetsRequirements(def, sd.Skills) {
			// The item itself is legitimate; only the placement is not.
			sd.Inventory[id]++
			report.warn(field, fmt.Sprintf("level requirements not met for %s", id),
				"unequipped and returned to inventory")
			continue
		}
		sd.Equipment[slot] = id
	}
}

func knownSlot(slot types.EquipmentSlot) bool {
	for _, s := range types.AllEquipmentSlots {
		if s == slot {
			return true
		}
	}
	return false
}

func meetsRequirements(def types.EquipmentDef, skills map[types.SkillID]types.SkillState) bool {
	for skill, level := range def.Requirements {
		if experience.LevelForXP(skills[skill].XP) < level {
			return false
		}
	}
	return true
}

func sanitizeAction(tree map[string]any, sd *SaveData, report *Report) {
	raw, present := tree["currentAction"]
	if !present || raw == nil {
		return
	}
	action, ok := raw.(map[string]any)
	if !ok {
		report.warn("currentAction", "invalid action structure", "cleared current action")
		return
	}

	skillID, _ := action["skillId"].(string)
	actionID, _ := action["actionId"].(string)
	duration, durOK := action["duration"].(float64)
	elapsed, elapsedOK := action["elapsedMs"].(float64)

	if skillID == "" || actionID == "" || !durOK || !elapsedOK ||
		!isFinite(duration) || !isFinite(elapsed) || !knownSkill(types.SkillID(skillID)) {
		report.warn("currentAction", "invalid action structure", "cleared current action")
		return
	}
	if duration <= 0 {
		report.warn("currentAction", "invalid action duration", "cleared current action")
		return
	}
	if elapsed < 0 {
		elapsed = 0
		report.warn("currentAction.elapsedMs", "negative elapsed time", "clamped to 0")
	}
	// A persisted action never sits at or past its completion threshold.
	if elapsed >= duration {
		elapsed = duration - 1
		report.warn("currentAction.elapsedMs", "elapsed time at or past duration",
			"clamped below duration")
	}

	restored := types.Action{
		SkillID:   types.SkillID(skillID),
		ActionID:  actionID,
		Duration:  duration,
		ElapsedMs: elapsed,
	}
	if xp, ok := action["xpReward"].(float64); ok && isFinite(xp) && xp >= 0 {
		restored.XPReward = xp
	}
	if reward, ok := action["itemReward"].(map[string]any); ok {
		if stack, ok := decodeStack(reward); ok {
			restored.ItemReward = &stack
		}
	}
	if inputs, ok := action["inputItems"].([]any); ok {
		for _, entry := range inputs {
			if m, ok := entry.(map[string]any); ok {
				if stack, ok := decodeStack(m); ok {
					restored.InputItems = append(restored.InputItems, stack)
				}
			}
		}
	}
	if drops, ok := action["bonusDrops"].([]any); ok {
		for _, entry := range drops {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			id, _ := m["itemId"].(string)
			chance, chanceOK := m["chance"].(float64)
			if id == "" || !chanceOK || !isFinite(chance) || chance < 0 || chance > 1 {
				continue
			}
			drop := types.BonusDrop{ItemID: id, Chance: chance}
			if qty, ok := m["quantity"].(float64); ok && qty == math.Trunc(qty) && qty > 0 {
				drop.Quantity = int(qty)
			}
			restored.BonusDrops = append(restored.BonusDrops, drop)
		}
	}
	sd.CurrentAction = &restored
}

func decodeStack(m map[string]any) (types.ItemStack, bool) {
	id, _ := m["itemId"].(string)
	qty, ok := m["quantity"].(float64)
	if id == "" || !ok || !isFinite(qty) || qty <= 0 || qty != math.Trunc(qty) {
		return types.ItemStack{}, false
	}
	return types.ItemStack{ItemID: id, Quantity: int(qty)}, true
}

func knownSkill(id types.SkillID) bool {
	for _, s := range types.AllSkills {
		if s == id {
			return true
		}
	}
	return false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
