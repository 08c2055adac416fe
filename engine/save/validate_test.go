package save

import (
	"math"
	"strings"
	"testing"

	"github.com/nathoo/idlecore/catalog"
	"github.com/nathoo/idlecore/experience"
	"github.com/nathoo/idlecore/types"
)

const testNow = int64(1700000000000)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Actions: map[string]types.ActionDef{
			"normal_tree": {ID: "normal_tree", SkillID: types.Woodcutting, XP: 25, Duration: 3000},
		},
		Items: map[string]types.ItemDef{
			"normal_log": {ID: "normal_log"},
			"oak_log":    {ID: "oak_log"},
		},
		Equipment: map[string]types.EquipmentDef{
			"bronze_sword": {
				ID: "bronze_sword", Slot: types.SlotWeapon,
				Requirements: map[types.SkillID]int{types.Attack: 1},
			},
			"rune_sword": {
				ID: "rune_sword", Slot: types.SlotWeapon,
				Requirements: map[types.SkillID]int{types.Attack: 40},
			},
			"bronze_helmet": {ID: "bronze_helmet", Slot: types.SlotHead},
		},
	}
}

// validTree builds an untyped save tree as it would decode from an
// honest save file.
func validTree() map[string]any {
	sd := SaveData{
		Version:      Version,
		LastSaveTime: testNow - 60000,
		Skills:       map[types.SkillID]types.SkillState{},
		Inventory:    map[string]int{"normal_log": 10},
		Equipment:    map[types.EquipmentSlot]string{types.SlotWeapon: "bronze_sword"},
		Gold:         500,
	}
	for _, id := range types.AllSkills {
		sd.Skills[id] = types.SkillState{XP: 1000}
	}
	sd.Checksum = Checksum(sd)

	raw, err := Encode(sd)
	if err != nil {
		panic(err)
	}
	tree, err := Decode(raw)
	if err != nil {
		panic(err)
	}
	return tree
}

func hasWarning(report Report, field string) bool {
	for _, w := range report.Warnings {
		if strings.HasPrefix(w.Field, field) {
			return true
		}
	}
	return false
}

func TestSanitizeCleanSave(t *testing.T) {
	report := Sanitize(validTree(), testCatalog(), testNow)

	if !report.Valid {
		t.Fatal("clean save must be valid")
	}
	if report.Modified {
		t.Errorf("clean save must not be modified, warnings: %v", report.Warnings)
	}
	if !report.ChecksumOK {
		t.Error("clean save must pass checksum")
	}
	if report.Data.Gold != 500 || report.Data.Inventory["normal_log"] != 10 {
		t.Error("clean fields must pass through unchanged")
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	// Break several fields, sanitize, then sanitize the output again:
	// the second pass must change nothing.
	tree := validTree()
	tree["gold"] = float64(-50)
	tree["inventory"].(map[string]any)["hacked_item"] = float64(5)
	delete(tree["skills"].(map[string]any), "mining")

	first := Sanitize(tree, testCatalog(), testNow)
	if !first.Modified {
		t.Fatal("first pass should modify")
	}

	stamped := *first.Data
	stamped.Checksum = Checksum(stamped)
	raw, err := Encode(stamped)
	if err != nil {
		t.Fatal(err)
	}
	tree2, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	second := Sanitize(tree2, testCatalog(), testNow)
	if second.Modified {
		t.Errorf("second pass must be a no-op, warnings: %v", second.Warnings)
	}
	if !second.ChecksumOK {
		t.Error("re-stamped save must pass checksum")
	}
}

func TestSanitizeBadVersion(t *testing.T) {
	for _, bad := range []any{nil, "three", float64(0), float64(-2), float64(1.5), true} {
		tree := validTree()
		if bad == nil {
			delete(tree, "version")
		} else {
			tree["version"] = bad
		}
		report := Sanitize(tree, testCatalog(), testNow)
		if report.Valid {
			t.Errorf("version %v: expected critical failure", bad)
		}
		if report.Data != nil {
			t.Errorf("version %v: no usable save expected", bad)
		}
	}
}

func TestSanitizeLastSaveTime(t *testing.T) {
	cases := []struct {
		name  string
		value any
		fixed bool
	}{
		{"valid past", float64(testNow - 1000), false},
		{"slightly future", float64(testNow + 30000), false},
		{"far future", float64(testNow + 120000), true},
		{"negative", float64(-5), true},
		{"string", "yesterday", true},
		{"infinity", math.Inf(1), true},
	}
	for _, c := range cases {
		tree := validTree()
		tree["lastSaveTime"] = c.value
		report := Sanitize(tree, testCatalog(), testNow)
		if c.fixed {
			if report.Data.LastSaveTime != testNow {
				t.Errorf("%s: expected reset to now, got %d", c.name, report.Data.LastSaveTime)
			}
			if !hasWarning(report, "lastSaveTime") {
				t.Errorf("%s: expected warning", c.name)
			}
		} else if hasWarning(report, "lastSaveTime") {
			t.Errorf("%s: unexpected warning", c.name)
		}
	}
}

func TestSanitizeSkills(t *testing.T) {
	tree := validTree()
	skills := tree["skills"].(map[string]any)
	skills["woodcutting"] = map[string]any{"xp": float64(-100)}
	skills["mining"] = map[string]any{"xp": experience.MaxXP * 2}
	skills["fishing"] = map[string]any{"xp": "lots"}
	skills["cooking"] = map[string]any{"xp": math.NaN()}
	delete(skills, "hitpoints")
	skills["dragonslaying"] = map[string]any{"xp": float64(50)} // unknown id

	report := Sanitize(tree, testCatalog(), testNow)
	data := report.Data

	if got := data.Skills[types.Woodcutting].XP; got != 0 {
		t.Errorf("negative XP: got %v, want 0", got)
	}
	if got := data.Skills[types.Mining].XP; got != experience.MaxXP {
		t.Errorf("over-cap XP: got %v, want %v", got, experience.MaxXP)
	}
	if got := data.Skills[types.Fishing].XP; got != 0 {
		t.Errorf("string XP: got %v, want 0", got)
	}
	if got := data.Skills[types.Cooking].XP; got != 0 {
		t.Errorf("NaN XP: got %v, want 0", got)
	}
	if got := data.Skills[types.Hitpoints].XP; got != experience.XPForLevel(10) {
		t.Errorf("missing hitpoints: got %v, want level-10 floor", got)
	}
	if _, ok := data.Skills["dragonslaying"]; ok {
		t.Error("unknown skill IDs must be dropped")
	}
	if len(data.Skills) != len(types.AllSkills) {
		t.Errorf("all %d skills must be present, got %d", len(types.AllSkills), len(data.Skills))
	}
}

func TestSanitizeInventory(t *testing.T) {
	tree := validTree()
	inv := tree["inventory"].(map[string]any)
	inv["hacked_item"] = float64(5)
	inv["oak_log"] = float64(-3)
	inv["normal_log"] = float64(types.MaxStack) + 10

	report := Sanitize(tree, testCatalog(), testNow)
	data := report.Data

	if _, ok := data.Inventory["hacked_item"]; ok {
		t.Error("unknown item must be dropped")
	}
	if _, ok := data.Inventory["oak_log"]; ok {
		t.Error("negative quantity must reset to 0 and be pruned")
	}
	if got := data.Inventory["normal_log"]; got != types.MaxStack {
		t.Errorf("over-stack quantity: got %d, want MaxStack", got)
	}
	if !hasWarning(report, "inventory.hacked_item") {
		t.Error("expected warning for dropped item")
	}
}

func TestSanitizeInventoryNotObject(t *testing.T) {
	tree := validTree()
	tree["inventory"] = "all the things"
	report := Sanitize(tree, testCatalog(), testNow)
	if len(report.Data.Inventory) != 0 {
		t.Error("non-object inventory must reset to empty")
	}
	if !hasWarning(report, "inventory") {
		t.Error("expected inventory warning")
	}
}

// gold = -50 sanitizes to 0 with a warning naming the
// field.
func TestSanitizeNegativeGold(t *testing.T) {
	tree := validTree()
	tree["gold"] = float64(-50)

	report := Sanitize(tree, testCatalog(), testNow)

	if report.Data.Gold != 0 {
		t.Errorf("gold %d, want 0", report.Data.Gold)
	}
	found := false
	for _, w := range report.Warnings {
		if w.Field == "gold" {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning referencing field gold")
	}
}

func TestSanitizeGoldBounds(t *testing.T) {
	tree := validTree()
	tree["gold"] = float64(types.MaxStack) * 3
	report := Sanitize(tree, testCatalog(), testNow)
	if report.Data.Gold != types.MaxStack {
		t.Errorf("gold %d, want MaxStack clamp", report.Data.Gold)
	}

	tree = validTree()
	tree["gold"] = math.Inf(1)
	report = Sanitize(tree, testCatalog(), testNow)
	if report.Data.Gold != 0 {
		t.Errorf("infinite gold must reset to 0, got %d", report.Data.Gold)
	}
}

func TestSanitizeEquipmentUnknownItem(t *testing.T) {
	tree := validTree()
	tree["equipment"].(map[string]any)["weapon"] = "excalibur"
	report := Sanitize(tree, testCatalog(), testNow)
	if _, ok := report.Data.Equipment[types.SlotWeapon]; ok {
		t.Error("unknown equipment must be unequipped")
	}
}

func TestSanitizeEquipmentSlotMismatch(t *testing.T) {
	tree := validTree()
	tree["equipment"].(map[string]any)["head"] = "bronze_sword"
	report := Sanitize(tree, testCatalog(), testNow)
	if _, ok := report.Data.Equipment[types.SlotHead]; ok {
		t.Error("slot-mismatched equipment must be unequipped")
	}
	// Slot mismatch only unequips; it does not touch inventory.
	if report.Data.Inventory["bronze_sword"] != 0 {
		t.Error("slot mismatch should not return item to inventory")
	}
}

// An item requiring attack 40 on a save whose attack is
// level 39 is force-unequipped and returned with quantity exactly +1.
func TestSanitizeEquipmentRequirementsReturnItem(t *testing.T) {
	tree := validTree()
	level39 := experience.XPForLevel(40) - 1
	tree["skills"].(map[string]any)["attack"] = map[string]any{"xp": level39}
	tree["equipment"].(map[string]any)["weapon"] = "rune_sword"

	report := Sanitize(tree, testCatalog(), testNow)

	if _, ok := report.Data.Equipment[types.SlotWeapon]; ok {
		t.Error("under-leveled equipment must be unequipped")
	}
	if got := report.Data.Inventory["rune_sword"]; got != 1 {
		t.Errorf("returned quantity %d, want exactly 1", got)
	}
}

func TestSanitizeEquipmentRequirementsUseSanitizedSkills(t *testing.T) {
	// Attack XP is tampered above the cap; requirements are checked
	// against the clamped value, which still satisfies level 40.
	tree := validTree()
	tree["skills"].(map[string]any)["attack"] = map[string]any{"xp": experience.MaxXP * 10}
	tree["equipment"].(map[string]any)["weapon"] = "rune_sword"

	report := Sanitize(tree, testCatalog(), testNow)

	if got := report.Data.Equipment[types.SlotWeapon]; got != "rune_sword" {
		t.Errorf("clamped level 99 still meets requirement, got %q", got)
	}
}

func TestSanitizeEquipmentUnknownSlot(t *testing.T) {
	tree := validTree()
	tree["equipment"].(map[string]any)["tail"] = "bronze_helmet"
	report := Sanitize(tree, testCatalog(), testNow)
	for slot := range report.Data.Equipment {
		if slot == "tail" {
			t.Error("unknown slots must be removed")
		}
	}
	if !hasWarning(report, "equipment.tail") {
		t.Error("expected warning for unknown slot")
	}
}

func TestSanitizeActionStructure(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing actionId", func(a map[string]any) { delete(a, "actionId") }},
		{"missing skillId", func(a map[string]any) { delete(a, "skillId") }},
		{"unknown skill", func(a map[string]any) { a["skillId"] = "dragonslaying" }},
		{"string duration", func(a map[string]any) { a["duration"] = "long" }},
		{"non-numeric elapsed", func(a map[string]any) { a["elapsedMs"] = true }},
		{"zero duration", func(a map[string]any) { a["duration"] = float64(0) }},
		{"negative duration", func(a map[string]any) { a["duration"] = float64(-3000) }},
	}
	for _, c := range cases {
		tree := validTree()
		tree["currentAction"] = map[string]any{
			"skillId": "woodcutting", "actionId": "normal_tree",
			"duration": float64(3000), "elapsedMs": float64(100), "xpReward": float64(25),
		}
		c.mutate(tree["currentAction"].(map[string]any))
		report := Sanitize(tree, testCatalog(), testNow)
		if report.Data.CurrentAction != nil {
			t.Errorf("%s: action must be cleared", c.name)
		}
		if !report.Valid {
			t.Errorf("%s: clearing the action must not abort the save", c.name)
		}
		if !hasWarning(report, "currentAction") {
			t.Errorf("%s: expected warning", c.name)
		}
	}
}

func TestSanitizeActionElapsedClamps(t *testing.T) {
	tree := validTree()
	tree["currentAction"] = map[string]any{
		"skillId": "woodcutting", "actionId": "normal_tree",
		"duration": float64(3000), "elapsedMs": float64(-500), "xpReward": float64(25),
	}
	report := Sanitize(tree, testCatalog(), testNow)
	if got := report.Data.CurrentAction.ElapsedMs; got != 0 {
		t.Errorf("negative elapsed: got %v, want 0", got)
	}

	tree = validTree()
	tree["currentAction"] = map[string]any{
		"skillId": "woodcutting", "actionId": "normal_tree",
		"duration": float64(3000), "elapsedMs": float64(3000), "xpReward": float64(25),
	}
	report = Sanitize(tree, testCatalog(), testNow)
	if got := report.Data.CurrentAction.ElapsedMs; got != 2999 {
		t.Errorf("elapsed at duration: got %v, want duration-1", got)
	}
}

func TestSanitizeActionPreservesRewards(t *testing.T) {
	tree := validTree()
	tree["currentAction"] = map[string]any{
		"skillId": "woodcutting", "actionId": "normal_tree",
		"duration": float64(3000), "elapsedMs": float64(100), "xpReward": float64(25),
		"itemReward": map[string]any{"itemId": "normal_log", "quantity": float64(1)},
		"inputItems": []any{
			map[string]any{"itemId": "oak_log", "quantity": float64(2)},
		},
		"bonusDrops": []any{
			map[string]any{"itemId": "oak_log", "chance": 0.01},
			map[string]any{"itemId": "normal_log", "chance": 1.5}, // out of range, dropped
		},
	}
	report := Sanitize(tree, testCatalog(), testNow)
	action := report.Data.CurrentAction
	if action == nil {
		t.Fatal("action should survive")
	}
	if action.ItemReward == nil || action.ItemReward.ItemID != "normal_log" {
		t.Error("item reward lost")
	}
	if len(action.InputItems) != 1 || action.InputItems[0].Quantity != 2 {
		t.Errorf("input items lost: %v", action.InputItems)
	}
	if len(action.BonusDrops) != 1 || action.BonusDrops[0].Chance != 0.01 {
		t.Errorf("bonus drops: %v", action.BonusDrops)
	}
}

func TestChecksumMismatchIsSeparateSignal(t *testing.T) {
	tree := validTree()
	tree["gold"] = float64(9999999) // tamper after stamping

	report := Sanitize(tree, testCatalog(), testNow)

	if report.ChecksumOK {
		t.Error("tampered save must fail checksum")
	}
	// The data itself is structurally fine: usable, unmodified.
	if !report.Valid || report.Modified {
		t.Error("checksum failure must not affect sanitization outcome")
	}
	if report.Data.Gold != 9999999 {
		t.Error("sanitized data is used regardless of checksum")
	}
}
