package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/idlecore/types"
)

func TestLoad_Minimal(t *testing.T) {
	cat, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cat.Game.Title != "Minimal Test Game" {
		t.Errorf("Title = %q, want %q", cat.Game.Title, "Minimal Test Game")
	}
	action, ok := cat.Action("normal_tree")
	if !ok {
		t.Fatal("action 'normal_tree' not found")
	}
	if action.SkillID != types.Woodcutting {
		t.Errorf("skill = %q, want woodcutting", action.SkillID)
	}
	if action.Duration != 3000 || action.XP != 25 {
		t.Errorf("duration/xp = %v/%v, want 3000/25", action.Duration, action.XP)
	}
	if action.ItemProduced == nil || action.ItemProduced.ItemID != "normal_log" {
		t.Errorf("produced = %+v, want normal_log", action.ItemProduced)
	}
	// Quantity defaults to 1 when omitted.
	if action.ItemProduced.Quantity != 1 {
		t.Errorf("produced quantity = %d, want 1", action.ItemProduced.Quantity)
	}
}

func TestLoad_Full(t *testing.T) {
	cat, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cat.Actions) != 4 {
		t.Errorf("expected 4 actions, got %d", len(cat.Actions))
	}
	if len(cat.Items) != 6 {
		t.Errorf("expected 6 items, got %d", len(cat.Items))
	}
	if len(cat.Equipment) != 2 {
		t.Errorf("expected 2 equipment, got %d", len(cat.Equipment))
	}

	smelt, _ := cat.Action("smelt_bronze")
	if len(smelt.InputItems) != 2 {
		t.Fatalf("smelt_bronze inputs = %+v, want 2", smelt.InputItems)
	}
	if smelt.InputItems[0].ItemID != "copper_ore" || smelt.InputItems[0].Quantity != 1 {
		t.Errorf("first input = %+v", smelt.InputItems[0])
	}

	mine, _ := cat.Action("mine_copper")
	if len(mine.BonusDrops) != 1 || mine.BonusDrops[0].ItemID != "gem" || mine.BonusDrops[0].Chance != 0.02 {
		t.Errorf("bonus drops = %+v", mine.BonusDrops)
	}

	sword, ok := cat.EquipmentDef("bronze_sword")
	if !ok {
		t.Fatal("equipment 'bronze_sword' not found")
	}
	if sword.Slot != types.SlotWeapon {
		t.Errorf("slot = %q, want weapon", sword.Slot)
	}
	if sword.Stats.AttackBonus != 4 || sword.Stats.StrengthBonus != 3 {
		t.Errorf("stats = %+v", sword.Stats)
	}
	if sword.Requirements[types.Attack] != 1 {
		t.Errorf("requirements = %+v", sword.Requirements)
	}

	shrimp, _ := cat.Item("shrimp")
	if shrimp.HealsFor != 3 {
		t.Errorf("shrimp heals_for = %d, want 3", shrimp.HealsFor)
	}

	shop, ok := cat.Shop("general")
	if !ok {
		t.Fatal("shop 'general' not found")
	}
	if len(shop.Items) != 2 || shop.Items[0].ItemID != "bronze_sword" || shop.Items[0].BuyPrice != 100 {
		t.Errorf("shop items = %+v", shop.Items)
	}

	goblin, ok := cat.Monster("goblin")
	if !ok {
		t.Fatal("monster 'goblin' not found")
	}
	if goblin.Hitpoints != 5 || goblin.AttackSpeed != 2400 || goblin.XPReward != 20 {
		t.Errorf("goblin = %+v", goblin)
	}
	if len(goblin.Drops) != 2 {
		t.Fatalf("goblin drops = %+v", goblin.Drops)
	}
	if goblin.Drops[0].MinQuantity != 1 || goblin.Drops[0].MaxQuantity != 3 {
		t.Errorf("first drop = %+v", goblin.Drops[0])
	}
	// min/max default to 1 when omitted.
	if goblin.Drops[1].MinQuantity != 1 || goblin.Drops[1].MaxQuantity != 1 {
		t.Errorf("second drop = %+v", goblin.Drops[1])
	}
}

// loadContent writes source as game.lua in a temp dir and loads it.
func loadContent(t *testing.T, source string) error {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "game.lua"), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	return err
}

func TestLoad_MissingGame(t *testing.T) {
	err := loadContent(t, `Item "log" { name = "Log" }`)
	if err == nil || !strings.Contains(err.Error(), "no Game{}") {
		t.Errorf("err = %v, want missing Game{}", err)
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for directory without .lua files")
	}
}

func TestLoad_LuaSyntaxError(t *testing.T) {
	err := loadContent(t, `Game { title = `)
	if err == nil {
		t.Error("expected error for malformed Lua")
	}
}

func TestLoad_DuplicateID(t *testing.T) {
	err := loadContent(t, `
Game { title = "T" }
Item "log" { name = "Log" }
Item "log" { name = "Log Again" }
`)
	if err == nil || !strings.Contains(err.Error(), "duplicate item") {
		t.Errorf("err = %v, want duplicate item", err)
	}
}

func TestLoad_SandboxBlocksIO(t *testing.T) {
	err := loadContent(t, `
Game { title = "T" }
local f = io.open("/etc/passwd", "r")
`)
	if err == nil {
		t.Error("expected error: io must not be available to content")
	}
}

func TestLoad_SandboxBlocksRandom(t *testing.T) {
	err := loadContent(t, `
Game { title = "T" }
local x = math.random()
`)
	if err == nil {
		t.Error("expected error: math.random must not be available to content")
	}
}
