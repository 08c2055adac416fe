package save

import (
	"testing"

	"github.com/nathoo/idlecore/types"
)

func testSave() SaveData {
	sd := SaveData{
		Version:      Version,
		LastSaveTime: 1700000000000,
		Skills: map[types.SkillID]types.SkillState{
			types.Woodcutting: {XP: 1250.5},
			types.Hitpoints:   {XP: 1154},
		},
		Inventory: map[string]int{"normal_log": 42, "oak_log": 7},
		Equipment: map[types.EquipmentSlot]string{types.SlotWeapon: "bronze_sword"},
		Gold:      999,
		CurrentAction: &types.Action{
			SkillID:  types.Woodcutting,
			ActionID: "normal_tree",
			Duration: 3000, ElapsedMs: 1200, XPReward: 25,
			ItemReward: &types.ItemStack{ItemID: "normal_log", Quantity: 1},
		},
	}
	sd.Checksum = Checksum(sd)
	return sd
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sd := testSave()
	raw, err := Encode(sd)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	tree, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if tree["version"].(float64) != float64(Version) {
		t.Errorf("version lost in round trip")
	}
	if tree["checksum"].(string) != sd.Checksum {
		t.Errorf("checksum lost in round trip")
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := Decode([]byte(`"a string"`)); err == nil {
		t.Error("expected error for non-object JSON")
	}
}

func TestChecksumRoundTrip(t *testing.T) {
	sd := testSave()
	raw, err := Encode(sd)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyChecksum(tree) {
		t.Error("checksum must verify after an honest round trip")
	}
}

func TestChecksumDetectsFieldMutations(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"gold", func(m map[string]any) { m["gold"] = float64(1000000) }},
		{"skill xp", func(m map[string]any) {
			m["skills"].(map[string]any)["woodcutting"].(map[string]any)["xp"] = float64(9999999)
		}},
		{"inventory qty", func(m map[string]any) {
			m["inventory"].(map[string]any)["normal_log"] = float64(5000)
		}},
		{"new inventory entry", func(m map[string]any) {
			m["inventory"].(map[string]any)["diamond"] = float64(100)
		}},
		{"equipment", func(m map[string]any) {
			m["equipment"].(map[string]any)["weapon"] = "rune_sword"
		}},
		{"action", func(m map[string]any) {
			m["currentAction"].(map[string]any)["actionId"] = "yew_tree"
		}},
		{"version", func(m map[string]any) { m["version"] = float64(99) }},
		{"timestamp", func(m map[string]any) { m["lastSaveTime"] = float64(1) }},
	}

	for _, mut := range mutations {
		sd := testSave()
		raw, err := Encode(sd)
		if err != nil {
			t.Fatal(err)
		}
		tree, err := Decode(raw)
		if err != nil {
			t.Fatal(err)
		}
		mut.mutate(tree)
		if VerifyChecksum(tree) {
			t.Errorf("%s mutation not detected", mut.name)
		}
	}
}

func TestChecksumMissing(t *testing.T) {
	sd := testSave()
	sd.Checksum = ""
	raw, _ := Encode(sd)
	tree, _ := Decode(raw)
	if VerifyChecksum(tree) {
		t.Error("missing checksum must not verify")
	}
}

func TestChecksumIndependentOfMapOrder(t *testing.T) {
	// Same logical content, two constructions; map iteration order must
	// not affect the tag.
	a := testSave()
	b := SaveData{
		Version:      a.Version,
		LastSaveTime: a.LastSaveTime,
		Skills: map[types.SkillID]types.SkillState{
			types.Hitpoints:   {XP: 1154},
			types.Woodcutting: {XP: 1250.5},
		},
		Inventory:     map[string]int{"oak_log": 7, "normal_log": 42},
		Equipment:     map[types.EquipmentSlot]string{types.SlotWeapon: "bronze_sword"},
		Gold:          a.Gold,
		CurrentAction: a.CurrentAction,
	}
	if Checksum(a) != Checksum(b) {
		t.Error("checksum must be order-independent")
	}
}

func TestChecksumIgnoresActionShape(t *testing.T) {
	// Only the action ID participates; elapsed time may drift between
	// checksum computation and write without invalidating the tag.
	a := testSave()
	b := testSave()
	b.CurrentAction.ElapsedMs = 2999
	if Checksum(a) != Checksum(b) {
		t.Error("elapsed time must not affect the checksum")
	}
}

func TestPlayerStateConversion(t *testing.T) {
	sd := testSave()
	ps := sd.ToPlayerState()
	if ps.LastTickTime != sd.LastSaveTime {
		t.Error("LastSaveTime must become the tick anchor")
	}
	back := FromPlayerState(ps, 1800000000000)
	if back.LastSaveTime != 1800000000000 {
		t.Error("FromPlayerState must stamp the given time")
	}
	if back.Gold != sd.Gold || back.Inventory["normal_log"] != 42 {
		t.Error("state fields lost in conversion")
	}
}
