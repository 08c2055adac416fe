package engine

import (
	"testing"

	"github.com/nathoo/idlecore/storage"
	"github.com/nathoo/idlecore/types"
)

func TestEffectiveLevel(t *testing.T) {
	if got := EffectiveLevel(1, 0); got != 9 {
		t.Errorf("EffectiveLevel(1,0) = %d, want 9", got)
	}
	if got := EffectiveLevel(40, 10); got != 50 {
		t.Errorf("EffectiveLevel(40,10) = %d, want 50", got)
	}
	if got := EffectiveLevel(99, 100); got != 132 {
		t.Errorf("EffectiveLevel(99,100) = %d, want 132", got)
	}
}

func TestHitChanceBounds(t *testing.T) {
	for _, tc := range []struct{ attack, defence int }{
		{9, 9}, {9, 200}, {200, 9}, {1, 1},
	} {
		p := HitChance(tc.attack, tc.defence)
		if p <= 0 || p >= 1 {
			t.Errorf("HitChance(%d,%d) = %v, want in (0,1)", tc.attack, tc.defence, p)
		}
	}
	if HitChance(200, 9) <= HitChance(9, 9) {
		t.Error("more attack should mean more accuracy")
	}
	if HitChance(9, 200) >= HitChance(9, 9) {
		t.Error("more defence should mean less accuracy")
	}
}

func TestMaxHit(t *testing.T) {
	// floor(1.3 + 9/10 + 81/640)
	if got := MaxHit(9); got != 2 {
		t.Errorf("MaxHit(9) = %d, want 2", got)
	}
	if MaxHit(132) <= MaxHit(9) {
		t.Error("more strength should mean a bigger max hit")
	}
}

func TestMaxHP(t *testing.T) {
	// Hitpoints starts at level 10: levels below that floor to 10.
	if got := MaxHP(1); got != 46 {
		t.Errorf("MaxHP(1) = %d, want 46", got)
	}
	if got := MaxHP(10); got != 46 {
		t.Errorf("MaxHP(10) = %d, want 46", got)
	}
	if got := MaxHP(99); got != 402 {
		t.Errorf("MaxHP(99) = %d, want 402", got)
	}
}

func TestCombatLevel(t *testing.T) {
	if got := CombatLevel(1, 1, 1, 10); got != 3 {
		t.Errorf("CombatLevel(1,1,1,10) = %d, want 3", got)
	}
	if got := CombatLevel(99, 99, 99, 99); got != 113 {
		t.Errorf("CombatLevel(99,99,99,99) = %d, want 113", got)
	}
}

func TestStartCombat(t *testing.T) {
	e := testEngine(storage.NewMemStore(), baseTime)

	if _, err := e.StartCombat("dragon", StyleAttack); err != ErrUnknownMonster {
		t.Errorf("unknown monster: err = %v, want ErrUnknownMonster", err)
	}

	c, err := e.StartCombat("goblin", StyleStrength)
	if err != nil {
		t.Fatalf("start combat: %v", err)
	}
	if c.MonsterHP != 5 {
		t.Errorf("monster hp %d, want 5", c.MonsterHP)
	}
	if c.PlayerHP != 46 || c.PlayerMaxHP != 46 {
		t.Errorf("player hp %d/%d, want 46/46", c.PlayerHP, c.PlayerMaxHP)
	}
	if c.Style != StyleStrength {
		t.Errorf("style %q, want strength", c.Style)
	}
}

func TestCombatKillsAwardXPAndLoot(t *testing.T) {
	e := testEngine(storage.NewMemStore(), baseTime)
	c, err := e.StartCombat("goblin", StyleAttack)
	if err != nil {
		t.Fatalf("start combat: %v", err)
	}

	// Enough swings that at least one kill is a statistical certainty.
	for i := 0; i < 200; i++ {
		if _, over := e.TickCombat(c, playerAttackSpeedMs); over {
			t.Fatal("a max-hit-0 goblin cannot kill the player")
		}
	}

	if c.Kills == 0 {
		t.Fatal("no kills after 200 swings")
	}
	// Kill XP alone is 20 per kill to the trained style.
	if xp := e.Store.SkillXP(types.Attack); xp < float64(20*c.Kills) {
		t.Errorf("attack xp %v, want at least %d", xp, 20*c.Kills)
	}
	// The goblin always drops 1-3 copper ore.
	ore := e.Store.ItemCount("copper_ore")
	if ore < c.Kills || ore > 3*c.Kills {
		t.Errorf("copper ore %d, want between %d and %d", ore, c.Kills, 3*c.Kills)
	}
}

func TestCombatMonsterRespawns(t *testing.T) {
	e := testEngine(storage.NewMemStore(), baseTime)
	c, err := e.StartCombat("goblin", StyleAttack)
	if err != nil {
		t.Fatalf("start combat: %v", err)
	}
	for i := 0; i < 200 && c.Kills == 0; i++ {
		e.TickCombat(c, playerAttackSpeedMs)
	}
	if c.Kills == 0 {
		t.Fatal("no kill to respawn after")
	}
	if c.MonsterHP <= 0 {
		t.Errorf("monster hp %d after respawn, want positive", c.MonsterHP)
	}
}

func TestCombatAutoEat(t *testing.T) {
	e := testEngine(storage.NewMemStore(), baseTime)
	e.Catalog.Monsters["ogre"] = types.MonsterDef{
		ID: "ogre", Hitpoints: 100000, MaxHit: 4,
		AttackSpeed: 2400, AttackBonus: 10000,
	}
	e.Store.AddItem("shrimp", 1000)

	c, err := e.StartCombat("ogre", StyleAttack)
	if err != nil {
		t.Fatalf("start combat: %v", err)
	}
	c.Food = "shrimp"
	c.EatThreshold = 0.9

	// Max hit 4 with a 3-point heal below half HP: the player can be
	// chipped down to the eat threshold but never killed.
	for i := 0; i < 100; i++ {
		if _, over := e.TickCombat(c, 2400); over {
			t.Fatal("player died despite a full supply of food")
		}
	}
	if e.Store.ItemCount("shrimp") == 1000 {
		t.Error("no food eaten over 100 ogre attacks")
	}
	if c.PlayerHP <= 0 {
		t.Errorf("player hp %d, want positive", c.PlayerHP)
	}
}

func TestCombatPlayerDeath(t *testing.T) {
	e := testEngine(storage.NewMemStore(), baseTime)
	e.Catalog.Monsters["titan"] = types.MonsterDef{
		ID: "titan", Hitpoints: 100000, MaxHit: 50,
		AttackSpeed: 2400, AttackBonus: 10000,
	}

	c, err := e.StartCombat("titan", StyleAttack)
	if err != nil {
		t.Fatalf("start combat: %v", err)
	}
	c.AutoEat = false

	died := false
	for i := 0; i < 1000; i++ {
		events, over := e.TickCombat(c, 2400)
		if over {
			died = true
			last := events[len(events)-1]
			if last.Kind != "death" {
				t.Errorf("final event %q, want death", last.Kind)
			}
			break
		}
	}
	if !died {
		t.Fatal("an unarmored level-3 player survived 1000 titan attacks")
	}
	if c.PlayerHP != c.PlayerMaxHP {
		t.Errorf("hp %d after death, want full %d", c.PlayerHP, c.PlayerMaxHP)
	}
}
