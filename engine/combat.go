package engine

import (
	"errors"
	"math"

	"github.com/nathoo/idlecore/types"
)

// CombatStyle picks which skill the per-hit XP trains.
type CombatStyle string

const (
	StyleAttack   CombatStyle = "attack"
	StyleStrength CombatStyle = "strength"
	StyleDefence  CombatStyle = "defence"
)

// playerAttackSpeedMs is the fixed delay between player swings.
const playerAttackSpeedMs = 2400

var ErrUnknownMonster = errors.New("unknown monster")

// CombatEvent is one thing that happened during a combat tick.
type CombatEvent struct {
	// Kind is "player_hit", "monster_hit", "player_miss",
	// "monster_miss", "ate", "kill", "loot", or "death".
	Kind     string
	Damage   int
	ItemID   string
	Quantity int
}

// Combat is an active fight against one monster. Monsters respawn on
// death, so a fight runs until the player stops, flees, or dies.
type Combat struct {
	Monster      types.MonsterDef
	MonsterHP    int
	PlayerHP     int
	PlayerMaxHP  int
	Style        CombatStyle
	AutoEat      bool
	EatThreshold float64 // fraction of max HP
	Food         string  // preferred food item; empty means any edible
	Kills        int

	playerTimer  float64
	monsterTimer float64
}

// StartCombat begins a fight against monsterID. Player HP starts full.
func (e *Engine) StartCombat(monsterID string, style CombatStyle) (*Combat, error) {
	monster, ok := e.Catalog.Monster(monsterID)
	if !ok {
		return nil, ErrUnknownMonster
	}
	maxHP := MaxHP(e.Store.SkillLevel(types.Hitpoints))
	return &Combat{
		Monster:      monster,
		MonsterHP:    monster.Hitpoints,
		PlayerHP:     maxHP,
		PlayerMaxHP:  maxHP,
		Style:        style,
		AutoEat:      true,
		EatThreshold: 0.5,
	}, nil
}

// TickCombat advances the fight by deltaMs. It returns the events that
// happened and whether the fight ended (player death). XP, loot, and
// food consumption flow through the session's state store.
func (e *Engine) TickCombat(c *Combat, deltaMs float64) (events []CombatEvent, over bool) {
	stats := e.equipmentStats()
	effAttack := EffectiveLevel(e.Store.SkillLevel(types.Attack), stats.AttackBonus)
	effStrength := EffectiveLevel(e.Store.SkillLevel(types.Strength), stats.StrengthBonus)
	effDefence := EffectiveLevel(e.Store.SkillLevel(types.Defence), stats.DefenceBonus)

	monsterAttack := c.Monster.AttackBonus + 8
	monsterDefence := c.Monster.DefenceBonus + 8

	c.playerTimer += deltaMs
	for c.playerTimer >= playerAttackSpeedMs && c.MonsterHP > 0 {
		c.playerTimer -= playerAttackSpeedMs

		if !e.RNG.Chance(HitChance(effAttack, monsterDefence)) {
			events = append(events, CombatEvent{Kind: "player_miss"})
			continue
		}
		damage := e.RNG.Roll(MaxHit(effStrength))
		c.MonsterHP -= damage
		if c.MonsterHP < 0 {
			c.MonsterHP = 0
		}
		events = append(events, CombatEvent{Kind: "player_hit", Damage: damage})

		// 4 XP per damage to the trained style, a third to hitpoints.
		xp := float64(damage * 4)
		e.Store.AddXP(styleSkill(c.Style), xp)
		e.Store.AddXP(types.Hitpoints, math.Floor(xp/3))
	}

	if c.MonsterHP <= 0 {
		events = append(events, e.resolveKill(c)...)
	}

	c.monsterTimer += deltaMs
	for c.monsterTimer >= c.Monster.AttackSpeed && c.PlayerHP > 0 {
		c.monsterTimer -= c.Monster.AttackSpeed

		if e.RNG.Chance(HitChance(monsterAttack, effDefence)) {
			damage := e.RNG.Roll(c.Monster.MaxHit)
			c.PlayerHP -= damage
			if c.PlayerHP < 0 {
				c.PlayerHP = 0
			}
			events = append(events, CombatEvent{Kind: "monster_hit", Damage: damage})
		} else {
			events = append(events, CombatEvent{Kind: "monster_miss"})
		}

		if c.AutoEat && c.PlayerHP > 0 &&
			float64(c.PlayerHP) <= c.EatThreshold*float64(c.PlayerMaxHP) {
			if ev, ok := e.eat(c); ok {
				events = append(events, ev)
			}
		}
	}

	if c.PlayerHP <= 0 {
		// Death forfeits nothing but ends the fight with full HP.
		c.PlayerHP = c.PlayerMaxHP
		events = append(events, CombatEvent{Kind: "death"})
		return events, true
	}
	return events, false
}

// resolveKill awards kill XP, rolls drops, and respawns the monster.
func (e *Engine) resolveKill(c *Combat) []CombatEvent {
	c.Kills++
	events := []CombatEvent{{Kind: "kill"}}

	e.Store.AddXP(styleSkill(c.Style), c.Monster.XPReward)
	e.Store.AddXP(types.Hitpoints, math.Floor(c.Monster.XPReward/3))

	for _, drop := range c.Monster.Drops {
		if !e.RNG.Chance(drop.Chance) {
			continue
		}
		qty := drop.MinQuantity
		if drop.MaxQuantity > drop.MinQuantity {
			qty = e.RNG.Between(drop.MinQuantity, drop.MaxQuantity)
		}
		if qty <= 0 {
			continue
		}
		e.Store.AddItem(drop.ItemID, qty)
		events = append(events, CombatEvent{Kind: "loot", ItemID: drop.ItemID, Quantity: qty})
	}

	c.MonsterHP = c.Monster.Hitpoints
	c.monsterTimer = 0
	return events
}

// eat consumes one piece of food from the inventory and heals.
func (e *Engine) eat(c *Combat) (CombatEvent, bool) {
	foodID := c.Food
	if foodID == "" || !e.Store.HasItem(foodID, 1) {
		foodID = e.findFood()
	}
	if foodID == "" {
		return CombatEvent{}, false
	}
	item, ok := e.Catalog.Item(foodID)
	if !ok || item.HealsFor <= 0 {
		return CombatEvent{}, false
	}
	if !e.Store.RemoveItem(foodID, 1) {
		return CombatEvent{}, false
	}
	c.PlayerHP += item.HealsFor
	if c.PlayerHP > c.PlayerMaxHP {
		c.PlayerHP = c.PlayerMaxHP
	}
	return CombatEvent{Kind: "ate", ItemID: foodID, Damage: -item.HealsFor}, true
}

// findFood returns any edible item in the inventory, preferring a
// stable order so behavior is deterministic.
func (e *Engine) findFood() string {
	best := ""
	for id, qty := range e.Store.Inventory() {
		if qty <= 0 {
			continue
		}
		item, ok := e.Catalog.Item(id)
		if !ok || item.HealsFor <= 0 {
			continue
		}
		if best == "" || id < best {
			best = id
		}
	}
	return best
}

// equipmentStats sums the bonuses of everything equipped.
func (e *Engine) equipmentStats() types.EquipmentStats {
	var total types.EquipmentStats
	for _, id := range e.Store.Equipment() {
		def, ok := e.Catalog.EquipmentDef(id)
		if !ok {
			continue
		}
		total.AttackBonus += def.Stats.AttackBonus
		total.StrengthBonus += def.Stats.StrengthBonus
		total.DefenceBonus += def.Stats.DefenceBonus
		total.RangedBonus += def.Stats.RangedBonus
		total.MagicBonus += def.Stats.MagicBonus
	}
	return total
}

func styleSkill(style CombatStyle) types.SkillID {
	switch style {
	case StyleStrength:
		return types.Strength
	case StyleDefence:
		return types.Defence
	default:
		return types.Attack
	}
}

// EffectiveLevel is the level used in combat rolls: the raw level plus
// a flat 8 plus a quarter of the equipment bonus.
func EffectiveLevel(level, bonus int) int {
	return level + 8 + bonus/4
}

// HitChance returns the probability in [0,1] that an attack at
// effAttack lands against targetDefence.
func HitChance(effAttack, targetDefence int) float64 {
	attackRoll := float64(effAttack) * 65
	defenceRoll := float64(targetDefence) * 65
	if attackRoll > defenceRoll {
		return 1 - (defenceRoll+2)/(2*(attackRoll+1))
	}
	return attackRoll / (2 * (defenceRoll + 1))
}

// MaxHit is the highest damage a swing at effStrength can deal.
func MaxHit(effStrength int) int {
	s := float64(effStrength)
	return int(math.Floor(1.3 + s/10 + s*s/640))
}

// MaxHP is the player's maximum hitpoints at the given level.
func MaxHP(hitpointsLevel int) int {
	if hitpointsLevel < 10 {
		hitpointsLevel = 10
	}
	return 10 + (hitpointsLevel-1)*4
}

// CombatLevel is the player's overall combat rating.
func CombatLevel(attack, strength, defence, hitpoints int) int {
	base := 0.25 * float64(defence+hitpoints)
	melee := 0.325 * float64(attack+strength)
	return int(math.Floor(base + melee))
}
