// Package types defines the shared data structures for the idlecore engine.
// This package contains only type definitions — no logic, no methods.
package types

// SkillID identifies one of the sixteen player skills.
type SkillID string

const (
	// Gathering.
	Woodcutting SkillID = "woodcutting"
	Mining      SkillID = "mining"
	Fishing     SkillID = "fishing"
	Farming     SkillID = "farming"
	// Artisan.
	Smithing  SkillID = "smithing"
	Cooking   SkillID = "cooking"
	Fletching SkillID = "fletching"
	Crafting  SkillID = "crafting"
	Herblore  SkillID = "herblore"
	// Combat.
	Attack    SkillID = "attack"
	Strength  SkillID = "strength"
	Defence   SkillID = "defence"
	Hitpoints SkillID = "hitpoints"
	Ranged    SkillID = "ranged"
	Magic     SkillID = "magic"
	Prayer    SkillID = "prayer"
)

// AllSkills lists every skill in canonical order. The set is closed:
// saves referencing unknown skill IDs are dropped during sanitization.
var AllSkills = []SkillID{
	Woodcutting, Mining, Fishing, Farming,
	Smithing, Cooking, Fletching, Crafting, Herblore,
	Attack, Strength, Defence, Hitpoints, Ranged, Magic, Prayer,
}

// EquipmentSlot identifies one of the ten equipment slots.
type EquipmentSlot string

const (
	SlotHead   EquipmentSlot = "head"
	SlotBody   EquipmentSlot = "body"
	SlotLegs   EquipmentSlot = "legs"
	SlotBoots  EquipmentSlot = "boots"
	SlotGloves EquipmentSlot = "gloves"
	SlotCape   EquipmentSlot = "cape"
	SlotAmulet EquipmentSlot = "amulet"
	SlotRing   EquipmentSlot = "ring"
	SlotWeapon EquipmentSlot = "weapon"
	SlotShield EquipmentSlot = "shield"
)

// AllEquipmentSlots lists every equipment slot. The set is closed.
var AllEquipmentSlots = []EquipmentSlot{
	SlotHead, SlotBody, SlotLegs, SlotBoots, SlotGloves,
	SlotCape, SlotAmulet, SlotRing, SlotWeapon, SlotShield,
}

// MaxStack is the largest quantity a single inventory entry (or the gold
// pile) may hold.
const MaxStack = 2147483647

// SkillState is the persisted state of a single skill. Level is always
// derived from XP, never stored.
type SkillState struct {
	XP float64 `json:"xp"`
}

// ItemStack pairs an item ID with an integer quantity.
type ItemStack struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// BonusDrop is a probabilistic extra reward rolled once per completion.
type BonusDrop struct {
	ItemID   string  `json:"itemId"`
	Chance   float64 `json:"chance"`             // [0, 1]
	Quantity int     `json:"quantity,omitempty"` // 0 means 1
}

// Action is the player's current activity. At most one is active at a
// time; ElapsedMs stays strictly below Duration while persisted.
type Action struct {
	SkillID    SkillID     `json:"skillId"`
	ActionID   string      `json:"actionId"`
	Duration   float64     `json:"duration"`  // ms for one completion
	ElapsedMs  float64     `json:"elapsedMs"` // time accumulated toward completion
	XPReward   float64     `json:"xpReward"`
	ItemReward *ItemStack  `json:"itemReward,omitempty"`
	InputItems []ItemStack `json:"inputItems,omitempty"`
	BonusDrops []BonusDrop `json:"bonusDrops,omitempty"`
}

// PlayerState is the root aggregate, owned by the state store and
// persisted wholesale.
type PlayerState struct {
	Skills        map[SkillID]SkillState   `json:"skills"`
	Inventory     map[string]int           `json:"inventory"`
	Equipment     map[EquipmentSlot]string `json:"equipment"`
	Gold          int                      `json:"gold"`
	CurrentAction *Action                  `json:"currentAction"`
	LastTickTime  int64                    `json:"lastTickTime"` // epoch ms
}

// ActionDef is the immutable definition of a skilling action.
type ActionDef struct {
	ID            string
	Name          string
	SkillID       SkillID
	LevelRequired int
	XP            float64
	Duration      float64 // ms
	ItemProduced  *ItemStack
	InputItems    []ItemStack
	BonusDrops    []BonusDrop
}

// ItemDef is the immutable definition of a plain (non-equipment) item.
type ItemDef struct {
	ID        string
	Name      string
	Icon      string
	SellPrice int
	HealsFor  int // hitpoints restored when eaten; 0 means not edible
}

// EquipmentStats are the combat bonuses an equipment piece grants.
type EquipmentStats struct {
	AttackBonus   int
	StrengthBonus int
	DefenceBonus  int
	RangedBonus   int
	MagicBonus    int
}

// EquipmentDef is the immutable definition of an equippable item.
type EquipmentDef struct {
	ID           string
	Name         string
	Icon         string
	Slot         EquipmentSlot
	Stats        EquipmentStats
	Requirements map[SkillID]int // skill -> minimum level
	SellPrice    int
}

// ShopEntry is one purchasable line in a shop.
type ShopEntry struct {
	ItemID   string
	BuyPrice int
}

// ShopDef is the immutable definition of a shop.
type ShopDef struct {
	ID    string
	Name  string
	Items []ShopEntry
}

// MonsterDrop is a probabilistic loot entry on a monster.
type MonsterDrop struct {
	ItemID      string
	Chance      float64
	MinQuantity int
	MaxQuantity int
}

// MonsterDef is the immutable definition of a combat monster.
type MonsterDef struct {
	ID            string
	Name          string
	Hitpoints     int
	MaxHit        int
	AttackSpeed   float64 // ms between attacks
	AttackBonus   int
	StrengthBonus int
	DefenceBonus  int
	XPReward      float64 // split across combat skills per kill
	Drops         []MonsterDrop
}

// GameDef holds game metadata from the content files.
type GameDef struct {
	Title   string
	Author  string
	Version string
}
