// Package sim implements the action replay engine. One algorithm serves
// both the live 100ms tick and the multi-hour offline catch-up: given an
// elapsed duration and an inventory snapshot, it resolves as many full
// completions as time and materials allow.
package sim

import "github.com/nathoo/idlecore/types"

// StopReason says why the replay loop stopped.
type StopReason string

const (
	// StopTimeExhausted: no completion resolved; all time carried over.
	StopTimeExhausted StopReason = "time_exhausted"
	// StopCompleted: at least one completion resolved; leftover time
	// below one duration carried over.
	StopCompleted StopReason = "completed_with_time_left"
	// StopOutOfMaterials: a required input ran short mid-replay. The
	// action cannot continue regardless of remaining time.
	StopOutOfMaterials StopReason = "out_of_materials"
)

// Roller is the randomness source for bonus drops.
type Roller interface {
	// Chance reports one Bernoulli trial at probability p.
	Chance(p float64) bool
}

// Result is the outcome of one replay pass.
type Result struct {
	Completions   int
	XPBySkill     map[types.SkillID]float64
	ItemsGained   map[string]int
	ItemsConsumed map[string]int
	// RemainingElapsed is the carry-over toward the next completion.
	// Only meaningful when StopReason is not StopOutOfMaterials.
	RemainingElapsed float64
	StopReason       StopReason
}

// Replay resolves completions of action over deltaMs. inv is the caller's
// snapshot and is mutated in place: inputs deducted, outputs and bonus
// drops credited. Consumption and production for a completion are applied
// atomically as a pair — a completion either fully happens or is not
// counted.
func Replay(action types.Action, deltaMs float64, inv map[string]int, rng Roller) Result {
	result := Result{
		XPBySkill:     map[types.SkillID]float64{},
		ItemsGained:   map[string]int{},
		ItemsConsumed: map[string]int{},
		StopReason:    StopTimeExhausted,
	}

	// The validator clears non-positive durations before they reach us.
	if action.Duration <= 0 {
		result.RemainingElapsed = action.ElapsedMs
		return result
	}

	remaining := action.ElapsedMs + deltaMs

	for remaining >= action.Duration {
		if short(action.InputItems, inv) {
			result.StopReason = StopOutOfMaterials
			result.RemainingElapsed = remaining
			rollBonusDrops(action.BonusDrops, result.Completions, inv, &result, rng)
			return result
		}

		for _, req := range action.InputItems {
			inv[req.ItemID] -= req.Quantity
			result.ItemsConsumed[req.ItemID] += req.Quantity
		}
		result.XPBySkill[action.SkillID] += action.XPReward
		if action.ItemReward != nil {
			inv[action.ItemReward.ItemID] += action.ItemReward.Quantity
			result.ItemsGained[action.ItemReward.ItemID] += action.ItemReward.Quantity
		}

		result.Completions++
		remaining -= action.Duration
	}

	result.RemainingElapsed = remaining
	if result.Completions > 0 {
		result.StopReason = StopCompleted
	}
	rollBonusDrops(action.BonusDrops, result.Completions, inv, &result, rng)
	return result
}

// short reports whether any required input is below its per-completion
// quantity in the simulated inventory.
func short(inputs []types.ItemStack, inv map[string]int) bool {
	for _, req := range inputs {
		if inv[req.ItemID] < req.Quantity {
			return true
		}
	}
	return false
}

// rollBonusDrops rolls each declared drop once per resolved completion.
// Rolled as a batch after the main loop; drop outcomes are independent
// Bernoulli trials, so ordering does not change their distribution.
func rollBonusDrops(drops []types.BonusDrop, completions int, inv map[string]int, result *Result, rng Roller) {
	if len(drops) == 0 || completions == 0 || rng == nil {
		return
	}
	for _, drop := range drops {
		qty := drop.Quantity
		if qty <= 0 {
			qty = 1
		}
		for i := 0; i < completions; i++ {
			if rng.Chance(drop.Chance) {
				inv[drop.ItemID] += qty
				result.ItemsGained[drop.ItemID] += qty
			}
		}
	}
}
