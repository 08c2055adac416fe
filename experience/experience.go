// Package experience maps XP to levels and back off a precomputed
// monotonic table using the classic RuneScape curve. Level 99 sits at
// 13,034,431 XP.
package experience

import "math"

// MaxLevel is the level cap.
const MaxLevel = 99

// xpTable[level-1] = total XP needed to reach that level. Level 1 = 0 XP.
var xpTable = buildXPTable()

func buildXPTable() []float64 {
	table := make([]float64, 0, MaxLevel)
	table = append(table, 0)
	total := 0.0
	for level := 1; level < MaxLevel; level++ {
		next := math.Floor((float64(level) + 300*math.Pow(2, float64(level)/7)) / 4)
		total += next
		table = append(table, math.Floor(total))
	}
	return table
}

// MaxXP is the XP a skill is clamped to: the threshold for level 99.
var MaxXP = XPForLevel(MaxLevel)

// XPForLevel returns the total XP required to reach the given level.
// Levels at or below 1 return 0; levels above the cap return MaxXP.
func XPForLevel(level int) float64 {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		return xpTable[MaxLevel-1]
	}
	return xpTable[level-1]
}

// LevelForXP returns the level reached at the given XP.
func LevelForXP(xp float64) int {
	if xp <= 0 {
		return 1
	}
	// Binary search over the monotonic table.
	low, high := 1, MaxLevel
	for low < high {
		mid := (low + high + 1) / 2
		if XPForLevel(mid) <= xp {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}

// Progress returns progress through the current level in [0, 1].
func Progress(xp float64) float64 {
	level := LevelForXP(xp)
	if level >= MaxLevel {
		return 1
	}
	cur := XPForLevel(level)
	next := XPForLevel(level + 1)
	return (xp - cur) / (next - cur)
}

// ToNextLevel returns the XP remaining until the next level, or 0 at cap.
func ToNextLevel(xp float64) float64 {
	level := LevelForXP(xp)
	if level >= MaxLevel {
		return 0
	}
	return XPForLevel(level+1) - xp
}
