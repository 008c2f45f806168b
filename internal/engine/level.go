package engine

import (
	"math"

	"github.com/udisondev/unitstats/internal/stat"
)

// Level bounds. Level 1 means "no growth applied".
const (
	MinLevel = 1
	MaxLevel = 25
)

// GrowthFunc computes a scaled stat value from its current (level-1) value,
// the class/rarity modifier and the target level.
type GrowthFunc func(s stat.Name, current, modifier float64, level int) float64

// LinearGrowth is the default growth curve, linear in (level - 1):
//
//	Cooldown: max(0.1, current + modifier*(level-1))
//	others:   current * (1 + modifier*(level-1))
func LinearGrowth(s stat.Name, current, modifier float64, level int) float64 {
	factor := float64(level - 1)
	if s == stat.Cooldown {
		return math.Max(stat.CooldownFloor, current+modifier*factor)
	}
	return current * (1 + modifier*factor)
}

// clampLevel pins level into [MinLevel, maxLevel].
func clampLevel(level, maxLevel int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > maxLevel {
		return maxLevel
	}
	return level
}
