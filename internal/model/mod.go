package model

import "github.com/udisondev/unitstats/internal/stat"

// Effect is one change a Mod makes. Amount and Chance are optional; a nil
// field never mutates state.
type Effect struct {
	Stat   stat.Name `json:"stat" yaml:"stat"`
	Amount *float64  `json:"amount,omitempty" yaml:"amount,omitempty"`
	Chance *float64  `json:"chance,omitempty" yaml:"chance,omitempty"`
}

// Mod is an equippable modifier belonging to exactly one rarity tier.
type Mod struct {
	ID      string   `json:"id" yaml:"id"`
	Label   string   `json:"label" yaml:"label"`
	Rarity  Rarity   `json:"rarity" yaml:"rarity"`
	Effects []Effect `json:"effects" yaml:"effects"`
}

// AmountEffect is a shorthand for an Effect carrying only an amount.
func AmountEffect(s stat.Name, amount float64) Effect {
	return Effect{Stat: s, Amount: &amount}
}

// ChanceEffect is a shorthand for an Effect carrying only a chance.
func ChanceEffect(s stat.Name, chance float64) Effect {
	return Effect{Stat: s, Chance: &chance}
}

// TagEffect is a shorthand for an attack-effect tag (Fire, Frost, ...).
func TagEffect(s stat.Name) Effect {
	return Effect{Stat: s}
}
