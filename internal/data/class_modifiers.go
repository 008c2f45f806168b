package data

import (
	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

// rarityRow is a per-rarity growth row. Missing tiers mean "no growth".
type rarityRow map[model.Rarity]float64

// classModifierDefs — per-level growth by Class → Stat → Rarity.
// HP and Damage are multiplicative fractions per level, Cooldown is seconds per level.
var classModifierDefs = map[string]map[stat.Name]rarityRow{
	"Warrior": {
		stat.HP: {
			model.RarityCommon: 0.10, model.RarityUncommon: 0.14, model.RarityRare: 0.18, model.RarityEpic: 0.22,
			model.RarityLegendary: 0.26, model.RarityMythic: 0.30, model.RarityDemonic: 0.34, model.RarityAncient: 0.40,
		},
		stat.Damage: {
			model.RarityCommon: 0.06, model.RarityUncommon: 0.08, model.RarityRare: 0.10, model.RarityEpic: 0.12,
			model.RarityLegendary: 0.14, model.RarityMythic: 0.16, model.RarityDemonic: 0.18, model.RarityAncient: 0.20,
		},
		stat.Cooldown: {
			model.RarityCommon: -0.01, model.RarityUncommon: -0.015, model.RarityRare: -0.02, model.RarityEpic: -0.025,
			model.RarityLegendary: -0.03, model.RarityMythic: -0.035, model.RarityDemonic: -0.04, model.RarityAncient: -0.05,
		},
	},
	"Archer": {
		stat.HP: {
			model.RarityCommon: 0.05, model.RarityUncommon: 0.07, model.RarityRare: 0.09, model.RarityEpic: 0.11,
			model.RarityLegendary: 0.13, model.RarityMythic: 0.15, model.RarityDemonic: 0.17, model.RarityAncient: 0.20,
		},
		stat.Damage: {
			model.RarityCommon: 0.08, model.RarityUncommon: 0.10, model.RarityRare: 0.12, model.RarityEpic: 0.15,
			model.RarityLegendary: 0.18, model.RarityMythic: 0.21, model.RarityDemonic: 0.24, model.RarityAncient: 0.28,
		},
		stat.Cooldown: {
			model.RarityCommon: -0.015, model.RarityUncommon: -0.02, model.RarityRare: -0.025, model.RarityEpic: -0.03,
			model.RarityLegendary: -0.035, model.RarityMythic: -0.04, model.RarityDemonic: -0.045, model.RarityAncient: -0.05,
		},
	},
	"Mage": {
		stat.HP: {
			model.RarityCommon: 0.04, model.RarityUncommon: 0.05, model.RarityRare: 0.06, model.RarityEpic: 0.08,
			model.RarityLegendary: 0.10, model.RarityMythic: 0.12, model.RarityDemonic: 0.14, model.RarityAncient: 0.16,
		},
		stat.Damage: {
			model.RarityCommon: 0.10, model.RarityUncommon: 0.12, model.RarityRare: 0.15, model.RarityEpic: 0.18,
			model.RarityLegendary: 0.21, model.RarityMythic: 0.25, model.RarityDemonic: 0.29, model.RarityAncient: 0.34,
		},
		// Mages only start shortening casts from Rare.
		stat.Cooldown: {
			model.RarityRare: -0.02, model.RarityEpic: -0.03, model.RarityLegendary: -0.04,
			model.RarityMythic: -0.05, model.RarityDemonic: -0.06, model.RarityAncient: -0.07,
		},
	},
	"Assassin": {
		stat.HP: {
			model.RarityCommon: 0.06, model.RarityUncommon: 0.08, model.RarityRare: 0.10, model.RarityEpic: 0.12,
			model.RarityLegendary: 0.14, model.RarityMythic: 0.16, model.RarityDemonic: 0.18, model.RarityAncient: 0.21,
		},
		stat.Damage: {
			model.RarityCommon: 0.09, model.RarityUncommon: 0.11, model.RarityRare: 0.13, model.RarityEpic: 0.16,
			model.RarityLegendary: 0.19, model.RarityMythic: 0.22, model.RarityDemonic: 0.26, model.RarityAncient: 0.30,
		},
		stat.Cooldown: {
			model.RarityCommon: -0.02, model.RarityUncommon: -0.025, model.RarityRare: -0.03, model.RarityEpic: -0.035,
			model.RarityLegendary: -0.04, model.RarityMythic: -0.045, model.RarityDemonic: -0.05, model.RarityAncient: -0.06,
		},
	},
	"Tank": {
		stat.HP: {
			model.RarityCommon: 0.15, model.RarityUncommon: 0.20, model.RarityRare: 0.25, model.RarityEpic: 0.30,
			model.RarityLegendary: 0.36, model.RarityMythic: 0.42, model.RarityDemonic: 0.48, model.RarityAncient: 0.55,
		},
		stat.Damage: {
			model.RarityEpic: 0.04, model.RarityLegendary: 0.05, model.RarityMythic: 0.06,
			model.RarityDemonic: 0.07, model.RarityAncient: 0.08,
		},
	},
	"Support": {
		stat.HP: {
			model.RarityCommon: 0.08, model.RarityUncommon: 0.10, model.RarityRare: 0.12, model.RarityEpic: 0.14,
			model.RarityLegendary: 0.16, model.RarityMythic: 0.18, model.RarityDemonic: 0.20, model.RarityAncient: 0.23,
		},
		stat.Cooldown: {
			model.RarityCommon: -0.01, model.RarityUncommon: -0.01, model.RarityRare: -0.015, model.RarityEpic: -0.02,
			model.RarityLegendary: -0.025, model.RarityMythic: -0.03, model.RarityDemonic: -0.035, model.RarityAncient: -0.04,
		},
	},
}
