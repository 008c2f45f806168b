// Package stat defines the stat bag passed through the stat computation pipeline.
//
// A Bag maps a fixed set of stat names to a Value. A Value is either a number,
// a text (identity fields and attack-effect tag lists) or Unavailable, which
// means "this unit has no such stat" and is never confused with zero.
package stat

// Name identifies a stat column.
type Name string

// Identity fields.
const (
	Label  Name = "Label"
	Class  Name = "Class"
	Rarity Name = "Rarity"
)

// Combat stats carried by a unit.
const (
	HP                    Name = "HP"
	Damage                Name = "Damage"
	Cooldown              Name = "Cooldown"
	Distance              Name = "Distance"
	CritChance            Name = "CritChance"
	CritDamage            Name = "CritDamage"
	AttackEffect          Name = "AttackEffect"
	AttackEffectType      Name = "AttackEffectType"
	AttackEffectLifesteal Name = "AttackEffectLifesteal"
	Knockback             Name = "Knockback"
	Accuracy              Name = "Accuracy"
	EvadeChance           Name = "EvadeChance"
	HPOffset              Name = "HPOffset"
	ShadowStepDistance    Name = "ShadowStepDistance"
	ShadowStepCooldown    Name = "ShadowStepCooldown"
)

// Effect-only targets. These never appear as bag keys: a mod effect naming one
// of them writes to a different stat (see engine rules).
const (
	CritDamageCoeff Name = "CritDamageCoeff"
	Lifesteal       Name = "Lifesteal"
	Frost           Name = "Frost"
	Fire            Name = "Fire"
	Poison          Name = "Poison"
	Mirror          Name = "Mirror"
)

// CooldownFloor is the lowest value Cooldown may take after any transformation.
const CooldownFloor = 0.1

// ChanceCap is the upper bound for CritChance, EvadeChance and Accuracy.
const ChanceCap = 1.0

// Columns lists every bag key in display order.
var Columns = []Name{
	Label, Class, Rarity,
	HP, Damage, Cooldown, Distance,
	CritChance, CritDamage,
	AttackEffect, AttackEffectType, AttackEffectLifesteal,
	Knockback, Accuracy, EvadeChance, HPOffset,
	ShadowStepDistance, ShadowStepCooldown,
}

var textColumns = map[Name]bool{
	Label:            true,
	Class:            true,
	Rarity:           true,
	AttackEffect:     true,
	AttackEffectType: true,
}

// IsText reports whether the column holds text rather than a number.
func IsText(n Name) bool {
	return textColumns[n]
}

// IsColumn reports whether n is a known bag key.
func IsColumn(n Name) bool {
	for _, c := range Columns {
		if c == n {
			return true
		}
	}
	return false
}
