package engine

import (
	"math"
	"strings"

	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

// Kind is the combination rule used for a mod effect.
type Kind uint8

const (
	// Multiplicative: value *= (1 + amount).
	Multiplicative Kind = iota + 1
	// AdditiveFloored: value = max(0.1, value + amount).
	AdditiveFloored
	// AdditiveCapped: value = min(1, value + amount); Unavailable starts at 0.
	AdditiveCapped
	// Additive: value += amount; Unavailable becomes amount.
	Additive
	// DerivedCoefficient: CritDamage *= (1 + amount); Unavailable becomes 1 + amount.
	DerivedCoefficient
	// DerivedLifesteal: AttackEffectLifesteal += amount, or += chance*100.
	DerivedLifesteal
	// TagAppend: set-like append of the effect's tag to a comma-joined list.
	TagAppend
)

func (k Kind) String() string {
	switch k {
	case Multiplicative:
		return "multiplicative"
	case AdditiveFloored:
		return "additive_floored"
	case AdditiveCapped:
		return "additive_capped"
	case Additive:
		return "additive"
	case DerivedCoefficient:
		return "derived_coefficient"
	case DerivedLifesteal:
		return "derived_lifesteal"
	case TagAppend:
		return "tag_append"
	default:
		return "unknown"
	}
}

// Rule describes how an effect naming a stat is combined into the bag.
// Targets are the bag keys the rule writes. A target missing from the bag is
// skipped unless CreateMissing is set, in which case it starts as Unavailable.
type Rule struct {
	Kind          Kind
	Targets       []stat.Name
	CreateMissing bool
}

var attackEffectTargets = []stat.Name{stat.AttackEffect, stat.AttackEffectType}

var rules = map[stat.Name]Rule{
	stat.HP:              {Kind: Multiplicative, Targets: []stat.Name{stat.HP}},
	stat.Damage:          {Kind: Multiplicative, Targets: []stat.Name{stat.Damage}},
	stat.Cooldown:        {Kind: AdditiveFloored, Targets: []stat.Name{stat.Cooldown}},
	stat.CritChance:      {Kind: AdditiveCapped, Targets: []stat.Name{stat.CritChance}},
	stat.EvadeChance:     {Kind: AdditiveCapped, Targets: []stat.Name{stat.EvadeChance}},
	stat.Accuracy:        {Kind: AdditiveCapped, Targets: []stat.Name{stat.Accuracy}},
	stat.Knockback:       {Kind: Additive, Targets: []stat.Name{stat.Knockback}},
	stat.CritDamageCoeff: {Kind: DerivedCoefficient, Targets: []stat.Name{stat.CritDamage}},
	stat.Lifesteal:       {Kind: DerivedLifesteal, Targets: []stat.Name{stat.AttackEffectLifesteal}, CreateMissing: true},
	stat.Frost:           {Kind: TagAppend, Targets: attackEffectTargets},
	stat.Fire:            {Kind: TagAppend, Targets: attackEffectTargets},
	stat.Poison:          {Kind: TagAppend, Targets: attackEffectTargets},
	stat.Mirror:          {Kind: TagAppend, Targets: attackEffectTargets},
}

// RuleFor returns the rule for an effect stat. Stats without a rule are inert.
func RuleFor(s stat.Name) (Rule, bool) {
	r, ok := rules[s]
	return r, ok
}

// transform is a pure per-kind combination: given the current target value and
// the effect, it returns the next value and whether anything changed.
type transform func(cur stat.Value, e model.Effect) (stat.Value, bool)

var transforms = map[Kind]transform{
	Multiplicative:     multiplicative,
	AdditiveFloored:    additiveFloored,
	AdditiveCapped:     additiveCapped,
	Additive:           additive,
	DerivedCoefficient: derivedCoefficient,
	DerivedLifesteal:   derivedLifesteal,
	TagAppend:          tagAppend,
}

// finite unwraps an optional effect field. Nil, NaN and ±Inf are non-numeric.
func finite(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

func multiplicative(cur stat.Value, e model.Effect) (stat.Value, bool) {
	v, ok := cur.Float()
	amount, okA := finite(e.Amount)
	if !ok || !okA {
		return cur, false
	}
	return stat.Number(v * (1 + amount)), true
}

func additiveFloored(cur stat.Value, e model.Effect) (stat.Value, bool) {
	v, ok := cur.Float()
	amount, okA := finite(e.Amount)
	if !ok || !okA {
		return cur, false
	}
	return stat.Number(math.Max(stat.CooldownFloor, v+amount)), true
}

func additiveCapped(cur stat.Value, e model.Effect) (stat.Value, bool) {
	amount, okA := finite(e.Amount)
	if !okA {
		return cur, false
	}
	v, ok := cur.Float()
	if !ok {
		if !cur.IsUnavailable() {
			return cur, false
		}
		v = 0
	}
	return stat.Number(math.Min(stat.ChanceCap, v+amount)), true
}

func additive(cur stat.Value, e model.Effect) (stat.Value, bool) {
	amount, okA := finite(e.Amount)
	if !okA {
		return cur, false
	}
	if v, ok := cur.Float(); ok {
		return stat.Number(v + amount), true
	}
	if cur.IsUnavailable() {
		return stat.Number(amount), true
	}
	return cur, false
}

func derivedCoefficient(cur stat.Value, e model.Effect) (stat.Value, bool) {
	amount, okA := finite(e.Amount)
	if !okA {
		return cur, false
	}
	if v, ok := cur.Float(); ok {
		return stat.Number(v * (1 + amount)), true
	}
	if cur.IsUnavailable() {
		return stat.Number(1 + amount), true
	}
	return cur, false
}

// derivedLifesteal prefers amount over chance; chance is in [0,1] and is
// stored as percentage points.
func derivedLifesteal(cur stat.Value, e model.Effect) (stat.Value, bool) {
	amount, okA := finite(e.Amount)
	chance, okC := finite(e.Chance)

	var delta float64
	switch {
	case okA:
		delta = amount
	case okC:
		delta = chance * 100
	default:
		return cur, false
	}

	if v, ok := cur.Float(); ok {
		return stat.Number(v + delta), true
	}
	if cur.IsUnavailable() {
		return stat.Number(delta), true
	}
	return cur, false
}

func tagAppend(cur stat.Value, e model.Effect) (stat.Value, bool) {
	tag := string(e.Stat)
	if cur.IsUnavailable() {
		return stat.Text(tag), true
	}
	s, ok := cur.Str()
	if !ok {
		return cur, false
	}
	tags := splitTags(s)
	if len(tags) == 0 {
		return stat.Text(tag), true
	}
	for _, t := range tags {
		if t == tag {
			return cur, false
		}
	}
	return stat.Text(strings.Join(append(tags, tag), TagSeparator)), true
}

// TagSeparator joins attack-effect tags.
const TagSeparator = ", "

// splitTags parses a comma-joined tag list. "N/A" and "None" count as empty.
func splitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "N/A") || strings.EqualFold(part, "None") {
			continue
		}
		out = append(out, part)
	}
	return out
}
