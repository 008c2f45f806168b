package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

func bagOf(values map[stat.Name]stat.Value) stat.Bag { return stat.NewBag(values) }

func mod(id string, r model.Rarity, effects ...model.Effect) model.Mod {
	return model.Mod{ID: id, Label: id, Rarity: r, Effects: effects}
}

func ptr(f float64) *float64 { return &f }

func TestApplyMods_EmptyIsIdentity(t *testing.T) {
	t.Parallel()

	b := warriorRare().Base
	assert.True(t, b.Equal(ApplyMods(b, nil)))
	assert.True(t, b.Equal(ApplyMods(b, []model.Mod{})))
	assert.True(t, b.Equal(ApplyMods(b, []model.Mod{mod("empty", model.RarityCommon)})))
}

func TestApplyMods_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		start  map[stat.Name]stat.Value
		effect model.Effect
		target stat.Name
		want   stat.Value
	}{
		// Multiplicative
		{"hp multiplicative", map[stat.Name]stat.Value{stat.HP: stat.Number(200)},
			model.AmountEffect(stat.HP, 0.25), stat.HP, stat.Number(250)},
		{"damage negative", map[stat.Name]stat.Value{stat.Damage: stat.Number(100)},
			model.AmountEffect(stat.Damage, -0.5), stat.Damage, stat.Number(50)},
		{"hp unavailable stays", map[stat.Name]stat.Value{stat.HP: stat.Unavailable},
			model.AmountEffect(stat.HP, 0.25), stat.HP, stat.Unavailable},

		// AdditiveFloored
		{"cooldown additive", map[stat.Name]stat.Value{stat.Cooldown: stat.Number(2)},
			model.AmountEffect(stat.Cooldown, -0.5), stat.Cooldown, stat.Number(1.5)},
		{"cooldown floor", map[stat.Name]stat.Value{stat.Cooldown: stat.Number(0.3)},
			model.AmountEffect(stat.Cooldown, -1), stat.Cooldown, stat.Number(0.1)},
		{"cooldown unavailable stays", map[stat.Name]stat.Value{stat.Cooldown: stat.Unavailable},
			model.AmountEffect(stat.Cooldown, -1), stat.Cooldown, stat.Unavailable},

		// AdditiveCapped
		{"crit additive", map[stat.Name]stat.Value{stat.CritChance: stat.Number(0.1)},
			model.AmountEffect(stat.CritChance, 0.05), stat.CritChance, stat.Number(0.1 + 0.05)},
		{"crit unavailable initialised", map[stat.Name]stat.Value{stat.CritChance: stat.Unavailable},
			model.AmountEffect(stat.CritChance, 0.05), stat.CritChance, stat.Number(0.05)},
		{"evade cap", map[stat.Name]stat.Value{stat.EvadeChance: stat.Number(0.8)},
			model.AmountEffect(stat.EvadeChance, 0.5), stat.EvadeChance, stat.Number(1)},
		{"accuracy cap from unavailable", map[stat.Name]stat.Value{stat.Accuracy: stat.Unavailable},
			model.AmountEffect(stat.Accuracy, 3), stat.Accuracy, stat.Number(1)},
		{"crit chance-only effect inert", map[stat.Name]stat.Value{stat.CritChance: stat.Unavailable},
			model.ChanceEffect(stat.CritChance, 0.5), stat.CritChance, stat.Unavailable},

		// DerivedCoefficient
		{"crit damage coefficient", map[stat.Name]stat.Value{stat.CritDamage: stat.Number(2)},
			model.AmountEffect(stat.CritDamageCoeff, 0.5), stat.CritDamage, stat.Number(3)},
		{"crit damage from unavailable", map[stat.Name]stat.Value{stat.CritDamage: stat.Unavailable},
			model.AmountEffect(stat.CritDamageCoeff, 0.5), stat.CritDamage, stat.Number(1.5)},

		// DerivedLifesteal
		{"lifesteal amount add", map[stat.Name]stat.Value{stat.AttackEffectLifesteal: stat.Number(10)},
			model.AmountEffect(stat.Lifesteal, 5), stat.AttackEffectLifesteal, stat.Number(15)},
		{"lifesteal chance add", map[stat.Name]stat.Value{stat.AttackEffectLifesteal: stat.Number(10)},
			model.ChanceEffect(stat.Lifesteal, 0.1), stat.AttackEffectLifesteal, stat.Number(20)},
		{"lifesteal amount init", map[stat.Name]stat.Value{stat.AttackEffectLifesteal: stat.Unavailable},
			model.AmountEffect(stat.Lifesteal, 7), stat.AttackEffectLifesteal, stat.Number(7)},
		{"lifesteal chance init", map[stat.Name]stat.Value{stat.AttackEffectLifesteal: stat.Unavailable},
			model.ChanceEffect(stat.Lifesteal, 0.2), stat.AttackEffectLifesteal, stat.Number(20)},
		{"lifesteal amount wins over chance", map[stat.Name]stat.Value{stat.AttackEffectLifesteal: stat.Number(1)},
			model.Effect{Stat: stat.Lifesteal, Amount: ptr(2), Chance: ptr(0.5)}, stat.AttackEffectLifesteal, stat.Number(3)},

		// Additive
		{"knockback add", map[stat.Name]stat.Value{stat.Knockback: stat.Number(2)},
			model.AmountEffect(stat.Knockback, 1), stat.Knockback, stat.Number(3)},
		{"knockback init", map[stat.Name]stat.Value{stat.Knockback: stat.Unavailable},
			model.AmountEffect(stat.Knockback, 1.5), stat.Knockback, stat.Number(1.5)},

		// TagAppend
		{"tag init", map[stat.Name]stat.Value{stat.AttackEffect: stat.Unavailable},
			model.TagEffect(stat.Poison), stat.AttackEffect, stat.Text("Poison")},
		{"tag append", map[stat.Name]stat.Value{stat.AttackEffect: stat.Text("Fire")},
			model.TagEffect(stat.Mirror), stat.AttackEffect, stat.Text("Fire, Mirror")},
		{"tag duplicate", map[stat.Name]stat.Value{stat.AttackEffect: stat.Text("Fire,Frost")},
			model.TagEffect(stat.Frost), stat.AttackEffect, stat.Text("Fire,Frost")},
		{"tag over N/A text", map[stat.Name]stat.Value{stat.AttackEffectType: stat.Text("N/A")},
			model.TagEffect(stat.Frost), stat.AttackEffectType, stat.Text("Frost")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ApplyEffect(bagOf(tt.start), tt.effect).Value(tt.target)
			if want, ok := tt.want.Float(); ok {
				v, isNum := got.Float()
				require.True(t, isNum, "got %v", got)
				assert.InDelta(t, want, v, eps)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyMods_NonNumericGuards(t *testing.T) {
	t.Parallel()

	start := bagOf(map[stat.Name]stat.Value{
		stat.HP:                    stat.Number(100),
		stat.Cooldown:              stat.Number(1),
		stat.CritChance:            stat.Unavailable,
		stat.CritDamage:            stat.Unavailable,
		stat.Knockback:             stat.Unavailable,
		stat.AttackEffectLifesteal: stat.Unavailable,
	})

	effects := []model.Effect{
		{Stat: stat.HP},
		{Stat: stat.HP, Amount: ptr(math.NaN())},
		{Stat: stat.Cooldown, Amount: ptr(math.Inf(-1))},
		{Stat: stat.CritChance},
		{Stat: stat.CritDamageCoeff, Chance: ptr(0.5)},
		{Stat: stat.Knockback, Chance: ptr(0.5)},
		{Stat: stat.Lifesteal},
		{Stat: stat.Lifesteal, Chance: ptr(math.NaN())},
	}

	got := ApplyMods(start, []model.Mod{mod("junk", model.RarityCommon, effects...)})
	assert.True(t, start.Equal(got), "non-numeric fields never mutate state")
}

func TestApplyMods_SkipsMissingKeysAndUnknownStats(t *testing.T) {
	t.Parallel()

	start := bagOf(map[stat.Name]stat.Value{stat.HP: stat.Number(100)})

	got := ApplyMods(start, []model.Mod{mod("m", model.RarityEpic,
		model.AmountEffect(stat.Damage, 0.5),       // key absent
		model.AmountEffect(stat.CritDamageCoeff, 1), // CritDamage absent
		model.TagEffect(stat.Fire),                  // AttackEffect absent
		model.AmountEffect("Shield", 5),             // unknown stat
		model.AmountEffect(stat.Distance, 5),        // no rule
		model.AmountEffect(stat.HP, 0.1),
	)})

	assert.Equal(t, 1, got.Len(), "no keys are added")
	assert.InDelta(t, 110.0, num(t, got, stat.HP), eps)
}

// Лист без колонки AttackEffectLifesteal: Lifesteal всё равно создаёт ключ.
func TestApplyMods_LifestealCreatesMissingKey(t *testing.T) {
	t.Parallel()

	start := bagOf(map[stat.Name]stat.Value{stat.HP: stat.Number(100)})

	tests := []struct {
		name   string
		effect model.Effect
		want   stat.Value
	}{
		{"chance", model.ChanceEffect(stat.Lifesteal, 0.2), stat.Number(20)},
		{"amount", model.AmountEffect(stat.Lifesteal, 7), stat.Number(7)},
		{"amount wins", model.Effect{Stat: stat.Lifesteal, Amount: ptr(3), Chance: ptr(0.5)}, stat.Number(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ApplyEffect(start, tt.effect)
			require.True(t, got.Has(stat.AttackEffectLifesteal))
			assert.Equal(t, tt.want, got.Value(stat.AttackEffectLifesteal))
			assert.False(t, start.Has(stat.AttackEffectLifesteal), "input untouched")
		})
	}

	// Без числового amount/chance ключ не появляется
	got := ApplyEffect(start, model.Effect{Stat: stat.Lifesteal})
	assert.False(t, got.Has(stat.AttackEffectLifesteal))

	r, ok := RuleFor(stat.Lifesteal)
	require.True(t, ok)
	assert.True(t, r.CreateMissing)
}

func TestApplyMods_DistanceHasNoRule(t *testing.T) {
	t.Parallel()

	start := bagOf(map[stat.Name]stat.Value{stat.Distance: stat.Number(10)})
	got := ApplyEffect(start, model.AmountEffect(stat.Distance, 5))
	assert.Equal(t, stat.Number(10), got.Value(stat.Distance))

	_, ok := RuleFor(stat.Distance)
	assert.False(t, ok)

	r, ok := RuleFor(stat.Fire)
	require.True(t, ok)
	assert.Equal(t, TagAppend, r.Kind)
	assert.Equal(t, []stat.Name{stat.AttackEffect, stat.AttackEffectType}, r.Targets)
	assert.Equal(t, "tag_append", r.Kind.String())
}

func TestApplyMods_UnavailablePropagation(t *testing.T) {
	t.Parallel()

	start := warriorRare().Base
	got := ApplyMods(start, []model.Mod{mod("hp", model.RarityRare, model.AmountEffect(stat.HP, 0.5))})

	for _, s := range []stat.Name{stat.CritChance, stat.CritDamage, stat.AttackEffect, stat.Knockback, stat.EvadeChance} {
		assert.True(t, got.Value(s).IsUnavailable(), "%s", s)
	}
}

func TestApplyMods_OrderSensitive(t *testing.T) {
	t.Parallel()

	start := bagOf(map[stat.Name]stat.Value{
		stat.Cooldown:   stat.Number(0.3),
		stat.CritChance: stat.Number(0.5),
		stat.HP:         stat.Number(100),
	})

	down := mod("down", model.RarityCommon, model.AmountEffect(stat.Cooldown, -0.5), model.AmountEffect(stat.CritChance, 0.9))
	up := mod("up", model.RarityRare, model.AmountEffect(stat.Cooldown, 0.3), model.AmountEffect(stat.CritChance, -0.5))

	ab := ApplyMods(start, []model.Mod{down, up})
	ba := ApplyMods(start, []model.Mod{up, down})

	// down→up: max(0.1, -0.2)=0.1 → 0.4;  up→down: 0.6 → max(0.1, 0.1)=0.1
	assert.InDelta(t, 0.4, num(t, ab, stat.Cooldown), eps)
	assert.InDelta(t, 0.1, num(t, ba, stat.Cooldown), eps)

	// down→up: min(1, 1.4)=1 → 0.5;  up→down: 0.0 → 0.9
	assert.InDelta(t, 0.5, num(t, ab, stat.CritChance), eps)
	assert.InDelta(t, 0.9, num(t, ba, stat.CritChance), eps)

	// Pure multiplication on HP commutes
	h1 := mod("h1", model.RarityCommon, model.AmountEffect(stat.HP, 0.5))
	h2 := mod("h2", model.RarityRare, model.AmountEffect(stat.HP, -0.2))
	assert.InDelta(t,
		num(t, ApplyMods(start, []model.Mod{h1, h2}), stat.HP),
		num(t, ApplyMods(start, []model.Mod{h2, h1}), stat.HP), eps)
}

func TestApplyMods_CritChanceFromUnavailable(t *testing.T) {
	t.Parallel()

	start := bagOf(map[stat.Name]stat.Value{stat.CritChance: stat.Unavailable})
	got := ApplyMods(start, []model.Mod{mod("crit", model.RarityRare, model.AmountEffect(stat.CritChance, 0.05))})

	assert.InDelta(t, 0.05, num(t, got, stat.CritChance), eps)
}

func TestApplyMods_LifestealFromChance(t *testing.T) {
	t.Parallel()

	start := bagOf(map[stat.Name]stat.Value{stat.AttackEffectLifesteal: stat.Unavailable})
	got := ApplyMods(start, []model.Mod{mod("vamp", model.RarityEpic, model.ChanceEffect(stat.Lifesteal, 0.2))})

	assert.InDelta(t, 20.0, num(t, got, stat.AttackEffectLifesteal), eps)
}

func TestApplyMods_AttackEffectTags(t *testing.T) {
	t.Parallel()

	start := bagOf(map[stat.Name]stat.Value{
		stat.AttackEffect:     stat.Unavailable,
		stat.AttackEffectType: stat.Text("N/A"),
	})
	fire := mod("fire", model.RarityEpic, model.TagEffect(stat.Fire))
	frost := mod("frost", model.RarityRare, model.TagEffect(stat.Frost))

	got := ApplyMods(start, []model.Mod{fire, frost})
	assert.Equal(t, stat.Text("Fire, Frost"), got.Value(stat.AttackEffect))
	assert.Equal(t, stat.Text("Fire, Frost"), got.Value(stat.AttackEffectType))

	again := ApplyMods(got, []model.Mod{fire})
	assert.Equal(t, stat.Text("Fire, Frost"), again.Value(stat.AttackEffect))
	assert.True(t, got.Equal(again))
}

func TestApplyMods_LeftFold(t *testing.T) {
	t.Parallel()

	start := bagOf(map[stat.Name]stat.Value{stat.HP: stat.Number(100)})
	mods := []model.Mod{
		mod("a", model.RarityCommon, model.AmountEffect(stat.HP, 0.5)),
		mod("b", model.RarityRare, model.AmountEffect(stat.HP, 0.5)),
	}

	// 100 × 1.5 × 1.5, not 100 × (1 + 0.5 + 0.5)
	assert.InDelta(t, 225.0, num(t, ApplyMods(start, mods), stat.HP), eps)
	assert.Equal(t, stat.Number(100), start.Value(stat.HP))
}
