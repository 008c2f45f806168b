package engine

import (
	"bytes"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/unitstats/internal/data"
	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

const eps = 1e-9

func num(t *testing.T, b stat.Bag, n stat.Name) float64 {
	t.Helper()
	v, ok := b.Value(n).Float()
	require.True(t, ok, "%s = %v; want number", n, b.Value(n))
	return v
}

func newUnit(label, class string, r model.Rarity, values map[stat.Name]stat.Value) model.Unit {
	return model.NewUnit(label, class, r, stat.NewBag(values))
}

func warriorRare() model.Unit {
	return newUnit("Knight", "Warrior", model.RarityRare, map[stat.Name]stat.Value{
		stat.HP:                    stat.Number(100),
		stat.Cooldown:              stat.Number(1.0),
		stat.Damage:                stat.Number(50),
		stat.Distance:              stat.Number(12),
		stat.CritChance:            stat.Unavailable,
		stat.CritDamage:            stat.Unavailable,
		stat.AttackEffect:          stat.Unavailable,
		stat.AttackEffectType:      stat.Unavailable,
		stat.AttackEffectLifesteal: stat.Unavailable,
		stat.Knockback:             stat.Unavailable,
		stat.Accuracy:              stat.Number(0.9),
		stat.EvadeChance:           stat.Unavailable,
	})
}

func TestScaleForLevel_WarriorRareLevel5(t *testing.T) {
	t.Parallel()

	e := New(data.DefaultModifierTable())
	got := e.ScaleForLevel(warriorRare(), 5)

	assert.InDelta(t, 0.92, num(t, got, stat.Cooldown), eps)
	assert.InDelta(t, 172.0, num(t, got, stat.HP), eps)
	assert.InDelta(t, 70.0, num(t, got, stat.Damage), eps)

	// Non-scaled stats pass through
	assert.Equal(t, stat.Number(12), got.Value(stat.Distance))
	assert.True(t, got.Value(stat.CritChance).IsUnavailable())
	assert.Equal(t, stat.Text("Knight"), got.Value(stat.Label))
}

func TestScaleForLevel_IdentityAtLevel1(t *testing.T) {
	t.Parallel()

	e := New(nil)
	for _, class := range append(e.table.Classes(), "Unknown") {
		for _, r := range model.Rarities {
			u := newUnit("u", class, r, map[stat.Name]stat.Value{
				stat.HP:       stat.Number(321),
				stat.Damage:   stat.Number(12.5),
				stat.Cooldown: stat.Number(0.05), // ниже пола: на уровне 1 не трогаем
			})
			got := e.ScaleForLevel(u, 1)
			assert.True(t, u.Base.Equal(got), "class %s rarity %s", class, r)
		}
	}
}

func TestScaleForLevel_NoOps(t *testing.T) {
	t.Parallel()

	e := New(nil)

	t.Run("unknown class", func(t *testing.T) {
		u := newUnit("x", "Bard", model.RarityEpic, map[stat.Name]stat.Value{stat.HP: stat.Number(10)})
		assert.True(t, u.Base.Equal(e.ScaleForLevel(u, 25)))
	})

	t.Run("missing rarity modifier", func(t *testing.T) {
		u := newUnit("x", "Mage", model.RarityCommon, map[stat.Name]stat.Value{
			stat.Cooldown: stat.Number(2),
			stat.HP:       stat.Number(10),
		})
		got := e.ScaleForLevel(u, 3)
		assert.Equal(t, stat.Number(2), got.Value(stat.Cooldown))
		assert.InDelta(t, 10*(1+0.04*2), num(t, got, stat.HP), eps)
	})

	t.Run("unavailable stat stays unavailable", func(t *testing.T) {
		u := newUnit("x", "Warrior", model.RarityRare, map[stat.Name]stat.Value{
			stat.HP:     stat.Unavailable,
			stat.Damage: stat.Number(10),
		})
		got := e.ScaleForLevel(u, 10)
		assert.True(t, got.Value(stat.HP).IsUnavailable())
		assert.False(t, got.Has(stat.Cooldown), "no keys are added")
	})
}

func TestScaleForLevel_ClampsLevel(t *testing.T) {
	t.Parallel()

	e := New(nil)
	u := warriorRare()

	assert.True(t, e.ScaleForLevel(u, 25).Equal(e.ScaleForLevel(u, 99)))
	assert.True(t, u.Base.Equal(e.ScaleForLevel(u, 0)))
	assert.True(t, u.Base.Equal(e.ScaleForLevel(u, -7)))

	small := New(nil, WithMaxLevel(3))
	assert.Equal(t, 3, small.MaxLevel())
	assert.True(t, small.ScaleForLevel(u, 3).Equal(small.ScaleForLevel(u, 10)))
}

func TestScaleForLevel_CooldownFloor(t *testing.T) {
	t.Parallel()

	e := New(nil)
	u := newUnit("x", "Warrior", model.RarityAncient, map[stat.Name]stat.Value{stat.Cooldown: stat.Number(0.5)})

	// 0.5 - 0.05*24 = -0.7 → 0.1
	assert.InDelta(t, stat.CooldownFloor, num(t, e.ScaleForLevel(u, 25), stat.Cooldown), eps)
}

func TestScaleForLevel_CustomGrowth(t *testing.T) {
	t.Parallel()

	var calls []stat.Name
	var mu sync.Mutex
	capped := func(s stat.Name, current, modifier float64, level int) float64 {
		mu.Lock()
		calls = append(calls, s)
		mu.Unlock()
		if s == stat.Cooldown {
			return -5 // enforced floor still applies
		}
		return current + 1
	}

	e := New(nil, WithGrowth(capped))
	got := e.ScaleForLevel(warriorRare(), 2)

	assert.Equal(t, 101.0, num(t, got, stat.HP))
	assert.Equal(t, 51.0, num(t, got, stat.Damage))
	assert.Equal(t, stat.CooldownFloor, num(t, got, stat.Cooldown))
	assert.ElementsMatch(t, []stat.Name{stat.HP, stat.Cooldown, stat.Damage}, calls)

	// nil growth keeps the default
	def := New(nil, WithGrowth(nil))
	assert.InDelta(t, 0.92, num(t, def.ScaleForLevel(warriorRare(), 5), stat.Cooldown), eps)
}

func TestComputeStats_ModsApplyAfterLevel(t *testing.T) {
	t.Parallel()

	e := New(nil)
	plus15 := model.Mod{ID: "dmg", Rarity: model.RarityRare, Effects: []model.Effect{model.AmountEffect(stat.Damage, 0.15)}}

	got := e.ComputeStats(warriorRare(), 5, []model.Mod{plus15})

	// 50 → 70 (level 5) → 80.5 (+15% of leveled damage, not of base)
	assert.InDelta(t, 80.5, num(t, got, stat.Damage), eps)
	assert.InDelta(t, 172.0, num(t, got, stat.HP), eps)
}

func TestComputeStats_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	e := New(nil)
	u := warriorRare()
	before := u.Base.Map()
	mod := model.Mod{ID: "m", Rarity: model.RarityEpic, Effects: []model.Effect{
		model.AmountEffect(stat.HP, 1),
		model.TagEffect(stat.Fire),
	}}

	_ = e.ComputeStats(u, 20, []model.Mod{mod})
	assert.True(t, stat.NewBag(before).Equal(u.Base))
}

func TestComputeStats_RarityPolicy(t *testing.T) {
	t.Parallel()

	a := model.Mod{ID: "a", Rarity: model.RarityRare, Effects: []model.Effect{model.AmountEffect(stat.HP, 1)}}
	b := model.Mod{ID: "b", Rarity: model.RarityRare, Effects: []model.Effect{model.AmountEffect(stat.HP, 0.5)}}
	u := warriorRare()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	lastWins := New(nil, WithLogger(logger))
	assert.InDelta(t, 150.0, num(t, lastWins.ComputeStats(u, 1, []model.Mod{a, b}), stat.HP), eps)
	assert.InDelta(t, 200.0, num(t, lastWins.ComputeStats(u, 1, []model.Mod{b, a}), stat.HP), eps)
	assert.Contains(t, buf.String(), "dropped duplicate-rarity mods")

	all := New(nil, WithRarityPolicy(AllowAll))
	assert.InDelta(t, 300.0, num(t, all.ComputeStats(u, 1, []model.Mod{a, b}), stat.HP), eps)
}

func TestExclusive(t *testing.T) {
	t.Parallel()

	mods := []model.Mod{
		{ID: "r1", Rarity: model.RarityRare},
		{ID: "e1", Rarity: model.RarityEpic},
		{ID: "x", Rarity: model.RarityUnknown},
		{ID: "r2", Rarity: model.RarityRare},
		{ID: "y", Rarity: model.RarityUnknown},
	}

	got := Exclusive(mods)
	ids := make([]string, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"e1", "x", "r2", "y"}, ids)
	assert.Len(t, mods, 5, "input untouched")
	assert.Empty(t, Exclusive(nil))
}

func TestParseRarityPolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseRarityPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LastWins, p)

	p, err = ParseRarityPolicy("none")
	require.NoError(t, err)
	assert.Equal(t, AllowAll, p)

	_, err = ParseRarityPolicy("first_wins")
	assert.Error(t, err)
}

// Свойства: пол Cooldown и потолок вероятностей держатся для любых наборов модов.
func TestComputeStats_Bounds(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 7))
	e := New(nil, WithRarityPolicy(AllowAll))
	effectStats := []stat.Name{
		stat.HP, stat.Damage, stat.Cooldown, stat.CritChance, stat.EvadeChance,
		stat.Accuracy, stat.Knockback, stat.CritDamageCoeff, stat.Lifesteal, stat.Fire,
	}

	for i := 0; i < 500; i++ {
		u := newUnit("u", "Assassin", model.Rarities[rng.IntN(len(model.Rarities))], map[stat.Name]stat.Value{
			stat.HP:          stat.Number(100),
			stat.Cooldown:    stat.Number(0.1 + rng.Float64()*3),
			stat.CritChance:  stat.Number(rng.Float64()),
			stat.EvadeChance: stat.Unavailable,
			stat.Accuracy:    stat.Number(rng.Float64()),
		})

		var mods []model.Mod
		nMods := rng.IntN(6)
		for j := 0; j < nMods; j++ {
			var effects []model.Effect
			nEffects := 1 + rng.IntN(3)
			for k := 0; k < nEffects; k++ {
				s := effectStats[rng.IntN(len(effectStats))]
				effects = append(effects, model.AmountEffect(s, rng.Float64()*2-1))
			}
			mods = append(mods, model.Mod{ID: "m", Rarity: model.RarityCommon, Effects: effects})
		}

		got := e.ComputeStats(u, 1+rng.IntN(25), mods)
		assert.GreaterOrEqual(t, num(t, got, stat.Cooldown), stat.CooldownFloor)
		for _, s := range []stat.Name{stat.CritChance, stat.EvadeChance, stat.Accuracy} {
			if v, ok := got.Value(s).Float(); ok {
				assert.LessOrEqual(t, v, stat.ChanceCap, "%s", s)
			}
		}
	}
}

func TestComputeStats_Concurrent(t *testing.T) {
	t.Parallel()

	e := New(nil)
	u := warriorRare()
	mods := []model.Mod{
		{ID: "a", Rarity: model.RarityRare, Effects: []model.Effect{model.AmountEffect(stat.Damage, 0.15)}},
		{ID: "b", Rarity: model.RarityEpic, Effects: []model.Effect{model.TagEffect(stat.Fire)}},
	}
	want := e.ComputeStats(u, 12, mods)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := e.ComputeStats(u, 12, mods)
			assert.True(t, want.Equal(got))
		}()
	}
	wg.Wait()
}

func TestEngine_ClampLevelAndActiveMods(t *testing.T) {
	t.Parallel()

	e := New(nil, WithMaxLevel(10))
	assert.Equal(t, 1, e.ClampLevel(-3))
	assert.Equal(t, 7, e.ClampLevel(7))
	assert.Equal(t, 10, e.ClampLevel(99))

	a := model.Mod{ID: "a", Rarity: model.RarityRare}
	b := model.Mod{ID: "b", Rarity: model.RarityRare}
	assert.Equal(t, []model.Mod{b}, e.ActiveMods([]model.Mod{a, b}))

	all := New(nil, WithRarityPolicy(AllowAll))
	assert.Equal(t, []model.Mod{a, b}, all.ActiveMods([]model.Mod{a, b}))
}
