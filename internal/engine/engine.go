// Package engine computes a unit's effective stats.
//
// The pipeline is fixed: level scaling first, then mod application. Mods
// modify the leveled stats, so percentage effects compound on top of growth.
//
//	ComputeStats(u, level, mods) == ApplyMods(ScaleForLevel(u, level), mods)
//
// The engine is pure. It performs no I/O, holds no mutable state and never
// returns an error: unknown classes, missing modifiers and effects that do
// not fit the unit degrade to no-ops. An *Engine is safe for concurrent use.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/unitstats/internal/data"
	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

// RarityPolicy decides what ComputeStats does when more than one selected
// mod shares a rarity tier.
type RarityPolicy string

const (
	// LastWins keeps only the last mod of each tier, at its own position.
	LastWins RarityPolicy = "last_wins"
	// AllowAll applies every mod as given.
	AllowAll RarityPolicy = "none"
)

// ParseRarityPolicy validates a policy name. Empty means LastWins.
func ParseRarityPolicy(s string) (RarityPolicy, error) {
	switch RarityPolicy(s) {
	case "", LastWins:
		return LastWins, nil
	case AllowAll:
		return AllowAll, nil
	default:
		return "", fmt.Errorf("unknown rarity policy %q", s)
	}
}

// Engine runs level scaling and mod application against a modifier table.
type Engine struct {
	table    *data.ModifierTable
	growth   GrowthFunc
	maxLevel int
	policy   RarityPolicy
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithGrowth replaces the growth curve.
func WithGrowth(g GrowthFunc) Option {
	return func(e *Engine) {
		if g != nil {
			e.growth = g
		}
	}
}

// WithMaxLevel overrides the upper level bound.
func WithMaxLevel(n int) Option {
	return func(e *Engine) {
		if n >= MinLevel {
			e.maxLevel = n
		}
	}
}

// WithRarityPolicy sets the duplicate-tier policy.
func WithRarityPolicy(p RarityPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine. A nil table uses data.DefaultModifierTable.
func New(table *data.ModifierTable, opts ...Option) *Engine {
	if table == nil {
		table = data.DefaultModifierTable()
	}
	e := &Engine{
		table:    table,
		growth:   LinearGrowth,
		maxLevel: MaxLevel,
		policy:   LastWins,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxLevel returns the configured upper level bound.
func (e *Engine) MaxLevel() int { return e.maxLevel }

// ClampLevel returns the level ScaleForLevel actually uses for level.
func (e *Engine) ClampLevel(level int) int { return clampLevel(level, e.maxLevel) }

// ScaleForLevel applies class/rarity growth for the target level.
// Levels outside [1, MaxLevel] are clamped. Level 1 returns the base bag
// unchanged. Only stats that the table defines for the unit's class and
// rarity, and that are numeric on the unit, are touched.
func (e *Engine) ScaleForLevel(u model.Unit, level int) stat.Bag {
	level = clampLevel(level, e.maxLevel)
	if level == MinLevel {
		return u.Base
	}

	scaled := e.table.Stats(u.Class)
	if len(scaled) == 0 {
		return u.Base
	}

	d := u.Base.Edit()
	for _, s := range scaled {
		cur, ok := d.Get(s)
		if !ok {
			continue
		}
		v, ok := cur.Float()
		if !ok {
			continue
		}
		mod, ok := e.table.Lookup(u.Class, s, u.Rarity)
		if !ok {
			continue
		}
		next := e.growth(s, v, mod, level)
		if s == stat.Cooldown && next < stat.CooldownFloor {
			next = stat.CooldownFloor
		}
		d.Set(s, stat.Number(next))
	}
	return d.Bag()
}

// ComputeStats returns the unit's effective stats at level with mods applied.
// Under LastWins, duplicate-tier selections are reduced before the fold.
func (e *Engine) ComputeStats(u model.Unit, level int, mods []model.Mod) stat.Bag {
	kept := e.ActiveMods(mods)
	if len(kept) != len(mods) {
		e.logger.Debug("dropped duplicate-rarity mods",
			"unit", u.Label,
			"selected", len(mods),
			"kept", len(kept))
	}
	return ApplyMods(e.ScaleForLevel(u, level), kept)
}

// ActiveMods returns the mods ComputeStats applies under the engine's policy.
func (e *Engine) ActiveMods(mods []model.Mod) []model.Mod {
	if e.policy == LastWins {
		return Exclusive(mods)
	}
	return mods
}

// Exclusive returns mods with at most one mod per rarity tier: the last one
// selected for a tier wins and keeps its position. Mods with an invalid
// rarity are all kept. The input slice is not modified.
func Exclusive(mods []model.Mod) []model.Mod {
	last := make(map[model.Rarity]int, len(mods))
	for i, m := range mods {
		if m.Rarity.Valid() {
			last[m.Rarity] = i
		}
	}
	out := make([]model.Mod, 0, len(last))
	for i, m := range mods {
		if m.Rarity.Valid() && last[m.Rarity] != i {
			continue
		}
		out = append(out, m)
	}
	return out
}
