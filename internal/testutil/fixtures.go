// Package testutil holds fixtures and helpers shared by package tests.
package testutil

import (
	"time"

	"github.com/udisondev/unitstats/internal/feed"
	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

// Knight — Warrior/Rare: на уровне 5 даёт HP 172, Damage 70, Cooldown 0.92.
func Knight() model.Unit {
	return model.NewUnit("Knight", "Warrior", model.RarityRare, stat.NewBag(map[stat.Name]stat.Value{
		stat.HP:                    stat.Number(100),
		stat.Damage:                stat.Number(50),
		stat.Cooldown:              stat.Number(1.0),
		stat.Distance:              stat.Number(1.5),
		stat.CritChance:            stat.Unavailable,
		stat.CritDamage:            stat.Number(1.5),
		stat.AttackEffect:          stat.Unavailable,
		stat.AttackEffectType:      stat.Unavailable,
		stat.AttackEffectLifesteal: stat.Unavailable,
		stat.Accuracy:              stat.Number(0.9),
		stat.EvadeChance:           stat.Number(0.05),
	}))
}

// Golem — Tank/Common с единственным статом HP.
func Golem() model.Unit {
	return model.NewUnit("Golem", "Tank", model.RarityCommon, stat.NewBag(map[stat.Name]stat.Value{
		stat.HP: stat.Number(900),
	}))
}

// Snapshot собирает снапшот фида из Knight и Golem без листа модов.
func Snapshot(digest string) *feed.Snapshot {
	return &feed.Snapshot{
		Units:     []model.Unit{Knight(), Golem()},
		Tiers:     []model.TierEntry{{Label: "Knight", Tier: "A"}},
		Digest:    digest,
		FetchedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}
