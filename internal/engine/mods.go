package engine

import (
	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

// ApplyMods folds mods into bag left to right and returns a new bag.
// Each effect of each mod is applied to the running result, so later mods see
// the output of earlier ones. The fold is not commutative.
//
// Effects whose stat has no rule, whose amount/chance is not numeric, or whose
// target key is missing from the bag leave the bag unchanged. Lifesteal is the
// exception to the last case: AttackEffectLifesteal is created when absent.
func ApplyMods(bag stat.Bag, mods []model.Mod) stat.Bag {
	if len(mods) == 0 {
		return bag
	}
	d := bag.Edit()
	for _, m := range mods {
		for _, e := range m.Effects {
			applyEffect(d, e)
		}
	}
	return d.Bag()
}

// ApplyEffect applies a single effect and returns a new bag.
func ApplyEffect(bag stat.Bag, e model.Effect) stat.Bag {
	d := bag.Edit()
	applyEffect(d, e)
	return d.Bag()
}

func applyEffect(d *stat.Draft, e model.Effect) {
	r, ok := rules[e.Stat]
	if !ok {
		return
	}
	fn := transforms[r.Kind]
	for _, target := range r.Targets {
		cur, ok := d.Get(target)
		if !ok {
			if !r.CreateMissing {
				continue
			}
			cur = stat.Unavailable
		}
		if next, changed := fn(cur, e); changed {
			d.Set(target, next)
		}
	}
}
