package render

import (
	"cmp"
	"slices"
	"strings"

	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

// Filter returns the units whose Label, Class or Rarity contains query,
// ignoring case. An empty query matches everything. The input is not modified.
func Filter(units []model.Unit, query string) []model.Unit {
	q := model.Fold(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(units)
	}

	out := make([]model.Unit, 0, len(units))
	for _, u := range units {
		if strings.Contains(model.Fold(u.Label), q) ||
			strings.Contains(model.Fold(u.Class), q) ||
			strings.Contains(model.Fold(u.RarityText()), q) {
			out = append(out, u)
		}
	}
	return out
}

// Sort returns units ordered by column. Numbers compare numerically, the
// Rarity column by tier, text case-insensitively. Unavailable values go last
// in either direction. The sort is stable; the input is not modified.
func Sort(units []model.Unit, column stat.Name, desc bool) []model.Unit {
	out := slices.Clone(units)
	slices.SortStableFunc(out, func(a, b model.Unit) int {
		va, vb := a.Base.Value(column), b.Base.Value(column)
		if column == stat.Rarity {
			va, vb = rarityValue(a.Rarity), rarityValue(b.Rarity)
		}

		switch ua, ub := va.IsUnavailable(), vb.IsUnavailable(); {
		case ua && ub:
			return 0
		case ua:
			return 1
		case ub:
			return -1
		}

		c := compare(va, vb)
		if desc {
			return -c
		}
		return c
	})
	return out
}

// compare orders numbers before text when a column mixes kinds.
func compare(a, b stat.Value) int {
	fa, aNum := a.Float()
	fb, bNum := b.Float()
	switch {
	case aNum && bNum:
		return cmp.Compare(fa, fb)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	sa, _ := a.Str()
	sb, _ := b.Str()
	return strings.Compare(model.Fold(sa), model.Fold(sb))
}

func rarityValue(r model.Rarity) stat.Value {
	if !r.Valid() {
		return stat.Unavailable
	}
	return stat.Number(float64(r))
}
