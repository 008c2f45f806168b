package data

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

// ScaledStats are the only stats that grow with level.
var ScaledStats = []stat.Name{stat.HP, stat.Cooldown, stat.Damage}

// ErrUnscaledStat is returned when an override file lists a stat outside ScaledStats.
var ErrUnscaledStat = errors.New("stat does not scale with level")

// ModifierTable maps Class → Stat → Rarity → signed per-level modifier.
// A table is never mutated after construction; concurrent reads are safe.
type ModifierTable struct {
	classes map[string]map[stat.Name]rarityRow
}

// DefaultModifierTable returns the built-in growth table.
func DefaultModifierTable() *ModifierTable {
	return &ModifierTable{classes: classModifierDefs}
}

// Stats returns the scaled stats defined for class, in ScaledStats order.
// Returns nil for an unknown class.
func (t *ModifierTable) Stats(class string) []stat.Name {
	byStat, ok := t.classes[class]
	if !ok {
		return nil
	}
	out := make([]stat.Name, 0, len(byStat))
	for _, s := range ScaledStats {
		if _, ok := byStat[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Lookup returns the modifier for (class, stat, rarity) and whether it is defined.
func (t *ModifierTable) Lookup(class string, s stat.Name, r model.Rarity) (float64, bool) {
	m, ok := t.classes[class][s][r]
	return m, ok
}

// HasClass reports whether the table has any entry for class.
func (t *ModifierTable) HasClass(class string) bool {
	_, ok := t.classes[class]
	return ok
}

// Classes returns all class names, sorted.
func (t *ModifierTable) Classes() []string {
	out := make([]string, 0, len(t.classes))
	for c := range t.classes {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// modifierTableFile is the YAML shape of a modifier table override:
//
//	classes:
//	  Warrior:
//	    HP: {Common: 0.10, Rare: 0.18}
//	    Cooldown: {Rare: -0.02}
type modifierTableFile struct {
	Classes map[string]map[stat.Name]map[string]float64 `yaml:"classes"`
}

// LoadModifierTable reads a modifier table from a YAML file.
// An empty path returns the built-in table.
func LoadModifierTable(path string) (*ModifierTable, error) {
	if path == "" {
		return DefaultModifierTable(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading modifier table %s: %w", path, err)
	}

	t, err := ParseModifierTable(b)
	if err != nil {
		return nil, fmt.Errorf("parsing modifier table %s: %w", path, err)
	}

	slog.Info("loaded modifier table", "path", path, "classes", len(t.classes))
	return t, nil
}

// ParseModifierTable decodes the YAML override format.
func ParseModifierTable(b []byte) (*ModifierTable, error) {
	var f modifierTableFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	classes := make(map[string]map[stat.Name]rarityRow, len(f.Classes))
	for class, byStat := range f.Classes {
		rows := make(map[stat.Name]rarityRow, len(byStat))
		for s, byRarity := range byStat {
			if !slices.Contains(ScaledStats, s) {
				return nil, fmt.Errorf("class %s: %w: %s", class, ErrUnscaledStat, s)
			}
			row := make(rarityRow, len(byRarity))
			for name, mod := range byRarity {
				r := model.ParseRarity(name)
				if !r.Valid() {
					return nil, fmt.Errorf("class %s stat %s: unknown rarity %q", class, s, name)
				}
				row[r] = mod
			}
			rows[s] = row
		}
		classes[class] = rows
	}
	return &ModifierTable{classes: classes}, nil
}
