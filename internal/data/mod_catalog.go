package data

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/unitstats/internal/model"
	"github.com/udisondev/unitstats/internal/stat"
)

var (
	ErrDuplicateMod  = errors.New("duplicate mod id")
	ErrInvalidRarity = errors.New("invalid mod rarity")
	ErrEmptyModID    = errors.New("empty mod id")
)

func amount(s stat.Name, v float64) model.Effect { return model.AmountEffect(s, v) }
func chance(s stat.Name, v float64) model.Effect { return model.ChanceEffect(s, v) }
func tag(s stat.Name) model.Effect               { return model.TagEffect(s) }

// modDefs — curated built-in mods, used when the feed does not publish a mods sheet.
var modDefs = []model.Mod{
	// Common
	{ID: "iron_skin", Label: "Iron Skin", Rarity: model.RarityCommon, Effects: []model.Effect{amount(stat.HP, 0.05)}},
	{ID: "whetstone", Label: "Whetstone", Rarity: model.RarityCommon, Effects: []model.Effect{amount(stat.Damage, 0.05)}},

	// Uncommon
	{ID: "quick_hands", Label: "Quick Hands", Rarity: model.RarityUncommon, Effects: []model.Effect{amount(stat.Cooldown, -0.05)}},
	{ID: "keen_eye", Label: "Keen Eye", Rarity: model.RarityUncommon, Effects: []model.Effect{amount(stat.Accuracy, 0.05)}},

	// Rare
	{ID: "lucky_charm", Label: "Lucky Charm", Rarity: model.RarityRare, Effects: []model.Effect{amount(stat.CritChance, 0.05)}},
	{ID: "heavy_hilt", Label: "Heavy Hilt", Rarity: model.RarityRare, Effects: []model.Effect{amount(stat.Knockback, 1)}},
	{ID: "frost_rune", Label: "Frost Rune", Rarity: model.RarityRare, Effects: []model.Effect{tag(stat.Frost)}},

	// Epic
	{ID: "vampiric_fang", Label: "Vampiric Fang", Rarity: model.RarityEpic, Effects: []model.Effect{chance(stat.Lifesteal, 0.2)}},
	{ID: "ember_core", Label: "Ember Core", Rarity: model.RarityEpic, Effects: []model.Effect{tag(stat.Fire), amount(stat.Damage, 0.05)}},
	{ID: "shadow_cloak", Label: "Shadow Cloak", Rarity: model.RarityEpic, Effects: []model.Effect{amount(stat.EvadeChance, 0.1)}},

	// Legendary
	{ID: "executioner", Label: "Executioner", Rarity: model.RarityLegendary, Effects: []model.Effect{amount(stat.CritDamageCoeff, 0.25), amount(stat.CritChance, 0.05)}},
	{ID: "venom_gland", Label: "Venom Gland", Rarity: model.RarityLegendary, Effects: []model.Effect{tag(stat.Poison)}},

	// Mythic
	{ID: "berserker", Label: "Berserker", Rarity: model.RarityMythic, Effects: []model.Effect{amount(stat.Damage, 0.15), amount(stat.HP, -0.1)}},
	{ID: "blood_pact", Label: "Blood Pact", Rarity: model.RarityMythic, Effects: []model.Effect{amount(stat.Lifesteal, 5), amount(stat.HP, 0.1)}},

	// Demonic
	{ID: "hellfire", Label: "Hellfire", Rarity: model.RarityDemonic, Effects: []model.Effect{tag(stat.Fire), amount(stat.Damage, 0.2), amount(stat.Cooldown, 0.1)}},

	// Ancient
	{ID: "mirror_shard", Label: "Mirror Shard", Rarity: model.RarityAncient, Effects: []model.Effect{tag(stat.Mirror), amount(stat.EvadeChance, 0.15)}},
	{ID: "time_warp", Label: "Time Warp", Rarity: model.RarityAncient, Effects: []model.Effect{amount(stat.Cooldown, -0.5)}},
}

// ModCatalog is the read-only set of selectable mods, in catalog order.
type ModCatalog struct {
	mods []model.Mod
	byID map[string]int
}

// DefaultModCatalog returns the built-in catalog.
func DefaultModCatalog() *ModCatalog {
	c, err := NewModCatalog(modDefs)
	if err != nil {
		panic(fmt.Sprintf("built-in mod catalog: %v", err))
	}
	return c
}

// NewModCatalog validates mods and builds a catalog. IDs must be unique and
// every mod must belong to one of the eight tiers.
func NewModCatalog(mods []model.Mod) (*ModCatalog, error) {
	c := &ModCatalog{
		mods: make([]model.Mod, 0, len(mods)),
		byID: make(map[string]int, len(mods)),
	}
	for _, m := range mods {
		if m.ID == "" {
			return nil, fmt.Errorf("mod %q: %w", m.Label, ErrEmptyModID)
		}
		if !m.Rarity.Valid() {
			return nil, fmt.Errorf("mod %s: %w", m.ID, ErrInvalidRarity)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMod, m.ID)
		}
		c.byID[m.ID] = len(c.mods)
		c.mods = append(c.mods, m)
	}
	return c, nil
}

// Get returns the mod with the given id.
func (c *ModCatalog) Get(id string) (model.Mod, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Mod{}, false
	}
	return c.mods[i], true
}

// All returns the mods in catalog order. The slice is a copy.
func (c *ModCatalog) All() []model.Mod {
	out := make([]model.Mod, len(c.mods))
	copy(out, c.mods)
	return out
}

// Len returns the number of mods.
func (c *ModCatalog) Len() int { return len(c.mods) }

// ByRarity groups mods by tier, preserving catalog order inside each group.
func (c *ModCatalog) ByRarity() map[model.Rarity][]model.Mod {
	out := make(map[model.Rarity][]model.Mod)
	for _, m := range c.mods {
		out[m.Rarity] = append(out[m.Rarity], m)
	}
	return out
}

type modCatalogFile struct {
	Mods []model.Mod `yaml:"mods"`
}

// LoadModCatalog reads a mod catalog from a YAML file.
// An empty path returns the built-in catalog.
func LoadModCatalog(path string) (*ModCatalog, error) {
	if path == "" {
		return DefaultModCatalog(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mod catalog %s: %w", path, err)
	}

	var f modCatalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parsing mod catalog %s: %w", path, err)
	}

	c, err := NewModCatalog(f.Mods)
	if err != nil {
		return nil, fmt.Errorf("mod catalog %s: %w", path, err)
	}

	slog.Info("loaded mod catalog", "path", path, "count", c.Len())
	return c, nil
}
