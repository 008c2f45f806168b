// Package model holds the read-only source records: units, mods and tier list
// entries as delivered by the data feed.
package model

import (
	"strings"

	"github.com/udisondev/unitstats/internal/stat"
)

// Unit is a collectible combat unit at level 1.
// Units are built once per feed load and never mutated afterwards.
type Unit struct {
	Label  string
	Class  string
	Rarity Rarity
	// Base holds level-1 stats, identity fields included.
	Base stat.Bag
}

// NewUnit builds a Unit and mirrors identity fields into the base bag.
func NewUnit(label, class string, rarity Rarity, base stat.Bag) Unit {
	d := base.Edit()
	d.Set(stat.Label, stat.Text(label))
	d.Set(stat.Class, stat.Text(class))
	d.Set(stat.Rarity, stat.Text(rarity.String()))
	return Unit{
		Label:  label,
		Class:  class,
		Rarity: rarity,
		Base:   d.Bag(),
	}
}

// UnitFromSheet builds a Unit from the rarity cell text. A tier name that does
// not parse keeps its original text in the bag so it is shown as published.
func UnitFromSheet(label, class, rarityText string, base stat.Bag) Unit {
	u := NewUnit(label, class, ParseRarity(rarityText), base)
	raw := strings.TrimSpace(rarityText)
	if u.Rarity.Valid() || raw == "" {
		return u
	}
	d := u.Base.Edit()
	d.Set(stat.Rarity, stat.Text(raw))
	u.Base = d.Bag()
	return u
}

// RarityText returns the rarity as shown: the tier name, or the raw sheet text
// for a tier that did not parse.
func (u Unit) RarityText() string {
	if s, ok := u.Base.Value(stat.Rarity).Str(); ok {
		return s
	}
	return u.Rarity.String()
}

// TierEntry is a row of the community tier list.
type TierEntry struct {
	Label string `json:"label"`
	Tier  string `json:"tier"`
	Note  string `json:"note,omitempty"`
}
