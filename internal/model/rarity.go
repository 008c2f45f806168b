package model

import "strings"

// Rarity is a unit or mod tier. Order matters only for display and sorting.
type Rarity int8

const (
	RarityUnknown Rarity = iota - 1
	RarityCommon
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
	RarityDemonic
	RarityAncient
)

// Rarities lists all tiers from lowest to highest.
var Rarities = []Rarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
	RarityMythic,
	RarityDemonic,
	RarityAncient,
}

var rarityNames = [...]string{
	"Common",
	"Uncommon",
	"Rare",
	"Epic",
	"Legendary",
	"Mythic",
	"Demonic",
	"Ancient",
}

// ParseRarity maps a tier name (case-insensitive) to a Rarity.
// Unknown names return RarityUnknown.
func ParseRarity(s string) Rarity {
	s = strings.TrimSpace(s)
	for i, name := range rarityNames {
		if strings.EqualFold(name, s) {
			return Rarity(i)
		}
	}
	return RarityUnknown
}

// Valid reports whether r is one of the eight tiers.
func (r Rarity) Valid() bool {
	return r >= RarityCommon && r <= RarityAncient
}

func (r Rarity) String() string {
	if !r.Valid() {
		return "Unknown"
	}
	return rarityNames[r]
}

// MarshalText encodes the tier name.
func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a tier name; unknown names decode to RarityUnknown.
func (r *Rarity) UnmarshalText(b []byte) error {
	*r = ParseRarity(string(b))
	return nil
}
