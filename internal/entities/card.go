// Package entities implements the card battle domain types
package entities

// Card rarity tiers
const (
	RarityCommon    = "Common"
	RarityRare      = "Rare"
	RarityEpic      = "Epic"
	RarityLegendary = "Legendary"
)

// Card represents an immutable catalog entry. Instances are shared by
// reference across battles and must never be mutated after load; battles
// track hit points on RosterCard instead.
type Card struct {
	ID      string
	Name    string
	Attack  int32
	Defense int32
	Health  int32
	Type    string
	Rarity  string
	Element string
}
