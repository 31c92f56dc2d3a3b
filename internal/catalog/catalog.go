// Package catalog provides the immutable card catalog: stat lookup, rarity
// filtering, and random sampling for starter grants and pack purchases.
// Read-only after construction and safe for concurrent use across battles.
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/pkg/rng"
)

// File formats accepted by Parse
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Defaults applied to card entries with missing fields. Parsing is
// deliberately permissive: balance data evolves separately from code and a
// sparse entry should still load.
const (
	defaultHealth  int32 = 100
	defaultName          = "Unnamed Card"
	defaultType          = "Generic"
	defaultRarity        = entities.RarityCommon
	defaultElement       = "Neutral"
)

// Config holds the dependencies for the catalog
type Config struct {
	Path string
	RNG  rng.Source
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Path == "" {
		vb.RequiredField("Path")
	}
	if c.RNG == nil {
		vb.RequiredField("RNG")
	}

	return vb.Build()
}

// Catalog is the read-only card stat reference
type Catalog struct {
	cards    []*entities.Card
	byID     map[string]*entities.Card
	metadata map[string]interface{}
	rng      rng.Source
}

type cardFile struct {
	Cards    []cardEntry            `json:"cards" yaml:"cards"`
	Metadata map[string]interface{} `json:"game_metadata" yaml:"game_metadata"`
}

type cardEntry struct {
	ID      string    `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	Stats   cardStats `json:"stats" yaml:"stats"`
	Type    string    `json:"type" yaml:"type"`
	Rarity  string    `json:"rarity" yaml:"rarity"`
	Element string    `json:"element" yaml:"element"`
}

type cardStats struct {
	Attack  int32  `json:"attack" yaml:"attack"`
	Defense int32  `json:"defense" yaml:"defense"`
	Health  *int32 `json:"health" yaml:"health"`
}

// Load reads and parses the catalog file named by cfg.Path. The format is
// inferred from the extension: .yaml/.yml parse as YAML, everything else as
// JSON.
func Load(cfg *Config) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to read catalog file")
	}

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(cfg.Path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}

	return Parse(data, format, cfg.RNG)
}

// Parse builds a catalog from raw file contents
func Parse(data []byte, format string, rngSrc rng.Source) (*Catalog, error) {
	if rngSrc == nil {
		return nil, errors.InvalidArgument("rng source is required")
	}

	var file cardFile
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed catalog JSON")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed catalog YAML")
		}
	default:
		return nil, errors.InvalidArgumentf("unknown catalog format %q", format)
	}

	c := &Catalog{
		cards:    make([]*entities.Card, 0, len(file.Cards)),
		byID:     make(map[string]*entities.Card, len(file.Cards)),
		metadata: file.Metadata,
		rng:      rngSrc,
	}

	for i, entry := range file.Cards {
		card, err := entry.toCard()
		if err != nil {
			return nil, errors.Wrapf(err, "catalog entry %d", i)
		}

		key := strings.ToLower(card.ID)
		if _, exists := c.byID[key]; exists {
			return nil, errors.InvalidArgumentf("duplicate card id %q", card.ID)
		}

		c.cards = append(c.cards, card)
		c.byID[key] = card
	}

	return c, nil
}

func (e *cardEntry) toCard() (*entities.Card, error) {
	if strings.TrimSpace(e.ID) == "" {
		return nil, errors.InvalidArgument("card id is required")
	}

	card := &entities.Card{
		ID:      e.ID,
		Name:    e.Name,
		Attack:  e.Stats.Attack,
		Defense: e.Stats.Defense,
		Health:  defaultHealth,
		Type:    e.Type,
		Rarity:  e.Rarity,
		Element: e.Element,
	}

	if e.Stats.Health != nil {
		card.Health = *e.Stats.Health
	}
	if card.Health <= 0 {
		card.Health = defaultHealth
	}
	if card.Name == "" {
		card.Name = defaultName
	}
	if card.Type == "" {
		card.Type = defaultType
	}
	if card.Rarity == "" {
		card.Rarity = defaultRarity
	}
	if card.Element == "" {
		card.Element = defaultElement
	}

	return card, nil
}

// GetByID finds a card by id, case-insensitively
func (c *Catalog) GetByID(cardID string) (*entities.Card, error) {
	card, ok := c.byID[strings.ToLower(cardID)]
	if !ok {
		return nil, errors.NotFoundf("card %q not found", cardID).WithMeta("card_id", cardID)
	}
	return card, nil
}

// ByRarity returns all cards of the given rarity, case-insensitively
func (c *Catalog) ByRarity(rarity string) []*entities.Card {
	var cards []*entities.Card
	for _, card := range c.cards {
		if strings.EqualFold(card.Rarity, rarity) {
			cards = append(cards, card)
		}
	}
	return cards
}

// Sample returns up to n distinct cards drawn without replacement, optionally
// filtered by rarity (empty string means no filter). When n exceeds the
// filtered pool the whole pool is returned; that is not an error.
func (c *Catalog) Sample(n int, rarity string) []*entities.Card {
	pool := c.cards
	if rarity != "" {
		pool = c.ByRarity(rarity)
	}

	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if n > len(pool) {
		n = len(pool)
	}

	picked := make([]*entities.Card, 0, n)
	for _, idx := range c.rng.Perm(len(pool))[:n] {
		picked = append(picked, pool[idx])
	}
	return picked
}

// Cards returns every card in the catalog, in file order. Callers must not
// mutate the returned cards.
func (c *Catalog) Cards() []*entities.Card {
	return c.cards
}

// Size returns the number of cards in the catalog
func (c *Catalog) Size() int {
	return len(c.cards)
}

// Metadata returns the free-form game metadata block from the catalog file
func (c *Catalog) Metadata() map[string]interface{} {
	return c.metadata
}
