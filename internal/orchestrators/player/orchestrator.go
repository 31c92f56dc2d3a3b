// Package player implements the profile service: record creation, the
// one-time starter grant, daily token claims, deck management, and pack
// purchases.
package player

//go:generate mockgen -destination=mock/mock_service.go -package=playermock github.com/duelhaven/cardbattle-api/internal/orchestrators/player Service

import (
	"context"
	"log/slog"
	"time"

	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/pkg/clock"
	"github.com/duelhaven/cardbattle-api/internal/pkg/keymutex"
	"github.com/duelhaven/cardbattle-api/internal/repositories/players"
)

// Defaults for the configurable profile knobs
const (
	DefaultStarterCards int   = 3
	DefaultDailyTokens  int32 = 50
	DefaultDeckLimit    int   = 5
	DefaultPackCost     int32 = 100
	DefaultPackSize     int   = 3

	dailyCooldown = 24 * time.Hour
)

// Service defines the interface for player profile operations
type Service interface {
	// Get returns an existing player profile
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// GetOrCreate returns the player profile, creating a default record on
	// first contact
	GetOrCreate(ctx context.Context, input *GetOrCreateInput) (*GetOrCreateOutput, error)

	// GrantStarterCards gives a new player their opening cards, once
	GrantStarterCards(ctx context.Context, input *GrantStarterInput) (*GrantStarterOutput, error)

	// ClaimDaily pays the daily token stipend, once per 24 hours
	ClaimDaily(ctx context.Context, input *ClaimDailyInput) (*ClaimDailyOutput, error)

	// SetDeck replaces the player's battle deck
	SetDeck(ctx context.Context, input *SetDeckInput) (*SetDeckOutput, error)

	// PurchasePack spends tokens on randomly sampled cards
	PurchasePack(ctx context.Context, input *PurchasePackInput) (*PurchasePackOutput, error)
}

// Config holds the dependencies for the profile service
type Config struct {
	PlayerRepo players.Repository
	Catalog    CardCatalog
	Clock      clock.Clock

	// StarterCards is the size of the one-time starter grant; defaults to
	// DefaultStarterCards
	StarterCards int

	// DailyTokens is the daily stipend; defaults to DefaultDailyTokens
	DailyTokens int32

	// DeckLimit caps the battle deck; defaults to DefaultDeckLimit
	DeckLimit int

	// PackCost and PackSize shape pack purchases; default to DefaultPackCost
	// and DefaultPackSize
	PackCost int32
	PackSize int

	// PlayerLocks serializes player record mutations. Every orchestrator
	// that mutates players against the same repository must share one
	// instance, or concurrent Get-mutate-Save cycles lose updates. Defaults
	// to a private instance, which is only safe when nothing else writes
	// players.
	PlayerLocks *keymutex.KeyMutex
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.PlayerRepo == nil {
		vb.RequiredField("PlayerRepo")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.StarterCards < 0 {
		vb.InvalidField("StarterCards", "must not be negative")
	}
	if c.DeckLimit < 0 {
		vb.InvalidField("DeckLimit", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	playerRepo   players.Repository
	catalog      CardCatalog
	clock        clock.Clock
	starterCards int
	dailyTokens  int32
	deckLimit    int
	packCost     int32
	packSize     int

	// playerLocks serializes profile mutations per user id
	playerLocks *keymutex.KeyMutex
}

// NewOrchestrator creates a new profile service with the provided
// dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		playerRepo:   cfg.PlayerRepo,
		catalog:      cfg.Catalog,
		clock:        cfg.Clock,
		starterCards: cfg.StarterCards,
		dailyTokens:  cfg.DailyTokens,
		deckLimit:    cfg.DeckLimit,
		packCost:     cfg.PackCost,
		packSize:     cfg.PackSize,
		playerLocks:  cfg.PlayerLocks,
	}

	if o.playerLocks == nil {
		o.playerLocks = keymutex.New()
	}
	if o.starterCards == 0 {
		o.starterCards = DefaultStarterCards
	}
	if o.dailyTokens == 0 {
		o.dailyTokens = DefaultDailyTokens
	}
	if o.deckLimit == 0 {
		o.deckLimit = DefaultDeckLimit
	}
	if o.packCost == 0 {
		o.packCost = DefaultPackCost
	}
	if o.packSize == 0 {
		o.packSize = DefaultPackSize
	}

	return o, nil
}

var _ Service = (*orchestrator)(nil)

// Get returns an existing player profile
func (o *orchestrator) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}

	got, err := o.playerRepo.Get(ctx, players.GetInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	return &GetOutput{Player: got.Player}, nil
}

// GetOrCreate returns the player profile, creating a default record on first
// contact
func (o *orchestrator) GetOrCreate(ctx context.Context, input *GetOrCreateInput) (*GetOrCreateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}

	got, err := o.playerRepo.GetOrCreate(ctx, players.GetOrCreateInput{
		UserID:   input.UserID,
		Username: input.Username,
	})
	if err != nil {
		return nil, err
	}

	if got.Created {
		slog.Info("player record created",
			"user_id", input.UserID,
			"username", input.Username,
		)
	}

	return &GetOrCreateOutput{Player: got.Player, Created: got.Created}, nil
}

// GrantStarterCards gives a new player their opening cards. Only a player
// with an empty collection qualifies; the grant cannot be repeated.
func (o *orchestrator) GrantStarterCards(ctx context.Context, input *GrantStarterInput) (*GrantStarterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}

	o.playerLocks.Lock(input.UserID)
	defer o.playerLocks.Unlock(input.UserID)

	got, err := o.playerRepo.Get(ctx, players.GetInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	player := got.Player

	if len(player.Collection) > 0 {
		return nil, errors.FailedPrecondition("player already has cards").
			WithMeta("user_id", input.UserID).
			WithMeta("collection_size", len(player.Collection))
	}

	cards := o.catalog.Sample(o.starterCards, "")
	if len(cards) == 0 {
		return nil, errors.Internal("catalog has no cards to grant")
	}

	for _, card := range cards {
		player.AddCard(card.ID)
	}

	if _, err := o.playerRepo.Save(ctx, players.SaveInput{Player: player}); err != nil {
		return nil, errors.Wrap(err, "failed to save starter grant")
	}

	slog.Info("starter cards granted",
		"user_id", input.UserID,
		"cards", len(cards),
	)

	return &GrantStarterOutput{Player: player, Cards: cards}, nil
}

// ClaimDaily pays the daily token stipend, once per 24 hours
func (o *orchestrator) ClaimDaily(ctx context.Context, input *ClaimDailyInput) (*ClaimDailyOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}

	o.playerLocks.Lock(input.UserID)
	defer o.playerLocks.Unlock(input.UserID)

	got, err := o.playerRepo.Get(ctx, players.GetInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	player := got.Player

	now := o.clock.Now()
	if player.LastDailyClaim > 0 {
		nextClaim := time.Unix(player.LastDailyClaim, 0).Add(dailyCooldown)
		if now.Before(nextClaim) {
			return nil, errors.FailedPrecondition("daily tokens already claimed").
				WithMeta("user_id", input.UserID).
				WithMeta("retry_after_seconds", int64(nextClaim.Sub(now).Seconds()))
		}
	}

	player.AddTokens(o.dailyTokens)
	player.LastDailyClaim = now.Unix()

	if _, err := o.playerRepo.Save(ctx, players.SaveInput{Player: player}); err != nil {
		return nil, errors.Wrap(err, "failed to save daily claim")
	}

	slog.Info("daily tokens claimed",
		"user_id", input.UserID,
		"awarded", o.dailyTokens,
		"balance", player.BattleTokens,
	)

	return &ClaimDailyOutput{
		Player:  player,
		Awarded: o.dailyTokens,
		Balance: player.BattleTokens,
	}, nil
}

// SetDeck replaces the player's battle deck. Every card must be owned, the
// deck is capped, and duplicates are rejected. An empty deck is allowed and
// means battles fall back to the full collection.
func (o *orchestrator) SetDeck(ctx context.Context, input *SetDeckInput) (*SetDeckOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateMaxItems("card_ids", len(input.CardIDs), o.deckLimit, vb)

	seen := make(map[string]bool, len(input.CardIDs))
	for _, cardID := range input.CardIDs {
		if cardID == "" {
			vb.RequiredField("card_ids")
			continue
		}
		if seen[cardID] {
			vb.Fieldf("card_ids", "duplicate card %q", cardID)
		}
		seen[cardID] = true
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	o.playerLocks.Lock(input.UserID)
	defer o.playerLocks.Unlock(input.UserID)

	got, err := o.playerRepo.Get(ctx, players.GetInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	player := got.Player

	for _, cardID := range input.CardIDs {
		if !player.HasCard(cardID) {
			return nil, errors.FailedPrecondition("deck may only contain owned cards").
				WithMeta("user_id", input.UserID).
				WithMeta("card_id", cardID)
		}
	}

	player.CurrentDeck = append([]string(nil), input.CardIDs...)

	if _, err := o.playerRepo.Save(ctx, players.SaveInput{Player: player}); err != nil {
		return nil, errors.Wrap(err, "failed to save deck")
	}

	slog.Info("deck updated",
		"user_id", input.UserID,
		"deck_size", len(player.CurrentDeck),
	)

	return &SetDeckOutput{Player: player}, nil
}

// PurchasePack spends tokens on randomly sampled cards
func (o *orchestrator) PurchasePack(ctx context.Context, input *PurchasePackInput) (*PurchasePackOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.UserID == "" {
		return nil, errors.InvalidArgument("user ID is required")
	}

	o.playerLocks.Lock(input.UserID)
	defer o.playerLocks.Unlock(input.UserID)

	got, err := o.playerRepo.Get(ctx, players.GetInput{UserID: input.UserID})
	if err != nil {
		return nil, err
	}
	player := got.Player

	if player.BattleTokens < o.packCost {
		return nil, errors.FailedPrecondition("not enough battle tokens").
			WithMeta("user_id", input.UserID).
			WithMeta("balance", player.BattleTokens).
			WithMeta("pack_cost", o.packCost)
	}

	cards := o.catalog.Sample(o.packSize, input.Rarity)
	if len(cards) == 0 {
		return nil, errors.InvalidArgumentf("no cards available for rarity %q", input.Rarity)
	}

	player.AddTokens(-o.packCost)
	for _, card := range cards {
		player.AddCard(card.ID)
	}

	if _, err := o.playerRepo.Save(ctx, players.SaveInput{Player: player}); err != nil {
		return nil, errors.Wrap(err, "failed to save pack purchase")
	}

	slog.Info("pack purchased",
		"user_id", input.UserID,
		"rarity", input.Rarity,
		"cards", len(cards),
		"balance", player.BattleTokens,
	)

	return &PurchasePackOutput{
		Player:  player,
		Cards:   cards,
		Balance: player.BattleTokens,
	}, nil
}
