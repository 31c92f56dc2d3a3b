// Package battle implements the battle session orchestrator: deck
// resolution, the turn loop, win detection, and stakes settlement.
package battle

//go:generate mockgen -destination=mock/mock_service.go -package=battlemock github.com/duelhaven/cardbattle-api/internal/orchestrators/battle Service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/pkg/clock"
	"github.com/duelhaven/cardbattle-api/internal/pkg/idgen"
	"github.com/duelhaven/cardbattle-api/internal/pkg/keymutex"
	"github.com/duelhaven/cardbattle-api/internal/pkg/rng"
	"github.com/duelhaven/cardbattle-api/internal/repositories/battles"
	"github.com/duelhaven/cardbattle-api/internal/repositories/players"
)

// Defaults for the configurable battle knobs
const (
	DefaultMaxTurns    int32 = 100
	DefaultTokenReward int32 = 50
	DefaultXPReward    int32 = 100
)

// Service defines the interface for battle operations
type Service interface {
	// Create validates both players' decks against the catalog and
	// registers a new Pending battle
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)

	// Run drives a Pending battle through the turn loop to Complete, or
	// Aborted on internal failure
	Run(ctx context.Context, input *RunInput) (*RunOutput, error)

	// Get returns a battle snapshot from the registry
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Settle applies stakes for a Complete battle exactly once
	Settle(ctx context.Context, input *SettleInput) (*SettleOutput, error)
}

// Notifier receives the outcome of every settled battle
type Notifier interface {
	BattleCompleted(ctx context.Context, outcome *Outcome)
}

// Config holds the dependencies for the battle orchestrator
type Config struct {
	PlayerRepo  players.Repository
	Registry    battles.Repository
	Catalog     CardLookup
	IDGenerator idgen.Generator
	Clock       clock.Clock
	RNG         rng.Source

	// Archiver persists resolved battles for audit; optional
	Archiver battles.Archiver

	// Notifier is told about settled battles; defaults to a slog notifier
	Notifier Notifier

	// PlayerLocks serializes player record mutations. Every orchestrator
	// that mutates players against the same repository must share one
	// instance, or concurrent Get-mutate-Save cycles lose updates. Defaults
	// to a private instance, which is only safe when nothing else writes
	// players.
	PlayerLocks *keymutex.KeyMutex

	// MaxTurns bounds the turn loop before draw-by-exhaustion; defaults to
	// DefaultMaxTurns
	MaxTurns int32

	// TokenReward is paid to the winner at settlement; defaults to
	// DefaultTokenReward
	TokenReward int32

	// XPReward is granted to the winner at settlement; defaults to
	// DefaultXPReward
	XPReward int32
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.PlayerRepo == nil {
		vb.RequiredField("PlayerRepo")
	}
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.RNG == nil {
		vb.RequiredField("RNG")
	}
	if c.MaxTurns < 0 {
		vb.InvalidField("MaxTurns", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	playerRepo  players.Repository
	registry    battles.Repository
	catalog     CardLookup
	idGen       idgen.Generator
	clock       clock.Clock
	rng         rng.Source
	archiver    battles.Archiver
	notifier    Notifier
	maxTurns    int32
	tokenReward int32
	xpReward    int32

	// battleLocks serializes Run/Settle per battle id, playerLocks
	// serializes stake mutations per player id
	battleLocks *keymutex.KeyMutex
	playerLocks *keymutex.KeyMutex

	// settled guards exactly-once settlement per battle id
	settledMu sync.Mutex
	settled   map[string]bool
}

// NewOrchestrator creates a new battle orchestrator with the provided
// dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		playerRepo:  cfg.PlayerRepo,
		registry:    cfg.Registry,
		catalog:     cfg.Catalog,
		idGen:       cfg.IDGenerator,
		clock:       cfg.Clock,
		rng:         cfg.RNG,
		archiver:    cfg.Archiver,
		notifier:    cfg.Notifier,
		maxTurns:    cfg.MaxTurns,
		tokenReward: cfg.TokenReward,
		xpReward:    cfg.XPReward,
		battleLocks: keymutex.New(),
		playerLocks: cfg.PlayerLocks,
		settled:     make(map[string]bool),
	}

	if o.playerLocks == nil {
		o.playerLocks = keymutex.New()
	}
	if o.notifier == nil {
		o.notifier = &slogNotifier{}
	}
	if o.maxTurns == 0 {
		o.maxTurns = DefaultMaxTurns
	}
	if o.tokenReward == 0 {
		o.tokenReward = DefaultTokenReward
	}
	if o.xpReward == 0 {
		o.xpReward = DefaultXPReward
	}

	return o, nil
}

var _ Service = (*orchestrator)(nil)

// Create validates both players' decks against the catalog and registers a
// new Pending battle
func (o *orchestrator) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ChallengerID == "" || input.OpponentID == "" {
		return nil, errors.InvalidArgument("both participant IDs are required")
	}
	if input.ChallengerID == input.OpponentID {
		return nil, errors.InvalidArgument("a battle needs two distinct players")
	}

	challenger, err := o.buildParticipant(ctx, input.ChallengerID)
	if err != nil {
		return nil, err
	}
	opponent, err := o.buildParticipant(ctx, input.OpponentID)
	if err != nil {
		return nil, err
	}

	battle := &entities.Battle{
		ID:           o.idGen.Generate(),
		Participants: [2]*entities.Participant{challenger, opponent},
		Status:       entities.BattleStatusPending,
		CreatedAt:    o.clock.Now().Unix(),
	}

	if _, err := o.registry.Save(ctx, battles.SaveInput{Battle: battle}); err != nil {
		return nil, errors.Wrap(err, "failed to register battle")
	}

	slog.Info("battle created",
		"battle_id", battle.ID,
		"challenger_id", input.ChallengerID,
		"opponent_id", input.OpponentID,
		"challenger_roster", len(challenger.Roster),
		"opponent_roster", len(opponent.Roster),
	)

	return &CreateOutput{Battle: battle}, nil
}

// buildParticipant resolves a player's deck (or full collection when no deck
// is set) into a battle roster. Dangling card ids are dropped with a
// warning: stale saves must not crash a battle.
func (o *orchestrator) buildParticipant(ctx context.Context, playerID string) (*entities.Participant, error) {
	got, err := o.playerRepo.Get(ctx, players.GetInput{UserID: playerID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load player %s", playerID)
	}
	player := got.Player

	deck := player.CurrentDeck
	if len(deck) == 0 {
		deck = player.Collection
	}

	roster := make([]*entities.RosterCard, 0, len(deck))
	for _, cardID := range deck {
		card, err := o.catalog.GetByID(cardID)
		if err != nil {
			if errors.IsNotFound(err) {
				slog.Warn("dropping unknown card from deck",
					"player_id", playerID,
					"card_id", cardID,
				)
				continue
			}
			return nil, errors.Wrapf(err, "failed to resolve card %s", cardID)
		}
		roster = append(roster, &entities.RosterCard{Card: card, CurrentHP: card.Health})
	}

	if len(roster) == 0 {
		return nil, errors.FailedPrecondition("player has no playable cards").
			WithMeta("player_id", playerID)
	}

	return &entities.Participant{
		PlayerID: playerID,
		Username: player.Username,
		Roster:   roster,
	}, nil
}

// Run drives a Pending battle through the turn loop to Complete, or Aborted
// on internal failure
func (o *orchestrator) Run(ctx context.Context, input *RunInput) (*RunOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}

	o.battleLocks.Lock(input.BattleID)
	defer o.battleLocks.Unlock(input.BattleID)

	got, err := o.registry.Get(ctx, battles.GetInput{BattleID: input.BattleID})
	if err != nil {
		return nil, err
	}
	battle := got.Battle

	if battle.Status != entities.BattleStatusPending {
		return nil, errors.FailedPreconditionf("battle is %s, not %s",
			battle.Status, entities.BattleStatusPending)
	}
	battle.Status = entities.BattleStatusInProgress

	winner, loser, drawResolved, err := o.runLoop(battle)
	if err != nil {
		battle.Status = entities.BattleStatusAborted
		battle.ResolvedAt = o.clock.Now().Unix()
		o.archive(ctx, battle)
		slog.Error("battle aborted",
			"battle_id", battle.ID,
			"turn", battle.Turns,
			"error", err,
		)
		return nil, errors.WrapWithCode(err, errors.CodeAborted, "battle could not be completed")
	}

	battle.Status = entities.BattleStatusComplete
	battle.WinnerID = winner.PlayerID
	battle.LoserID = loser.PlayerID
	battle.ResolvedAt = o.clock.Now().Unix()
	o.archive(ctx, battle)

	slog.Info("battle complete",
		"battle_id", battle.ID,
		"winner_id", battle.WinnerID,
		"loser_id", battle.LoserID,
		"turns", battle.Turns,
		"draw_resolved", drawResolved,
	)

	return &RunOutput{
		Battle:       battle,
		WinnerID:     battle.WinnerID,
		LoserID:      battle.LoserID,
		DrawResolved: drawResolved,
	}, nil
}

// runLoop executes the simultaneous-resolution turn algorithm. It is fully
// deterministic: no randomness, no clock reads.
func (o *orchestrator) runLoop(battle *entities.Battle) (winner, loser *entities.Participant, drawResolved bool, err error) {
	challenger := battle.Challenger()
	opponent := battle.Opponent()

	for {
		active := challenger.ActiveCard()
		opposing := opponent.ActiveCard()

		switch {
		case active != nil && opposing != nil:
			// both sides can still fight
		case active != nil:
			return challenger, opponent, false, nil
		case opposing != nil:
			return opponent, challenger, false, nil
		default:
			// both rosters fell in the same turn; resolve like a draw,
			// which the challenger wins on an exact HP tie
			winner, loser = o.resolveDraw(challenger, opponent)
			return winner, loser, true, nil
		}

		if battle.Turns >= o.maxTurns {
			winner, loser = o.resolveDraw(challenger, opponent)
			return winner, loser, true, nil
		}

		if active.Card == nil || opposing.Card == nil {
			return nil, nil, false, errors.Internal("roster card lost its catalog entry")
		}

		// Both attacks use pre-turn stats, so application order does not
		// matter within the turn.
		battle.Turns++
		toOpposing := damage(active.Card, opposing.Card)
		toActive := damage(opposing.Card, active.Card)

		opposing.CurrentHP -= toOpposing
		active.CurrentHP -= toActive

		battle.Events = append(battle.Events,
			entities.TurnEvent{
				Turn:         battle.Turns,
				AttackerID:   challenger.PlayerID,
				AttackerCard: active.Card.ID,
				DefenderCard: opposing.Card.ID,
				Damage:       toOpposing,
			},
			entities.TurnEvent{
				Turn:         battle.Turns,
				AttackerID:   opponent.PlayerID,
				AttackerCard: opposing.Card.ID,
				DefenderCard: active.Card.ID,
				Damage:       toActive,
			},
		)
	}
}

// resolveDraw picks the side with more total remaining HP; the challenger
// wins exact ties so the battle always terminates with a winner.
func (o *orchestrator) resolveDraw(challenger, opponent *entities.Participant) (winner, loser *entities.Participant) {
	if opponent.RemainingHP() > challenger.RemainingHP() {
		return opponent, challenger
	}
	return challenger, opponent
}

// damage floors at 1 so mismatched stats can never stall a battle
func damage(attacker, defender *entities.Card) int32 {
	d := attacker.Attack - defender.Defense
	if d < 1 {
		d = 1
	}
	return d
}

// Get returns a battle snapshot from the registry
func (o *orchestrator) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}

	got, err := o.registry.Get(ctx, battles.GetInput{BattleID: input.BattleID})
	if err != nil {
		return nil, err
	}

	return &GetOutput{Battle: got.Battle}, nil
}

// archive is best-effort; a failed archive never fails the battle
func (o *orchestrator) archive(ctx context.Context, battle *entities.Battle) {
	if o.archiver == nil {
		return
	}
	if err := o.archiver.Archive(ctx, battle); err != nil {
		slog.Warn("failed to archive battle",
			"battle_id", battle.ID,
			"error", err,
		)
	}
}

// slogNotifier is the default outcome sink
type slogNotifier struct{}

func (n *slogNotifier) BattleCompleted(ctx context.Context, outcome *Outcome) {
	slog.Info("battle outcome",
		"battle_id", outcome.BattleID,
		"winner_id", outcome.WinnerID,
		"loser_id", outcome.LoserID,
		"stolen_card_id", outcome.StolenCardID,
		"tokens_awarded", outcome.TokensAwarded,
	)
}
