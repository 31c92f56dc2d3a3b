// Package challenge implements the challenge coordinator: issuing battle
// invitations, collecting the target's answer, and handing accepted
// challenges to the battle orchestrator.
package challenge

//go:generate mockgen -destination=mock/mock_service.go -package=challengemock github.com/duelhaven/cardbattle-api/internal/orchestrators/challenge Service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/battle"
	"github.com/duelhaven/cardbattle-api/internal/pkg/clock"
	"github.com/duelhaven/cardbattle-api/internal/pkg/idgen"
	"github.com/duelhaven/cardbattle-api/internal/pkg/keymutex"
	"github.com/duelhaven/cardbattle-api/internal/repositories/battles"
	"github.com/duelhaven/cardbattle-api/internal/repositories/players"
)

// DefaultTimeout is how long a challenge stays open without an answer
const DefaultTimeout = 60 * time.Second

// Service defines the interface for challenge coordination
type Service interface {
	// Issue creates a Pending challenge from challenger to target
	Issue(ctx context.Context, input *IssueInput) (*IssueOutput, error)

	// Respond records the target's answer; accepting hands the pair off to
	// the battle orchestrator
	Respond(ctx context.Context, input *RespondInput) (*RespondOutput, error)

	// Expire transitions a target's Pending challenge to Expired
	Expire(ctx context.Context, input *ExpireInput) (*ExpireOutput, error)

	// Await blocks on the confirmation prompt and maps its outcome onto
	// Respond or Expire
	Await(ctx context.Context, input *AwaitInput) (*AwaitOutput, error)

	// ExpireOverdue sweeps every pending challenge past its deadline,
	// returning how many expired
	ExpireOverdue(ctx context.Context) (int, error)
}

// Config holds the dependencies for the challenge coordinator
type Config struct {
	PlayerRepo players.Repository
	Battles    battle.Service

	// Registry is consulted for busy checks: a player already in an active
	// battle cannot be challenged or challenge
	Registry battles.Repository

	// Prompt collects the target's answer in Await; optional, but Await
	// fails without it
	Prompt ConfirmationPrompt

	IDGenerator idgen.Generator
	Clock       clock.Clock

	// Timeout is the challenge deadline; defaults to DefaultTimeout
	Timeout time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.PlayerRepo == nil {
		vb.RequiredField("PlayerRepo")
	}
	if c.Battles == nil {
		vb.RequiredField("Battles")
	}
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.Timeout < 0 {
		vb.InvalidField("Timeout", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	playerRepo players.Repository
	battles    battle.Service
	registry   battles.Repository
	prompt     ConfirmationPrompt
	idGen      idgen.Generator
	clock      clock.Clock
	timeout    time.Duration

	// targetLocks serializes the respond/expire path per target so an answer
	// and the expiry sweep cannot race
	targetLocks *keymutex.KeyMutex

	// pending holds the single live challenge per target id
	mu      sync.Mutex
	pending map[string]*entities.Challenge
}

// NewOrchestrator creates a new challenge coordinator with the provided
// dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		playerRepo:  cfg.PlayerRepo,
		battles:     cfg.Battles,
		registry:    cfg.Registry,
		prompt:      cfg.Prompt,
		idGen:       cfg.IDGenerator,
		clock:       cfg.Clock,
		timeout:     cfg.Timeout,
		targetLocks: keymutex.New(),
		pending:     make(map[string]*entities.Challenge),
	}

	if o.timeout == 0 {
		o.timeout = DefaultTimeout
	}

	return o, nil
}

var _ Service = (*orchestrator)(nil)

// Issue creates a Pending challenge from challenger to target
func (o *orchestrator) Issue(ctx context.Context, input *IssueInput) (*IssueOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ChallengerID == "" || input.TargetID == "" {
		return nil, errors.InvalidArgument("challenger and target IDs are required")
	}
	if input.ChallengerID == input.TargetID {
		return nil, errors.InvalidArgument("you cannot challenge yourself")
	}

	// Hold the target's lock across the whole check-then-insert so two
	// concurrent challenges to the same target cannot both pass the map
	// check.
	o.targetLocks.Lock(input.TargetID)
	defer o.targetLocks.Unlock(input.TargetID)

	// A pending challenge past its deadline does not block the slot; the
	// sweep may simply not have reached it yet.
	if existing := o.livePending(input.TargetID); existing != nil {
		if !existing.Expired(o.clock.Now()) {
			return nil, errors.AlreadyExists("target already has a pending challenge").
				WithMeta("target_id", input.TargetID).
				WithMeta("challenge_id", existing.ID)
		}
		if ch := o.take(input.TargetID); ch != nil {
			ch.Status = entities.ChallengeStatusExpired
			slog.Info("replaced overdue challenge",
				"challenge_id", ch.ID,
				"target_id", ch.TargetID,
			)
		}
	}

	if err := o.checkReady(ctx, input.ChallengerID); err != nil {
		return nil, err
	}
	if err := o.checkReady(ctx, input.TargetID); err != nil {
		return nil, err
	}

	now := o.clock.Now()
	ch := &entities.Challenge{
		ID:           o.idGen.Generate(),
		ChallengerID: input.ChallengerID,
		TargetID:     input.TargetID,
		Ref:          input.Ref,
		Status:       entities.ChallengeStatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(o.timeout),
	}

	o.mu.Lock()
	o.pending[input.TargetID] = ch
	o.mu.Unlock()

	slog.Info("challenge issued",
		"challenge_id", ch.ID,
		"challenger_id", ch.ChallengerID,
		"target_id", ch.TargetID,
		"expires_at", ch.ExpiresAt,
	)

	return &IssueOutput{Challenge: ch}, nil
}

// checkReady rejects players who cannot enter a battle: no cards, or already
// fighting
func (o *orchestrator) checkReady(ctx context.Context, playerID string) error {
	got, err := o.playerRepo.Get(ctx, players.GetInput{UserID: playerID})
	if err != nil {
		return errors.Wrapf(err, "failed to load player %s", playerID)
	}
	if len(got.Player.Collection) == 0 {
		return errors.FailedPrecondition("player has no cards to battle with").
			WithMeta("player_id", playerID)
	}

	active, err := o.registry.ActiveForPlayer(ctx, battles.ActiveForPlayerInput{PlayerID: playerID})
	if err != nil {
		return errors.Wrapf(err, "failed to check active battles for %s", playerID)
	}
	if active.Battle != nil {
		return errors.FailedPrecondition("player is already in a battle").
			WithMeta("player_id", playerID).
			WithMeta("battle_id", active.Battle.ID)
	}

	return nil
}

// Respond records the target's answer; accepting hands the pair off to the
// battle orchestrator
func (o *orchestrator) Respond(ctx context.Context, input *RespondInput) (*RespondOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.TargetID == "" {
		return nil, errors.InvalidArgument("target ID is required")
	}

	o.targetLocks.Lock(input.TargetID)
	defer o.targetLocks.Unlock(input.TargetID)

	ch := o.take(input.TargetID)
	if ch == nil {
		// already answered, expired, or never issued; a double click is not
		// an error
		return &RespondOutput{Applied: false}, nil
	}

	if ch.Expired(o.clock.Now()) {
		ch.Status = entities.ChallengeStatusExpired
		slog.Info("challenge answered past its deadline",
			"challenge_id", ch.ID,
			"target_id", ch.TargetID,
		)
		return &RespondOutput{Applied: false, Challenge: ch}, nil
	}

	if !input.Accept {
		ch.Status = entities.ChallengeStatusDeclined
		slog.Info("challenge declined",
			"challenge_id", ch.ID,
			"challenger_id", ch.ChallengerID,
			"target_id", ch.TargetID,
		)
		return &RespondOutput{Applied: true, Challenge: ch}, nil
	}

	ch.Status = entities.ChallengeStatusAccepted
	slog.Info("challenge accepted",
		"challenge_id", ch.ID,
		"challenger_id", ch.ChallengerID,
		"target_id", ch.TargetID,
	)

	outcome, err := o.fight(ctx, ch)
	if err != nil {
		return nil, err
	}

	return &RespondOutput{Applied: true, Challenge: ch, Outcome: outcome}, nil
}

// fight runs an accepted challenge through the battle orchestrator: create,
// run, settle
func (o *orchestrator) fight(ctx context.Context, ch *entities.Challenge) (*battle.Outcome, error) {
	created, err := o.battles.Create(ctx, &battle.CreateInput{
		ChallengerID: ch.ChallengerID,
		OpponentID:   ch.TargetID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create battle for accepted challenge")
	}

	if _, err := o.battles.Run(ctx, &battle.RunInput{BattleID: created.Battle.ID}); err != nil {
		return nil, err
	}

	settled, err := o.battles.Settle(ctx, &battle.SettleInput{BattleID: created.Battle.ID})
	if err != nil {
		return nil, err
	}

	return settled.Outcome, nil
}

// Expire transitions a target's Pending challenge to Expired; anything else
// is a no-op
func (o *orchestrator) Expire(ctx context.Context, input *ExpireInput) (*ExpireOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.TargetID == "" {
		return nil, errors.InvalidArgument("target ID is required")
	}

	o.targetLocks.Lock(input.TargetID)
	defer o.targetLocks.Unlock(input.TargetID)

	ch := o.take(input.TargetID)
	if ch == nil {
		return &ExpireOutput{}, nil
	}

	ch.Status = entities.ChallengeStatusExpired
	slog.Info("challenge expired",
		"challenge_id", ch.ID,
		"challenger_id", ch.ChallengerID,
		"target_id", ch.TargetID,
	)

	return &ExpireOutput{Expired: true, Challenge: ch}, nil
}

// Await blocks on the confirmation prompt and maps its outcome onto Respond
// or Expire
func (o *orchestrator) Await(ctx context.Context, input *AwaitInput) (*AwaitOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.TargetID == "" {
		return nil, errors.InvalidArgument("target ID is required")
	}
	if o.prompt == nil {
		return nil, errors.FailedPrecondition("no confirmation prompt configured")
	}

	ch := o.livePending(input.TargetID)
	if ch == nil {
		return nil, errors.NotFound("no pending challenge for target").
			WithMeta("target_id", input.TargetID)
	}

	timeout := ch.ExpiresAt.Sub(o.clock.Now())
	if timeout <= 0 {
		timeout = time.Millisecond
	}

	result, err := o.prompt.Await(ctx, input.TargetID, timeout)
	if err != nil {
		return nil, errors.Wrap(err, "confirmation prompt failed")
	}

	out := &AwaitOutput{Result: result}
	switch result {
	case ConfirmationAccepted, ConfirmationDeclined:
		respond, err := o.Respond(ctx, &RespondInput{
			TargetID: input.TargetID,
			Accept:   result == ConfirmationAccepted,
		})
		if err != nil {
			return nil, err
		}
		out.Respond = respond
	case ConfirmationTimedOut:
		if _, err := o.Expire(ctx, &ExpireInput{TargetID: input.TargetID}); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Internalf("prompt returned unknown result %q", result)
	}

	return out, nil
}

// ExpireOverdue sweeps every pending challenge past its deadline
func (o *orchestrator) ExpireOverdue(ctx context.Context) (int, error) {
	now := o.clock.Now()

	o.mu.Lock()
	var overdue []string
	for targetID, ch := range o.pending {
		if ch.Expired(now) {
			overdue = append(overdue, targetID)
		}
	}
	o.mu.Unlock()

	expired := 0
	for _, targetID := range overdue {
		out, err := o.Expire(ctx, &ExpireInput{TargetID: targetID})
		if err != nil {
			return expired, err
		}
		if out.Expired {
			expired++
		}
	}

	return expired, nil
}

// livePending returns the target's pending challenge without removing it
func (o *orchestrator) livePending(targetID string) *entities.Challenge {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending[targetID]
}

// take removes and returns the target's pending challenge, nil when there is
// none
func (o *orchestrator) take(targetID string) *entities.Challenge {
	o.mu.Lock()
	defer o.mu.Unlock()

	ch, ok := o.pending[targetID]
	if !ok {
		return nil
	}
	delete(o.pending, targetID)
	return ch
}
