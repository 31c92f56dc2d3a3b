package battle

import (
	"context"
	"log/slog"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/repositories/battles"
	"github.com/duelhaven/cardbattle-api/internal/repositories/players"
)

// Settle applies stakes for a Complete battle exactly once: token award,
// stat updates, and a probabilistic card transfer from the loser's current
// collection. Both player records persist or neither does.
func (o *orchestrator) Settle(ctx context.Context, input *SettleInput) (*SettleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID is required")
	}

	if !o.claimSettlement(input.BattleID) {
		slog.Warn("duplicate settlement attempt ignored", "battle_id", input.BattleID)
		return &SettleOutput{Applied: false}, nil
	}

	outcome, err := o.settle(ctx, input.BattleID)
	if err != nil {
		// settlement did not apply; release the claim so it can be retried
		o.releaseSettlement(input.BattleID)
		return nil, err
	}

	o.notifier.BattleCompleted(ctx, outcome)

	return &SettleOutput{Applied: true, Outcome: outcome}, nil
}

func (o *orchestrator) settle(ctx context.Context, battleID string) (*Outcome, error) {
	got, err := o.registry.Get(ctx, battles.GetInput{BattleID: battleID})
	if err != nil {
		return nil, err
	}
	battle := got.Battle

	if battle.Status != entities.BattleStatusComplete {
		return nil, errors.FailedPreconditionf("cannot settle a %s battle", battle.Status).
			WithMeta("battle_id", battleID)
	}

	// Serialize collection and token mutations per player. Ordered
	// acquisition keeps concurrent settlements over overlapping players
	// deadlock-free.
	o.playerLocks.LockOrdered(battle.WinnerID, battle.LoserID)
	defer o.playerLocks.UnlockOrdered(battle.WinnerID, battle.LoserID)

	winnerGot, err := o.playerRepo.Get(ctx, players.GetInput{UserID: battle.WinnerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load winner")
	}
	loserGot, err := o.playerRepo.Get(ctx, players.GetInput{UserID: battle.LoserID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load loser")
	}

	winner := winnerGot.Player
	loser := loserGot.Player
	winnerBefore := winner.Clone()

	winner.AddTokens(o.tokenReward)
	winner.BattleStats.Wins++
	winner.BattleStats.TotalBattles++
	winner.BattleStats.TotalExperience += o.xpReward
	loser.BattleStats.Losses++
	loser.BattleStats.TotalBattles++

	// Theft draws from the loser's current collection, not the battle
	// roster. An empty collection simply means no card changes hands.
	var stolenCardID string
	if len(loser.Collection) > 0 {
		stolenCardID = loser.Collection[o.rng.Intn(len(loser.Collection))]
		loser.RemoveCard(stolenCardID)
		winner.AddCard(stolenCardID)
	}

	if _, err := o.playerRepo.Save(ctx, players.SaveInput{Player: winner}); err != nil {
		return nil, errors.Wrap(err, "failed to save winner")
	}
	if _, err := o.playerRepo.Save(ctx, players.SaveInput{Player: loser}); err != nil {
		// restore the winner so the transfer stays all-or-nothing
		if _, rbErr := o.playerRepo.Save(ctx, players.SaveInput{Player: winnerBefore}); rbErr != nil {
			slog.Error("failed to roll back winner after loser save failure",
				"battle_id", battleID,
				"winner_id", winner.UserID,
				"error", rbErr,
			)
		}
		return nil, errors.Wrap(err, "failed to save loser")
	}

	// the battle no longer holds stakes; drop it from the registry
	if _, err := o.registry.Remove(ctx, battles.RemoveInput{BattleID: battleID}); err != nil {
		slog.Warn("failed to remove settled battle from registry",
			"battle_id", battleID,
			"error", err,
		)
	}

	slog.Info("battle settled",
		"battle_id", battleID,
		"winner_id", winner.UserID,
		"loser_id", loser.UserID,
		"stolen_card_id", stolenCardID,
		"tokens_awarded", o.tokenReward,
	)

	return &Outcome{
		BattleID:      battleID,
		WinnerID:      winner.UserID,
		LoserID:       loser.UserID,
		StolenCardID:  stolenCardID,
		TokensAwarded: o.tokenReward,
	}, nil
}

// claimSettlement marks the battle settled, returning false when another
// settlement already claimed it
func (o *orchestrator) claimSettlement(battleID string) bool {
	o.settledMu.Lock()
	defer o.settledMu.Unlock()

	if o.settled[battleID] {
		return false
	}
	o.settled[battleID] = true
	return true
}

func (o *orchestrator) releaseSettlement(battleID string) {
	o.settledMu.Lock()
	defer o.settledMu.Unlock()
	delete(o.settled, battleID)
}
