package httpapi

import (
	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/battle"
	"github.com/duelhaven/cardbattle-api/internal/repositories/battles"
)

type battleStatsResponse struct {
	Wins            int32 `json:"wins"`
	Losses          int32 `json:"losses"`
	TotalBattles    int32 `json:"total_battles"`
	TotalExperience int32 `json:"total_experience"`
	Level           int32 `json:"level"`
}

type playerResponse struct {
	UserID         string              `json:"user_id"`
	Username       string              `json:"username"`
	Collection     []string            `json:"collection"`
	BattleTokens   int32               `json:"battle_tokens"`
	CurrentDeck    []string            `json:"current_deck"`
	LastDailyClaim int64               `json:"last_daily_claim,omitempty"`
	BattleStats    battleStatsResponse `json:"battle_stats"`
}

func toPlayerResponse(p *entities.Player) playerResponse {
	return playerResponse{
		UserID:         p.UserID,
		Username:       p.Username,
		Collection:     p.Collection,
		BattleTokens:   p.BattleTokens,
		CurrentDeck:    p.CurrentDeck,
		LastDailyClaim: p.LastDailyClaim,
		BattleStats: battleStatsResponse{
			Wins:            p.BattleStats.Wins,
			Losses:          p.BattleStats.Losses,
			TotalBattles:    p.BattleStats.TotalBattles,
			TotalExperience: p.BattleStats.TotalExperience,
			Level:           p.BattleStats.Level,
		},
	}
}

type cardResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Attack  int32  `json:"attack"`
	Defense int32  `json:"defense"`
	Health  int32  `json:"health"`
	Type    string `json:"type"`
	Rarity  string `json:"rarity"`
	Element string `json:"element"`
}

func toCardResponse(card *entities.Card) cardResponse {
	return cardResponse{
		ID:      card.ID,
		Name:    card.Name,
		Attack:  card.Attack,
		Defense: card.Defense,
		Health:  card.Health,
		Type:    card.Type,
		Rarity:  card.Rarity,
		Element: card.Element,
	}
}

func toCardResponses(cards []*entities.Card) []cardResponse {
	out := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, toCardResponse(card))
	}
	return out
}

type challengeResponse struct {
	ID           string `json:"id"`
	ChallengerID string `json:"challenger_id"`
	TargetID     string `json:"target_id"`
	Ref          string `json:"ref,omitempty"`
	Status       string `json:"status"`
	CreatedAt    int64  `json:"created_at"`
	ExpiresAt    int64  `json:"expires_at"`
}

func toChallengeResponse(ch *entities.Challenge) challengeResponse {
	return challengeResponse{
		ID:           ch.ID,
		ChallengerID: ch.ChallengerID,
		TargetID:     ch.TargetID,
		Ref:          ch.Ref,
		Status:       string(ch.Status),
		CreatedAt:    ch.CreatedAt.Unix(),
		ExpiresAt:    ch.ExpiresAt.Unix(),
	}
}

type outcomeResponse struct {
	BattleID      string `json:"battle_id"`
	WinnerID      string `json:"winner_id"`
	LoserID       string `json:"loser_id"`
	StolenCardID  string `json:"stolen_card_id,omitempty"`
	TokensAwarded int32  `json:"tokens_awarded"`
}

func toOutcomeResponse(outcome *battle.Outcome) *outcomeResponse {
	if outcome == nil {
		return nil
	}
	return &outcomeResponse{
		BattleID:      outcome.BattleID,
		WinnerID:      outcome.WinnerID,
		LoserID:       outcome.LoserID,
		StolenCardID:  outcome.StolenCardID,
		TokensAwarded: outcome.TokensAwarded,
	}
}

type turnEventResponse struct {
	Turn         int32  `json:"turn"`
	AttackerID   string `json:"attacker_id"`
	AttackerCard string `json:"attacker_card"`
	DefenderCard string `json:"defender_card"`
	Damage       int32  `json:"damage"`
}

func toTurnEventResponses(events []entities.TurnEvent) []turnEventResponse {
	out := make([]turnEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, turnEventResponse{
			Turn:         event.Turn,
			AttackerID:   event.AttackerID,
			AttackerCard: event.AttackerCard,
			DefenderCard: event.DefenderCard,
			Damage:       event.Damage,
		})
	}
	return out
}

type participantResponse struct {
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	RosterSize  int    `json:"roster_size"`
	RemainingHP int32  `json:"remaining_hp"`
}

type battleResponse struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"`
	Turns        int32                 `json:"turns"`
	WinnerID     string                `json:"winner_id,omitempty"`
	LoserID      string                `json:"loser_id,omitempty"`
	Participants []participantResponse `json:"participants,omitempty"`
	Events       []turnEventResponse   `json:"events"`
	CreatedAt    int64                 `json:"created_at,omitempty"`
	ResolvedAt   int64                 `json:"resolved_at,omitempty"`
	Archived     bool                  `json:"archived,omitempty"`
}

func toBattleResponse(b *entities.Battle) battleResponse {
	resp := battleResponse{
		ID:         b.ID,
		Status:     string(b.Status),
		Turns:      b.Turns,
		WinnerID:   b.WinnerID,
		LoserID:    b.LoserID,
		Events:     toTurnEventResponses(b.Events),
		CreatedAt:  b.CreatedAt,
		ResolvedAt: b.ResolvedAt,
	}
	for _, p := range b.Participants {
		if p == nil {
			continue
		}
		resp.Participants = append(resp.Participants, participantResponse{
			PlayerID:    p.PlayerID,
			Username:    p.Username,
			RosterSize:  len(p.Roster),
			RemainingHP: p.RemainingHP(),
		})
	}
	return resp
}

func toArchivedBattleResponse(record *battles.ArchivedBattle) battleResponse {
	return battleResponse{
		ID:         record.ID,
		Status:     string(record.Status),
		Turns:      record.Turns,
		WinnerID:   record.WinnerID,
		LoserID:    record.LoserID,
		Events:     toTurnEventResponses(record.Events),
		CreatedAt:  record.CreatedAt,
		ResolvedAt: record.ResolvedAt,
		Archived:   true,
	}
}
