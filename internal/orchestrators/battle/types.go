package battle

import (
	"github.com/duelhaven/cardbattle-api/internal/entities"
)

// CardLookup resolves deck card ids against the catalog. Satisfied by
// *catalog.Catalog.
type CardLookup interface {
	GetByID(cardID string) (*entities.Card, error)
}

// CreateInput defines the request for creating a battle
type CreateInput struct {
	ChallengerID string
	OpponentID   string
}

// CreateOutput defines the response for creating a battle
type CreateOutput struct {
	Battle *entities.Battle
}

// RunInput defines the request for running a battle to completion
type RunInput struct {
	BattleID string
}

// RunOutput defines the response of a completed battle
type RunOutput struct {
	Battle   *entities.Battle
	WinnerID string
	LoserID  string

	// DrawResolved is true when the winner was decided by the turn-bound
	// exhaustion rule rather than by knockout
	DrawResolved bool
}

// GetInput defines the request for retrieving a battle
type GetInput struct {
	BattleID string
}

// GetOutput defines the response for retrieving a battle
type GetOutput struct {
	Battle *entities.Battle
}

// SettleInput defines the request for settling a completed battle
type SettleInput struct {
	BattleID string
}

// SettleOutput defines the response for settling a battle. Applied is false
// when the battle was already settled; the duplicate attempt is a no-op.
type SettleOutput struct {
	Applied bool
	Outcome *Outcome
}

// Outcome is the battle result notification emitted once per settled battle
// for the presentation layer to render.
type Outcome struct {
	BattleID      string
	WinnerID      string
	LoserID       string
	StolenCardID  string
	TokensAwarded int32
}
