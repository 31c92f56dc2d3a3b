package player

import (
	"github.com/duelhaven/cardbattle-api/internal/entities"
)

// CardCatalog is the slice of the catalog the profile service needs:
// ownership checks and random card grants. Satisfied by *catalog.Catalog.
type CardCatalog interface {
	GetByID(cardID string) (*entities.Card, error)
	Sample(n int, rarity string) []*entities.Card
}

// GetInput defines the request for fetching a player profile
type GetInput struct {
	UserID string
}

// GetOutput defines the response for fetching a player profile
type GetOutput struct {
	Player *entities.Player
}

// GetOrCreateInput defines the request for fetching a profile, creating it on
// first contact
type GetOrCreateInput struct {
	UserID   string
	Username string
}

// GetOrCreateOutput defines the response for get-or-create
type GetOrCreateOutput struct {
	Player  *entities.Player
	Created bool
}

// GrantStarterInput defines the request for the one-time starter grant
type GrantStarterInput struct {
	UserID string
}

// GrantStarterOutput defines the cards granted
type GrantStarterOutput struct {
	Player *entities.Player
	Cards  []*entities.Card
}

// ClaimDailyInput defines the request for the daily token claim
type ClaimDailyInput struct {
	UserID string
}

// ClaimDailyOutput defines the tokens awarded and the new balance
type ClaimDailyOutput struct {
	Player  *entities.Player
	Awarded int32
	Balance int32
}

// SetDeckInput defines the request for replacing the player's battle deck
type SetDeckInput struct {
	UserID  string
	CardIDs []string
}

// SetDeckOutput defines the response for replacing the deck
type SetDeckOutput struct {
	Player *entities.Player
}

// PurchasePackInput defines the request for buying a card pack. Rarity is an
// optional filter; empty means the whole catalog.
type PurchasePackInput struct {
	UserID string
	Rarity string
}

// PurchasePackOutput defines the cards pulled and the remaining balance
type PurchasePackOutput struct {
	Player  *entities.Player
	Cards   []*entities.Card
	Balance int32
}
