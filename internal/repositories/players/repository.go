// Package players provides the repository interface and storage
// implementations for player records.
package players

import (
	"context"

	"github.com/duelhaven/cardbattle-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=playersmock github.com/duelhaven/cardbattle-api/internal/repositories/players Repository

// GetInput contains parameters for retrieving a player
type GetInput struct {
	UserID string
}

// GetOutput contains the retrieved player
type GetOutput struct {
	Player *entities.Player
}

// GetOrCreateInput contains parameters for fetch-or-create
type GetOrCreateInput struct {
	UserID   string
	Username string
}

// GetOrCreateOutput contains the player and whether it was just created
type GetOrCreateOutput struct {
	Player  *entities.Player
	Created bool
}

// SaveInput contains the player record to persist
type SaveInput struct {
	Player *entities.Player
}

// SaveOutput is the result of persisting a player
type SaveOutput struct{}

// ListAllInput contains parameters for listing every player
type ListAllInput struct{}

// ListAllOutput contains all persisted players
type ListAllOutput struct {
	Players []*entities.Player
}

// Repository defines the interface for player record storage. Implementations
// return copies; callers mutate and Save explicitly.
type Repository interface {
	// Get retrieves a player by user ID
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetOrCreate retrieves a player, creating a default record on first
	// interaction
	GetOrCreate(ctx context.Context, input GetOrCreateInput) (*GetOrCreateOutput, error)

	// Save persists a player record
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// ListAll returns every persisted player
	ListAll(ctx context.Context, input ListAllInput) (*ListAllOutput, error)
}
