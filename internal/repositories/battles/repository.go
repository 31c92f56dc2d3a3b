// Package battles provides the in-process battle registry and the Redis
// archive of resolved battles.
package battles

import (
	"context"

	"github.com/duelhaven/cardbattle-api/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=battlesmock github.com/duelhaven/cardbattle-api/internal/repositories/battles Repository

// SaveInput contains the battle to register
type SaveInput struct {
	Battle *entities.Battle
}

// SaveOutput is the result of registering a battle
type SaveOutput struct{}

// GetInput contains parameters for retrieving a battle
type GetInput struct {
	BattleID string
}

// GetOutput contains the retrieved battle
type GetOutput struct {
	Battle *entities.Battle
}

// ActiveForPlayerInput contains parameters for the busy check
type ActiveForPlayerInput struct {
	PlayerID string
}

// ActiveForPlayerOutput reports the player's active battle, nil when idle
type ActiveForPlayerOutput struct {
	Battle *entities.Battle
}

// RemoveInput contains parameters for removing a battle from the registry
type RemoveInput struct {
	BattleID string
}

// RemoveOutput is the result of removing a battle
type RemoveOutput struct{}

// Repository is the registry of battles this process knows about. Battles
// are registered live: Get returns the same instance the orchestrator
// mutates, and the orchestrator serializes access per battle ID.
type Repository interface {
	// Save registers a battle or replaces a registered one
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get retrieves a battle by ID
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// ActiveForPlayer returns the Pending or InProgress battle a player is
	// engaged in, if any
	ActiveForPlayer(ctx context.Context, input ActiveForPlayerInput) (*ActiveForPlayerOutput, error)

	// Remove deletes a battle from the registry
	Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error)
}
