package battles

import (
	"context"
	"sync"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
)

// InMemoryRepository implements Repository using in-memory storage. Battles
// are process-local; resolved battles go to the archive for durability.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*entities.Battle
}

// NewInMemory creates a new in-memory registry
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{store: make(map[string]*entities.Battle)}
}

var _ Repository = (*InMemoryRepository)(nil)

// Save registers a battle or replaces a registered one
func (r *InMemoryRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Battle == nil {
		return nil, errors.InvalidArgument("battle cannot be nil")
	}
	if input.Battle.ID == "" {
		return nil, errors.InvalidArgument("battle ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[input.Battle.ID] = input.Battle

	return &SaveOutput{}, nil
}

// Get retrieves a battle by ID
func (r *InMemoryRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	battle, ok := r.store[input.BattleID]
	if !ok {
		return nil, errors.NotFound("battle not found").WithMeta("battle_id", input.BattleID)
	}

	return &GetOutput{Battle: battle}, nil
}

// ActiveForPlayer returns the Pending or InProgress battle a player is
// engaged in, if any
func (r *InMemoryRepository) ActiveForPlayer(ctx context.Context, input ActiveForPlayerInput) (*ActiveForPlayerOutput, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, battle := range r.store {
		if battle.Active() && battle.HasPlayer(input.PlayerID) {
			return &ActiveForPlayerOutput{Battle: battle}, nil
		}
	}

	return &ActiveForPlayerOutput{}, nil
}

// Remove deletes a battle from the registry
func (r *InMemoryRepository) Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error) {
	if input.BattleID == "" {
		return nil, errors.InvalidArgument("battle ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[input.BattleID]; !ok {
		return nil, errors.NotFound("battle not found").WithMeta("battle_id", input.BattleID)
	}

	delete(r.store, input.BattleID)

	return &RemoveOutput{}, nil
}
