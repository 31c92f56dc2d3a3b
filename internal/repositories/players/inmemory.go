package players

import (
	"context"
	"sync"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
)

// InMemoryRepository implements Repository using in-memory storage, for
// tests and single-process demos.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*entities.Player
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{store: make(map[string]*entities.Player)}
}

var _ Repository = (*InMemoryRepository)(nil)

// Get retrieves a player by user ID
func (r *InMemoryRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	player, ok := r.store[input.UserID]
	if !ok {
		return nil, errors.NotFound("player not found").WithMeta("user_id", input.UserID)
	}

	return &GetOutput{Player: player.Clone()}, nil
}

// GetOrCreate retrieves a player, creating a default record on first
// interaction
func (r *InMemoryRepository) GetOrCreate(ctx context.Context, input GetOrCreateInput) (*GetOrCreateOutput, error) {
	if input.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if player, ok := r.store[input.UserID]; ok {
		return &GetOrCreateOutput{Player: player.Clone()}, nil
	}

	player := entities.NewPlayer(input.UserID, input.Username)
	r.store[input.UserID] = player.Clone()

	return &GetOrCreateOutput{Player: player, Created: true}, nil
}

// Save persists a player record
func (r *InMemoryRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Player == nil {
		return nil, errors.InvalidArgument(errPlayerNil)
	}
	if input.Player.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[input.Player.UserID] = input.Player.Clone()

	return &SaveOutput{}, nil
}

// ListAll returns every stored player
func (r *InMemoryRepository) ListAll(ctx context.Context, _ ListAllInput) (*ListAllOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]*entities.Player, 0, len(r.store))
	for _, player := range r.store {
		players = append(players, player.Clone())
	}

	return &ListAllOutput{Players: players}, nil
}
