package players

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	redisclient "github.com/duelhaven/cardbattle-api/internal/redis"
)

const (
	// Key pattern: player:{user_id}
	playerKeyPrefix = "player:"

	errUserIDEmpty = "user ID cannot be empty"
	errPlayerNil   = "player cannot be nil"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis repository for player records
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

// playerRecord is the persisted JSON layout. Pointer fields distinguish
// missing keys from zero values so records written by older versions (or by
// hand) fall back to the documented defaults instead of zeroing a balance.
type playerRecord struct {
	UserID         string       `json:"user_id"`
	Username       string       `json:"username"`
	Collection     []string     `json:"collection"`
	BattleTokens   *int32       `json:"battle_tokens,omitempty"`
	BattleStats    *statsRecord `json:"battle_stats,omitempty"`
	CurrentDeck    []string     `json:"current_deck"`
	LastDailyClaim int64        `json:"last_daily_claim,omitempty"`
}

type statsRecord struct {
	Wins            int32 `json:"wins"`
	Losses          int32 `json:"losses"`
	TotalBattles    int32 `json:"total_battles"`
	TotalExperience int32 `json:"total_experience"`
	Level           int32 `json:"level"`
}

func toRecord(p *entities.Player) *playerRecord {
	tokens := p.BattleTokens
	return &playerRecord{
		UserID:       p.UserID,
		Username:     p.Username,
		Collection:   p.Collection,
		BattleTokens: &tokens,
		BattleStats: &statsRecord{
			Wins:            p.BattleStats.Wins,
			Losses:          p.BattleStats.Losses,
			TotalBattles:    p.BattleStats.TotalBattles,
			TotalExperience: p.BattleStats.TotalExperience,
			Level:           p.BattleStats.Level,
		},
		CurrentDeck:    p.CurrentDeck,
		LastDailyClaim: p.LastDailyClaim,
	}
}

func fromRecord(r *playerRecord) *entities.Player {
	p := entities.NewPlayer(r.UserID, r.Username)
	if r.Collection != nil {
		p.Collection = r.Collection
	}
	if r.CurrentDeck != nil {
		p.CurrentDeck = r.CurrentDeck
	}
	if r.BattleTokens != nil {
		p.BattleTokens = *r.BattleTokens
	}
	if r.BattleStats != nil {
		p.BattleStats = entities.BattleStats{
			Wins:            r.BattleStats.Wins,
			Losses:          r.BattleStats.Losses,
			TotalBattles:    r.BattleStats.TotalBattles,
			TotalExperience: r.BattleStats.TotalExperience,
			Level:           r.BattleStats.Level,
		}
	}
	p.LastDailyClaim = r.LastDailyClaim
	return p
}

// Get retrieves a player by user ID
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	data, err := r.client.Get(ctx, playerKey(input.UserID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("player not found").WithMeta("user_id", input.UserID)
		}
		return nil, errors.Wrapf(err, "failed to get player from Redis")
	}

	var record playerRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal player record")
	}

	return &GetOutput{Player: fromRecord(&record)}, nil
}

// GetOrCreate retrieves a player, creating a default record on first
// interaction
func (r *redisRepository) GetOrCreate(ctx context.Context, input GetOrCreateInput) (*GetOrCreateOutput, error) {
	if input.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	got, err := r.Get(ctx, GetInput{UserID: input.UserID})
	if err == nil {
		return &GetOrCreateOutput{Player: got.Player}, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	player := entities.NewPlayer(input.UserID, input.Username)
	if _, err := r.Save(ctx, SaveInput{Player: player}); err != nil {
		return nil, err
	}

	return &GetOrCreateOutput{Player: player, Created: true}, nil
}

// Save persists a player record
func (r *redisRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Player == nil {
		return nil, errors.InvalidArgument(errPlayerNil)
	}
	if input.Player.UserID == "" {
		return nil, errors.InvalidArgument(errUserIDEmpty)
	}

	data, err := json.Marshal(toRecord(input.Player))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal player record")
	}

	if err := r.client.Set(ctx, playerKey(input.Player.UserID), data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to store player in Redis")
	}

	return &SaveOutput{}, nil
}

// ListAll returns every persisted player
func (r *redisRepository) ListAll(ctx context.Context, _ ListAllInput) (*ListAllOutput, error) {
	var players []*entities.Player

	iter := r.client.Scan(ctx, 0, playerKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, errors.Wrapf(err, "failed to get player %s", iter.Val())
		}

		var record playerRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal player %s", iter.Val())
		}
		players = append(players, fromRecord(&record))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to scan players")
	}

	return &ListAllOutput{Players: players}, nil
}

func playerKey(userID string) string {
	return playerKeyPrefix + userID
}
