package battles

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	redisclient "github.com/duelhaven/cardbattle-api/internal/redis"
)

const (
	// Key pattern: battle:{battle_id}
	archiveKeyPrefix  = "battle:"
	defaultArchiveTTL = 7 * 24 * time.Hour
)

// Archiver persists resolved battles for audit and replay
type Archiver interface {
	// Archive stores a resolved battle snapshot
	Archive(ctx context.Context, battle *entities.Battle) error

	// GetArchived retrieves an archived battle record by ID
	GetArchived(ctx context.Context, battleID string) (*ArchivedBattle, error)
}

// ArchivedBattle is the persisted record of a resolved battle. Rosters are
// reduced to ids and final hit points; stats live in the catalog.
type ArchivedBattle struct {
	ID           string                 `json:"id"`
	ChallengerID string                 `json:"challenger_id"`
	OpponentID   string                 `json:"opponent_id"`
	Status       entities.BattleStatus  `json:"status"`
	Turns        int32                  `json:"turns"`
	Events       []entities.TurnEvent   `json:"events"`
	WinnerID     string                 `json:"winner_id,omitempty"`
	LoserID      string                 `json:"loser_id,omitempty"`
	FinalHP      map[string]int32       `json:"final_hp"`
	CreatedAt    int64                  `json:"created_at"`
	ResolvedAt   int64                  `json:"resolved_at"`
}

// ArchiveConfig holds the configuration for the Redis archiver
type ArchiveConfig struct {
	Client redisclient.Client
	TTL    time.Duration
}

// Validate ensures all required dependencies are provided
func (c *ArchiveConfig) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	return nil
}

type redisArchiver struct {
	client redisclient.Client
	ttl    time.Duration
}

// NewRedisArchiver creates a Redis-backed battle archiver
func NewRedisArchiver(cfg *ArchiveConfig) (Archiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultArchiveTTL
	}

	return &redisArchiver{client: cfg.Client, ttl: ttl}, nil
}

var _ Archiver = (*redisArchiver)(nil)

// Archive stores a resolved battle snapshot
func (a *redisArchiver) Archive(ctx context.Context, battle *entities.Battle) error {
	if battle == nil {
		return errors.InvalidArgument("battle cannot be nil")
	}
	if battle.Active() {
		return errors.FailedPrecondition("only resolved battles can be archived")
	}

	record := &ArchivedBattle{
		ID:           battle.ID,
		ChallengerID: battle.Challenger().PlayerID,
		OpponentID:   battle.Opponent().PlayerID,
		Status:       battle.Status,
		Turns:        battle.Turns,
		Events:       battle.Events,
		WinnerID:     battle.WinnerID,
		LoserID:      battle.LoserID,
		FinalHP: map[string]int32{
			battle.Challenger().PlayerID: battle.Challenger().RemainingHP(),
			battle.Opponent().PlayerID:   battle.Opponent().RemainingHP(),
		},
		CreatedAt:  battle.CreatedAt,
		ResolvedAt: battle.ResolvedAt,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal battle record")
	}

	if err := a.client.Set(ctx, archiveKeyPrefix+battle.ID, data, a.ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to archive battle in Redis")
	}

	return nil
}

// GetArchived retrieves an archived battle record by ID
func (a *redisArchiver) GetArchived(ctx context.Context, battleID string) (*ArchivedBattle, error) {
	if battleID == "" {
		return nil, errors.InvalidArgument("battle ID cannot be empty")
	}

	data, err := a.client.Get(ctx, archiveKeyPrefix+battleID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("archived battle not found").WithMeta("battle_id", battleID)
		}
		return nil, errors.Wrapf(err, "failed to get archived battle from Redis")
	}

	var record ArchivedBattle
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal battle record")
	}

	return &record, nil
}
