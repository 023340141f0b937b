package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/goban-backend/internal/entity"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrEmptyPlayerID  = errors.New("player ID is empty")
)

const playerKeyPrefix = "player:"

// hash fields of a player record
const (
	playerFieldID     = "id"
	playerFieldColor  = "color"
	playerFieldGameID = "game_id"
)

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

// CreateOrUpdate stores player as a redis hash. Empty fields are stored as
// empty strings so a released player loses its game ID.
func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	if player.ID == "" {
		return ErrEmptyPlayerID
	}

	err := that.client.HSet(ctx, playerKeyPrefix+player.ID,
		playerFieldID, player.ID,
		playerFieldColor, string(player.Color),
		playerFieldGameID, player.GameID,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	values, err := that.client.HGetAll(ctx, playerKeyPrefix+id).Result()
	if err != nil {
		return &entity.Player{}, fmt.Errorf("failed to get player by ID: %w", err)
	}

	// HGETALL on a missing key yields an empty map, not redis.Nil
	if len(values) == 0 {
		return &entity.Player{}, ErrPlayerNotFound
	}

	return &entity.Player{
		ID:     values[playerFieldID],
		Color:  entity.Color(values[playerFieldColor]),
		GameID: values[playerFieldGameID],
	}, nil
}
