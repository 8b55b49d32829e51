package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

// GameRepository - history of finished games, keyed by connection and game id.
type GameRepository interface {
	SaveGame(ctx context.Context, record *entity.GameRecord) error
	GetByID(ctx context.Context, clientID string, gameID int) (*entity.GameRecord, error)
	ListByClient(ctx context.Context, clientID string) ([]*entity.GameRecord, error)
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository - ttl of zero keeps records forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func gameKey(clientID string, gameID int) string {
	return "game:" + clientID + ":" + strconv.Itoa(gameID)
}

func clientGamesKey(clientID string) string {
	return "client:" + clientID + ":games"
}

func statsKey(name string) string {
	return "player:" + name + ":stats"
}

// SaveGame - stores the record, indexes it under its connection and counts the outcome for the player.
func (that *dbGame) SaveGame(ctx context.Context, record *entity.GameRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal game record: %w", err)
	}

	key := gameKey(record.ClientID, record.GameID)
	indexKey := clientGamesKey(record.ClientID)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, recordJSON, that.ttl)
		pipe.RPush(ctx, indexKey, record.GameID)

		if that.ttl > 0 {
			pipe.Expire(ctx, indexKey, that.ttl)
		}

		if record.Player != "" {
			pipe.HIncrBy(ctx, statsKey(record.Player), record.Outcome, 1)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save game %d: %w", record.GameID, err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, clientID string, gameID int) (*entity.GameRecord, error) {
	response, err := that.client.Get(ctx, gameKey(clientID, gameID)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}

	var record entity.GameRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game record: %w", err)
	}

	return &record, nil
}

// ListByClient - records in the order they were saved; expired ones are skipped.
func (that *dbGame) ListByClient(ctx context.Context, clientID string) ([]*entity.GameRecord, error) {
	ids, err := that.client.LRange(ctx, clientGamesKey(clientID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	records := make([]*entity.GameRecord, 0, len(ids))

	for _, raw := range ids {
		gameID, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid game id %q in index: %w", raw, err)
		}

		record, err := that.GetByID(ctx, clientID, gameID)
		if errors.Is(err, apperror.ErrGameNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}
