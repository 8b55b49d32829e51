package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-tournament-client/internal/entity"
)

type PlayerRepository interface {
	GetStats(ctx context.Context, name string) (*entity.PlayerStats, error)
	ResetStats(ctx context.Context, name string) error
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

// GetStats - an unknown player has all counters at zero.
func (that *dbPlayer) GetStats(ctx context.Context, name string) (*entity.PlayerStats, error) {
	fields, err := that.client.HGetAll(ctx, statsKey(name)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats of %s: %w", name, err)
	}

	stats := &entity.PlayerStats{Name: name}

	counters := map[string]*int{
		entity.OutcomeWin:       &stats.Wins,
		entity.OutcomeLoss:      &stats.Losses,
		entity.OutcomeStalemate: &stats.Stalemates,
	}

	for field, target := range counters {
		raw, ok := fields[field]
		if !ok {
			continue
		}

		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s counter for %s: %w", field, name, err)
		}

		*target = value
	}

	return stats, nil
}

func (that *dbPlayer) ResetStats(ctx context.Context, name string) error {
	if err := that.client.Del(ctx, statsKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to reset stats of %s: %w", name, err)
	}

	return nil
}
