package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const leaderboardKeyPrefix = "leaderboard:"

// LeaderboardEntry is one row of a college's standings.
type LeaderboardEntry struct {
	UserID uuid.UUID `json:"user_id"`
	Points int       `json:"points"`
}

type LeaderboardRepository interface {
	IncrementScore(ctx context.Context, college string, userID uuid.UUID, points int) error
	Top(ctx context.Context, college string, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardConfig holds configuration for the Redis leaderboard repository
type LeaderboardConfig struct {
	RedisClient *redis.Client
}

type redisLeaderboardRepository struct {
	client *redis.Client
}

// NewRedisLeaderboard creates a new Redis-backed leaderboard repository
func NewRedisLeaderboard(cfg *LeaderboardConfig) (LeaderboardRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisLeaderboardRepository{client: cfg.RedisClient}, nil
}

func leaderboardKey(college string) string {
	return leaderboardKeyPrefix + college
}

func (r *redisLeaderboardRepository) IncrementScore(ctx context.Context, college string, userID uuid.UUID, points int) error {
	return r.client.ZIncrBy(ctx, leaderboardKey(college), float64(points), userID.String()).Err()
}

func (r *redisLeaderboardRepository) Top(ctx context.Context, college string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	members, err := r.client.ZRevRangeWithScores(ctx, leaderboardKey(college), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(fmt.Sprintf("%v", m.Member))
		if err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{UserID: id, Points: int(m.Score)})
	}
	return entries, nil
}
