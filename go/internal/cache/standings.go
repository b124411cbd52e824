// Package cache keeps read copies of league tables in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

const keyPrefix = "matchday:standings:"

// kv is the slice of the Redis client the cache uses
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Standings stores league tables as JSON snapshots
type Standings struct {
	client kv
	ttl    time.Duration
}

// NewRedis connects to the Redis server at url (redis://[:password@]host:port/db).
func NewRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	return rdb, nil
}

// NewStandings creates a cache whose entries expire after ttl; zero keeps them until overwritten.
func NewStandings(client kv, ttl time.Duration) *Standings {
	return &Standings{
		client: client,
		ttl:    ttl,
	}
}

func key(leagueID uuid.UUID) string {
	return keyPrefix + leagueID.String()
}

func (s *Standings) StoreStandings(ctx context.Context, leagueID uuid.UUID, standings models.Standings) error {
	data, err := json.Marshal(standings)
	if err != nil {
		return fmt.Errorf("failed to encode standings: %w", err)
	}
	if err := s.client.Set(ctx, key(leagueID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store standings for league %s: %w", leagueID, err)
	}
	return nil
}

// DropStandings removes a league's cached table so the next read reloads it.
func (s *Standings) DropStandings(ctx context.Context, leagueID uuid.UUID) error {
	if err := s.client.Del(ctx, key(leagueID)).Err(); err != nil {
		return fmt.Errorf("failed to drop standings for league %s: %w", leagueID, err)
	}
	return nil
}

// LoadStandings returns nil without error when the league is not cached.
func (s *Standings) LoadStandings(ctx context.Context, leagueID uuid.UUID) (*models.Standings, error) {
	data, err := s.client.Get(ctx, key(leagueID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load standings for league %s: %w", leagueID, err)
	}
	var standings models.Standings
	if err := json.Unmarshal(data, &standings); err != nil {
		return nil, fmt.Errorf("failed to decode standings for league %s: %w", leagueID, err)
	}
	return &standings, nil
}
