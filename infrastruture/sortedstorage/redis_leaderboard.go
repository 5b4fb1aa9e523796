package sortedstorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const lockExpiry = 2 * time.Second

var _ i.Leaderboard = &RedisLeaderboard{}

// RedisLeaderboard keeps the best score of every player in a Redis sorted set.
type RedisLeaderboard struct {
	client *redis.Client
	locker *redsync.Redsync
	key    string
}

// NewRedisLeaderboard initializes a RedisLeaderboard storing its scores under key.
func NewRedisLeaderboard(client *redis.Client, key string) (*RedisLeaderboard, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if key == "" {
		return nil, errors.New("leaderboard key is required")
	}

	pool := goredis.NewPool(client)
	return &RedisLeaderboard{
		client: client,
		locker: redsync.New(pool),
		key:    key,
	}, nil
}

// Submit stores score for player if it beats the player's best.
// The read-compare-write runs under a per-player lock shared by all API instances.
func (rl *RedisLeaderboard) Submit(ctx context.Context, player string, score int) (bool, error) {
	mutex := rl.locker.NewMutex(rl.key+":lock:"+player, redsync.WithExpiry(lockExpiry))
	if err := mutex.LockContext(ctx); err != nil {
		return false, fmt.Errorf("locking score of %q: %w", player, err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	best, err := rl.client.ZScore(ctx, rl.key, player).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return false, err
	case int(best) >= score:
		return false, nil
	}

	if err := rl.client.ZAdd(ctx, rl.key, redis.Z{Score: float64(score), Member: player}).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Top returns up to limit rankings, best first.
func (rl *RedisLeaderboard) Top(ctx context.Context, limit int64) ([]i.Ranking, error) {
	rankings := []i.Ranking{}
	if limit <= 0 {
		return rankings, nil
	}

	entries, err := rl.client.ZRevRangeWithScores(ctx, rl.key, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	for idx, e := range entries {
		player, _ := e.Member.(string)
		rankings = append(rankings, i.Ranking{
			Rank:       int64(idx) + 1,
			PlayerName: player,
			Score:      int(e.Score),
		})
	}
	return rankings, nil
}

// Reset removes every score.
func (rl *RedisLeaderboard) Reset(ctx context.Context) error {
	return rl.client.Del(ctx, rl.key).Err()
}
