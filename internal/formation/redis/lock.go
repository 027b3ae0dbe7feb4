package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Lock serializes saves per board. While a Place/Clear/Reset is in flight
// for one (day, quarter), further mutations on the same board are refused
// instead of racing the pending optimistic state.
type Lock struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewLock(client *redis.Client) *Lock {
	return &Lock{
		Client: client,
		Logger: log.Default(),
	}
}

// saveLockTTL returns the board save lock duration from the environment or
// the default. The TTL is a failsafe: locks are released explicitly when the
// save finishes.
func (l *Lock) saveLockTTL() time.Duration {
	defaultTTL := 10 * time.Second

	ttlStr := os.Getenv("BOARD_SAVE_TTL_SECONDS")
	if ttlStr == "" {
		return defaultTTL
	}

	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSec <= 0 {
		l.Logger.Println("REDIS: invalid BOARD_SAVE_TTL_SECONDS value '" + ttlStr + "', using default 10 seconds")
		return defaultTTL
	}
	return time.Duration(ttlSec) * time.Second
}

func boardKey(dayKey string, quarter int) string {
	return fmt.Sprintf("board_lock:%s:%d", dayKey, quarter)
}

// LockBoard takes the save lock for one (day, quarter). Returns false when
// another save already holds it.
func (l *Lock) LockBoard(dayKey string, quarter int, owner string) (bool, error) {
	key := boardKey(dayKey, quarter)
	ok, err := l.Client.SetNX(context.Background(), key, owner, l.saveLockTTL()).Result()
	return ok, err
}

// UnlockBoard releases the save lock if this owner still holds it. A lock
// that expired or was taken over by someone else is left alone.
func (l *Lock) UnlockBoard(dayKey string, quarter int, owner string) error {
	ctx := context.Background()
	key := boardKey(dayKey, quarter)

	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val != owner {
		l.Logger.Println(fmt.Sprintf("REDIS: board lock %s held by another save, not releasing", key))
		return nil
	}
	return l.Client.Del(ctx, key).Err()
}

// IsLocked reports whether a save is currently in flight for the board.
func (l *Lock) IsLocked(dayKey string, quarter int) (bool, error) {
	_, err := l.Client.Get(context.Background(), boardKey(dayKey, quarter)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
