package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the state keys when no prefix is given.
const DefaultRedisPrefix = "hotel"

// RedisStore keeps each state record as a JSON string under
// <prefix>:rooms, <prefix>:reservations and <prefix>:next_id.  Save
// wraps the three writes in MULTI/EXEC and Load reads them with a single
// MGET, so neither side can observe a mix of old and new records.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore returns a RedisStore using the given client and key prefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) keys() []string {
	return []string{s.prefix + ":rooms", s.prefix + ":reservations", s.prefix + ":next_id"}
}

// Load fetches the three keys atomically.
func (s *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	keys := s.keys()
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("redis mget: %w", err)
	}
	data := make([][]byte, len(keys))
	missing := 0
	for i, v := range vals {
		switch t := v.(type) {
		case nil:
			missing++
		case string:
			data[i] = []byte(t)
		default:
			return Snapshot{}, fmt.Errorf("%w: unexpected %T under %s", ErrCorruptState, v, keys[i])
		}
	}
	if missing == len(keys) {
		return Snapshot{}, ErrNotFound
	}
	if missing > 0 {
		return Snapshot{}, fmt.Errorf("%w: %d of %d state keys missing under %q", ErrCorruptState, missing, len(keys), s.prefix)
	}
	return decodeSnapshot(records{rooms: data[0], reservations: data[1], nextID: data[2]})
}

// Save writes the three keys inside one transaction.
func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	rec, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	keys := s.keys()
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keys[0], rec.rooms, 0)
		pipe.Set(ctx, keys[1], rec.reservations, 0)
		pipe.Set(ctx, keys[2], rec.nextID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}
