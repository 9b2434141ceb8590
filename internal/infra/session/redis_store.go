package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore はセッションをRedisに置く。
// session:<id>:cart にカートのJSON、session:<id>:user に購入者IDを入れる。
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string { return "session:" + sessionID + ":cart" }
func userKey(sessionID string) string { return "session:" + sessionID + ":user" }

func (s *RedisStore) GetCart(ctx context.Context, sessionID string) (map[string]int, error) {
	raw, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	cart := map[string]int{}
	if err := json.Unmarshal(raw, &cart); err != nil {
		//壊れたカートは空として扱う
		return map[string]int{}, nil
	}
	return cart, nil
}

func (s *RedisStore) SetCart(ctx context.Context, sessionID string, cart map[string]int) error {
	if len(cart) == 0 {
		if err := s.rdb.Del(ctx, cartKey(sessionID)).Err(); err != nil {
			return fmt.Errorf("redis del cart: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, cartKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *RedisStore) GetUserID(ctx context.Context, sessionID string) (int64, error) {
	v, err := s.rdb.Get(ctx, userKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get user: %w", err)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

func (s *RedisStore) SetUserID(ctx context.Context, sessionID string, userID int64) error {
	if err := s.rdb.Set(ctx, userKey(sessionID), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set user: %w", err)
	}
	return nil
}

// Ping はreadinessで使う
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
