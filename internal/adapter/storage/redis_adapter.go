package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/helados/internal/core/domain"
)

const (
	heladoKeyPrefix    = "helado:"
	tombstoneKeyPrefix = "helado-invalidated:"
	defaultCacheTTL    = 5 * time.Minute
	invalidationWindow = 10 * time.Second
)

var errMissingID = errors.New("cannot cache helado without id")

// setUnlessInvalidatedScript refuses the write while a tombstone exists, so a
// read that raced with an update cannot cache the old row.
var setUnlessInvalidatedScript = redis.NewScript(`
local key = KEYS[1]
local tombstone = KEYS[2]

if redis.call('EXISTS', tombstone) == 1 then
	return 0
end

redis.call('SET', key, ARGV[1], 'PX', ARGV[2])
return 1
`)

type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisAdapter{client: client, ttl: ttl}
}

func heladoKey(id int64) string {
	return heladoKeyPrefix + strconv.FormatInt(id, 10)
}

func tombstoneKey(id int64) string {
	return tombstoneKeyPrefix + strconv.FormatInt(id, 10)
}

func (r *RedisAdapter) GetHelado(ctx context.Context, id int64) (*domain.Helado, bool, error) {
	data, err := r.client.Get(ctx, heladoKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var h domain.Helado
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, false, err
	}
	return &h, true, nil
}

func (r *RedisAdapter) SetHelado(ctx context.Context, helado domain.Helado) (bool, error) {
	if helado.ID == nil {
		return false, errMissingID
	}

	data, err := json.Marshal(helado)
	if err != nil {
		return false, err
	}

	keys := []string{heladoKey(*helado.ID), tombstoneKey(*helado.ID)}
	result, err := setUnlessInvalidatedScript.Run(ctx, r.client, keys, data, r.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func (r *RedisAdapter) InvalidateHelado(ctx context.Context, id int64) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tombstoneKey(id), 1, invalidationWindow)
		pipe.Del(ctx, heladoKey(id))
		return nil
	})
	return err
}
