package vehiclestate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore mirrors the cache to Redis so a restart warm-starts staleness
// detection instead of treating every vehicle as never-reported.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func entryKey(callsign string) string {
	return fmt.Sprintf("cabwatch:vehicle:%s:state", callsign)
}

const allVehiclesKey = "cabwatch:vehicles"

func (r *RedisStore) SetEntry(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, entryKey(e.Callsign), data, 0)
	pipe.SAdd(ctx, allVehiclesKey, e.Callsign)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) GetEntry(ctx context.Context, callsign string) (*Entry, error) {
	data, err := r.client.Get(ctx, entryKey(callsign)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e Entry
	return &e, json.Unmarshal(data, &e)
}

func (r *RedisStore) AllCallsigns(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, allVehiclesKey).Result()
}

func (r *RedisStore) RemoveEntry(ctx context.Context, callsign string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, entryKey(callsign))
	pipe.SRem(ctx, allVehiclesKey, callsign)
	_, err := pipe.Exec(ctx)
	return err
}
