// Package rediskv keeps slots in Redis, for installations that already run
// one and want the slots shared across hosts.
package rediskv

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// keyPrefix namespaces the slots within a possibly shared Redis database.
const keyPrefix = "shule:"

type Store struct {
	client *redis.Client
}

// NewStore connects to Redis and pings it once to fail fast on a bad address.
func NewStore(conf *core.Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &Store{client: client}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, core.ErrSlotNotFound
		}
		return nil, errors.Wrapf(err, "getting redis key %s", keyPrefix+key)
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	// slots never expire on their own; staleness is the callers' concern
	return errors.Wrapf(s.client.Set(ctx, keyPrefix+key, value, 0).Err(), "setting redis key %s", keyPrefix+key)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.client.Del(ctx, keyPrefix+key).Err(), "deleting redis key %s", keyPrefix+key)
}

func (s *Store) Close() error {
	return s.client.Close()
}

var _ core.KVStore = (*Store)(nil)
