package cache

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/everFinance/invkeeper/schema"
)

type BigCache struct {
	Cache *bigcache.BigCache
}

func NewBigCache(allKeysExpTime time.Duration) (*BigCache, error) {
	cfg := bigcache.DefaultConfig(allKeysExpTime)
	cfg.Shards = 16
	cfg.Verbose = false
	// a keeper tracks one object, the cache only ever holds a handful of blocks
	cfg.HardMaxCacheSize = 8 // MB

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return &BigCache{Cache: cache}, nil
}

func (s *BigCache) Set(key string, entry []byte) (err error) {
	return s.Cache.Set(key, entry)
}

func (s *BigCache) Get(key string) ([]byte, error) {
	by, err := s.Cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, schema.ErrNotExist
	}
	return by, err
}
