package cache

import (
	"encoding/json"
	"time"

	"github.com/everFinance/invkeeper/schema"
)

const txBlockPrefix = "tx-block-"

type Cache struct {
	Cache ICache
}

type ICache interface {
	Set(key string, entry []byte) error

	// Get returns schema.ErrNotExist on a miss
	Get(key string) ([]byte, error)
}

func NewLocalCache(allKeysExpTime time.Duration) (*Cache, error) {
	cache, err := NewBigCache(allKeysExpTime)
	if err != nil {
		return nil, err
	}
	return &Cache{Cache: cache}, nil
}

// PutTxBlock caches a finalized transaction block. Finalized effects never change,
// so the entry only leaves the cache by expiry.
func (c *Cache) PutTxBlock(block *schema.TransactionBlock) error {
	if block == nil || block.Digest == "" {
		return schema.ErrNullDigest
	}
	by, err := json.Marshal(block)
	if err != nil {
		return err
	}
	return c.Cache.Set(txBlockPrefix+block.Digest, by)
}

func (c *Cache) GetTxBlock(digest string) (*schema.TransactionBlock, error) {
	by, err := c.Cache.Get(txBlockPrefix + digest)
	if err != nil {
		return nil, err
	}
	block := &schema.TransactionBlock{}
	if err := json.Unmarshal(by, block); err != nil {
		return nil, err
	}
	return block, nil
}
