package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/everFinance/invkeeper/cache"
	"github.com/everFinance/invkeeper/schema"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/timeout"
)

const (
	methodGetObject           = "iota_getObject"
	methodGetTransactionBlock = "iota_getTransactionBlock"

	DefaultWaitTimeout  = 60 * time.Second
	DefaultPollInterval = 2 * time.Second
	requestTimeout      = 10 * time.Second
	txBlockCacheExpiry  = 10 * time.Minute
)

type RpcError struct {
	Code    int64
	Message string
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc error: code=%d message=%s", e.Code, e.Message)
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Id      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// ChainCli talks JSON-RPC to a fullnode.
type ChainCli struct {
	SCli *gentleman.Client

	cache        *cache.Cache
	waitTimeout  time.Duration
	pollInterval time.Duration
	reqId        uint64
}

func NewChainCli(rpcUrl string, waitTimeout time.Duration) (*ChainCli, error) {
	c, err := cache.NewLocalCache(txBlockCacheExpiry)
	if err != nil {
		return nil, err
	}
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	return &ChainCli{
		SCli:         gentleman.New().URL(rpcUrl).Use(timeout.Request(requestTimeout)),
		cache:        c,
		waitTimeout:  waitTimeout,
		pollInterval: DefaultPollInterval,
	}, nil
}

// SetPollInterval changes how often WaitForTransaction asks the node.
func (c *ChainCli) SetPollInterval(d time.Duration) {
	if d > 0 {
		c.pollInterval = d
	}
}

// GetObject returns nil, nil when the object does not exist or was deleted.
func (c *ChainCli) GetObject(ctx context.Context, objectId string) (*schema.ObjectData, error) {
	if objectId == "" {
		return nil, schema.ErrNullObjectId
	}
	opts := map[string]bool{"showContent": true, "showType": true, "showOwner": true}
	res, err := c.call(ctx, methodGetObject, objectId, opts)
	if err != nil {
		return nil, err
	}
	if e := res.Get("error"); e.Exists() && e.Type != gjson.Null {
		switch e.Get("code").String() {
		case "notExists", "deleted":
			return nil, nil
		}
		return nil, fmt.Errorf("get object %s failed: %s", objectId, e.Raw)
	}
	data := res.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, nil
	}
	obj := &schema.ObjectData{}
	if err := json.Unmarshal([]byte(data.Raw), obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// GetTransactionBlock returns the block with its effects, served from the cache once
// a block has been seen.
func (c *ChainCli) GetTransactionBlock(ctx context.Context, digest string) (*schema.TransactionBlock, error) {
	if digest == "" {
		return nil, schema.ErrNullDigest
	}
	if block, err := c.cache.GetTxBlock(digest); err == nil {
		return block, nil
	}
	block, err := c.fetchTransactionBlock(ctx, digest)
	if err != nil {
		return nil, err
	}
	c.cacheBlock(block)
	return block, nil
}

// WaitForTransaction polls the node until the transaction is known or the wait
// timeout expires.
func (c *ChainCli) WaitForTransaction(ctx context.Context, digest string) (*schema.TransactionBlock, error) {
	if digest == "" {
		return nil, schema.ErrNullDigest
	}
	ctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	block, err := retry.DoWithData(
		func() (*schema.TransactionBlock, error) {
			return c.fetchTransactionBlock(ctx, digest)
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(c.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, schema.ErrTxNotFound)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("wait for transaction %s: %w", digest, err)
	}
	c.cacheBlock(block)
	return block, nil
}

func (c *ChainCli) fetchTransactionBlock(ctx context.Context, digest string) (*schema.TransactionBlock, error) {
	opts := map[string]bool{"showEffects": true}
	res, err := c.call(ctx, methodGetTransactionBlock, digest, opts)
	if err != nil {
		var rpcErr *RpcError
		if errors.As(err, &rpcErr) && isNotFoundMessage(rpcErr.Message) {
			return nil, schema.ErrTxNotFound
		}
		return nil, err
	}
	block := &schema.TransactionBlock{}
	if err := json.Unmarshal([]byte(res.Raw), block); err != nil {
		return nil, err
	}
	if block.Digest == "" {
		block.Digest = digest
	}
	return block, nil
}

func (c *ChainCli) cacheBlock(block *schema.TransactionBlock) {
	if block.Effects == nil {
		return
	}
	_ = c.cache.PutTxBlock(block)
}

func (c *ChainCli) call(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	if err := ctx.Err(); err != nil {
		return gjson.Result{}, err
	}
	req := c.SCli.Post()
	req.JSON(rpcRequest{
		Jsonrpc: "2.0",
		Id:      atomic.AddUint64(&c.reqId, 1),
		Method:  method,
		Params:  params,
	})
	resp, err := req.Send()
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Close()
	if !resp.Ok {
		return gjson.Result{}, fmt.Errorf("resp failed; http code: %d, errMsg: %s", resp.StatusCode, resp.String())
	}
	body := resp.Bytes()
	if e := gjson.GetBytes(body, "error"); e.Exists() && e.Type != gjson.Null {
		return gjson.Result{}, &RpcError{Code: e.Get("code").Int(), Message: e.Get("message").String()}
	}
	res := gjson.GetBytes(body, "result")
	if !res.Exists() {
		return gjson.Result{}, fmt.Errorf("%s: rpc response without result", method)
	}
	return res, nil
}

func isNotFoundMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "could not find") || strings.Contains(msg, "not found")
}
