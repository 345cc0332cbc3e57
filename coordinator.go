package invkeeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/everFinance/invkeeper/config"
	"github.com/everFinance/invkeeper/schema"
	"github.com/google/uuid"
)

type ChainClient interface {
	ObjectFetcher
	// WaitForTransaction settles once the transaction is final; the timeout is its own.
	WaitForTransaction(ctx context.Context, digest string) (*schema.TransactionBlock, error)
	GetTransactionBlock(ctx context.Context, digest string) (*schema.TransactionBlock, error)
}

// Signer is the only path for user approval and network submission.
type Signer interface {
	SignAndExecute(ctx context.Context, tx *schema.Transaction) (digest string, err error)
}

type AccountProvider interface {
	CurrentAddress() (string, bool)
}

type EventSink interface {
	Publish(ev schema.TxEvent) error
}

type Option func(*Coordinator)

// WithStore persists the handle and the transaction history. A stored handle is
// restored when the coordinator is created.
func WithStore(store *Store) Option {
	return func(c *Coordinator) { c.store = store }
}

func WithEventSink(sink EventSink) Option {
	return func(c *Coordinator) { c.events = sink }
}

// Coordinator drives the lifecycle of the contract object: submit, wait for finality,
// read effects, refresh. The lock is never held across a call to a collaborator.
type Coordinator struct {
	network  config.Network
	chain    ChainClient
	signer   Signer
	account  AccountProvider
	resolver *Resolver
	store    *Store
	events   EventSink

	lock       sync.RWMutex
	objectId   string
	inFlight   int
	state      schema.LifecycleState // Loading is derived from inFlight
	resolution schema.Resolution
}

func NewCoordinator(network config.Network, chain ChainClient, signer Signer, account AccountProvider, opts ...Option) *Coordinator {
	c := &Coordinator{
		network:  network,
		chain:    chain,
		signer:   signer,
		account:  account,
		resolver: NewResolver(chain, network.PackageId),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store != nil {
		objectId, err := c.store.LoadObjectId()
		switch {
		case err == nil:
			c.objectId = objectId
			log.Info("restore object handle", "objectId", objectId)
		case err != schema.ErrNotExist:
			log.Error("c.store.LoadObjectId()", "err", err)
		}
	}
	return c
}

// CreateObject creates a new inventory object and adopts it as the handle.
// It does nothing while no package id is configured.
func (c *Coordinator) CreateObject(ctx context.Context) error {
	pkg := c.network.PackageId
	if pkg == "" {
		log.Debug("skip create: no package id", "network", c.network.Name)
		return nil
	}
	return c.execute(ctx, schema.MethodCreate, func() *schema.Transaction {
		tx := schema.NewTransaction()
		tx.MoveCall(schema.Target(pkg, schema.MethodCreate))
		return tx
	})
}

func (c *Coordinator) AddInventory(ctx context.Context) error {
	return c.mutate(ctx, schema.MethodAddInventory)
}

// RemoveInventory does not check the count; the contract rejects going below zero.
func (c *Coordinator) RemoveInventory(ctx context.Context) error {
	return c.mutate(ctx, schema.MethodRemoveInventory)
}

// ClearObject forgets the handle and its state. Work already in flight keeps running.
func (c *Coordinator) ClearObject() {
	c.lock.Lock()
	c.objectId = ""
	c.state.LastTransactionHash = ""
	c.state.Confirmed = false
	c.state.Error = nil
	c.resolution = schema.Resolution{}
	c.lock.Unlock()

	if c.store != nil {
		if err := c.store.DelObjectId(); err != nil {
			log.Error("c.store.DelObjectId()", "err", err)
		}
	}
}

// Refresh re-reads the current object. A failed fetch leaves no confirmed data and is
// returned without touching the error slot.
func (c *Coordinator) Refresh(ctx context.Context) error {
	objectId := c.ObjectId()
	res, err := c.resolver.Resolve(ctx, objectId)
	if err != nil {
		log.Warn("c.resolver.Resolve(objectId)", "err", err, "objectId", objectId)
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if c.objectId != objectId {
		// the handle moved on while fetching
		return err
	}
	c.resolution = res
	if res.Exists() {
		c.state.Confirmed = true
	}
	return err
}

func (c *Coordinator) ObjectId() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.objectId
}

func (c *Coordinator) View() schema.View {
	c.lock.RLock()
	res := c.resolution
	st := c.state
	st.Loading = c.inFlight > 0
	objectId := c.objectId
	c.lock.RUnlock()

	var data *schema.InventoryRecord
	if res.Record != nil {
		rec := *res.Record
		data = &rec
	}
	return schema.View{
		Data:         data,
		State:        st,
		ObjectId:     objectId,
		IsOwner:      c.isOwner(data),
		ObjectExists: res.Exists(),
		HasValidData: res.Valid(),
	}
}

// History lists recorded transactions, empty without a store.
func (c *Coordinator) History() ([]schema.TxRecord, error) {
	if c.store == nil {
		return []schema.TxRecord{}, nil
	}
	return c.store.TxRecords()
}

// TxRecord returns schema.ErrNotExist for an unknown digest or without a store.
func (c *Coordinator) TxRecord(digest string) (*schema.TxRecord, error) {
	if c.store == nil {
		return nil, schema.ErrNotExist
	}
	return c.store.LoadTxRecord(digest)
}

func (c *Coordinator) isOwner(rec *schema.InventoryRecord) bool {
	if rec == nil || c.account == nil {
		return false
	}
	addr, ok := c.account.CurrentAddress()
	return ok && addr != "" && addr == rec.Owner
}

func (c *Coordinator) mutate(ctx context.Context, method string) error {
	objectId := c.ObjectId()
	pkg := c.network.PackageId
	if objectId == "" || pkg == "" {
		log.Debug("skip "+method+": object or package not ready", "objectId", objectId, "packageId", pkg)
		return nil
	}
	return c.execute(ctx, method, func() *schema.Transaction {
		tx := schema.NewTransaction()
		tx.MoveCall(schema.Target(pkg, method), schema.ObjectArg(objectId))
		return tx
	})
}

// execute runs one action: build -> sign and execute -> wait finality -> (create) adopt
// the created object -> refresh. Loading covers the whole span, panics included.
func (c *Coordinator) execute(ctx context.Context, action string, build func() *schema.Transaction) (err error) {
	begin := time.Now()
	digest := ""
	c.beginAction()
	defer func() {
		if r := recover(); r != nil {
			phase := PhaseSubmit
			if digest != "" {
				phase = PhaseConfirm
			}
			log.Error("action panicked", "action", action, "panic", r)
			err = &TxError{Action: action, Phase: phase, Digest: digest, Err: normalizeError(r)}
		}
		c.endAction(action, digest, err, begin)
	}()

	tx := build()
	digest, err = c.signer.SignAndExecute(ctx, tx)
	if err != nil {
		log.Error("c.signer.SignAndExecute(tx)", "err", err, "action", action)
		digest = ""
		return &TxError{Action: action, Phase: PhaseSubmit, Err: err}
	}
	if digest == "" {
		return &TxError{Action: action, Phase: PhaseSubmit, Err: schema.ErrNullDigest}
	}
	c.lock.Lock()
	c.state.LastTransactionHash = digest
	c.lock.Unlock()
	c.saveTxRecord(action, digest, schema.TxStatusSubmitted, "", nil)

	block, err := c.chain.WaitForTransaction(ctx, digest)
	if err != nil {
		log.Error("c.chain.WaitForTransaction(digest)", "err", err, "action", action, "digest", digest)
		return &TxError{Action: action, Phase: PhaseConfirm, Digest: digest, Err: err}
	}
	if block != nil && block.Effects.Failed() {
		log.Error("transaction execution failed", "action", action, "digest", digest, "status", block.Effects.Status.Error)
		return &TxError{Action: action, Phase: PhaseConfirm, Digest: digest,
			Err: fmt.Errorf("%w: %s", schema.ErrTxFailed, block.Effects.Status.Error)}
	}

	if action == schema.MethodCreate {
		if err = c.adoptCreated(ctx, digest); err != nil {
			return err
		}
	}

	_ = c.Refresh(ctx)
	return nil
}

func (c *Coordinator) adoptCreated(ctx context.Context, digest string) error {
	block, err := c.chain.GetTransactionBlock(ctx, digest)
	if err != nil {
		log.Error("c.chain.GetTransactionBlock(digest)", "err", err, "digest", digest)
		return &TxError{Action: schema.MethodCreate, Phase: PhaseConfirm, Digest: digest, Err: err}
	}
	var created []schema.OwnedObjectRef
	if block != nil && block.Effects != nil {
		created = block.Effects.Created
	}
	if len(created) == 0 {
		// not an error: the handle stays unset
		log.Warn("create confirmed without a created object", "digest", digest)
		metricCreatedMissing()
		return nil
	}

	objectId := created[0].Reference.ObjectId
	c.lock.Lock()
	if c.objectId != objectId {
		c.objectId = objectId
		c.state.Confirmed = false
		c.resolution = schema.Resolution{}
	}
	c.lock.Unlock()
	log.Info("adopt created object", "objectId", objectId, "digest", digest)

	if c.store != nil {
		if err := c.store.SaveObjectId(objectId); err != nil {
			log.Error("c.store.SaveObjectId(objectId)", "err", err, "objectId", objectId)
		}
	}
	return nil
}

func (c *Coordinator) beginAction() {
	c.lock.Lock()
	c.inFlight++
	c.state.Error = nil
	c.lock.Unlock()
	metricTxBegin()
}

func (c *Coordinator) endAction(action, digest string, err error, begin time.Time) {
	c.lock.Lock()
	c.inFlight--
	if err != nil {
		c.state.Error = err
	}
	objectId := c.objectId
	c.lock.Unlock()

	status := schema.TxStatusConfirmed
	if err != nil {
		status = schema.TxStatusFailed
	}
	metricTxEnd(action, status, begin)
	if digest != "" {
		c.saveTxRecord(action, digest, status, objectId, err)
	}
	c.publish(action, digest, objectId, status, err)
}

func (c *Coordinator) saveTxRecord(action, digest, status, objectId string, err error) {
	if c.store == nil {
		return
	}
	record := schema.TxRecord{
		Digest:    digest,
		Action:    action,
		Status:    status,
		ObjectId:  objectId,
		Timestamp: time.Now().UnixMilli(),
	}
	if err != nil {
		record.Error = err.Error()
	}
	if err := c.store.SaveTxRecord(record); err != nil {
		log.Error("c.store.SaveTxRecord(record)", "err", err, "digest", digest)
	}
}

func (c *Coordinator) publish(action, digest, objectId, status string, err error) {
	if c.events == nil {
		return
	}
	ev := schema.TxEvent{
		Id:        uuid.NewString(),
		Action:    action,
		Digest:    digest,
		ObjectId:  objectId,
		Status:    status,
		Timestamp: time.Now().UnixMilli(),
	}
	if err != nil {
		ev.Error = err.Error()
		if txErr, ok := err.(*TxError); ok {
			ev.Phase = string(txErr.Phase)
		}
	}
	if err := c.events.Publish(ev); err != nil {
		log.Error("c.events.Publish(ev)", "err", err, "action", action, "digest", digest)
	}
}
