package invkeeper

import (
	"context"
	"time"

	"github.com/everFinance/invkeeper/common"
	"github.com/everFinance/invkeeper/config"
	"github.com/everFinance/invkeeper/schema"
	"github.com/everFinance/invkeeper/sdk"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
)

var log = common.NewLog("invkeeper")

type Keeper struct {
	config      schema.Config
	network     config.Network
	coordinator *Coordinator
	store       *Store
	kWriter     *KWriter

	engine    *gin.Engine
	scheduler *gocron.Scheduler
}

func New(cfg schema.Config) (*Keeper, error) {
	network, err := config.ResolveNetwork(cfg)
	if err != nil {
		return nil, err
	}
	if network.PackageId == "" {
		log.Warn("no package id for network, keeper stays inert", "network", network.Name)
	}
	chainCli, err := sdk.NewChainCli(network.Url, cfg.WaitTimeout)
	if err != nil {
		return nil, err
	}
	wallet := sdk.NewWalletCli(cfg.Signer)

	store, err := NewBoltStore(cfg.BoltDir)
	if err != nil {
		return nil, err
	}
	opts := []Option{WithStore(store)}

	var kWriter *KWriter
	if cfg.Kafka.Start {
		kWriter, err = NewKWriter(TxTopic, cfg.Kafka.Uri)
		if err != nil {
			store.Close()
			return nil, err
		}
		opts = append(opts, WithEventSink(kWriter))
	}

	account := sdk.StaticAccount{Address: cfg.Account}
	if account.Address == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		addr, err := wallet.Account(ctx)
		cancel()
		if err != nil {
			log.Warn("wallet.Account()", "err", err)
		}
		account.Address = addr
	}

	return &Keeper{
		config:      cfg,
		network:     network,
		coordinator: NewCoordinator(network, chainCli, wallet, account, opts...),
		store:       store,
		kWriter:     kWriter,
		engine:      gin.Default(),
		scheduler:   gocron.NewScheduler(time.UTC),
	}, nil
}

func (k *Keeper) Coordinator() *Coordinator {
	return k.coordinator
}

func (k *Keeper) Network() config.Network {
	return k.network
}

// Run starts the api, the metric server and the refresh job in the background.
func (k *Keeper) Run() {
	if err := k.coordinator.Refresh(context.Background()); err != nil {
		log.Warn("initial refresh failed", "err", err)
	}
	if k.config.Metrics.Start {
		common.NewMetricServer(k.config.Metrics.Port)
	}
	k.runJobs(k.config.RefreshInterval)
	go k.runAPI(k.config.Port)
}

func (k *Keeper) Close() {
	k.scheduler.Stop()
	if k.kWriter != nil {
		k.kWriter.Close()
	}
	if err := k.store.Close(); err != nil {
		log.Error("k.store.Close()", "err", err)
	}
}
