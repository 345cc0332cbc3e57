package config

import (
	"fmt"
	"os"
	"time"

	"github.com/everFinance/invkeeper/schema"
	"gopkg.in/yaml.v3"
)

const (
	Devnet  = "devnet"
	Testnet = "testnet"
	Mainnet = "mainnet"

	// package ids, filled in by the deploy tooling. an empty id keeps the keeper inert on that network
	DevnetPackageId  = "0x9d108e915e632cfa98fa2e1a1f1380caf12aefad9c3f2bef9ccc354686adc37d"
	TestnetPackageId = "0x034c223f7392aaeeb15cd0d365bfd6ce29d48cded12294b3c93c3c45029b9401"
	MainnetPackageId = ""
)

type Network struct {
	Name      string
	Url       string
	PackageId string
}

var Networks = map[string]Network{
	Devnet:  {Name: Devnet, Url: "https://api.devnet.iota.cafe", PackageId: DevnetPackageId},
	Testnet: {Name: Testnet, Url: "https://api.testnet.iota.cafe", PackageId: TestnetPackageId},
	Mainnet: {Name: Mainnet, Url: "https://api.mainnet.iota.cafe", PackageId: MainnetPackageId},
}

func DefaultConfig() schema.Config {
	return schema.Config{
		Network:     Testnet,
		Signer:      "http://127.0.0.1:9527",
		Port:        ":8080",
		BoltDir:     "./data/bolt",
		WaitTimeout: 60 * time.Second,
		Metrics:     schema.Metrics{Port: ":9000"},
	}
}

// LoadFromPath reads a yaml config on top of the defaults. An empty path returns the defaults.
func LoadFromPath(configPath string) (schema.Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}
	parsed := schema.Config{}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", configPath, err)
	}
	Merge(&cfg, parsed)
	return cfg, nil
}

// Merge copies every non-zero field of src into dst.
func Merge(dst *schema.Config, src schema.Config) {
	if src.Network != "" {
		dst.Network = src.Network
	}
	if src.RpcUrl != "" {
		dst.RpcUrl = src.RpcUrl
	}
	if src.PackageId != "" {
		dst.PackageId = src.PackageId
	}
	if src.Signer != "" {
		dst.Signer = src.Signer
	}
	if src.Account != "" {
		dst.Account = src.Account
	}
	if src.Port != "" {
		dst.Port = src.Port
	}
	if src.BoltDir != "" {
		dst.BoltDir = src.BoltDir
	}
	if src.RefreshInterval > 0 {
		dst.RefreshInterval = src.RefreshInterval
	}
	if src.WaitTimeout > 0 {
		dst.WaitTimeout = src.WaitTimeout
	}
	if src.Kafka.Start {
		dst.Kafka = src.Kafka
	}
	if src.Metrics.Start {
		dst.Metrics.Start = true
	}
	if src.Metrics.Port != "" {
		dst.Metrics.Port = src.Metrics.Port
	}
}

// ResolveNetwork returns the active network with the rpc url and package id overrides applied.
func ResolveNetwork(cfg schema.Config) (Network, error) {
	nw, ok := Networks[cfg.Network]
	if !ok {
		return Network{}, fmt.Errorf("%w: %s", schema.ErrUnknownNetwork, cfg.Network)
	}
	if cfg.RpcUrl != "" {
		nw.Url = cfg.RpcUrl
	}
	if cfg.PackageId != "" {
		nw.PackageId = cfg.PackageId
	}
	if nw.PackageId != "" {
		pkg, err := schema.NormalizeId(nw.PackageId)
		if err != nil {
			return Network{}, fmt.Errorf("package id %q: %w", nw.PackageId, err)
		}
		nw.PackageId = pkg
	}
	return nw, nil
}
