package schema

import "time"

type Config struct {
	Network   string `yaml:"network"`
	RpcUrl    string `yaml:"rpcUrl"`    // overrides the network fullnode url
	PackageId string `yaml:"packageId"` // overrides the network package id
	Signer    string `yaml:"signer"`    // wallet bridge url
	Account   string `yaml:"account"`
	Port      string `yaml:"port"`

	BoltDir         string        `yaml:"boltDir"`
	RefreshInterval time.Duration `yaml:"refreshInterval"` // 0 disables periodic refresh
	WaitTimeout     time.Duration `yaml:"waitTimeout"`

	Kafka   Kafka   `yaml:"kafka"`
	Metrics Metrics `yaml:"metrics"`
}

type Kafka struct {
	Start bool   `yaml:"start"`
	Uri   string `yaml:"uri"`
}

type Metrics struct {
	Start bool   `yaml:"start"`
	Port  string `yaml:"port"`
}
