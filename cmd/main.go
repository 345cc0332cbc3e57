package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/everFinance/invkeeper"
	"github.com/everFinance/invkeeper/config"
	"github.com/everFinance/invkeeper/schema"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "invkeeper",
		Usage: "drive the lifecycle of an on-chain inventory object",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "yaml config path", EnvVars: []string{"CONFIG"}},
			&cli.StringFlag{Name: "network", Value: config.Testnet, Usage: "devnet, testnet or mainnet", EnvVars: []string{"NETWORK"}},
			&cli.StringFlag{Name: "rpc", Usage: "fullnode url, overrides the network default", EnvVars: []string{"RPC"}},
			&cli.StringFlag{Name: "package_id", Usage: "contract package id, overrides the network default", EnvVars: []string{"PACKAGE_ID"}},
			&cli.StringFlag{Name: "signer", Value: "http://127.0.0.1:9527", Usage: "wallet bridge url", EnvVars: []string{"SIGNER"}},
			&cli.StringFlag{Name: "account", Usage: "current account address, asked from the signer when empty", EnvVars: []string{"ACCOUNT"}},
			&cli.StringFlag{Name: "db_dir", Value: "./data/bolt", Usage: "bolt db dir path", EnvVars: []string{"DB_DIR"}},
			&cli.StringFlag{Name: "port", Value: ":8080", EnvVars: []string{"PORT"}},
			&cli.DurationFlag{Name: "refresh_interval", Usage: "periodic object refresh, 0 disables", EnvVars: []string{"REFRESH_INTERVAL"}},
			&cli.DurationFlag{Name: "wait_timeout", Value: config.DefaultConfig().WaitTimeout, Usage: "finality wait timeout", EnvVars: []string{"WAIT_TIMEOUT"}},
			&cli.BoolFlag{Name: "kafka", Value: false, Usage: "publish transaction events to kafka", EnvVars: []string{"KAFKA"}},
			&cli.StringFlag{Name: "kafka_uri", Value: "127.0.0.1:9092", EnvVars: []string{"KAFKA_URI"}},
			&cli.BoolFlag{Name: "metrics", Value: false, Usage: "serve prometheus metrics", EnvVars: []string{"METRICS"}},
			&cli.StringFlag{Name: "metrics_port", Value: ":9000", EnvVars: []string{"METRICS_PORT"}},
		},
		Action: serve,
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the api and the refresh job", Action: serve},
			{Name: "create", Usage: "create a new inventory object", Action: action(func(c *invkeeper.Coordinator) func(context.Context) error { return c.CreateObject })},
			{Name: "add", Usage: "add one to the inventory", Action: action(func(c *invkeeper.Coordinator) func(context.Context) error { return c.AddInventory })},
			{Name: "remove", Usage: "remove one from the inventory", Action: action(func(c *invkeeper.Coordinator) func(context.Context) error { return c.RemoveInventory })},
			{Name: "show", Usage: "refresh and print the current object", Action: show},
			{Name: "clear", Usage: "forget the current object", Action: clearObject},
			{Name: "history", Usage: "print recorded transactions", Action: history},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// loadConfig applies the flags that were set on top of the config file.
func loadConfig(c *cli.Context) (schema.Config, error) {
	cfg, err := config.LoadFromPath(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("network") || cfg.Network == "" {
		cfg.Network = c.String("network")
	}
	if c.IsSet("rpc") {
		cfg.RpcUrl = c.String("rpc")
	}
	if c.IsSet("package_id") {
		cfg.PackageId = c.String("package_id")
	}
	if c.IsSet("signer") {
		cfg.Signer = c.String("signer")
	}
	if c.IsSet("account") {
		cfg.Account = c.String("account")
	}
	if c.IsSet("db_dir") {
		cfg.BoltDir = c.String("db_dir")
	}
	if c.IsSet("port") {
		cfg.Port = c.String("port")
	}
	if c.IsSet("refresh_interval") {
		cfg.RefreshInterval = c.Duration("refresh_interval")
	}
	if c.IsSet("wait_timeout") {
		cfg.WaitTimeout = c.Duration("wait_timeout")
	}
	if c.IsSet("kafka") {
		cfg.Kafka.Start = c.Bool("kafka")
	}
	if c.IsSet("kafka_uri") || cfg.Kafka.Uri == "" {
		cfg.Kafka.Uri = c.String("kafka_uri")
	}
	if c.IsSet("metrics") {
		cfg.Metrics.Start = c.Bool("metrics")
	}
	if c.IsSet("metrics_port") {
		cfg.Metrics.Port = c.String("metrics_port")
	}
	return cfg, nil
}

func newKeeper(c *cli.Context) (*invkeeper.Keeper, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return invkeeper.New(cfg)
}

func serve(c *cli.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	k, err := newKeeper(c)
	if err != nil {
		return err
	}
	k.Run()

	<-signals
	k.Close()
	return nil
}

func action(pick func(c *invkeeper.Coordinator) func(context.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		k, err := newKeeper(c)
		if err != nil {
			return err
		}
		defer k.Close()

		coordinator := k.Coordinator()
		if err := coordinator.Refresh(c.Context); err != nil {
			log.Printf("refresh failed: %v", err)
		}
		if err := pick(coordinator)(c.Context); err != nil {
			return err
		}
		return printJSON(coordinator.View())
	}
}

func show(c *cli.Context) error {
	k, err := newKeeper(c)
	if err != nil {
		return err
	}
	defer k.Close()

	if err := k.Coordinator().Refresh(c.Context); err != nil {
		return err
	}
	return printJSON(k.Coordinator().View())
}

func clearObject(c *cli.Context) error {
	k, err := newKeeper(c)
	if err != nil {
		return err
	}
	defer k.Close()

	k.Coordinator().ClearObject()
	return printJSON(k.Coordinator().View())
}

func history(c *cli.Context) error {
	k, err := newKeeper(c)
	if err != nil {
		return err
	}
	defer k.Close()

	records, err := k.Coordinator().History()
	if err != nil {
		return err
	}
	return printJSON(records)
}

func printJSON(v interface{}) error {
	by, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(by))
	return nil
}
