package main

import (
	"flag"
	"fmt"
	"os"

	"PulseGateway/internal/di"
	"PulseGateway/pkg/config"
)

func main() {
	path := flag.String("config", "config/config.yaml", "path to the YAML config")
	check := flag.Bool("check", false, "validate the config and exit")
	flag.Parse()

	if err := run(*path, *check); err != nil {
		fmt.Fprintf(os.Stderr, "pulse-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, checkOnly bool) error {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return err
	}
	if checkOnly {
		fmt.Printf("config ok: env=%s sink=%s kafka=%t redis=%t clickhouse=%t\n",
			cfg.Environment, cfg.Alerts.Sink, cfg.Kafka.Enabled, cfg.Cache.Redis.Enabled, cfg.ClickHouse.Enabled)
		return nil
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return app.Run()
}
