package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/config"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/eventlog"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/retry"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/scan"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/server"
	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store.Init()
	log.Println("[main] store initialized")

	events := eventlog.New()

	delays := make([]time.Duration, len(cfg.Retry.DelaysMs))
	for i, ms := range cfg.Retry.DelaysMs {
		delays[i] = time.Duration(ms) * time.Millisecond
	}
	runner := scan.NewRunner(events, registeredProviders(), retry.Options{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delays:      delays,
		Timeout:     time.Duration(cfg.Retry.TimeoutMs) * time.Millisecond,
	})

	srv := server.New(cfg, runner, events)
	if err := srv.Run(context.Background()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
