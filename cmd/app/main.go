package main

import (
	"flag"
	"log"
	"os"

	"VolPulse/internal/di"
	"VolPulse/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	cfg.ScanDefaults()
	log.Printf("volpulse starting env=%s backend=%s symbols=%d",
		cfg.Environment, cfg.Backend.Type, len(cfg.MarketData.Symbols))

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
