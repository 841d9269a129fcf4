package main

import (
	"flag"
	"log"
	"os"

	"Midas/internal/di"
	"Midas/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/gateway.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s ctx=%s rec=%s", cfg.Environment, cfg.Gateway.ContextURL, cfg.Gateway.RecommendURL)

	app, err := di.InitializeGatewayApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
