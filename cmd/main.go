package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cafe-api/internal/infrastructure/config"
	"cafe-api/internal/infrastructure/server"
)

func main() {
	configFile := flag.String("c", os.Getenv("CAFE_CONFIG"), "path to the YAML config file")
	envFile := flag.String("env", ".env", "path to the .env file")
	flag.Parse()

	cfg, err := config.LoadFrom(*configFile, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	srv := server.NewServer(server.WithConfig(cfg))
	if err := srv.Run(context.Background()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
