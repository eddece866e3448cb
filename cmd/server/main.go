package main

import (
	"flag"
	"log"

	"DealFinder/internal/app"
	"DealFinder/internal/server"
	"DealFinder/pkg/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "config.yml", "Path to the YAML config")
	flag.Parse()

	cfg := config.LoadConfig(*configPath)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}
	defer application.Close()

	log.Println("Starting deal API server...")
	server.Start(application, cfg)
}
