package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"DealFinder/internal/app"
	"DealFinder/internal/observability"
	"DealFinder/pkg/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	task := flag.String("task", "scan", "Task to run: scan or debug")
	target := flag.String("target", "", "Listing URL, file:// URL or path of a saved page")
	configPath := flag.String("config", "config.yml", "Path to the YAML config")
	flag.Parse()

	if *target == "" {
		log.Fatalf("-target is required")
	}

	cfg := config.LoadConfig(*configPath)
	observability.Start(cfg.Metrics.Port)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Running task: %s", *task)

	switch *task {
	case "scan":
		if _, err := application.RunScan(ctx, *target); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}

	case "debug":
		if _, err := application.RunDebug(ctx, *target); err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}

	default:
		log.Fatalf("Unknown task: %s.", *task)
	}
}
