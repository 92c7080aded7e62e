package main

import (
	"flag"
	"log/slog"
	"os"

	"zeptopulse/internal/app"
	"zeptopulse/internal/config"
)

func main() {
	datasetPath := flag.String("dataset", "", "path to the orders dataset (overrides config)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
