package main

import (
	"context"
	"os"

	"sunbird/internal/config"
	"sunbird/internal/database"
	"sunbird/internal/logger"
	"sunbird/internal/repository"
	"sunbird/internal/search"
	"sunbird/internal/service"
)

// Rebuilds the Elasticsearch discovery index from Postgres.
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")
	log := logger.Get()

	log.Info("Starting activity index sync...")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		log.Error("Failed to connect to Elasticsearch", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	activityService := service.NewActivityService(repos.Activities, repos.Occurrences, repos.Operators, esClient)

	indexed, err := activityService.Reindex(context.Background())
	if err != nil {
		log.Error("Reindex failed", "error", err, "indexed", indexed)
		os.Exit(1)
	}

	log.Info("Activity index sync completed", "indexed", indexed)
}
