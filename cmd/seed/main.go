package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"sunbird/internal/config"
	"sunbird/internal/database"
	"sunbird/internal/logger"
	"sunbird/internal/models"
	"sunbird/internal/repository"
)

var (
	operatorCount  = flag.Int("operators", 3, "Number of demo operators to create")
	activityCount  = flag.Int("activities", 5, "Activities per operator")
	occurrenceDays = flag.Int("days", 14, "Days ahead to schedule occurrences")
	password       = flag.String("password", "operator123", "Password for all demo operators")
)

var locations = []string{
	"Lisbon", "Porto", "Madeira", "Azores", "Algarve",
}

var activityTitles = []string{
	"Sunset Sailing Tour",
	"Old Town Walking Tour",
	"Dolphin Watching Cruise",
	"Wine Tasting Experience",
	"Coastal Kayak Adventure",
	"Mountain Hiking Trip",
	"Street Food Tour",
	"Surf Lesson for Beginners",
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")
	log := logger.Get()

	log.Info("Starting demo data seeder...")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	passwordHash := fmt.Sprintf("%x", sha256.Sum256([]byte(*password)))

	for i := 0; i < *operatorCount; i++ {
		operator := &models.Operator{
			Name:         fmt.Sprintf("Demo Operator %d", i+1),
			Email:        fmt.Sprintf("operator%d@example.com", i+1),
			PasswordHash: passwordHash,
			CommissionBP: 1100,
			IsActive:     true,
		}
		if err := repos.Operators.Create(ctx, operator); err != nil {
			log.Error("Failed to create operator", "error", err, "email", operator.Email)
			os.Exit(1)
		}
		log.Info("Created operator", "id", operator.ID, "email", operator.Email)

		for j := 0; j < *activityCount; j++ {
			title := activityTitles[rand.Intn(len(activityTitles))]
			description := fmt.Sprintf("%s with %s", title, operator.Name)
			activity := &models.Activity{
				OperatorID:  operator.ID,
				Title:       title,
				Description: &description,
				Location:    locations[rand.Intn(len(locations))],
			}
			if err := repos.Activities.Create(ctx, activity); err != nil {
				log.Error("Failed to create activity", "error", err)
				os.Exit(1)
			}

			for day := 1; day <= *occurrenceDays; day += 2 {
				startsAt := time.Now().AddDate(0, 0, day).Truncate(time.Hour).Add(10 * time.Hour)
				occ := &models.Occurrence{
					ActivityID:      activity.ID,
					StartsAt:        startsAt,
					BookingDeadline: startsAt.Add(-24 * time.Hour),
					AvailableSpots:  8 + rand.Intn(12),
					PricePerAdult:   int64(3000 + rand.Intn(9)*1000),
					PricePerChild:   int64(1500 + rand.Intn(5)*500),
				}
				if err := repos.Occurrences.Create(ctx, occ, nil); err != nil {
					log.Error("Failed to create occurrence", "error", err)
					os.Exit(1)
				}
			}

			log.Info("Created activity with occurrences",
				"activity_id", activity.ID,
				"title", activity.Title)
		}
	}

	log.Info("Seeding completed successfully!")
}
