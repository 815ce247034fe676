package main

import (
	"log"
	"os"

	"geolens/internal/config"
	"geolens/internal/db"
	"geolens/internal/models"
	"geolens/internal/utils/logger"

	"github.com/joho/godotenv"
)

// Seeds the layer catalog. Safe to run repeatedly; existing layers are left
// untouched.
func main() {
	var clog = logger.New("seed")

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			clog.Error("Failed to close database connection", err)
		}
	}()

	if err := models.SeedLayers(db.GetDB()); err != nil {
		log.Fatalf("Failed to seed layers: %v", err)
	}

	clog.Success("Layer catalog seeded")
}
