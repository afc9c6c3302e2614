package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/jstittsworth/longball/internal/models"
	"github.com/jstittsworth/longball/pkg/config"
	"github.com/jstittsworth/longball/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	if err := db.AutoMigrate(
		&models.Prediction{},
		&models.PipelineRun{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_predictions_date_score ON predictions(game_date, matchup_score DESC)",
		"CREATE INDEX IF NOT EXISTS idx_predictions_batter ON predictions(batter_id)",
		"CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started ON pipeline_runs(started_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	tables := []string{
		"predictions",
		"pipeline_runs",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func seedData(db *database.DB) error {
	pitchMix, err := json.Marshal(map[string]float64{
		"4-Seam Fastball": 0.55,
		"Slider":          0.30,
		"Changeup":        0.15,
	})
	if err != nil {
		return err
	}

	prediction := &models.Prediction{
		RunID:             "00000000-0000-0000-0000-000000000000",
		GameDate:          "2024-07-04",
		GameID:            "sample_batter__vs__sample_pitcher__2024-07-04",
		BatterID:          660271,
		BatterName:        "Sample Batter",
		PitcherID:         543037,
		PitcherName:       "Sample Pitcher",
		PitcherTeam:       "NYY",
		Ballpark:          "Yankee Stadium",
		HomeTeam:          "NYY",
		HRScore:           0.28,
		MatchupScore:      0.26,
		Tier:              "Lock",
		PitchMatchupScore: 0.2,
		ParkFactor:        1.05,
		WindBoost:         0.03,
		BullpenBoost:      0.1,
		Suppression:       0.45,
		PitchMix:          datatypes.JSON(pitchMix),
	}

	if err := db.Create(prediction).Error; err != nil {
		return fmt.Errorf("failed to seed prediction: %w", err)
	}

	return nil
}
