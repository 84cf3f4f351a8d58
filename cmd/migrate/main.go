package main

import (
	"log"

	"intelliview-be/internal/config"
	"intelliview-be/internal/model"
	"intelliview-be/pkg/database"
)

// indexes back the HR report listing filters.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_interview_reports_generated_at ON interview_reports (generated_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_interview_reports_decision_generated ON interview_reports (decision, generated_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_interview_reports_integrity_score ON interview_reports (((integrity->>'score')::int));`,
}

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	// gen_random_uuid() is the report id default
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: pgcrypto not installed: %v", err)
	}

	log.Println("Migrating interview_reports...")
	if err := db.AutoMigrate(&model.InterviewReport{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	for _, sql := range indexes {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: index creation failed: %v", err)
		}
	}

	log.Println("✅ Report schema is up to date")
}
