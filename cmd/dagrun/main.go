package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gotypo/adapters/postgres"
	"gotypo/app"
	"gotypo/internal"
	"gotypo/internal/config"
)

func main() {
	_ = godotenv.Load()

	var (
		languageID string
		explain    bool
	)
	flag.StringVar(&languageID, "language", "", "evaluate one language instead of all")
	flag.BoolVar(&explain, "explain", false, "print per-parameter explanation rows after the run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	logger := internal.DefaultLogger
	parameters := postgres.NewParameterRepository(db)
	languages := postgres.NewLanguageRepository(db)
	values := postgres.NewValueRepository(db)
	evaluation := app.NewEvaluationService(parameters, languages, values, logger)

	ctx := context.Background()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if languageID != "" {
		report, err := evaluation.RunDAG(ctx, languageID)
		if err != nil {
			log.Fatalf("dag run: %v", err)
		}
		if err := enc.Encode(report); err != nil {
			log.Fatalf("encode report: %v", err)
		}
		if explain {
			diagnostics := app.NewDiagnosticsService(parameters, values, logger)
			rows, err := diagnostics.ExplainLanguage(ctx, languageID)
			if err != nil {
				log.Fatalf("explain: %v", err)
			}
			if err := enc.Encode(rows); err != nil {
				log.Fatalf("encode explanation: %v", err)
			}
		}
		return
	}

	reports, err := evaluation.RunDAGAll(ctx, cfg.Engine.Concurrency)
	if err != nil {
		log.Fatalf("dag run: %v", err)
	}
	if err := enc.Encode(reports); err != nil {
		log.Fatalf("encode reports: %v", err)
	}
}
