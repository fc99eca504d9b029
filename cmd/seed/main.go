package main

import (
	"context"
	"flag"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gotypo/adapters/excel"
	"gotypo/adapters/postgres"
	"gotypo/app"
	"gotypo/internal"
	"gotypo/internal/config"
)

func main() {
	_ = godotenv.Load()

	var seedPath string
	flag.StringVar(&seedPath, "seed", "", "survey workbook (.xlsx) or directory of CSV tables")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}
	if seedPath == "" {
		seedPath = cfg.Import.SeedFile
	}
	if seedPath == "" {
		log.Fatal("no seed source: pass -seed or set SEED_FILE")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	logger := internal.DefaultLogger

	languages := postgres.NewLanguageRepository(db)
	parameters := postgres.NewParameterRepository(db)
	questions := postgres.NewQuestionRepository(db)
	values := postgres.NewValueRepository(db)

	// Answer writes consolidate as they land, via the change hook.
	var consolidation *app.ConsolidationService
	answers := postgres.NewAnswerRepository(db, notifierFunc(func(ctx context.Context, languageID, questionID string) error {
		return consolidation.AnswerChanged(ctx, languageID, questionID)
	}))
	consolidation = app.NewConsolidationService(parameters, questions, answers, values, logger)

	seed, err := excel.NewSeedReader(seedPath).Read()
	if err != nil {
		log.Fatalf("read seed: %v", err)
	}
	logger.Info("seed parsed: %d languages, %d parameters, %d questions, %d answers",
		len(seed.Languages), len(seed.Parameters), len(seed.Questions), len(seed.Answers))

	ctx := context.Background()
	loader := excel.NewLoader(languages, parameters, questions, answers)
	if err := loader.Load(ctx, seed); err != nil {
		log.Fatalf("load seed: %v", err)
	}

	// Evaluate everything once the data is in.
	evaluation := app.NewEvaluationService(parameters, languages, values, logger)
	reports, err := evaluation.RunDAGAll(ctx, cfg.Engine.Concurrency)
	if err != nil {
		log.Fatalf("evaluation: %v", err)
	}
	logger.Info("seed complete: %d languages evaluated", len(reports))
}

// notifierFunc adapts a function to the answer change hook.
type notifierFunc func(ctx context.Context, languageID, questionID string) error

func (f notifierFunc) AnswerChanged(ctx context.Context, languageID, questionID string) error {
	return f(ctx, languageID, questionID)
}
