package main

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gotypo/adapters/postgres"
	"gotypo/api"
	"gotypo/app"
	"gotypo/internal"
	"gotypo/internal/config"
)

func main() {
	_ = godotenv.Load()

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

	languages := postgres.NewLanguageRepository(db)
	parameters := postgres.NewParameterRepository(db)
	questions := postgres.NewQuestionRepository(db)
	values := postgres.NewValueRepository(db)

	// No repository-level notifier: the HTTP handlers invoke the change
	// hook themselves after each answer write.
	answers := postgres.NewAnswerRepository(db, nil)
	consolidation := app.NewConsolidationService(parameters, questions, answers, values, logger)

	httpApp := api.NewApp(api.Config{
		Languages:     languages,
		Parameters:    parameters,
		Questions:     questions,
		Answers:       answers,
		Values:        values,
		Consolidation: consolidation,
		Evaluation:    app.NewEvaluationService(parameters, languages, values, logger),
		Diagnostics:   app.NewDiagnosticsService(parameters, values, logger),
		Graph:         app.NewGraphService(parameters, values, logger),
		Distance:      app.NewDistanceService(parameters, languages, values, logger),
		Concurrency:   cfg.Engine.Concurrency,
		Logger:        logger,
	})

	if err := httpApp.Serve(cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
