// Package api exposes the survey engine over HTTP: survey data CRUD,
// evaluation runs, diagnostics, the dependency graph payload and
// distance matrices.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gotypo/app"
	"gotypo/domain/core"
	"gotypo/internal"
	"gotypo/ports"
)

// App is the HTTP application
type App struct {
	router *chi.Mux
	logger *internal.Logger

	languages  ports.LanguageRepository
	parameters ports.ParameterRepository
	questions  ports.QuestionRepository
	answers    ports.AnswerRepository
	values     ports.ValueRepository

	consolidation *app.ConsolidationService
	evaluation    *app.EvaluationService
	diagnostics   *app.DiagnosticsService
	graph         *app.GraphService
	distance      *app.DistanceService

	concurrency int
}

// Config holds the HTTP application's dependencies
type Config struct {
	Languages  ports.LanguageRepository
	Parameters ports.ParameterRepository
	Questions  ports.QuestionRepository
	Answers    ports.AnswerRepository
	Values     ports.ValueRepository

	Consolidation *app.ConsolidationService
	Evaluation    *app.EvaluationService
	Diagnostics   *app.DiagnosticsService
	Graph         *app.GraphService
	Distance      *app.DistanceService

	// Concurrency caps bulk evaluation runs
	Concurrency int
	Logger      *internal.Logger
}

// NewApp creates the HTTP application and wires its routes
func NewApp(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger,
		languages:     cfg.Languages,
		parameters:    cfg.Parameters,
		questions:     cfg.Questions,
		answers:       cfg.Answers,
		values:        cfg.Values,
		consolidation: cfg.Consolidation,
		evaluation:    cfg.Evaluation,
		diagnostics:   cfg.Diagnostics,
		graph:         cfg.Graph,
		distance:      cfg.Distance,
		concurrency:   cfg.Concurrency,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
}

func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Route("/languages", func(r chi.Router) {
			r.Get("/", a.handleListLanguages)
			r.Route("/{languageID}", func(r chi.Router) {
				r.Get("/", a.handleGetLanguage)
				r.Put("/", a.handlePutLanguage)
				r.Delete("/", a.handleDeleteLanguage)
				r.Get("/values", a.handleLanguageValues)
				r.Get("/explain", a.handleExplainLanguage)
				r.Post("/run", a.handleRunLanguage)
				r.Put("/answers/{questionID}", a.handlePutAnswer)
				r.Delete("/answers/{questionID}", a.handleDeleteAnswer)
			})
		})
		r.Route("/parameters", func(r chi.Router) {
			r.Get("/", a.handleListParameters)
			r.Put("/{parameterID}", a.handlePutParameter)
			r.Get("/{parameterID}/questions", a.handleListQuestions)
		})
		r.Put("/questions/{questionID}", a.handlePutQuestion)
		r.Post("/run", a.handleRunAll)
		r.Get("/graph", a.handleGraph)
		r.Get("/graph/{languageID}", a.handleGraphForLanguage)
		r.Get("/distance", a.handleDistance)
	})
}

// Router returns the configured handler
func (a *App) Router() http.Handler {
	return a.router
}

// Serve starts the HTTP server on the given port
func (a *App) Serve(port string) error {
	a.logger.Info("http server listening on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}

func (a *App) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			a.logger.Error("encode response: %v", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) respondError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFoundError(err):
		a.respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case core.IsValidationError(err):
		a.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		a.logger.Error("request failed: %v", err)
		a.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
