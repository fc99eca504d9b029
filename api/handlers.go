package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gotypo/app"
	"gotypo/domain/survey"
)

func (a *App) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := a.languages.List(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, langs)
}

func (a *App) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := a.languages.Get(r.Context(), chi.URLParam(r, "languageID"))
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, lang)
}

func (a *App) handlePutLanguage(w http.ResponseWriter, r *http.Request) {
	var lang survey.Language
	if err := json.NewDecoder(r.Body).Decode(&lang); err != nil {
		a.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid language payload"})
		return
	}
	lang.ID = chi.URLParam(r, "languageID")
	if err := a.languages.Upsert(r.Context(), &lang); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, lang)
}

func (a *App) handleDeleteLanguage(w http.ResponseWriter, r *http.Request) {
	if err := a.languages.Delete(r.Context(), chi.URLParam(r, "languageID")); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleListParameters(w http.ResponseWriter, r *http.Request) {
	var (
		params []survey.ParameterDef
		err    error
	)
	if r.URL.Query().Get("active") == "true" {
		params, err = a.parameters.ListActive(r.Context())
	} else {
		params, err = a.parameters.List(r.Context())
	}
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, params)
}

func (a *App) handlePutParameter(w http.ResponseWriter, r *http.Request) {
	var p survey.ParameterDef
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		a.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid parameter payload"})
		return
	}
	p.ID = chi.URLParam(r, "parameterID")
	if err := a.parameters.Upsert(r.Context(), &p); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, p)
}

func (a *App) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.questions.ListByParameter(r.Context(), chi.URLParam(r, "parameterID"))
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, questions)
}

func (a *App) handlePutQuestion(w http.ResponseWriter, r *http.Request) {
	var q survey.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		a.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid question payload"})
		return
	}
	q.ID = chi.URLParam(r, "questionID")
	if err := a.questions.Upsert(r.Context(), &q); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, q)
}

type answerRequest struct {
	Response survey.Response     `json:"response"`
	Status   survey.AnswerStatus `json:"status"`
	Comments string              `json:"comments"`
}

func (a *App) handlePutAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid answer payload"})
		return
	}
	if req.Status == "" {
		req.Status = survey.StatusPending
	}
	answer := survey.Answer{
		LanguageID: chi.URLParam(r, "languageID"),
		QuestionID: chi.URLParam(r, "questionID"),
		Response:   req.Response,
		Status:     req.Status,
		Modifiable: req.Status.Modifiable(),
		Comments:   req.Comments,
	}
	if err := a.answers.Upsert(r.Context(), &answer); err != nil {
		a.respondError(w, err)
		return
	}
	if err := a.consolidation.AnswerChanged(r.Context(), answer.LanguageID, answer.QuestionID); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, answer)
}

func (a *App) handleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	languageID := chi.URLParam(r, "languageID")
	questionID := chi.URLParam(r, "questionID")
	if err := a.answers.Delete(r.Context(), languageID, questionID); err != nil {
		a.respondError(w, err)
		return
	}
	if err := a.consolidation.AnswerChanged(r.Context(), languageID, questionID); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusNoContent, nil)
}

type languageValuesResponse struct {
	Raw   map[string]survey.LanguageParameter     `json:"raw"`
	Evals map[string]survey.LanguageParameterEval `json:"evals"`
}

func (a *App) handleLanguageValues(w http.ResponseWriter, r *http.Request) {
	languageID := chi.URLParam(r, "languageID")
	if _, err := a.languages.Get(r.Context(), languageID); err != nil {
		a.respondError(w, err)
		return
	}
	raw, err := a.values.RawValues(r.Context(), languageID)
	if err != nil {
		a.respondError(w, err)
		return
	}
	evals, err := a.values.Evals(r.Context(), languageID)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, languageValuesResponse{Raw: raw, Evals: evals})
}

func (a *App) handleExplainLanguage(w http.ResponseWriter, r *http.Request) {
	languageID := chi.URLParam(r, "languageID")
	if _, err := a.languages.Get(r.Context(), languageID); err != nil {
		a.respondError(w, err)
		return
	}
	rows, err := a.diagnostics.ExplainLanguage(r.Context(), languageID)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, rows)
}

func (a *App) handleRunLanguage(w http.ResponseWriter, r *http.Request) {
	report, err := a.evaluation.RunDAG(r.Context(), chi.URLParam(r, "languageID"))
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, report)
}

func (a *App) handleRunAll(w http.ResponseWriter, r *http.Request) {
	reports, err := a.evaluation.RunDAGAll(r.Context(), a.concurrency)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, reports)
}

func (a *App) handleGraph(w http.ResponseWriter, r *http.Request) {
	payload, err := a.graph.Payload(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, payload)
}

func (a *App) handleGraphForLanguage(w http.ResponseWriter, r *http.Request) {
	languageID := chi.URLParam(r, "languageID")
	if _, err := a.languages.Get(r.Context(), languageID); err != nil {
		a.respondError(w, err)
		return
	}
	payload, err := a.graph.PayloadForLanguage(r.Context(), languageID)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, payload)
}

type distanceResponse struct {
	Languages []string    `json:"languages"`
	Matrix    [][]float64 `json:"matrix"`
	Summary   interface{} `json:"summary"`
}

func (a *App) handleDistance(w http.ResponseWriter, r *http.Request) {
	metric, err := app.MetricByName(r.URL.Query().Get("metric"))
	if err != nil {
		a.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	m, err := a.distance.Matrix(r.Context(), metric)
	if err != nil {
		a.respondError(w, err)
		return
	}
	summary, err := m.Summarize()
	if err != nil {
		a.respondError(w, err)
		return
	}

	n := len(m.Languages)
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			rows[i][j] = m.D.At(i, j)
		}
	}
	a.respondJSON(w, http.StatusOK, distanceResponse{
		Languages: m.Languages,
		Matrix:    rows,
		Summary:   summary,
	})
}
