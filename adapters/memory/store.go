// Package memory is an in-process implementation of the repository
// ports, used by service tests and for running the engine without a
// database. Per-language exclusivity is a mutex per language id;
// RunExclusive stages writes and commits them atomically.
package memory

import (
	"context"
	"sort"
	"sync"

	"gotypo/domain/core"
	"gotypo/domain/survey"
	"gotypo/ports"
)

// Store holds all survey state. The repository views returned by
// Languages, Parameters, Questions, Answers and Values share it.
type Store struct {
	mu         sync.RWMutex
	languages  map[string]survey.Language
	parameters map[string]survey.ParameterDef
	questions  map[string]survey.Question
	answers    map[string]map[string]survey.Answer                // language -> question -> answer
	raw        map[string]map[string]survey.LanguageParameter     // language -> parameter -> row
	evals      map[string]map[string]survey.LanguageParameterEval // language -> parameter -> row

	lockMu    sync.Mutex
	langLocks map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		languages:  make(map[string]survey.Language),
		parameters: make(map[string]survey.ParameterDef),
		questions:  make(map[string]survey.Question),
		answers:    make(map[string]map[string]survey.Answer),
		raw:        make(map[string]map[string]survey.LanguageParameter),
		evals:      make(map[string]map[string]survey.LanguageParameterEval),
		langLocks:  make(map[string]*sync.Mutex),
	}
}

var (
	_ ports.LanguageRepository  = (*languageRepo)(nil)
	_ ports.ParameterRepository = (*parameterRepo)(nil)
	_ ports.QuestionRepository  = (*questionRepo)(nil)
	_ ports.AnswerRepository    = (*answerRepo)(nil)
	_ ports.ValueRepository     = (*valueRepo)(nil)
)

func (s *Store) Languages() ports.LanguageRepository   { return &languageRepo{s} }
func (s *Store) Parameters() ports.ParameterRepository { return &parameterRepo{s} }
func (s *Store) Questions() ports.QuestionRepository   { return &questionRepo{s} }
func (s *Store) Answers() ports.AnswerRepository       { return &answerRepo{s} }
func (s *Store) Values() ports.ValueRepository         { return &valueRepo{s} }

// --- LanguageRepository ---

type languageRepo struct{ s *Store }

func (r *languageRepo) Get(ctx context.Context, id string) (*survey.Language, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.languages[id]
	if !ok {
		return nil, core.ErrLanguageNotFound
	}
	return &l, nil
}

func (r *languageRepo) List(ctx context.Context) ([]survey.Language, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]survey.Language, 0, len(r.s.languages))
	for _, l := range r.s.languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *languageRepo) Upsert(ctx context.Context, lang *survey.Language) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.languages[lang.ID] = *lang
	return nil
}

func (r *languageRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.languages, id)
	delete(r.s.answers, id)
	delete(r.s.raw, id)
	delete(r.s.evals, id)
	return nil
}

// --- ParameterRepository ---

type parameterRepo struct{ s *Store }

func (r *parameterRepo) Get(ctx context.Context, id string) (*survey.ParameterDef, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.parameters[id]
	if !ok {
		return nil, core.ErrParameterNotFound
	}
	return &p, nil
}

func (r *parameterRepo) List(ctx context.Context) ([]survey.ParameterDef, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]survey.ParameterDef, 0, len(r.s.parameters))
	for _, p := range r.s.parameters {
		out = append(out, p)
	}
	sortParams(out)
	return out, nil
}

func (r *parameterRepo) ListActive(ctx context.Context) ([]survey.ParameterDef, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]survey.ParameterDef, 0, len(r.s.parameters))
	for _, p := range r.s.parameters {
		if p.Active {
			out = append(out, p)
		}
	}
	sortParams(out)
	return out, nil
}

func (r *parameterRepo) Upsert(ctx context.Context, p *survey.ParameterDef) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.parameters[p.ID] = *p
	return nil
}

func sortParams(ps []survey.ParameterDef) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Position != ps[j].Position {
			return ps[i].Position < ps[j].Position
		}
		return ps[i].ID < ps[j].ID
	})
}

// --- QuestionRepository ---

type questionRepo struct{ s *Store }

func (r *questionRepo) Get(ctx context.Context, id string) (*survey.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q, ok := r.s.questions[id]
	if !ok {
		return nil, core.ErrQuestionNotFound
	}
	return &q, nil
}

func (r *questionRepo) ListByParameter(ctx context.Context, parameterID string) ([]survey.Question, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []survey.Question
	for _, q := range r.s.questions {
		if q.ParameterID == parameterID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *questionRepo) Upsert(ctx context.Context, q *survey.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.questions[q.ID]; ok && existing.ParameterID != q.ParameterID {
		return core.ErrQuestionRelink
	}
	r.s.questions[q.ID] = *q
	return nil
}

// --- AnswerRepository ---

type answerRepo struct{ s *Store }

func (r *answerRepo) ListByLanguage(ctx context.Context, languageID string) ([]survey.Answer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []survey.Answer
	for _, a := range r.s.answers[languageID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r *answerRepo) ListByLanguageQuestions(ctx context.Context, languageID string, questionIDs []string) ([]survey.Answer, error) {
	wanted := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = true
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []survey.Answer
	for _, a := range r.s.answers[languageID] {
		if wanted[a.QuestionID] {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r *answerRepo) Upsert(ctx context.Context, a *survey.Answer) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.answers[a.LanguageID]; !ok {
		r.s.answers[a.LanguageID] = make(map[string]survey.Answer)
	}
	r.s.answers[a.LanguageID][a.QuestionID] = *a
	return nil
}

func (r *answerRepo) Delete(ctx context.Context, languageID, questionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.answers[languageID], questionID)
	return nil
}

// --- ValueRepository ---

type valueRepo struct{ s *Store }

func (s *Store) languageLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if _, ok := s.langLocks[id]; !ok {
		s.langLocks[id] = &sync.Mutex{}
	}
	return s.langLocks[id]
}

func (r *valueRepo) RunExclusive(ctx context.Context, languageID string, fn func(ctx context.Context, tx ports.ValueTx) error) error {
	lock := r.s.languageLock(languageID)
	lock.Lock()
	defer lock.Unlock()

	r.s.mu.RLock()
	_, exists := r.s.languages[languageID]
	r.s.mu.RUnlock()
	if !exists {
		return core.ErrLanguageNotFound
	}

	tx := &valueTx{store: r.s, languageID: languageID}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (r *valueRepo) RawValues(ctx context.Context, languageID string) (map[string]survey.LanguageParameter, error) {
	return r.s.rawValues(languageID), nil
}

func (r *valueRepo) Evals(ctx context.Context, languageID string) (map[string]survey.LanguageParameterEval, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]survey.LanguageParameterEval, len(r.s.evals[languageID]))
	for pid, e := range r.s.evals[languageID] {
		out[pid] = e
	}
	return out, nil
}

func (s *Store) rawValues(languageID string) map[string]survey.LanguageParameter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]survey.LanguageParameter, len(s.raw[languageID]))
	for pid, lp := range s.raw[languageID] {
		out[pid] = lp
	}
	return out
}

// valueTx stages writes and applies them in one step so readers never
// see a half-written value set.
type valueTx struct {
	store      *Store
	languageID string
	rawWrites  []survey.LanguageParameter
	evalRows   []survey.LanguageParameterEval
	replace    bool
}

func (t *valueTx) RawValues(ctx context.Context) (map[string]survey.LanguageParameter, error) {
	return t.store.rawValues(t.languageID), nil
}

func (t *valueTx) UpsertRaw(ctx context.Context, lp survey.LanguageParameter) error {
	t.rawWrites = append(t.rawWrites, lp)
	return nil
}

func (t *valueTx) ReplaceEvals(ctx context.Context, evals []survey.LanguageParameterEval) error {
	t.evalRows = append([]survey.LanguageParameterEval(nil), evals...)
	t.replace = true
	return nil
}

func (t *valueTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, lp := range t.rawWrites {
		if _, ok := t.store.raw[t.languageID]; !ok {
			t.store.raw[t.languageID] = make(map[string]survey.LanguageParameter)
		}
		t.store.raw[t.languageID][lp.ParameterID] = lp
	}
	if t.replace {
		rows := make(map[string]survey.LanguageParameterEval, len(t.evalRows))
		for _, e := range t.evalRows {
			rows[e.ParameterID] = e
		}
		t.store.evals[t.languageID] = rows
	}
}
