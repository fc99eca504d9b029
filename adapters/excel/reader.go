// Package excel reads survey seed data from an Excel workbook or a
// directory of CSV tables and loads it through the repository ports.
// The tables are languages, parameters, questions and answers; columns
// are matched by header name, case-insensitively.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gotypo/domain/survey"
	"gotypo/internal/errors"
)

// Seed is the full parsed content of a survey seed file.
type Seed struct {
	Languages  []survey.Language
	Parameters []survey.ParameterDef
	Questions  []survey.Question
	Answers    []survey.Answer
}

// Table names; also the sheet names in a workbook and the CSV base
// names in a seed directory.
const (
	tableLanguages  = "languages"
	tableParameters = "parameters"
	tableQuestions  = "questions"
	tableAnswers    = "answers"
)

// SeedReader reads seed tables from one .xlsx workbook or a directory
// holding languages.csv, parameters.csv, questions.csv, answers.csv.
type SeedReader struct {
	path string
}

// NewSeedReader creates a reader for the given workbook or directory
func NewSeedReader(path string) *SeedReader {
	return &SeedReader{path: path}
}

// Read parses all seed tables. The answers table is optional; the
// other three are required.
func (r *SeedReader) Read() (*Seed, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return nil, errors.ImportError(fmt.Sprintf("seed source %s not readable", r.path), err)
	}

	var tables map[string][][]string
	if info.IsDir() {
		tables, err = r.readCSVDir()
	} else {
		tables, err = r.readWorkbook()
	}
	if err != nil {
		return nil, err
	}

	seed := &Seed{}
	if seed.Languages, err = parseLanguages(tables[tableLanguages]); err != nil {
		return nil, err
	}
	if seed.Parameters, err = parseParameters(tables[tableParameters]); err != nil {
		return nil, err
	}
	if seed.Questions, err = parseQuestions(tables[tableQuestions]); err != nil {
		return nil, err
	}
	if rows := tables[tableAnswers]; len(rows) > 0 {
		if seed.Answers, err = parseAnswers(rows); err != nil {
			return nil, err
		}
	}
	return seed, nil
}

func (r *SeedReader) readWorkbook() (map[string][][]string, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, errors.ImportError("failed to open seed workbook", err)
	}
	defer f.Close()

	tables := make(map[string][][]string, 4)
	for _, name := range []string{tableLanguages, tableParameters, tableQuestions, tableAnswers} {
		sheet := matchSheet(f.GetSheetList(), name)
		if sheet == "" {
			if name == tableAnswers {
				continue
			}
			return nil, errors.ImportError(fmt.Sprintf("workbook has no %s sheet", name), nil)
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.ImportError(fmt.Sprintf("failed to read sheet %s", sheet), err)
		}
		tables[name] = rows
	}
	return tables, nil
}

func matchSheet(sheets []string, name string) string {
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return s
		}
	}
	return ""
}

func (r *SeedReader) readCSVDir() (map[string][][]string, error) {
	tables := make(map[string][][]string, 4)
	for _, name := range []string{tableLanguages, tableParameters, tableQuestions, tableAnswers} {
		path := filepath.Join(r.path, name+".csv")
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			if name == tableAnswers {
				continue
			}
			return nil, errors.ImportError(fmt.Sprintf("seed directory has no %s.csv", name), nil)
		}
		if err != nil {
			return nil, errors.ImportError(fmt.Sprintf("failed to open %s", path), err)
		}
		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		f.Close()
		if err != nil {
			return nil, errors.ImportError(fmt.Sprintf("failed to parse %s", path), err)
		}
		tables[name] = rows
	}
	return tables, nil
}

// header maps column names to indices, case-insensitively.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, c := range row {
		h[strings.ToLower(strings.TrimSpace(c))] = i
	}
	return h
}

func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) getBool(row []string, col string) bool {
	v := strings.ToLower(h.get(row, col))
	return v == "1" || v == "true" || v == "yes" || v == "x"
}

func (h header) getInt(row []string, col string) int {
	n, _ := strconv.Atoi(h.get(row, col))
	return n
}

func parseLanguages(rows [][]string) ([]survey.Language, error) {
	if len(rows) < 2 {
		return nil, errors.ImportError("languages table needs a header and at least one row", nil)
	}
	h := newHeader(rows[0])
	out := make([]survey.Language, 0, len(rows)-1)
	for i, row := range rows[1:] {
		id := h.get(row, "id")
		if id == "" {
			continue
		}
		lang := survey.Language{
			ID:         id,
			Name:       h.get(row, "name"),
			Position:   h.getInt(row, "position"),
			Group:      h.get(row, "group"),
			ISOCode:    h.get(row, "isocode"),
			Glottocode: h.get(row, "glottocode"),
		}
		if lang.Position == 0 {
			lang.Position = i + 1
		}
		out = append(out, lang)
	}
	return out, nil
}

func parseParameters(rows [][]string) ([]survey.ParameterDef, error) {
	if len(rows) < 2 {
		return nil, errors.ImportError("parameters table needs a header and at least one row", nil)
	}
	h := newHeader(rows[0])
	out := make([]survey.ParameterDef, 0, len(rows)-1)
	for i, row := range rows[1:] {
		id := h.get(row, "id")
		if id == "" {
			continue
		}
		p := survey.ParameterDef{
			ID:               strings.ToUpper(id),
			Name:             h.get(row, "name"),
			ShortDescription: h.get(row, "description"),
			Condition:        h.get(row, "condition"),
			Active:           true,
			Position:         h.getInt(row, "position"),
		}
		if v := h.get(row, "active"); v != "" {
			p.Active = h.getBool(row, "active")
		}
		if p.Position == 0 {
			p.Position = i + 1
		}
		out = append(out, p)
	}
	return out, nil
}

func parseQuestions(rows [][]string) ([]survey.Question, error) {
	if len(rows) < 2 {
		return nil, errors.ImportError("questions table needs a header and at least one row", nil)
	}
	h := newHeader(rows[0])
	out := make([]survey.Question, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id := h.get(row, "id")
		if id == "" {
			continue
		}
		out = append(out, survey.Question{
			ID:           id,
			ParameterID:  strings.ToUpper(h.get(row, "parameter")),
			Text:         h.get(row, "text"),
			Instruction:  h.get(row, "instruction"),
			StopQuestion: h.getBool(row, "stop"),
		})
	}
	return out, nil
}

func parseAnswers(rows [][]string) ([]survey.Answer, error) {
	if len(rows) < 2 {
		return nil, nil
	}
	h := newHeader(rows[0])
	out := make([]survey.Answer, 0, len(rows)-1)
	for i, row := range rows[1:] {
		lang := h.get(row, "language")
		question := h.get(row, "question")
		if lang == "" || question == "" {
			continue
		}
		status := survey.AnswerStatus(strings.ToLower(h.get(row, "status")))
		if status == "" {
			status = survey.StatusApproved
		}
		a := survey.Answer{
			LanguageID: lang,
			QuestionID: question,
			Response:   survey.Response(strings.ToLower(h.get(row, "response"))),
			Status:     status,
			Modifiable: status.Modifiable(),
			Comments:   h.get(row, "comments"),
		}
		if err := a.Validate(); err != nil {
			return nil, errors.ImportError(fmt.Sprintf("answers row %d invalid", i+2), err)
		}
		out = append(out, a)
	}
	return out, nil
}
