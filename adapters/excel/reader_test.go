package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gotypo/adapters/memory"
	"gotypo/domain/survey"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReadCSVSeedDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "languages.csv",
		"id,name,position,group\nita,Italian,1,Romance\ndeu,German,2,Germanic\n")
	writeCSV(t, dir, "parameters.csv",
		"id,name,condition,active,position\nfgm,Gender marking,,1,1\nfgk,Gender on kin terms,+FGM,1,2\nold,Retired,,0,3\n")
	writeCSV(t, dir, "questions.csv",
		"id,parameter,text,stop\nq1,fgm,Does the language mark gender?,\nq2,fgm,Is the category absent?,1\n")
	writeCSV(t, dir, "answers.csv",
		"language,question,response,status\nita,q1,Yes,approved\ndeu,q1,no,pending\n")

	seed, err := NewSeedReader(dir).Read()
	require.NoError(t, err)

	require.Len(t, seed.Languages, 2)
	assert.Equal(t, "ita", seed.Languages[0].ID)
	assert.Equal(t, "Romance", seed.Languages[0].Group)

	require.Len(t, seed.Parameters, 3)
	assert.Equal(t, "FGM", seed.Parameters[0].ID) // ids normalize to uppercase
	assert.Equal(t, "+FGM", seed.Parameters[1].Condition)
	assert.False(t, seed.Parameters[2].Active)

	require.Len(t, seed.Questions, 2)
	assert.Equal(t, "FGM", seed.Questions[0].ParameterID)
	assert.False(t, seed.Questions[0].StopQuestion)
	assert.True(t, seed.Questions[1].StopQuestion)

	require.Len(t, seed.Answers, 2)
	assert.True(t, seed.Answers[0].Response.IsYes())
	assert.Equal(t, survey.StatusApproved, seed.Answers[0].Status)
	assert.False(t, seed.Answers[0].Modifiable)
	assert.True(t, seed.Answers[1].Modifiable) // pending stays editable
}

func TestReadCSVSeedAnswersOptional(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "languages.csv", "id,name\nita,Italian\n")
	writeCSV(t, dir, "parameters.csv", "id,name\nfgm,Gender marking\n")
	writeCSV(t, dir, "questions.csv", "id,parameter,text\nq1,fgm,Q?\n")

	seed, err := NewSeedReader(dir).Read()
	require.NoError(t, err)
	assert.Empty(t, seed.Answers)
}

func TestReadCSVSeedRejectsInvalidAnswer(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "languages.csv", "id,name\nita,Italian\n")
	writeCSV(t, dir, "parameters.csv", "id,name\nfgm,Gender marking\n")
	writeCSV(t, dir, "questions.csv", "id,parameter,text\nq1,fgm,Q?\n")
	writeCSV(t, dir, "answers.csv", "language,question,response\nita,q1,maybe\n")

	_, err := NewSeedReader(dir).Read()
	assert.Error(t, err)
}

func TestReadWorkbookSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.xlsx")

	f := excelize.NewFile()
	sheets := map[string][][]string{
		"languages":  {{"id", "name", "position"}, {"ita", "Italian", "1"}},
		"parameters": {{"id", "name", "condition"}, {"FGM", "Gender marking", ""}, {"FGK", "Kin terms", "+FGM"}},
		"questions":  {{"id", "parameter", "text", "stop"}, {"q1", "FGM", "Q?", ""}},
		"answers":    {{"language", "question", "response", "status"}, {"ita", "q1", "yes", "approved"}},
	}
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	seed, err := NewSeedReader(path).Read()
	require.NoError(t, err)
	require.Len(t, seed.Languages, 1)
	require.Len(t, seed.Parameters, 2)
	assert.Equal(t, "+FGM", seed.Parameters[1].Condition)
	require.Len(t, seed.Answers, 1)
}

func TestLoaderRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeCSV(t, dir, "languages.csv", "id,name\nita,Italian\n")
	writeCSV(t, dir, "parameters.csv", "id,name\nfgm,Gender marking\n")
	writeCSV(t, dir, "questions.csv", "id,parameter,text\nq1,fgm,Q?\n")
	writeCSV(t, dir, "answers.csv", "language,question,response,status\nita,q1,yes,approved\n")

	seed, err := NewSeedReader(dir).Read()
	require.NoError(t, err)

	store := memory.NewStore()
	loader := NewLoader(store.Languages(), store.Parameters(), store.Questions(), store.Answers())
	require.NoError(t, loader.Load(ctx, seed))

	langs, err := store.Languages().List(ctx)
	require.NoError(t, err)
	require.Len(t, langs, 1)

	answers, err := store.Answers().ListByLanguage(ctx, "ita")
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "q1", answers[0].QuestionID)
}
