package parser

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

var testNow = time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Format
	}{
		{"json object", `  {"agenda": []}`, FormatJSON},
		{"json array", `[{"materia":"Arte"}]`, FormatJSON},
		{"csv with header", "data,materia,tipo,descrizione\n15/01/2025,Matematica,Verifica,Derivate", FormatCSV},
		{"csv header only", "data,materia,tipo,descrizione", FormatCSV},
		{"three fields is text", "a,b,c\n1,2,3", FormatText},
		{"line without commas", "data,materia,tipo,descrizione\nriga libera", FormatText},
		{"free text", "15/01/2025 - Matematica - Verifica", FormatText},
		{"empty", "  \n ", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.in))
		})
	}
}

func TestFormatHints(t *testing.T) {
	assert.Equal(t, FormatCSV, ParseFormat(" CSV "))
	assert.Equal(t, FormatText, ParseFormat("txt"))
	assert.Equal(t, FormatAuto, ParseFormat("xml"))
	assert.Equal(t, FormatJSON, FormatForFile("/tmp/export.json"))
	assert.Equal(t, FormatAuto, FormatForFile("s3://bucket/agenda"))
}

func TestParse_TextEndToEnd(t *testing.T) {
	in := "15/01/2025 - Matematica - Verifica su derivate e integrali\nMatematica: 8+ (10/01/2025)"

	out := Parse(in, FormatAuto, testNow)

	assert.Equal(t, FormatText, out.Format)
	assert.Empty(t, out.Warnings)

	want := []models.NormalizedAssignment{{
		Date:        "2025-01-15",
		Subject:     "Matematica",
		Type:        models.AssignmentTest,
		TestKind:    models.TestWritten,
		Description: "Verifica su derivate e integrali",
		Topics:      []string{"derivate e integrali"},
	}}
	assert.Empty(t, cmp.Diff(want, out.Assignments))

	require.Len(t, out.Grades, 1)
	assert.Equal(t, "Matematica", out.Grades[0].Subject)
	assert.Equal(t, "8+", out.Grades[0].Grade)
	assert.Equal(t, "2025-01-10", out.Grades[0].Date)
}

func TestParse_TextShapes(t *testing.T) {
	in := `
lunedì 20 gennaio 2025 – Inglese: Test di vocabolario
Chimica - 22/01/2025 - Relazione di laboratorio
23.01.2025 — Storia — Leggere pp. 10-12
ciao a tutti
Storia: abc (10/01/2025)
`
	out := Parse(in, FormatText, testNow)

	require.Len(t, out.Assignments, 3)

	assert.Equal(t, "2025-01-20", out.Assignments[0].Date)
	assert.Equal(t, "Inglese", out.Assignments[0].Subject)
	assert.Equal(t, models.AssignmentTest, out.Assignments[0].Type)

	assert.Equal(t, "2025-01-22", out.Assignments[1].Date)
	assert.Equal(t, "Chimica", out.Assignments[1].Subject)
	assert.Equal(t, models.AssignmentHomework, out.Assignments[1].Type)

	assert.Equal(t, "Storia", out.Assignments[2].Subject)
	assert.Equal(t, "Leggere pp. 10-12", out.Assignments[2].Description)

	assert.Empty(t, out.Grades)
	require.Len(t, out.Warnings, 2)
	assert.Contains(t, out.Warnings[0], "line 5 not recognised")
	assert.Contains(t, out.Warnings[1], `invalid grade "abc"`)
}

func TestParse_CSV(t *testing.T) {
	in := "data,materia,tipo,descrizione,argomenti\n" +
		"15/01/2025,Matematica,Verifica,Compito su derivate,derivate;integrali\n" +
		"16/01/2025,Italiano,Compiti,Esercizi pag. 45,\n" +
		"10/01/2025,Matematica,Voto,7+,\n" +
		"11/01/2025,Storia\n"

	out := Parse(in, FormatAuto, testNow)
	assert.Equal(t, FormatCSV, out.Format)

	want := []models.NormalizedAssignment{
		{Date: "2025-01-15", Subject: "Matematica", Type: models.AssignmentTest, TestKind: models.TestWritten,
			Description: "Compito su derivate", Topics: []string{"derivate", "integrali"}},
		{Date: "2025-01-16", Subject: "Italiano", Type: models.AssignmentHomework,
			Description: "Esercizi pag. 45", Topics: []string{"Esercizi pag. 45"}},
	}
	assert.Empty(t, cmp.Diff(want, out.Assignments))

	require.Len(t, out.Grades, 1)
	assert.Equal(t, models.NormalizedGrade{Date: "2025-01-10", Subject: "Matematica", Grade: "7+", Type: "Voto"}, out.Grades[0])

	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "expected at least 4 fields")
}

func TestParse_JSONObject(t *testing.T) {
	in := `{
  "agenda": [{"materia": "Storia", "data": "20/01/2025", "descrizione": "Interrogazione sul Risorgimento", "argomenti": ["Cavour", "Garibaldi"]}],
  "voti": [{"materia": "Inglese", "data": "12/01/2025", "voto": 7, "tipo": "Orale"}],
  "lezioni": [{"materia": "Fisica", "data": "09/01/2025", "descrizione": "Moto rettilineo", "docente": "Rossi"}]
}`
	out := Parse(in, FormatAuto, testNow)

	assert.Equal(t, FormatJSON, out.Format)
	assert.Empty(t, out.Warnings)

	require.Len(t, out.Assignments, 1)
	a := out.Assignments[0]
	assert.Equal(t, models.AssignmentTest, a.Type)
	assert.Equal(t, models.TestOral, a.TestKind)
	assert.Equal(t, []string{"Cavour", "Garibaldi"}, a.Topics)

	require.Len(t, out.Grades, 1)
	assert.Equal(t, "7", out.Grades[0].Grade)
	assert.Equal(t, "Orale", out.Grades[0].Type)

	require.Len(t, out.Lessons, 1)
	assert.Equal(t, models.NormalizedLesson{Date: "2025-01-09", Subject: "Fisica", Description: "Moto rettilineo", Teacher: "Rossi"}, out.Lessons[0])
}

func TestParse_JSONArray(t *testing.T) {
	in := `[{"subject":"Arte","date":"2025-02-01","description":"Disegno prospettico"},{"subject":"Arte","date":"2025-01-30","grade":"8"},3]`

	out := Parse(in, FormatAuto, testNow)

	require.Len(t, out.Assignments, 1)
	assert.Equal(t, "2025-02-01", out.Assignments[0].Date)
	require.Len(t, out.Grades, 1)
	assert.Equal(t, "8", out.Grades[0].Grade)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "element 2")
}

func TestParse_MalformedJSON(t *testing.T) {
	out := Parse(`{"agenda": [`, FormatAuto, testNow)

	assert.True(t, out.Empty())
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "invalid JSON")
}

func TestParseRaw_TagsSource(t *testing.T) {
	raw := ParseRaw("Matematica: 8 (10/01/2025)", FormatAuto)

	require.Len(t, raw.Records, 1)
	assert.Equal(t, "import:text", raw.Records[0].Get(models.ExtraSource))
}
