package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"su keyword", "Verifica su derivate e integrali", []string{"derivate e integrali"}},
		{"argomenti list", "Compito in classe. Argomenti: limiti; derivate, integrali", []string{"limiti", "derivate", "integrali"}},
		{"capitolo", "Studiare capitolo 3 e 4", []string{"capitolo 3 e 4"}},
		{"su stops at sentence end", "Interrogazione su Dante. Portare il libro", []string{"Dante"}},
		{"short description is one topic", "Esercizi pag. 45.", []string{"Esercizi pag. 45"}},
		{"long description without keywords", "Leggere attentamente il brano assegnato e rispondere alle domande", nil},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Topics(tt.in))
		})
	}
}

func TestClassifyAssignment(t *testing.T) {
	tests := []struct {
		in       string
		wantType models.AssignmentType
		wantKind models.TestKind
	}{
		{"Verifica di matematica", models.AssignmentTest, models.TestWritten},
		{"INTERROGAZIONE di storia", models.AssignmentTest, models.TestOral},
		{"Test pratico in laboratorio", models.AssignmentTest, models.TestPractical},
		{"Esercizi pag 5", models.AssignmentHomework, ""},
	}

	for _, tt := range tests {
		gotType, gotKind := ClassifyAssignment(tt.in)
		assert.Equal(t, tt.wantType, gotType, tt.in)
		assert.Equal(t, tt.wantKind, gotKind, tt.in)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb   c "))
}

func TestValidGrade(t *testing.T) {
	for _, g := range []string{"8.5", "7+", "6,5", "10", "6-", "4.25"} {
		assert.True(t, ValidGrade(g), g)
	}
	for _, g := range []string{"abc", "11/10", "", "7++", "+7", "8 +"} {
		assert.False(t, ValidGrade(g), g)
	}
}

func TestCleanGrade(t *testing.T) {
	assert.Equal(t, "7.5", CleanGrade("7½"))
	assert.Equal(t, "7.5", CleanGrade(" 7 ½ "))
	assert.Equal(t, "8+", CleanGrade("8 +"))
}
