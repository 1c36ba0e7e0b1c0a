package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agendasync/internal/common"
	"github.com/dmitrijs2005/agendasync/internal/filesource"
	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/parser"
	"github.com/dmitrijs2005/agendasync/internal/reconcile"
	"github.com/dmitrijs2005/agendasync/internal/repositories"
)

const scenario = "15/01/2025 - Matematica - Verifica su derivate e integrali\nMatematica: 8+ (10/01/2025)"

var fixedNow = time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)

func newImporter(t *testing.T) (*Importer, *repositories.Repositories) {
	t.Helper()
	repos, err := repositories.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	im := New(filesource.New(filesource.Options{}), reconcile.New(repos.Planner, logging.NewNop()), logging.NewNop())
	im.now = func() time.Time { return fixedNow }
	return im, repos
}

func TestPreview_Scenario(t *testing.T) {
	im, _ := newImporter(t)

	out := im.Preview(scenario, parser.FormatAuto)
	assert.Equal(t, parser.FormatText, out.Format)

	require.Len(t, out.Assignments, 1)
	a := out.Assignments[0]
	assert.Equal(t, "Matematica", a.Subject)
	assert.Equal(t, "2025-01-15", a.Date)
	assert.Equal(t, models.AssignmentTest, a.Type)
	assert.Contains(t, a.Topics, "derivate e integrali")

	require.Len(t, out.Grades, 1)
	assert.Equal(t, "Matematica", out.Grades[0].Subject)
	assert.Equal(t, "8+", out.Grades[0].Grade)
	assert.Equal(t, "2025-01-10", out.Grades[0].Date)
}

func TestConfirm_ImportTwice(t *testing.T) {
	ctx := context.Background()
	im, repos := newImporter(t)

	first, err := im.Confirm(ctx, im.Preview(scenario, parser.FormatAuto))
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, 1, first.ExamsAdded)
	assert.Equal(t, 1, first.GradesAdded)
	assert.Equal(t, 1, first.SubjectsUpdated)

	second, err := im.Confirm(ctx, im.Preview(scenario, parser.FormatAuto))
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Zero(t, second.ExamsAdded)
	assert.Zero(t, second.GradesAdded)
	assert.Zero(t, second.TopicsAdded)
	assert.Zero(t, second.SubjectsUpdated)

	subjects, err := repos.Planner.ListSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Matematica", subjects[0].Name)
	assert.Equal(t, []string{"8+"}, subjects[0].ExamGrades)

	exams, err := repos.Planner.ListExams(ctx)
	require.NoError(t, err)
	assert.Len(t, exams, 1)
}

func TestPreviewFile_PicksFormatFromExtension(t *testing.T) {
	im, _ := newImporter(t)

	p := filepath.Join(t.TempDir(), "agenda.csv")
	csv := "data,materia,tipo,descrizione\n20/01/2025,Storia,Verifica,Rivoluzione francese\n"
	require.NoError(t, os.WriteFile(p, []byte(csv), 0o600))

	out, err := im.PreviewFile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, parser.FormatCSV, out.Format)
	require.Len(t, out.Assignments, 1)
	assert.Equal(t, "Storia", out.Assignments[0].Subject)
}

func TestPreviewFile_ReadError(t *testing.T) {
	im, _ := newImporter(t)
	_, err := im.PreviewFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfirm_Empty(t *testing.T) {
	im, _ := newImporter(t)

	res, err := im.Confirm(context.Background(), im.Preview("nothing useful here", parser.FormatAuto))
	assert.ErrorIs(t, err, ErrNothingToImport)
	assert.ErrorIs(t, err, common.ErrParse)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Warnings)
}

type failingReconciler struct{}

func (failingReconciler) Reconcile(context.Context, reconcile.Batch) (models.SyncResult, error) {
	err := errors.New("database is locked")
	return models.Failed(err), err
}

func TestConfirm_ReconcileError(t *testing.T) {
	im := New(filesource.New(filesource.Options{}), failingReconciler{}, logging.NewNop())

	res, err := im.Confirm(context.Background(), im.Preview(scenario, parser.FormatText))
	require.Error(t, err)
	assert.False(t, res.Success)
}
