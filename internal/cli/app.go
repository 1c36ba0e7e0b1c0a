package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/parser"
	"github.com/dmitrijs2005/agendasync/internal/session"
)

type Sessions interface {
	Login(ctx context.Context, creds models.Credentials) bool
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	State() session.State
	Session() *models.Session
}

type Scheduler interface {
	TriggerSync(ctx context.Context) models.SyncResult
	Schedule(ctx context.Context) (models.SyncSchedule, error)
	Update(ctx context.Context, s models.SyncSchedule) error
	LastResult() (models.SyncResult, bool)
}

type Importer interface {
	Preview(text string, hint parser.Format) parser.Outcome
	PreviewFile(ctx context.Context, uri string) (parser.Outcome, error)
	Confirm(ctx context.Context, out parser.Outcome) (models.SyncResult, error)
}

// Planner is the read side of the planner store.
type Planner interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	ListExams(ctx context.Context) ([]models.Exam, error)
	ListHomework(ctx context.Context) ([]models.Homework, error)
}

// Deps are the services the App drives.
type Deps struct {
	Sessions  Sessions
	Scheduler Scheduler
	Importer  Importer
	Planner   Planner
	Log       logging.Logger
	In        io.Reader
	Out       io.Writer
}

type App struct {
	sessions  Sessions
	scheduler Scheduler
	importer  Importer
	planner   Planner
	log       logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(d Deps) *App {
	return &App{
		sessions:  d.Sessions,
		scheduler: d.Scheduler,
		importer:  d.Importer,
		planner:   d.Planner,
		log:       d.Log,
		reader:    bufio.NewReader(d.In),
		out:       d.Out,
	}
}

// Run blocks in the REPL until exit, EOF or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "agendasync (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) status() string {
	return a.sessions.State().String()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
