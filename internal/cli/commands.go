package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/common"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/parser"
	"github.com/dmitrijs2005/agendasync/internal/validatex"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errUsage = errors.New("usage")

func (a *App) Login(ctx context.Context, _ []string) error {
	username, err := getSimpleText(a.reader, "Portal username", a.out)
	if err != nil {
		return err
	}
	if username == "" {
		return errors.New("username is required")
	}

	password, err := getPassword("Portal password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	school, err := getSimpleText(a.reader, "School code (empty if none)", a.out)
	if err != nil {
		return err
	}

	creds := models.Credentials{Username: username, Password: string(password), SchoolCode: school}
	if !a.sessions.Login(ctx, creds) {
		return common.ErrAuthenticationFailed
	}
	a.printf("Logged in as %s\n", username)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	err := a.sessions.Logout(ctx)
	a.printf("Logged out\n")
	return err
}

func (a *App) Status(ctx context.Context, _ []string) error {
	a.printf("Session:  %s", a.sessions.State())
	if s := a.sessions.Session(); s != nil {
		a.printf(" as %s until %s", s.UserID, s.ExpiresAt.Local().Format(time.DateTime))
	}
	a.printf("\n")

	sched, err := a.scheduler.Schedule(ctx)
	if err != nil {
		return err
	}
	a.printf("Schedule: %s\n", describeSchedule(sched))
	if sched.LastSync != nil {
		a.printf("Last:     %s\n", sched.LastSync.Local().Format(time.DateTime))
	}
	if sched.NextSync != nil {
		a.printf("Next:     %s\n", sched.NextSync.Local().Format(time.DateTime))
	}
	if res, ok := a.scheduler.LastResult(); ok {
		a.printf("Result:   %s\n", res.Summary())
	}
	return nil
}

func describeSchedule(s models.SyncSchedule) string {
	switch {
	case !s.Enabled:
		return "off"
	case s.Frequency == models.FrequencyManual:
		return "manual"
	default:
		return fmt.Sprintf("%s at %s", s.Frequency, s.Time)
	}
}

func (a *App) Sync(ctx context.Context, _ []string) error {
	a.printf("Syncing...\n")
	res := a.scheduler.TriggerSync(ctx)
	a.printResult(res)
	if !res.Success {
		return errors.New(res.Error)
	}
	return nil
}

// Schedule shows the schedule with no args; otherwise args are a
// frequency (daily, weekly, manual, off) and an optional HH:MM.
func (a *App) Schedule(ctx context.Context, args []string) error {
	cur, err := a.scheduler.Schedule(ctx)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		a.printf("Schedule: %s\n", describeSchedule(cur))
		return nil
	}

	next := cur
	switch freq := strings.ToLower(args[0]); freq {
	case "off", "disable", "disabled":
		next.Enabled = false
	case string(models.FrequencyDaily), string(models.FrequencyWeekly), string(models.FrequencyManual):
		next.Enabled = true
		next.Frequency = models.Frequency(freq)
	default:
		return fmt.Errorf("%w: schedule [daily|weekly|manual|off] [HH:MM]", errUsage)
	}
	if len(args) > 1 {
		if !validatex.ValidHHMM(args[1]) {
			return fmt.Errorf("invalid time %q: want HH:MM", args[1])
		}
		next.Time = args[1]
	}

	if err := a.scheduler.Update(ctx, next); err != nil {
		return err
	}
	updated, err := a.scheduler.Schedule(ctx)
	if err != nil {
		return err
	}
	a.printf("Schedule: %s\n", describeSchedule(updated))
	if updated.NextSync != nil {
		a.printf("Next:     %s\n", updated.NextSync.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import <path|s3://bucket/key>", errUsage)
	}
	out, err := a.importer.PreviewFile(ctx, args[0])
	if err != nil {
		return err
	}
	return a.confirmImport(ctx, out)
}

func (a *App) Paste(ctx context.Context, args []string) error {
	hint := parser.FormatAuto
	if len(args) > 0 {
		hint = parser.ParseFormat(args[0])
	}
	text, err := GetMultiline(a.reader, "Paste agenda text, CSV or JSON", a.out)
	if err != nil {
		return err
	}
	if text == "" {
		return errors.New("nothing pasted")
	}
	return a.confirmImport(ctx, a.importer.Preview(text, hint))
}

func (a *App) confirmImport(ctx context.Context, out parser.Outcome) error {
	renderPreview(a.out, out)
	if out.Empty() {
		return errors.New("nothing to import")
	}

	ok, err := GetConfirmation(a.reader, "Import these records?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("Import cancelled\n")
		return nil
	}

	res, err := a.importer.Confirm(ctx, out)
	a.printResult(res)
	return err
}

func (a *App) printResult(res models.SyncResult) {
	a.printf("%s\n", res.Summary())
	for _, w := range res.Warnings {
		a.printf("  warning: %s\n", w)
	}
}

func (a *App) Subjects(ctx context.Context, _ []string) error {
	subjects, err := a.planner.ListSubjects(ctx)
	if err != nil {
		return err
	}
	renderSubjects(a.out, subjects)
	return nil
}

func (a *App) Exams(ctx context.Context, _ []string) error {
	exams, err := a.planner.ListExams(ctx)
	if err != nil {
		return err
	}
	renderExams(a.out, exams)
	return nil
}

func (a *App) Homework(ctx context.Context, _ []string) error {
	hw, err := a.planner.ListHomework(ctx)
	if err != nil {
		return err
	}
	renderHomework(a.out, hw)
	return nil
}
