package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/parser"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderPreview(w io.Writer, out parser.Outcome) {
	fmt.Fprintf(w, "Detected format: %s\n", out.Format)

	if len(out.Assignments) > 0 {
		fmt.Fprintf(w, "\nAssignments (%d)\n", len(out.Assignments))
		tw := newTable(w)
		fmt.Fprintln(tw, "DATE\tSUBJECT\tTYPE\tDESCRIPTION\tTOPICS")
		for _, a := range out.Assignments {
			kind := string(a.Type)
			if a.TestKind != "" {
				kind += "/" + string(a.TestKind)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Date, a.Subject, kind, a.Description, strings.Join(a.Topics, "; "))
		}
		tw.Flush()
	}

	if len(out.Grades) > 0 {
		fmt.Fprintf(w, "\nGrades (%d)\n", len(out.Grades))
		tw := newTable(w)
		fmt.Fprintln(tw, "DATE\tSUBJECT\tGRADE\tTYPE")
		for _, g := range out.Grades {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.Date, g.Subject, g.Grade, g.Type)
		}
		tw.Flush()
	}

	if len(out.Lessons) > 0 {
		fmt.Fprintf(w, "\nLessons (%d)\n", len(out.Lessons))
		tw := newTable(w)
		fmt.Fprintln(tw, "DATE\tSUBJECT\tDESCRIPTION")
		for _, l := range out.Lessons {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Date, l.Subject, l.Description)
		}
		tw.Flush()
	}

	if len(out.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d)\n", len(out.Warnings))
		for _, msg := range out.Warnings {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
}

func renderSubjects(w io.Writer, subjects []models.Subject) {
	if len(subjects) == 0 {
		fmt.Fprintln(w, "No subjects yet")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SUBJECT\tCOLOR\tGRADES")
	for _, s := range subjects {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.Color, strings.Join(s.ExamGrades, " "))
	}
	tw.Flush()
}

func renderExams(w io.Writer, exams []models.Exam) {
	if len(exams) == 0 {
		fmt.Fprintln(w, "No exams yet")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tSUBJECT\tKIND\tDESCRIPTION")
	for _, e := range exams {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date, e.Subject, e.Kind, e.Description)
	}
	tw.Flush()
}

func renderHomework(w io.Writer, hw []models.Homework) {
	if len(hw) == 0 {
		fmt.Fprintln(w, "No homework yet")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tSUBJECT\tDONE\tDESCRIPTION")
	for _, h := range hw {
		done := ""
		if h.Done {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", h.Date, h.Subject, done, h.Description)
	}
	tw.Flush()
}
