package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

// DefaultSubject is used for records whose subject could not be extracted.
const DefaultSubject = "Generale"

// Outcome is the typed result of normalizing a batch of raw records.
// Warnings list every record that was dropped or patched up.
type Outcome struct {
	Assignments []models.NormalizedAssignment `json:"assignments"`
	Grades      []models.NormalizedGrade      `json:"grades"`
	Lessons     []models.NormalizedLesson     `json:"lessons"`
	Warnings    []string                      `json:"warnings,omitempty"`
}

// Empty reports whether nothing usable came out.
func (o Outcome) Empty() bool {
	return len(o.Assignments) == 0 && len(o.Grades) == 0 && len(o.Lessons) == 0
}

// Warnf records a warning.
func (o *Outcome) Warnf(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// Merge appends other into o.
func (o *Outcome) Merge(other Outcome) {
	o.Assignments = append(o.Assignments, other.Assignments...)
	o.Grades = append(o.Grades, other.Grades...)
	o.Lessons = append(o.Lessons, other.Lessons...)
	o.Warnings = append(o.Warnings, other.Warnings...)
}

// Records is the one normalization path shared by manual import and the
// portal scraper. A bad record never stops the batch: it is skipped or
// repaired and a warning is added.
func Records(raws []models.RawRecord, now time.Time) Outcome {
	var out Outcome
	for _, r := range raws {
		out.add(r, now)
	}
	return out
}

func (o *Outcome) add(r models.RawRecord, now time.Time) {
	subject := CleanText(r.Subject)
	if subject == "" {
		subject = DefaultSubject
	}
	description := CleanText(r.Description)

	date, ok := Date(r.Date, now)
	if !ok {
		o.Warnf("unrecognised date %q for %s, using %s", r.Date, subject, date)
	}

	switch r.Kind {
	case models.KindGrade:
		grade := CleanGrade(r.Get(models.ExtraGrade))
		if !ValidGrade(grade) {
			o.Warnf("invalid grade %q for %s on %s, skipped", r.Get(models.ExtraGrade), subject, date)
			return
		}
		gradeType := CleanText(r.Get(models.ExtraType))
		if gradeType == "" {
			gradeType = "grade"
		}
		o.Grades = append(o.Grades, models.NormalizedGrade{
			Date:        date,
			Subject:     subject,
			Grade:       grade,
			Type:        gradeType,
			Description: description,
		})

	case models.KindLesson:
		if description == "" {
			o.Warnf("lesson for %s on %s has no description, skipped", subject, date)
			return
		}
		o.Lessons = append(o.Lessons, models.NormalizedLesson{
			Date:        date,
			Subject:     subject,
			Description: description,
			Teacher:     CleanText(r.Get(models.ExtraTeacher)),
		})

	default:
		if description == "" {
			o.Warnf("assignment for %s on %s has no description, skipped", subject, date)
			return
		}
		o.Assignments = append(o.Assignments, assignment(r, subject, date, description))
	}
}

func assignment(r models.RawRecord, subject, date, description string) models.NormalizedAssignment {
	hint := strings.TrimSpace(r.Get(models.ExtraType) + " " + description)

	a := models.NormalizedAssignment{
		Date:        date,
		Subject:     subject,
		Description: description,
	}

	switch r.Kind {
	case models.KindTest:
		a.Type, a.TestKind = models.AssignmentTest, TestKindOf(hint)
	case models.KindHomework:
		a.Type = models.AssignmentHomework
	default:
		a.Type, a.TestKind = ClassifyAssignment(hint)
	}

	if explicit := SplitList(r.Get(models.ExtraTopics)); len(explicit) > 0 {
		a.Topics = explicit
	} else {
		a.Topics = Topics(description)
	}
	return a
}
