// Package reconcile merges normalized records into the planner store
// without creating duplicates, so a sync can be repeated safely.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/normalize"
)

// Store is the CRUD surface the engine writes through.
type Store interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	SaveSubject(ctx context.Context, s *models.Subject) error
	ListExams(ctx context.Context) ([]models.Exam, error)
	SaveExam(ctx context.Context, e *models.Exam) error
	ListHomework(ctx context.Context) ([]models.Homework, error)
	SaveHomework(ctx context.Context, h *models.Homework) error
	SaveTopic(ctx context.Context, t *models.Topic) error
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	SaveLesson(ctx context.Context, l *models.Lesson) error
}

// Batch is one set of normalized records from a single source.
type Batch struct {
	Source      string
	Assignments []models.NormalizedAssignment
	Grades      []models.NormalizedGrade
	Lessons     []models.NormalizedLesson
	// Warnings from earlier stages are carried into the result.
	Warnings []string
}

// BatchFrom wraps a normalizer outcome.
func BatchFrom(source string, o normalize.Outcome) Batch {
	return Batch{
		Source:      source,
		Assignments: o.Assignments,
		Grades:      o.Grades,
		Lessons:     o.Lessons,
		Warnings:    o.Warnings,
	}
}

// Engine serializes reconciliations: the duplicate check reads the same
// store the inserts write to.
type Engine struct {
	store Store
	log   logging.Logger
	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

func New(store Store, log logging.Logger) *Engine {
	return &Engine{store: store, log: log, now: time.Now, newID: uuid.NewString}
}

// run holds the working set of one reconciliation.
type run struct {
	*Engine
	batch    Batch
	result   models.SyncResult
	subjects map[string]*models.Subject
	exams    []models.Exam
	homework []models.Homework
	lessons  []models.Lesson
	touched  map[string]bool
}

// Reconcile inserts what is new in b. On a store error it stops and
// returns the partial counts with Success=false.
func (e *Engine) Reconcile(ctx context.Context, b Batch) (models.SyncResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := &run{
		Engine:   e,
		batch:    b,
		subjects: map[string]*models.Subject{},
		touched:  map[string]bool{},
	}
	r.result.Warnings = append(r.result.Warnings, b.Warnings...)

	if err := r.load(ctx); err != nil {
		return r.fail(err)
	}
	for _, a := range b.Assignments {
		if err := r.assignment(ctx, a); err != nil {
			return r.fail(err)
		}
	}
	for _, g := range b.Grades {
		if err := r.grade(ctx, g); err != nil {
			return r.fail(err)
		}
	}
	for _, l := range b.Lessons {
		if err := r.lesson(ctx, l); err != nil {
			return r.fail(err)
		}
	}

	r.result.SubjectsUpdated = len(r.touched)
	r.result.Success = true
	e.log.Info(ctx, "reconciled", "source", b.Source,
		"exams", r.result.ExamsAdded, "homework", r.result.HomeworkAdded,
		"grades", r.result.GradesAdded, "lessons", r.result.LessonsAdded,
		"subjects", r.result.SubjectsUpdated)
	return r.result, nil
}

func (r *run) fail(err error) (models.SyncResult, error) {
	r.result.SubjectsUpdated = len(r.touched)
	r.result.Success = false
	r.result.Error = err.Error()
	return r.result, err
}

func (r *run) load(ctx context.Context) error {
	subjects, err := r.store.ListSubjects(ctx)
	if err != nil {
		return fmt.Errorf("load subjects: %w", err)
	}
	for i := range subjects {
		s := subjects[i]
		r.subjects[strings.ToLower(s.Name)] = &s
	}
	if r.exams, err = r.store.ListExams(ctx); err != nil {
		return fmt.Errorf("load exams: %w", err)
	}
	if r.homework, err = r.store.ListHomework(ctx); err != nil {
		return fmt.Errorf("load homework: %w", err)
	}
	if r.lessons, err = r.store.ListLessons(ctx); err != nil {
		return fmt.Errorf("load lessons: %w", err)
	}
	return nil
}

// subject finds name case-insensitively or creates it.
func (r *run) subject(ctx context.Context, name string) (*models.Subject, error) {
	key := strings.ToLower(name)
	if s, ok := r.subjects[key]; ok {
		return s, nil
	}

	s := &models.Subject{
		ID:        r.newID(),
		Name:      name,
		Color:     Color(name),
		CreatedAt: r.now(),
	}
	if err := r.store.SaveSubject(ctx, s); err != nil {
		return nil, fmt.Errorf("create subject %s: %w", name, err)
	}
	r.subjects[key] = s
	r.touched[key] = true
	return s, nil
}

func (r *run) assignment(ctx context.Context, a models.NormalizedAssignment) error {
	subj, err := r.subject(ctx, a.Subject)
	if err != nil {
		return err
	}

	if a.Type == models.AssignmentTest {
		for _, e := range r.exams {
			if IsDuplicate(e.Subject, e.Date, e.Description, subj.Name, a.Date, a.Description) {
				r.log.Debug(ctx, "duplicate exam skipped", "subject", subj.Name, "date", a.Date)
				return nil
			}
		}
		exam := models.Exam{
			ID:          r.newID(),
			Subject:     subj.Name,
			Date:        a.Date,
			Kind:        a.TestKind,
			Description: a.Description,
			Topics:      a.Topics,
			Source:      r.batch.Source,
			CreatedAt:   r.now(),
		}
		if err := r.store.SaveExam(ctx, &exam); err != nil {
			return err
		}
		r.exams = append(r.exams, exam)
		r.result.ExamsAdded++
	} else {
		for _, h := range r.homework {
			if IsDuplicate(h.Subject, h.Date, h.Description, subj.Name, a.Date, a.Description) {
				r.log.Debug(ctx, "duplicate homework skipped", "subject", subj.Name, "date", a.Date)
				return nil
			}
		}
		hw := models.Homework{
			ID:          r.newID(),
			Subject:     subj.Name,
			Date:        a.Date,
			Description: a.Description,
			Source:      r.batch.Source,
			CreatedAt:   r.now(),
		}
		if err := r.store.SaveHomework(ctx, &hw); err != nil {
			return err
		}
		r.homework = append(r.homework, hw)
		r.result.HomeworkAdded++
	}

	for _, title := range a.Topics {
		t := models.Topic{
			ID:          r.newID(),
			SubjectName: subj.Name,
			Title:       title,
			Source:      r.batch.Source,
			CreatedAt:   r.now(),
		}
		if err := r.store.SaveTopic(ctx, &t); err != nil {
			return err
		}
		r.result.TopicsAdded++
	}
	return nil
}

func (r *run) grade(ctx context.Context, g models.NormalizedGrade) error {
	grade := normalize.CleanGrade(g.Grade)
	if !normalize.ValidGrade(grade) {
		r.result.Warnings = append(r.result.Warnings, fmt.Sprintf("invalid grade %q for %s skipped", g.Grade, g.Subject))
		r.log.Warn(ctx, "invalid grade skipped", "subject", g.Subject, "grade", g.Grade)
		return nil
	}

	subj, err := r.subject(ctx, g.Subject)
	if err != nil {
		return err
	}
	if subj.HasGrade(grade) {
		return nil
	}

	subj.ExamGrades = append(subj.ExamGrades, grade)
	if err := r.store.SaveSubject(ctx, subj); err != nil {
		subj.ExamGrades = subj.ExamGrades[:len(subj.ExamGrades)-1]
		return fmt.Errorf("save grade for %s: %w", subj.Name, err)
	}
	r.result.GradesAdded++
	r.touched[strings.ToLower(subj.Name)] = true
	return nil
}

func (r *run) lesson(ctx context.Context, l models.NormalizedLesson) error {
	subj, err := r.subject(ctx, l.Subject)
	if err != nil {
		return err
	}
	for _, s := range r.lessons {
		if IsDuplicate(s.Subject, s.Date, s.Description, subj.Name, l.Date, l.Description) {
			return nil
		}
	}

	lesson := models.Lesson{
		ID:          r.newID(),
		Subject:     subj.Name,
		Date:        l.Date,
		Description: l.Description,
		Teacher:     l.Teacher,
		CreatedAt:   r.now(),
	}
	if err := r.store.SaveLesson(ctx, &lesson); err != nil {
		return err
	}
	r.lessons = append(r.lessons, lesson)
	r.result.LessonsAdded++
	return nil
}
