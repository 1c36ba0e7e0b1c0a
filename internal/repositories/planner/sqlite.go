package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/dbx"
	"github.com/dmitrijs2005/agendasync/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, exam_grades, created_at
		FROM subjects ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to select subjects: %w", err)
	}
	defer rows.Close()

	var result []models.Subject
	for rows.Next() {
		var (
			s             models.Subject
			grades, stamp string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Color, &grades, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		if err := json.Unmarshal([]byte(grades), &s.ExamGrades); err != nil {
			return nil, fmt.Errorf("failed to decode grades of %s: %w", s.Name, err)
		}
		s.CreatedAt = parseTime(stamp)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subjects: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) SaveSubject(ctx context.Context, s *models.Subject) error {
	grades, err := encodeList(s.ExamGrades)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO subjects (id, name, color, exam_grades, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			exam_grades = excluded.exam_grades
	`, s.ID, s.Name, s.Color, grades, formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save subject %s: %w", s.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) ListExams(ctx context.Context) ([]models.Exam, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject, date, kind, description, topics, source, created_at
		FROM exams ORDER BY date, subject`)
	if err != nil {
		return nil, fmt.Errorf("failed to select exams: %w", err)
	}
	defer rows.Close()

	var result []models.Exam
	for rows.Next() {
		var (
			e             models.Exam
			kind          string
			topics, stamp string
		)
		if err := rows.Scan(&e.ID, &e.Subject, &e.Date, &kind, &e.Description, &topics, &e.Source, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan exam: %w", err)
		}
		if err := json.Unmarshal([]byte(topics), &e.Topics); err != nil {
			return nil, fmt.Errorf("failed to decode topics of exam %s: %w", e.ID, err)
		}
		e.Kind = models.TestKind(kind)
		e.CreatedAt = parseTime(stamp)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exams: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) SaveExam(ctx context.Context, e *models.Exam) error {
	topics, err := encodeList(e.Topics)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO exams (id, subject, date, kind, description, topics, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject = excluded.subject,
			date = excluded.date,
			kind = excluded.kind,
			description = excluded.description,
			topics = excluded.topics,
			source = excluded.source
	`, e.ID, e.Subject, e.Date, string(e.Kind), e.Description, topics, e.Source, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save exam: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListHomework(ctx context.Context) ([]models.Homework, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject, date, description, done, source, created_at
		FROM homework ORDER BY date, subject`)
	if err != nil {
		return nil, fmt.Errorf("failed to select homework: %w", err)
	}
	defer rows.Close()

	var result []models.Homework
	for rows.Next() {
		var (
			h     models.Homework
			stamp string
		)
		if err := rows.Scan(&h.ID, &h.Subject, &h.Date, &h.Description, &h.Done, &h.Source, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan homework: %w", err)
		}
		h.CreatedAt = parseTime(stamp)
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate homework: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) SaveHomework(ctx context.Context, h *models.Homework) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO homework (id, subject, date, description, done, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject = excluded.subject,
			date = excluded.date,
			description = excluded.description,
			done = excluded.done,
			source = excluded.source
	`, h.ID, h.Subject, h.Date, h.Description, h.Done, h.Source, formatTime(h.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save homework: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListTopics(ctx context.Context) ([]models.Topic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject_name, title, source, created_at
		FROM topics ORDER BY subject_name, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to select topics: %w", err)
	}
	defer rows.Close()

	var result []models.Topic
	for rows.Next() {
		var (
			t     models.Topic
			stamp string
		)
		if err := rows.Scan(&t.ID, &t.SubjectName, &t.Title, &t.Source, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		t.CreatedAt = parseTime(stamp)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate topics: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) SaveTopic(ctx context.Context, t *models.Topic) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO topics (id, subject_name, title, source, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_name = excluded.subject_name,
			title = excluded.title,
			source = excluded.source
	`, t.ID, t.SubjectName, t.Title, t.Source, formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save topic: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject, date, description, teacher, created_at
		FROM lessons ORDER BY date, subject`)
	if err != nil {
		return nil, fmt.Errorf("failed to select lessons: %w", err)
	}
	defer rows.Close()

	var result []models.Lesson
	for rows.Next() {
		var (
			l     models.Lesson
			stamp string
		)
		if err := rows.Scan(&l.ID, &l.Subject, &l.Date, &l.Description, &l.Teacher, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		l.CreatedAt = parseTime(stamp)
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lessons: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) SaveLesson(ctx context.Context, l *models.Lesson) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lessons (id, subject, date, description, teacher, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject = excluded.subject,
			date = excluded.date,
			description = excluded.description,
			teacher = excluded.teacher
	`, l.ID, l.Subject, l.Date, l.Description, l.Teacher, formatTime(l.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save lesson: %w", err)
	}
	return nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
