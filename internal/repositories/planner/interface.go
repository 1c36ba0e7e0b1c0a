// Package planner persists the student's planner: subjects, exams,
// homework, topics and lessons. Saves are upserts keyed by id.
package planner

import (
	"context"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

type Repository interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	SaveSubject(ctx context.Context, s *models.Subject) error

	ListExams(ctx context.Context) ([]models.Exam, error)
	SaveExam(ctx context.Context, e *models.Exam) error

	ListHomework(ctx context.Context) ([]models.Homework, error)
	SaveHomework(ctx context.Context, h *models.Homework) error

	ListTopics(ctx context.Context) ([]models.Topic, error)
	SaveTopic(ctx context.Context, t *models.Topic) error

	ListLessons(ctx context.Context) ([]models.Lesson, error)
	SaveLesson(ctx context.Context, l *models.Lesson) error
}
