package models

import "time"

// Subject is keyed by Name, unique case-insensitively. Subjects are created
// on first encounter and never deleted by a sync.
type Subject struct {
	ID         string
	Name       string
	Color      string
	ExamGrades []string
	CreatedAt  time.Time
}

// HasGrade reports whether grade is already recorded (exact match).
func (s *Subject) HasGrade(grade string) bool {
	for _, g := range s.ExamGrades {
		if g == grade {
			return true
		}
	}
	return false
}

type Exam struct {
	ID          string
	Subject     string
	Date        string
	Kind        TestKind
	Description string
	Topics      []string
	Source      string
	CreatedAt   time.Time
}

type Homework struct {
	ID          string
	Subject     string
	Date        string
	Description string
	Done        bool
	Source      string
	CreatedAt   time.Time
}

// Topic is advisory: topics are not deduplicated against each other.
type Topic struct {
	ID          string
	SubjectName string
	Title       string
	Source      string
	CreatedAt   time.Time
}

type Lesson struct {
	ID          string
	Subject     string
	Date        string
	Description string
	Teacher     string
	CreatedAt   time.Time
}
