package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRawRecord_GetNilExtra(t *testing.T) {
	var r RawRecord
	assert.Equal(t, "", r.Get(ExtraGrade))

	r.Extra = map[string]string{ExtraGrade: "8+"}
	assert.Equal(t, "8+", r.Get(ExtraGrade))
}

func TestSubject_HasGrade(t *testing.T) {
	s := &Subject{ExamGrades: []string{"7", "8+"}}
	assert.True(t, s.HasGrade("8+"))
	assert.False(t, s.HasGrade("8"))
}

func TestSession_Valid(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	var nilSession *Session
	assert.False(t, nilSession.Valid(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Valid(now))
	assert.False(t, (&Session{ExpiresAt: now}).Valid(now))
}

func TestSyncResult_Summary(t *testing.T) {
	ok := SyncResult{Success: true, ExamsAdded: 1, HomeworkAdded: 2, GradesAdded: 3, SubjectsUpdated: 1}
	assert.Equal(t, "Added 1 exams, 2 homework, 3 grades (1 subjects updated)", ok.Summary())

	withLessons := SyncResult{Success: true, LessonsAdded: 4, Warnings: []string{"w"}}
	assert.Equal(t, "Added 0 exams, 0 homework, 0 grades, 4 lessons; 1 warnings", withLessons.Summary())

	failed := Failed(errors.New("boom"))
	assert.False(t, failed.Success)
	assert.Equal(t, "Sync failed: boom", failed.Summary())
}
