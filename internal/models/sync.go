package models

import (
	"fmt"
	"strings"
	"time"
)

// Credentials are only ever persisted sealed by the vault.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	SchoolCode string `json:"schoolCode,omitempty"`
}

// Session is the portal login state.
type Session struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

// Valid reports whether the session is still usable at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyManual Frequency = "manual"
)

// SyncSchedule is the single persisted record that decides when the next
// automated run fires.
type SyncSchedule struct {
	Enabled   bool       `json:"enabled"`
	Frequency Frequency  `json:"frequency" validate:"oneof=daily weekly manual"`
	Time      string     `json:"time" validate:"hhmm"`
	LastSync  *time.Time `json:"lastSync,omitempty"`
	NextSync  *time.Time `json:"nextSync,omitempty"`
}

// DefaultSchedule is used when nothing has been persisted yet.
func DefaultSchedule() SyncSchedule {
	return SyncSchedule{Enabled: false, Frequency: FrequencyDaily, Time: "07:00"}
}

// SyncResult summarizes one pipeline run or one import.
type SyncResult struct {
	Success         bool     `json:"success"`
	ExamsAdded      int      `json:"examsAdded"`
	HomeworkAdded   int      `json:"homeworkAdded"`
	GradesAdded     int      `json:"gradesAdded"`
	SubjectsUpdated int      `json:"subjectsUpdated"`
	TopicsAdded     int      `json:"topicsAdded"`
	LessonsAdded    int      `json:"lessonsAdded"`
	Error           string   `json:"error,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Failed builds an unsuccessful result carrying err's message.
func Failed(err error) SyncResult {
	return SyncResult{Success: false, Error: err.Error()}
}

// Summary is the one-line text used for notifications and the CLI.
func (r SyncResult) Summary() string {
	if !r.Success {
		return "Sync failed: " + r.Error
	}
	parts := []string{
		fmt.Sprintf("%d exams", r.ExamsAdded),
		fmt.Sprintf("%d homework", r.HomeworkAdded),
		fmt.Sprintf("%d grades", r.GradesAdded),
	}
	if r.LessonsAdded > 0 {
		parts = append(parts, fmt.Sprintf("%d lessons", r.LessonsAdded))
	}
	s := "Added " + strings.Join(parts, ", ")
	if r.SubjectsUpdated > 0 {
		s += fmt.Sprintf(" (%d subjects updated)", r.SubjectsUpdated)
	}
	if len(r.Warnings) > 0 {
		s += fmt.Sprintf("; %d warnings", len(r.Warnings))
	}
	return s
}
