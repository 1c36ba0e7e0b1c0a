// Package models defines the records that flow through the sync pipeline,
// from raw scraped/parsed fields to the planner's stored entities.
package models

// RecordKind classifies a RawRecord.
type RecordKind string

const (
	KindTest     RecordKind = "test"
	KindHomework RecordKind = "homework"
	KindGrade    RecordKind = "grade"
	KindLesson   RecordKind = "lesson"
)

// Well-known RawRecord.Extra keys.
const (
	ExtraGrade   = "grade"
	ExtraType    = "type"
	ExtraTopics  = "topics"
	ExtraTeacher = "teacher"
	ExtraSource  = "source"
)

// RawRecord is the untyped, format-agnostic record emitted by both the
// manual-import parser and the portal scraper. It is never persisted.
type RawRecord struct {
	Date        string
	Subject     string
	Kind        RecordKind
	Description string
	Extra       map[string]string
}

// Get returns Extra[key], tolerating a nil map.
func (r RawRecord) Get(key string) string {
	if r.Extra == nil {
		return ""
	}
	return r.Extra[key]
}

// AssignmentType is the planner-level split of assignments.
type AssignmentType string

const (
	AssignmentHomework AssignmentType = "homework"
	AssignmentTest     AssignmentType = "test"
)

// TestKind refines AssignmentTest.
type TestKind string

const (
	TestWritten   TestKind = "written"
	TestOral      TestKind = "oral"
	TestPractical TestKind = "practical"
)

// NormalizedAssignment is a homework or test with a canonical ISO date.
type NormalizedAssignment struct {
	Date        string         `json:"date"`
	Subject     string         `json:"subject"`
	Type        AssignmentType `json:"type"`
	TestKind    TestKind       `json:"testKind,omitempty"`
	Description string         `json:"description"`
	Topics      []string       `json:"topics"`
}

// NormalizedGrade carries the grade exactly as written on the portal
// ("7+", "6,5"); validity is checked before it is stored.
type NormalizedGrade struct {
	Date        string `json:"date"`
	Subject     string `json:"subject"`
	Grade       string `json:"grade"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// NormalizedLesson is one entry of the portal's lesson log.
type NormalizedLesson struct {
	Date        string `json:"date"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Teacher     string `json:"teacher,omitempty"`
}
