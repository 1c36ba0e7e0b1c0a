package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

// ShortTopicLimit is the rune count under which a whole description is
// treated as a single topic.
const ShortTopicLimit = 50

var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:argomenti|argomento|topics?)\s*:\s*(.+)`),
	regexp.MustCompile(`(?i)\b(capitol[oi]\s+.+)`),
	regexp.MustCompile(`(?i)(?:^|\s)su\s+(.+)`),
}

var testKeywords = []string{"verifica", "interrogazione", "test"}

// Topics extracts a keyword-introduced topic list from description.
func Topics(description string) []string {
	desc := CleanText(description)
	if desc == "" {
		return nil
	}

	for _, re := range topicPatterns {
		m := re.FindStringSubmatch(desc)
		if m == nil {
			continue
		}
		if topics := splitTopics(firstSentence(m[1])); len(topics) > 0 {
			return topics
		}
	}

	if utf8.RuneCountInString(desc) < ShortTopicLimit {
		return []string{strings.TrimRight(desc, ".;:, ")}
	}
	return nil
}

// SplitList splits a ";" or "," separated list, dropping blanks.
func SplitList(s string) []string {
	return splitTopics(s)
}

func splitTopics(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(strings.TrimSpace(f), ".:")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		s = s[:i]
	}
	return s
}

// IsTest reports whether text names a test (case-insensitive substring of
// verifica, interrogazione or test).
func IsTest(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range testKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ClassifyAssignment decides between homework and test and, for tests,
// whether it is written, oral or practical.
func ClassifyAssignment(text string) (models.AssignmentType, models.TestKind) {
	if !IsTest(text) {
		return models.AssignmentHomework, ""
	}
	return models.AssignmentTest, TestKindOf(text)
}

// TestKindOf refines a test by its wording.
func TestKindOf(text string) models.TestKind {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "interrogazione") || strings.Contains(lower, "orale"):
		return models.TestOral
	case strings.Contains(lower, "pratic") || strings.Contains(lower, "laboratorio"):
		return models.TestPractical
	default:
		return models.TestWritten
	}
}

// CleanText collapses runs of whitespace, which portals re-wrap freely.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
