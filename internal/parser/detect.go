// Package parser turns pasted text or imported files into raw records and
// then, through the normalizer, into typed planner records.
package parser

import (
	"path/filepath"
	"strings"
)

// Format is the detected (or requested) input shape.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat maps a user-supplied hint to a Format; unknown hints mean auto.
func ParseFormat(hint string) Format {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "csv":
		return FormatCSV
	case "json":
		return FormatJSON
	case "text", "txt":
		return FormatText
	default:
		return FormatAuto
	}
}

// FormatForFile picks a hint from the file extension.
func FormatForFile(name string) Format {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Detect classifies input: JSON when it starts with "{" or "[", CSV when the
// first line has more than three comma fields and every following line is
// comma-delimited, free text otherwise.
func Detect(input string) Format {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}

	lines := nonEmptyLines(trimmed)
	if len(lines) == 0 {
		return FormatText
	}
	if len(strings.Split(lines[0], ",")) <= 3 {
		return FormatText
	}
	for _, l := range lines[1:] {
		if !strings.Contains(l, ",") {
			return FormatText
		}
	}
	return FormatCSV
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(strings.TrimSuffix(l, "\r"))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
