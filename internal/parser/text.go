package parser

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

const (
	dateToken     = `\d{1,2}[/.\-]\d{1,2}(?:[/.\-]\d{2,4})?`
	longDateToken = `(?:\p{L}+\.?\s+)?\d{1,2}\s+\p{L}+\.?(?:\s+\d{4})?`
	separator     = `\s*[-–—:]\s*`
	subjectToken  = `([^-–—:]+?)`
)

var (
	dateFirstRe     = regexp.MustCompile(`^(` + dateToken + `)` + separator + subjectToken + separator + `(.+)$`)
	longDateFirstRe = regexp.MustCompile(`^(` + longDateToken + `)` + separator + subjectToken + separator + `(.+)$`)
	subjectFirstRe  = regexp.MustCompile(`^([^-–—:\d][^-–—:]*?)\s*[-–—]\s*(` + dateToken + `)` + separator + `(.+)$`)
	gradeLineRe     = regexp.MustCompile(`^([^:]+?)\s*:\s*(\S+)\s*\(\s*(` + dateToken + `)\s*\)\s*$`)
)

// parseText reads one record per line. Recognised shapes:
//
//	15/01/2025 - Matematica - Verifica su derivate
//	lunedì 15 gennaio - Matematica: esercizi pag. 12
//	Matematica - 15/01/2025 - esercizi pag. 12
//	Matematica: 8+ (10/01/2025)
//
// Anything else becomes a warning.
func parseText(input string) RawOutcome {
	var out RawOutcome

	sc := bufio.NewScanner(strings.NewReader(input))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec, ok := textRecord(line)
		if !ok {
			out.Warnings = append(out.Warnings, fmt.Sprintf("line %d not recognised: %q", n, line))
			continue
		}
		out.Records = append(out.Records, rec)
	}
	if err := sc.Err(); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("text: %v", err))
	}
	return out
}

func textRecord(line string) (models.RawRecord, bool) {
	if m := gradeLineRe.FindStringSubmatch(line); m != nil {
		return models.RawRecord{
			Date:    m[3],
			Subject: m[1],
			Kind:    models.KindGrade,
			Extra:   map[string]string{models.ExtraGrade: m[2]},
		}, true
	}
	if m := dateFirstRe.FindStringSubmatch(line); m != nil {
		return textAssignment(m[1], m[2], m[3]), true
	}
	if m := longDateFirstRe.FindStringSubmatch(line); m != nil {
		return textAssignment(m[1], m[2], m[3]), true
	}
	if m := subjectFirstRe.FindStringSubmatch(line); m != nil {
		return textAssignment(m[2], m[1], m[3]), true
	}
	return models.RawRecord{}, false
}

// Kind is left empty so the normalizer classifies from the description.
func textAssignment(date, subject, description string) models.RawRecord {
	return models.RawRecord{
		Date:        strings.TrimSpace(date),
		Subject:     strings.TrimSpace(subject),
		Description: strings.TrimSpace(description),
	}
}
