package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/normalize"
)

const minCSVFields = 4

// parseCSV reads rows of: date, subject, type, description, topics.
// The first row is a header. Rows whose type mentions "voto" or "grade"
// are grades, with the grade in the description column.
func parseCSV(input string) RawOutcome {
	var out RawOutcome

	r := csv.NewReader(strings.NewReader(input))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header := true
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("csv: %v", err))
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			break
		}
		if header {
			header = false
			continue
		}
		if isBlankRow(row) {
			continue
		}
		line, _ := r.FieldPos(0)
		if len(row) < minCSVFields {
			out.Warnings = append(out.Warnings, fmt.Sprintf("csv line %d: expected at least %d fields, got %d", line, minCSVFields, len(row)))
			continue
		}
		out.Records = append(out.Records, csvRecord(row))
	}

	return out
}

func csvRecord(row []string) models.RawRecord {
	date := strings.TrimSpace(row[0])
	subject := strings.TrimSpace(row[1])
	kind := strings.TrimSpace(row[2])
	description := strings.TrimSpace(row[3])

	lower := strings.ToLower(kind)
	if strings.Contains(lower, "voto") || strings.Contains(lower, "grade") {
		return models.RawRecord{
			Date:    date,
			Subject: subject,
			Kind:    models.KindGrade,
			Extra: map[string]string{
				models.ExtraGrade: description,
				models.ExtraType:  kind,
			},
		}
	}

	rec := models.RawRecord{
		Date:        date,
		Subject:     subject,
		Kind:        models.KindHomework,
		Description: description,
		Extra:       map[string]string{models.ExtraType: kind},
	}
	if normalize.IsTest(kind) {
		rec.Kind = models.KindTest
	}
	if len(row) > 4 {
		rec.Extra[models.ExtraTopics] = strings.Join(normalize.SplitList(strings.Join(row[4:], ";")), ";")
	}
	return rec
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
