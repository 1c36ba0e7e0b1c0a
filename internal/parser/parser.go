package parser

import (
	"time"

	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/normalize"
)

// RawOutcome is what a format reader produces before normalization.
// Lines or elements that could not be read end up in Warnings.
type RawOutcome struct {
	Format   Format
	Records  []models.RawRecord
	Warnings []string
}

// Outcome is the parsed, normalized preview shown before import.
type Outcome struct {
	Format Format `json:"format"`
	normalize.Outcome
}

// ParseRaw dispatches on the hint, or on Detect when the hint is FormatAuto.
// It never fails: unreadable input yields an empty outcome with warnings.
func ParseRaw(input string, hint Format) RawOutcome {
	format := hint
	if format == FormatAuto {
		format = Detect(input)
	}

	var out RawOutcome
	switch format {
	case FormatCSV:
		out = parseCSV(input)
	case FormatJSON:
		out = parseJSON(input)
	default:
		format = FormatText
		out = parseText(input)
	}
	out.Format = format
	for i := range out.Records {
		if out.Records[i].Extra == nil {
			out.Records[i].Extra = map[string]string{}
		}
		out.Records[i].Extra[models.ExtraSource] = "import:" + string(format)
	}
	return out
}

// Parse reads input and normalizes the records against now.
func Parse(input string, hint Format, now time.Time) Outcome {
	raw := ParseRaw(input, hint)

	norm := normalize.Records(raw.Records, now)
	norm.Warnings = append(raw.Warnings, norm.Warnings...)

	return Outcome{Format: raw.Format, Outcome: norm}
}
