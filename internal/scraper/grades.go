package scraper

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/normalize"
)

// GradeStrategies: grade table rows, then grade cards.
func GradeStrategies() []Strategy {
	return []Strategy{
		{Name: "grade-rows", Extract: gradeRows},
		{Name: "grade-cards", Extract: gradeCards},
	}
}

// gradeRows accepts rows in any column order: the first cell that parses
// as a date is the date, the first cell that is a valid grade is the
// grade, the first remaining cell is the subject and the next one the
// grade type.
func gradeRows(doc *goquery.Document, now time.Time) []models.RawRecord {
	var out []models.RawRecord
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) < 3 {
			return
		}

		dateIdx, gradeIdx := -1, -1
		for i, c := range cells {
			if gradeIdx < 0 && normalize.ValidGrade(normalize.CleanGrade(c)) {
				gradeIdx = i
				continue
			}
			if dateIdx < 0 {
				if _, ok := normalize.Date(c, now); ok {
					dateIdx = i
				}
			}
		}
		if dateIdx < 0 || gradeIdx < 0 {
			return
		}

		var rest []string
		for i, c := range cells {
			if i != dateIdx && i != gradeIdx && c != "" {
				rest = append(rest, c)
			}
		}
		if len(rest) == 0 {
			return
		}

		rec := models.RawRecord{
			Date:    cells[dateIdx],
			Subject: rest[0],
			Kind:    models.KindGrade,
			Extra:   map[string]string{models.ExtraGrade: cells[gradeIdx]},
		}
		if len(rest) > 1 {
			rec.Extra[models.ExtraType] = rest[1]
		}
		if len(rest) > 2 {
			rec.Description = rest[2]
		}
		out = append(out, rec)
	})
	return out
}

func gradeCards(doc *goquery.Document, _ time.Time) []models.RawRecord {
	var out []models.RawRecord
	doc.Find(".grade-card, .voto-card, .card.grade, .grade-item").Each(func(_ int, card *goquery.Selection) {
		grade := firstText(card, ".grade-value", ".valore", ".value", ".voto")
		if grade == "" {
			return
		}
		out = append(out, models.RawRecord{
			Date:        firstText(card, ".date", ".data", "time"),
			Subject:     firstText(card, ".subject", ".materia", ".card-title"),
			Kind:        models.KindGrade,
			Description: firstText(card, ".description", ".note", ".commento"),
			Extra: map[string]string{
				models.ExtraGrade: grade,
				models.ExtraType:  firstText(card, ".type", ".tipo"),
			},
		})
	})
	return out
}
