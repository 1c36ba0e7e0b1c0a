package scraper

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/normalize"
)

// LessonStrategies: lesson table rows, then lesson cards.
func LessonStrategies() []Strategy {
	return []Strategy{
		{Name: "lesson-rows", Extract: lessonRows},
		{Name: "lesson-cards", Extract: lessonCards},
	}
}

// lessonRows reads "date | subject | description [| teacher]".
func lessonRows(doc *goquery.Document, now time.Time) []models.RawRecord {
	var out []models.RawRecord
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) < 3 || cells[2] == "" {
			return
		}
		if _, ok := normalize.Date(cells[0], now); !ok {
			return
		}
		rec := models.RawRecord{
			Date:        cells[0],
			Subject:     cells[1],
			Kind:        models.KindLesson,
			Description: cells[2],
			Extra:       map[string]string{},
		}
		if len(cells) > 3 {
			rec.Extra[models.ExtraTeacher] = cells[3]
		}
		out = append(out, rec)
	})
	return out
}

func lessonCards(doc *goquery.Document, _ time.Time) []models.RawRecord {
	var out []models.RawRecord
	doc.Find(".lesson, .lezione, .lesson-card").Each(func(_ int, card *goquery.Selection) {
		desc := firstText(card, ".description", ".argomento", ".topic", ".text")
		if desc == "" {
			return
		}
		out = append(out, models.RawRecord{
			Date:        firstText(card, ".date", ".data", "time"),
			Subject:     firstText(card, ".subject", ".materia"),
			Kind:        models.KindLesson,
			Description: desc,
			Extra:       map[string]string{models.ExtraTeacher: firstText(card, ".teacher", ".docente")},
		})
	})
	return out
}
