package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

// Strategy is one pure extractor over a parsed page.
type Strategy struct {
	Name    string
	Extract func(doc *goquery.Document, now time.Time) []models.RawRecord
}

// Cascade runs strategies in order and returns the first non-empty result
// with the name of the strategy that produced it. No strategy matching is
// a legitimate empty page, not an error.
func Cascade(html string, strategies []Strategy, now time.Time) ([]models.RawRecord, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ""
	}
	for _, s := range strategies {
		if recs := s.Extract(doc, now); len(recs) > 0 {
			return recs, s.Name
		}
	}
	return nil, ""
}

// text is the whitespace-collapsed text of sel.
func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// firstText returns the text of the first non-empty match among selectors,
// searched within sel.
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if t := text(sel.Find(s).First()); t != "" {
			return t
		}
	}
	return ""
}

// rowCells returns the texts of a table row's td cells.
func rowCells(row *goquery.Selection) []string {
	var cells []string
	row.Children().Filter("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, text(td))
	})
	return cells
}
