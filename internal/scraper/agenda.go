package scraper

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/normalize"
)

const eventSelector = ".fc-event, .event, .calendar-event, [data-event]"

var (
	// "VERIFICA DI MATEMATICA: derivate", "COMPITI DI ITALIANO: pag. 45".
	eventTitleRe = regexp.MustCompile(`(?i)^\s*(COMPITI IN CLASSE|COMPITO IN CLASSE|COMPITI|COMPITO|VERIFICHE|VERIFICA|INTERROGAZIONI|INTERROGAZIONE|TEST|ESERCITAZIONE|PROVA)\s+(?:DI|D')\s*([^:]+?)\s*:\s*(.+)$`)

	classISODateRe = regexp.MustCompile(`(\d{4})[-_](\d{2})[-_](\d{2})`)
	classDMYDateRe = regexp.MustCompile(`(\d{1,2})[-_](\d{1,2})[-_](\d{4})`)
	yearRe         = regexp.MustCompile(`\b(20\d{2})\b`)
	dayNumberRe    = regexp.MustCompile(`^\d{1,2}$`)
)

// AgendaStrategies: calendar widget events, then table rows, then cards.
func AgendaStrategies() []Strategy {
	return []Strategy{
		{Name: "calendar-events", Extract: calendarEvents},
		{Name: "agenda-rows", Extract: agendaRows},
		{Name: "agenda-cards", Extract: agendaCards},
	}
}

func calendarEvents(doc *goquery.Document, now time.Time) []models.RawRecord {
	calTitle := text(doc.Find(".fc-toolbar-title, .fc-center h2, .calendar-title, .month-title").First())

	var out []models.RawRecord
	doc.Find(eventSelector).Each(func(_ int, ev *goquery.Selection) {
		title := strings.TrimSpace(ev.AttrOr("title", ""))
		if title == "" {
			return
		}

		rec := models.RawRecord{
			Date:  eventDate(ev, calTitle, now),
			Extra: map[string]string{},
		}
		if m := eventTitleRe.FindStringSubmatch(title); m != nil {
			rec.Extra[models.ExtraType] = strings.ToLower(m[1])
			rec.Kind = eventKind(m[1])
			rec.Subject = subjectName(m[2])
			rec.Description = m[3]
		} else {
			rec.Description = title
		}
		out = append(out, rec)
	})
	return out
}

// subjectName turns the upper-case subjects of event titles into the form
// used everywhere else ("LINGUA INGLESE" -> "Lingua Inglese"). A Caser is
// stateful, so one is built per call.
func subjectName(s string) string {
	s = strings.TrimSpace(s)
	if s != strings.ToUpper(s) {
		return s
	}
	return cases.Title(language.Italian).String(strings.ToLower(s))
}

// eventKind maps the title prefix; only plain COMPITI/COMPITO is homework.
func eventKind(prefix string) models.RecordKind {
	switch strings.ToUpper(prefix) {
	case "COMPITI", "COMPITO":
		return models.KindHomework
	default:
		return models.KindTest
	}
}

// eventDate resolves an event's date: data-date on the event or an
// ancestor, a date in a CSS class name, a date with a year in the event
// text, the day number of the containing cell plus month/year from the
// calendar title, and finally today.
func eventDate(ev *goquery.Selection, calTitle string, now time.Time) string {
	if d := strings.TrimSpace(ev.Closest("[data-date]").AttrOr("data-date", "")); d != "" {
		if _, ok := normalize.Date(d, now); ok {
			return d
		}
	}

	for s := ev; s.Length() > 0; s = s.Parent() {
		if d := dateInClass(s.AttrOr("class", "")); d != "" {
			return d
		}
	}

	if iso, ok := normalize.FullDate(text(ev), now); ok {
		return iso
	}

	if d := dayFromCell(ev, calTitle); d != "" {
		return d
	}

	return now.Format(normalize.ISOLayout)
}

func dateInClass(class string) string {
	if m := classISODateRe.FindStringSubmatch(class); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	if m := classDMYDateRe.FindStringSubmatch(class); m != nil {
		return m[1] + "/" + m[2] + "/" + m[3]
	}
	return ""
}

func dayFromCell(ev *goquery.Selection, calTitle string) string {
	cell := ev.Closest("td, .fc-day, .day, .calendar-day")
	if cell.Length() == 0 {
		return ""
	}
	day := firstText(cell, ".fc-daygrid-day-number", ".fc-day-number", ".day-number", ".date")
	if !dayNumberRe.MatchString(day) {
		return ""
	}

	var month time.Month
	for _, w := range strings.Fields(calTitle) {
		if m, ok := normalize.MonthByName(w); ok {
			month = m
			break
		}
	}
	y := yearRe.FindStringSubmatch(calTitle)
	if month == 0 || y == nil {
		return ""
	}
	return fmt.Sprintf("%s/%02d/%s", day, int(month), y[1])
}

// agendaRows reads "date | subject | [type |] description" rows.
func agendaRows(doc *goquery.Document, now time.Time) []models.RawRecord {
	var out []models.RawRecord
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) < 3 {
			return
		}
		if _, ok := normalize.Date(cells[0], now); !ok {
			return
		}

		rec := models.RawRecord{Date: cells[0], Subject: cells[1], Extra: map[string]string{}}
		if len(cells) >= 4 {
			rec.Extra[models.ExtraType] = cells[2]
			rec.Description = cells[3]
		} else {
			rec.Description = cells[2]
		}
		if rec.Description == "" {
			return
		}
		out = append(out, rec)
	})
	return out
}

func agendaCards(doc *goquery.Document, _ time.Time) []models.RawRecord {
	var out []models.RawRecord
	doc.Find(".agenda-item, .homework-item, .compito, .card").Each(func(_ int, card *goquery.Selection) {
		desc := firstText(card, ".description", ".descrizione", ".card-text", ".text")
		if desc == "" {
			return
		}
		rec := models.RawRecord{
			Date:        firstText(card, ".date", ".data", "time"),
			Subject:     firstText(card, ".subject", ".materia", ".card-title"),
			Description: desc,
			Extra:       map[string]string{},
		}
		if t := firstText(card, ".type", ".tipo"); t != "" {
			rec.Extra[models.ExtraType] = t
		}
		out = append(out, rec)
	})
	return out
}
