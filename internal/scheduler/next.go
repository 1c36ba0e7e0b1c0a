package scheduler

import (
	"time"

	"github.com/dmitrijs2005/agendasync/internal/models"
)

// NextSync returns the next firing time after now, or false when the
// schedule is disabled or manual. Missed runs are not caught up.
func NextSync(s models.SyncSchedule, now time.Time) (time.Time, bool) {
	if !s.Enabled || s.Frequency == models.FrequencyManual {
		return time.Time{}, false
	}

	clock, err := time.Parse("15:04", s.Time)
	if err != nil {
		return time.Time{}, false
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	if next.After(now) {
		return next, true
	}

	switch s.Frequency {
	case models.FrequencyWeekly:
		return next.AddDate(0, 0, 7), true
	default:
		return next.AddDate(0, 0, 1), true
	}
}
