package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/weekab/timetable-api/internal/models"
	appErrors "github.com/weekab/timetable-api/pkg/errors"
)

// termKind closes over the accepted relative date forms.
type termKind int

const (
	termToday termKind = iota
	termTomorrow
	termYesterday
	termWeekday
	termISODate
)

type dateTerm struct {
	kind    termKind
	weekday models.Weekday
	date    time.Time
}

// ResolveRelative turns a relative term or ISO date into a local calendar
// day. Accepted terms: today, tomorrow, yesterday, a weekday name (resolved
// to the next occurrence on or after now's date, today included), or
// YYYY-MM-DD.
func (w *WeekCalendar) ResolveRelative(raw string, now time.Time) (time.Time, error) {
	term, err := w.parseTerm(raw)
	if err != nil {
		return time.Time{}, err
	}

	today := w.Midnight(now)
	switch term.kind {
	case termToday:
		return today, nil
	case termTomorrow:
		return today.AddDate(0, 0, 1), nil
	case termYesterday:
		return today.AddDate(0, 0, -1), nil
	case termWeekday:
		ahead := (int(term.weekday) - int(w.DayOfWeek(today)) + 7) % 7
		return today.AddDate(0, 0, ahead), nil
	case termISODate:
		return term.date, nil
	default:
		return time.Time{}, appErrors.Clone(appErrors.ErrDateParse, fmt.Sprintf("unresolvable date term %q", raw))
	}
}

func (w *WeekCalendar) parseTerm(raw string) (dateTerm, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "":
		return dateTerm{}, appErrors.Clone(appErrors.ErrDateParse, "empty date term")
	case "today":
		return dateTerm{kind: termToday}, nil
	case "tomorrow":
		return dateTerm{kind: termTomorrow}, nil
	case "yesterday":
		return dateTerm{kind: termYesterday}, nil
	}
	if day, ok := models.ParseWeekday(s); ok {
		return dateTerm{kind: termWeekday, weekday: day}, nil
	}
	if d, err := w.ParseDate(raw); err == nil {
		return dateTerm{kind: termISODate, date: d}, nil
	}
	return dateTerm{}, appErrors.Clone(appErrors.ErrDateParse,
		fmt.Sprintf("unrecognized date %q (expected YYYY-MM-DD, a weekday name, today, tomorrow or yesterday)", raw))
}
