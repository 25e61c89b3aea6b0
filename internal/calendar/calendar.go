// Package calendar maps calendar dates onto the alternating Week A/B cycle
// and resolves relative date terms in the configured timezone.
package calendar

import (
	"fmt"
	"time"

	"github.com/weekab/timetable-api/internal/models"
	appErrors "github.com/weekab/timetable-api/pkg/errors"
)

// Clock supplies the current instant. Injected so queries that default to
// "now" stay deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// WeekCalendar computes weekday and week parity for any date given the
// Week A anchor. It is immutable after construction.
type WeekCalendar struct {
	loc             *time.Location
	anchor          time.Time
	anchorWeekStart time.Time
}

// New builds a calendar from an ISO anchor date and an IANA timezone name.
func New(anchorDate, timezone string) (*WeekCalendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoad.Code, appErrors.ErrLoad.Status,
			fmt.Sprintf("unknown timezone %q", timezone))
	}
	anchor, err := time.ParseInLocation("2006-01-02", anchorDate, loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoad.Code, appErrors.ErrLoad.Status,
			fmt.Sprintf("invalid week A anchor date %q", anchorDate))
	}

	return &WeekCalendar{
		loc:             loc,
		anchor:          anchor,
		anchorWeekStart: weekStart(anchor),
	}, nil
}

// Location returns the configured timezone.
func (w *WeekCalendar) Location() *time.Location {
	return w.loc
}

// Anchor returns the configured Week A anchor date.
func (w *WeekCalendar) Anchor() time.Time {
	return w.anchor
}

// SystemClock returns a wall clock reading in the calendar's timezone.
func (w *WeekCalendar) SystemClock() Clock {
	return systemClock{loc: w.loc}
}

// DayOfWeek returns the Monday-based weekday of the date.
func (w *WeekCalendar) DayOfWeek(date time.Time) models.Weekday {
	return models.Weekday((int(date.Weekday()) + 6) % 7)
}

// ParityOf labels the date's week A or B: the number of Monday-aligned whole
// weeks between the anchor's week start and the date's week start, mod 2.
// Dates before the anchor use floored division so the cycle extends backwards
// unbroken.
func (w *WeekCalendar) ParityOf(date time.Time) models.WeekParity {
	days := civilDays(w.anchorWeekStart, weekStart(date))
	weeks := days / 7
	if ((weeks%2)+2)%2 == 0 {
		return models.WeekA
	}
	return models.WeekB
}

// ParseDate interprets an ISO date string as a local calendar day.
func (w *WeekCalendar) ParseDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", raw, w.loc)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrDateParse, fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", raw))
	}
	return d, nil
}

// ParseDateTime interprets an ISO datetime, with or without seconds, as a
// local instant.
func (w *WeekCalendar) ParseDateTime(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, raw, w.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrDateParse, fmt.Sprintf("invalid datetime %q (expected YYYY-MM-DDTHH:MM)", raw))
}

// Midnight truncates an instant to the start of its local calendar day.
func (w *WeekCalendar) Midnight(t time.Time) time.Time {
	t = t.In(w.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, w.loc)
}

// NextDay returns midnight of the day after t.
func (w *WeekCalendar) NextDay(t time.Time) time.Time {
	t = t.In(w.loc)
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, w.loc)
}

// weekStart returns midnight of the Monday on or before the date.
func weekStart(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	return time.Date(date.Year(), date.Month(), date.Day()-offset, 0, 0, 0, 0, date.Location())
}

// civilDays counts calendar days from a to b ignoring DST, by comparing the
// two civil dates in UTC.
func civilDays(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}
