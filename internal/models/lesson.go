package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday numbers days Monday=0 through Sunday=6, matching the order
// lessons run in a school week.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var weekdayAliases = map[string]Weekday{
	"monday": Monday, "mon": Monday,
	"tuesday": Tuesday, "tue": Tuesday, "tues": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday,
	"thursday": Thursday, "thu": Thursday, "thur": Thursday, "thurs": Thursday,
	"friday": Friday, "fri": Friday,
	"saturday": Saturday, "sat": Saturday,
	"sunday": Sunday, "sun": Sunday,
}

// ParseWeekday accepts full or abbreviated English day names, case
// insensitive, or a digit 0..6 (0=Mon).
func ParseWeekday(raw string) (Weekday, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n <= 6 {
			return Weekday(n), true
		}
		return 0, false
	}
	d, ok := weekdayAliases[s]
	return d, ok
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// MarshalJSON renders the weekday as its abbreviated name.
func (d Weekday) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// WeekParity labels which of the two alternating academic weeks a lesson
// belongs to. WeekBoth marks a lesson taught in both weeks.
type WeekParity string

const (
	WeekA    WeekParity = "A"
	WeekB    WeekParity = "B"
	WeekBoth WeekParity = "ALL"
)

// ParseWeekParity accepts A, B, ALL or BOTH, case insensitive.
func ParseWeekParity(raw string) (WeekParity, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "A":
		return WeekA, true
	case "B":
		return WeekB, true
	case "ALL", "BOTH":
		return WeekBoth, true
	default:
		return "", false
	}
}

// Matches reports whether a lesson with this parity is taught in the given
// week. The label must be WeekA or WeekB.
func (p WeekParity) Matches(label WeekParity) bool {
	return p == WeekBoth || p == label
}

// MinuteOfDay stores a local time of day as minutes since midnight.
type MinuteOfDay int

// ParseHHMM parses a 24h "HH:MM" clock value.
func ParseHHMM(raw string) (MinuteOfDay, error) {
	s := strings.TrimSpace(raw)
	hh, mm, found := strings.Cut(s, ":")
	if !found {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", raw)
	}
	return MinuteOfDay(h*60 + m), nil
}

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// MarshalJSON renders the minute as an "HH:MM" string.
func (m MinuteOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// Lesson is one timetable slot. Start and End are a half-open interval
// [Start, End) within the day; Period is the unique ordering key within
// (Day, parity) once WeekBoth rows are expanded.
type Lesson struct {
	ID      string      `json:"id"`
	Day     Weekday     `json:"day"`
	Week    WeekParity  `json:"week"`
	Period  int         `json:"period"`
	Start   MinuteOfDay `json:"start"`
	End     MinuteOfDay `json:"end"`
	Subject string      `json:"subject"`
	Teacher string      `json:"teacher,omitempty"`
	Room    string      `json:"room,omitempty"`
	Notes   string      `json:"notes,omitempty"`
}

// Covers reports whether the lesson interval contains the given minute.
func (l Lesson) Covers(m MinuteOfDay) bool {
	return l.Start <= m && m < l.End
}
