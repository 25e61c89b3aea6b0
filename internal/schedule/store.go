// Package schedule loads the CSV timetable definition into an immutable
// in-memory store indexed by weekday and week parity.
package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/weekab/timetable-api/internal/models"
	appErrors "github.com/weekab/timetable-api/pkg/errors"
)

var requiredColumns = []string{"day", "week", "period", "start", "end", "subject"}

var optionalColumns = map[string]struct{}{
	"teacher": {},
	"room":    {},
	"notes":   {},
}

type indexKey struct {
	day  models.Weekday
	week models.WeekParity
}

// Schedule is the read-only lesson collection. It is built once by Load and
// never mutated afterwards; callers must not modify returned slices.
type Schedule struct {
	source  string
	lessons []models.Lesson
	index   map[indexKey][]models.Lesson
}

// Load reads and validates the timetable CSV. Any schema violation fails the
// whole load; the server must not serve a partially loaded schedule.
func Load(csvPath string) (*Schedule, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrLoad.Code, appErrors.ErrLoad.Status, "cannot open timetable CSV")
	}
	defer f.Close()

	s, err := parse(f)
	if err != nil {
		return nil, err
	}
	s.source = csvPath
	return s, nil
}

func parse(r io.Reader) (*Schedule, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, loadErr("missing header row: %v", err)
	}
	columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	s := &Schedule{index: make(map[indexKey][]models.Lesson)}
	seen := make(map[indexKey]map[int]models.WeekParity)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, loadErr("line %d: %v", line, err)
		}
		lesson, err := parseRow(columns, record, line)
		if err != nil {
			return nil, err
		}

		for _, week := range expandParity(lesson.Week) {
			key := indexKey{day: lesson.Day, week: week}
			periods := seen[key]
			if periods == nil {
				periods = make(map[int]models.WeekParity)
				seen[key] = periods
			}
			if prev, dup := periods[lesson.Period]; dup {
				return nil, loadErr("line %d: duplicate period %d for %s week %s (already defined by a %s row)",
					line, lesson.Period, lesson.Day, week, prev)
			}
			periods[lesson.Period] = lesson.Week
			s.index[key] = append(s.index[key], lesson)
		}
		s.lessons = append(s.lessons, lesson)
	}

	for key := range s.index {
		lessons := s.index[key]
		sort.Slice(lessons, func(i, j int) bool { return lessons[i].Period < lessons[j].Period })
		if err := checkOverlap(key, lessons); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, loadErr("missing required column %q", name)
		}
	}
	for name := range columns {
		if _, ok := optionalColumns[name]; ok {
			continue
		}
		if !contains(requiredColumns, name) {
			return nil, loadErr("unknown column %q", name)
		}
	}
	return columns, nil
}

func parseRow(columns map[string]int, record []string, line int) (models.Lesson, error) {
	var lesson models.Lesson

	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	day, ok := models.ParseWeekday(field("day"))
	if !ok {
		return lesson, loadErr("line %d: invalid day %q", line, field("day"))
	}
	week, ok := models.ParseWeekParity(field("week"))
	if !ok {
		return lesson, loadErr("line %d: invalid week %q (expected A, B or ALL)", line, field("week"))
	}
	period, err := strconv.Atoi(field("period"))
	if err != nil || period <= 0 {
		return lesson, loadErr("line %d: invalid period %q (expected a positive integer)", line, field("period"))
	}
	start, err := models.ParseHHMM(field("start"))
	if err != nil {
		return lesson, loadErr("line %d: %v", line, err)
	}
	end, err := models.ParseHHMM(field("end"))
	if err != nil {
		return lesson, loadErr("line %d: %v", line, err)
	}
	if start >= end {
		return lesson, loadErr("line %d: start %s is not before end %s", line, start, end)
	}
	subject := field("subject")
	if subject == "" {
		return lesson, loadErr("line %d: empty subject", line)
	}

	lesson = models.Lesson{
		ID:      uuid.NewString(),
		Day:     day,
		Week:    week,
		Period:  period,
		Start:   start,
		End:     end,
		Subject: subject,
		Teacher: field("teacher"),
		Room:    field("room"),
		Notes:   field("notes"),
	}
	return lesson, nil
}

// checkOverlap rejects intersecting intervals within one (day, week) bucket.
// The bucket is already sorted by period.
func checkOverlap(key indexKey, lessons []models.Lesson) error {
	byStart := make([]models.Lesson, len(lessons))
	copy(byStart, lessons)
	sort.Slice(byStart, func(i, j int) bool { return byStart[i].Start < byStart[j].Start })
	for i := 1; i < len(byStart); i++ {
		if byStart[i].Start < byStart[i-1].End {
			return loadErr("%s week %s: period %d (%s-%s) overlaps period %d (%s-%s)",
				key.day, key.week,
				byStart[i-1].Period, byStart[i-1].Start, byStart[i-1].End,
				byStart[i].Period, byStart[i].Start, byStart[i].End)
		}
	}
	return nil
}

func expandParity(p models.WeekParity) []models.WeekParity {
	if p == models.WeekBoth {
		return []models.WeekParity{models.WeekA, models.WeekB}
	}
	return []models.WeekParity{p}
}

// LessonsFor returns the lessons taught on the given weekday in the given
// week, ascending by period. An empty result is a normal free day.
func (s *Schedule) LessonsFor(day models.Weekday, week models.WeekParity) []models.Lesson {
	return s.index[indexKey{day: day, week: week}]
}

// Lessons returns every loaded lesson in CSV order, without parity expansion.
func (s *Schedule) Lessons() []models.Lesson {
	return s.lessons
}

// Len is the number of CSV rows loaded.
func (s *Schedule) Len() int {
	return len(s.lessons)
}

// Source is the path the schedule was loaded from.
func (s *Schedule) Source() string {
	return s.source
}

func loadErr(format string, args ...interface{}) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrLoad, fmt.Sprintf(format, args...))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
