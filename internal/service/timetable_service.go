package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/weekab/timetable-api/internal/calendar"
	"github.com/weekab/timetable-api/internal/dto"
	"github.com/weekab/timetable-api/internal/models"
	appErrors "github.com/weekab/timetable-api/pkg/errors"
)

// searchHorizonDays bounds the forward scan of Next and Find. A null result
// at the horizon is a normal "no more lessons soon" answer.
const searchHorizonDays = 7

const dateLayout = "2006-01-02"

type lessonSource interface {
	LessonsFor(day models.Weekday, week models.WeekParity) []models.Lesson
	Len() int
	Source() string
}

// TimetableService is the query engine. Every operation is a pure read over
// the immutable schedule and calendar, so the service is safe for concurrent
// use without locking.
type TimetableService struct {
	store  lessonSource
	cal    *calendar.WeekCalendar
	clock  calendar.Clock
	logger *zap.Logger
	strict bool
}

// NewTimetableService constructs the engine. A nil clock falls back to the
// calendar's wall clock, a nil logger to a no-op logger.
func NewTimetableService(store lessonSource, cal *calendar.WeekCalendar, clock calendar.Clock, logger *zap.Logger, strict bool) *TimetableService {
	if clock == nil {
		clock = cal.SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{store: store, cal: cal, clock: clock, logger: logger, strict: strict}
}

// Now returns the current instant in the configured timezone.
func (s *TimetableService) Now() time.Time {
	return s.clock.Now()
}

// WeekType labels the date's alternating week.
func (s *TimetableService) WeekType(date time.Time) dto.WeekResult {
	return dto.WeekResult{
		Week: s.cal.ParityOf(date),
		Date: date.Format(dateLayout),
	}
}

// Day lists the date's lessons in period order.
func (s *TimetableService) Day(date time.Time) dto.DayResult {
	week := s.cal.ParityOf(date)
	lessons := s.store.LessonsFor(s.cal.DayOfWeek(date), week)
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	return dto.DayResult{
		Week:    week,
		Date:    date.Format(dateLayout),
		Lessons: lessons,
	}
}

// At finds the lesson whose interval contains the instant, or null if the
// instant falls in a break or outside school hours. Overlapping intervals
// cannot pass the loader; if they show up anyway the lowest period wins and
// the inconsistency is logged, or rejected outright in strict mode.
func (s *TimetableService) At(t time.Time) (dto.LessonResult, error) {
	week := s.cal.ParityOf(t)
	minute := minuteOf(t)

	var matches []models.Lesson
	for _, lesson := range s.store.LessonsFor(s.cal.DayOfWeek(t), week) {
		if lesson.Covers(minute) {
			matches = append(matches, lesson)
		}
	}

	switch len(matches) {
	case 0:
		return dto.LessonResult{Week: week}, nil
	case 1:
		return dto.LessonResult{Week: week, Lesson: &matches[0]}, nil
	default:
		if s.strict {
			return dto.LessonResult{}, appErrors.Clone(appErrors.ErrDataIntegrity,
				"overlapping lessons cover the same instant")
		}
		s.logger.Warn("overlapping lessons at instant",
			zap.Time("instant", t),
			zap.Int("matches", len(matches)),
			zap.Int("picked_period", matches[0].Period))
		return dto.LessonResult{Week: week, Lesson: &matches[0]}, nil
	}
}

// Next finds the soonest lesson strictly after the instant within the
// search horizon.
func (s *TimetableService) Next(from time.Time) dto.LessonResult {
	return s.scanForward(from, true, nil)
}

// FindOn lists the date's lessons whose subject contains the query,
// case-insensitively.
func (s *TimetableService) FindOn(subject string, date time.Time) dto.DayResult {
	day := s.Day(date)
	matched := []models.Lesson{}
	for _, lesson := range day.Lessons {
		if subjectMatches(lesson, subject) {
			matched = append(matched, lesson)
		}
	}
	day.Lessons = matched
	return day
}

// FindNext finds the soonest lesson at or after the instant whose subject
// contains the query, within the search horizon.
func (s *TimetableService) FindNext(subject string, from time.Time) dto.LessonResult {
	return s.scanForward(from, false, func(l models.Lesson) bool {
		return subjectMatches(l, subject)
	})
}

// Period returns the date's lesson in 1-based period-order position ordinal,
// or the day's final lesson when last is set.
func (s *TimetableService) Period(date time.Time, ordinal int, last bool) dto.PeriodResult {
	day := s.Day(date)
	result := dto.PeriodResult{Week: day.Week, Date: day.Date}
	if len(day.Lessons) == 0 {
		return result
	}
	if last {
		result.Lesson = &day.Lessons[len(day.Lessons)-1]
		return result
	}
	if ordinal >= 1 && ordinal <= len(day.Lessons) {
		result.Lesson = &day.Lessons[ordinal-1]
	}
	return result
}

// Status reports load health and configuration.
func (s *TimetableService) Status() dto.StatusResult {
	return dto.StatusResult{
		Loaded:     s.store != nil,
		Lessons:    s.store.Len(),
		Source:     s.store.Source(),
		WeekAStart: s.cal.Anchor().Format(dateLayout),
		Timezone:   s.cal.Location().String(),
		Strict:     s.strict,
	}
}

// scanForward walks day by day from the instant, in period order within each
// day, up to the horizon. On the first day a lesson qualifies by start time
// (strictly after, or at-or-after); later days consider every lesson.
func (s *TimetableService) scanForward(from time.Time, strictlyAfter bool, match func(models.Lesson) bool) dto.LessonResult {
	cursor := from
	for i := 0; i < searchHorizonDays; i++ {
		week := s.cal.ParityOf(cursor)
		for _, lesson := range s.store.LessonsFor(s.cal.DayOfWeek(cursor), week) {
			if match != nil && !match(lesson) {
				continue
			}
			if i == 0 {
				minute := minuteOf(from)
				if strictlyAfter && lesson.Start <= minute {
					continue
				}
				if !strictlyAfter && lesson.Start < minute {
					continue
				}
			}
			found := lesson
			return dto.LessonResult{Week: week, Lesson: &found}
		}
		cursor = s.cal.NextDay(cursor)
	}
	return dto.LessonResult{Week: s.cal.ParityOf(from)}
}

func subjectMatches(l models.Lesson, query string) bool {
	return strings.Contains(strings.ToLower(l.Subject), strings.ToLower(query))
}

func minuteOf(t time.Time) models.MinuteOfDay {
	return models.MinuteOfDay(t.Hour()*60 + t.Minute())
}
