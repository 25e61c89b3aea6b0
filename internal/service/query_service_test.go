package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekab/timetable-api/internal/dto"
	appErrors "github.com/weekab/timetable-api/pkg/errors"
)

func newQueryFixture(t *testing.T) *QueryService {
	t.Helper()
	engine, _ := testFixture(t)
	return NewQueryService(engine, nil, nil, nil)
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return appErrors.FromError(err).Code
}

func TestDispatchUnknownMethod(t *testing.T) {
	qs := newQueryFixture(t)
	_, err := qs.Dispatch("timetable.teleport", nil)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestDispatchWeekType(t *testing.T) {
	qs := newQueryFixture(t)

	result, err := qs.Dispatch("timetable.weekType", map[string]interface{}{"date": "2025-09-15"})
	require.NoError(t, err)
	week, ok := result.(dto.WeekResult)
	require.True(t, ok)
	assert.Equal(t, "B", string(week.Week))
}

func TestDispatchWeekTypeDefaultsToToday(t *testing.T) {
	qs := newQueryFixture(t)

	// The fixture clock reads Monday 2025-09-08 08:00, a week A day.
	result, err := qs.Dispatch("timetable.weekType", nil)
	require.NoError(t, err)
	week := result.(dto.WeekResult)
	assert.Equal(t, "A", string(week.Week))
	assert.Equal(t, "2025-09-08", week.Date)
}

func TestDispatchDayAcceptsRelativeTerms(t *testing.T) {
	qs := newQueryFixture(t)

	result, err := qs.Dispatch("timetable.day", map[string]interface{}{"date": "tomorrow"})
	require.NoError(t, err)
	day := result.(dto.DayResult)
	assert.Equal(t, "2025-09-09", day.Date)
	require.Len(t, day.Lessons, 1)
	assert.Equal(t, "History", day.Lessons[0].Subject)
}

func TestDispatchDayRejectsMalformedDate(t *testing.T) {
	qs := newQueryFixture(t)
	_, err := qs.Dispatch("timetable.day", map[string]interface{}{"date": "someday"})
	assert.Equal(t, appErrors.ErrDateParse.Code, errCode(t, err))
}

func TestDispatchAtRequiresDatetime(t *testing.T) {
	qs := newQueryFixture(t)
	_, err := qs.Dispatch("timetable.at", nil)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	_, err = qs.Dispatch("timetable.at", map[string]interface{}{"datetime": "nine fifteen"})
	assert.Equal(t, appErrors.ErrDateParse.Code, errCode(t, err))
}

func TestDispatchAt(t *testing.T) {
	qs := newQueryFixture(t)

	result, err := qs.Dispatch("timetable.at", map[string]interface{}{"datetime": "2025-09-08T09:15"})
	require.NoError(t, err)
	found := result.(dto.LessonResult)
	require.NotNil(t, found.Lesson)
	assert.Equal(t, "Maths", found.Lesson.Subject)
}

func TestDispatchNextDefaultsToNow(t *testing.T) {
	qs := newQueryFixture(t)

	// Clock reads 08:00 Monday; the soonest lesson after it is period 1.
	result, err := qs.Dispatch("timetable.next", nil)
	require.NoError(t, err)
	next := result.(dto.LessonResult)
	require.NotNil(t, next.Lesson)
	assert.Equal(t, "Maths", next.Lesson.Subject)
}

func TestDispatchFindRequiresSubject(t *testing.T) {
	qs := newQueryFixture(t)
	_, err := qs.Dispatch("timetable.find", map[string]interface{}{"date": "2025-09-08"})
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestDispatchFindAcceptsSubjectAliases(t *testing.T) {
	qs := newQueryFixture(t)

	for _, alias := range []string{"subject", "subj", "lesson", "class"} {
		result, err := qs.Dispatch("timetable.find", map[string]interface{}{
			alias:  "maths",
			"date": "2025-09-08",
		})
		require.NoError(t, err, alias)
		day, ok := result.(dto.DayResult)
		require.True(t, ok, alias)
		require.Len(t, day.Lessons, 1, alias)
		assert.Equal(t, "Maths", day.Lessons[0].Subject, alias)
	}
}

func TestDispatchFindWithoutDateReturnsSoonestMatch(t *testing.T) {
	qs := newQueryFixture(t)

	result, err := qs.Dispatch("timetable.find", map[string]interface{}{"subject": "history"})
	require.NoError(t, err)
	found, ok := result.(dto.LessonResult)
	require.True(t, ok)
	require.NotNil(t, found.Lesson)
	assert.Equal(t, "History", found.Lesson.Subject)
}

func TestDispatchFindWithFromOverridesDate(t *testing.T) {
	qs := newQueryFixture(t)

	result, err := qs.Dispatch("timetable.find", map[string]interface{}{
		"subject": "history",
		"date":    "2025-09-08",
		"from":    "2025-09-08T09:00",
	})
	require.NoError(t, err)
	_, ok := result.(dto.LessonResult)
	assert.True(t, ok, "from parameter switches find into forward-search mode")
}

func TestDispatchPeriod(t *testing.T) {
	qs := newQueryFixture(t)

	result, err := qs.Dispatch("timetable.period", map[string]interface{}{"ordinal": float64(2)})
	require.NoError(t, err)
	period := result.(dto.PeriodResult)
	require.NotNil(t, period.Lesson)
	assert.Equal(t, "English", period.Lesson.Subject)

	result, err = qs.Dispatch("timetable.period", map[string]interface{}{"period": "last"})
	require.NoError(t, err)
	period = result.(dto.PeriodResult)
	require.NotNil(t, period.Lesson)
	assert.Equal(t, "English", period.Lesson.Subject)
}

func TestDispatchPeriodValidation(t *testing.T) {
	qs := newQueryFixture(t)

	_, err := qs.Dispatch("timetable.period", nil)
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	_, err = qs.Dispatch("timetable.period", map[string]interface{}{"ordinal": "zeroth"})
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))

	_, err = qs.Dispatch("timetable.period", map[string]interface{}{"ordinal": float64(0)})
	assert.Equal(t, appErrors.ErrValidation.Code, errCode(t, err))
}

func TestDispatchStatus(t *testing.T) {
	qs := newQueryFixture(t)

	result, err := qs.Dispatch("TIMETABLE.STATUS", nil)
	require.NoError(t, err)
	status := result.(dto.StatusResult)
	assert.True(t, status.Loaded)
	assert.Equal(t, 4, status.Lessons)
}
