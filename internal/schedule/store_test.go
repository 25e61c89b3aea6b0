package schedule

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekab/timetable-api/internal/models"
	appErrors "github.com/weekab/timetable-api/pkg/errors"
)

const validCSV = `day,week,period,start,end,subject,teacher,room
Mon,A,1,09:00,09:50,Maths,Mr Hill,M1
Mon,A,2,10:00,10:50,English,,E4
Mon,B,1,09:00,09:50,Physics,,
Tue,ALL,1,09:00,09:50,History,Ms Vale,H2
`

func TestParseValidCSV(t *testing.T) {
	s, err := parse(strings.NewReader(validCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())

	monA := s.LessonsFor(models.Monday, models.WeekA)
	require.Len(t, monA, 2)
	assert.Equal(t, "Maths", monA[0].Subject)
	assert.Equal(t, "Mr Hill", monA[0].Teacher)
	assert.Equal(t, "M1", monA[0].Room)
	assert.Equal(t, "English", monA[1].Subject)
	assert.NotEmpty(t, monA[0].ID)

	monB := s.LessonsFor(models.Monday, models.WeekB)
	require.Len(t, monB, 1)
	assert.Equal(t, "Physics", monB[0].Subject)
}

func TestParseExpandsAllRowsIntoBothWeeks(t *testing.T) {
	s, err := parse(strings.NewReader(validCSV))
	require.NoError(t, err)

	for _, week := range []models.WeekParity{models.WeekA, models.WeekB} {
		lessons := s.LessonsFor(models.Tuesday, week)
		require.Len(t, lessons, 1, "week %s", week)
		assert.Equal(t, "History", lessons[0].Subject)
		assert.Equal(t, models.WeekBoth, lessons[0].Week)
	}
}

func TestParseOrdersByPeriodNotFileOrder(t *testing.T) {
	csv := "day,week,period,start,end,subject\n" +
		"Mon,A,3,11:00,11:50,Art\n" +
		"Mon,A,1,09:00,09:50,Maths\n" +
		"Mon,A,2,10:00,10:50,English\n"
	s, err := parse(strings.NewReader(csv))
	require.NoError(t, err)

	lessons := s.LessonsFor(models.Monday, models.WeekA)
	require.Len(t, lessons, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{lessons[0].Period, lessons[1].Period, lessons[2].Period})
}

func TestParseEmptyDayIsNotAnError(t *testing.T) {
	s, err := parse(strings.NewReader(validCSV))
	require.NoError(t, err)
	assert.Empty(t, s.LessonsFor(models.Friday, models.WeekA))
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"missing required column", "day,week,period,start,end\nMon,A,1,09:00,09:50\n"},
		{"unknown column", "day,week,period,start,end,subject,color\nMon,A,1,09:00,09:50,Maths,blue\n"},
		{"wrong field count", "day,week,period,start,end,subject\nMon,A,1,09:00,09:50\n"},
		{"invalid day", "day,week,period,start,end,subject\nSomeday,A,1,09:00,09:50,Maths\n"},
		{"invalid week", "day,week,period,start,end,subject\nMon,C,1,09:00,09:50,Maths\n"},
		{"non-positive period", "day,week,period,start,end,subject\nMon,A,0,09:00,09:50,Maths\n"},
		{"unparsable time", "day,week,period,start,end,subject\nMon,A,1,9 o'clock,09:50,Maths\n"},
		{"start not before end", "day,week,period,start,end,subject\nMon,A,1,10:00,09:50,Maths\n"},
		{"empty subject", "day,week,period,start,end,subject\nMon,A,1,09:00,09:50,\n"},
		{"duplicate period", "day,week,period,start,end,subject\nMon,A,1,09:00,09:50,Maths\nMon,A,1,10:00,10:50,English\n"},
		{"all row clashes with A row", "day,week,period,start,end,subject\nMon,A,1,09:00,09:50,Maths\nMon,ALL,1,10:00,10:50,English\n"},
		{"overlapping intervals", "day,week,period,start,end,subject\nMon,A,1,09:00,10:30,Maths\nMon,A,2,10:00,10:50,English\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(strings.NewReader(tc.csv))
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrLoad.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestParseAcceptsDayAliasesAndDigits(t *testing.T) {
	csv := "day,week,period,start,end,subject\n" +
		"monday,A,1,09:00,09:50,Maths\n" +
		"2,A,1,09:00,09:50,Chemistry\n"
	s, err := parse(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, s.LessonsFor(models.Monday, models.WeekA), 1)
	wed := s.LessonsFor(models.Wednesday, models.WeekA)
	require.Len(t, wed, 1)
	assert.Equal(t, "Chemistry", wed[0].Subject)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLoad.Code, appErrors.FromError(err).Code)
}
