package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	cases := map[string]Weekday{
		"Mon":       Monday,
		"monday":    Monday,
		"THURSDAY":  Thursday,
		"thu":       Thursday,
		"0":         Monday,
		"6":         Sunday,
		" friday  ": Friday,
	}
	for raw, want := range cases {
		got, ok := ParseWeekday(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "7", "-1", "funday"} {
		_, ok := ParseWeekday(raw)
		assert.False(t, ok, raw)
	}
}

func TestParseWeekParity(t *testing.T) {
	for raw, want := range map[string]WeekParity{"a": WeekA, "B": WeekB, "all": WeekBoth, "Both": WeekBoth} {
		got, ok := ParseWeekParity(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseWeekParity("C")
	assert.False(t, ok)
}

func TestWeekParityMatches(t *testing.T) {
	assert.True(t, WeekBoth.Matches(WeekA))
	assert.True(t, WeekBoth.Matches(WeekB))
	assert.True(t, WeekA.Matches(WeekA))
	assert.False(t, WeekA.Matches(WeekB))
}

func TestParseHHMM(t *testing.T) {
	m, err := ParseHHMM("09:05")
	require.NoError(t, err)
	assert.Equal(t, MinuteOfDay(545), m)
	assert.Equal(t, "09:05", m.String())

	for _, raw := range []string{"9", "24:00", "09:60", "noon", ""} {
		_, err := ParseHHMM(raw)
		assert.Error(t, err, raw)
	}
}

func TestLessonCovers(t *testing.T) {
	l := Lesson{Start: 540, End: 590}
	assert.True(t, l.Covers(540))
	assert.True(t, l.Covers(589))
	assert.False(t, l.Covers(590))
	assert.False(t, l.Covers(539))
}

func TestLessonJSONShape(t *testing.T) {
	l := Lesson{ID: "x", Day: Monday, Week: WeekA, Period: 1, Start: 540, End: 590, Subject: "Maths"}
	raw, err := json.Marshal(l)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Mon", out["day"])
	assert.Equal(t, "09:00", out["start"])
	assert.Equal(t, "09:50", out["end"])
	assert.Equal(t, "A", out["week"])
	_, hasTeacher := out["teacher"]
	assert.False(t, hasTeacher, "empty optional fields are omitted")
}
