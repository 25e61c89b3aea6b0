package dto

import "github.com/weekab/timetable-api/internal/models"

// QueryRequest is the wire shape of a dispatched query: a method name plus
// loosely typed parameters.
type QueryRequest struct {
	Method string                 `json:"method" validate:"required"`
	Params map[string]interface{} `json:"params"`
}

// WeekResult answers a week-type lookup.
type WeekResult struct {
	Week models.WeekParity `json:"week"`
	Date string            `json:"date"`
}

// DayResult lists one date's lessons in period order.
type DayResult struct {
	Week    models.WeekParity `json:"week"`
	Date    string            `json:"date"`
	Lessons []models.Lesson   `json:"lessons"`
}

// LessonResult carries at most one lesson; a null lesson is a normal
// "nothing scheduled" answer, not an error.
type LessonResult struct {
	Week   models.WeekParity `json:"week"`
	Lesson *models.Lesson    `json:"lesson"`
}

// PeriodResult answers an Nth/last-period lookup.
type PeriodResult struct {
	Week   models.WeekParity `json:"week"`
	Date   string            `json:"date"`
	Lesson *models.Lesson    `json:"lesson"`
}

// StatusResult reports load health and configuration for monitoring.
type StatusResult struct {
	Loaded     bool   `json:"loaded"`
	Lessons    int    `json:"lessons"`
	Source     string `json:"source"`
	WeekAStart string `json:"week_a_start"`
	Timezone   string `json:"timezone"`
	Strict     bool   `json:"strict"`
}

// FindQuery captures the validated parameters of a subject search.
type FindQuery struct {
	Subject string `validate:"required"`
	Date    string
	From    string
}

// PeriodQuery captures the validated parameters of a period lookup.
type PeriodQuery struct {
	Ordinal int `validate:"omitempty,min=1"`
	Last    bool
	Date    string
}
