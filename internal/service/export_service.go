package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/weekab/timetable-api/internal/models"
	appErrors "github.com/weekab/timetable-api/pkg/errors"
	"github.com/weekab/timetable-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type lessonLister interface {
	Lessons() []models.Lesson
}

// ExportResult carries rendered bytes plus serving metadata.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ExportService renders the loaded schedule as a downloadable document.
type ExportService struct {
	store  lessonLister
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the defaults.
func NewExportService(store lessonLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{store: store, csv: csv, pdf: pdf, logger: logger}
}

// Render produces the schedule in the requested format, "csv" or "pdf".
func (s *ExportService) Render(format string) (*ExportResult, error) {
	dataset := s.dataset()

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV export")
		}
		return &ExportResult{Data: data, ContentType: "text/csv", Filename: "timetable.csv"}, nil
	case "pdf":
		data, err := s.pdf.Render(dataset, "Weekly Timetable")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF export")
		}
		return &ExportResult{Data: data, ContentType: "application/pdf", Filename: "timetable.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *ExportService) dataset() export.Dataset {
	lessons := make([]models.Lesson, len(s.store.Lessons()))
	copy(lessons, s.store.Lessons())
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].Week != lessons[j].Week {
			return lessons[i].Week < lessons[j].Week
		}
		if lessons[i].Day != lessons[j].Day {
			return lessons[i].Day < lessons[j].Day
		}
		return lessons[i].Period < lessons[j].Period
	})

	rows := make([]map[string]string, 0, len(lessons))
	for _, lesson := range lessons {
		rows = append(rows, map[string]string{
			"week":    string(lesson.Week),
			"day":     lesson.Day.String(),
			"period":  strconv.Itoa(lesson.Period),
			"start":   lesson.Start.String(),
			"end":     lesson.End.String(),
			"subject": lesson.Subject,
			"teacher": lesson.Teacher,
			"room":    lesson.Room,
			"notes":   lesson.Notes,
		})
	}

	return export.Dataset{
		Headers: []string{"week", "day", "period", "start", "end", "subject", "teacher", "room", "notes"},
		Rows:    rows,
	}
}
