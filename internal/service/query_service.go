package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/weekab/timetable-api/internal/dto"
	appErrors "github.com/weekab/timetable-api/pkg/errors"
)

// Method names accepted by Dispatch, compared case-insensitively.
const (
	MethodWeekType = "timetable.weektype"
	MethodDay      = "timetable.day"
	MethodAt       = "timetable.at"
	MethodNext     = "timetable.next"
	MethodFind     = "timetable.find"
	MethodPeriod   = "timetable.period"
	MethodStatus   = "timetable.status"
)

// subjectAliases are the accepted parameter names for a Find subject.
var subjectAliases = []string{"subject", "subj", "lesson", "class"}

// QueryService maps an inbound method name plus loose parameters onto an
// engine call: it validates parameters, resolves date terms and shapes the
// response. Errors come back as typed envelope errors, never as partial
// results.
type QueryService struct {
	engine    *TimetableService
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewQueryService constructs the mapper.
func NewQueryService(engine *TimetableService, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *QueryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{engine: engine, validator: validate, logger: logger, metrics: metrics}
}

// Dispatch routes one query to the engine.
func (s *QueryService) Dispatch(method string, params map[string]interface{}) (interface{}, error) {
	result, err := s.dispatch(strings.ToLower(strings.TrimSpace(method)), params)
	s.metrics.ObserveQuery(strings.ToLower(strings.TrimSpace(method)), err)
	if err != nil {
		s.logger.Debug("query rejected", zap.String("method", method), zap.Error(err))
	}
	return result, err
}

func (s *QueryService) dispatch(method string, params map[string]interface{}) (interface{}, error) {
	switch method {
	case MethodWeekType:
		date, err := s.resolveDate(paramString(params, "date"))
		if err != nil {
			return nil, err
		}
		return s.engine.WeekType(date), nil

	case MethodDay:
		date, err := s.resolveDate(paramString(params, "date"))
		if err != nil {
			return nil, err
		}
		return s.engine.Day(date), nil

	case MethodAt:
		raw := paramString(params, "datetime", "at")
		if raw == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "missing required parameter: datetime")
		}
		t, err := s.engine.cal.ParseDateTime(raw)
		if err != nil {
			return nil, err
		}
		return s.engine.At(t)

	case MethodNext:
		from, err := s.resolveInstant(paramString(params, "from", "datetime"))
		if err != nil {
			return nil, err
		}
		return s.engine.Next(from), nil

	case MethodFind:
		return s.dispatchFind(params)

	case MethodPeriod:
		return s.dispatchPeriod(params)

	case MethodStatus:
		return s.engine.Status(), nil

	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown method %q", method))
	}
}

func (s *QueryService) dispatchFind(params map[string]interface{}) (interface{}, error) {
	query := dto.FindQuery{
		Subject: paramString(params, subjectAliases...),
		Date:    paramString(params, "date"),
		From:    paramString(params, "from", "datetime"),
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			"missing required parameter: subject")
	}

	if query.Date != "" && query.From == "" {
		date, err := s.resolveDate(query.Date)
		if err != nil {
			return nil, err
		}
		return s.engine.FindOn(query.Subject, date), nil
	}

	from, err := s.resolveInstant(query.From)
	if err != nil {
		return nil, err
	}
	return s.engine.FindNext(query.Subject, from), nil
}

func (s *QueryService) dispatchPeriod(params map[string]interface{}) (interface{}, error) {
	query, err := parsePeriodQuery(params)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			"ordinal must be a positive integer or \"last\"")
	}
	if !query.Last && query.Ordinal == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required parameter: ordinal")
	}

	date, err := s.resolveDate(query.Date)
	if err != nil {
		return nil, err
	}
	return s.engine.Period(date, query.Ordinal, query.Last), nil
}

func parsePeriodQuery(params map[string]interface{}) (dto.PeriodQuery, error) {
	query := dto.PeriodQuery{Date: paramString(params, "date")}

	raw, ok := firstParam(params, "ordinal", "period")
	if !ok {
		return query, nil
	}
	switch v := raw.(type) {
	case string:
		if strings.EqualFold(strings.TrimSpace(v), "last") {
			query.Last = true
			return query, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("invalid ordinal %q (expected a positive integer or \"last\")", v))
		}
		query.Ordinal = n
	case float64:
		query.Ordinal = int(v)
	case int:
		query.Ordinal = v
	default:
		return query, appErrors.Clone(appErrors.ErrValidation, "invalid ordinal type")
	}
	if query.Ordinal < 1 {
		return query, appErrors.Clone(appErrors.ErrValidation, "ordinal must be a positive integer")
	}
	return query, nil
}

// resolveDate turns an optional date term into a local calendar day,
// defaulting to today.
func (s *QueryService) resolveDate(raw string) (time.Time, error) {
	now := s.engine.Now()
	if raw == "" {
		return s.engine.cal.Midnight(now), nil
	}
	return s.engine.cal.ResolveRelative(raw, now)
}

// resolveInstant turns an optional ISO datetime into a local instant,
// defaulting to now.
func (s *QueryService) resolveInstant(raw string) (time.Time, error) {
	if raw == "" {
		return s.engine.Now(), nil
	}
	return s.engine.cal.ParseDateTime(raw)
}

// paramString returns the first non-empty string value among the aliases.
func paramString(params map[string]interface{}, keys ...string) string {
	raw, ok := firstParam(params, keys...)
	if !ok {
		return ""
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstParam(params map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := params[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
