package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weekab/timetable-api/internal/dto"
	"github.com/weekab/timetable-api/internal/service"
	appErrors "github.com/weekab/timetable-api/pkg/errors"
	"github.com/weekab/timetable-api/pkg/response"
)

// TimetableHandler exposes the timetable query endpoints. All parameter
// validation and date parsing happens in the query service; the handler only
// frames the wire exchange.
type TimetableHandler struct {
	queries *service.QueryService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(queries *service.QueryService) *TimetableHandler {
	return &TimetableHandler{queries: queries}
}

// Query dispatches a {"method": ..., "params": {...}} request body.
func (h *TimetableHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.Method == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing method"))
		return
	}
	h.dispatch(c, req.Method, req.Params)
}

// Status reports schedule load health and configuration.
func (h *TimetableHandler) Status(c *gin.Context) {
	h.dispatch(c, service.MethodStatus, nil)
}

// Week returns the A/B label for a date.
func (h *TimetableHandler) Week(c *gin.Context) {
	h.dispatch(c, service.MethodWeekType, queryParams(c, "date"))
}

// Day lists a date's lessons.
func (h *TimetableHandler) Day(c *gin.Context) {
	h.dispatch(c, service.MethodDay, queryParams(c, "date"))
}

// At returns the lesson covering an instant.
func (h *TimetableHandler) At(c *gin.Context) {
	h.dispatch(c, service.MethodAt, queryParams(c, "datetime"))
}

// Next returns the soonest lesson after an instant.
func (h *TimetableHandler) Next(c *gin.Context) {
	h.dispatch(c, service.MethodNext, queryParams(c, "from"))
}

// Find searches lessons by subject.
func (h *TimetableHandler) Find(c *gin.Context) {
	h.dispatch(c, service.MethodFind, queryParams(c, "subject", "subj", "lesson", "class", "date", "from"))
}

// Period returns the Nth or last lesson of a day.
func (h *TimetableHandler) Period(c *gin.Context) {
	h.dispatch(c, service.MethodPeriod, queryParams(c, "ordinal", "period", "date"))
}

func (h *TimetableHandler) dispatch(c *gin.Context, method string, params map[string]interface{}) {
	result, err := h.queries.Dispatch(method, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// queryParams lifts the named query-string values into a dispatch parameter
// map, skipping absent ones.
func queryParams(c *gin.Context, names ...string) map[string]interface{} {
	params := make(map[string]interface{}, len(names))
	for _, name := range names {
		if v := c.Query(name); v != "" {
			params[name] = v
		}
	}
	return params
}
