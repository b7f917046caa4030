package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jaapa/jaapa-api/internal/models"
	"github.com/jaapa/jaapa-api/internal/service"
	appErrors "github.com/jaapa/jaapa-api/pkg/errors"
	"github.com/jaapa/jaapa-api/pkg/response"
)

// AttendanceHandler exposes the attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Record godoc
// @Summary Record an attendance session with its attendees
// @Tags Asistencias
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendancePayload true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /asistencias [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var payload service.RecordAttendancePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	session, err := h.attendance.Record(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// List godoc
// @Summary List attendance sessions
// @Tags Asistencias
// @Produce json
// @Param fecha query string false "Exact date (2006-01-02)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /asistencias [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	filter := models.SessionFilter{
		Fecha:     parseDateFilter(c),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	filter.Page, filter.PageSize = parsePagination(c)

	rows, pagination, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Summary godoc
// @Summary Aggregate the filtered attendance set
// @Tags Asistencias
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /asistencias/resumen [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	filter := models.SessionFilter{Fecha: parseDateFilter(c)}

	summary, err := h.attendance.Summary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Details godoc
// @Summary Get one session with its person-joined details
// @Tags Asistencias
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /asistencias/{id} [get]
func (h *AttendanceHandler) Details(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
		return
	}

	session, details, err := h.attendance.SessionDetails(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil, map[string]interface{}{"detalles": details})
}

// PayFine godoc
// @Summary Settle one attendee's absence fine
// @Tags Asistencias
// @Produce json
// @Param id path int true "Session ID"
// @Param detalleId path int true "Detail ID"
// @Success 200 {object} response.Envelope
// @Router /asistencias/{id}/detalles/{detalleId}/pago [put]
func (h *AttendanceHandler) PayFine(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
		return
	}
	detailID, err := strconv.ParseInt(c.Param("detalleId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid detail id"))
		return
	}

	session, err := h.attendance.PayFine(c.Request.Context(), sessionID, detailID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
