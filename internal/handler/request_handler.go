package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaapa/jaapa-api/internal/models"
	"github.com/jaapa/jaapa-api/internal/service"
	appErrors "github.com/jaapa/jaapa-api/pkg/errors"
	"github.com/jaapa/jaapa-api/pkg/response"
)

// RequestHandler exposes the service-request endpoints.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// parseDateFilter reads the mutually exclusive date criteria from the query
// string. All dates use the 2006-01-02 layout.
func parseDateFilter(c *gin.Context) models.DateFilter {
	var f models.DateFilter
	f.IsBlank = c.Query("fechaIsBlank") == "true"
	f.IsNotBlank = c.Query("fechaIsNotBlank") == "true"
	parse := func(key string) *time.Time {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			return nil
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil
		}
		return &t
	}
	f.NotEqual = parse("fechaNotEqual")
	f.Equals = parse("fecha")
	f.From = parse("fechaDesde")
	f.To = parse("fechaHasta")
	return f
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	return page, size
}

// Create godoc
// @Summary Register a service request
// @Tags Solicitudes
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /solicitudes [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var payload service.CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payload.Channel = models.ChannelWeb
	if c.GetHeader("X-Canal") == string(models.ChannelInPerson) {
		payload.Channel = models.ChannelInPerson
	}

	detail, err := h.requests.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// List godoc
// @Summary List service requests
// @Tags Solicitudes
// @Produce json
// @Param estado query string false "Exact estado"
// @Param estadoContains query string false "Estado substring"
// @Param numero query string false "Request number"
// @Param cedula query string false "Applicant cedula"
// @Param fecha query string false "Exact date (2006-01-02)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /solicitudes [get]
func (h *RequestHandler) List(c *gin.Context) {
	filter := models.RequestFilter{
		Estado:         strings.TrimSpace(c.Query("estado")),
		EstadoContains: strings.TrimSpace(c.Query("estadoContains")),
		Fecha:          parseDateFilter(c),
		Numero:         strings.TrimSpace(c.Query("numero")),
		Cedula:         strings.TrimSpace(c.Query("cedula")),
		SortBy:         c.Query("sort"),
		SortOrder:      c.Query("order"),
	}
	filter.Page, filter.PageSize = parsePagination(c)

	rows, pagination, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Summary godoc
// @Summary Aggregate the filtered request set
// @Tags Solicitudes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /solicitudes/resumen [get]
func (h *RequestHandler) Summary(c *gin.Context) {
	filter := models.RequestFilter{
		Estado:         strings.TrimSpace(c.Query("estado")),
		EstadoContains: strings.TrimSpace(c.Query("estadoContains")),
		Fecha:          parseDateFilter(c),
		Numero:         strings.TrimSpace(c.Query("numero")),
		Cedula:         strings.TrimSpace(c.Query("cedula")),
	}

	summary, err := h.requests.Summary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Detail godoc
// @Summary Get one request with its member, address, meter and installments
// @Tags Solicitudes
// @Produce json
// @Param numero path string true "Request number"
// @Success 200 {object} response.Envelope
// @Router /solicitudes/{numero} [get]
func (h *RequestHandler) Detail(c *gin.Context) {
	detail, payments, err := h.requests.Detail(c.Request.Context(), c.Param("numero"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{}
	if len(payments) > 0 {
		meta["pagos_diferidos"] = payments
	}
	response.JSON(c, http.StatusOK, detail, nil, meta)
}

type updateCertificatePayload struct {
	URL string `json:"url_certificado" binding:"required"`
}

// UpdateCertificate godoc
// @Summary Attach the final certificate and complete the request
// @Tags Solicitudes
// @Accept json
// @Produce json
// @Param numero path string true "Request number"
// @Param payload body updateCertificatePayload true "Certificate URL"
// @Success 200 {object} response.Envelope
// @Router /solicitudes/{numero}/certificado [put]
func (h *RequestHandler) UpdateCertificate(c *gin.Context) {
	var payload updateCertificatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	request, err := h.requests.UpdateCertificate(c.Request.Context(), c.Param("numero"), payload.URL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
