package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaapa/jaapa-api/internal/service"
	appErrors "github.com/jaapa/jaapa-api/pkg/errors"
	"github.com/jaapa/jaapa-api/pkg/response"
)

// ServiceTypeHandler exposes the catalog endpoints.
type ServiceTypeHandler struct {
	types      *service.ServiceTypeService
	activities *service.ActivityTypeService
}

// NewServiceTypeHandler constructs ServiceTypeHandler.
func NewServiceTypeHandler(types *service.ServiceTypeService, activities *service.ActivityTypeService) *ServiceTypeHandler {
	return &ServiceTypeHandler{types: types, activities: activities}
}

// List godoc
// @Summary List the service catalog
// @Tags Catalogo
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tipos-solicitudes [get]
func (h *ServiceTypeHandler) List(c *gin.Context) {
	types, err := h.types.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}

// Get godoc
// @Summary Get one catalog entry by name
// @Tags Catalogo
// @Produce json
// @Param nombre path string true "Service type name"
// @Success 200 {object} response.Envelope
// @Router /tipos-solicitudes/{nombre} [get]
func (h *ServiceTypeHandler) Get(c *gin.Context) {
	st, err := h.types.Get(c.Request.Context(), c.Param("nombre"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, st, nil)
}

// Create godoc
// @Summary Register a catalog entry
// @Tags Catalogo
// @Accept json
// @Produce json
// @Param payload body service.CreateServiceTypePayload true "Service type payload"
// @Success 201 {object} response.Envelope
// @Router /tipos-solicitudes [post]
func (h *ServiceTypeHandler) Create(c *gin.Context) {
	var payload service.CreateServiceTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	st, err := h.types.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, st)
}

// ListActivities godoc
// @Summary List the activity catalog used by attendance
// @Tags Catalogo
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tipos-actividades [get]
func (h *ServiceTypeHandler) ListActivities(c *gin.Context) {
	types, err := h.activities.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}
