package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jaapa/jaapa-api/internal/models"
	appErrors "github.com/jaapa/jaapa-api/pkg/errors"
)

type serviceTypeRepository interface {
	serviceTypeFinder
	List(ctx context.Context) ([]models.ServiceType, error)
	Insert(ctx context.Context, st *models.ServiceType) error
}

// CreateServiceTypePayload registers a catalog entry.
type CreateServiceTypePayload struct {
	Nombre               string  `json:"nombre" validate:"required"`
	Descripcion          string  `json:"descripcion"`
	Costo                float64 `json:"costo" validate:"gte=0"`
	ValorDiferidoInicial float64 `json:"valor_diferido_inicial" validate:"gte=0"`
	Condiciones          *string `json:"condiciones"`
	TariffID             *int64  `json:"tarifa_id"`
}

// ServiceTypeService manages the service catalog.
type ServiceTypeService struct {
	repo      serviceTypeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewServiceTypeService constructs the catalog service.
func NewServiceTypeService(repo serviceTypeRepository, validate *validator.Validate, logger *zap.Logger) *ServiceTypeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceTypeService{repo: repo, validator: validate, logger: logger}
}

// List returns the whole catalog.
func (s *ServiceTypeService) List(ctx context.Context) ([]models.ServiceType, error) {
	types, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list service types")
	}
	return types, nil
}

// Get returns one catalog entry by name.
func (s *ServiceTypeService) Get(ctx context.Context, nombre string) (*models.ServiceType, error) {
	st, err := s.repo.FindByNombre(ctx, nil, nombre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tipo de solicitud no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service type")
	}
	return st, nil
}

// Create registers a new catalog entry. The upfront deferred amount cannot
// exceed the total cost.
func (s *ServiceTypeService) Create(ctx context.Context, payload CreateServiceTypePayload) (*models.ServiceType, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service type payload")
	}
	if payload.ValorDiferidoInicial > payload.Costo {
		return nil, appErrors.Clone(appErrors.ErrValidation, "el valor diferido inicial no puede superar el costo")
	}

	st := &models.ServiceType{
		Nombre:               payload.Nombre,
		Descripcion:          payload.Descripcion,
		Costo:                payload.Costo,
		ValorDiferidoInicial: payload.ValorDiferidoInicial,
		Condiciones:          payload.Condiciones,
		FechaCreacion:        time.Now(),
		TariffID:             payload.TariffID,
	}
	st.Normalize()

	if _, err := s.repo.FindByNombre(ctx, nil, st.Nombre); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "tipo de solicitud ya registrado")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check service type")
	}

	if err := s.repo.Insert(ctx, st); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service type")
	}
	s.logger.Info("service type created", zap.String("nombre", st.Nombre))
	return st, nil
}

type activityTypeLister interface {
	activityTypeRepository
	List(ctx context.Context) ([]models.ActivityType, error)
}

// ActivityTypeService exposes the activity catalog used by attendance.
type ActivityTypeService struct {
	repo   activityTypeLister
	logger *zap.Logger
}

// NewActivityTypeService constructs the activity catalog service.
func NewActivityTypeService(repo activityTypeLister, logger *zap.Logger) *ActivityTypeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityTypeService{repo: repo, logger: logger}
}

// List returns every activity type.
func (s *ActivityTypeService) List(ctx context.Context) ([]models.ActivityType, error) {
	types, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity types")
	}
	return types, nil
}
