package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/jaapa/jaapa-api/internal/models"
	"github.com/jaapa/jaapa-api/internal/repository"
	"github.com/jaapa/jaapa-api/pkg/cedula"
	appErrors "github.com/jaapa/jaapa-api/pkg/errors"
)

type requestRepository interface {
	BeginTx(ctx context.Context) (repository.Tx, error)
	Insert(ctx context.Context, q sqlx.ExtContext, req *models.ServiceRequest) error
	Refresh(ctx context.Context, q sqlx.ExtContext, req *models.ServiceRequest) error
	FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.ServiceRequest, error)
	FindByNumero(ctx context.Context, q sqlx.ExtContext, numero string) (*models.ServiceRequest, error)
	UpdateCertificado(ctx context.Context, q sqlx.ExtContext, id int64, url string) error
	List(ctx context.Context, f models.RequestFilter) ([]models.RequestRow, int64, error)
	Summary(ctx context.Context, f models.RequestFilter) (*models.RequestSummary, error)
}

type personRepository interface {
	FindByCedula(ctx context.Context, q sqlx.ExtContext, cedula string) (*models.Person, error)
	FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Person, error)
	Insert(ctx context.Context, q sqlx.ExtContext, person *models.Person) error
	UpdateChannel(ctx context.Context, q sqlx.ExtContext, id int64, channel models.RegistrationChannel) error
}

type addressRepository interface {
	Insert(ctx context.Context, q sqlx.ExtContext, address *models.Address) error
	FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Address, error)
}

type serviceTypeFinder interface {
	FindByNombre(ctx context.Context, q sqlx.ExtContext, nombre string) (*models.ServiceType, error)
	FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.ServiceType, error)
}

type meterRepository interface {
	Insert(ctx context.Context, q sqlx.ExtContext, meter *models.Meter) error
	FindByRequestID(ctx context.Context, q sqlx.ExtContext, requestID int64) (*models.Meter, error)
}

type installmentScheduler interface {
	Schedule(ctx context.Context, tx sqlx.ExtContext, request *models.ServiceRequest, serviceType *models.ServiceType) ([]models.DeferredPayment, error)
	ListByRequest(ctx context.Context, requestID int64) ([]models.DeferredPayment, error)
}

type notifier interface {
	Enqueue(requestID int64) error
}

// CreateRequestPayload is the inbound shape of a request registration.
type CreateRequestPayload struct {
	Cedula          string  `json:"cedula" validate:"required"`
	Nombre          string  `json:"nombre" validate:"required"`
	Apellido        string  `json:"apellido" validate:"required"`
	FechaNacimiento *string `json:"fecha_nacimiento"`
	Telefono        *string `json:"telefono"`
	Celular         string  `json:"celular" validate:"required"`
	Correo          string  `json:"correo" validate:"required,email"`

	CallePrincipal  string  `json:"calle_principal" validate:"required"`
	CalleSecundaria *string `json:"calle_secundaria"`
	Referencia      *string `json:"referencia"`
	Barrio          string  `json:"barrio" validate:"required"`

	TipoSolicitud string  `json:"tipo_solicitud" validate:"required"`
	TipoPago      string  `json:"tipo_pago" validate:"required"`
	MontoPagado   float64 `json:"monto_pagado" validate:"gte=0"`

	MedidorCodigo string `json:"medidor_codigo"`
	MedidorMarca  string `json:"medidor_marca"`
	MedidorModelo string `json:"medidor_modelo"`

	Channel models.RegistrationChannel `json:"-"`
}

// RequestService drives the service-request lifecycle.
type RequestService struct {
	requests    requestRepository
	persons     personRepository
	addresses   addressRepository
	types       serviceTypeFinder
	meters      meterRepository
	installs    installmentScheduler
	notifier    notifier
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewRequestService constructs the request service.
func NewRequestService(
	requests requestRepository,
	persons personRepository,
	addresses addressRepository,
	types serviceTypeFinder,
	meters meterRepository,
	installs installmentScheduler,
	notifier notifier,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		requests:  requests,
		persons:   persons,
		addresses: addresses,
		types:     types,
		meters:    meters,
		installs:  installs,
		notifier:  notifier,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

const requestSummaryCacheKey = "jaapa:requests:summary"

// Create registers a service request end to end: validates the applicant's
// cedula, resolves the catalog entry, enforces the payment-type policy and
// commits person, address, request, installment plan and meter in one
// transaction. The persisted numero is read back before returning.
func (s *RequestService) Create(ctx context.Context, payload CreateRequestPayload) (*models.RequestDetail, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	if err := cedula.Validate(payload.Cedula); err != nil {
		return nil, err
	}

	tipoPago := models.PaymentType(payload.TipoPago)
	if !tipoPago.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tipo de pago no soportado")
	}

	serviceType, err := s.types.FindByNombre(ctx, nil, payload.TipoSolicitud)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tipo de solicitud no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service type")
	}

	// DIFERIDO is only offered for water connections; TOTAL covers both
	// water and sewer. Anything else is a policy violation.
	deferred := tipoPago == models.PaymentDeferred
	if deferred && !serviceType.IsWater() {
		return nil, appErrors.Clone(appErrors.ErrPolicy, "el pago diferido solo aplica al servicio de agua")
	}
	if serviceType.IsWater() && strings.TrimSpace(payload.MedidorCodigo) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "el código del medidor es obligatorio para el servicio de agua")
	}

	tx, err := s.requests.BeginTx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	detail, err := s.createInTx(ctx, tx, payload, tipoPago, serviceType)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit request")
	}

	s.cache.Invalidate(ctx, requestSummaryCacheKey)
	if s.notifier != nil {
		if err := s.notifier.Enqueue(detail.Request.ID); err != nil {
			s.logger.Warn("notification enqueue failed",
				zap.Int64("request_id", detail.Request.ID), zap.Error(err))
		}
	}

	s.logger.Info("request created",
		zap.String("numero", detail.Request.Numero),
		zap.String("tipo_pago", string(tipoPago)),
		zap.String("servicio", serviceType.Nombre))
	return detail, nil
}

func (s *RequestService) createInTx(ctx context.Context, tx repository.Tx, payload CreateRequestPayload, tipoPago models.PaymentType, serviceType *models.ServiceType) (*models.RequestDetail, error) {
	person, err := s.resolvePerson(ctx, tx, payload)
	if err != nil {
		return nil, err
	}

	address := &models.Address{
		CallePrincipal:  payload.CallePrincipal,
		CalleSecundaria: strVal(payload.CalleSecundaria),
		Referencia:      strVal(payload.Referencia),
		Barrio:          payload.Barrio,
		Channel:         payload.Channel,
	}
	address.Normalize()
	if err := s.addresses.Insert(ctx, tx, address); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store address")
	}

	request := &models.ServiceRequest{
		TipoPago:       tipoPago,
		Fecha:          s.now(),
		Estado:         models.RequestInProcess,
		EstadoPago:     models.PaymentPending,
		MontoPagado:    payload.MontoPagado,
		MontoPendiente: serviceType.Costo,
		MontoTotal:     serviceType.Costo,
		Channel:        payload.Channel,
		PersonID:       person.ID,
		AddressID:      address.ID,
		ServiceTypeID:  serviceType.ID,
	}
	if err := s.requests.Insert(ctx, tx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store request")
	}
	// The numero comes from a trigger on first insert; read it back inside
	// the same transaction so the caller gets the final value.
	if err := s.requests.Refresh(ctx, tx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload request")
	}
	if request.Numero == "" {
		return nil, appErrors.Clone(appErrors.ErrPolicy, "no se pudo asignar el número de solicitud")
	}

	if tipoPago == models.PaymentDeferred {
		if _, err := s.installs.Schedule(ctx, tx, request, serviceType); err != nil {
			return nil, err
		}
	}

	var meter *models.Meter
	if serviceType.IsWater() {
		meter = &models.Meter{
			Codigo:    payload.MedidorCodigo,
			Marca:     payload.MedidorMarca,
			Modelo:    payload.MedidorModelo,
			Estado:    models.StatusActive,
			Channel:   payload.Channel,
			PersonID:  &person.ID,
			RequestID: &request.ID,
		}
		meter.Normalize()
		if err := s.meters.Insert(ctx, tx, meter); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store meter")
		}
	}

	return &models.RequestDetail{
		Request:     *request,
		Person:      *person,
		Address:     *address,
		ServiceType: *serviceType,
		Meter:       meter,
	}, nil
}

// resolvePerson reuses an existing member by cedula or registers a new one.
// An existing member is retagged with the current registration channel.
func (s *RequestService) resolvePerson(ctx context.Context, tx repository.Tx, payload CreateRequestPayload) (*models.Person, error) {
	person, err := s.persons.FindByCedula(ctx, tx, payload.Cedula)
	if err == nil {
		if person.Channel != payload.Channel {
			if err := s.persons.UpdateChannel(ctx, tx, person.ID, payload.Channel); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update member")
			}
			person.Channel = payload.Channel
		}
		return person, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}

	var birthDate *time.Time
	if payload.FechaNacimiento != nil && *payload.FechaNacimiento != "" {
		parsed, err := time.Parse("2006-01-02", *payload.FechaNacimiento)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "fecha de nacimiento inválida")
		}
		birthDate = &parsed
	}

	person = &models.Person{
		Cedula:    payload.Cedula,
		Nombre:    payload.Nombre,
		Apellido:  payload.Apellido,
		BirthDate: birthDate,
		Telefono:  payload.Telefono,
		Celular:   payload.Celular,
		Correo:    payload.Correo,
		Estado:    models.StatusActive,
		Channel:   payload.Channel,
	}
	person.Normalize()
	if err := s.persons.Insert(ctx, tx, person); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register member")
	}
	return person, nil
}

// Detail returns the full projection of a request found by its numero.
func (s *RequestService) Detail(ctx context.Context, numero string) (*models.RequestDetail, []models.DeferredPayment, error) {
	request, err := s.requests.FindByNumero(ctx, nil, numero)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "solicitud no encontrada")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	person, err := s.persons.FindByID(ctx, nil, request.PersonID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	address, err := s.addresses.FindByID(ctx, nil, request.AddressID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load address")
	}
	serviceType, err := s.types.FindByID(ctx, nil, request.ServiceTypeID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service type")
	}

	var meter *models.Meter
	if m, err := s.meters.FindByRequestID(ctx, nil, request.ID); err == nil {
		meter = m
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meter")
	}

	var payments []models.DeferredPayment
	if request.TipoPago == models.PaymentDeferred {
		payments, err = s.installs.ListByRequest(ctx, request.ID)
		if err != nil {
			return nil, nil, err
		}
	}

	return &models.RequestDetail{
		Request:     *request,
		Person:      *person,
		Address:     *address,
		ServiceType: *serviceType,
		Meter:       meter,
	}, payments, nil
}

// List returns one page of the request grid. A malformed cedula filter is
// rejected, an unknown estado short circuits to an empty page instead of
// querying.
func (s *RequestService) List(ctx context.Context, filter models.RequestFilter) ([]models.RequestRow, *models.Pagination, error) {
	if err := cedula.ValidateIfPresent(filter.Cedula); err != nil {
		return nil, nil, err
	}
	if filter.Estado != "" && !models.RequestStatus(filter.Estado).Valid() {
		page, size, _ := normalizePage(filter.Page, filter.PageSize)
		return []models.RequestRow{}, &models.Pagination{Page: page, PageSize: size, TotalCount: 0}, nil
	}

	rows, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	page, size, _ := normalizePage(filter.Page, filter.PageSize)
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: int(total)}, nil
}

// Summary aggregates the filtered request set. The unfiltered view is
// served from cache when fresh.
func (s *RequestService) Summary(ctx context.Context, filter models.RequestFilter) (*models.RequestSummary, error) {
	if err := cedula.ValidateIfPresent(filter.Cedula); err != nil {
		return nil, err
	}
	if filter.Estado != "" && !models.RequestStatus(filter.Estado).Valid() {
		return &models.RequestSummary{}, nil
	}

	unfiltered := filter.Estado == "" && filter.EstadoContains == "" &&
		filter.Fecha.Empty() && filter.Numero == "" && filter.Cedula == ""
	if unfiltered {
		var cached models.RequestSummary
		if s.cache.GetJSON(ctx, requestSummaryCacheKey, &cached) {
			return &cached, nil
		}
	}

	summary, err := s.requests.Summary(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build summary")
	}
	if unfiltered {
		s.cache.SetJSON(ctx, requestSummaryCacheKey, summary)
	}
	return summary, nil
}

// UpdateCertificate stores the certificate URL of a request and moves it to
// COMPLETADA. Re-running it for the same request only swaps the URL.
func (s *RequestService) UpdateCertificate(ctx context.Context, numero, url string) (*models.ServiceRequest, error) {
	if url == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "la URL del certificado es obligatoria")
	}
	request, err := s.requests.FindByNumero(ctx, nil, numero)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "solicitud no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	if err := s.requests.UpdateCertificado(ctx, nil, request.ID, url); err != nil {
		if errors.Is(err, repository.ErrNoRowsUpdated) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "solicitud no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update certificate")
	}

	request.URLCertificado = &url
	request.Estado = models.RequestCompleted
	s.cache.Invalidate(ctx, requestSummaryCacheKey)
	return request, nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func normalizePage(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}
	return page, size, (page - 1) * size
}
