package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/jaapa/jaapa-api/internal/models"
	"github.com/jaapa/jaapa-api/pkg/document"
	"github.com/jaapa/jaapa-api/pkg/jobs"
	"github.com/jaapa/jaapa-api/pkg/mailer"
	"github.com/jaapa/jaapa-api/pkg/storage"
)

type receiptRenderer interface {
	Render(receipt document.Receipt) ([]byte, error)
}

type documentStore interface {
	Store(numero string, data []byte) (*storage.DocumentRecord, error)
}

type notificationMailer interface {
	Send(msg mailer.Message) error
}

// NotificationService runs the post-creation pipeline of a request: render
// the receipt, archive it and email it to the applicant. It is driven by
// the jobs dispatcher, outside the creation transaction, so a failure here
// never rolls back a committed request.
type NotificationService struct {
	requests  requestRepository
	persons   personRepository
	addresses addressRepository
	types     serviceTypeFinder
	meters    meterRepository
	installs  installmentScheduler
	renderer  receiptRenderer
	store     documentStore
	mailer    notificationMailer
	logger    *zap.Logger
}

// NewNotificationService constructs the notification pipeline.
func NewNotificationService(
	requests requestRepository,
	persons personRepository,
	addresses addressRepository,
	types serviceTypeFinder,
	meters meterRepository,
	installs installmentScheduler,
	renderer receiptRenderer,
	store documentStore,
	m notificationMailer,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		requests:  requests,
		persons:   persons,
		addresses: addresses,
		types:     types,
		meters:    meters,
		installs:  installs,
		renderer:  renderer,
		store:     store,
		mailer:    m,
		logger:    logger,
	}
}

// Handle processes one queued notification task.
func (s *NotificationService) Handle(ctx context.Context, task jobs.Task) error {
	request, err := s.requests.FindByID(ctx, nil, task.RequestID)
	if err != nil {
		return err
	}
	person, err := s.persons.FindByID(ctx, nil, request.PersonID)
	if err != nil {
		return err
	}
	serviceType, err := s.types.FindByID(ctx, nil, request.ServiceTypeID)
	if err != nil {
		return err
	}
	address, err := s.addresses.FindByID(ctx, nil, request.AddressID)
	if err != nil {
		return err
	}

	receipt := document.Receipt{
		Numero:         request.Numero,
		Fecha:          request.Fecha.Format("2006-01-02"),
		TipoSolicitud:  serviceType.Nombre,
		TipoPago:       string(request.TipoPago),
		Estado:         string(request.Estado),
		MontoTotal:     request.MontoTotal,
		MontoPagado:    request.MontoPagado,
		MontoPendiente: request.MontoPendiente,
		Cedula:         person.Cedula,
		NombreCompleto: person.Nombre + " " + person.Apellido,
		Correo:         person.Correo,
		Barrio:         address.Barrio,
		CallePrincipal: address.CallePrincipal,
	}

	if meter, err := s.meters.FindByRequestID(ctx, nil, request.ID); err == nil {
		receipt.MedidorCodigo = meter.Codigo
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if request.TipoPago == models.PaymentDeferred {
		payments, err := s.installs.ListByRequest(ctx, request.ID)
		if err != nil {
			return err
		}
		for _, p := range payments {
			receipt.Cuotas = append(receipt.Cuotas, document.ReceiptInstallment{
				FechaPago: p.FechaPago.Format("2006-01-02"),
				Monto:     p.MontoPago,
				Estado:    string(p.EstadoPago),
			})
		}
	}

	pdf, err := s.renderer.Render(receipt)
	if err != nil {
		return err
	}
	record, err := s.store.Store(request.Numero, pdf)
	if err != nil {
		return err
	}
	s.logger.Debug("receipt archived",
		zap.String("numero", request.Numero), zap.String("path", record.Path))

	return s.mailer.Send(mailer.Message{
		To:            person.Correo,
		Nombre:        person.Nombre + " " + person.Apellido,
		Numero:        request.Numero,
		TipoSolicitud: serviceType.Nombre,
		PDF:           pdf,
	})
}
