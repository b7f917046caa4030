package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaapa/jaapa-api/internal/models"
	"github.com/jaapa/jaapa-api/pkg/document"
	"github.com/jaapa/jaapa-api/pkg/jobs"
	"github.com/jaapa/jaapa-api/pkg/mailer"
	"github.com/jaapa/jaapa-api/pkg/storage"
)

type fakeRenderer struct {
	receipt document.Receipt
}

func (f *fakeRenderer) Render(receipt document.Receipt) ([]byte, error) {
	f.receipt = receipt
	return []byte("%PDF-1.3 stub"), nil
}

type fakeStore struct {
	numero string
}

func (f *fakeStore) Store(numero string, data []byte) (*storage.DocumentRecord, error) {
	f.numero = numero
	return &storage.DocumentRecord{Path: "/var/documents/" + numero + ".pdf", Size: int64(len(data))}, nil
}

type fakeMailer struct {
	sent []mailer.Message
}

func (f *fakeMailer) Send(msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type notificationFixtures struct {
	requests  *mockRequestRepo
	persons   *mockPersonRepo
	addresses *mockAddressRepo
	types     *mockServiceTypeRepo
	meters    *mockMeterRepo
	scheduler *mockScheduler
}

func seedNotificationFixtures() notificationFixtures {
	requests := newMockRequestRepo()
	requests.requests[5] = models.ServiceRequest{
		ID: 5, Numero: "SOL-00005", TipoPago: models.PaymentDeferred,
		Fecha: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Estado: models.RequestInProcess, EstadoPago: models.PaymentPending,
		MontoTotal: 120, MontoPendiente: 120,
		PersonID: 1, AddressID: 1, ServiceTypeID: 1,
	}

	persons := newMockPersonRepo()
	persons.byCedula[validCedula] = models.Person{
		ID: 1, Cedula: validCedula, Nombre: "MARIA", Apellido: "QUISHPE",
		Correo: "maria@example.com",
	}

	addresses := newMockAddressRepo()
	addresses.addresses[1] = models.Address{
		ID: 1, CallePrincipal: "AV. AMAZONAS", Barrio: "CENTRO",
	}

	types := &mockServiceTypeRepo{byNombre: map[string]models.ServiceType{
		"AGUA": {ID: 1, Nombre: "AGUA", Costo: 120, ValorDiferidoInicial: 30},
	}}

	requestID := int64(5)
	meters := &mockMeterRepo{meters: []models.Meter{
		{ID: 1, Codigo: "MTR-77", RequestID: &requestID},
	}}

	scheduler := &mockScheduler{scheduled: []models.DeferredPayment{
		{RequestID: 5, MontoPago: 30, FechaPago: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			TipoPago: models.PaymentDeferred, EstadoPago: models.PaymentPending},
		{RequestID: 5, MontoPago: 30, FechaPago: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
			TipoPago: models.PaymentDeferred, EstadoPago: models.PaymentPending},
	}}

	return notificationFixtures{
		requests: requests, persons: persons, addresses: addresses,
		types: types, meters: meters, scheduler: scheduler,
	}
}

func (f notificationFixtures) service(renderer receiptRenderer, store documentStore, m notificationMailer) *NotificationService {
	return NewNotificationService(
		f.requests, f.persons, f.addresses, f.types, f.meters, f.scheduler,
		renderer, store, m, nil,
	)
}

func TestNotificationHandleDeferred(t *testing.T) {
	fixtures := seedNotificationFixtures()
	renderer := &fakeRenderer{}
	store := &fakeStore{}
	mail := &fakeMailer{}

	svc := fixtures.service(renderer, store, mail)

	err := svc.Handle(context.Background(), jobs.Task{RequestID: 5})
	require.NoError(t, err)

	assert.Equal(t, "SOL-00005", renderer.receipt.Numero)
	assert.Equal(t, "2026-03-10", renderer.receipt.Fecha)
	assert.Equal(t, "AGUA", renderer.receipt.TipoSolicitud)
	assert.Equal(t, "MARIA QUISHPE", renderer.receipt.NombreCompleto)
	assert.Equal(t, "CENTRO", renderer.receipt.Barrio)
	assert.Equal(t, "MTR-77", renderer.receipt.MedidorCodigo)
	assert.Len(t, renderer.receipt.Cuotas, 2)
	assert.Equal(t, 30.0, renderer.receipt.Cuotas[0].Monto)

	assert.Equal(t, "SOL-00005", store.numero)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "maria@example.com", mail.sent[0].To)
	assert.Equal(t, "SOL-00005", mail.sent[0].Numero)
	assert.NotEmpty(t, mail.sent[0].PDF)
}

func TestNotificationHandleTotalSkipsInstallments(t *testing.T) {
	fixtures := seedNotificationFixtures()
	stored := fixtures.requests.requests[5]
	stored.TipoPago = models.PaymentTotal
	fixtures.requests.requests[5] = stored

	renderer := &fakeRenderer{}
	svc := fixtures.service(renderer, &fakeStore{}, &fakeMailer{})

	err := svc.Handle(context.Background(), jobs.Task{RequestID: 5})
	require.NoError(t, err)
	assert.Empty(t, renderer.receipt.Cuotas)
}

func TestNotificationHandleUnknownRequest(t *testing.T) {
	fixtures := seedNotificationFixtures()
	svc := fixtures.service(&fakeRenderer{}, &fakeStore{}, &fakeMailer{})

	err := svc.Handle(context.Background(), jobs.Task{RequestID: 99})
	assert.Error(t, err)
}
