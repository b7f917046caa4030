package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jaapa/jaapa-api/internal/models"
	"github.com/jaapa/jaapa-api/internal/repository"
	appErrors "github.com/jaapa/jaapa-api/pkg/errors"
)

// validCedula passes the checksum: province 17, third digit 1.
const validCedula = "1710034065"

type fakeTx struct {
	sqlx.ExtContext
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit() error   { t.committed = true; return nil }
func (t *fakeTx) Rollback() error { t.rolledBack = true; return nil }

type mockRequestRepo struct {
	tx        *fakeTx
	requests  map[int64]models.ServiceRequest
	nextID    int64
	listRows  []models.RequestRow
	listTotal int64
	summary   models.RequestSummary
	listCalls int
	updated   map[int64]string
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{
		tx:       &fakeTx{},
		requests: make(map[int64]models.ServiceRequest),
		updated:  make(map[int64]string),
	}
}

func (m *mockRequestRepo) BeginTx(ctx context.Context) (repository.Tx, error) {
	return m.tx, nil
}

func (m *mockRequestRepo) Insert(ctx context.Context, q sqlx.ExtContext, req *models.ServiceRequest) error {
	m.nextID++
	req.ID = m.nextID
	m.requests[req.ID] = *req
	return nil
}

func (m *mockRequestRepo) Refresh(ctx context.Context, q sqlx.ExtContext, req *models.ServiceRequest) error {
	req.Numero = fmt.Sprintf("SOL-%05d", req.ID)
	stored := m.requests[req.ID]
	stored.Numero = req.Numero
	m.requests[req.ID] = stored
	return nil
}

func (m *mockRequestRepo) FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.ServiceRequest, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRequestRepo) FindByNumero(ctx context.Context, q sqlx.ExtContext, numero string) (*models.ServiceRequest, error) {
	for _, r := range m.requests {
		if r.Numero == numero {
			found := r
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockRequestRepo) UpdateCertificado(ctx context.Context, q sqlx.ExtContext, id int64, url string) error {
	if _, ok := m.requests[id]; !ok {
		return repository.ErrNoRowsUpdated
	}
	m.updated[id] = url
	stored := m.requests[id]
	stored.URLCertificado = &url
	stored.Estado = models.RequestCompleted
	m.requests[id] = stored
	return nil
}

func (m *mockRequestRepo) List(ctx context.Context, f models.RequestFilter) ([]models.RequestRow, int64, error) {
	m.listCalls++
	return m.listRows, m.listTotal, nil
}

func (m *mockRequestRepo) Summary(ctx context.Context, f models.RequestFilter) (*models.RequestSummary, error) {
	s := m.summary
	return &s, nil
}

type mockPersonRepo struct {
	byCedula map[string]models.Person
	nextID   int64
	channels map[int64]models.RegistrationChannel
}

func newMockPersonRepo() *mockPersonRepo {
	return &mockPersonRepo{
		byCedula: make(map[string]models.Person),
		channels: make(map[int64]models.RegistrationChannel),
	}
}

func (m *mockPersonRepo) FindByCedula(ctx context.Context, q sqlx.ExtContext, cedula string) (*models.Person, error) {
	if p, ok := m.byCedula[cedula]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPersonRepo) FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Person, error) {
	for _, p := range m.byCedula {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockPersonRepo) Insert(ctx context.Context, q sqlx.ExtContext, person *models.Person) error {
	m.nextID++
	person.ID = m.nextID
	m.byCedula[person.Cedula] = *person
	return nil
}

func (m *mockPersonRepo) UpdateChannel(ctx context.Context, q sqlx.ExtContext, id int64, channel models.RegistrationChannel) error {
	m.channels[id] = channel
	return nil
}

type mockAddressRepo struct {
	nextID    int64
	addresses map[int64]models.Address
}

func newMockAddressRepo() *mockAddressRepo {
	return &mockAddressRepo{addresses: make(map[int64]models.Address)}
}

func (m *mockAddressRepo) Insert(ctx context.Context, q sqlx.ExtContext, address *models.Address) error {
	m.nextID++
	address.ID = m.nextID
	m.addresses[address.ID] = *address
	return nil
}

func (m *mockAddressRepo) FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Address, error) {
	if a, ok := m.addresses[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

type mockServiceTypeRepo struct {
	byNombre map[string]models.ServiceType
}

func (m *mockServiceTypeRepo) FindByNombre(ctx context.Context, q sqlx.ExtContext, nombre string) (*models.ServiceType, error) {
	if st, ok := m.byNombre[nombre]; ok {
		return &st, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockServiceTypeRepo) FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.ServiceType, error) {
	for _, st := range m.byNombre {
		if st.ID == id {
			found := st
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockMeterRepo struct {
	meters []models.Meter
}

func (m *mockMeterRepo) Insert(ctx context.Context, q sqlx.ExtContext, meter *models.Meter) error {
	meter.ID = int64(len(m.meters) + 1)
	m.meters = append(m.meters, *meter)
	return nil
}

func (m *mockMeterRepo) FindByRequestID(ctx context.Context, q sqlx.ExtContext, requestID int64) (*models.Meter, error) {
	for _, meter := range m.meters {
		if meter.RequestID != nil && *meter.RequestID == requestID {
			found := meter
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockScheduler struct {
	scheduled []models.DeferredPayment
	calls     int
}

func (m *mockScheduler) Schedule(ctx context.Context, tx sqlx.ExtContext, request *models.ServiceRequest, serviceType *models.ServiceType) ([]models.DeferredPayment, error) {
	m.calls++
	upfront := models.DeferredPayment{
		MontoPago: serviceType.ValorDiferidoInicial, RequestID: request.ID,
		TipoPago: models.PaymentDeferred, EstadoPago: models.PaymentPending,
	}
	m.scheduled = append(m.scheduled, upfront)
	return m.scheduled, nil
}

func (m *mockScheduler) ListByRequest(ctx context.Context, requestID int64) ([]models.DeferredPayment, error) {
	return m.scheduled, nil
}

type mockNotifier struct {
	enqueued []int64
}

func (m *mockNotifier) Enqueue(requestID int64) error {
	m.enqueued = append(m.enqueued, requestID)
	return nil
}

func waterAndSewerCatalog() *mockServiceTypeRepo {
	return &mockServiceTypeRepo{byNombre: map[string]models.ServiceType{
		models.ServiceWater: {
			ID: 1, Nombre: models.ServiceWater, Costo: 120, ValorDiferidoInicial: 30,
		},
		models.ServiceSewer: {
			ID: 2, Nombre: models.ServiceSewer, Costo: 80,
		},
	}}
}

func newRequestService(requests *mockRequestRepo, persons *mockPersonRepo, types *mockServiceTypeRepo, meters *mockMeterRepo, scheduler *mockScheduler, notifier *mockNotifier) *RequestService {
	return NewRequestService(
		requests, persons, newMockAddressRepo(), types, meters, scheduler, notifier,
		NewCacheService(nil, 0, zap.NewNop()), validator.New(), zap.NewNop(),
	)
}

func basePayload() CreateRequestPayload {
	return CreateRequestPayload{
		Cedula:         validCedula,
		Nombre:         "Maria",
		Apellido:       "Quishpe",
		Celular:        "0991234567",
		Correo:         "maria@example.com",
		CallePrincipal: "Av. Amazonas",
		Barrio:         "Centro",
		TipoSolicitud:  models.ServiceWater,
		TipoPago:       string(models.PaymentDeferred),
		MedidorCodigo:  "MTR-77",
		MedidorMarca:   "Elster",
		MedidorModelo:  "V100",
		Channel:        models.ChannelWeb,
	}
}

func TestRequestServiceCreateDeferredWater(t *testing.T) {
	requests := newMockRequestRepo()
	persons := newMockPersonRepo()
	meters := &mockMeterRepo{}
	scheduler := &mockScheduler{}
	notifier := &mockNotifier{}
	svc := newRequestService(requests, persons, waterAndSewerCatalog(), meters, scheduler, notifier)

	detail, err := svc.Create(context.Background(), basePayload())
	require.NoError(t, err)

	assert.Equal(t, "SOL-00001", detail.Request.Numero)
	assert.Equal(t, models.RequestInProcess, detail.Request.Estado)
	assert.Equal(t, models.PaymentPending, detail.Request.EstadoPago)
	assert.Equal(t, 120.0, detail.Request.MontoTotal)
	assert.Equal(t, 120.0, detail.Request.MontoPendiente)
	assert.Zero(t, detail.Request.MontoPagado)

	assert.Equal(t, 1, scheduler.calls)
	require.NotNil(t, detail.Meter)
	assert.Equal(t, "MTR-77", detail.Meter.Codigo)
	assert.True(t, requests.tx.committed)
	assert.False(t, requests.tx.rolledBack)
	assert.Equal(t, []int64{detail.Request.ID}, notifier.enqueued)
	assert.Equal(t, "MARIA", detail.Person.Nombre)
}

func TestRequestServiceCreateDeferredSewerRejected(t *testing.T) {
	requests := newMockRequestRepo()
	scheduler := &mockScheduler{}
	svc := newRequestService(requests, newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, scheduler, &mockNotifier{})

	payload := basePayload()
	payload.TipoSolicitud = models.ServiceSewer

	_, err := svc.Create(context.Background(), payload)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPolicy.Code, appErr.Code)
	assert.Zero(t, scheduler.calls)
	assert.Empty(t, requests.requests)
}

func TestRequestServiceCreateTotalSewer(t *testing.T) {
	requests := newMockRequestRepo()
	meters := &mockMeterRepo{}
	scheduler := &mockScheduler{}
	svc := newRequestService(requests, newMockPersonRepo(), waterAndSewerCatalog(), meters, scheduler, &mockNotifier{})

	payload := basePayload()
	payload.TipoSolicitud = models.ServiceSewer
	payload.TipoPago = string(models.PaymentTotal)

	detail, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, 80.0, detail.Request.MontoTotal)
	assert.Zero(t, scheduler.calls)
	assert.Nil(t, detail.Meter)
	assert.Empty(t, meters.meters)
}

func TestRequestServiceCreateRecordsPaidAmount(t *testing.T) {
	requests := newMockRequestRepo()
	svc := newRequestService(requests, newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	payload := basePayload()
	payload.MontoPagado = 30

	detail, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, 30.0, detail.Request.MontoPagado)
	assert.Equal(t, 120.0, detail.Request.MontoTotal)
	assert.Equal(t, 120.0, detail.Request.MontoPendiente)
	assert.Equal(t, 30.0, requests.requests[detail.Request.ID].MontoPagado)
}

func TestRequestServiceCreateWaterWithoutMeterCode(t *testing.T) {
	requests := newMockRequestRepo()
	svc := newRequestService(requests, newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	payload := basePayload()
	payload.MedidorCodigo = ""

	_, err := svc.Create(context.Background(), payload)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, requests.requests)
}

func TestRequestServiceCreateInvalidCedula(t *testing.T) {
	svc := newRequestService(newMockRequestRepo(), newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	payload := basePayload()
	payload.Cedula = "1710034066"

	_, err := svc.Create(context.Background(), payload)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "IDENTITY_INVALID", appErr.Code)
}

func TestRequestServiceCreateUnknownServiceType(t *testing.T) {
	svc := newRequestService(newMockRequestRepo(), newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	payload := basePayload()
	payload.TipoSolicitud = "RIEGO"

	_, err := svc.Create(context.Background(), payload)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRequestServiceCreateReusesExistingMember(t *testing.T) {
	persons := newMockPersonRepo()
	persons.byCedula[validCedula] = models.Person{
		ID: 42, Cedula: validCedula, Nombre: "MARIA", Channel: models.ChannelInPerson,
	}
	requests := newMockRequestRepo()
	svc := newRequestService(requests, persons, waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	detail, err := svc.Create(context.Background(), basePayload())
	require.NoError(t, err)
	assert.Equal(t, int64(42), detail.Person.ID)
	assert.Equal(t, models.ChannelWeb, persons.channels[42])
	assert.Len(t, persons.byCedula, 1)
}

func TestRequestServiceListUnknownEstado(t *testing.T) {
	requests := newMockRequestRepo()
	requests.listRows = []models.RequestRow{{ID: 1}}
	requests.listTotal = 1
	svc := newRequestService(requests, newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	rows, pagination, err := svc.List(context.Background(), models.RequestFilter{Estado: "CERRADA"})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, pagination.TotalCount)
	assert.Zero(t, requests.listCalls)
}

func TestRequestServiceListMalformedCedulaFilter(t *testing.T) {
	requests := newMockRequestRepo()
	svc := newRequestService(requests, newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	_, _, err := svc.List(context.Background(), models.RequestFilter{Cedula: "1710034066"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "IDENTITY_INVALID", appErr.Code)
	assert.Zero(t, requests.listCalls)
}

func TestRequestServiceSummaryMalformedCedulaFilter(t *testing.T) {
	requests := newMockRequestRepo()
	requests.summary = models.RequestSummary{TotalRequests: 9}
	svc := newRequestService(requests, newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	_, err := svc.Summary(context.Background(), models.RequestFilter{Cedula: "abc"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "IDENTITY_INVALID", appErr.Code)
}

func TestRequestServiceSummaryUnknownEstado(t *testing.T) {
	requests := newMockRequestRepo()
	requests.summary = models.RequestSummary{TotalRequests: 9}
	svc := newRequestService(requests, newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	summary, err := svc.Summary(context.Background(), models.RequestFilter{Estado: "CERRADA"})
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRequests)
}

func TestRequestServiceUpdateCertificate(t *testing.T) {
	requests := newMockRequestRepo()
	svc := newRequestService(requests, newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	detail, err := svc.Create(context.Background(), basePayload())
	require.NoError(t, err)

	updated, err := svc.UpdateCertificate(context.Background(), detail.Request.Numero, "https://docs.jaapa.ec/cert.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, updated.Estado)
	require.NotNil(t, updated.URLCertificado)
	assert.Equal(t, "https://docs.jaapa.ec/cert.pdf", *updated.URLCertificado)

	// A second run only swaps the URL.
	updated, err = svc.UpdateCertificate(context.Background(), detail.Request.Numero, "https://docs.jaapa.ec/cert_v2.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, updated.Estado)
	assert.Equal(t, "https://docs.jaapa.ec/cert_v2.pdf", *updated.URLCertificado)
}

func TestRequestServiceUpdateCertificateNotFound(t *testing.T) {
	svc := newRequestService(newMockRequestRepo(), newMockPersonRepo(), waterAndSewerCatalog(), &mockMeterRepo{}, &mockScheduler{}, &mockNotifier{})

	_, err := svc.UpdateCertificate(context.Background(), "SOL-99999", "https://docs.jaapa.ec/cert.pdf")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRequestServiceDetail(t *testing.T) {
	requests := newMockRequestRepo()
	persons := newMockPersonRepo()
	meters := &mockMeterRepo{}
	scheduler := &mockScheduler{}
	types := waterAndSewerCatalog()
	addresses := newMockAddressRepo()
	svc := NewRequestService(requests, persons, addresses, types, meters, scheduler, &mockNotifier{},
		NewCacheService(nil, 0, zap.NewNop()), validator.New(), zap.NewNop())

	created, err := svc.Create(context.Background(), basePayload())
	require.NoError(t, err)

	detail, payments, err := svc.Detail(context.Background(), created.Request.Numero)
	require.NoError(t, err)
	assert.Equal(t, created.Request.ID, detail.Request.ID)
	assert.Equal(t, models.ServiceWater, detail.ServiceType.Nombre)
	require.NotNil(t, detail.Meter)
	assert.NotEmpty(t, payments)
}
