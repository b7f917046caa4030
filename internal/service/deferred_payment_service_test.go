package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jaapa/jaapa-api/internal/models"
)

type recordingPaymentRepo struct {
	inserted []models.DeferredPayment
}

func (m *recordingPaymentRepo) Insert(ctx context.Context, q sqlx.ExtContext, p *models.DeferredPayment) error {
	p.ID = int64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, *p)
	return nil
}

func (m *recordingPaymentRepo) ListByRequest(ctx context.Context, q sqlx.ExtContext, requestID int64) ([]models.DeferredPayment, error) {
	return m.inserted, nil
}

func TestDeferredPaymentSchedule(t *testing.T) {
	repo := &recordingPaymentRepo{}
	svc := NewDeferredPaymentService(repo, zap.NewNop())
	today := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return today }

	request := &models.ServiceRequest{ID: 7}
	serviceType := &models.ServiceType{Nombre: models.ServiceWater, Costo: 120, ValorDiferidoInicial: 30}

	payments, err := svc.Schedule(context.Background(), nil, request, serviceType)
	require.NoError(t, err)
	require.Len(t, payments, 4)

	assert.Equal(t, 30.0, payments[0].MontoPago)
	assert.Equal(t, today, payments[0].FechaPago)
	for i := 1; i < 4; i++ {
		assert.Equal(t, 30.0, payments[i].MontoPago)
		assert.Equal(t, today.AddDate(0, i, 0), payments[i].FechaPago)
	}

	var sum float64
	for _, p := range payments {
		sum += p.MontoPago
		assert.Equal(t, models.PaymentDeferred, p.TipoPago)
		assert.Equal(t, models.PaymentPending, p.EstadoPago)
		assert.Equal(t, int64(7), p.RequestID)
	}
	assert.InDelta(t, serviceType.Costo, sum, 1e-9)
	assert.Len(t, repo.inserted, 4)
}

func TestDeferredPaymentScheduleUnevenSplit(t *testing.T) {
	repo := &recordingPaymentRepo{}
	svc := NewDeferredPaymentService(repo, zap.NewNop())

	request := &models.ServiceRequest{ID: 3}
	serviceType := &models.ServiceType{Nombre: models.ServiceWater, Costo: 100, ValorDiferidoInicial: 25}

	payments, err := svc.Schedule(context.Background(), nil, request, serviceType)
	require.NoError(t, err)
	require.Len(t, payments, 4)

	assert.Equal(t, 25.0, payments[0].MontoPago)
	assert.InDelta(t, 25.0, payments[1].MontoPago, 1e-9)

	var sum float64
	for _, p := range payments {
		sum += p.MontoPago
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}
