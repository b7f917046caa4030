package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/jaapa/jaapa-api/internal/models"
	appErrors "github.com/jaapa/jaapa-api/pkg/errors"
)

type deferredPaymentRepository interface {
	Insert(ctx context.Context, q sqlx.ExtContext, p *models.DeferredPayment) error
	ListByRequest(ctx context.Context, q sqlx.ExtContext, requestID int64) ([]models.DeferredPayment, error)
}

// DeferredPaymentService builds the installment plan of a deferred request.
type DeferredPaymentService struct {
	repo   deferredPaymentRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewDeferredPaymentService constructs the scheduler.
func NewDeferredPaymentService(repo deferredPaymentRepository, logger *zap.Logger) *DeferredPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeferredPaymentService{repo: repo, logger: logger, now: time.Now}
}

const monthlyInstallments = 3

// Schedule creates the four installments of a deferred request on the
// caller's transaction: the upfront amount due today plus three monthly
// installments splitting the remainder evenly. All start PENDIENTE.
func (s *DeferredPaymentService) Schedule(ctx context.Context, tx sqlx.ExtContext, request *models.ServiceRequest, serviceType *models.ServiceType) ([]models.DeferredPayment, error) {
	today := s.now()
	remainder := serviceType.Costo - serviceType.ValorDiferidoInicial
	monthly := remainder / monthlyInstallments

	payments := make([]models.DeferredPayment, 0, monthlyInstallments+1)
	payments = append(payments, models.DeferredPayment{
		FechaPago:  today,
		MontoPago:  serviceType.ValorDiferidoInicial,
		TipoPago:   models.PaymentDeferred,
		EstadoPago: models.PaymentPending,
		RequestID:  request.ID,
	})
	for i := 1; i <= monthlyInstallments; i++ {
		payments = append(payments, models.DeferredPayment{
			FechaPago:  today.AddDate(0, i, 0),
			MontoPago:  monthly,
			TipoPago:   models.PaymentDeferred,
			EstadoPago: models.PaymentPending,
			RequestID:  request.ID,
		})
	}

	for i := range payments {
		if err := s.repo.Insert(ctx, tx, &payments[i]); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule installment")
		}
	}

	s.logger.Debug("installment plan created",
		zap.Int64("request_id", request.ID),
		zap.Float64("upfront", serviceType.ValorDiferidoInicial),
		zap.Float64("monthly", monthly))
	return payments, nil
}

// ListByRequest returns the installments of a request ordered by due date.
func (s *DeferredPaymentService) ListByRequest(ctx context.Context, requestID int64) ([]models.DeferredPayment, error) {
	payments, err := s.repo.ListByRequest(ctx, nil, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list installments")
	}
	return payments, nil
}
