package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaapa/jaapa-api/internal/models"
)

// DeferredPaymentRepository handles persistence for installment rows.
type DeferredPaymentRepository struct {
	db *sqlx.DB
}

// NewDeferredPaymentRepository constructs the repository.
func NewDeferredPaymentRepository(db *sqlx.DB) *DeferredPaymentRepository {
	return &DeferredPaymentRepository{db: db}
}

func (r *DeferredPaymentRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

// Insert stores one installment. Callers pass the transaction of the
// request creation so the schedule commits atomically with the request.
func (r *DeferredPaymentRepository) Insert(ctx context.Context, q sqlx.ExtContext, p *models.DeferredPayment) error {
	query := `INSERT INTO jaapa_pagos_diferidos (pag_fecha_pago, pag_fecha_pagada, pag_monto_pago,
		pag_tipo_pago, pag_estado_pago, sol_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING pag_id`
	if err := sqlx.GetContext(ctx, r.ext(q), &p.ID, query,
		p.FechaPago, p.FechaPagada, p.MontoPago, p.TipoPago, p.EstadoPago, p.RequestID); err != nil {
		return fmt.Errorf("insert deferred payment: %w", err)
	}
	return nil
}

// ListByRequest returns the installments of a request ordered by due date.
func (r *DeferredPaymentRepository) ListByRequest(ctx context.Context, q sqlx.ExtContext, requestID int64) ([]models.DeferredPayment, error) {
	query := `SELECT pag_id, pag_fecha_pago, pag_fecha_pagada, pag_monto_pago, pag_tipo_pago, pag_estado_pago, sol_id
		FROM jaapa_pagos_diferidos WHERE sol_id = $1 ORDER BY pag_fecha_pago`
	payments := []models.DeferredPayment{}
	if err := sqlx.SelectContext(ctx, r.ext(q), &payments, query, requestID); err != nil {
		return nil, fmt.Errorf("list deferred payments: %w", err)
	}
	return payments, nil
}
