package models

import "time"

// DeferredPayment is one installment of a deferred request
// (jaapa_pagos_diferidos). Exactly four exist per deferred request: the
// upfront amount due today plus three monthly installments.
type DeferredPayment struct {
	ID          int64         `db:"pag_id" json:"id"`
	FechaPago   time.Time     `db:"pag_fecha_pago" json:"fecha_pago"`
	FechaPagada *time.Time    `db:"pag_fecha_pagada" json:"fecha_pagada,omitempty"`
	MontoPago   float64       `db:"pag_monto_pago" json:"monto_pago"`
	TipoPago    PaymentType   `db:"pag_tipo_pago" json:"tipo_pago"`
	EstadoPago  PaymentStatus `db:"pag_estado_pago" json:"estado_pago"`
	RequestID   int64         `db:"sol_id" json:"solicitud_id"`
}
