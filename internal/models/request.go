package models

import "time"

// PaymentType distinguishes lump-sum from installment payment.
type PaymentType string

const (
	PaymentTotal    PaymentType = "TOTAL"
	PaymentDeferred PaymentType = "DIFERIDO"
)

// Valid returns true when the payment type is a supported value.
func (p PaymentType) Valid() bool {
	return p == PaymentTotal || p == PaymentDeferred
}

// RequestStatus is the service-request state machine:
// EN_PROCESO -> {APROBADA, RECHAZADA} -> COMPLETADA.
type RequestStatus string

const (
	RequestInProcess RequestStatus = "EN_PROCESO"
	RequestApproved  RequestStatus = "APROBADA"
	RequestRejected  RequestStatus = "RECHAZADA"
	RequestCompleted RequestStatus = "COMPLETADA"
)

// Valid returns true when the status is a supported value.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestInProcess, RequestApproved, RequestRejected, RequestCompleted:
		return true
	default:
		return false
	}
}

// PaymentStatus tracks whether the request amounts are settled.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDIENTE"
	PaymentPaid    PaymentStatus = "PAGADO"
)

// ServiceRequest is a water or sewer connection request
// (jaapa_solicitudes). The numero is assigned by the database on first
// insert and read back before the creation call returns.
type ServiceRequest struct {
	ID             int64               `db:"sol_id" json:"id"`
	Numero         string              `db:"sol_numero" json:"numero_solicitud"`
	TipoPago       PaymentType         `db:"sol_tipo_pago" json:"tipo_pago"`
	Fecha          time.Time           `db:"sol_fecha" json:"fecha"`
	Estado         RequestStatus       `db:"sol_estado" json:"estado"`
	EstadoPago     PaymentStatus       `db:"sol_estado_pago" json:"estado_pago"`
	MontoPagado    float64             `db:"sol_monto_pagado" json:"monto_pagado"`
	MontoPendiente float64             `db:"sol_monto_pendiente" json:"monto_pendiente"`
	MontoTotal     float64             `db:"sol_monto_total" json:"monto_total"`
	URLCertificado *string             `db:"sol_url_certificado" json:"url_certificado,omitempty"`
	Channel        RegistrationChannel `db:"sol_tipo_registro" json:"tipo_registro"`
	PersonID       int64               `db:"usu_id" json:"usuario_id"`
	AddressID      int64               `db:"dir_id" json:"direccion_id"`
	ServiceTypeID  int64               `db:"tip_sol_id" json:"tipo_solicitud_id"`
}

// RequestRow is the paginated list projection joining the owning person and
// service type.
type RequestRow struct {
	ID              int64         `db:"sol_id" json:"id"`
	Numero          string        `db:"sol_numero" json:"numero_solicitud"`
	Fecha           time.Time     `db:"sol_fecha" json:"fecha"`
	Estado          RequestStatus `db:"sol_estado" json:"estado"`
	EstadoPago      PaymentStatus `db:"sol_estado_pago" json:"estado_pago"`
	TipoPago        PaymentType   `db:"sol_tipo_pago" json:"tipo_pago"`
	MontoPagado     float64       `db:"sol_monto_pagado" json:"monto_pagado"`
	MontoPendiente  float64       `db:"sol_monto_pendiente" json:"monto_pendiente"`
	MontoTotal      float64       `db:"sol_monto_total" json:"monto_total"`
	Cedula          string        `db:"usu_cedula" json:"cedula"`
	PersonNombre    string        `db:"usu_nombre" json:"nombre"`
	PersonApellido  string        `db:"usu_apellido" json:"apellido"`
	ServiceTypeName string        `db:"tip_sol_nombre" json:"tipo_solicitud"`
}

// RequestDetail joins every entity attached to one request for the detail
// view. Reads use this explicit projection instead of graph traversal.
type RequestDetail struct {
	Request     ServiceRequest `json:"solicitud"`
	Person      Person         `json:"usuario"`
	Address     Address        `json:"direccion"`
	ServiceType ServiceType    `json:"tipo_solicitud"`
	Meter       *Meter         `json:"medidor,omitempty"`
}

// DateFilter captures the mutually exclusive date criteria of the grid
// views. Evaluation priority is fixed: IsBlank > IsNotBlank > NotEqual >
// Equals > Between(From,To) > GreaterThan(From) > LessThan(To).
type DateFilter struct {
	IsBlank    bool
	IsNotBlank bool
	NotEqual   *time.Time
	Equals     *time.Time
	From       *time.Time
	To         *time.Time
}

// Empty reports whether no date criterion is set.
func (f DateFilter) Empty() bool {
	return !f.IsBlank && !f.IsNotBlank && f.NotEqual == nil && f.Equals == nil && f.From == nil && f.To == nil
}

// RequestFilter scopes the paginated request view. Criteria are mutually
// exclusive; the service dispatches on the first populated one.
type RequestFilter struct {
	Estado         string
	EstadoContains string
	Fecha          DateFilter
	Numero         string
	Cedula         string
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// RequestSummary aggregates the filtered request set: row count, monetary
// sums and per-status counts.
type RequestSummary struct {
	TotalRequests        int64   `db:"total_requests" json:"total_requests"`
	TotalCollectedAmount float64 `db:"total_collected_amount" json:"total_collected_amount"`
	PendingAmount        float64 `db:"pending_amount" json:"pending_amount"`
	TotalAmount          float64 `db:"total_amount" json:"total_amount"`
	Aprobadas            int64   `db:"aprobadas" json:"aprobadas"`
	Rechazadas           int64   `db:"rechazadas" json:"rechazadas"`
	EnProceso            int64   `db:"en_proceso" json:"en_proceso"`
	Completadas          int64   `db:"completadas" json:"completadas"`
}
