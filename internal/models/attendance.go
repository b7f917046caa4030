package models

import "time"

// AttendanceStatus marks whether an attendee showed up.
type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "PRESENTE"
	AttendanceAbsent    AttendanceStatus = "AUSENTE"
	AttendanceJustified AttendanceStatus = "JUSTIFICADO"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceJustified:
		return true
	default:
		return false
	}
}

// FinePaymentStatus tracks settlement of an absence fine.
type FinePaymentStatus string

const (
	FinePending FinePaymentStatus = "PENDIENTE"
	FinePaid    FinePaymentStatus = "PAGADA"
	FinePartial FinePaymentStatus = "PARCIAL"
)

// Valid returns true when the status is a supported value.
func (s FinePaymentStatus) Valid() bool {
	switch s {
	case FinePending, FinePaid, FinePartial:
		return true
	default:
		return false
	}
}

// ActivityType is a cooperative activity (jaapa_tipos_actividades) whose
// valor is the fine charged per absence.
type ActivityType struct {
	ID          int64   `db:"tip_id" json:"id"`
	Nombre      string  `db:"tip_nombre" json:"nombre"`
	Descripcion *string `db:"tip_descripcion" json:"descripcion,omitempty"`
	Valor       float64 `db:"tip_valor" json:"valor"`
}

// AttendanceSession is one attendance-taking event (jaapa_asistencias). The
// three fine totals are derived from the details and only ever written by
// RecomputeTotals.
type AttendanceSession struct {
	ID             int64             `db:"asis_id" json:"id"`
	ServiceTypeID  int64             `db:"tip_sol_id" json:"tipo_solicitud_id"`
	ActivityTypeID int64             `db:"tip_id" json:"tipo_actividad_id"`
	FechaRegistro  *time.Time        `db:"asis_fecha_registro" json:"fecha_registro,omitempty"`
	EstadoMulta    FinePaymentStatus `db:"asis_estado_multa" json:"estado_multa"`
	MultaTotal     float64           `db:"asis_multa_total" json:"multa_total"`
	MultaPagada    float64           `db:"asis_multa_pagada" json:"multa_pagada"`
	MultaPendiente float64           `db:"asis_multa_pendiente" json:"multa_pendiente"`

	Detalles []AttendanceDetail `db:"-" json:"detalles,omitempty"`
}

// RecomputeTotals derives the three fine totals from the details. It is the
// sole writer of these fields.
func (s *AttendanceSession) RecomputeTotals() {
	var total, paid float64
	for _, d := range s.Detalles {
		total += d.Multa
		if d.EstadoPagoMulta == FinePaid {
			paid += d.Multa
		}
	}
	s.MultaTotal = total
	s.MultaPagada = paid
	s.MultaPendiente = total - paid
}

// AttendanceDetail is one attendee row (jaapa_asistencias_detalles). The
// person is referenced by id, not owned.
type AttendanceDetail struct {
	ID              int64             `db:"asis_det_id" json:"id"`
	SessionID       int64             `db:"asis_id" json:"asistencia_id"`
	PersonID        int64             `db:"usu_id" json:"usuario_id"`
	Estado          AttendanceStatus  `db:"asis_det_estado" json:"estado_asistencia"`
	Hora            string            `db:"asis_det_hora" json:"hora"`
	Multa           float64           `db:"asis_det_multa" json:"multa"`
	EstadoPagoMulta FinePaymentStatus `db:"asis_det_estado_pago" json:"estado_pago_multa"`
	FechaPagoMulta  *time.Time        `db:"asis_det_fecha_pago" json:"fecha_pago_multa,omitempty"`
}

// SessionRow is the paginated attendance list projection with type names
// resolved.
type SessionRow struct {
	ID             int64             `db:"asis_id" json:"id"`
	TipoServicio   string            `db:"tipo_servicio" json:"tipo_servicio"`
	TipoActividad  string            `db:"tipo_actividad" json:"tipo_actividad"`
	FechaRegistro  *time.Time        `db:"asis_fecha_registro" json:"fecha_registro,omitempty"`
	EstadoMulta    FinePaymentStatus `db:"asis_estado_multa" json:"estado_multa"`
	MultaTotal     float64           `db:"asis_multa_total" json:"multa_total"`
	MultaPagada    float64           `db:"asis_multa_pagada" json:"multa_pagada"`
	MultaPendiente float64           `db:"asis_multa_pendiente" json:"multa_pendiente"`
}

// SessionDetailView joins a detail row with its person, best effort: a
// missing person leaves the person fields empty instead of failing the call.
type SessionDetailView struct {
	ID              int64             `db:"asis_det_id" json:"id"`
	Estado          AttendanceStatus  `db:"asis_det_estado" json:"estado_asistencia"`
	Hora            string            `db:"asis_det_hora" json:"hora"`
	Multa           float64           `db:"asis_det_multa" json:"multa"`
	EstadoPagoMulta FinePaymentStatus `db:"asis_det_estado_pago" json:"estado_pago_multa"`
	PersonID        *int64            `db:"person_id" json:"usuario_id,omitempty"`
	Cedula          *string           `db:"usu_cedula" json:"cedula,omitempty"`
	Nombre          *string           `db:"usu_nombre" json:"nombre,omitempty"`
	Apellido        *string           `db:"usu_apellido" json:"apellido,omitempty"`
	Celular         *string           `db:"usu_celular" json:"celular,omitempty"`
}

// SessionFilter scopes the paginated attendance view. Only date criteria
// apply here.
type SessionFilter struct {
	Fecha     DateFilter
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// SessionSummary aggregates the filtered attendance set.
type SessionSummary struct {
	TotalSessions  int64   `db:"total_sessions" json:"total_sessions"`
	MultaTotal     float64 `db:"multa_total" json:"multa_total"`
	MultaPagada    float64 `db:"multa_pagada" json:"multa_pagada"`
	MultaPendiente float64 `db:"multa_pendiente" json:"multa_pendiente"`
}
