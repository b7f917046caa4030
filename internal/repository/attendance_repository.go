package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jaapa/jaapa-api/internal/models"
)

// AttendanceRepository handles persistence for attendance sessions and
// their per-person details.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const sessionColumns = `asis_id, tip_sol_id, tip_id, asis_fecha_registro, asis_estado_multa,
	asis_multa_total, asis_multa_pagada, asis_multa_pendiente`

var sessionSortColumns = map[string]string{
	"id":    "a.asis_id",
	"fecha": "a.asis_fecha_registro",
	"multa": "a.asis_multa_total",
}

func (r *AttendanceRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

// BeginTx opens a transaction for a session-plus-details write.
func (r *AttendanceRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

// InsertSession stores the session header and assigns its identifier.
func (r *AttendanceRepository) InsertSession(ctx context.Context, q sqlx.ExtContext, s *models.AttendanceSession) error {
	query := `INSERT INTO jaapa_asistencias (tip_sol_id, tip_id, asis_fecha_registro, asis_estado_multa,
		asis_multa_total, asis_multa_pagada, asis_multa_pendiente)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING asis_id`
	if err := sqlx.GetContext(ctx, r.ext(q), &s.ID, query,
		s.ServiceTypeID, s.ActivityTypeID, s.FechaRegistro, s.EstadoMulta,
		s.MultaTotal, s.MultaPagada, s.MultaPendiente); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// InsertDetail stores one attendee row linked to its session.
func (r *AttendanceRepository) InsertDetail(ctx context.Context, q sqlx.ExtContext, d *models.AttendanceDetail) error {
	query := `INSERT INTO jaapa_asistencias_detalles (asis_id, usu_id, asis_det_estado, asis_det_hora,
		asis_det_multa, asis_det_estado_pago, asis_det_fecha_pago)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING asis_det_id`
	if err := sqlx.GetContext(ctx, r.ext(q), &d.ID, query,
		d.SessionID, d.PersonID, d.Estado, d.Hora, d.Multa, d.EstadoPagoMulta, d.FechaPagoMulta); err != nil {
		return fmt.Errorf("insert detail: %w", err)
	}
	return nil
}

// FindSessionByID returns a session header, or sql.ErrNoRows.
func (r *AttendanceRepository) FindSessionByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.AttendanceSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_asistencias WHERE asis_id = $1`, sessionColumns)
	var s models.AttendanceSession
	if err := sqlx.GetContext(ctx, r.ext(q), &s, query, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListDetails returns the raw detail rows of a session.
func (r *AttendanceRepository) ListDetails(ctx context.Context, q sqlx.ExtContext, sessionID int64) ([]models.AttendanceDetail, error) {
	query := `SELECT asis_det_id, asis_id, usu_id, asis_det_estado, asis_det_hora,
		asis_det_multa, asis_det_estado_pago, asis_det_fecha_pago
		FROM jaapa_asistencias_detalles WHERE asis_id = $1 ORDER BY asis_det_id`
	details := []models.AttendanceDetail{}
	if err := sqlx.SelectContext(ctx, r.ext(q), &details, query, sessionID); err != nil {
		return nil, fmt.Errorf("list details: %w", err)
	}
	return details, nil
}

// SessionDetails joins each detail with its person. The join is a LEFT JOIN
// so a missing person yields empty person fields instead of dropping the row.
func (r *AttendanceRepository) SessionDetails(ctx context.Context, sessionID int64) ([]models.SessionDetailView, error) {
	query := `SELECT d.asis_det_id, d.asis_det_estado, d.asis_det_hora, d.asis_det_multa, d.asis_det_estado_pago,
		u.usu_id AS person_id, u.usu_cedula, u.usu_nombre, u.usu_apellido, u.usu_celular
		FROM jaapa_asistencias_detalles d
		LEFT JOIN jaapa_usuarios u ON u.usu_id = d.usu_id
		WHERE d.asis_id = $1 ORDER BY d.asis_det_id`
	views := []models.SessionDetailView{}
	if err := r.db.SelectContext(ctx, &views, query, sessionID); err != nil {
		return nil, fmt.Errorf("session details: %w", err)
	}
	return views, nil
}

// UpdateDetailFine marks one detail's fine payment and stamps the payment
// date.
func (r *AttendanceRepository) UpdateDetailFine(ctx context.Context, q sqlx.ExtContext, detailID int64, status models.FinePaymentStatus) error {
	res, err := r.ext(q).ExecContext(ctx,
		`UPDATE jaapa_asistencias_detalles SET asis_det_estado_pago = $1, asis_det_fecha_pago = NOW()
		WHERE asis_det_id = $2`, status, detailID)
	if err != nil {
		return fmt.Errorf("update detail fine: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update detail fine: %w", ErrNoRowsUpdated)
	}
	return nil
}

// UpdateSessionTotals rewrites the derived fine totals of a session.
func (r *AttendanceRepository) UpdateSessionTotals(ctx context.Context, q sqlx.ExtContext, s *models.AttendanceSession) error {
	if _, err := r.ext(q).ExecContext(ctx,
		`UPDATE jaapa_asistencias SET asis_estado_multa = $1, asis_multa_total = $2,
		asis_multa_pagada = $3, asis_multa_pendiente = $4 WHERE asis_id = $5`,
		s.EstadoMulta, s.MultaTotal, s.MultaPagada, s.MultaPendiente, s.ID); err != nil {
		return fmt.Errorf("update session totals: %w", err)
	}
	return nil
}

func sessionWhere(f models.SessionFilter) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if !f.Fecha.Empty() {
		where, args = appendDateFilter("a.asis_fecha_registro", f.Fecha, where, args)
	}
	return where, args
}

// List returns one page of the attendance grid plus the total row count.
func (r *AttendanceRepository) List(ctx context.Context, f models.SessionFilter) ([]models.SessionRow, int64, error) {
	where, args := sessionWhere(f)
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM jaapa_asistencias a %s`, whereClause)
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	_, size, offset := pageBounds(f.Page, f.PageSize)
	order := orderClause(f.SortBy, f.SortOrder, "a.asis_id", sessionSortColumns)
	listQuery := fmt.Sprintf(`SELECT a.asis_id, t.tip_sol_nombre AS tipo_servicio, c.tip_nombre AS tipo_actividad,
		a.asis_fecha_registro, a.asis_estado_multa, a.asis_multa_total, a.asis_multa_pagada, a.asis_multa_pendiente
		FROM jaapa_asistencias a
		JOIN jaapa_tipos_solicitudes t ON t.tip_sol_id = a.tip_sol_id
		JOIN jaapa_tipos_actividades c ON c.tip_id = a.tip_id
		%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		whereClause, order, len(args)+1, len(args)+2)
	args = append(args, size, offset)

	rows := []models.SessionRow{}
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return rows, total, nil
}

// Summary aggregates the filtered attendance set.
func (r *AttendanceRepository) Summary(ctx context.Context, f models.SessionFilter) (*models.SessionSummary, error) {
	where, args := sessionWhere(f)
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}
	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total_sessions,
		COALESCE(SUM(a.asis_multa_total), 0) AS multa_total,
		COALESCE(SUM(a.asis_multa_pagada), 0) AS multa_pagada,
		COALESCE(SUM(a.asis_multa_pendiente), 0) AS multa_pendiente
		FROM jaapa_asistencias a %s`, whereClause)

	var summary models.SessionSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, fmt.Errorf("session summary: %w", err)
	}
	return &summary, nil
}
