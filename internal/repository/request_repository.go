package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jaapa/jaapa-api/internal/models"
)

// RequestRepository handles persistence for service requests and the grid
// projections built on top of them.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `sol_id, sol_numero, sol_tipo_pago, sol_fecha, sol_estado, sol_estado_pago,
	sol_monto_pagado, sol_monto_pendiente, sol_monto_total, sol_url_certificado, sol_tipo_registro,
	usu_id, dir_id, tip_sol_id`

var requestSortColumns = map[string]string{
	"id":         "s.sol_id",
	"numero":     "s.sol_numero",
	"fecha":      "s.sol_fecha",
	"estado":     "s.sol_estado",
	"monto":      "s.sol_monto_total",
	"estadoPago": "s.sol_estado_pago",
}

func (r *RequestRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

// BeginTx opens a transaction for a multi-write request flow.
func (r *RequestRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

// Insert stores a request and assigns its identifier. The numero is filled
// by a database trigger and must be read back with Refresh.
func (r *RequestRepository) Insert(ctx context.Context, q sqlx.ExtContext, req *models.ServiceRequest) error {
	query := `INSERT INTO jaapa_solicitudes (sol_tipo_pago, sol_fecha, sol_estado, sol_estado_pago,
		sol_monto_pagado, sol_monto_pendiente, sol_monto_total, sol_tipo_registro, usu_id, dir_id, tip_sol_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING sol_id`
	if err := sqlx.GetContext(ctx, r.ext(q), &req.ID, query,
		req.TipoPago, req.Fecha, req.Estado, req.EstadoPago,
		req.MontoPagado, req.MontoPendiente, req.MontoTotal,
		req.Channel, req.PersonID, req.AddressID, req.ServiceTypeID); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// Refresh re-reads a request row inside the same transaction, picking up
// database-generated values such as the numero.
func (r *RequestRepository) Refresh(ctx context.Context, q sqlx.ExtContext, req *models.ServiceRequest) error {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_solicitudes WHERE sol_id = $1`, requestColumns)
	if err := sqlx.GetContext(ctx, r.ext(q), req, query, req.ID); err != nil {
		return fmt.Errorf("refresh request: %w", err)
	}
	return nil
}

// FindByID returns a request by identifier, or sql.ErrNoRows.
func (r *RequestRepository) FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.ServiceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_solicitudes WHERE sol_id = $1`, requestColumns)
	var req models.ServiceRequest
	if err := sqlx.GetContext(ctx, r.ext(q), &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByNumero returns a request by its public number, or sql.ErrNoRows.
func (r *RequestRepository) FindByNumero(ctx context.Context, q sqlx.ExtContext, numero string) (*models.ServiceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_solicitudes WHERE sol_numero = $1`, requestColumns)
	var req models.ServiceRequest
	if err := sqlx.GetContext(ctx, r.ext(q), &req, query, numero); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateCertificado stores the certificate URL and marks the request
// COMPLETADA. Re-running it for the same request only swaps the URL.
func (r *RequestRepository) UpdateCertificado(ctx context.Context, q sqlx.ExtContext, id int64, url string) error {
	res, err := r.ext(q).ExecContext(ctx,
		`UPDATE jaapa_solicitudes SET sol_url_certificado = $1, sol_estado = $2 WHERE sol_id = $3`,
		url, models.RequestCompleted, id)
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update certificate: %w", ErrNoRowsUpdated)
	}
	return nil
}

// requestWhere builds the WHERE fragment for the grid views. Criteria are
// mutually exclusive with fixed precedence: estado > estadoContains > fecha >
// numero > cedula. The first populated one wins.
func requestWhere(f models.RequestFilter) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	switch {
	case f.Estado != "":
		where = append(where, fmt.Sprintf("s.sol_estado = $%d", len(args)+1))
		args = append(args, f.Estado)
	case f.EstadoContains != "":
		where = append(where, fmt.Sprintf("s.sol_estado ILIKE $%d", len(args)+1))
		args = append(args, "%"+f.EstadoContains+"%")
	case !f.Fecha.Empty():
		where, args = appendDateFilter("s.sol_fecha", f.Fecha, where, args)
	case f.Numero != "":
		where = append(where, fmt.Sprintf("s.sol_numero = $%d", len(args)+1))
		args = append(args, f.Numero)
	case f.Cedula != "":
		where = append(where, fmt.Sprintf("u.usu_cedula = $%d", len(args)+1))
		args = append(args, f.Cedula)
	}
	return where, args
}

// List returns one page of the request grid plus the total row count for the
// active criterion.
func (r *RequestRepository) List(ctx context.Context, f models.RequestFilter) ([]models.RequestRow, int64, error) {
	where, args := requestWhere(f)
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM jaapa_solicitudes s
		JOIN jaapa_usuarios u ON u.usu_id = s.usu_id %s`, whereClause)
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	_, size, offset := pageBounds(f.Page, f.PageSize)
	order := orderClause(f.SortBy, f.SortOrder, "s.sol_id", requestSortColumns)
	listQuery := fmt.Sprintf(`SELECT s.sol_id, s.sol_numero, s.sol_fecha, s.sol_estado, s.sol_estado_pago,
		s.sol_tipo_pago, s.sol_monto_pagado, s.sol_monto_pendiente, s.sol_monto_total,
		u.usu_cedula, u.usu_nombre, u.usu_apellido, t.tip_sol_nombre
		FROM jaapa_solicitudes s
		JOIN jaapa_usuarios u ON u.usu_id = s.usu_id
		JOIN jaapa_tipos_solicitudes t ON t.tip_sol_id = s.tip_sol_id
		%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		whereClause, order, len(args)+1, len(args)+2)
	args = append(args, size, offset)

	rows := []models.RequestRow{}
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	return rows, total, nil
}

// Summary aggregates the filtered request set: counts, monetary sums and
// per-status breakdown. COALESCE keeps empty sets at zero.
func (r *RequestRepository) Summary(ctx context.Context, f models.RequestFilter) (*models.RequestSummary, error) {
	where, args := requestWhere(f)
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}
	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total_requests,
		COALESCE(SUM(s.sol_monto_pagado), 0) AS total_collected_amount,
		COALESCE(SUM(s.sol_monto_pendiente), 0) AS pending_amount,
		COALESCE(SUM(s.sol_monto_total), 0) AS total_amount,
		COUNT(*) FILTER (WHERE s.sol_estado = 'APROBADA') AS aprobadas,
		COUNT(*) FILTER (WHERE s.sol_estado = 'RECHAZADA') AS rechazadas,
		COUNT(*) FILTER (WHERE s.sol_estado = 'EN_PROCESO') AS en_proceso,
		COUNT(*) FILTER (WHERE s.sol_estado = 'COMPLETADA') AS completadas
		FROM jaapa_solicitudes s
		JOIN jaapa_usuarios u ON u.usu_id = s.usu_id %s`, whereClause)

	var summary models.RequestSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, fmt.Errorf("request summary: %w", err)
	}
	return &summary, nil
}
