package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaapa/jaapa-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRequestRepositoryInsertAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("INSERT INTO jaapa_solicitudes").
		WithArgs(models.PaymentDeferred, sqlmock.AnyArg(), models.RequestInProcess, models.PaymentPending,
			0.0, 120.0, 120.0, models.ChannelWeb, int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"sol_id"}).AddRow(9))

	req := &models.ServiceRequest{
		TipoPago:       models.PaymentDeferred,
		Fecha:          time.Now(),
		Estado:         models.RequestInProcess,
		EstadoPago:     models.PaymentPending,
		MontoPendiente: 120,
		MontoTotal:     120,
		Channel:        models.ChannelWeb,
		PersonID:       1,
		AddressID:      2,
		ServiceTypeID:  3,
	}
	require.NoError(t, repo.Insert(context.Background(), nil, req))
	assert.Equal(t, int64(9), req.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryRefreshReadsNumero(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	rows := sqlmock.NewRows([]string{
		"sol_id", "sol_numero", "sol_tipo_pago", "sol_fecha", "sol_estado", "sol_estado_pago",
		"sol_monto_pagado", "sol_monto_pendiente", "sol_monto_total", "sol_url_certificado", "sol_tipo_registro",
		"usu_id", "dir_id", "tip_sol_id",
	}).AddRow(9, "SOL-00009", "DIFERIDO", time.Now(), "EN_PROCESO", "PENDIENTE",
		0.0, 120.0, 120.0, nil, "WEB", 1, 2, 3)
	mock.ExpectQuery("FROM jaapa_solicitudes WHERE sol_id").
		WithArgs(int64(9)).
		WillReturnRows(rows)

	req := &models.ServiceRequest{ID: 9}
	require.NoError(t, repo.Refresh(context.Background(), nil, req))
	assert.Equal(t, "SOL-00009", req.Numero)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateCertificadoNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("UPDATE jaapa_solicitudes SET sol_url_certificado").
		WithArgs("https://docs.jaapa.ec/cert.pdf", models.RequestCompleted, int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateCertificado(context.Background(), nil, 77, "https://docs.jaapa.ec/cert.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRowsUpdated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListByEstado(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM jaapa_solicitudes").
		WithArgs("APROBADA").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{
		"sol_id", "sol_numero", "sol_fecha", "sol_estado", "sol_estado_pago", "sol_tipo_pago",
		"sol_monto_pagado", "sol_monto_pendiente", "sol_monto_total",
		"usu_cedula", "usu_nombre", "usu_apellido", "tip_sol_nombre",
	}).AddRow(1, "SOL-00001", time.Now(), "APROBADA", "PENDIENTE", "TOTAL",
		0.0, 80.0, 80.0, "1710034065", "MARIA", "QUISHPE", "ALCANTARILLADO")
	mock.ExpectQuery("WHERE s.sol_estado = \\$1 ORDER BY s.sol_id DESC LIMIT").
		WithArgs("APROBADA", 50, 0).
		WillReturnRows(rows)

	list, total, err := repo.List(context.Background(), models.RequestFilter{Estado: "APROBADA"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "SOL-00001", list[0].Numero)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListDateBlankWinsOverEquals(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM jaapa_solicitudes").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("WHERE s.sol_fecha IS NULL ORDER BY").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"sol_id"}))

	equals := time.Now()
	_, total, err := repo.List(context.Background(), models.RequestFilter{
		Fecha: models.DateFilter{IsBlank: true, Equals: &equals},
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositorySummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	rows := sqlmock.NewRows([]string{
		"total_requests", "total_collected_amount", "pending_amount", "total_amount",
		"aprobadas", "rechazadas", "en_proceso", "completadas",
	}).AddRow(4, 150.0, 90.0, 240.0, 1, 1, 1, 1)
	mock.ExpectQuery("COUNT\\(\\*\\) AS total_requests").
		WillReturnRows(rows)

	summary, err := repo.Summary(context.Background(), models.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TotalRequests)
	assert.Equal(t, 150.0, summary.TotalCollectedAmount)
	assert.Equal(t, 240.0, summary.TotalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
