package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaapa/jaapa-api/internal/models"
)

func TestAttendanceRepositoryInsertSession(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO jaapa_asistencias ").
		WithArgs(int64(1), int64(2), &now, models.FinePending, 10.0, 0.0, 10.0).
		WillReturnRows(sqlmock.NewRows([]string{"asis_id"}).AddRow(5))

	session := &models.AttendanceSession{
		ServiceTypeID:  1,
		ActivityTypeID: 2,
		FechaRegistro:  &now,
		EstadoMulta:    models.FinePending,
		MultaTotal:     10,
		MultaPendiente: 10,
	}
	require.NoError(t, repo.InsertSession(context.Background(), nil, session))
	assert.Equal(t, int64(5), session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySessionDetailsKeepsOrphanRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{
		"asis_det_id", "asis_det_estado", "asis_det_hora", "asis_det_multa", "asis_det_estado_pago",
		"person_id", "usu_cedula", "usu_nombre", "usu_apellido", "usu_celular",
	}).
		AddRow(1, "PRESENTE", "08:00", 0.0, "PENDIENTE", 11, "1710034065", "MARIA", "QUISHPE", "0991234567").
		AddRow(2, "AUSENTE", "", 10.0, "PENDIENTE", nil, nil, nil, nil, nil)
	mock.ExpectQuery("LEFT JOIN jaapa_usuarios").
		WithArgs(int64(5)).
		WillReturnRows(rows)

	views, err := repo.SessionDetails(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].Cedula)
	assert.Equal(t, "1710034065", *views[0].Cedula)
	assert.Nil(t, views[1].Cedula)
	assert.Equal(t, 10.0, views[1].Multa)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpdateDetailFineNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("UPDATE jaapa_asistencias_detalles SET asis_det_estado_pago").
		WithArgs(models.FinePaid, int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDetailFine(context.Background(), nil, 404, models.FinePaid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRowsUpdated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"total_sessions", "multa_total", "multa_pagada", "multa_pendiente"}).
		AddRow(2, 30.0, 10.0, 20.0)
	mock.ExpectQuery("COUNT\\(\\*\\) AS total_sessions").
		WillReturnRows(rows)

	summary, err := repo.Summary(context.Background(), models.SessionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalSessions)
	assert.Equal(t, 20.0, summary.MultaPendiente)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListWithDateRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM jaapa_asistencias a WHERE a.asis_fecha_registro BETWEEN").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{
		"asis_id", "tipo_servicio", "tipo_actividad", "asis_fecha_registro",
		"asis_estado_multa", "asis_multa_total", "asis_multa_pagada", "asis_multa_pendiente",
	}).AddRow(1, "AGUA", "MINGA", time.Now(), "PENDIENTE", 10.0, 0.0, 10.0)
	mock.ExpectQuery("WHERE a.asis_fecha_registro BETWEEN \\$1 AND \\$2 ORDER BY a.asis_id DESC LIMIT").
		WithArgs(from, to, 50, 0).
		WillReturnRows(rows)

	list, total, err := repo.List(context.Background(), models.SessionFilter{
		Fecha: models.DateFilter{From: &from, To: &to},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "MINGA", list[0].TipoActividad)
	assert.NoError(t, mock.ExpectationsWereMet())
}
