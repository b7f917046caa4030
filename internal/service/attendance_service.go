package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/jaapa/jaapa-api/internal/models"
	"github.com/jaapa/jaapa-api/internal/repository"
	appErrors "github.com/jaapa/jaapa-api/pkg/errors"
)

type attendanceRepository interface {
	BeginTx(ctx context.Context) (repository.Tx, error)
	InsertSession(ctx context.Context, q sqlx.ExtContext, s *models.AttendanceSession) error
	InsertDetail(ctx context.Context, q sqlx.ExtContext, d *models.AttendanceDetail) error
	FindSessionByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.AttendanceSession, error)
	ListDetails(ctx context.Context, q sqlx.ExtContext, sessionID int64) ([]models.AttendanceDetail, error)
	SessionDetails(ctx context.Context, sessionID int64) ([]models.SessionDetailView, error)
	UpdateDetailFine(ctx context.Context, q sqlx.ExtContext, detailID int64, status models.FinePaymentStatus) error
	UpdateSessionTotals(ctx context.Context, q sqlx.ExtContext, s *models.AttendanceSession) error
	List(ctx context.Context, f models.SessionFilter) ([]models.SessionRow, int64, error)
	Summary(ctx context.Context, f models.SessionFilter) (*models.SessionSummary, error)
}

type activityTypeRepository interface {
	FindByNombre(ctx context.Context, q sqlx.ExtContext, nombre string) (*models.ActivityType, error)
}

type personFinder interface {
	FindByCedula(ctx context.Context, q sqlx.ExtContext, cedula string) (*models.Person, error)
}

// AttendanceEntry is one attendee row of a recording payload. EstadoPago is
// optional so imported history can carry fines already settled.
type AttendanceEntry struct {
	Cedula     string `json:"cedula" validate:"required"`
	Estado     string `json:"estado" validate:"required"`
	Hora       string `json:"hora"`
	EstadoPago string `json:"estado_pago_multa"`
}

// RecordAttendancePayload registers a whole attendance session at once.
type RecordAttendancePayload struct {
	TipoServicio  string            `json:"tipo_servicio" validate:"required"`
	TipoActividad string            `json:"tipo_actividad" validate:"required"`
	FechaRegistro *time.Time        `json:"fecha_registro"`
	EstadoMulta   string            `json:"estado_multa"`
	Detalles      []AttendanceEntry `json:"detalles" validate:"required,min=1,dive"`
}

// AttendanceService records cooperative attendance and the absence fines
// derived from it.
type AttendanceService struct {
	sessions   attendanceRepository
	activities activityTypeRepository
	types      serviceTypeFinder
	persons    personFinder
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(
	sessions attendanceRepository,
	activities activityTypeRepository,
	types serviceTypeFinder,
	persons personFinder,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		sessions:   sessions,
		activities: activities,
		types:      types,
		persons:    persons,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

const sessionSummaryCacheKey = "jaapa:attendance:summary"

// Record stores a session and its details atomically. Each attendee is
// resolved by cedula; a missing member aborts the whole recording. An
// absence is fined the activity's valor, any other status is free. The
// session totals are derived from the details before the header is written.
func (s *AttendanceService) Record(ctx context.Context, payload RecordAttendancePayload) (*models.AttendanceSession, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	for _, entry := range payload.Detalles {
		if !models.AttendanceStatus(entry.Estado).Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("estado de asistencia no soportado: %s", entry.Estado))
		}
		if entry.EstadoPago != "" && !models.FinePaymentStatus(entry.EstadoPago).Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("estado de pago de multa no soportado: %s", entry.EstadoPago))
		}
	}

	serviceType, err := s.types.FindByNombre(ctx, nil, payload.TipoServicio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tipo de servicio no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service type")
	}
	activity, err := s.activities.FindByNombre(ctx, nil, payload.TipoActividad)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tipo de actividad no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity type")
	}

	tx, err := s.sessions.BeginTx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	session, err := s.recordInTx(ctx, tx, payload, serviceType, activity)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit attendance")
	}

	s.cache.Invalidate(ctx, sessionSummaryCacheKey)
	s.logger.Info("attendance recorded",
		zap.Int64("session_id", session.ID),
		zap.Int("attendees", len(session.Detalles)),
		zap.Float64("multa_total", session.MultaTotal))
	return session, nil
}

func (s *AttendanceService) recordInTx(ctx context.Context, tx repository.Tx, payload RecordAttendancePayload, serviceType *models.ServiceType, activity *models.ActivityType) (*models.AttendanceSession, error) {
	fecha := payload.FechaRegistro
	if fecha == nil {
		now := s.now()
		fecha = &now
	}
	estadoMulta := models.FinePaymentStatus(payload.EstadoMulta)
	if estadoMulta == "" {
		estadoMulta = models.FinePending
	}

	session := &models.AttendanceSession{
		ServiceTypeID:  serviceType.ID,
		ActivityTypeID: activity.ID,
		FechaRegistro:  fecha,
		EstadoMulta:    estadoMulta,
	}

	details := make([]models.AttendanceDetail, 0, len(payload.Detalles))
	for _, entry := range payload.Detalles {
		person, err := s.persons.FindByCedula(ctx, tx, entry.Cedula)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("miembro no encontrado: %s", entry.Cedula))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
		}

		estado := models.AttendanceStatus(entry.Estado)
		var multa float64
		if estado == models.AttendanceAbsent {
			multa = activity.Valor
		}
		estadoPago := models.FinePaymentStatus(entry.EstadoPago)
		if estadoPago == "" {
			estadoPago = models.FinePending
		}
		details = append(details, models.AttendanceDetail{
			PersonID:        person.ID,
			Estado:          estado,
			Hora:            entry.Hora,
			Multa:           multa,
			EstadoPagoMulta: estadoPago,
		})
	}

	session.Detalles = details
	session.RecomputeTotals()
	if err := s.sessions.InsertSession(ctx, tx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}
	for i := range session.Detalles {
		session.Detalles[i].SessionID = session.ID
		if err := s.sessions.InsertDetail(ctx, tx, &session.Detalles[i]); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store detail")
		}
	}
	return session, nil
}

// SessionDetails returns a session header with its person-joined details.
// A detail whose member no longer exists keeps its row with empty person
// fields.
func (s *AttendanceService) SessionDetails(ctx context.Context, sessionID int64) (*models.AttendanceSession, []models.SessionDetailView, error) {
	session, err := s.sessions.FindSessionByID(ctx, nil, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "asistencia no encontrada")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	views, err := s.sessions.SessionDetails(ctx, sessionID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session details")
	}
	return session, views, nil
}

// PayFine settles one detail's fine and rebuilds the session totals from
// the updated details inside one transaction.
func (s *AttendanceService) PayFine(ctx context.Context, sessionID, detailID int64) (*models.AttendanceSession, error) {
	tx, err := s.sessions.BeginTx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	session, err := s.payFineInTx(ctx, tx, sessionID, detailID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit fine payment")
	}

	s.cache.Invalidate(ctx, sessionSummaryCacheKey)
	return session, nil
}

func (s *AttendanceService) payFineInTx(ctx context.Context, tx repository.Tx, sessionID, detailID int64) (*models.AttendanceSession, error) {
	session, err := s.sessions.FindSessionByID(ctx, tx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "asistencia no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	if err := s.sessions.UpdateDetailFine(ctx, tx, detailID, models.FinePaid); err != nil {
		if errors.Is(err, repository.ErrNoRowsUpdated) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "detalle de asistencia no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fine")
	}

	details, err := s.sessions.ListDetails(ctx, tx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload details")
	}
	session.Detalles = details
	session.RecomputeTotals()
	switch {
	case session.MultaPendiente <= 0:
		session.EstadoMulta = models.FinePaid
	case session.MultaPagada > 0:
		session.EstadoMulta = models.FinePartial
	default:
		session.EstadoMulta = models.FinePending
	}
	if err := s.sessions.UpdateSessionTotals(ctx, tx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session totals")
	}
	return session, nil
}

// List returns one page of the attendance grid.
func (s *AttendanceService) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionRow, *models.Pagination, error) {
	rows, total, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	page, size, _ := normalizePage(filter.Page, filter.PageSize)
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: int(total)}, nil
}

// Summary aggregates the filtered attendance set, serving the unfiltered
// view from cache when fresh.
func (s *AttendanceService) Summary(ctx context.Context, filter models.SessionFilter) (*models.SessionSummary, error) {
	unfiltered := filter.Fecha.Empty()
	if unfiltered {
		var cached models.SessionSummary
		if s.cache.GetJSON(ctx, sessionSummaryCacheKey, &cached) {
			return &cached, nil
		}
	}

	summary, err := s.sessions.Summary(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build summary")
	}
	if unfiltered {
		s.cache.SetJSON(ctx, sessionSummaryCacheKey, summary)
	}
	return summary, nil
}
