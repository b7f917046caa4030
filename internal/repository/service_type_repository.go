package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaapa/jaapa-api/internal/models"
)

// ServiceTypeRepository handles persistence for the service catalog.
type ServiceTypeRepository struct {
	db *sqlx.DB
}

// NewServiceTypeRepository constructs the repository.
func NewServiceTypeRepository(db *sqlx.DB) *ServiceTypeRepository {
	return &ServiceTypeRepository{db: db}
}

const serviceTypeColumns = `tip_sol_id, tip_sol_nombre, tip_sol_descripcion, tip_sol_costo,
	tip_sol_valor_diferido_inicial, tip_sol_condiciones, tip_sol_fecha_creacion, tar_id`

func (r *ServiceTypeRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

// FindByNombre returns the service type with the given unique name, or
// sql.ErrNoRows.
func (r *ServiceTypeRepository) FindByNombre(ctx context.Context, q sqlx.ExtContext, nombre string) (*models.ServiceType, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_tipos_solicitudes WHERE tip_sol_nombre = $1`, serviceTypeColumns)
	var st models.ServiceType
	if err := sqlx.GetContext(ctx, r.ext(q), &st, query, nombre); err != nil {
		return nil, err
	}
	return &st, nil
}

// FindByID returns a service type by identifier, or sql.ErrNoRows.
func (r *ServiceTypeRepository) FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.ServiceType, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_tipos_solicitudes WHERE tip_sol_id = $1`, serviceTypeColumns)
	var st models.ServiceType
	if err := sqlx.GetContext(ctx, r.ext(q), &st, query, id); err != nil {
		return nil, err
	}
	return &st, nil
}

// List returns the whole catalog ordered by name.
func (r *ServiceTypeRepository) List(ctx context.Context) ([]models.ServiceType, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_tipos_solicitudes ORDER BY tip_sol_nombre`, serviceTypeColumns)
	var types []models.ServiceType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list service types: %w", err)
	}
	return types, nil
}

// Insert stores a new service type and assigns its identifier.
func (r *ServiceTypeRepository) Insert(ctx context.Context, st *models.ServiceType) error {
	query := `INSERT INTO jaapa_tipos_solicitudes (tip_sol_nombre, tip_sol_descripcion, tip_sol_costo,
		tip_sol_valor_diferido_inicial, tip_sol_condiciones, tip_sol_fecha_creacion, tar_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING tip_sol_id`
	if err := sqlx.GetContext(ctx, r.db, &st.ID, query,
		st.Nombre, st.Descripcion, st.Costo, st.ValorDiferidoInicial,
		st.Condiciones, st.FechaCreacion, st.TariffID); err != nil {
		return fmt.Errorf("insert service type: %w", err)
	}
	return nil
}

// ActivityTypeRepository handles persistence for cooperative activity types.
type ActivityTypeRepository struct {
	db *sqlx.DB
}

// NewActivityTypeRepository constructs the repository.
func NewActivityTypeRepository(db *sqlx.DB) *ActivityTypeRepository {
	return &ActivityTypeRepository{db: db}
}

func (r *ActivityTypeRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

// FindByNombre returns the activity type with the given name, or sql.ErrNoRows.
func (r *ActivityTypeRepository) FindByNombre(ctx context.Context, q sqlx.ExtContext, nombre string) (*models.ActivityType, error) {
	query := `SELECT tip_id, tip_nombre, tip_descripcion, tip_valor FROM jaapa_tipos_actividades WHERE tip_nombre = $1`
	var at models.ActivityType
	if err := sqlx.GetContext(ctx, r.ext(q), &at, query, nombre); err != nil {
		return nil, err
	}
	return &at, nil
}

// List returns every activity type ordered by name.
func (r *ActivityTypeRepository) List(ctx context.Context) ([]models.ActivityType, error) {
	query := `SELECT tip_id, tip_nombre, tip_descripcion, tip_valor FROM jaapa_tipos_actividades ORDER BY tip_nombre`
	var types []models.ActivityType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list activity types: %w", err)
	}
	return types, nil
}
