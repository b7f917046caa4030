package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaapa/jaapa-api/internal/models"
)

// MeterRepository handles persistence for water meters.
type MeterRepository struct {
	db *sqlx.DB
}

// NewMeterRepository constructs the repository.
func NewMeterRepository(db *sqlx.DB) *MeterRepository {
	return &MeterRepository{db: db}
}

const meterColumns = `med_id, med_codigo, med_marca, med_modelo, med_estado, med_tipo_registro, usu_id, sol_id`

func (r *MeterRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

// Insert stores a meter already linked to its person and request.
func (r *MeterRepository) Insert(ctx context.Context, q sqlx.ExtContext, meter *models.Meter) error {
	query := `INSERT INTO jaapa_medidores (med_codigo, med_marca, med_modelo, med_estado, med_tipo_registro, usu_id, sol_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING med_id`
	if err := sqlx.GetContext(ctx, r.ext(q), &meter.ID, query,
		meter.Codigo, meter.Marca, meter.Modelo, meter.Estado, meter.Channel,
		meter.PersonID, meter.RequestID); err != nil {
		return fmt.Errorf("insert meter: %w", err)
	}
	return nil
}

// FindByRequestID returns the meter attached to a request, or sql.ErrNoRows.
func (r *MeterRepository) FindByRequestID(ctx context.Context, q sqlx.ExtContext, requestID int64) (*models.Meter, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_medidores WHERE sol_id = $1`, meterColumns)
	var meter models.Meter
	if err := sqlx.GetContext(ctx, r.ext(q), &meter, query, requestID); err != nil {
		return nil, err
	}
	return &meter, nil
}
