package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaapa/jaapa-api/internal/models"
)

// AddressRepository handles persistence for request addresses.
type AddressRepository struct {
	db *sqlx.DB
}

// NewAddressRepository constructs the repository.
func NewAddressRepository(db *sqlx.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

// Insert stores a new address and assigns its identifier. Addresses are
// never deduplicated: each request gets a fresh row.
func (r *AddressRepository) Insert(ctx context.Context, q sqlx.ExtContext, address *models.Address) error {
	query := `INSERT INTO jaapa_direcciones (dir_calle_principal, dir_calle_secundaria, dir_referencia,
		dir_barrio, dir_tipo_registro)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING dir_id`
	if err := sqlx.GetContext(ctx, r.ext(q), &address.ID, query,
		address.CallePrincipal, address.CalleSecundaria, address.Referencia, address.Barrio, address.Channel); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

// FindByID returns an address by identifier, or sql.ErrNoRows.
func (r *AddressRepository) FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Address, error) {
	query := `SELECT dir_id, dir_calle_principal, dir_calle_secundaria, dir_referencia, dir_barrio, dir_tipo_registro
		FROM jaapa_direcciones WHERE dir_id = $1`
	var address models.Address
	if err := sqlx.GetContext(ctx, r.ext(q), &address, query, id); err != nil {
		return nil, err
	}
	return &address, nil
}
