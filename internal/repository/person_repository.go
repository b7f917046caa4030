package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaapa/jaapa-api/internal/models"
)

// PersonRepository handles persistence for cooperative members. Write
// methods take a sqlx.ExtContext so callers can run them inside their own
// transaction; passing nil uses the pooled connection.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs the repository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

const personColumns = `usu_id, usu_cedula, usu_nombre, usu_apellido, usu_fecha_nacimiento,
	usu_telefono, usu_celular, usu_correo, usu_estado, usu_tipo_registro`

func (r *PersonRepository) ext(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

// FindByCedula returns the person with the given cedula, or sql.ErrNoRows.
func (r *PersonRepository) FindByCedula(ctx context.Context, q sqlx.ExtContext, cedula string) (*models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_usuarios WHERE usu_cedula = $1`, personColumns)
	var person models.Person
	if err := sqlx.GetContext(ctx, r.ext(q), &person, query, cedula); err != nil {
		return nil, err
	}
	return &person, nil
}

// FindByID returns a person by identifier, or sql.ErrNoRows.
func (r *PersonRepository) FindByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_usuarios WHERE usu_id = $1`, personColumns)
	var person models.Person
	if err := sqlx.GetContext(ctx, r.ext(q), &person, query, id); err != nil {
		return nil, err
	}
	return &person, nil
}

// ExistsByID reports whether a person exists.
func (r *PersonRepository) ExistsByID(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM jaapa_usuarios WHERE usu_id = $1)`
	if err := sqlx.GetContext(ctx, r.ext(q), &exists, query, id); err != nil {
		return false, fmt.Errorf("person exists: %w", err)
	}
	return exists, nil
}

// Insert stores a new person and assigns its identifier.
func (r *PersonRepository) Insert(ctx context.Context, q sqlx.ExtContext, person *models.Person) error {
	query := `INSERT INTO jaapa_usuarios (usu_cedula, usu_nombre, usu_apellido, usu_fecha_nacimiento,
		usu_telefono, usu_celular, usu_correo, usu_estado, usu_tipo_registro)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING usu_id`
	if err := sqlx.GetContext(ctx, r.ext(q), &person.ID, query,
		person.Cedula, person.Nombre, person.Apellido, person.BirthDate,
		person.Telefono, person.Celular, person.Correo, person.Estado, person.Channel); err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

// UpdateChannel retags an existing person with the current registration channel.
func (r *PersonRepository) UpdateChannel(ctx context.Context, q sqlx.ExtContext, id int64, channel models.RegistrationChannel) error {
	if _, err := r.ext(q).ExecContext(ctx, `UPDATE jaapa_usuarios SET usu_tipo_registro = $1 WHERE usu_id = $2`, channel, id); err != nil {
		return fmt.Errorf("update person channel: %w", err)
	}
	return nil
}
