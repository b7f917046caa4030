package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jaapa/jaapa-api/internal/models"
)

// AuthRepository handles persistence for back-office accounts and refresh
// tokens.
type AuthRepository struct {
	db *sqlx.DB
}

// NewAuthRepository constructs the repository.
func NewAuthRepository(db *sqlx.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

const systemUserColumns = `usu_sis_id, usu_sis_email, usu_sis_password, usu_sis_nombre,
	usu_sis_rol, usu_sis_estado, usu_sis_ultimo_acceso`

// FindByEmail returns the system user with the given email, or sql.ErrNoRows.
func (r *AuthRepository) FindByEmail(ctx context.Context, email string) (*models.SystemUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_usuarios_sistema WHERE usu_sis_email = $1`, systemUserColumns)
	var user models.SystemUser
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns a system user by identifier, or sql.ErrNoRows.
func (r *AuthRepository) FindByID(ctx context.Context, id int64) (*models.SystemUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM jaapa_usuarios_sistema WHERE usu_sis_id = $1`, systemUserColumns)
	var user models.SystemUser
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin stamps the most recent successful login.
func (r *AuthRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE jaapa_usuarios_sistema SET usu_sis_ultimo_acceso = $1 WHERE usu_sis_id = $2`, at, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// StoreRefreshToken persists a freshly issued refresh token.
func (r *AuthRepository) StoreRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	query := `INSERT INTO jaapa_refresh_tokens (ref_id, usu_sis_id, ref_token, ref_expira, ref_creado, ref_revocado)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Token, t.ExpiresAt, t.CreatedAt, t.Revoked); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a non-revoked, unexpired token, or sql.ErrNoRows.
func (r *AuthRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `SELECT ref_id, usu_sis_id, ref_token, ref_expira, ref_creado, ref_revocado
		FROM jaapa_refresh_tokens
		WHERE ref_token = $1 AND ref_revocado = FALSE AND ref_expira > NOW()`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token unusable.
func (r *AuthRepository) RevokeRefreshToken(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE jaapa_refresh_tokens SET ref_revocado = TRUE WHERE ref_id = $1`, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
