package models

import "time"

// SystemRole represents the back-office roles checked at the API boundary.
type SystemRole string

const (
	RoleAdmin    SystemRole = "ADMIN"
	RoleOperator SystemRole = "OPERADOR"
	RoleTreasury SystemRole = "TESORERO"
)

// SystemUser is a back-office account (jaapa_usuarios_sistema), distinct
// from cooperative members.
type SystemUser struct {
	ID           int64      `db:"usu_sis_id" json:"id"`
	Email        string     `db:"usu_sis_email" json:"email"`
	PasswordHash string     `db:"usu_sis_password" json:"-"`
	Nombre       string     `db:"usu_sis_nombre" json:"nombre"`
	Rol          SystemRole `db:"usu_sis_rol" json:"rol"`
	Estado       Status     `db:"usu_sis_estado" json:"estado"`
	LastLogin    *time.Time `db:"usu_sis_ultimo_acceso" json:"ultimo_acceso,omitempty"`
}

// RefreshToken is an opaque long-lived credential exchanged for access tokens.
type RefreshToken struct {
	ID        string    `db:"ref_id" json:"id"`
	UserID    int64     `db:"usu_sis_id" json:"user_id"`
	Token     string    `db:"ref_token" json:"token"`
	ExpiresAt time.Time `db:"ref_expira" json:"expires_at"`
	CreatedAt time.Time `db:"ref_creado" json:"created_at"`
	Revoked   bool      `db:"ref_revocado" json:"revoked"`
}

// LoginRequest is the credentials payload for token issuance.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token pair.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
	User         UserInfo  `json:"user"`
}

// UserInfo is the public shape of a system user.
type UserInfo struct {
	ID     int64      `json:"id"`
	Email  string     `json:"email"`
	Nombre string     `json:"nombre"`
	Rol    SystemRole `json:"rol"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Claims are the JWT claims carried by an access token.
type Claims struct {
	UserID int64      `json:"uid"`
	Email  string     `json:"email"`
	Rol    SystemRole `json:"rol"`
}
