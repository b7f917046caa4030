package models

import "strings"

// Address is created fresh per service request, never deduplicated.
type Address struct {
	ID              int64               `db:"dir_id" json:"id"`
	CallePrincipal  string              `db:"dir_calle_principal" json:"calle_principal"`
	CalleSecundaria string              `db:"dir_calle_secundaria" json:"calle_secundaria"`
	Referencia      string              `db:"dir_referencia" json:"referencia"`
	Barrio          string              `db:"dir_barrio" json:"barrio"`
	Channel         RegistrationChannel `db:"dir_tipo_registro" json:"tipo_registro"`
}

// Normalize upper-cases the street fields at construction time.
func (a *Address) Normalize() {
	a.CallePrincipal = strings.ToUpper(strings.TrimSpace(a.CallePrincipal))
	a.CalleSecundaria = strings.ToUpper(strings.TrimSpace(a.CalleSecundaria))
	a.Referencia = strings.ToUpper(strings.TrimSpace(a.Referencia))
	a.Barrio = strings.ToUpper(strings.TrimSpace(a.Barrio))
}
