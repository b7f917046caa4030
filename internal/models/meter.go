package models

import "strings"

// Meter is a water meter, optionally linked 1:1 to a water-service request.
type Meter struct {
	ID        int64               `db:"med_id" json:"id"`
	Codigo    string              `db:"med_codigo" json:"codigo"`
	Marca     string              `db:"med_marca" json:"marca"`
	Modelo    string              `db:"med_modelo" json:"modelo"`
	Estado    Status              `db:"med_estado" json:"estado"`
	Channel   RegistrationChannel `db:"med_tipo_registro" json:"tipo_registro"`
	PersonID  *int64              `db:"usu_id" json:"usuario_id,omitempty"`
	RequestID *int64              `db:"sol_id" json:"solicitud_id,omitempty"`
}

// Normalize upper-cases the identifying fields at construction time.
func (m *Meter) Normalize() {
	m.Codigo = strings.ToUpper(strings.TrimSpace(m.Codigo))
	m.Marca = strings.ToUpper(strings.TrimSpace(m.Marca))
	m.Modelo = strings.ToUpper(strings.TrimSpace(m.Modelo))
}
