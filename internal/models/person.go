package models

import (
	"strings"
	"time"
)

// Person is a cooperative member stored in jaapa_usuarios. The cedula is
// unique and checksum-validated before any write.
type Person struct {
	ID        int64               `db:"usu_id" json:"id"`
	Cedula    string              `db:"usu_cedula" json:"cedula"`
	Nombre    string              `db:"usu_nombre" json:"nombre"`
	Apellido  string              `db:"usu_apellido" json:"apellido"`
	BirthDate *time.Time          `db:"usu_fecha_nacimiento" json:"fecha_nacimiento,omitempty"`
	Telefono  *string             `db:"usu_telefono" json:"telefono,omitempty"`
	Celular   string              `db:"usu_celular" json:"celular"`
	Correo    string              `db:"usu_correo" json:"correo"`
	Estado    Status              `db:"usu_estado" json:"estado"`
	Channel   RegistrationChannel `db:"usu_tipo_registro" json:"tipo_registro"`
}

// Normalize upper-cases the name fields. Applied at construction time, not
// via a persistence interceptor.
func (p *Person) Normalize() {
	p.Nombre = strings.ToUpper(strings.TrimSpace(p.Nombre))
	p.Apellido = strings.ToUpper(strings.TrimSpace(p.Apellido))
	p.Correo = strings.TrimSpace(p.Correo)
}
