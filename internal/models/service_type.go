package models

import (
	"strings"
	"time"
)

// Well-known service type names. Deferred payment is only allowed for AGUA.
const (
	ServiceWater = "AGUA"
	ServiceSewer = "ALCANTARILLADO"
)

// ServiceType defines a service offering (jaapa_tipos_solicitudes): its cost,
// the upfront amount under a deferred plan and the associated tariff.
type ServiceType struct {
	ID                   int64      `db:"tip_sol_id" json:"id"`
	Nombre               string     `db:"tip_sol_nombre" json:"nombre"`
	Descripcion          string     `db:"tip_sol_descripcion" json:"descripcion"`
	Costo                float64    `db:"tip_sol_costo" json:"costo"`
	ValorDiferidoInicial float64    `db:"tip_sol_valor_diferido_inicial" json:"valor_diferido_inicial"`
	Condiciones          *string    `db:"tip_sol_condiciones" json:"condiciones,omitempty"`
	FechaCreacion        time.Time  `db:"tip_sol_fecha_creacion" json:"fecha_creacion"`
	TariffID             *int64     `db:"tar_id" json:"tarifa_id,omitempty"`
}

// Normalize upper-cases the unique name at construction time.
func (t *ServiceType) Normalize() {
	t.Nombre = strings.ToUpper(strings.TrimSpace(t.Nombre))
}

// IsWater reports whether the type is the water-service variant.
func (t *ServiceType) IsWater() bool {
	return t.Nombre == ServiceWater
}

// Tariff is the monthly fee schedule referenced by a service type.
type Tariff struct {
	ID             int64   `db:"tar_id" json:"id"`
	Nombre         string  `db:"tar_nombre" json:"nombre"`
	ValorMensual   float64 `db:"tar_valor_mensual" json:"valor_mensual"`
	ValorExcedente float64 `db:"tar_valor_excedente" json:"valor_excedente"`
}
