package models

// Status is the generic active/inactive state shared by several entities.
type Status string

const (
	StatusActive   Status = "ACTIVO"
	StatusInactive Status = "INACTIVO"
)

// RegistrationChannel tags where a record was captured.
type RegistrationChannel string

const (
	ChannelWeb      RegistrationChannel = "WEB"
	ChannelInPerson RegistrationChannel = "PRESENCIAL"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
