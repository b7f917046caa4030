package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "JAAPA API",
        "description": "Backend for the JAAPA drinking-water cooperative",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Back-office authentication"},
        {"name": "Solicitudes", "description": "Water and sewer service requests"},
        {"name": "Asistencias", "description": "Attendance sessions and absence fines"},
        {"name": "Catalogo", "description": "Service and activity catalogs"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a back-office account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Refresh token not found or expired"}
                }
            }
        },
        "/solicitudes": {
            "get": {
                "tags": ["Solicitudes"],
                "summary": "List service requests",
                "parameters": [
                    {"name": "estado", "in": "query", "type": "string"},
                    {"name": "estadoContains", "in": "query", "type": "string"},
                    {"name": "numero", "in": "query", "type": "string"},
                    {"name": "cedula", "in": "query", "type": "string"},
                    {"name": "fecha", "in": "query", "type": "string", "format": "date"},
                    {"name": "fechaDesde", "in": "query", "type": "string", "format": "date"},
                    {"name": "fechaHasta", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Solicitudes"],
                "summary": "Register a service request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequestPayload"}}
                ],
                "responses": {
                    "201": {"description": "Request created with its generated numero"},
                    "400": {"description": "Invalid payload or cedula"},
                    "404": {"description": "Service type not found"},
                    "422": {"description": "Payment type not allowed for the service"}
                }
            }
        },
        "/solicitudes/resumen": {
            "get": {
                "tags": ["Solicitudes"],
                "summary": "Aggregate the filtered request set",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/solicitudes/{numero}": {
            "get": {
                "tags": ["Solicitudes"],
                "summary": "Get one request with member, address, meter and installments",
                "parameters": [
                    {"name": "numero", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Request not found"}
                }
            }
        },
        "/solicitudes/{numero}/certificado": {
            "put": {
                "tags": ["Solicitudes"],
                "summary": "Attach the final certificate and complete the request",
                "parameters": [
                    {"name": "numero", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Request completed"},
                    "404": {"description": "Request not found"}
                }
            }
        },
        "/asistencias": {
            "get": {
                "tags": ["Asistencias"],
                "summary": "List attendance sessions",
                "parameters": [
                    {"name": "fecha", "in": "query", "type": "string", "format": "date"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Asistencias"],
                "summary": "Record an attendance session with its attendees",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordAttendancePayload"}}
                ],
                "responses": {
                    "201": {"description": "Session recorded"},
                    "404": {"description": "Service type, activity type or member not found"}
                }
            }
        },
        "/asistencias/resumen": {
            "get": {
                "tags": ["Asistencias"],
                "summary": "Aggregate the filtered attendance set",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/asistencias/{id}": {
            "get": {
                "tags": ["Asistencias"],
                "summary": "Get one session with its person-joined details",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Session not found"}
                }
            }
        },
        "/asistencias/{id}/detalles/{detalleId}/pago": {
            "put": {
                "tags": ["Asistencias"],
                "summary": "Settle one attendee's absence fine",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "detalleId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Session totals rebuilt"},
                    "404": {"description": "Session or detail not found"}
                }
            }
        },
        "/tipos-solicitudes": {
            "get": {
                "tags": ["Catalogo"],
                "summary": "List the service catalog",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Catalogo"],
                "summary": "Register a catalog entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateServiceTypePayload"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Name already registered"}
                }
            }
        },
        "/tipos-solicitudes/{nombre}": {
            "get": {
                "tags": ["Catalogo"],
                "summary": "Get one catalog entry by name",
                "parameters": [
                    {"name": "nombre", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/tipos-actividades": {
            "get": {
                "tags": ["Catalogo"],
                "summary": "List the activity catalog",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "CreateRequestPayload": {
            "type": "object",
            "required": ["cedula", "nombre", "apellido", "celular", "correo", "calle_principal", "barrio", "tipo_solicitud", "tipo_pago"],
            "properties": {
                "cedula": {"type": "string"},
                "nombre": {"type": "string"},
                "apellido": {"type": "string"},
                "fecha_nacimiento": {"type": "string", "format": "date"},
                "telefono": {"type": "string"},
                "celular": {"type": "string"},
                "correo": {"type": "string"},
                "calle_principal": {"type": "string"},
                "calle_secundaria": {"type": "string"},
                "referencia": {"type": "string"},
                "barrio": {"type": "string"},
                "tipo_solicitud": {"type": "string", "enum": ["AGUA", "ALCANTARILLADO"]},
                "tipo_pago": {"type": "string", "enum": ["TOTAL", "DIFERIDO"]},
                "medidor_codigo": {"type": "string"},
                "medidor_marca": {"type": "string"},
                "medidor_modelo": {"type": "string"}
            }
        },
        "RecordAttendancePayload": {
            "type": "object",
            "required": ["tipo_servicio", "tipo_actividad", "detalles"],
            "properties": {
                "tipo_servicio": {"type": "string"},
                "tipo_actividad": {"type": "string"},
                "fecha_registro": {"type": "string", "format": "date-time"},
                "estado_multa": {"type": "string"},
                "detalles": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "required": ["cedula", "estado"],
                        "properties": {
                            "cedula": {"type": "string"},
                            "estado": {"type": "string", "enum": ["PRESENTE", "AUSENTE", "JUSTIFICADO"]},
                            "hora": {"type": "string"}
                        }
                    }
                }
            }
        },
        "CreateServiceTypePayload": {
            "type": "object",
            "required": ["nombre"],
            "properties": {
                "nombre": {"type": "string"},
                "descripcion": {"type": "string"},
                "costo": {"type": "number"},
                "valor_diferido_inicial": {"type": "number"},
                "condiciones": {"type": "string"},
                "tarifa_id": {"type": "integer"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
