package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Appointment Availability API",
        "description": "Weekly bookable slots for single and combined services",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "tags": [
        {"name": "Availability", "description": "Bookable slots per week"},
        {"name": "Observability", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness check of database and cache",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics/snapshot": {
            "get": {
                "tags": ["Observability"],
                "summary": "Process-local counters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Week availability of one service",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date", "required": true, "description": "Any date of the week"},
                    {"name": "serviceId", "in": "query", "type": "string", "required": true},
                    {"name": "employeeIds", "in": "query", "type": "string", "description": "Comma separated; defaults to every employee offering the service"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AvailabilityEnvelope"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/availability/combined": {
            "get": {
                "tags": ["Availability"],
                "summary": "Back-to-back availability of two services",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date", "required": true},
                    {"name": "serviceId", "in": "query", "type": "string", "required": true},
                    {"name": "secondServiceId", "in": "query", "type": "string", "required": true},
                    {"name": "employeeIds", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CombinedAvailabilityEnvelope"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/availability/export": {
            "get": {
                "tags": ["Availability"],
                "summary": "Download week availability as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date", "required": true},
                    {"name": "serviceId", "in": "query", "type": "string", "required": true},
                    {"name": "employeeIds", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "Issue": {
            "type": "object",
            "properties": {
                "employeeId": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "Slot": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "time": {"type": "string", "example": "09:15"},
                "employeeIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Day": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "weekday": {"type": "string"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/Slot"}}
            }
        },
        "Availability": {
            "type": "object",
            "properties": {
                "serviceId": {"type": "string"},
                "timezone": {"type": "string"},
                "weekStart": {"type": "string", "format": "date"},
                "days": {"type": "array", "items": {"$ref": "#/definitions/Day"}},
                "issues": {"type": "array", "items": {"$ref": "#/definitions/Issue"}}
            }
        },
        "AvailabilityEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Availability"},
                "meta": {"type": "object"}
            }
        },
        "ServiceSlot": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"},
                "employeeIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CombinedSlot": {
            "type": "object",
            "properties": {
                "firstService": {"$ref": "#/definitions/ServiceSlot"},
                "secondService": {"$ref": "#/definitions/ServiceSlot"}
            }
        },
        "CombinedDay": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "format": "date"},
                "weekday": {"type": "string"},
                "slots": {"type": "array", "items": {"$ref": "#/definitions/CombinedSlot"}}
            }
        },
        "CombinedAvailabilityEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "serviceId": {"type": "string"},
                        "secondServiceId": {"type": "string"},
                        "timezone": {"type": "string"},
                        "weekStart": {"type": "string", "format": "date"},
                        "days": {"type": "array", "items": {"$ref": "#/definitions/CombinedDay"}},
                        "issues": {"type": "array", "items": {"$ref": "#/definitions/Issue"}}
                    }
                },
                "meta": {"type": "object"}
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
