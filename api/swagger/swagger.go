package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tuition Web",
        "description": "Student dashboard for tuition posts",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Dashboard", "description": "Filter, edit and delete the student's tuitions"},
        {"name": "Ops", "description": "Liveness, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/api/dashboard/load": {
            "post": {
                "tags": ["Dashboard"],
                "summary": "Reload the student's tuitions from the backend",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/tuitions": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Filter the tuition list",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["all", "pending", "approved", "rejected", "completed"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Tuition counts by status",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/tuitions/{id}/edit": {
            "post": {
                "tags": ["Dashboard"],
                "summary": "Open the edit form for a tuition",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown tuition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Tuition is approved or completed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/edit": {
            "put": {
                "tags": ["Dashboard"],
                "summary": "Submit the open edit form",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TuitionForm"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No edit form is open", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Field errors", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Backend failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Dashboard"],
                "summary": "Dismiss the edit form",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/tuitions/{id}/delete": {
            "post": {
                "tags": ["Dashboard"],
                "summary": "Ask for confirmation before deleting a tuition",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Tuition is approved or completed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/delete/confirm": {
            "post": {
                "tags": ["Dashboard"],
                "summary": "Delete the tuition awaiting confirmation",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No confirmation open or one already in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Backend failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/delete": {
            "delete": {
                "tags": ["Dashboard"],
                "summary": "Dismiss the delete confirmation",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/dashboard/export": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Download the filtered tuition list",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "404": {"description": "Export disabled"}
                }
            }
        }
    },
    "definitions": {
        "TuitionForm": {
            "type": "object",
            "required": ["subject", "class", "budget", "location", "daysPerWeek", "timeSlot"],
            "properties": {
                "subject": {"type": "string"},
                "class": {"type": "string"},
                "budget": {"type": "string", "description": "At least 1000"},
                "location": {"type": "string"},
                "daysPerWeek": {"type": "string", "enum": ["2", "3", "4", "5", "6"]},
                "timeSlot": {"type": "string"},
                "requirements": {"type": "string"}
            }
        },
        "Notification": {
            "type": "object",
            "properties": {
                "level": {"type": "string", "enum": ["success", "error", "warning"]},
                "message": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"},
                "notifications": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Notification"}
                }
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
