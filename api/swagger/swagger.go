package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CalCalc Sync API",
        "description": "Google Calendar sync backend for CalCalc",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Google", "description": "Google Calendar connection and sync"},
        {"name": "Settings", "description": "User preferences"}
    ],
    "paths": {
        "/google/auth-url": {
            "get": {
                "tags": ["Google"],
                "summary": "Get Google OAuth consent URL",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/google/callback": {
            "get": {
                "tags": ["Google"],
                "summary": "Complete the Google OAuth flow",
                "parameters": [
                    {"name": "code", "in": "query", "type": "string", "required": true},
                    {"name": "state", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to the frontend"}
                }
            }
        },
        "/google/sync": {
            "post": {
                "tags": ["Google"],
                "summary": "Run a sync pass",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/SyncRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Not connected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Sync already running", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/google/import": {
            "post": {
                "tags": ["Google"],
                "summary": "Import events from Google Calendar",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Not connected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/google/export": {
            "post": {
                "tags": ["Google"],
                "summary": "Export local events to Google Calendar",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Not connected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/google/calendars": {
            "get": {
                "tags": ["Google"],
                "summary": "List calendars of the connected account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Not connected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/google/default-calendar": {
            "put": {
                "tags": ["Google"],
                "summary": "Set the default sync calendar",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DefaultCalendarRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Settings not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get user settings",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Settings not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/sync": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get sync preferences",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Settings"],
                "summary": "Update sync preferences",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSyncSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/ui": {
            "post": {
                "tags": ["Settings"],
                "summary": "Update display preferences",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUIPreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/financial": {
            "post": {
                "tags": ["Settings"],
                "summary": "Update financial preferences",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFinancialPreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SyncRequest": {
            "type": "object",
            "properties": {
                "direction": {"type": "string", "enum": ["import", "export", "both"]}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "event_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "DefaultCalendarRequest": {
            "type": "object",
            "required": ["calendar_id"],
            "properties": {
                "calendar_id": {"type": "string"}
            }
        },
        "UpdateSyncSettingsRequest": {
            "type": "object",
            "properties": {
                "sync_direction": {"type": "string", "enum": ["import", "export", "both"]},
                "sync_frequency": {"type": "string", "enum": ["manual", "hourly", "daily", "weekly"]}
            }
        },
        "UpdateUIPreferencesRequest": {
            "type": "object",
            "required": ["dark_mode"],
            "properties": {
                "dark_mode": {"type": "boolean"}
            }
        },
        "UpdateFinancialPreferencesRequest": {
            "type": "object",
            "required": ["default_tax_rate"],
            "properties": {
                "default_tax_rate": {"type": "number", "minimum": 0, "maximum": 100}
            }
        },
        "SyncResult": {
            "type": "object",
            "properties": {
                "imported": {"type": "integer"},
                "exported": {"type": "integer"},
                "updated": {"type": "integer"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/SyncError"}},
                "started_at": {"type": "string", "format": "date-time"},
                "finished_at": {"type": "string", "format": "date-time"}
            }
        },
        "SyncError": {
            "type": "object",
            "properties": {
                "item_id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
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
