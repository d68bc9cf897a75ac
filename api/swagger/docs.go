// Package swagger holds the OpenAPI document served at /swagger/. It is kept
// by hand in the layout swag init writes, so handler annotations and this file
// change together.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Returns service health status with version information.",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/server.HealthResponse"}
                    }
                }
            }
        },
        "/settings/themes": {
            "get": {
                "description": "Presets first, then packs, each in catalog order.",
                "produces": ["application/json"],
                "tags": ["themes"],
                "summary": "List themes",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/theme.Entry"}}
                    }
                }
            }
        },
        "/settings/themes/active": {
            "get": {
                "description": "Resolved tokens, CSS variables, variants and block defaults of the active theme.",
                "produces": ["application/json"],
                "tags": ["themes"],
                "summary": "Get active theme",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/theme.ResolvedTheme"}
                    }
                }
            }
        },
        "/settings/themes/active.css": {
            "get": {
                "description": "CSS custom properties of the active theme. Supports If-None-Match.",
                "produces": ["text/css"],
                "tags": ["themes"],
                "summary": "Get active theme CSS",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "304": {"description": "Not Modified"}
                }
            }
        },
        "/settings/themes/variants": {
            "get": {
                "produces": ["application/json"],
                "tags": ["themes"],
                "summary": "List component variants",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/theme.Variant"}}
                    }
                }
            }
        },
        "/settings/themes/validate": {
            "post": {
                "description": "Checks a token set (default), a preset or a pack and reports every violation.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["themes"],
                "summary": "Validate a theme document",
                "parameters": [
                    {"type": "string", "description": "tokens, preset or pack", "name": "kind", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/settings.ValidateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/settings/themes/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["themes"],
                "summary": "Get theme",
                "parameters": [
                    {"type": "string", "description": "Theme id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/theme.ResolvedTheme"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/settings/site": {
            "get": {
                "produces": ["application/json"],
                "tags": ["site"],
                "summary": "Get site settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sitesettings.SiteSettings"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "Replaces the supplied fields only; null clears optional blocks. Every invalid field is reported.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["site"],
                "summary": "Update site settings",
                "parameters": [
                    {"description": "Partial settings", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/settings.UpdateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/settings/site/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["site"],
                "summary": "Site settings history",
                "parameters": [
                    {"type": "integer", "description": "Maximum entries (1-500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/sitesettings.AuditEntry"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/server.Problem"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.Problem"}}
                }
            }
        },
        "/ws/theme": {
            "get": {
                "description": "WebSocket stream. Sends theme.snapshot on connect, then theme.changed and settings.updated messages.",
                "tags": ["themes"],
                "summary": "Live theme stream",
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        }
    },
    "definitions": {
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string", "example": "plunge"},
                "status": {"type": "string", "example": "ok"},
                "version": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "server.Problem": {
            "type": "object",
            "properties": {
                "detail": {"type": "string", "example": "request body is not valid JSON"},
                "details": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "error": {"type": "string", "example": "request body is not valid JSON"},
                "instance": {"type": "string", "example": "/api/v1/settings/site"},
                "status": {"type": "integer", "example": 400},
                "title": {"type": "string", "example": "Bad Request"},
                "type": {"type": "string", "example": "https://powerplunge.com/problems/bad-request"}
            }
        },
        "settings.UpdateResponse": {
            "description": "Settings after a successful update.",
            "type": "object",
            "properties": {
                "settings": {"$ref": "#/definitions/sitesettings.SiteSettings"}
            }
        },
        "settings.ValidateResponse": {
            "description": "Result of a schema check that passed.",
            "type": "object",
            "properties": {
                "valid": {"type": "boolean", "example": true}
            }
        },
        "sitesettings.AuditEntry": {
            "type": "object",
            "properties": {
                "actorId": {"type": "string"},
                "changedFields": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"},
                "id": {"type": "string"}
            }
        },
        "sitesettings.SiteSettings": {
            "type": "object",
            "properties": {
                "activePresetId": {"type": "string"},
                "activeThemeId": {"type": "string"},
                "footerPreset": {"type": "object"},
                "globalCtaDefaults": {"type": "object"},
                "id": {"type": "string"},
                "navPreset": {"type": "object"},
                "seoDefaults": {"type": "object"},
                "updatedAt": {"type": "string"},
                "updatedBy": {"type": "string"}
            }
        },
        "theme.Entry": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "id": {"type": "string"},
                "kind": {"type": "string", "enum": ["preset", "pack"]},
                "name": {"type": "string"}
            }
        },
        "theme.ResolvedTheme": {
            "type": "object",
            "properties": {
                "_isPack": {"type": "boolean"},
                "blockStyleDefaults": {"type": "object"},
                "componentVariants": {"type": "object", "additionalProperties": {"type": "string"}},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "themeTokens": {"type": "object"},
                "variables": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "theme.Variant": {
            "type": "object",
            "properties": {
                "component": {"type": "string"},
                "description": {"type": "string"},
                "name": {"type": "string"},
                "variables": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and an access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Power Plunge Theme API",
	Description:      "Storefront themes, site settings and the live theme stream.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
