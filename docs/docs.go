// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/foundry-agent": {
            "post": {
                "tags": ["agent"],
                "summary": "Вызов агента проверки бренда",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.agentRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.agentResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/brand-rules/{brandId}": {
            "get": {
                "tags": ["brand"],
                "summary": "Правила бренда",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Brand ID, e.g. OAD", "name": "brandId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/parse-email": {
            "post": {
                "tags": ["attachments"],
                "summary": "Извлечение изображений из письма",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [{"type": "file", "description": "RFC 822 message (.eml)", "name": "email", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/parse-pdf": {
            "post": {
                "tags": ["attachments"],
                "summary": "Подготовка PDF к проверке",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [{"type": "file", "description": "PDF document", "name": "pdf", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/v1/reviews": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["reviews"],
                "summary": "Список проверок",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "brandId", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["reviews"],
                "summary": "Проверка макета",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/v1/reviews/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["reviews"],
                "summary": "Проверка по ID",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/v1/reviews/{id}/chat": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["reviews"],
                "summary": "Вопрос по результату проверки",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"question": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.agentRequest": {
            "type": "object",
            "properties": {
                "agentId": {"type": "string"},
                "brandId": {"type": "string"},
                "endpoint": {"type": "string"},
                "query": {"type": "string"}
            }
        },
        "handlers.agentResponse": {
            "type": "object",
            "properties": {
                "agentId": {"type": "string"},
                "cached": {"type": "boolean"},
                "mode": {"type": "string"},
                "response": {"type": "string"},
                "result": {"type": "object"},
                "timestamp": {"type": "string"}
            }
        },
        "presenter.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "error": {"type": "string"},
                "message": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Токен авторизации. Поддерживаются форматы: \"Bearer <JWT>\" или \"<JWT>\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3001",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "brand-review API",
	Description:      "Сервис проверки макетов на соответствие брендбуку с помощью vision-модели.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
