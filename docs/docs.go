// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Rajeshwari Tech",
            "email": "info@rajeshwaritech.com"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue admin token",
                "parameters": [
                    {"description": "Admin credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.tokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.tokenResponse"}},
                    "400": {"description": "Malformed request"},
                    "401": {"description": "Invalid credentials"},
                    "429": {"description": "Too many requests"}
                }
            }
        },
        "/api/blogs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["blogs"],
                "summary": "List published blog posts",
                "parameters": [
                    {"type": "string", "description": "Category filter", "name": "category", "in": "query"},
                    {"type": "integer", "description": "Page number (1-based)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid pagination"},
                    "429": {"description": "Too many requests"}
                }
            }
        },
        "/api/blogs/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["blogs"],
                "summary": "Get a published blog post",
                "parameters": [
                    {"type": "string", "description": "Post slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blog.DTO"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/admin/blogs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List all blog posts",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Create a blog post",
                "parameters": [
                    {"description": "Post", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/blog.Request"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/blog.DTO"}},
                    "400": {"description": "Validation failed"},
                    "401": {"description": "Unauthorized"},
                    "409": {"description": "Slug already exists"}
                }
            }
        },
        "/api/admin/blogs/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Update a blog post",
                "parameters": [
                    {"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true},
                    {"description": "Post", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/blog.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/blog.DTO"}},
                    "400": {"description": "Validation failed"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Delete a blog post",
                "parameters": [
                    {"type": "integer", "description": "Post ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not found"}}
            }
        },
        "/api/enrollments": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["enrollments"],
                "summary": "Submit a course enrollment or demo booking",
                "parameters": [
                    {"description": "Lead", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/enrollment.Request"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/enrollment.CreatedResponse"}},
                    "400": {"description": "Validation failed"},
                    "403": {"description": "CORS policy violation"},
                    "429": {"description": "Too many requests"}
                }
            }
        },
        "/api/admin/enrollments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List leads",
                "parameters": [
                    {"type": "string", "description": "course or demo", "name": "kind", "in": "query"},
                    {"type": "string", "description": "YYYY-MM-DD or RFC 3339", "name": "since", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/admin/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Dashboard statistics",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}
            }
        }
    },
    "definitions": {
        "auth.tokenRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "auth.tokenResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "expiresAt": {"type": "string"}}
        },
        "blog.Request": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "slug": {"type": "string"},
                "excerpt": {"type": "string"},
                "content": {"type": "string"},
                "author": {"type": "string"},
                "category": {"type": "string"},
                "imageUrl": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "published": {"type": "boolean"}
            }
        },
        "blog.DTO": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "slug": {"type": "string"},
                "excerpt": {"type": "string"},
                "content": {"type": "string"},
                "author": {"type": "string"},
                "category": {"type": "string"},
                "imageUrl": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "published": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "enrollment.Request": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["course", "demo"]},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "course": {"type": "string"},
                "preferredDate": {"type": "string"},
                "message": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "enrollment.CreatedResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "kind": {"type": "string"}, "message": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Admin JWT. Send as \"Bearer {token}\".",
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Rajeshwari Tech API",
	Description:      "Blog, enrollment and back-office API of the Rajeshwari Tech training site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
