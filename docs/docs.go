// Package docs holds the OpenAPI description of the books api served by swagger.
package docs

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
        "/books": {
            "get": {
                "produces": ["application/json"],
                "summary": "List all books",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.BooksResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/main.APIError"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Create a book",
                "parameters": [
                    {"description": "book to create", "name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.Book"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/main.BookResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/main.APIError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/main.APIError"}}
                }
            }
        },
        "/books/{isbn}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get a book by its ISBN",
                "parameters": [
                    {"type": "string", "description": "book isbn", "name": "isbn", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.BookResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.APIError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/main.APIError"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Replace a book by its ISBN",
                "parameters": [
                    {"type": "string", "description": "book isbn", "name": "isbn", "in": "path", "required": true},
                    {"description": "full book payload", "name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.Book"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.BookResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.APIError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/main.APIError"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "summary": "Delete a book by its ISBN",
                "parameters": [
                    {"type": "string", "description": "book isbn", "name": "isbn", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.APIError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/main.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "main.APIError": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/main.APIErrorBody"}}
        },
        "main.APIErrorBody": {
            "type": "object",
            "properties": {"message": {}, "status": {"type": "integer"}}
        },
        "main.Book": {
            "type": "object",
            "properties": {
                "amazon_url": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"},
                "language": {"type": "string"},
                "pages": {"type": "integer"},
                "publisher": {"type": "string"},
                "title": {"type": "string"},
                "year": {"type": "integer"}
            }
        },
        "main.BookResponse": {
            "type": "object",
            "properties": {"book": {"$ref": "#/definitions/main.Book"}}
        },
        "main.BooksResponse": {
            "type": "object",
            "properties": {"books": {"type": "array", "items": {"$ref": "#/definitions/main.Book"}}}
        },
        "main.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Books API",
	Description:      "Books catalog keyed by ISBN and backed by Postgres.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
