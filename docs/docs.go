// Package docs registers the OpenAPI description served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/cart": {
            "get": {"tags": ["cart"], "summary": "List the caller's cart", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["cart"],
                "summary": "Add a product to the cart",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/AddToCart"}}],
                "responses": {"201": {"description": "cartId"}, "400": {"description": "Validation error"}, "404": {"description": "Product not found or unavailable"}}
            }
        },
        "/cart/{id}": {
            "put": {"tags": ["cart"], "summary": "Change quantity", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "delete": {"tags": ["cart"], "summary": "Remove an item", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/orders": {
            "get": {"tags": ["orders"], "summary": "All orders", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["orders"],
                "summary": "Place an order",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PlaceOrder"}}],
                "responses": {"201": {"description": "orderId"}, "400": {"description": "Validation error"}, "500": {"description": "Transaction failed"}}
            }
        },
        "/orders/my-orders": {"get": {"tags": ["orders"], "summary": "Orders of the caller", "responses": {"200": {"description": "OK"}}}},
        "/orders/user/{userId}": {"get": {"tags": ["orders"], "summary": "Orders of a user", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "userId", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/orders/{id}": {"put": {"tags": ["orders"], "summary": "Update order status", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Order not found"}}}},
        "/products": {
            "get": {"tags": ["catalog"], "summary": "List products", "parameters": [{"in": "query", "name": "category_id", "type": "integer"}, {"in": "query", "name": "available", "type": "boolean"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["catalog"], "summary": "Create a product", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/products/{id}": {
            "get": {"tags": ["catalog"], "summary": "Get a product", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["catalog"], "summary": "Update a product", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["catalog"], "summary": "Soft delete a product", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/products/{id}/restore": {"put": {"tags": ["catalog"], "summary": "Restore a soft-deleted product", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not deleted"}}}},
        "/products/deleted": {"get": {"tags": ["catalog"], "summary": "Soft-deleted products", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/products/export": {"get": {"tags": ["catalog"], "summary": "Export products as xlsx", "security": [{"BearerAuth": []}], "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "Workbook"}}}},
        "/categories": {"get": {"tags": ["catalog"], "summary": "List categories", "responses": {"200": {"description": "OK"}}}},
        "/pages/{pageName}": {"get": {"tags": ["catalog"], "summary": "Get a content page", "parameters": [{"in": "path", "name": "pageName", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register", "responses": {"201": {"description": "token and user"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "token and user"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/me": {"get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/stats": {"get": {"tags": ["admin"], "summary": "Dashboard statistics", "security": [{"BearerAuth": []}], "parameters": [{"in": "query", "name": "period", "type": "string", "enum": ["day", "week", "month", "year"]}], "responses": {"200": {"description": "OK"}}}},
        "/health": {"get": {"tags": ["ops"], "summary": "Liveness and store reachability", "responses": {"200": {"description": "OK"}, "503": {"description": "Store unreachable"}}}}
    },
    "definitions": {
        "AddToCart": {
            "type": "object",
            "required": ["product_id"],
            "properties": {
                "product_id": {"type": "integer"},
                "start_date": {"type": "string", "example": "2024-01-01"},
                "end_date": {"type": "string", "example": "2024-01-04"},
                "quantity": {"type": "integer", "example": 1}
            }
        },
        "OrderLine": {
            "type": "object",
            "properties": {
                "cartId": {"type": "integer"},
                "productId": {"type": "integer"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "PlaceOrder": {
            "type": "object",
            "properties": {
                "cartItems": {"type": "array", "items": {"$ref": "#/definitions/OrderLine"}},
                "guestSessionId": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "Error": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Rental Shop API",
	Description:      "Catalog, cart, orders and administration for the rental shop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
