// Package docs registers the OpenAPI document for the terminal's local API.
// Keep it in step with the handler annotations (swag init -g cmd/pos-terminal/main.go).
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
        "/sessions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Loads the product catalog and creates an empty cart with a scanner in camera mode.",
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Start a sale session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.SessionResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Catalog could not be loaded", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/cart/items": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Adds one unit. The same product in another size is a separate line.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Cart"],
                "summary": "Add a product to the cart",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Product and optional size", "name": "item", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.AddItemRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CartView"}},
                    "400": {"description": "Out of stock or unknown size", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Session or product not found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/scanner/capture": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Uploads the frame for recognition. Unsized matches go straight into the cart and the scanner returns to the camera.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Scanner"],
                "summary": "Recognize a captured frame",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Captured frame", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/scanner.View"}},
                    "400": {"description": "Missing or oversized image", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Scanner is not on the camera, or the capture was superseded", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Too many captures for this session", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Submits the cart as one sale. Only the submitted lines leave the cart, and only when the backend accepts it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Checkout"],
                "summary": "Complete the sale",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Payment details", "name": "sale", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CheckoutRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Receipt"}},
                    "400": {"description": "Empty cart or invalid payment details", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Another checkout for this cart is in progress", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Backend did not accept the sale; the cart is unchanged", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.AddItemRequest": {
            "type": "object",
            "required": ["productId"],
            "properties": {
                "productId": {"type": "string"},
                "size": {"type": "string"}
            }
        },
        "models.CartItem": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "name": {"type": "string"},
                "size": {"type": "string"},
                "quantity": {"type": "integer"},
                "unitPrice": {"type": "string", "example": "25.00"},
                "discount": {"type": "string", "example": "0"},
                "lineTotal": {"type": "string", "example": "50.00"}
            }
        },
        "models.CartTotals": {
            "type": "object",
            "properties": {
                "subtotal": {"type": "string"},
                "totalDiscount": {"type": "string"},
                "tax": {"type": "string"},
                "grandTotal": {"type": "string"}
            }
        },
        "models.CartView": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.CartItem"}},
                "totals": {"$ref": "#/definitions/models.CartTotals"}
            }
        },
        "models.CheckoutRequest": {
            "type": "object",
            "required": ["paymentMethod"],
            "properties": {
                "paymentMethod": {"type": "string", "enum": ["cash", "card", "bank_transfer", "mobile_money"]},
                "customerName": {"type": "string", "maxLength": 120},
                "notes": {"type": "string", "maxLength": 500},
                "discount": {"type": "string", "example": "5.00"}
            }
        },
        "models.Receipt": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "saleId": {"type": "string"},
                "saleNumber": {"type": "string"},
                "paymentMethod": {"type": "string"},
                "customerName": {"type": "string"},
                "subtotal": {"type": "string"},
                "totalDiscount": {"type": "string"},
                "tax": {"type": "string"},
                "grandTotal": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "models.SessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        },
        "scanner.View": {
            "type": "object",
            "properties": {
                "step": {"type": "string", "enum": ["camera", "result", "selection", "manual"]},
                "failure": {
                    "type": "object",
                    "properties": {
                        "kind": {"type": "string", "enum": ["transport", "no_match", "rejected", "no_sizes"]},
                        "message": {"type": "string"},
                        "searchTerms": {"type": "array", "items": {"type": "string"}}
                    }
                },
                "product": {"type": "object"},
                "confidence": {"type": "number"},
                "source": {"type": "string", "enum": ["camera", "selection", "manual"]},
                "sizes": {"type": "array", "items": {"type": "object"}},
                "selectedSize": {"type": "string"},
                "matches": {"type": "array", "items": {"type": "object"}},
                "searchTerms": {"type": "array", "items": {"type": "string"}},
                "query": {"type": "string"},
                "products": {"type": "array", "items": {"type": "object"}},
                "searched": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Title:            "POS Terminal API",
	Description:      "Local API driving the point-of-sale scanner and cart.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
