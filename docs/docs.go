// Package docs registers the OpenAPI document served at /swagger.
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
        "/checkout": {
            "post": {
                "tags": ["orders"],
                "summary": "Place an order",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "402": {"description": "Payment declined"},
                    "503": {"description": "Upstream unavailable"}
                }
            }
        },
        "/orders/{order_uid}": {
            "get": {
                "tags": ["orders"],
                "summary": "Get order by UID",
                "parameters": [{"name": "order_uid", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/orders/{order_uid}/status": {
            "post": {
                "tags": ["orders"],
                "summary": "Update order status",
                "parameters": [{"name": "order_uid", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Unknown status literal"},
                    "409": {"description": "Concurrent transition conflict"},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/orders/{order_uid}/shipment": {
            "post": {
                "tags": ["orders"],
                "summary": "Update shipment status",
                "parameters": [{"name": "order_uid", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Out-of-order event"}
                }
            }
        },
        "/shipping/quote": {
            "post": {
                "tags": ["shipping"],
                "summary": "Quote shipping rates",
                "responses": {
                    "200": {"description": "OK, available flag inside"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/auth/password-reset": {
            "post": {
                "tags": ["auth"],
                "summary": "Request a password reset",
                "responses": {
                    "202": {"description": "Accepted"},
                    "429": {"description": "Too Many Requests"}
                }
            }
        },
        "/admin/accounts": {
            "post": {
                "tags": ["admin"],
                "summary": "Create admin account",
                "responses": {
                    "202": {"description": "Accepted"},
                    "401": {"description": "Unauthorized"},
                    "429": {"description": "Too Many Requests"}
                }
            }
        },
        "/admin/ratelimit/{action}/{identifier}": {
            "get": {
                "tags": ["admin"],
                "summary": "Inspect a rate limit counter",
                "parameters": [
                    {"name": "action", "in": "path", "required": true, "type": "string"},
                    {"name": "identifier", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/admin/integrations": {
            "get": {
                "tags": ["admin"],
                "summary": "Introspect integration configuration",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Fulfillment Service API",
	Description:      "Order checkout, lifecycle and shipping rate API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
