// Package docs содержит описание API для Swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Internal Use Only"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Checks that the results database is reachable",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/stats": {
            "get": {
                "description": "Row counts per table and matched/unmatched transaction totals",
                "produces": ["application/json"],
                "tags": ["reconciliation"],
                "summary": "Results statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.StatsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List catalog products",
                "parameters": [
                    {"type": "string", "description": "SKU substring", "name": "q", "in": "query"},
                    {"type": "integer", "description": "Page size (1-1000)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/products/{sku}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Get product by SKU",
                "parameters": [
                    {"type": "string", "description": "Normalized SKU", "name": "sku", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/transactions": {
            "get": {
                "description": "Transactions in insertion order, optionally filtered",
                "produces": ["application/json"],
                "tags": ["reconciliation"],
                "summary": "List retail transactions",
                "parameters": [
                    {"type": "string", "description": "Normalized SKU", "name": "sku", "in": "query"},
                    {"type": "string", "description": "Order ID", "name": "order_id", "in": "query"},
                    {"type": "boolean", "description": "Warehouse match flag", "name": "matched", "in": "query"},
                    {"type": "integer", "description": "Page size (1-1000)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/inventory": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reconciliation"],
                "summary": "List warehouse inventory",
                "parameters": [
                    {"type": "string", "description": "Normalized SKU", "name": "sku", "in": "query"},
                    {"type": "integer", "description": "Page size (1-1000)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/v1/unmatched": {
            "get": {
                "description": "Retail SKUs with no warehouse record, with row and quantity totals",
                "produces": ["application/json"],
                "tags": ["reconciliation"],
                "summary": "Unmatched retail SKUs",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/database.UnmatchedSKU"}}}
                }
            }
        },
        "/api/v1/errors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "API error metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/errors.ErrorMetrics"}}
                }
            }
        }
    },
    "definitions": {
        "database.UnmatchedSKU": {
            "type": "object",
            "properties": {
                "normalized_sku": {"type": "string"},
                "rows": {"type": "integer"},
                "quantity": {"type": "integer"}
            }
        },
        "errors.ErrorMetrics": {
            "type": "object",
            "properties": {
                "total_errors": {"type": "integer"},
                "errors_by_kind": {"type": "object", "additionalProperties": {"type": "integer"}},
                "errors_by_status": {"type": "object", "additionalProperties": {"type": "integer"}},
                "errors_by_endpoint": {"type": "object", "additionalProperties": {"type": "integer"}},
                "uptime_seconds": {"type": "number"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string", "enum": ["invalid_query", "not_found", "store_unavailable", "internal"]},
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "database": {"type": "string"},
                "driver": {"type": "string"}
            }
        },
        "handlers.ListResponse": {
            "type": "object",
            "properties": {
                "items": {},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "handlers.StatsResponse": {
            "type": "object",
            "properties": {
                "tables": {"type": "object", "additionalProperties": {"type": "integer"}},
                "matched_rows": {"type": "integer"},
                "unmatched_rows": {"type": "integer"},
                "unmatched_skus": {"type": "integer"}
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "normalized_sku": {"type": "string"},
                "base_product_name": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:9999",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "retailsync API",
	Description:      "Read-only access to reconciled retail transactions, warehouse inventory and the product catalog.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
