// Synapse - Learning Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/synapse

// Package docs registers the OpenAPI 2.0 description of the HTTP API with
// swag. The router serves it at /swagger/doc.json and the Swagger UI under
// /swagger/. Paths here follow the @Router annotations in internal/api.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "GitHub Repository",
            "url": "https://github.com/tomtom215/synapse/issues"
        },
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Index state, content count, uptime and dependency checks. Status is unhealthy only before the first completed build.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        },
        "/health/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "200 once an index serves searches; 503 before the first build and while the server drains.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Not ready", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/recommend": {
            "post": {
                "description": "Embeds each topic and returns the nearest content items, deduplicated and scored within the result set.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Recommendations"],
                "summary": "Recommend content for topics",
                "parameters": [
                    {"description": "Topics and optional limit", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.RecommendRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/recommend.Response"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Upstream or internal failure", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Index not built", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/refresh-index": {
            "post": {
                "description": "Reloads every collection and rebuilds the index. The previous index keeps serving until the new one is swapped in.",
                "produces": ["application/json"],
                "tags": ["Index"],
                "summary": "Rebuild the index",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatusResponse"}},
                    "500": {"description": "Refresh failed", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/api/index/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Index"],
                "summary": "Index statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/recommend.IndexStats"}}
                }
            }
        },
        "/api/index/items": {
            "post": {
                "description": "Appends documents to the live index (200) or queues them as a content event (202).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Index"],
                "summary": "Add content items",
                "parameters": [
                    {"description": "Documents to index", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.AddItemsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Added", "schema": {"$ref": "#/definitions/api.StatusResponse"}},
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/api.StatusResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Store or queue failure", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Index not built", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true},
                "request_id": {"type": "string"}
            }
        },
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "detail": {"type": "string"},
                "error": {"$ref": "#/definitions/api.APIError"}
            }
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "index_trained": {"type": "boolean"},
                "total_content": {"type": "integer"},
                "state": {"type": "string"},
                "uptime_seconds": {"type": "number"},
                "dependencies": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "api.RecommendRequest": {
            "type": "object",
            "properties": {
                "topics": {"type": "array", "maxItems": 50, "items": {"type": "string"}},
                "limit": {"type": "integer", "minimum": 1}
            }
        },
        "api.AddItemsRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "content_type": {"type": "string", "enum": ["course", "blog", "forum"]},
                "collection": {"type": "string", "maxLength": 128},
                "items": {"type": "array", "minItems": 1, "maxItems": 1000, "items": {"type": "object", "additionalProperties": true}}
            }
        },
        "api.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "total_content": {"type": "integer"},
                "added": {"type": "integer"},
                "queued": {"type": "integer"}
            }
        },
        "recommend.Recommendation": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "title": {"type": "string"},
                "desc": {"type": "string"},
                "image": {"type": "string"},
                "score": {"type": "number"},
                "topic": {"type": "string"},
                "content_type": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "difficulty": {"type": "string"},
                "duration_hours": {"type": "number"},
                "author": {"type": "string"},
                "views": {"type": "integer"},
                "replies": {"type": "integer"},
                "labels": {"type": "array", "items": {"type": "string"}}
            }
        },
        "recommend.Response": {
            "type": "object",
            "properties": {
                "recommendations": {"type": "array", "items": {"$ref": "#/definitions/recommend.Recommendation"}},
                "total": {"type": "integer"}
            }
        },
        "recommend.IndexStats": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "is_trained": {"type": "boolean"},
                "total_vectors": {"type": "integer"},
                "total_content": {"type": "integer"},
                "dimension": {"type": "integer"},
                "strategy": {"type": "string"},
                "nlist": {"type": "integer"},
                "nprobe": {"type": "integer"},
                "model": {"type": "string"},
                "built_at": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Synapse API",
	Description:      "Topic-based recommendations over courses, blog articles and forum posts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
