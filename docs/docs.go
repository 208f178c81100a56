// Package docs registers the OpenAPI description of the video backend with
// swag so gin-swagger can serve it at /swagger/*any.
//
// Regenerate from the handler annotations with:
//
//	swag init -g internal/http/router.go -o docs
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
        "/videos": {
            "get": {
                "tags": ["Videos"],
                "summary": "List public videos",
                "operationId": "listVideos",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "user_id", "in": "query"},
                    {"type": "integer", "default": 1, "minimum": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "maximum": 100, "minimum": 1, "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListVideosResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/videos/{id}": {
            "get": {
                "tags": ["Videos"],
                "summary": "Get a video",
                "description": "Every call increments views_count.",
                "operationId": "getVideo",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "minimum": 1, "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.VideoDetail"}},
                    "404": {"description": "Video not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/videos/{id}/like": {
            "post": {
                "tags": ["Reactions"],
                "summary": "Like or dislike a video",
                "description": "Same type again removes the reaction, the other type switches it.",
                "operationId": "toggleReaction",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "X-User-ID", "in": "header"},
                    {"type": "integer", "minimum": 1, "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ToggleReactionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ToggleResult"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Video or user not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Concurrent conflicting update", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/videos/{id}/comments": {
            "get": {
                "tags": ["Comments"],
                "summary": "List comments on a video",
                "operationId": "listComments",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "minimum": 1, "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "If-None-Match", "in": "header"},
                    {"type": "integer", "default": 1, "minimum": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "maximum": 100, "minimum": 1, "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListCommentsResponse"}, "headers": {"ETag": {"type": "string"}}},
                    "304": {"description": "Not Modified"},
                    "404": {"description": "Video not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["Comments"],
                "summary": "Comment on a video",
                "operationId": "postComment",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "X-User-ID", "in": "header"},
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"type": "integer", "minimum": 1, "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PostCommentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Comment"}},
                    "200": {"description": "Replayed", "schema": {"$ref": "#/definitions/domain.Comment"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Video, user or parent comment not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/videos/{id}/progress": {
            "post": {
                "tags": ["History"],
                "summary": "Save watch progress",
                "operationId": "recordProgress",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "X-User-ID", "in": "header"},
                    {"type": "integer", "minimum": 1, "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RecordProgressRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.WatchHistory"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Video or user not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/recommendations/{user_id}": {
            "get": {
                "tags": ["Recommendations"],
                "summary": "Recommend videos for a user",
                "operationId": "getRecommendations",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "minimum": 1, "name": "user_id", "in": "path", "required": true},
                    {"type": "integer", "default": 20, "minimum": 1, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RecommendationsResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/ws": {
            "get": {
                "tags": ["Realtime"],
                "summary": "Realtime channel",
                "operationId": "websocket",
                "parameters": [
                    {"type": "integer", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "503": {"description": "Realtime unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "video not found"}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"}
            }
        },
        "handlers.ToggleReactionRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "user_id": {"type": "integer", "example": 1},
                "type": {"type": "string", "enum": ["like", "dislike"]}
            }
        },
        "handlers.PostCommentRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "user_id": {"type": "integer", "example": 1},
                "text": {"type": "string", "example": "Great explanation!"},
                "reply_to": {"type": "integer", "example": 12}
            }
        },
        "handlers.RecordProgressRequest": {
            "type": "object",
            "required": ["watch_time"],
            "properties": {
                "user_id": {"type": "integer", "example": 1},
                "watch_time": {"type": "integer", "example": 120},
                "completed": {"type": "boolean"}
            }
        },
        "handlers.ListVideosResponse": {
            "type": "object",
            "properties": {
                "videos": {"type": "array", "items": {"$ref": "#/definitions/domain.VideoSummary"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.ListCommentsResponse": {
            "type": "object",
            "properties": {
                "comments": {"type": "array", "items": {"$ref": "#/definitions/domain.CommentView"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.RecommendationsResponse": {
            "type": "object",
            "properties": {
                "recommendations": {"type": "array", "items": {"$ref": "#/definitions/domain.VideoSummary"}},
                "source": {"type": "string", "enum": ["personalized", "trending"]}
            }
        },
        "services.ToggleResult": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["added", "changed", "removed"]},
                "type": {"type": "string", "enum": ["like", "dislike"]},
                "likes": {"type": "integer"},
                "dislikes": {"type": "integer"}
            }
        },
        "domain.VideoSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "thumbnail": {"type": "string"},
                "views": {"type": "integer"},
                "duration": {"type": "integer"},
                "category": {"type": "string"},
                "likes": {"type": "integer"},
                "upload_date": {"type": "string", "format": "date-time"},
                "channel": {"type": "string"},
                "channel_avatar": {"type": "string"},
                "verified": {"type": "boolean"}
            }
        },
        "domain.VideoDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "video_url": {"type": "string"},
                "thumbnail": {"type": "string"},
                "duration": {"type": "integer"},
                "views_count": {"type": "integer"},
                "likes_count": {"type": "integer"},
                "dislikes_count": {"type": "integer"},
                "comments_count": {"type": "integer"},
                "category": {"type": "string"},
                "tags": {"type": "string"},
                "tag_list": {"type": "array", "items": {"type": "string"}},
                "upload_date": {"type": "string", "format": "date-time"},
                "channel": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "integer"},
                        "name": {"type": "string"},
                        "avatar": {"type": "string"},
                        "verified": {"type": "boolean"},
                        "subscribers": {"type": "integer"}
                    }
                }
            }
        },
        "domain.Comment": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "video_id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "text": {"type": "string"},
                "likes_count": {"type": "integer"},
                "reply_to": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "domain.CommentView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "video_id": {"type": "integer"},
                "text": {"type": "string"},
                "likes": {"type": "integer"},
                "reply_to": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "user": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "integer"},
                        "username": {"type": "string"},
                        "avatar": {"type": "string"}
                    }
                }
            }
        },
        "domain.WatchHistory": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "video_id": {"type": "integer"},
                "watch_time": {"type": "integer"},
                "completed": {"type": "boolean"},
                "last_watched": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Video Backend API",
	Description:      "Video catalog, engagement (likes, comments, watch progress), recommendations and a realtime WebSocket channel.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
