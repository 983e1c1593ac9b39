// Package docs holds the hand-maintained OpenAPI description served under /swagger.
// Keep it in step with the godoc annotations in internal/modules/handler.
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
        "/quests": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quest"],
                "summary": "Create quest",
                "parameters": [{"description": "CreateQuest payload", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateQuestReq"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Quota exceeded"}}
            }
        },
        "/quests/nearby": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["quest"],
                "summary": "Nearby quests",
                "parameters": [
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "Longitude", "name": "lng", "in": "query", "required": true},
                    {"type": "number", "description": "Radius in km, default 5", "name": "radius", "in": "query"},
                    {"type": "string", "description": "Category filter, 'all' for none", "name": "category", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/quests/quota": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["quest"], "summary": "Creation quota", "responses": {"200": {"description": "OK"}}}
        },
        "/quests/{quest_id}": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["quest"], "summary": "Get quest",
                "parameters": [{"type": "string", "format": "uuid", "name": "quest_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/quests/{quest_id}/access": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["quest"], "summary": "Quest access",
                "parameters": [{"type": "string", "format": "uuid", "name": "quest_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/quests/{quest_id}/join": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["quest"], "summary": "Join quest",
                "parameters": [{"type": "string", "format": "uuid", "name": "quest_id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "Quest is full"}, "404": {"description": "Quest missing, inactive or expired"}, "409": {"description": "Already joined"}}}
        },
        "/quests/{quest_id}/leave": {
            "delete": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["quest"], "summary": "Leave quest",
                "parameters": [{"type": "string", "format": "uuid", "name": "quest_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not a participant"}}}
        },
        "/quests/{quest_id}/reviews": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["review"], "summary": "List reviews",
                "parameters": [{"type": "string", "format": "uuid", "name": "quest_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["review"], "summary": "Review quest",
                "parameters": [{"type": "string", "format": "uuid", "name": "quest_id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Already reviewed"}}}
        },
        "/quests/{quest_id}/messages": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["chat"], "summary": "List chat messages",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "quest_id", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "before", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Not a member"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["chat"], "summary": "Send chat message",
                "parameters": [{"type": "string", "format": "uuid", "name": "quest_id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "Not a member"}}}
        },
        "/users/me": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["user"], "summary": "Current user", "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["user"], "summary": "Update profile", "responses": {"200": {"description": "OK"}}}
        },
        "/users/me/push-token": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["user"], "summary": "Register push token", "responses": {"200": {"description": "OK"}}}
        },
        "/users/{user_id}": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["user"], "summary": "User profile",
                "parameters": [{"type": "string", "format": "uuid", "name": "user_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/users/{user_id}/follow": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["user"], "summary": "Follow user",
                "parameters": [{"type": "string", "format": "uuid", "name": "user_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["user"], "summary": "Unfollow user",
                "parameters": [{"type": "string", "format": "uuid", "name": "user_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/media/videos": {
            "post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "produces": ["application/json"], "tags": ["media"], "summary": "Upload quest video",
                "parameters": [{"type": "file", "name": "video", "in": "formData", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Not a video or too large"}, "503": {"description": "Storage not configured"}}},
            "delete": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["media"], "summary": "Delete quest video", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "handler.CreateQuestReq": {
            "type": "object",
            "required": ["title", "latitude", "longitude"],
            "properties": {
                "title": {"type": "string", "example": "Pickup football at the park"},
                "description": {"type": "string"},
                "latitude": {"type": "number", "example": -1.2921},
                "longitude": {"type": "number", "example": 36.8219},
                "category": {"type": "string", "example": "sports"},
                "max_participants": {"type": "integer", "example": 10},
                "video_url": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "GLITCH API",
	Description:      "Location-based quests: create, discover nearby, join, chat and review.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
