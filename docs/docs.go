// Package docs registers the generated swagger spec with the swag runtime.
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
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Register a new user",
                "responses": {
                    "201": {"description": "User created successfully"},
                    "400": {"description": "Bad request"},
                    "409": {"description": "Email already registered"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Authenticate a user",
                "responses": {
                    "200": {"description": "User authenticated successfully"},
                    "400": {"description": "Bad request"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/logout": {
            "get": {
                "tags": ["users"],
                "summary": "Log out",
                "responses": {
                    "303": {"description": "Redirect to /login"}
                }
            }
        },
        "/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get own profile",
                "responses": {
                    "200": {"description": "Profile retrieved successfully"},
                    "401": {"description": "Unauthorized"},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Upload profile picture",
                "responses": {
                    "200": {"description": "Profile picture uploaded successfully"},
                    "400": {"description": "Bad request"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/allpost": {
            "get": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Get all posts",
                "responses": {
                    "200": {"description": "Posts fetched successfully"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/post": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Create a new post",
                "responses": {
                    "201": {"description": "Post created successfully"},
                    "400": {"description": "Bad request"},
                    "401": {"description": "Unauthorized"},
                    "429": {"description": "Rate limit exceeded"}
                }
            }
        },
        "/updatepost/{id}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Update a post",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Post updated successfully"},
                    "404": {"description": "Post not found"}
                }
            }
        },
        "/delete/{id}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Delete a post",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Post deleted successfully"},
                    "404": {"description": "Post not found"}
                }
            }
        },
        "/like/{id}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["posts"],
                "summary": "Toggle a like",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Like toggled successfully"},
                    "404": {"description": "Post not found"},
                    "429": {"description": "Rate limit exceeded"}
                }
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
	Title:            "Minisocial API",
	Description:      "Minimal social-posting service: registration, login, posts, likes, profile pictures.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
