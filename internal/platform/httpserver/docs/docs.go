// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/signup": {
            "post": {
                "summary": "Register a user and return an access token",
                "tags": [
                    "identity"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SignupRequest"
                        }
                    }
                ]
            }
        },
        "/login": {
            "post": {
                "summary": "Exchange credentials for an access token",
                "tags": [
                    "identity"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ]
            }
        },
        "/me": {
            "get": {
                "summary": "Current user",
                "tags": [
                    "identity"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events": {
            "get": {
                "summary": "List approved events",
                "tags": [
                    "events"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "category",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "location",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "upcoming",
                        "in": "query",
                        "type": "boolean"
                    }
                ]
            },
            "post": {
                "summary": "Submit an event for approval",
                "tags": [
                    "events"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateEventRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{event_id}": {
            "get": {
                "summary": "Event detail",
                "tags": [
                    "events"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "event_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            },
            "put": {
                "summary": "Replace an event's details (organizer or admin)",
                "tags": [
                    "events"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "event_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateEventRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "summary": "Delete an upcoming event (organizer or admin)",
                "tags": [
                    "events"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "event_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{event_id}/rsvps": {
            "get": {
                "summary": "RSVPs of an event (organizer or admin)",
                "tags": [
                    "events"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "event_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{event_id}/feedback": {
            "get": {
                "summary": "Feedback of an event",
                "tags": [
                    "events"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "event_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/admin/pending-events": {
            "get": {
                "summary": "Events awaiting a decision",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/admin/approve-event/{event_id}": {
            "post": {
                "summary": "Approve or reject a pending event",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "event_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "approve",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/DecideRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/rsvp/{rsvp_id}/attend": {
            "post": {
                "summary": "Record attendance for an RSVP (organizer or admin)",
                "tags": [
                    "rsvp"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "rsvp_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "attended",
                        "in": "query",
                        "type": "boolean",
                        "default": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/rsvp/{event_id}": {
            "post": {
                "summary": "Create or update the caller's RSVP",
                "tags": [
                    "rsvp"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "event_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RSVPRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "summary": "Cancel the caller's RSVP",
                "tags": [
                    "rsvp"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "event_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/feedback/{event_id}": {
            "post": {
                "summary": "Rate a past event",
                "tags": [
                    "feedback"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "event_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/FeedbackRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/admin/analytics": {
            "get": {
                "summary": "Platform analytics",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/admin/trust-scores": {
            "get": {
                "summary": "Organizer trust leaderboard",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/organizers/{organizer_id}/trust-score": {
            "get": {
                "summary": "Trust score of one organizer",
                "tags": [
                    "trust"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "organizer_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/polls": {
            "get": {
                "summary": "List polls",
                "tags": [
                    "polls"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                }
            }
        },
        "/polls/{poll_id}": {
            "get": {
                "summary": "Poll detail",
                "tags": [
                    "polls"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "poll_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/votes": {
            "post": {
                "summary": "Cast or move a vote",
                "tags": [
                    "polls"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/VoteRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/admin/polls": {
            "post": {
                "summary": "Create a poll",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreatePollRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/admin/polls/{poll_id}/close": {
            "post": {
                "summary": "Close a poll",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "poll_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/whispers": {
            "get": {
                "summary": "List whispers",
                "tags": [
                    "whispers"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "location",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer"
                    }
                ]
            },
            "post": {
                "summary": "Post an anonymous whisper",
                "tags": [
                    "whispers"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/WhisperRequest"
                        }
                    }
                ]
            }
        },
        "/whispers/moderate/{whisper_id}": {
            "post": {
                "summary": "Approve or delete a whisper",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "whisper_id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/DecideRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/healthz": {
            "get": {
                "summary": "Liveness and dependency checks",
                "tags": [
                    "platform"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "success envelope"
                    },
                    "default": {
                        "description": "error envelope",
                        "schema": {
                            "$ref": "#/definitions/ErrorEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {
                            "type": "string"
                        },
                        "message": {
                            "type": "string"
                        },
                        "details": {
                            "type": "object"
                        }
                    }
                },
                "timestamp": {
                    "type": "string"
                }
            }
        },
        "SignupRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "CreateEventRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "location": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "max_attendees": {
                    "type": "integer"
                }
            }
        },
        "DecideRequest": {
            "type": "object",
            "properties": {
                "approve": {
                    "type": "boolean"
                }
            }
        },
        "RSVPRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "attendee_count": {
                    "type": "integer"
                }
            }
        },
        "FeedbackRequest": {
            "type": "object",
            "properties": {
                "rating": {
                    "type": "integer"
                },
                "comment": {
                    "type": "string"
                }
            }
        },
        "VoteRequest": {
            "type": "object",
            "properties": {
                "poll_id": {
                    "type": "string"
                },
                "option": {
                    "type": "string"
                }
            }
        },
        "CreatePollRequest": {
            "type": "object",
            "properties": {
                "question": {
                    "type": "string"
                },
                "options": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "WhisperRequest": {
            "type": "object",
            "properties": {
                "text": {
                    "type": "string"
                },
                "location": {
                    "type": "string"
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
	Title:            "Community Pulse API",
	Description:      "Community events, RSVPs, organizer trust, polls and anonymous whispers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
