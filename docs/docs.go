// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/circulation/main.go
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
        "/v1/books": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "books"
                ],
                "summary": "Search the catalogue",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Text matched against title, author, tags and ISBN",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Exact genre",
                        "name": "genre",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Exact author",
                        "name": "author",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "all, available or unavailable",
                        "name": "availability",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.searchBooksResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                }
            }
        },
        "/v1/books/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "books"
                ],
                "summary": "Get a book",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Book id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.bookResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                }
            }
        },
        "/v1/checkouts": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "circulation"
                ],
                "summary": "Check a book out to a user",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Retry key; a repeated key returns the original loan",
                        "name": "Idempotency-Key",
                        "in": "header"
                    },
                    {
                        "description": "Checkout form",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.checkoutRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Idempotent replay",
                        "schema": {
                            "$ref": "#/definitions/handler.transactionResponse"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.transactionResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                }
            }
        },
        "/v1/returns/batch": {
            "post": {
                "description": "Returns of the same book are applied in submission order.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "circulation"
                ],
                "summary": "Queue a batch of returns",
                "parameters": [
                    {
                        "description": "Returned loans",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/handler.returnItemRequest"
                            }
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/handler.acceptedResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                }
            }
        },
        "/v1/transactions": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "circulation"
                ],
                "summary": "List books currently issued",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Book title, borrower name or library card id",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "returned, overdue, due_today, due_soon or active",
                        "name": "label",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.listTransactionsResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                }
            }
        },
        "/v1/transactions/{id}/fine/payment": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "circulation"
                ],
                "summary": "Settle the fine of a returned loan",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Transaction id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.transactionResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                }
            }
        },
        "/v1/transactions/{id}/return": {
            "post": {
                "description": "Closes the loan, restores the copy and locks any late fine.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "circulation"
                ],
                "summary": "Return a borrowed book",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Transaction id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.transactionResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                }
            }
        },
        "/v1/dashboard/librarian": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "dashboards"
                ],
                "summary": "Inventory and loan overview for staff",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.librarianDashboardResponse"
                        }
                    }
                }
            }
        },
        "/v1/users/{id}/borrowings": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "circulation"
                ],
                "summary": "A user's current loans and history",
                "parameters": [
                    {
                        "type": "string",
                        "description": "User id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Filters history by title or author",
                        "name": "q",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.borrowingsResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                }
            }
        },
        "/v1/users/{id}/dashboard": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "dashboards"
                ],
                "summary": "A borrower's account summary",
                "parameters": [
                    {
                        "type": "string",
                        "description": "User id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.studentDashboardResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.errorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                }
            }
        },
        "handler.acceptedResponse": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                },
                "count": {
                    "type": "integer"
                }
            }
        },
        "handler.checkoutRequest": {
            "type": "object",
            "required": [
                "book_id",
                "user_id"
            ],
            "properties": {
                "book_id": {
                    "type": "string"
                },
                "user_id": {
                    "type": "string"
                },
                "due_date": {
                    "type": "string",
                    "example": "2024-02-07"
                }
            }
        },
        "handler.returnItemRequest": {
            "type": "object",
            "required": [
                "transaction_id"
            ],
            "properties": {
                "transaction_id": {
                    "type": "string"
                },
                "book_id": {
                    "type": "string"
                }
            }
        },
        "handler.bookResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "author": {
                    "type": "string"
                },
                "isbn": {
                    "type": "string"
                },
                "genre": {
                    "type": "string"
                },
                "total_copies": {
                    "type": "integer"
                },
                "available_copies": {
                    "type": "integer"
                }
            }
        },
        "handler.searchBooksResponse": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handler.bookResponse"
                    }
                },
                "total": {
                    "type": "integer"
                },
                "genres": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "authors": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "handler.transactionResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "book_id": {
                    "type": "string"
                },
                "user_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "due_date": {
                    "type": "string"
                },
                "fine_cents": {
                    "type": "integer"
                },
                "fine": {
                    "type": "string"
                },
                "fine_paid": {
                    "type": "boolean"
                }
            }
        },
        "handler.listTransactionsResponse": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handler.transactionResponse"
                    }
                },
                "total": {
                    "type": "integer"
                }
            }
        },
        "handler.borrowingsResponse": {
            "type": "object"
        },
        "handler.librarianDashboardResponse": {
            "type": "object"
        },
        "handler.studentDashboardResponse": {
            "type": "object"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library Circulation API",
	Description:      "Checkout, return and fine lifecycle for a library's lending desk.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
