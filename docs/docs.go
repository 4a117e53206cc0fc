// Package docs holds the Swagger 2.0 document of the API. Keep it in step with the swag annotations on the handlers.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account",
                "parameters": [
                    {"description": "Account", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/budgets/{category}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Creates the budget or overwrites its amount, keeping existing expenses",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Set a category budget",
                "parameters": [
                    {"type": "string", "description": "Category slug or name", "name": "category", "in": "path", "required": true},
                    {"description": "Budget amount", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AmountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CategorySummaryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/budgets/{category}/expenses": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Add an expense",
                "parameters": [
                    {"type": "string", "description": "Category slug or name", "name": "category", "in": "path", "required": true},
                    {"description": "Expense", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateExpenseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.ExpenseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/budgets/{category}/expenses/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "An amount that is not a valid non-negative number is stored as zero",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Edit one field of an expense",
                "parameters": [
                    {"type": "string", "description": "Category slug or name", "name": "category", "in": "path", "required": true},
                    {"type": "string", "description": "Expense ID", "name": "id", "in": "path", "required": true},
                    {"description": "Field and value", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateExpenseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ExpenseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/categories": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Fixed category list with icons and which ones the caller has budgeted",
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "List the category catalogue",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.CategoryOptionResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Budgeted categories with their expenses, the derived totals and the save status",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Get the dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DashboardResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/dashboard/export": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Uploads a JSON snapshot and returns a temporary download link",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Export the ledger",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.ExportResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/dashboard/salary": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Set the total salary",
                "parameters": [
                    {"description": "Salary", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AmountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SummaryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/dashboard/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Derived totals, monthly trend and spending breakdown",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Get the dashboard summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SummaryResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/session": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Flush and close the session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CloseResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/session/flush": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Save unsaved changes now",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.FlushResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/settings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Get settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SettingsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Change the theme",
                "parameters": [
                    {"description": "Settings", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SettingsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List the transaction history",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.TransactionResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        }
    },
    "definitions": {
        "handler.AmountRequest": {
            "type": "object",
            "properties": {"amount": {"type": "string", "example": "2000.00"}}
        },
        "handler.CategoryOptionResponse": {
            "type": "object",
            "properties": {
                "budgeted": {"type": "boolean"},
                "icon": {"type": "string"},
                "name": {"type": "string"},
                "slug": {"type": "string"}
            }
        },
        "handler.CategoryShareResponse": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "percent": {"type": "string"},
                "spent": {"type": "string"}
            }
        },
        "handler.CategorySummaryResponse": {
            "type": "object",
            "properties": {
                "budget": {"type": "string"},
                "expenseCount": {"type": "integer"},
                "expenses": {"type": "array", "items": {"$ref": "#/definitions/handler.ExpenseResponse"}},
                "icon": {"type": "string"},
                "name": {"type": "string"},
                "overBudget": {"type": "boolean"},
                "remaining": {"type": "string"},
                "spent": {"type": "string"}
            }
        },
        "handler.CloseResponse": {
            "type": "object",
            "properties": {"closed": {"type": "boolean"}}
        },
        "handler.CreateExpenseRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "125.50"},
                "date": {"type": "string", "example": "2024-03-02"},
                "note": {"type": "string", "example": "Weekly groceries"}
            }
        },
        "handler.DashboardResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"$ref": "#/definitions/handler.CategorySummaryResponse"}},
                "summary": {"$ref": "#/definitions/handler.SummaryResponse"},
                "sync": {"$ref": "#/definitions/service.SyncStatus"}
            }
        },
        "handler.ExpenseResponse": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "date": {"type": "string"},
                "id": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "handler.FlushResponse": {
            "type": "object",
            "properties": {"saving": {"type": "boolean"}}
        },
        "handler.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "jane@example.com"},
                "password": {"type": "string"}
            }
        },
        "handler.LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"type": "object"}
            }
        },
        "handler.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handler.MonthPointResponse": {
            "type": "object",
            "properties": {
                "expenses": {"type": "string"},
                "month": {"type": "string"},
                "remaining": {"type": "string"}
            }
        },
        "handler.ProblemDetails": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/handler.ValidationError"}},
                "instance": {"type": "string"},
                "status": {"type": "integer"},
                "title": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "handler.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.SettingsResponse": {
            "type": "object",
            "properties": {
                "theme": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.SummaryResponse": {
            "type": "object",
            "properties": {
                "breakdown": {"type": "array", "items": {"$ref": "#/definitions/handler.CategoryShareResponse"}},
                "categories": {"type": "array", "items": {"$ref": "#/definitions/handler.CategorySummaryResponse"}},
                "monthly": {"type": "array", "items": {"$ref": "#/definitions/handler.MonthPointResponse"}},
                "overBudget": {"type": "boolean"},
                "remainingBalance": {"type": "string"},
                "totalBudgeted": {"type": "string"},
                "totalExpenses": {"type": "string"},
                "totalSalary": {"type": "string"}
            }
        },
        "handler.TransactionResponse": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "category": {"type": "string"},
                "date": {"type": "string"},
                "id": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "handler.UpdateExpenseRequest": {
            "type": "object",
            "properties": {
                "field": {"type": "string", "enum": ["date", "note", "amount"]},
                "value": {"type": "string"}
            }
        },
        "handler.UpdateSettingsRequest": {
            "type": "object",
            "properties": {"theme": {"type": "string", "enum": ["light", "dark"]}}
        },
        "handler.ValidationError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "service.ExportResult": {
            "type": "object",
            "properties": {
                "expiresAt": {"type": "string"},
                "key": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "service.SyncStatus": {
            "type": "object",
            "properties": {
                "lastError": {"type": "string"},
                "lastSavedAt": {"type": "string"},
                "loadError": {"type": "string"},
                "loadFailed": {"type": "boolean"},
                "revision": {"type": "integer"},
                "saving": {"type": "boolean"},
                "state": {"type": "string"},
                "unsavedChanges": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the token.",
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
	Title:            "Fortuna Ledger API",
	Description:      "Monthly budget ledger with debounced sync to the remote dashboard store.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
