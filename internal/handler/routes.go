package handler

import (
	"github.com/dafibh/fortuna/ledger-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler. Auth and WebSocket are optional.
type Handlers struct {
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Budget    *BudgetHandler
	Expense   *ExpenseHandler
	Session   *SessionHandler
	Settings  *SettingsHandler
	Export    *ExportHandler
	WebSocket *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")

	// Sign-in proxy (public, remote store only)
	if h.Auth != nil {
		auth := api.Group("/auth")
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.Authenticate())
	if rateLimiter != nil {
		protected.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.GET("", h.Dashboard.GetDashboard)
	dashboard.GET("/summary", h.Dashboard.GetSummary)
	dashboard.PUT("/salary", h.Dashboard.SetSalary)
	dashboard.DELETE("/salary", h.Dashboard.ClearSalary)
	if h.Export != nil {
		dashboard.POST("/export", h.Export.Export)
	}

	protected.GET("/categories", h.Budget.GetCategories)
	protected.GET("/transactions", h.Dashboard.GetTransactions)

	// Budget and expense routes, :category is a slug or display name
	budgets := protected.Group("/budgets")
	budgets.PUT("/:category", h.Budget.SetBudget)
	budgets.DELETE("/:category", h.Budget.DeleteBudget)
	budgets.POST("/:category/expenses", h.Expense.CreateExpense)
	budgets.PATCH("/:category/expenses/:id", h.Expense.UpdateExpense)
	budgets.DELETE("/:category/expenses/:id", h.Expense.DeleteExpense)

	// Session routes
	session := protected.Group("/session")
	session.GET("", h.Session.GetStatus)
	session.POST("/flush", h.Session.Flush)
	session.DELETE("", h.Session.Close)

	// Settings routes
	settings := protected.Group("/settings")
	settings.GET("", h.Settings.GetSettings)
	settings.PUT("", h.Settings.UpdateSettings)
}
