package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/moneta-app/moneta-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rateLimiter *middleware.RateLimiter, categoryHandler *CategoryHandler, accountHandler *AccountHandler, accountTypeHandler *AccountTypeHandler, transactionHandler *TransactionHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(middleware.Principal())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Category routes
	categories := api.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.GET("/:id/children", categoryHandler.GetCategoryChildren)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Account type routes
	accountTypes := api.Group("/account-types")
	accountTypes.GET("", accountTypeHandler.GetAccountTypes)
	accountTypes.GET("/:id", accountTypeHandler.GetAccountType)

	// Account routes
	accounts := api.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/total-balance", accountHandler.GetTotalBalance)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.PATCH("/:id/balance", accountHandler.MutateBalance)
	accounts.PATCH("/:id/toggle-active", accountHandler.ToggleActive)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/summary", transactionHandler.GetSummary)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// WebSocket endpoint (authenticated, outside the rate limiter group)
	e.GET("/ws", wsHandler.HandleWS, middleware.Principal())
}
