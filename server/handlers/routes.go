package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует маршруты API в Gin роутере
func RegisterRoutes(router *gin.Engine, h *QueryHandler) {
	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/stats", h.Stats)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:sku", h.GetProduct)
		api.GET("/transactions", h.ListTransactions)
		api.GET("/inventory", h.ListInventory)
		api.GET("/unmatched", h.Unmatched)
		api.GET("/errors", h.ErrorMetrics)
	}
}
