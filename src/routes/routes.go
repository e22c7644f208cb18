package routes

import (
	"github.com/gin-gonic/gin"

	"store-ledger/src/handlers"
	"store-ledger/src/middlewares"
)

func RegisterOrderRoutes(r *gin.RouterGroup, handler *handlers.OrderHandler) {
	guard := middlewares.InFlightGuard()

	// GET endpoints
	r.GET("/orders", handler.ListOrders)
	r.GET("/orders/:id", handler.GetOrder)

	// POST endpoints
	r.POST("/orders", guard, handler.CreateSaleOrder)
	r.POST("/orders/:id/cancel", guard, handler.CancelSaleOrder)
	r.POST("/orders/:id/lock", handler.LockOrder)
	r.POST("/returns", guard, handler.AddReturnNote)
	r.POST("/quotes", guard, handler.CreateQuote)
	r.POST("/quotes/:id/convert", guard, handler.ConvertQuote)
	r.POST("/quotes/:id/cancel", guard, handler.CancelQuote)

	// PUT endpoint
	r.PUT("/orders/:id/status", handler.UpdateOrderStatus)

	// DELETE endpoint
	r.DELETE("/orders/:id", handler.DeleteSaleOrder)
}

func RegisterPurchaseRoutes(r *gin.RouterGroup, handler *handlers.PurchaseHandler) {
	guard := middlewares.InFlightGuard()

	r.GET("/imports", handler.ListImportOrders)
	r.GET("/imports/:id", handler.GetImportOrder)

	r.POST("/imports", guard, handler.CreateImportOrder)
	r.POST("/imports/:id/receiving-notes", guard, handler.AddReceivingNote)
	r.POST("/imports/:id/returns", guard, handler.AddPurchaseReturnNote)
}

func RegisterDebtRoutes(r *gin.RouterGroup, handler *handlers.DebtHandler) {
	guard := middlewares.InFlightGuard()

	r.GET("/debts", handler.ListDebts)
	r.GET("/debts/:id", handler.GetDebt)

	r.POST("/debts/:id/payments", guard, handler.AddPayment)
	r.POST("/batch-payments", guard, handler.BatchPayment)
}

func RegisterLedgerRoutes(r *gin.RouterGroup, handler *handlers.LedgerHandler) {
	r.GET("/products", handler.ListProducts)
	r.GET("/products/:id", handler.GetProduct)
	r.GET("/products/:id/logs", handler.GetInventoryLogs)
	r.GET("/products/:id/reconcile", handler.ReconcileProduct)
	r.POST("/products/:id/adjust", handler.AdjustStock)

	r.GET("/cash/entries", handler.ListCashEntries)
	r.GET("/cash/totals", handler.GetCashTotals)

	r.GET("/audit", handler.GetAuditTrail)
}
