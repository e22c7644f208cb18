package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-ledger/src/models"
	"store-ledger/src/requests"
	"store-ledger/src/services"
)

type OrderHandler struct {
	Service *services.Orchestrator
}

func orderLines(items []requests.OrderLine) []services.OrderLineInput {
	lines := make([]services.OrderLineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, services.OrderLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return lines
}

// ============ SALE ORDERS ============

// CreateSaleOrder - Create sale order
func (h *OrderHandler) CreateSaleOrder(c *gin.Context) {
	var req requests.CreateSaleOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Service.CreateSaleOrder(services.CreateSaleOrderRequest{
		PartnerID:     req.PartnerID,
		CustomerName:  req.CustomerName,
		Items:         orderLines(req.Items),
		Discount:      req.Discount,
		VATRate:       req.VATRate,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		DueInDays:     req.DueInDays,
		Note:          req.Note,
		Actor:         req.Actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data":    order,
	})
}

// GetOrder - Get one order with its items
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.Service.Docs.GetOrder(h.Service.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

// ListOrders - List orders, optionally filtered by status
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := models.OrderStatus(c.Query("status"))

	orders, total, err := h.Service.Docs.ListOrders(status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": orders,
		"meta": paginationMeta(page, limit, total),
	})
}

// UpdateOrderStatus - Advance the order state machine
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req requests.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Service.UpdateOrderStatus(id, models.OrderStatus(req.Status), req.Actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    order,
	})
}

// CancelSaleOrder - Cancel an order and reverse its effects
func (h *OrderHandler) CancelSaleOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req requests.BaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Service.CancelSaleOrder(id, req.Actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"data":    order,
	})
}

// LockOrder - Freeze an order against further mutation
func (h *OrderHandler) LockOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req requests.BaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Service.LockOrder(id, req.Actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order locked successfully",
		"data":    order,
	})
}

// DeleteSaleOrder - Hard delete, cancelled orders only
func (h *OrderHandler) DeleteSaleOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req requests.BaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.DeleteSaleOrder(id, req.Actor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order deleted successfully",
	})
}

// ============ CUSTOMER RETURNS ============

// AddReturnNote - Take sold goods back and refund the customer
func (h *OrderHandler) AddReturnNote(c *gin.Context) {
	var req requests.AddReturnNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]services.ReturnLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.ReturnLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	note, err := h.Service.AddReturnNote(services.AddReturnNoteRequest{
		OrderID:      req.OrderID,
		Items:        lines,
		RefundAmount: req.RefundAmount,
		Method:       models.PaymentMethod(req.Method),
		Note:         req.Note,
		Actor:        req.Actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Return note created successfully",
		"data":    note,
	})
}

// ============ QUOTES ============

// CreateQuote - Create quote, optionally reserving stock
func (h *OrderHandler) CreateQuote(c *gin.Context) {
	var req requests.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.Service.CreateQuote(services.CreateQuoteRequest{
		PartnerID:    req.PartnerID,
		CustomerName: req.CustomerName,
		Items:        orderLines(req.Items),
		ReserveStock: req.ReserveStock,
		Note:         req.Note,
		Actor:        req.Actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quote created successfully",
		"data":    quote,
	})
}

// ConvertQuote - Turn a draft quote into a sale order
func (h *OrderHandler) ConvertQuote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
		return
	}

	var req requests.ConvertQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Service.ConvertQuoteToOrder(services.ConvertQuoteRequest{
		QuoteID:       id,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		DueInDays:     req.DueInDays,
		Actor:         req.Actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quote converted successfully",
		"data":    order,
	})
}

// CancelQuote - Cancel a draft quote and release any held stock
func (h *OrderHandler) CancelQuote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote id"})
		return
	}

	var req requests.BaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.CancelQuote(id, req.Actor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quote cancelled successfully",
	})
}
