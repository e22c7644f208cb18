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

type PurchaseHandler struct {
	Service *services.Orchestrator
}

// CreateImportOrder - Create import order, receiving immediately when asked
func (h *PurchaseHandler) CreateImportOrder(c *gin.Context) {
	var req requests.CreateImportOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]services.ImportLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.ImportLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	imp, err := h.Service.CreateImportOrder(services.CreateImportOrderRequest{
		SupplierID:    req.SupplierID,
		SupplierName:  req.SupplierName,
		Items:         lines,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Status:        models.ImportStatus(req.Status),
		DueInDays:     req.DueInDays,
		Note:          req.Note,
		Actor:         req.Actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Import order created successfully",
		"data":    imp,
	})
}

// GetImportOrder - Get one import order with its items
func (h *PurchaseHandler) GetImportOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import order id"})
		return
	}

	imp, err := h.Service.Docs.GetImportOrder(h.Service.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": imp})
}

// ListImportOrders - List import orders, optionally filtered by status
func (h *PurchaseHandler) ListImportOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := models.ImportStatus(c.Query("status"))

	imports, total, err := h.Service.Docs.ListImportOrders(status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": imports,
		"meta": paginationMeta(page, limit, total),
	})
}

// AddReceivingNote - Book a partial or full receipt against an import
func (h *PurchaseHandler) AddReceivingNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import order id"})
		return
	}

	var req requests.AddReceivingNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]services.ReceivingLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.ReceivingLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	note, err := h.Service.AddReceivingNote(services.AddReceivingNoteRequest{
		ImportOrderID: id,
		Items:         lines,
		LandedCost:    req.LandedCost,
		Note:          req.Note,
		Actor:         req.Actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Receiving note created successfully",
		"data":    note,
	})
}

// AddPurchaseReturnNote - Send received goods back to the supplier
func (h *PurchaseHandler) AddPurchaseReturnNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import order id"})
		return
	}

	var req requests.AddPurchaseReturnNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]services.PurchaseReturnLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.PurchaseReturnLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	note, err := h.Service.AddPurchaseReturnNote(services.AddPurchaseReturnNoteRequest{
		ImportOrderID: id,
		Items:         lines,
		RefundAmount:  req.RefundAmount,
		Method:        models.PaymentMethod(req.Method),
		Note:          req.Note,
		Actor:         req.Actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase return note created successfully",
		"data":    note,
	})
}
