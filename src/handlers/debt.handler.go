package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-ledger/src/models"
	"store-ledger/src/requests"
	"store-ledger/src/services"
)

type DebtHandler struct {
	Service *services.Orchestrator
}

// GetDebt - Get one debt record with its payments
func (h *DebtHandler) GetDebt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid debt id"})
		return
	}

	debt, err := h.Service.Debt.Repo.GetDebt(h.Service.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": debt})
}

// ListDebts - List debts filtered by partner, status and type
func (h *DebtHandler) ListDebts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := models.DebtStatus(c.Query("status"))
	debtType := models.DebtType(c.Query("type"))

	var partnerID *uuid.UUID
	if s := c.Query("partner_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid partner_id"})
			return
		}
		partnerID = &id
	}

	debts, total, err := h.Service.Debt.Repo.ListDebts(partnerID, status, debtType, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": debts,
		"meta": paginationMeta(page, limit, total),
	})
}

// AddPayment - Record one payment against a debt
func (h *DebtHandler) AddPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid debt id"})
		return
	}

	var req requests.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	debt, err := h.Service.AddPaymentToDebt(services.AddPaymentRequest{
		DebtID: id,
		Amount: req.Amount,
		Method: models.PaymentMethod(req.Method),
		Date:   date,
		Notes:  req.Note,
		Actor:  req.Actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment recorded successfully",
		"data":    debt,
	})
}

// BatchPayment - Spread one payment across a partner's open debts
func (h *DebtHandler) BatchPayment(c *gin.Context) {
	var req requests.BatchPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	result, err := h.Service.BatchProcessDebtPayment(services.BatchPaymentRequest{
		PartnerID:   req.PartnerID,
		Type:        models.DebtType(req.Type),
		Amount:      req.Amount,
		Method:      models.PaymentMethod(req.Method),
		Date:        date,
		Allocations: req.Allocations,
		Notes:       req.Note,
		Actor:       req.Actor,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Batch payment processed successfully",
		"data":    result,
	})
}
