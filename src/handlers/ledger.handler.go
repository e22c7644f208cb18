package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-ledger/src/models"
	"store-ledger/src/repositories"
	"store-ledger/src/requests"
	"store-ledger/src/services"
)

// LedgerHandler serves the read side of the four ledgers plus the manual
// stock adjustment.
type LedgerHandler struct {
	Service *services.Orchestrator
	Audit   *repositories.AuditRepository
}

// ============ PRODUCTS / STOCK ============

// ListProducts - List products with stock levels
func (h *LedgerHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	products, total, err := h.Service.Stock.Repo.ListProducts(page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"meta": paginationMeta(page, limit, total),
	})
}

// GetProduct - Get one product by id, or by SKU when the path segment is
// not a uuid
func (h *LedgerHandler) GetProduct(c *gin.Context) {
	key := c.Param("id")

	var product *models.Product
	if id, err := uuid.Parse(key); err == nil {
		product, err = h.Service.Stock.Repo.GetProduct(id)
		if err != nil {
			respondError(c, err)
			return
		}
	} else {
		product, err = h.Service.Stock.Repo.GetProductBySKU(key)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// GetInventoryLogs - Movement history for a product, newest first
func (h *LedgerHandler) GetInventoryLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, total, err := h.Service.Stock.Repo.LogsForProduct(id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": logs,
		"meta": paginationMeta(page, limit, total),
	})
}

// ReconcileProduct - Replay the movement log against the stored stock level
func (h *LedgerHandler) ReconcileProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	result, err := h.Service.Stock.Reconcile(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         result,
		"generated_at": time.Now().Format(time.RFC3339),
	})
}

// AdjustStock - Manual correction after a physical count
func (h *LedgerHandler) AdjustStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req requests.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.Service.AdjustStock(id, req.ChangeAmount, req.Note, req.Actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock adjusted successfully",
		"data":    entry,
	})
}

// ============ CASH JOURNAL ============

// ListCashEntries - List journal entries for a period
func (h *LedgerHandler) ListCashEntries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	txnType := models.TransactionType(c.Query("type"))

	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, total, err := h.Service.Cash.Repo.List(txnType, from, to, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entries,
		"meta": paginationMeta(page, limit, total),
	})
}

// GetCashTotals - Income, expense and net for a period
func (h *LedgerHandler) GetCashTotals(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totals, err := h.Service.Cash.TotalsBetween(from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         totals,
		"generated_at": time.Now().Format(time.RFC3339),
	})
}

// ============ AUDIT TRAIL ============

// GetAuditTrail - Audit entries filtered by module, document code or actor
func (h *LedgerHandler) GetAuditTrail(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, total, err := h.Audit.List(
		c.Query("module"), c.Query("entity_code"), c.Query("actor"), page, limit,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entries,
		"meta": paginationMeta(page, limit, total),
	})
}

// parsePeriod reads from/to query params as YYYY-MM-DD or RFC3339. The
// default window is the current day; "to" is exclusive.
func parsePeriod(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1)

	if s := c.Query("from"); s != "" {
		parsed, err := parseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if s := c.Query("to"); s != "" {
		parsed, err := parseDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
