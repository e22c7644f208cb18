package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"store-ledger/src/services"
)

// respondError - Maps service error kinds onto HTTP statuses. Stock and
// receipt shortfalls carry the offending line, so the message names the
// product and the limiting quantity instead of a generic 400.
func respondError(c *gin.Context, err error) {
	var short *services.StockShortError
	if errors.As(err, &short) {
		c.JSON(http.StatusBadRequest, gin.H{"error": short.Error()})
		return
	}
	var over *services.OverReceiptError
	if errors.As(err, &over) {
		c.JSON(http.StatusBadRequest, gin.H{"error": over.Error()})
		return
	}
	var exceeds *services.ReturnExceedsError
	if errors.As(err, &exceeds) {
		c.JSON(http.StatusBadRequest, gin.H{"error": exceeds.Error()})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDocumentLocked):
		c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrOverReceipt),
		errors.Is(err, services.ErrReturnExceeds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func paginationMeta(page, limit int, total int64) gin.H {
	totalPages := (int(total) + limit - 1) / limit
	return gin.H{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
	}
}
