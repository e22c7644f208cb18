package requests

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ SINGLE PAYMENT ============
type AddPaymentRequest struct {
	BaseRequest

	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required,oneof=cash transfer card"`
	Date   *time.Time      `json:"date,omitempty"`
}

// ============ BATCH PAYMENT ============
type BatchPaymentRequest struct {
	BaseRequest

	PartnerID uuid.UUID       `json:"partner_id" binding:"required"`
	Type      string          `json:"type" binding:"omitempty,oneof=receivable payable"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=cash transfer card"`
	Date      *time.Time      `json:"date,omitempty"`

	// Explicit per-debt split; leave empty to pay oldest due first.
	Allocations map[uuid.UUID]decimal.Decimal `json:"allocations,omitempty"`
}

// ============ STOCK ADJUSTMENT ============
type AdjustStockRequest struct {
	BaseRequest

	ChangeAmount int `json:"change_amount" binding:"required"`
}
