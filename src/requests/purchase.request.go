package requests

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ IMPORT ORDER ============
type CreateImportOrderRequest struct {
	BaseRequest

	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	SupplierName  string          `json:"supplier_name" binding:"required"`
	Items         []OrderLine     `json:"items" binding:"required,min=1,dive"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash transfer card"`
	Status        string          `json:"status" binding:"omitempty,oneof=pending received completed"`
	DueInDays     int             `json:"due_in_days"`
}

// ============ RECEIVING NOTE ============
type ReceivingLine struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type AddReceivingNoteRequest struct {
	BaseRequest

	Items      []ReceivingLine `json:"items" binding:"required,min=1,dive"`
	LandedCost decimal.Decimal `json:"landed_cost"`
}

// ============ PURCHASE RETURN ============
type AddPurchaseReturnNoteRequest struct {
	BaseRequest

	Items        []OrderLine     `json:"items" binding:"required,min=1,dive"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Method       string          `json:"method" binding:"required,oneof=cash transfer card debt_deduction"`
}
