package requests

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ BASE REQUEST ============
type BaseRequest struct {
	Actor string  `json:"actor" binding:"required"`
	Note  *string `json:"note,omitempty"`
}

type OrderLine struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
}

// ============ SALE ORDER ============
type CreateSaleOrderRequest struct {
	BaseRequest

	PartnerID     *uuid.UUID      `json:"partner_id,omitempty"`
	CustomerName  string          `json:"customer_name" binding:"required"`
	Items         []OrderLine     `json:"items" binding:"required,min=1,dive"`
	Discount      decimal.Decimal `json:"discount"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash transfer card"`
	DueInDays     int             `json:"due_in_days"`
}

type UpdateOrderStatusRequest struct {
	BaseRequest

	Status string `json:"status" binding:"required,docstatus"`
}

// ============ RETURN NOTE ============
type AddReturnNoteRequest struct {
	BaseRequest

	OrderID      uuid.UUID       `json:"order_id" binding:"required"`
	Items        []OrderLine     `json:"items" binding:"required,min=1,dive"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Method       string          `json:"method" binding:"required,oneof=cash transfer card debt_deduction"`
}

// ============ QUOTE ============
type CreateQuoteRequest struct {
	BaseRequest

	PartnerID    *uuid.UUID  `json:"partner_id,omitempty"`
	CustomerName string      `json:"customer_name" binding:"required"`
	Items        []OrderLine `json:"items" binding:"required,min=1,dive"`
	ReserveStock bool        `json:"reserve_stock"`
}

type ConvertQuoteRequest struct {
	BaseRequest

	AmountPaid    decimal.Decimal `json:"amount_paid"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash transfer card"`
	DueInDays     int             `json:"due_in_days"`
}
