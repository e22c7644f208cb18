package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ DOCUMENT CODE PREFIXES ============
const (
	CodePrefixOrder          = "DH"
	CodePrefixImportOrder    = "PN"
	CodePrefixReceivingNote  = "NK"
	CodePrefixReturnNote     = "TH"
	CodePrefixPurchaseReturn = "THN"
	CodePrefixQuote          = "BG"
	CodePrefixCashIncome     = "PT"
	CodePrefixCashExpense    = "PC"
)

// DocumentSequence backs code generation. The row for a prefix is locked and
// incremented inside the same atomic scope as the document it numbers, so
// codes stay unique under concurrent creation.
type DocumentSequence struct {
	Prefix     string `gorm:"type:varchar(10);primaryKey"`
	LastNumber int64  `gorm:"not null;default:0"`
}

func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// ============ ORDER ============
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// CanTransitionOrder encodes the forward fulfillment steps:
// processing -> shipping -> completed, cancelled from any non-terminal state.
// Cancelling a completed order is allowed too, but it is a ledger reversal
// (stock back, money back) rather than a status change, so it never goes
// through this function; the orchestrator routes it to its cancel operation.
func CanTransitionOrder(from, to OrderStatus) bool {
	switch from {
	case OrderStatusProcessing:
		return to == OrderStatusShipping || to == OrderStatusCompleted || to == OrderStatusCancelled
	case OrderStatusShipping:
		return to == OrderStatusCompleted || to == OrderStatusCancelled
	default:
		return false
	}
}

type Order struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`

	PartnerID    *uuid.UUID `gorm:"type:uuid;index" json:"partner_id,omitempty"`
	CustomerName string     `gorm:"type:varchar(200);not null" json:"customer_name"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"subtotal"`
	Discount  decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"discount"`
	VATAmount decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"vat_amount"`
	Total     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`

	AmountPaid    decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"amount_paid"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`

	// Once set, the document refuses further status transitions and edits.
	LockedAt *time.Time `json:"locked_at,omitempty"`

	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedBy string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`

	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"type:varchar(200);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	// Runs up as customer return notes come in; returns are bounded by
	// Quantity - ReturnedQuantity, never by Quantity alone.
	ReturnedQuantity int             `gorm:"not null;default:0" json:"returned_quantity"`
	Price            decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	Total            decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// ============ IMPORT ORDER ============
type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusReceived  ImportStatus = "received"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusCancelled ImportStatus = "cancelled"
)

type ImportOrder struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`

	SupplierID   *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	SupplierName string     `gorm:"type:varchar(200);not null" json:"supplier_name"`

	Items []ImportOrderItem `gorm:"foreignKey:ImportOrderID" json:"items"`

	Total         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"amount_paid"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method"`

	Status ImportStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedBy string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ImportOrder) TableName() string {
	return "import_orders"
}

type ImportOrderItem struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ImportOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"import_order_id"`

	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string    `gorm:"type:varchar(200);not null" json:"product_name"`

	Quantity int `gorm:"not null" json:"quantity"`
	// Cumulative quantity taken in by receiving notes, never above Quantity.
	ReceivedQuantity int `gorm:"not null;default:0" json:"received_quantity"`

	Price decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	Total decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
}

func (ImportOrderItem) TableName() string {
	return "import_order_items"
}

// ============ RECEIVING NOTE ============
type ReceivingNote struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`

	ImportOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"import_order_id"`
	ImportCode    string    `gorm:"type:varchar(50);not null" json:"import_code"`

	Items []ReceivingNoteItem `gorm:"foreignKey:ReceivingNoteID" json:"items"`

	// Freight/handling folded into unit costs, allocated pro-rata by line value.
	LandedCost decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"landed_cost"`

	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedBy string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReceivingNote) TableName() string {
	return "receiving_notes"
}

type ReceivingNoteItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReceivingNoteID uuid.UUID `gorm:"type:uuid;not null;index" json:"receiving_note_id"`

	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string    `gorm:"type:varchar(200);not null" json:"product_name"`

	Quantity          int             `gorm:"not null" json:"quantity"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unit_price"`
	AllocatedCost     decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"allocated_cost"`
	EffectiveUnitCost decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"effective_unit_cost"`
}

func (ReceivingNoteItem) TableName() string {
	return "receiving_note_items"
}

// ============ RETURN NOTE (customer return) ============
type ReturnNote struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`

	OrderID      *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
	OrderCode    string     `gorm:"type:varchar(50);index" json:"order_code"`
	CustomerName string     `gorm:"type:varchar(200);not null" json:"customer_name"`

	Items []ReturnNoteItem `gorm:"foreignKey:ReturnNoteID" json:"items"`

	RefundAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"refund_amount"`
	Method       PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`

	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedBy string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReturnNote) TableName() string {
	return "return_notes"
}

type ReturnNoteItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReturnNoteID uuid.UUID `gorm:"type:uuid;not null;index" json:"return_note_id"`

	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"type:varchar(200);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
}

func (ReturnNoteItem) TableName() string {
	return "return_note_items"
}

// ============ PURCHASE RETURN NOTE (return to supplier) ============
type PurchaseReturnNote struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`

	ImportOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"import_order_id"`
	ImportCode    string    `gorm:"type:varchar(50);index" json:"import_code"`
	SupplierName  string    `gorm:"type:varchar(200);not null" json:"supplier_name"`

	Items []PurchaseReturnNoteItem `gorm:"foreignKey:PurchaseReturnNoteID" json:"items"`

	RefundAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"refund_amount"`
	// debt_deduction reduces the payable for the import; anything else is a
	// cash/transfer refund recorded in the journal. Exactly one path runs.
	Method PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`

	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedBy string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (PurchaseReturnNote) TableName() string {
	return "purchase_return_notes"
}

type PurchaseReturnNoteItem struct {
	ID                   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseReturnNoteID uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_return_note_id"`

	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"type:varchar(200);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
}

func (PurchaseReturnNoteItem) TableName() string {
	return "purchase_return_note_items"
}

// ============ QUOTE ============
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusConverted QuoteStatus = "converted"
	QuoteStatusCancelled QuoteStatus = "cancelled"
)

type Quote struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`

	PartnerID    *uuid.UUID `gorm:"type:uuid;index" json:"partner_id,omitempty"`
	CustomerName string     `gorm:"type:varchar(200);not null" json:"customer_name"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID" json:"items"`

	Total  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
	Status QuoteStatus     `gorm:"type:varchar(20);not null" json:"status"`

	// Draft quotes may hold stock against the quoted lines; the hold is
	// released on conversion or cancellation.
	StockReserved bool       `gorm:"not null;default:false" json:"stock_reserved"`
	OrderID       *uuid.UUID `gorm:"type:uuid" json:"order_id,omitempty"`

	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedBy string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quote) TableName() string {
	return "quotes"
}

type QuoteItem struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuoteID uuid.UUID `gorm:"type:uuid;not null;index" json:"quote_id"`

	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"type:varchar(200);not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	Total       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
}

func (QuoteItem) TableName() string {
	return "quote_items"
}
