package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ ENUMS ============
type DebtType string

const (
	DebtTypeReceivable DebtType = "receivable"
	DebtTypePayable    DebtType = "payable"
)

type DebtStatus string

const (
	DebtStatusPending DebtStatus = "pending"
	DebtStatusPartial DebtStatus = "partial"
	DebtStatusPaid    DebtStatus = "paid"
	DebtStatusOverdue DebtStatus = "overdue"
	DebtStatusVoid    DebtStatus = "void"
)

type PaymentMethod string

const (
	PaymentMethodCash            PaymentMethod = "cash"
	PaymentMethodTransfer        PaymentMethod = "transfer"
	PaymentMethodCard            PaymentMethod = "card"
	PaymentMethodDebtDeduction   PaymentMethod = "debt_deduction"
	PaymentMethodReturnDeduction PaymentMethod = "return_deduction"
)

// ============ DEBT RECORD ============
type DebtRecord struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	PartnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"partner_id"`
	PartnerName string    `gorm:"type:varchar(200);not null" json:"partner_name"`

	// Code of the originating document. Kept queryable for compatibility with
	// flows that only know the code; new joins should go through the id.
	OrderCode string `gorm:"type:varchar(50);not null;index" json:"order_code"`

	Type            DebtType        `gorm:"type:varchar(20);not null" json:"type"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"remaining_amount"`
	Status          DebtStatus      `gorm:"type:varchar(20);not null" json:"status"`

	DueDate time.Time `gorm:"not null" json:"due_date"`
	Notes   *string   `gorm:"type:text" json:"notes,omitempty"`

	Payments []DebtPayment `gorm:"foreignKey:DebtID" json:"payments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DebtRecord) TableName() string {
	return "debt_records"
}

// ============ DEBT PAYMENT ============
type DebtPayment struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DebtID uuid.UUID `gorm:"type:uuid;not null;index" json:"debt_id"`

	Date   time.Time       `gorm:"not null" json:"date"`
	Amount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Method PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	Notes  *string         `gorm:"type:text" json:"notes,omitempty"`

	// Set when the payment exceeded the remaining balance; the balance is
	// clamped at zero and the excess kept visible here instead.
	ExcessAmount decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"excess_amount"`

	CreatedAt time.Time `json:"created_at"`
}

func (DebtPayment) TableName() string {
	return "debt_payments"
}

// ComputeDebtStatus derives the status from the balance and the due date.
// Zero remaining is paid; anything between zero and total is partial;
// an untouched balance past its due date is overdue.
func ComputeDebtStatus(total, remaining decimal.Decimal, dueDate, now time.Time) DebtStatus {
	if remaining.LessThanOrEqual(decimal.Zero) {
		return DebtStatusPaid
	}
	if remaining.LessThan(total) {
		return DebtStatusPartial
	}
	if now.After(dueDate) {
		return DebtStatusOverdue
	}
	return DebtStatusPending
}
