package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ============ CASH JOURNAL ENTRY ============
// Append-only. A refund or correction is a new entry, never an edit.
// Running totals are derived by range queries, not stored.
type Transaction struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`

	Type   TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	Amount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Method PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`

	ReferenceCode string `gorm:"type:varchar(50);index" json:"reference_code"`
	Description   string `gorm:"type:text" json:"description"`
	PartnerName   string `gorm:"type:varchar(200)" json:"partner_name"`

	CreatedBy string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
