package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ PRODUCT ============
type Product struct {
	ID  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`

	Name string `gorm:"type:varchar(200);not null" json:"name"`
	Unit string `gorm:"type:varchar(20)" json:"unit"`

	// Stock is the authoritative on-hand quantity; it is a cached projection
	// of the inventory logs and must stay replayable from them.
	Stock         int `gorm:"not null;default:0" json:"stock"`
	StockReserved int `gorm:"not null;default:0" json:"stock_reserved"`

	ImportPrice decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"import_price"`
	RetailPrice decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"retail_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// AvailableStock is what a new sale may consume: on-hand minus what is held
// against unfulfilled documents, never negative.
func (p *Product) AvailableStock() int {
	available := p.Stock - p.StockReserved
	if available < 0 {
		return 0
	}
	return available
}

// ============ PARTNER ============
type PartnerType string

const (
	PartnerTypeCustomer PartnerType = "customer"
	PartnerTypeSupplier PartnerType = "supplier"
)

type Partner struct {
	ID    uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name  string      `gorm:"type:varchar(200);not null" json:"name"`
	Phone string      `gorm:"type:varchar(30)" json:"phone"`
	Type  PartnerType `gorm:"type:varchar(20);not null" json:"type"`

	// DebtTotal caches the sum of open debt remaining amounts for display;
	// the debt records themselves remain the source of truth.
	DebtTotal decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"debt_total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Partner) TableName() string {
	return "partners"
}
