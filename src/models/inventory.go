package models

import (
	"time"

	"github.com/google/uuid"
)

// ============ MOVEMENT TYPES ============
type MovementType string

const (
	MovementTypeSale           MovementType = "sale"
	MovementTypeImport         MovementType = "import"
	MovementTypeAdjustment     MovementType = "adjustment"
	MovementTypeReturnSupplier MovementType = "return_supplier"
	MovementTypeReturnCustomer MovementType = "return_customer"
)

func IsValidMovementType(t MovementType) bool {
	switch t {
	case MovementTypeSale, MovementTypeImport, MovementTypeAdjustment,
		MovementTypeReturnSupplier, MovementTypeReturnCustomer:
		return true
	default:
		return false
	}
}

// ============ INVENTORY LOG ============
// One row per stock change, append-only. Replaying a product's rows in
// (created_at, id) order from the first OldStock must reproduce the
// product's current Stock.
type InventoryLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_product_created" json:"product_id"`

	Type         MovementType `gorm:"type:varchar(20);not null" json:"type"`
	ChangeAmount int          `gorm:"not null" json:"change_amount"`
	OldStock     int          `gorm:"not null" json:"old_stock"`
	NewStock     int          `gorm:"not null" json:"new_stock"`

	// Code of the document that triggered the movement (DH-/PN-/NK-/TH-/THN-).
	ReferenceCode string  `gorm:"type:varchar(50);index" json:"reference_code"`
	Note          *string `gorm:"type:text" json:"note,omitempty"`

	CreatedBy string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt time.Time `gorm:"index:idx_product_created" json:"created_at"`
}

func (InventoryLog) TableName() string {
	return "inventory_logs"
}
