package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"store-ledger/src/models"
	"store-ledger/src/repositories"
)

// StockService owns Product.stock and the append-only movement log. All
// writes happen inside an atomic scope handed in by the orchestrator; the
// service never commits on its own.
type StockService struct {
	DB   *gorm.DB
	Repo *repositories.StockRepository
}

type MovementRequest struct {
	ProductID     uuid.UUID
	Type          models.MovementType
	ChangeAmount  int
	ReferenceCode string
	Note          *string
	Actor         string
}

// ApplyMovement - Reads current stock under a row lock, writes the new stock
// and appends one log row with the before/after snapshot. Rejects any change
// that would push stock below zero.
func (s *StockService) ApplyMovement(tx *gorm.DB, req MovementRequest) (*models.InventoryLog, error) {
	if !models.IsValidMovementType(req.Type) {
		return nil, fmt.Errorf("%w: unknown movement type %q", ErrValidation, req.Type)
	}
	if req.ChangeAmount == 0 {
		return nil, fmt.Errorf("%w: movement amount cannot be zero", ErrValidation)
	}

	product, err := s.Repo.GetProductForUpdate(tx, req.ProductID)
	if err != nil {
		return nil, translateDBError(err)
	}

	oldStock := product.Stock
	newStock := oldStock + req.ChangeAmount
	if newStock < 0 {
		return nil, &StockShortError{
			ProductName: product.Name,
			Requested:   -req.ChangeAmount,
			Available:   oldStock,
		}
	}

	err = tx.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("stock", newStock).Error
	if err != nil {
		return nil, translateDBError(err)
	}

	entry := &models.InventoryLog{
		ProductID:     product.ID,
		Type:          req.Type,
		ChangeAmount:  req.ChangeAmount,
		OldStock:      oldStock,
		NewStock:      newStock,
		ReferenceCode: req.ReferenceCode,
		Note:          req.Note,
		CreatedBy:     req.Actor,
		CreatedAt:     time.Now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, translateDBError(err)
	}
	return entry, nil
}

// Reserve - Holds quantity against an unfulfilled document without touching
// on-hand stock. Release undoes it.
func (s *StockService) Reserve(tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: reservation quantity must be positive", ErrValidation)
	}
	product, err := s.Repo.GetProductForUpdate(tx, productID)
	if err != nil {
		return translateDBError(err)
	}
	if qty > product.AvailableStock() {
		return &StockShortError{
			ProductName: product.Name,
			Requested:   qty,
			Available:   product.AvailableStock(),
		}
	}
	err = tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_reserved", product.StockReserved+qty).Error
	return translateDBError(err)
}

func (s *StockService) Release(tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: release quantity must be positive", ErrValidation)
	}
	product, err := s.Repo.GetProductForUpdate(tx, productID)
	if err != nil {
		return translateDBError(err)
	}
	reserved := product.StockReserved - qty
	if reserved < 0 {
		reserved = 0
	}
	err = tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_reserved", reserved).Error
	return translateDBError(err)
}

type ReconcileResult struct {
	ProductID     uuid.UUID `json:"product_id"`
	ExpectedStock int       `json:"expected_stock"`
	ActualStock   int       `json:"actual_stock"`
	Drift         int       `json:"drift"`
	LogCount      int       `json:"log_count"`
}

// Reconcile - Replays the full movement log for a product and compares the
// derived stock with the cached projection. Drift of zero is the invariant.
func (s *StockService) Reconcile(productID uuid.UUID) (*ReconcileResult, error) {
	product, err := s.Repo.GetProduct(productID)
	if err != nil {
		return nil, translateDBError(err)
	}

	logs, err := s.Repo.AllLogsForProduct(s.DB, productID)
	if err != nil {
		return nil, translateDBError(err)
	}

	expected := 0
	if len(logs) > 0 {
		expected = logs[0].OldStock
		for _, entry := range logs {
			expected += entry.ChangeAmount
		}
	} else {
		expected = product.Stock
	}

	return &ReconcileResult{
		ProductID:     productID,
		ExpectedStock: expected,
		ActualStock:   product.Stock,
		Drift:         product.Stock - expected,
		LogCount:      len(logs),
	}, nil
}

// UpdateImportPrice - Last-cost costing: the most recent inbound unit cost
// wins. Weighted-average costing would change historical margins, so the
// behavior stays as-is.
func (s *StockService) UpdateImportPrice(tx *gorm.DB, productID uuid.UUID, unitCost decimal.Decimal) error {
	err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("import_price", unitCost).Error
	return translateDBError(err)
}
