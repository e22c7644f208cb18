package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"store-ledger/src/models"
)

type StockRepository struct {
	DB *gorm.DB
}

// GetProduct - Point lookup outside any write scope
func (r *StockRepository) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *StockRepository) GetProductBySKU(sku string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductForUpdate - Row-locked read inside an atomic scope. Overlapping
// scopes touching the same product serialize here.
func (r *StockRepository) GetProductForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *StockRepository) ListProducts(page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.DB.Model(&models.Product{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("sku ASC").Limit(limit).Offset(offset).Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// LogsForProduct - Movement history, newest first, paginated
func (r *StockRepository) LogsForProduct(productID uuid.UUID, page, limit int) ([]models.InventoryLog, int64, error) {
	var logs []models.InventoryLog
	var total int64

	query := r.DB.Model(&models.InventoryLog{}).Where("product_id = ?", productID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// AllLogsForProduct - Full replay order for reconciliation
func (r *StockRepository) AllLogsForProduct(db *gorm.DB, productID uuid.UUID) ([]models.InventoryLog, error) {
	var logs []models.InventoryLog
	err := db.
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
