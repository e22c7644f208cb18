package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"store-ledger/src/models"
)

type DocumentRepository struct {
	DB *gorm.DB
}

// NextCode - Increments the sequence row for a prefix under a row lock and
// returns "PREFIX-000042". Runs inside the caller's atomic scope, so a code
// is only consumed if the document it numbers commits.
func (r *DocumentRepository) NextCode(tx *gorm.DB, prefix string) (string, error) {
	var seq models.DocumentSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "prefix = ?", prefix).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.DocumentSequence{Prefix: prefix}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	seq.LastNumber++
	err = tx.Model(&models.DocumentSequence{}).
		Where("prefix = ?", prefix).
		Update("last_number", seq.LastNumber).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", prefix, seq.LastNumber), nil
}

// ============ ORDERS ============

func (r *DocumentRepository) GetOrder(db *gorm.DB, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderForUpdate - Locks the order row so status transitions and
// reversals against the same document serialize.
func (r *DocumentRepository) GetOrderForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}}).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *DocumentRepository) GetOrderByCode(code string) (*models.Order, error) {
	var order models.Order
	if err := r.DB.Preload("Items").First(&order, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *DocumentRepository) ListOrders(status models.OrderStatus, page, limit int) ([]models.Order, int64, error) {
	query := r.DB.Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	offset := (page - 1) * limit
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ============ IMPORT ORDERS ============

func (r *DocumentRepository) GetImportOrder(db *gorm.DB, id uuid.UUID) (*models.ImportOrder, error) {
	var imp models.ImportOrder
	if err := db.Preload("Items").First(&imp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &imp, nil
}

func (r *DocumentRepository) GetImportOrderForUpdate(tx *gorm.DB, id uuid.UUID) (*models.ImportOrder, error) {
	var imp models.ImportOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "import_orders"}}).
		Preload("Items").
		First(&imp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

func (r *DocumentRepository) ListImportOrders(status models.ImportStatus, page, limit int) ([]models.ImportOrder, int64, error) {
	query := r.DB.Model(&models.ImportOrder{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var imports []models.ImportOrder
	offset := (page - 1) * limit
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&imports).Error
	if err != nil {
		return nil, 0, err
	}
	return imports, total, nil
}

// ============ QUOTES ============

func (r *DocumentRepository) GetQuoteForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "quotes"}}).
		Preload("Items").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}
