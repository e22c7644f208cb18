package repositories

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"store-ledger/src/models"
)

type CashRepository struct {
	DB *gorm.DB
}

func (r *CashRepository) List(txnType models.TransactionType, from, to time.Time, page, limit int) ([]models.Transaction, int64, error) {
	query := r.DB.Model(&models.Transaction{})
	if txnType != "" {
		query = query.Where("type = ?", txnType)
	}
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Transaction
	offset := (page - 1) * limit
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// SumBetween - Range-derived total for one entry type. No running balance is
// stored anywhere; the journal rows are the only source of truth.
func (r *CashRepository) SumBetween(txnType models.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("type = ? AND created_at >= ? AND created_at < ?", txnType, from, to).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
