package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"store-ledger/src/models"
)

type DebtRepository struct {
	DB *gorm.DB
}

func preloadPayments(db *gorm.DB) *gorm.DB {
	return db.Preload("Payments", func(db *gorm.DB) *gorm.DB {
		return db.Order("date ASC, created_at ASC")
	})
}

func (r *DebtRepository) GetDebt(db *gorm.DB, id uuid.UUID) (*models.DebtRecord, error) {
	var debt models.DebtRecord
	if err := preloadPayments(db).First(&debt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &debt, nil
}

// GetDebtForUpdate - Row-locked read; payments against the same debt serialize here.
func (r *DebtRepository) GetDebtForUpdate(tx *gorm.DB, id uuid.UUID) (*models.DebtRecord, error) {
	var debt models.DebtRecord
	err := preloadPayments(tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "debt_records"}})).
		First(&debt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

// GetDebtByOrderCode - Legacy join by originating document code, kept for
// flows that never learned the debt id.
func (r *DebtRepository) GetDebtByOrderCode(tx *gorm.DB, orderCode string, debtType models.DebtType) (*models.DebtRecord, error) {
	var debt models.DebtRecord
	err := preloadPayments(tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "debt_records"}})).
		Where("order_code = ? AND type = ?", orderCode, debtType).
		First(&debt).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

// OpenDebtsOldestFirst - Unpaid debts for a partner in due-date order, locked
// for the batch payment allocation.
func (r *DebtRepository) OpenDebtsOldestFirst(tx *gorm.DB, partnerID uuid.UUID, debtType models.DebtType) ([]models.DebtRecord, error) {
	var debts []models.DebtRecord
	err := preloadPayments(tx.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "debt_records"}})).
		Where("partner_id = ? AND type = ? AND status IN ?",
			partnerID, debtType,
			[]models.DebtStatus{models.DebtStatusPending, models.DebtStatusPartial, models.DebtStatusOverdue}).
		Order("due_date ASC, created_at ASC").
		Find(&debts).Error
	if err != nil {
		return nil, err
	}
	return debts, nil
}

func (r *DebtRepository) ListDebts(partnerID *uuid.UUID, status models.DebtStatus, debtType models.DebtType, page, limit int) ([]models.DebtRecord, int64, error) {
	query := r.DB.Model(&models.DebtRecord{})
	if partnerID != nil {
		query = query.Where("partner_id = ?", *partnerID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if debtType != "" {
		query = query.Where("type = ?", debtType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var debts []models.DebtRecord
	offset := (page - 1) * limit
	err := preloadPayments(query).
		Order("due_date ASC, created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&debts).Error
	if err != nil {
		return nil, 0, err
	}
	return debts, total, nil
}

// GetPartnerForUpdate - The cached debt total is read-modify-write, so the
// partner row is locked alongside the debt it backs.
func (r *DebtRepository) GetPartnerForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&partner, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}
