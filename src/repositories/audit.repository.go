package repositories

import (
	"gorm.io/gorm"

	"store-ledger/src/models"
)

type AuditRepository struct {
	DB *gorm.DB
}

func (r *AuditRepository) List(module, entityCode, actor string, page, limit int) ([]models.AuditLog, int64, error) {
	query := r.DB.Model(&models.AuditLog{})
	if module != "" {
		query = query.Where("module = ?", module)
	}
	if entityCode != "" {
		query = query.Where("entity_code = ?", entityCode)
	}
	if actor != "" {
		query = query.Where("actor = ?", actor)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	offset := (page - 1) * limit
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
