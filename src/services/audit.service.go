package services

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"store-ledger/src/models"
)

// AuditService appends to the audit trail. Writes go through a savepoint so
// a failed insert rolls back only itself; the business operation around it
// proceeds and the failure is logged as a warning.
type AuditService struct {
	Log *logrus.Logger
}

func (s *AuditService) Record(tx *gorm.DB, entry *models.AuditLog) error {
	if err := tx.SavePoint("audit_entry").Error; err != nil {
		return err
	}
	if err := tx.Create(entry).Error; err != nil {
		if rbErr := tx.RollbackTo("audit_entry").Error; rbErr != nil {
			return rbErr
		}
		return err
	}
	return nil
}

// BestEffort - The normal entry point: every mutating orchestrator operation
// calls this at least once, and a failure never aborts the caller's scope.
func (s *AuditService) BestEffort(tx *gorm.DB, entry *models.AuditLog) {
	if err := s.Record(tx, entry); err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{
			"module":      entry.Module,
			"entity_code": entry.EntityCode,
			"action":      entry.Action,
		}).Warn("audit log write failed")
	}
}
