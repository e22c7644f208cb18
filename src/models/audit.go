package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionCancel  AuditAction = "cancel"
	AuditActionDelete  AuditAction = "delete"
	AuditActionPayment AuditAction = "payment"
	AuditActionReceive AuditAction = "receive"
	AuditActionReturn  AuditAction = "return"
	AuditActionAdjust  AuditAction = "adjust"
)

// ============ AUDIT LOG ============
// Append-only trail of every mutating ledger action. Writes are best-effort:
// a failed audit insert is rolled back to a savepoint and logged as a warning
// without aborting the business operation around it.
type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	Actor  string `gorm:"type:varchar(100);not null" json:"actor"`
	Module string `gorm:"type:varchar(50);not null;index" json:"module"`

	EntityType string `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   string `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityCode string `gorm:"type:varchar(50);index" json:"entity_code"`

	Action  AuditAction `gorm:"type:varchar(20);not null" json:"action"`
	Summary string      `gorm:"type:text;not null" json:"summary"`

	DataBefore json.RawMessage `gorm:"type:jsonb" json:"data_before,omitempty"`
	DataAfter  json.RawMessage `gorm:"type:jsonb" json:"data_after,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Snapshot marshals an entity for the before/after columns. Marshal failures
// degrade to null rather than failing the audit write.
func Snapshot(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
