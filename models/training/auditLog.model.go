package training

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditActionEnrolled           = "enrolled"
	AuditActionStatusTransition   = "status_transition"
	AuditActionComplianceChange   = "compliance_change"
	AuditActionEscalation         = "escalation"
	AuditActionResolution         = "resolution"
	AuditActionCertificateIssued  = "certificate_issued"
	AuditActionCertificateRevoked = "certificate_revoked"
)

// ComplianceAuditLog is an append-only record of every state or compliance
// change on an enrollment. Rows are never updated or deleted.
type ComplianceAuditLog struct {
	gorm.Model
	UserTrainingID uint           `json:"user_training_id" gorm:"index;not null"`
	Action         string         `json:"action" gorm:"index;not null"`
	OldValue       datatypes.JSON `json:"old_value"`
	NewValue       datatypes.JSON `json:"new_value"`
	TriggeredBy    string         `json:"triggered_by" gorm:"default:'system'"` // user id or "system"
	Reason         *string        `json:"reason"`
}
