package training

import (
	"encoding/json"

	trainingModels "lms/models/training"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActorSystem identifies mutations triggered by schedulers rather than a user.
const ActorSystem = "system"

// RecordAudit appends one audit row on the caller's transaction. An unaudited
// state change is a correctness violation, so any error here must roll the
// enclosing transaction back.
func RecordAudit(tx *gorm.DB, enrollmentID uint, action string, oldValue, newValue interface{}, actor string, reason *string) error {
	oldJSON, err := json.Marshal(oldValue)
	if err != nil {
		return err
	}
	newJSON, err := json.Marshal(newValue)
	if err != nil {
		return err
	}

	entry := trainingModels.ComplianceAuditLog{
		UserTrainingID: enrollmentID,
		Action:         action,
		OldValue:       datatypes.JSON(oldJSON),
		NewValue:       datatypes.JSON(newJSON),
		TriggeredBy:    actor,
		Reason:         reason,
	}

	return tx.Create(&entry).Error
}

// AuditTrail returns all audit entries for an enrollment in chronological order.
func AuditTrail(db *gorm.DB, enrollmentID uint) ([]trainingModels.ComplianceAuditLog, error) {
	var entries []trainingModels.ComplianceAuditLog
	if err := db.Where("user_training_id = ?", enrollmentID).Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// StateHistory returns only the status transitions, the canonical history of
// an enrollment's lifecycle.
func StateHistory(db *gorm.DB, enrollmentID uint) ([]trainingModels.ComplianceAuditLog, error) {
	var entries []trainingModels.ComplianceAuditLog
	if err := db.Where("user_training_id = ? AND action = ?", enrollmentID, trainingModels.AuditActionStatusTransition).
		Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
