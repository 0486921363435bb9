package training

import (
	"errors"
	"time"

	trainingModels "lms/models/training"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// EvaluateCompliance classifies an enrollment's compliance standing. It never
// bumps the escalation level of an already non-compliant enrollment; that is
// the sweep's job via EscalateCompliance, so repeated ad-hoc evaluations stay
// idempotent.
func EvaluateCompliance(db *gorm.DB, enrollmentID uint) (*trainingModels.Enrollment, error) {
	return runEvaluation(db, enrollmentID, ActorSystem, false)
}

// EscalateCompliance is the scheduled-sweep entry point: same classification,
// but an enrollment that stays non-compliant across sweeps has its escalation
// level incremented. The sweep cadence rate-limits the growth.
func EscalateCompliance(db *gorm.DB, enrollmentID uint) (*trainingModels.Enrollment, error) {
	return runEvaluation(db, enrollmentID, ActorSystem, true)
}

func runEvaluation(db *gorm.DB, enrollmentID uint, actor string, escalate bool) (*trainingModels.Enrollment, error) {
	var result *trainingModels.Enrollment

	err := db.Transaction(func(tx *gorm.DB) error {
		var e trainingModels.Enrollment
		if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "enrollment", ID: enrollmentID}
			}
			return err
		}

		if _, err := evaluateComplianceTx(tx, &e, actor, escalate); err != nil {
			return err
		}
		result = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// evaluateComplianceTx applies the compliance rule on the caller's
// transaction. Writes exactly one audit entry when the status or escalation
// level actually changes; no-op evaluations write nothing.
func evaluateComplianceTx(tx *gorm.DB, e *trainingModels.Enrollment, actor string, escalate bool) (bool, error) {
	newStatus := classifyCompliance(e)

	oldSnapshot := complianceSnapshot(e)
	action := ""

	switch {
	case newStatus == trainingModels.ComplianceNonCompliant && e.ComplianceStatus != trainingModels.ComplianceNonCompliant:
		escalatedAt := time.Now()
		e.ComplianceStatus = trainingModels.ComplianceNonCompliant
		e.EscalationLevel++
		e.EscalatedAt = &escalatedAt
		action = trainingModels.AuditActionEscalation

	case newStatus == trainingModels.ComplianceNonCompliant && escalate:
		escalatedAt := time.Now()
		e.EscalationLevel++
		e.EscalatedAt = &escalatedAt
		action = trainingModels.AuditActionEscalation

	case newStatus == trainingModels.ComplianceCompliant && e.ComplianceStatus != trainingModels.ComplianceCompliant:
		// The escalation level is deliberately retained: only an explicit
		// resolution resets it.
		e.ComplianceStatus = trainingModels.ComplianceCompliant
		action = trainingModels.AuditActionComplianceChange
	}

	if action == "" {
		return false, nil
	}

	if err := saveEnrollment(tx, e); err != nil {
		return false, err
	}
	if err := RecordAudit(tx, e.ID, action, oldSnapshot, complianceSnapshot(e), actor, nil); err != nil {
		return false, err
	}
	return true, nil
}

// ResolveCompliance marks a non-compliance as administratively justified:
// compliant, escalation level 0, escalation timestamp cleared.
func ResolveCompliance(db *gorm.DB, enrollmentID uint, reason string, actor string) (*trainingModels.Enrollment, error) {
	var result *trainingModels.Enrollment

	err := db.Transaction(func(tx *gorm.DB) error {
		var e trainingModels.Enrollment
		if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "enrollment", ID: enrollmentID}
			}
			return err
		}

		if e.ComplianceStatus == trainingModels.ComplianceCompliant && e.EscalationLevel == 0 {
			result = &e
			return nil
		}

		oldSnapshot := complianceSnapshot(&e)
		e.ComplianceStatus = trainingModels.ComplianceCompliant
		e.EscalationLevel = 0
		e.EscalatedAt = nil

		if err := saveEnrollment(tx, &e); err != nil {
			return err
		}
		if err := RecordAudit(tx, e.ID, trainingModels.AuditActionResolution,
			oldSnapshot, complianceSnapshot(&e), actor, &reason); err != nil {
			return err
		}
		result = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// classifyCompliance applies the compliance rule: certified enrollments and
// enrollments without a binding deadline are always compliant, otherwise the
// due date decides. The deadline binds until the end of its calendar day.
func classifyCompliance(e *trainingModels.Enrollment) trainingModels.ComplianceStatus {
	if e.Status == trainingModels.StatusCertified {
		return trainingModels.ComplianceCompliant
	}
	if e.DueDate == nil {
		return trainingModels.ComplianceCompliant
	}
	if !time.Now().After(now.New(*e.DueDate).EndOfDay()) {
		return trainingModels.ComplianceCompliant
	}
	return trainingModels.ComplianceNonCompliant
}

func complianceSnapshot(e *trainingModels.Enrollment) map[string]interface{} {
	return map[string]interface{}{
		"compliance_status": e.ComplianceStatus,
		"escalation_level":  e.EscalationLevel,
	}
}
