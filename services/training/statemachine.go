package training

import (
	"errors"
	"fmt"
	"time"

	"lms/models"
	trainingModels "lms/models/training"

	"gorm.io/gorm"
)

// ValidStateTransitions is the single source of truth for legal lifecycle
// moves. Certified is terminal; withdrawn and expired can only re-enter the
// lifecycle through an explicit re-enrollment back to enrolled.
var ValidStateTransitions = map[trainingModels.EnrollmentStatus][]trainingModels.EnrollmentStatus{
	trainingModels.StatusEnrolled:   {trainingModels.StatusInProgress, trainingModels.StatusWithdrawn, trainingModels.StatusExpired},
	trainingModels.StatusInProgress: {trainingModels.StatusCompleted, trainingModels.StatusWithdrawn, trainingModels.StatusExpired},
	trainingModels.StatusCompleted:  {trainingModels.StatusCertified},
	trainingModels.StatusCertified:  {},
	trainingModels.StatusWithdrawn:  {trainingModels.StatusEnrolled},
	trainingModels.StatusExpired:    {trainingModels.StatusEnrolled},
}

// CanTransition reports whether the move is allowed by the transition table.
func CanTransition(from, to trainingModels.EnrollmentStatus) bool {
	for _, allowed := range ValidStateTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Enroll creates the initial enrolled record for a user+module pair,
// snapshotting the module's passing grade and deadline.
func Enroll(db *gorm.DB, userID, moduleID uint) (*trainingModels.Enrollment, error) {
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: userID}
		}
		return nil, err
	}

	var module trainingModels.TrainingModule
	if err := db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "module", ID: moduleID}
		}
		return nil, err
	}

	var existing trainingModels.Enrollment
	if err := db.Where("user_id = ? AND module_id = ? AND is_deleted = ?", userID, moduleID, false).First(&existing).Error; err == nil {
		return nil, &DuplicateEnrollmentError{UserID: userID, ModuleID: moduleID}
	}

	enrolledAt := time.Now()
	enrollment := trainingModels.Enrollment{
		UserID:           userID,
		ModuleID:         moduleID,
		Status:           trainingModels.StatusEnrolled,
		EnrolledAt:       enrolledAt,
		PassingGrade:     module.PassingGrade,
		PrerequisitesMet: prerequisitesMet(db, userID, &module),
		ComplianceStatus: trainingModels.ComplianceUnknown,
	}
	if module.DeadlineDays > 0 {
		due := enrolledAt.AddDate(0, 0, module.DeadlineDays)
		enrollment.DueDate = &due
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		return RecordAudit(tx, enrollment.ID, trainingModels.AuditActionEnrolled,
			nil, map[string]interface{}{"status": trainingModels.StatusEnrolled}, fmt.Sprint(userID), nil)
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Transition moves an enrollment to the requested status. The state update,
// its audit entry and any certificate issuance commit together or not at all.
func Transition(db *gorm.DB, enrollmentID uint, target trainingModels.EnrollmentStatus, reason string, actor string) (*trainingModels.Enrollment, error) {
	var result *trainingModels.Enrollment

	err := db.Transaction(func(tx *gorm.DB) error {
		var e trainingModels.Enrollment
		if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "enrollment", ID: enrollmentID}
			}
			return err
		}

		if !CanTransition(e.Status, target) {
			return &IllegalTransitionError{From: e.Status, To: target}
		}

		from := e.Status
		now := time.Now()

		switch target {
		case trainingModels.StatusCompleted:
			score, err := ComputeFinalScore(tx, e.UserID, e.ModuleID)
			if err != nil {
				return err
			}
			var module trainingModels.TrainingModule
			if err := tx.Where("id = ?", e.ModuleID).First(&module).Error; err != nil {
				return err
			}
			e.FinalScore = &score
			e.CompletedAt = &now
			e.PrerequisitesMet = prerequisitesMet(tx, e.UserID, &module)

		case trainingModels.StatusCertified:
			if condition := certificateEligibility(&e); condition != "" {
				return &CertificateNotEligibleError{Condition: condition}
			}

		case trainingModels.StatusEnrolled:
			// Re-enrollment starts a fresh cycle with a fresh deadline,
			// otherwise the stale due date would make the new cycle
			// non-compliant on the next sweep.
			var module trainingModels.TrainingModule
			if err := tx.Where("id = ?", e.ModuleID).First(&module).Error; err != nil {
				return err
			}
			e.EnrolledAt = now
			e.FinalScore = nil
			e.CompletedAt = nil
			e.ComplianceStatus = trainingModels.ComplianceUnknown
			e.DueDate = nil
			if module.DeadlineDays > 0 {
				due := now.AddDate(0, 0, module.DeadlineDays)
				e.DueDate = &due
			}
		}

		e.Status = target
		if err := saveEnrollment(tx, &e); err != nil {
			return err
		}

		reasonPtr := &reason
		if reason == "" {
			reasonPtr = nil
		}
		if err := RecordAudit(tx, e.ID, trainingModels.AuditActionStatusTransition,
			map[string]interface{}{"status": from},
			map[string]interface{}{"status": target}, actor, reasonPtr); err != nil {
			return err
		}

		if target == trainingModels.StatusCompleted {
			// Callers must observe a consistent compliance status right
			// after completion, so the evaluation runs in the same tx.
			if _, err := evaluateComplianceTx(tx, &e, actor, false); err != nil {
				return err
			}
		}

		if target == trainingModels.StatusCertified {
			cert, err := issueCertificateTx(tx, &e, actor)
			if err != nil {
				return err
			}
			e.IsCertified = true
			e.CertificateIssuedAt = &cert.IssuedAt
			if err := saveEnrollment(tx, &e); err != nil {
				return err
			}
		}

		result = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// certificateEligibility returns the first unmet guard condition, or ""
// when the enrollment may be certified.
func certificateEligibility(e *trainingModels.Enrollment) string {
	if e.IsCertified {
		return "certificate already issued"
	}
	if e.FinalScore == nil {
		return "final score has not been computed"
	}
	if *e.FinalScore < e.PassingGrade {
		return fmt.Sprintf("score %d below passing grade %d", *e.FinalScore, e.PassingGrade)
	}
	if !e.PrerequisitesMet {
		return "prerequisites not met"
	}
	return ""
}

// prerequisitesMet checks the module's prerequisite chain: met when no
// prerequisite is configured or the user completed the prerequisite module.
func prerequisitesMet(db *gorm.DB, userID uint, module *trainingModels.TrainingModule) bool {
	if module.PrerequisiteID == nil {
		return true
	}
	var prereq trainingModels.Enrollment
	err := db.Where("user_id = ? AND module_id = ? AND is_deleted = ?", userID, *module.PrerequisiteID, false).
		Where("status IN ?", []trainingModels.EnrollmentStatus{trainingModels.StatusCompleted, trainingModels.StatusCertified}).
		First(&prereq).Error
	return err == nil
}

// saveEnrollment writes the mutable enrollment fields guarded by the
// optimistic lock version. Zero rows affected means another writer got
// there first.
func saveEnrollment(tx *gorm.DB, e *trainingModels.Enrollment) error {
	currentVersion := e.LockVersion
	e.LockVersion++

	res := tx.Model(&trainingModels.Enrollment{}).
		Where("id = ? AND lock_version = ?", e.ID, currentVersion).
		Updates(map[string]interface{}{
			"status":                e.Status,
			"final_score":           e.FinalScore,
			"is_certified":          e.IsCertified,
			"enrolled_at":           e.EnrolledAt,
			"completed_at":          e.CompletedAt,
			"due_date":              e.DueDate,
			"prerequisites_met":     e.PrerequisitesMet,
			"compliance_status":     e.ComplianceStatus,
			"escalation_level":      e.EscalationLevel,
			"escalated_at":          e.EscalatedAt,
			"certificate_issued_at": e.CertificateIssuedAt,
			"lock_version":          e.LockVersion,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &ConcurrencyConflictError{EnrollmentID: e.ID}
	}
	return nil
}
