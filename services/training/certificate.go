package training

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lms/config"
	"lms/models"
	trainingModels "lms/models/training"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultInstructorName = "Training Department"

// IssueCertificate materializes the certificate for a certified enrollment.
// Idempotent: a second call for the same pair returns the existing record.
func IssueCertificate(db *gorm.DB, userID, moduleID uint) (*trainingModels.Certificate, error) {
	var result *trainingModels.Certificate

	err := db.Transaction(func(tx *gorm.DB) error {
		var e trainingModels.Enrollment
		if err := tx.Where("user_id = ? AND module_id = ? AND is_deleted = ?", userID, moduleID, false).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "enrollment", ID: 0}
			}
			return err
		}

		var existing trainingModels.Certificate
		if err := tx.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&existing).Error; err == nil {
			result = &existing
			return nil
		}

		if e.Status != trainingModels.StatusCertified {
			return &CertificateNotEligibleError{Condition: fmt.Sprintf("enrollment status is %q, not certified", e.Status)}
		}

		// Bump the lock version before creating the certificate so two
		// concurrent issuers serialize; the loser gets a conflict to retry
		// instead of a unique-index violation.
		if err := saveEnrollment(tx, &e); err != nil {
			return err
		}

		cert, err := issueCertificateTx(tx, &e, ActorSystem)
		if err != nil {
			return err
		}
		result = cert
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// issueCertificateTx creates the certificate on the caller's transaction. The
// idempotency check runs under the same enrollment lock as the certified
// transition, so two concurrent writers cannot both create one.
func issueCertificateTx(tx *gorm.DB, e *trainingModels.Enrollment, actor string) (*trainingModels.Certificate, error) {
	var existing trainingModels.Certificate
	if err := tx.Where("user_id = ? AND module_id = ?", e.UserID, e.ModuleID).First(&existing).Error; err == nil {
		return &existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var module trainingModels.TrainingModule
	if err := tx.Where("id = ?", e.ModuleID).First(&module).Error; err != nil {
		return nil, err
	}
	var user models.User
	if err := tx.Where("id = ?", e.UserID).First(&user).Error; err != nil {
		return nil, err
	}

	score := 0
	if e.FinalScore != nil {
		score = *e.FinalScore
	}
	completed, total, err := CountCompletedMaterials(tx, e.UserID, e.ModuleID)
	if err != nil {
		return nil, err
	}

	metadata, err := buildCertificateMetadata(tx, e, completed, total)
	if err != nil {
		return nil, err
	}

	completedAt := time.Now()
	if e.CompletedAt != nil {
		completedAt = *e.CompletedAt
	}

	issuedAt := time.Now()
	cert := trainingModels.Certificate{
		UserID:             e.UserID,
		ModuleID:           e.ModuleID,
		CertificateNumber:  generateCertificateNumber(issuedAt, e.UserID, e.ModuleID),
		UserName:           user.Name,
		TrainingTitle:      module.Title,
		Score:              score,
		MaterialsCompleted: completed,
		Hours:              (module.DurationMinutes + 59) / 60,
		IssuedAt:           issuedAt,
		CompletedAt:        completedAt,
		InstructorName:     resolveInstructorName(tx, &module),
		Status:             trainingModels.CertificateActive,
		Metadata:           metadata,
	}

	if err := tx.Create(&cert).Error; err != nil {
		return nil, err
	}

	if err := RecordAudit(tx, e.ID, trainingModels.AuditActionCertificateIssued,
		nil, map[string]interface{}{"certificate_number": cert.CertificateNumber, "score": cert.Score},
		actor, nil); err != nil {
		return nil, err
	}

	return &cert, nil
}

// RevokeCertificate withdraws a certificate without deleting it; the record
// must remain queryable to prove it once existed and why it was withdrawn.
func RevokeCertificate(db *gorm.DB, certificateID uint, reason string, actor string) (*trainingModels.Certificate, error) {
	var result *trainingModels.Certificate

	err := db.Transaction(func(tx *gorm.DB) error {
		var cert trainingModels.Certificate
		if err := tx.Where("id = ?", certificateID).First(&cert).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "certificate", ID: certificateID}
			}
			return err
		}

		if cert.Status == trainingModels.CertificateRevoked {
			result = &cert
			return nil
		}

		revokedAt := time.Now()
		cert.Status = trainingModels.CertificateRevoked
		cert.RevokedAt = &revokedAt
		cert.RevokedReason = reason
		if err := tx.Model(&trainingModels.Certificate{}).Where("id = ?", cert.ID).Updates(map[string]interface{}{
			"status":         cert.Status,
			"revoked_at":     cert.RevokedAt,
			"revoked_reason": cert.RevokedReason,
		}).Error; err != nil {
			return err
		}

		var e trainingModels.Enrollment
		if err := tx.Where("user_id = ? AND module_id = ? AND is_deleted = ?", cert.UserID, cert.ModuleID, false).First(&e).Error; err == nil {
			if err := RecordAudit(tx, e.ID, trainingModels.AuditActionCertificateRevoked,
				map[string]interface{}{"status": trainingModels.CertificateActive},
				map[string]interface{}{"status": trainingModels.CertificateRevoked},
				actor, &reason); err != nil {
				return err
			}
		}

		result = &cert
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// generateCertificateNumber builds a human-readable composite number. The
// random suffix is informational, not a security token.
func generateCertificateNumber(issuedAt time.Time, userID, moduleID uint) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("CERT-%d%02d-%04d-%04d-%s", issuedAt.Year(), int(issuedAt.Month()), userID, moduleID, suffix)
}

func resolveInstructorName(tx *gorm.DB, module *trainingModels.TrainingModule) string {
	if module.InstructorID != nil {
		var instructor models.User
		if err := tx.Where("id = ? AND is_deleted = ?", *module.InstructorID, false).First(&instructor).Error; err == nil && instructor.Name != "" {
			return instructor.Name
		}
	}
	if config.AppConfig != nil && config.AppConfig.InstructorFallback != "" {
		return config.AppConfig.InstructorFallback
	}
	return defaultInstructorName
}

// buildCertificateMetadata snapshots the exam and material numbers that
// justified issuance, so the certificate stays explainable later.
func buildCertificateMetadata(tx *gorm.DB, e *trainingModels.Enrollment, completed, total int) (datatypes.JSON, error) {
	snapshot := map[string]interface{}{
		"materials_completed": completed,
		"materials_total":     total,
		"passing_grade":       e.PassingGrade,
	}

	for _, examType := range []string{trainingModels.ExamTypePreTest, trainingModels.ExamTypePostTest} {
		var attempt trainingModels.ExamAttempt
		err := tx.Where("user_id = ? AND module_id = ? AND exam_type = ? AND finished_at IS NOT NULL AND is_deleted = ?",
			e.UserID, e.ModuleID, examType, false).
			Order("finished_at desc").First(&attempt).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		snapshot[examType+"_percentage"] = attempt.Percentage
		snapshot[examType+"_passed"] = attempt.IsPassed
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
