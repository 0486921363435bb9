package utils

import (
	"log"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	trainingModels "lms/models/training"
	trainingService "lms/services/training"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeComplianceScheduler sets up the daily compliance sweep
func InitializeComplianceScheduler() {
	log.Println("[COMPLIANCE-SCHEDULER] Initializing compliance scheduler...")

	c := cron.New()

	spec := config.AppConfig.ComplianceCron
	if _, err := c.AddFunc(spec, func() {
		log.Println("[COMPLIANCE-SCHEDULER] Running daily compliance sweep...")
		RunComplianceSweep()
	}); err != nil {
		log.Printf("[COMPLIANCE-SCHEDULER] Invalid cron spec %q: %v", spec, err)
		return
	}

	c.Start()
	log.Printf("[COMPLIANCE-SCHEDULER] Compliance scheduler started - cron %q", spec)
}

// RunComplianceSweep evaluates every deadline-bearing enrollment once. Each
// enrollment is its own unit of work; there is no cross-enrollment lock, so
// one failure never blocks the rest of the sweep.
func RunComplianceSweep() {
	db := database.Database.Db
	batchSize := config.AppConfig.SweepBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	activeStatuses := []trainingModels.EnrollmentStatus{
		trainingModels.StatusEnrolled,
		trainingModels.StatusInProgress,
		trainingModels.StatusCompleted,
	}

	escalated := 0
	expired := 0
	lastID := uint(0)

	for {
		var enrollments []trainingModels.Enrollment
		if err := db.
			Where("id > ? AND due_date IS NOT NULL AND is_deleted = ?", lastID, false).
			Where("status IN ?", activeStatuses).
			Order("id asc").Limit(batchSize).
			Find(&enrollments).Error; err != nil {
			log.Printf("[COMPLIANCE-SCHEDULER] Error fetching enrollments: %v", err)
			return
		}
		if len(enrollments) == 0 {
			break
		}

		for _, enrollment := range enrollments {
			lastID = enrollment.ID
			levelBefore := enrollment.EscalationLevel

			updated, err := trainingService.EscalateCompliance(db, enrollment.ID)
			if err != nil {
				log.Printf("[COMPLIANCE-SCHEDULER] Error evaluating enrollment %d: %v", enrollment.ID, err)
				continue
			}

			if updated.EscalationLevel > levelBefore {
				escalated++
				notifyEscalation(updated)
			}

			if expireEnrollment(db, updated) {
				expired++
			}
		}
	}

	if escalated > 0 || expired > 0 {
		log.Printf("[COMPLIANCE-SCHEDULER] Sweep complete, %d enrollments escalated, %d expired", escalated, expired)
	} else {
		log.Println("[COMPLIANCE-SCHEDULER] Sweep complete, no escalations")
	}
}

// expireEnrollment expires an enrollment that stayed non-compliant past the
// configured escalation threshold. Goes through the state machine so the
// expiry is audited like any other transition.
func expireEnrollment(db *gorm.DB, enrollment *trainingModels.Enrollment) bool {
	threshold := config.AppConfig.ExpireAfterLevel
	if threshold <= 0 || enrollment.EscalationLevel < threshold {
		return false
	}
	// A retained escalation level alone is not grounds for expiry; the
	// enrollment must currently be non-compliant.
	if enrollment.ComplianceStatus != trainingModels.ComplianceNonCompliant {
		return false
	}
	switch enrollment.Status {
	case trainingModels.StatusEnrolled, trainingModels.StatusInProgress:
	default:
		return false
	}

	if _, err := trainingService.Transition(db, enrollment.ID, trainingModels.StatusExpired,
		"deadline exceeded", trainingService.ActorSystem); err != nil {
		log.Printf("[COMPLIANCE-SCHEDULER] Error expiring enrollment %d: %v", enrollment.ID, err)
		return false
	}
	return true
}

// notifyEscalation fans the escalation out to the learner, the admins and the
// downstream webhook. Delivery failures are logged, not retried.
func notifyEscalation(enrollment *trainingModels.Enrollment) {
	db := database.Database.Db

	var module trainingModels.TrainingModule
	if err := db.Where("id = ?", enrollment.ModuleID).First(&module).Error; err != nil {
		log.Printf("[COMPLIANCE-SCHEDULER] Error fetching module %d: %v", enrollment.ModuleID, err)
		return
	}

	go trainingService.PostEscalationWebhook(enrollment, module.Title)

	learners, err := trainingService.ResolveRecipients(db, trainingService.Audience{
		Kind: trainingService.AudienceUsers, UserIDs: []uint{enrollment.UserID},
	})
	if err != nil {
		log.Printf("[COMPLIANCE-SCHEDULER] Error resolving learner %d: %v", enrollment.UserID, err)
		return
	}
	admins, err := trainingService.ResolveRecipients(db, trainingService.Audience{
		Kind: trainingService.AudienceRole, Roles: []string{"ADMIN"},
	})
	if err != nil {
		log.Printf("[COMPLIANCE-SCHEDULER] Error resolving admins: %v", err)
	}

	recipients := make([]models.User, 0, len(learners)+len(admins))
	recipients = append(recipients, learners...)
	recipients = append(recipients, admins...)

	for _, user := range recipients {
		if user.Email == "" {
			continue
		}
		go func(email, name string, level int, due *time.Time) {
			if err := SendEscalationEmail(email, name, module.Title, level, due); err != nil {
				log.Printf("[COMPLIANCE-SCHEDULER] Error sending escalation email to %s: %v", email, err)
			}
		}(user.Email, user.Name, enrollment.EscalationLevel, enrollment.DueDate)
	}
}
