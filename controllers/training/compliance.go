package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	trainingModels "lms/models/training"
	trainingService "lms/services/training"
	"lms/utils"
	trainingValidator "lms/validators/training"

	"github.com/gofiber/fiber/v2"
)

// AdminEvaluateCompliance re-runs the compliance classification for one enrollment
func AdminEvaluateCompliance(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	enrollment, err := trainingService.EvaluateCompliance(database.Database.Db, uint(enrollmentID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Compliance evaluated!", enrollment)
}

// AdminResolveCompliance marks a non-compliance as administratively justified
func AdminResolveCompliance(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)
	reqData := c.Locals("validatedResolution").(*trainingValidator.ResolutionRequest)

	enrollment, err := trainingService.ResolveCompliance(database.Database.Db, uint(enrollmentID), reqData.Reason, actorTag(user.ID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Compliance resolved!", enrollment)
}

// AdminTransitionEnrollment applies an explicit lifecycle transition
// (withdraw, expire, re-enroll, certify)
func AdminTransitionEnrollment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)
	reqData := c.Locals("validatedTransition").(*trainingValidator.TransitionRequest)

	db := database.Database.Db
	enrollment, err := trainingService.Transition(db,
		uint(enrollmentID), trainingModels.EnrollmentStatus(reqData.TargetStatus), reqData.Reason, actorTag(user.ID))
	if err != nil {
		return serviceError(c, err)
	}

	if enrollment.Status == trainingModels.StatusCertified {
		var learner models.User
		var module trainingModels.TrainingModule
		var cert trainingModels.Certificate
		if db.First(&learner, enrollment.UserID).Error == nil &&
			db.First(&module, enrollment.ModuleID).Error == nil &&
			db.Where("user_id = ? AND module_id = ?", enrollment.UserID, enrollment.ModuleID).First(&cert).Error == nil {
			go utils.SendCertificateEmail(learner.Email, learner.Name, module.Title, cert.CertificateNumber)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transition applied!", enrollment)
}

// AdminGetAuditTrail returns the full chronological audit trail for an enrollment
func AdminGetAuditTrail(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)
	db := database.Database.Db

	var enrollment trainingModels.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	trail, err := trainingService.AuditTrail(db, uint(enrollmentID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch audit trail!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Audit trail fetched successfully!", fiber.Map{
		"enrollment": enrollment,
		"entries":    trail,
		"total":      len(trail),
	})
}

// AdminComplianceReport summarizes compliance standing across all enrollments
func AdminComplianceReport(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	db := database.Database.Db

	type statusCount struct {
		ComplianceStatus string `json:"compliance_status"`
		Count            int64  `json:"count"`
	}
	var counts []statusCount
	if err := db.Model(&trainingModels.Enrollment{}).
		Select("compliance_status, count(*) as count").
		Where("is_deleted = ?", false).
		Group("compliance_status").
		Scan(&counts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build report!", nil)
	}

	var escalated []trainingModels.Enrollment
	if err := db.Where("escalation_level > 0 AND is_deleted = ?", false).
		Order("escalation_level desc, escalated_at asc").
		Limit(100).Find(&escalated).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to build report!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Compliance report generated!", fiber.Map{
		"by_status": counts,
		"escalated": escalated,
	})
}
