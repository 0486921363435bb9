package controllers

import (
	"lms/database"
	"lms/middleware"
	trainingModels "lms/models/training"
	trainingService "lms/services/training"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// EnrollInModule enrolls the current user into a training module
func EnrollInModule(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	var module trainingModels.TrainingModule
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND status = ?", moduleID, false, "ACTIVE").First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Training module not found or not active!", nil)
	}

	enrollment, err := trainingService.Enroll(database.Database.Db, user.ID, uint(moduleID))
	if err != nil {
		return serviceError(c, err)
	}

	// Send enrollment email asynchronously
	go utils.SendEnrollmentEmail(user.Email, user.Name, module.Title)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in training successfully!", enrollment)
}

// GetUserEnrollments gets all enrollments for the current user
func GetUserEnrollments(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	type EnrollmentWithModule struct {
		trainingModels.Enrollment
		ModuleTitle     string `json:"module_title"`
		DurationMinutes int    `json:"duration_minutes"`
	}

	var enrollments []trainingModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", user.ID, false).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	result := make([]EnrollmentWithModule, len(enrollments))
	for i, e := range enrollments {
		var module trainingModels.TrainingModule
		database.Database.Db.Where("id = ?", e.ModuleID).First(&module)
		result[i] = EnrollmentWithModule{
			Enrollment:      e,
			ModuleTitle:     module.Title,
			DurationMinutes: module.DurationMinutes,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"total":       len(result),
	})
}

// MarkMaterialComplete records a material completion and moves a freshly
// enrolled user to in_progress
func MarkMaterialComplete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)
	materialID := c.Locals("materialID").(int)

	db := database.Database.Db

	var enrollment trainingModels.Enrollment
	if err := db.Where("user_id = ? AND module_id = ? AND is_deleted = ?", user.ID, moduleID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this training!", nil)
	}

	var material trainingModels.TrainingMaterial
	if err := db.Where("id = ? AND module_id = ? AND is_published = ? AND is_deleted = ?", materialID, moduleID, true, false).First(&material).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found!", nil)
	}

	var existing trainingModels.MaterialCompletion
	if err := db.Where("user_id = ? AND material_id = ? AND is_deleted = ?", user.ID, materialID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Material already completed!", existing)
	}

	completion := trainingModels.MaterialCompletion{
		UserID:     user.ID,
		ModuleID:   uint(moduleID),
		MaterialID: uint(materialID),
	}
	if err := db.Create(&completion).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record completion!", nil)
	}

	// First activity moves the enrollment into in_progress
	if enrollment.Status == trainingModels.StatusEnrolled {
		if _, err := trainingService.Transition(db, enrollment.ID, trainingModels.StatusInProgress, "material completed", actorTag(user.ID)); err != nil {
			return serviceError(c, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material marked complete!", completion)
}

// GetModuleProgress returns the user's aggregated progress for one module
func GetModuleProgress(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)
	db := database.Database.Db

	var enrollment trainingModels.Enrollment
	if err := db.Where("user_id = ? AND module_id = ? AND is_deleted = ?", user.ID, moduleID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this training!", nil)
	}

	completed, total, err := trainingService.CountCompletedMaterials(db, user.ID, uint(moduleID))
	if err != nil {
		return serviceError(c, err)
	}

	score, err := trainingService.ComputeFinalScore(db, user.ID, uint(moduleID))
	if err != nil {
		return serviceError(c, err)
	}

	history, err := trainingService.StateHistory(db, enrollment.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment":          enrollment,
		"materials_completed": completed,
		"materials_total":     total,
		"progress":            float64(completed) / float64(total) * 100,
		"current_score":       score,
		"state_history":       history,
	})
}
