package controllers

import (
	"lms/database"
	"lms/middleware"
	trainingModels "lms/models/training"
	trainingValidator "lms/validators/training"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateModule creates a new training module in DRAFT state
func AdminCreateModule(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	reqData := c.Locals("validatedModule").(*trainingValidator.ModuleRequest)

	module := trainingModels.TrainingModule{
		Title:           reqData.Title,
		Description:     reqData.Description,
		InstructorID:    reqData.InstructorID,
		DurationMinutes: reqData.DurationMinutes,
		PassingGrade:    reqData.PassingGrade,
		DeadlineDays:    reqData.DeadlineDays,
		PrerequisiteID:  reqData.PrerequisiteID,
	}

	if err := database.Database.Db.Create(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create training module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Training module created successfully!", module)
}

// AdminPublishModule activates and publishes a module
func AdminPublishModule(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	var module trainingModels.TrainingModule
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Training module not found!", nil)
	}

	module.Status = "ACTIVE"
	module.IsPublished = true
	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish training module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Training module published successfully!", module)
}

// AdminDeleteModule soft-deletes a module
func AdminDeleteModule(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	var module trainingModels.TrainingModule
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Training module not found!", nil)
	}

	module.IsDeleted = true
	module.IsPublished = false
	if err := database.Database.Db.Save(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete training module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Training module deleted successfully!", nil)
}

// AdminCreateMaterial adds a material to a module
func AdminCreateMaterial(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)
	reqData := c.Locals("validatedMaterial").(*trainingValidator.MaterialRequest)

	var module trainingModels.TrainingModule
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Training module not found!", nil)
	}

	material := trainingModels.TrainingMaterial{
		ModuleID:    uint(moduleID),
		Title:       reqData.Title,
		ContentType: reqData.ContentType,
		OrderIndex:  reqData.OrderIndex,
		IsPublished: true,
	}

	if err := database.Database.Db.Create(&material).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create material!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Material created successfully!", material)
}

// AdminGetModuleEnrollments lists all enrollments for one module
func AdminGetModuleEnrollments(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	var enrollments []trainingModels.Enrollment
	if err := database.Database.Db.Where("module_id = ? AND is_deleted = ?", moduleID, false).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}
