package controllers

import (
	"lms/database"
	"lms/middleware"
	trainingModels "lms/models/training"

	"github.com/gofiber/fiber/v2"
)

// GetAllModules lists published, active training modules
func GetAllModules(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	var modules []trainingModels.TrainingModule
	if err := database.Database.Db.
		Where("is_deleted = ? AND is_published = ? AND status = ?", false, true, "ACTIVE").
		Order("created_at desc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch training modules!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Training modules fetched successfully!", fiber.Map{
		"modules": modules,
		"total":   len(modules),
	})
}

// GetModuleDetails returns one module with its published materials
func GetModuleDetails(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	var module trainingModels.TrainingModule
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", moduleID, false, true).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Training module not found!", nil)
	}

	var materials []trainingModels.TrainingMaterial
	database.Database.Db.Where("module_id = ? AND is_published = ? AND is_deleted = ?", moduleID, true, false).
		Order("order_index asc").Find(&materials)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Training module fetched successfully!", fiber.Map{
		"module":    module,
		"materials": materials,
	})
}
