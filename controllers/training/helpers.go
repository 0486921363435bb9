package controllers

import (
	"errors"
	"fmt"

	"lms/database"
	"lms/middleware"
	"lms/models"
	trainingService "lms/services/training"

	"github.com/gofiber/fiber/v2"
)

// currentUser loads the authenticated user set by the JWT middleware
func currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	return &user, nil
}

// actorTag renders a user id the way the audit log stores actors
func actorTag(userID uint) string {
	return fmt.Sprint(userID)
}

// serviceError maps the engine's typed failures onto HTTP responses.
// The error messages are safe to show to the client as-is.
func serviceError(c *fiber.Ctx, err error) error {
	var notFound *trainingService.NotFoundError
	if errors.As(err, &notFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, notFound.Error(), nil)
	}

	var duplicate *trainingService.DuplicateEnrollmentError
	if errors.As(err, &duplicate) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, duplicate.Error(), nil)
	}

	var illegal *trainingService.IllegalTransitionError
	if errors.As(err, &illegal) {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, illegal.Error(), fiber.Map{
			"from": illegal.From,
			"to":   illegal.To,
		})
	}

	var notEligible *trainingService.CertificateNotEligibleError
	if errors.As(err, &notEligible) {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, notEligible.Error(), fiber.Map{
			"condition": notEligible.Condition,
		})
	}

	var conflict *trainingService.ConcurrencyConflictError
	if errors.As(err, &conflict) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, conflict.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}
