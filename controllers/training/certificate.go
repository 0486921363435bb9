package controllers

import (
	"lms/database"
	"lms/middleware"
	trainingModels "lms/models/training"
	trainingService "lms/services/training"

	"github.com/gofiber/fiber/v2"
)

// GetUserCertificates gets all certificates for the current user
func GetUserCertificates(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var certificates []trainingModels.Certificate
	if err := database.Database.Db.Where("user_id = ?", user.ID).
		Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"total":        len(certificates),
	})
}

// FetchCertificate returns the certificate for a certified enrollment,
// issuing it if the automatic issuance was somehow missed. Idempotent.
func FetchCertificate(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)

	certificate, err := trainingService.IssueCertificate(database.Database.Db, user.ID, uint(moduleID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully!", certificate)
}

// AdminRevokeCertificate withdraws a certificate while keeping the record
func AdminRevokeCertificate(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	certificateID := c.Locals("certificateID").(int)
	reason := c.Locals("revokeReason").(string)

	certificate, err := trainingService.RevokeCertificate(database.Database.Db, uint(certificateID), reason, actorTag(user.ID))
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate revoked!", certificate)
}
