package trainingRoutes

import (
	controllers "lms/controllers/training"
	"lms/middleware"
	validators "lms/validators/training"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminTrainingRoutes sets up admin training management routes
func SetupAdminTrainingRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))

	// Module management
	adminGroup.Post("/module", validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Post("/module/:id/publish", validators.ModuleID(), controllers.AdminPublishModule)
	adminGroup.Delete("/module/:id", validators.ModuleID(), controllers.AdminDeleteModule)
	adminGroup.Post("/module/:id/material", validators.CreateMaterial(), controllers.AdminCreateMaterial)
	adminGroup.Get("/module/:id/enrollments", validators.ModuleID(), controllers.AdminGetModuleEnrollments)

	// Enrollment lifecycle and compliance
	adminGroup.Post("/enrollment/:id/transition", validators.Transition(), controllers.AdminTransitionEnrollment)
	adminGroup.Post("/enrollment/:id/compliance/evaluate", validators.EnrollmentID(), controllers.AdminEvaluateCompliance)
	adminGroup.Post("/enrollment/:id/compliance/resolve", validators.Resolution(), controllers.AdminResolveCompliance)
	adminGroup.Get("/enrollment/:id/audit", validators.EnrollmentID(), controllers.AdminGetAuditTrail)

	// Certificates
	adminGroup.Post("/certificate/:id/revoke", validators.Revoke(), controllers.AdminRevokeCertificate)

	// Reporting
	adminGroup.Get("/compliance/report", controllers.AdminComplianceReport)
}
