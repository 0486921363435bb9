package trainingRoutes

import (
	controllers "lms/controllers/training"
	"lms/middleware"
	validators "lms/validators/training"

	"github.com/gofiber/fiber/v2"
)

// SetupTrainingRoutes sets up all user-facing training routes
func SetupTrainingRoutes(app *fiber.App) {
	trainingGroup := app.Group("/training")

	// Catalog
	trainingGroup.Get("/list", middleware.JWTMiddleware, controllers.GetAllModules)
	trainingGroup.Get("/:id", middleware.JWTMiddleware, validators.ModuleID(), controllers.GetModuleDetails)

	// Enrollment
	trainingGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.ModuleID(), controllers.EnrollInModule)

	// Material completion
	trainingGroup.Post("/:module_id/material/:material_id/complete", middleware.JWTMiddleware, validators.MaterialComplete(), controllers.MarkMaterialComplete)

	// Exams
	trainingGroup.Post("/:id/exam/start", middleware.JWTMiddleware, validators.StartExam(), controllers.StartExam)
	trainingGroup.Post("/:id/exam/:attempt_id/submit", middleware.JWTMiddleware, validators.SubmitExam(), controllers.SubmitExam)

	// Progress tracking
	trainingGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.ModuleID(), controllers.GetModuleProgress)

	// Certificate fetch (idempotent)
	trainingGroup.Post("/:id/certificate", middleware.JWTMiddleware, validators.ModuleID(), controllers.FetchCertificate)

	// User enrollments and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollments)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
