package controllers

import (
	"math"
	"time"

	"lms/database"
	"lms/middleware"
	trainingModels "lms/models/training"
	trainingService "lms/services/training"
	trainingValidator "lms/validators/training"

	"github.com/gofiber/fiber/v2"
)

// StartExam opens a new exam attempt for the current user
func StartExam(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)
	examType := c.Locals("examType").(string)

	db := database.Database.Db

	var enrollment trainingModels.Enrollment
	if err := db.Where("user_id = ? AND module_id = ? AND is_deleted = ?", user.ID, moduleID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this training!", nil)
	}

	// Refuse new attempts on terminal enrollments
	switch enrollment.Status {
	case trainingModels.StatusCertified, trainingModels.StatusWithdrawn, trainingModels.StatusExpired:
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment does not accept new attempts!", nil)
	}

	var open trainingModels.ExamAttempt
	if err := db.Where("user_id = ? AND module_id = ? AND exam_type = ? AND finished_at IS NULL AND is_deleted = ?",
		user.ID, moduleID, examType, false).First(&open).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "An attempt is already in progress!", open)
	}

	attempt := trainingModels.ExamAttempt{
		UserID:    user.ID,
		ModuleID:  uint(moduleID),
		ExamType:  examType,
		StartedAt: time.Now(),
	}
	if err := db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start exam!", nil)
	}

	// First activity moves the enrollment into in_progress
	if enrollment.Status == trainingModels.StatusEnrolled {
		if _, err := trainingService.Transition(db, enrollment.ID, trainingModels.StatusInProgress, "exam started", actorTag(user.ID)); err != nil {
			return serviceError(c, err)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam started!", attempt)
}

// SubmitExam finalizes an attempt and, for a passed post-test, requests the
// completion transition
func SubmitExam(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	moduleID := c.Locals("moduleID").(int)
	attemptID := c.Locals("attemptID").(int)

	reqData, ok := c.Locals("validatedExamSubmission").(*trainingValidator.ExamSubmissionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var enrollment trainingModels.Enrollment
	if err := db.Where("user_id = ? AND module_id = ? AND is_deleted = ?", user.ID, moduleID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this training!", nil)
	}

	var attempt trainingModels.ExamAttempt
	if err := db.Where("id = ? AND user_id = ? AND module_id = ? AND is_deleted = ?", attemptID, user.ID, moduleID, false).First(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Attempt not found!", nil)
	}

	// Attempts are immutable once finished
	if attempt.FinishedAt != nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Attempt already submitted!", attempt)
	}

	percentage := 0.0
	if reqData.MaxScore > 0 {
		percentage = float64(reqData.Score) / float64(reqData.MaxScore) * 100
	}

	finishedAt := time.Now()
	attempt.Score = reqData.Score
	attempt.MaxScore = reqData.MaxScore
	attempt.Percentage = percentage
	attempt.IsPassed = int(math.Round(percentage)) >= enrollment.PassingGrade
	attempt.FinishedAt = &finishedAt
	attempt.DurationMinutes = int(finishedAt.Sub(attempt.StartedAt).Minutes())

	if err := db.Save(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit exam!", nil)
	}

	// A passed post-test completes the training
	if attempt.IsPassed && attempt.ExamType == trainingModels.ExamTypePostTest &&
		enrollment.Status == trainingModels.StatusInProgress {
		updated, err := trainingService.Transition(db, enrollment.ID, trainingModels.StatusCompleted, "post-test passed", actorTag(user.ID))
		if err != nil {
			return serviceError(c, err)
		}
		enrollment = *updated
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam submitted!", fiber.Map{
		"attempt":    attempt,
		"enrollment": enrollment,
	})
}
