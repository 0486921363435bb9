package trainingValidator

import (
	"strconv"
	"strings"

	"lms/middleware"
	trainingModels "lms/models/training"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ExamSubmissionRequest is the body for submitting an exam attempt
type ExamSubmissionRequest struct {
	Score    int `json:"score" validate:"gte=0"`
	MaxScore int `json:"max_score" validate:"gt=0"`
}

// TransitionRequest is the body for an explicit admin lifecycle transition
type TransitionRequest struct {
	TargetStatus string `json:"target_status" validate:"required,oneof=enrolled in_progress completed certified expired withdrawn"`
	Reason       string `json:"reason" validate:"max=500"`
}

// ResolutionRequest is the body for resolving a non-compliance
type ResolutionRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// RevokeRequest is the body for revoking a certificate
type RevokeRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// paramID parses a positive integer route parameter into c.Locals under key
func paramID(c *fiber.Ctx, param, key string) error {
	raw := strings.TrimSpace(c.Params(param))
	if raw == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing "+param+" parameter!", nil)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+param+" parameter!", nil)
	}
	c.Locals(key, id)
	return nil
}

// ModuleID validates the :id route parameter
func ModuleID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := paramID(c, "id", "moduleID"); err != nil {
			return err
		}
		return c.Next()
	}
}

// MaterialComplete validates module and material parameters
func MaterialComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := paramID(c, "module_id", "moduleID"); err != nil {
			return err
		}
		if err := paramID(c, "material_id", "materialID"); err != nil {
			return err
		}
		return c.Next()
	}
}

// StartExam validates the module parameter and exam type body
func StartExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := paramID(c, "id", "moduleID"); err != nil {
			return err
		}

		reqData := new(struct {
			ExamType string `json:"exam_type"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		examType := strings.TrimSpace(reqData.ExamType)
		if examType != trainingModels.ExamTypePreTest && examType != trainingModels.ExamTypePostTest {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"exam_type": "Exam type must be pre_test or post_test!",
			})
		}

		c.Locals("examType", examType)
		return c.Next()
	}
}

// SubmitExam validates module/attempt parameters and the score body
func SubmitExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := paramID(c, "id", "moduleID"); err != nil {
			return err
		}
		if err := paramID(c, "attempt_id", "attemptID"); err != nil {
			return err
		}

		reqData := new(ExamSubmissionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"score": "Score must be non-negative and max_score must be positive!",
			})
		}

		c.Locals("validatedExamSubmission", reqData)
		return c.Next()
	}
}

// EnrollmentID validates the :id route parameter for enrollment endpoints
func EnrollmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := paramID(c, "id", "enrollmentID"); err != nil {
			return err
		}
		return c.Next()
	}
}

// Transition validates the admin transition request
func Transition() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := paramID(c, "id", "enrollmentID"); err != nil {
			return err
		}

		reqData := new(TransitionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.TargetStatus = strings.TrimSpace(reqData.TargetStatus)
		reqData.Reason = strings.TrimSpace(reqData.Reason)
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"target_status": "Target status must be a valid enrollment status!",
			})
		}

		c.Locals("validatedTransition", reqData)
		return c.Next()
	}
}

// Resolution validates the compliance resolution request
func Resolution() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := paramID(c, "id", "enrollmentID"); err != nil {
			return err
		}

		reqData := new(ResolutionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Reason = strings.TrimSpace(reqData.Reason)
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"reason": "Reason is required (3-500 characters)!",
			})
		}

		c.Locals("validatedResolution", reqData)
		return c.Next()
	}
}

// Revoke validates the certificate revocation request
func Revoke() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := paramID(c, "id", "certificateID"); err != nil {
			return err
		}

		reqData := new(RevokeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Reason = strings.TrimSpace(reqData.Reason)
		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"reason": "Reason is required (3-500 characters)!",
			})
		}

		c.Locals("revokeReason", reqData.Reason)
		return c.Next()
	}
}
