package trainingValidator

import (
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// ModuleRequest is the body for creating a training module
type ModuleRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	InstructorID    *uint  `json:"instructor_id"`
	DurationMinutes int    `json:"duration_minutes"`
	PassingGrade    int    `json:"passing_grade"`
	DeadlineDays    int    `json:"deadline_days"`
	PrerequisiteID  *uint  `json:"prerequisite_id"`
}

// MaterialRequest is the body for adding a material to a module
type MaterialRequest struct {
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	OrderIndex  int    `json:"order_index"`
}

// CreateModule validates admin module creation request
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ModuleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		} else if len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.DurationMinutes <= 0 {
			errors["duration_minutes"] = "Duration must be a positive number of minutes!"
		}

		if reqData.PassingGrade < 0 || reqData.PassingGrade > 100 {
			errors["passing_grade"] = "Passing grade must be between 0 and 100!"
		}

		if reqData.DeadlineDays < 0 {
			errors["deadline_days"] = "Deadline days cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// CreateMaterial validates admin material creation request
func CreateMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := paramID(c, "id", "moduleID"); err != nil {
			return err
		}

		reqData := new(MaterialRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.ContentType = strings.TrimSpace(strings.ToUpper(reqData.ContentType))

		if reqData.Title == "" {
			errors["title"] = "Title is required!"
		}

		switch reqData.ContentType {
		case "":
			reqData.ContentType = "TEXT"
		case "TEXT", "VIDEO", "PDF":
		default:
			errors["content_type"] = "Content type must be TEXT, VIDEO or PDF!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedMaterial", reqData)
		return c.Next()
	}
}
