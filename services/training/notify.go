package training

import (
	"log"
	"time"

	"lms/config"
	"lms/models"
	trainingModels "lms/models/training"

	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"
)

type AudienceKind string

const (
	AudienceAll   AudienceKind = "all"
	AudienceRole  AudienceKind = "role"
	AudienceUsers AudienceKind = "users"
)

// Audience selects who a notification goes to.
type Audience struct {
	Kind    AudienceKind
	Roles   []string
	UserIDs []uint
}

// ResolveRecipients expands an audience into concrete users.
func ResolveRecipients(db *gorm.DB, audience Audience) ([]models.User, error) {
	var users []models.User
	query := db.Where("is_deleted = ?", false)

	switch audience.Kind {
	case AudienceAll:
		// no extra filter
	case AudienceRole:
		query = query.Where("role IN ?", audience.Roles)
	case AudienceUsers:
		query = query.Where("id IN ?", audience.UserIDs)
	default:
		return nil, nil
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// PostEscalationWebhook pushes an escalation event downstream. Best-effort:
// delivery happens outside the engine's transactional boundary, failures are
// logged and never rolled back.
func PostEscalationWebhook(e *trainingModels.Enrollment, moduleTitle string) {
	if config.AppConfig == nil || config.AppConfig.EscalationWebhookURL == "" {
		return
	}

	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"enrollment_id":    e.ID,
			"user_id":          e.UserID,
			"module_id":        e.ModuleID,
			"module_title":     moduleTitle,
			"escalation_level": e.EscalationLevel,
			"escalated_at":     e.EscalatedAt,
		}).
		Post(config.AppConfig.EscalationWebhookURL)
	if err != nil {
		log.Printf("[NOTIFY] Escalation webhook failed for enrollment %d: %v", e.ID, err)
		return
	}
	if resp.StatusCode() >= 300 {
		log.Printf("[NOTIFY] Escalation webhook returned %d for enrollment %d", resp.StatusCode(), e.ID)
	}
}
