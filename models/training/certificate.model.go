package training

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CertificateActive  = "active"
	CertificateRevoked = "revoked"
)

// Certificate is the issued proof of a completed, compliant enrollment.
// At most one exists per (user, module). Immutable once created except for
// the transition to revoked, which keeps the row for the audit trail.
type Certificate struct {
	gorm.Model
	UserID             uint           `json:"user_id" gorm:"index;not null;uniqueIndex:idx_cert_user_module"`
	ModuleID           uint           `json:"module_id" gorm:"index;not null;uniqueIndex:idx_cert_user_module"`
	CertificateNumber  string         `json:"certificate_number" gorm:"unique"`
	UserName           string         `json:"user_name"`
	TrainingTitle      string         `json:"training_title"` // snapshot at issue time
	Score              int            `json:"score"`
	MaterialsCompleted int            `json:"materials_completed"`
	Hours              int            `json:"hours"`
	IssuedAt           time.Time      `json:"issued_at"`
	CompletedAt        time.Time      `json:"completed_at"`
	InstructorName     string         `json:"instructor_name"`
	Status             string         `json:"status" gorm:"default:'active'"` // active, revoked
	RevokedAt          *time.Time     `json:"revoked_at"`
	RevokedReason      string         `json:"revoked_reason"`
	Metadata           datatypes.JSON `json:"metadata"` // exam/material snapshot at issue time
}
