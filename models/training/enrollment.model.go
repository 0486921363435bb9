package training

import (
	"time"

	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	StatusEnrolled   EnrollmentStatus = "enrolled"
	StatusInProgress EnrollmentStatus = "in_progress"
	StatusCompleted  EnrollmentStatus = "completed"
	StatusCertified  EnrollmentStatus = "certified"
	StatusExpired    EnrollmentStatus = "expired"
	StatusWithdrawn  EnrollmentStatus = "withdrawn"
)

type ComplianceStatus string

const (
	ComplianceUnknown      ComplianceStatus = "unknown"
	ComplianceCompliant    ComplianceStatus = "compliant"
	ComplianceNonCompliant ComplianceStatus = "non_compliant"
)

// Enrollment tracks a user's participation in one training module.
// Exactly one row exists per (user, module) pair.
type Enrollment struct {
	gorm.Model
	UserID              uint             `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_module"`
	ModuleID            uint             `json:"module_id" gorm:"index;not null;uniqueIndex:idx_user_module"`
	Status              EnrollmentStatus `json:"status" gorm:"default:'enrolled'"`
	FinalScore          *int             `json:"final_score"`
	IsCertified         bool             `json:"is_certified" gorm:"default:false"`
	EnrolledAt          time.Time        `json:"enrolled_at"`
	CompletedAt         *time.Time       `json:"completed_at"`
	PassingGrade        int              `json:"passing_grade"` // snapshot from module at enroll time
	DueDate             *time.Time       `json:"due_date"`      // nil = no binding deadline
	PrerequisitesMet    bool             `json:"prerequisites_met" gorm:"default:true"`
	ComplianceStatus    ComplianceStatus `json:"compliance_status" gorm:"default:'unknown'"`
	EscalationLevel     int              `json:"escalation_level" gorm:"default:0"`
	EscalatedAt         *time.Time       `json:"escalated_at"`
	CertificateIssuedAt *time.Time       `json:"certificate_issued_at"`
	LockVersion         int              `json:"-" gorm:"default:0"` // optimistic concurrency check
	IsDeleted           bool             `gorm:"default:false"`
}
