package training

import (
	"time"

	"gorm.io/gorm"
)

const (
	ExamTypePreTest  = "pre_test"
	ExamTypePostTest = "post_test"
)

// ExamAttempt represents one quiz attempt (pre-test or post-test) for a user+module.
// The row is immutable once FinishedAt is set.
type ExamAttempt struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"index;not null"`
	ModuleID        uint       `json:"module_id" gorm:"index;not null"`
	ExamType        string     `json:"exam_type" gorm:"default:'post_test'"` // pre_test, post_test
	Score           int        `json:"score" gorm:"default:0"`
	MaxScore        int        `json:"max_score" gorm:"default:0"`
	Percentage      float64    `json:"percentage" gorm:"default:0"`
	IsPassed        bool       `json:"is_passed" gorm:"default:false"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at"`
	DurationMinutes int        `json:"duration_minutes" gorm:"default:0"`
	IsDeleted       bool       `gorm:"default:false"`
}
