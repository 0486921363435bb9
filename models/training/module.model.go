package training

import "gorm.io/gorm"

// TrainingModule represents one training program users enroll into
type TrainingModule struct {
	gorm.Model
	Title           string `json:"title"`
	Description     string `json:"description"`
	InstructorID    *uint  `json:"instructor_id" gorm:"index"`
	DurationMinutes int    `json:"duration_minutes" gorm:"default:0"`
	PassingGrade    int    `json:"passing_grade" gorm:"default:70"` // 0-100
	DeadlineDays    int    `json:"deadline_days" gorm:"default:0"` // 0 = no binding deadline
	PrerequisiteID  *uint  `json:"prerequisite_id" gorm:"index"`   // module that must be completed first
	Status          string `json:"status" gorm:"default:'DRAFT'"`   // DRAFT, ACTIVE, INACTIVE
	IsPublished     bool   `json:"is_published" gorm:"default:false"`
	IsDeleted       bool   `gorm:"default:false"`
}

// TrainingMaterial represents a learning material within a module
type TrainingMaterial struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	ContentType string `json:"content_type" gorm:"default:'TEXT'"` // TEXT, VIDEO, PDF
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}

// MaterialCompletion tracks a user's completion of one material
type MaterialCompletion struct {
	gorm.Model
	UserID     uint `json:"user_id" gorm:"index;not null;uniqueIndex:idx_user_material"`
	ModuleID   uint `json:"module_id" gorm:"index;not null"`
	MaterialID uint `json:"material_id" gorm:"not null;uniqueIndex:idx_user_material"`
	IsDeleted  bool `gorm:"default:false"`
}
