package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name                string    `gorm:"default:''"`
	Email               string    `gorm:"unique;not null"`
	Mobile              string    `gorm:"default:''"`
	Role                string    `gorm:"default:'USER'"` // USER, INSTRUCTOR, ADMIN
	Password            string    `gorm:"not null"`
	Department          string    `gorm:"default:''"`
	EmployeeCode        string    `gorm:"default:''"`
	IsEmailVerified     bool      `gorm:"default:false"`
	LastLogin           time.Time `gorm:"default:NULL"`
	FailedLoginAttempts int       `gorm:"default:0"`
	LastFailedLogin     *time.Time
	IsBlocked           bool `gorm:"default:false"`
	BlockedUntil        *time.Time
	IsDeleted           bool `gorm:"default:false"`
}
