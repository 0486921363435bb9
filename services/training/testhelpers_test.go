package training

import (
	"testing"
	"time"

	"lms/models"
	trainingModels "lms/models/training"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&trainingModels.TrainingModule{},
		&trainingModels.TrainingMaterial{},
		&trainingModels.MaterialCompletion{},
		&trainingModels.Enrollment{},
		&trainingModels.ExamAttempt{},
		&trainingModels.ComplianceAuditLog{},
		&trainingModels.Certificate{},
	))

	return db
}

func createUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()

	user := models.User{
		Name:     name,
		Email:    email,
		Role:     "USER",
		Password: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createModule(t *testing.T, db *gorm.DB, title string, passingGrade int) trainingModels.TrainingModule {
	t.Helper()

	module := trainingModels.TrainingModule{
		Title:           title,
		Description:     "test module",
		DurationMinutes: 90,
		PassingGrade:    passingGrade,
		Status:          "ACTIVE",
		IsPublished:     true,
	}
	require.NoError(t, db.Create(&module).Error)
	return module
}

func finishAttempt(t *testing.T, db *gorm.DB, userID, moduleID uint, examType string, percentage float64, passed bool, finishedAt time.Time) trainingModels.ExamAttempt {
	t.Helper()

	attempt := trainingModels.ExamAttempt{
		UserID:     userID,
		ModuleID:   moduleID,
		ExamType:   examType,
		Percentage: percentage,
		IsPassed:   passed,
		StartedAt:  finishedAt.Add(-30 * time.Minute),
		FinishedAt: &finishedAt,
	}
	require.NoError(t, db.Create(&attempt).Error)
	return attempt
}

func reloadEnrollment(t *testing.T, db *gorm.DB, id uint) trainingModels.Enrollment {
	t.Helper()

	var e trainingModels.Enrollment
	require.NoError(t, db.First(&e, id).Error)
	return e
}

func setDueDate(t *testing.T, db *gorm.DB, enrollmentID uint, due time.Time) {
	t.Helper()

	require.NoError(t, db.Model(&trainingModels.Enrollment{}).
		Where("id = ?", enrollmentID).
		Update("due_date", due).Error)
}

func auditCount(t *testing.T, db *gorm.DB, enrollmentID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&trainingModels.ComplianceAuditLog{}).
		Where("user_training_id = ?", enrollmentID).Count(&count).Error)
	return count
}
