package training

import (
	"errors"
	"math"

	trainingModels "lms/models/training"

	"gorm.io/gorm"
)

// ComputeFinalScore derives the single authoritative score for a user+module
// pair. The most recent passed post-test wins; a passed pre-test is the
// fallback; failing that, the mean of whatever finished attempts exist.
// Returns 0 when no attempts exist at all.
func ComputeFinalScore(db *gorm.DB, userID, moduleID uint) (int, error) {
	var module trainingModels.TrainingModule
	if err := db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Resource: "module", ID: moduleID}
		}
		return 0, err
	}

	for _, examType := range []string{trainingModels.ExamTypePostTest, trainingModels.ExamTypePreTest} {
		var attempt trainingModels.ExamAttempt
		err := db.Where("user_id = ? AND module_id = ? AND exam_type = ? AND is_passed = ? AND finished_at IS NOT NULL AND is_deleted = ?",
			userID, moduleID, examType, true, false).
			Order("finished_at desc").First(&attempt).Error
		if err == nil {
			return int(math.Round(attempt.Percentage)), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	// No passed attempt at all: fall back to the mean of every finished
	// attempt regardless of pass state, so partially-evaluated enrollments
	// still get some score.
	var attempts []trainingModels.ExamAttempt
	if err := db.Where("user_id = ? AND module_id = ? AND finished_at IS NOT NULL AND is_deleted = ?",
		userID, moduleID, false).Find(&attempts).Error; err != nil {
		return 0, err
	}
	if len(attempts) == 0 {
		return 0, nil
	}

	sum := 0.0
	for _, a := range attempts {
		sum += a.Percentage
	}
	return int(math.Round(sum / float64(len(attempts)))), nil
}

// CountCompletedMaterials counts the user's completed materials among the
// module's published set. A module with zero materials reports a total of 1
// so percentage displays never divide by zero.
func CountCompletedMaterials(db *gorm.DB, userID, moduleID uint) (int, int, error) {
	var module trainingModels.TrainingModule
	if err := db.Where("id = ? AND is_deleted = ?", moduleID, false).First(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, &NotFoundError{Resource: "module", ID: moduleID}
		}
		return 0, 0, err
	}

	var total int64
	if err := db.Model(&trainingModels.TrainingMaterial{}).
		Where("module_id = ? AND is_published = ? AND is_deleted = ?", moduleID, true, false).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var completed int64
	if err := db.Model(&trainingModels.MaterialCompletion{}).
		Joins("JOIN training_materials ON training_materials.id = material_completions.material_id").
		Where("material_completions.user_id = ? AND material_completions.module_id = ? AND material_completions.is_deleted = ?", userID, moduleID, false).
		Where("training_materials.is_published = ? AND training_materials.is_deleted = ?", true, false).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}

	if total == 0 {
		total = 1
	}
	return int(completed), int(total), nil
}
