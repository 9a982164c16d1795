package repository

import (
	"errors"

	"worksheet_edu_backend/internal/model"

	"gorm.io/gorm"
)

type DiagnosticRepository struct {
	DB *gorm.DB
}

func NewDiagnosticRepository(db *gorm.DB) *DiagnosticRepository {
	return &DiagnosticRepository{DB: db}
}

func (r *DiagnosticRepository) Create(result *model.DiagnosticResult) error {
	return r.DB.Create(result).Error
}

// LatestByStudentTopic returns the most recent diagnostic row for a student,
// filtered by topic when non-empty, or nil when none exists.
func (r *DiagnosticRepository) LatestByStudentTopic(studentID uint, topic string) (*model.DiagnosticResult, error) {
	var result model.DiagnosticResult
	query := r.DB.Where("student_id = ?", studentID)
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	err := query.Order("created_at desc, id desc").First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *DiagnosticRepository) ListByStudent(studentID uint, topic string) ([]model.DiagnosticResult, error) {
	var results []model.DiagnosticResult
	query := r.DB.Where("student_id = ?", studentID)
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	err := query.Order("created_at desc, id desc").Find(&results).Error
	return results, err
}

// StudentIDsWithDiagnostic returns the subset of ids that have at least one
// diagnostic row for the topic. Used by the roster selection filter.
func (r *DiagnosticRepository) StudentIDsWithDiagnostic(studentIDs []uint, topic string) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if len(studentIDs) == 0 {
		return out, nil
	}
	var ids []uint
	query := r.DB.Model(&model.DiagnosticResult{}).Where("student_id IN ?", studentIDs)
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	if err := query.Distinct().Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
