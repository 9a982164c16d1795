package repository

import (
	"worksheet_edu_backend/internal/model"

	"gorm.io/gorm"
)

type WorksheetDocumentRepository struct {
	DB *gorm.DB
}

func NewWorksheetDocumentRepository(db *gorm.DB) *WorksheetDocumentRepository {
	return &WorksheetDocumentRepository{DB: db}
}

func (r *WorksheetDocumentRepository) Create(doc *model.WorksheetDocument) error {
	return r.DB.Create(doc).Error
}

func (r *WorksheetDocumentRepository) ListByTeacher(teacherID uint, page, limit int) ([]model.WorksheetDocument, int64, error) {
	var docs []model.WorksheetDocument
	var total int64
	query := r.DB.Model(&model.WorksheetDocument{}).Where("teacher_id = ?", teacherID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&docs).Error
	return docs, total, err
}
