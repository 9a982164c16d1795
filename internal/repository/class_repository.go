package repository

import (
	"worksheet_edu_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.DB.Create(class).Error
}

func (r *ClassRepository) FindByID(id uint) (*model.Class, error) {
	var class model.Class
	err := r.DB.First(&class, id).Error
	return &class, err
}

func (r *ClassRepository) ListByTeacher(teacherID uint) ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.Where("teacher_id = ?", teacherID).Order("name asc").Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Class{}, id).Error
}

func (r *ClassRepository) CreateStudent(student *model.Student) error {
	return r.DB.Create(student).Error
}

func (r *ClassRepository) CreateStudents(students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	return r.DB.Create(&students).Error
}

// ListStudents returns the class roster in roster (position, then id) order.
// Form assignment depends on this ordering being stable.
func (r *ClassRepository) ListStudents(classID uint) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Where("class_id = ?", classID).Order("position asc, id asc").Find(&students).Error
	return students, err
}
