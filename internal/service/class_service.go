package service

import (
	"errors"

	"worksheet_edu_backend/internal/model"
	"worksheet_edu_backend/internal/repository"
	"worksheet_edu_backend/internal/util"

	"gorm.io/gorm"
)

// RosterFilter narrows a roster to students with or without a diagnostic
// record for the requested topic.
type RosterFilter string

const (
	RosterAll        RosterFilter = "all"
	RosterAssessed   RosterFilter = "assessed"
	RosterUnassessed RosterFilter = "unassessed"
)

// RosterEntry is one student of a class annotated with their latest
// diagnostic placement for a topic, shaped for direct use as a generation
// request's student selection.
type RosterEntry struct {
	Student  model.StudentSelection `json:"student"`
	Assessed bool                   `json:"assessed"`
}

// ClassService manages classes and rosters for a teacher.
type ClassService struct {
	classes     *repository.ClassRepository
	diagnostics *DiagnosticService
}

func NewClassService(classes *repository.ClassRepository, diagnostics *DiagnosticService) *ClassService {
	return &ClassService{classes: classes, diagnostics: diagnostics}
}

type CreateClassInput struct {
	Name     string         `json:"name" binding:"required"`
	Grade    string         `json:"grade"`
	Students []StudentInput `json:"students"`
}

type StudentInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

func (s *ClassService) CreateClass(teacherID uint, in CreateClassInput) (*model.Class, error) {
	class := &model.Class{
		Name:      in.Name,
		Grade:     in.Grade,
		TeacherID: teacherID,
	}
	if err := s.classes.Create(class); err != nil {
		return nil, err
	}

	students := make([]model.Student, 0, len(in.Students))
	for i, st := range in.Students {
		students = append(students, model.Student{
			FirstName: st.FirstName,
			LastName:  st.LastName,
			ClassID:   class.ID,
			Position:  i,
		})
	}
	if err := s.classes.CreateStudents(students); err != nil {
		return nil, err
	}
	class.Students = students
	return class, nil
}

func (s *ClassService) ListClasses(teacherID uint) ([]model.Class, error) {
	return s.classes.ListByTeacher(teacherID)
}

func (s *ClassService) DeleteClass(teacherID, classID uint) error {
	if _, err := s.ownedClass(teacherID, classID); err != nil {
		return err
	}
	return s.classes.Delete(classID)
}

func (s *ClassService) AddStudent(teacherID, classID uint, in StudentInput) (*model.Student, error) {
	if _, err := s.ownedClass(teacherID, classID); err != nil {
		return nil, err
	}
	existing, err := s.classes.ListStudents(classID)
	if err != nil {
		return nil, err
	}
	student := &model.Student{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ClassID:   classID,
		Position:  len(existing),
	}
	if err := s.classes.CreateStudent(student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *ClassService) ownedClass(teacherID, classID uint) (*model.Class, error) {
	class, err := s.classes.FindByID(classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrClassNotFound
		}
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}
	return class, nil
}

// ListStudents returns the raw roster in roster order.
func (s *ClassService) ListStudents(teacherID, classID uint) ([]model.Student, error) {
	if _, err := s.ownedClass(teacherID, classID); err != nil {
		return nil, err
	}
	return s.classes.ListStudents(classID)
}

// Roster returns the class roster in roster order, each entry annotated with
// the student's latest recommended level for the topic. Students without a
// diagnostic record carry the neutral default level and are marked
// unassessed.
func (s *ClassService) Roster(teacherID, classID uint, topic string, filter RosterFilter) ([]RosterEntry, error) {
	if _, err := s.ownedClass(teacherID, classID); err != nil {
		return nil, err
	}

	students, err := s.classes.ListStudents(classID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	assessedSet, err := s.diagnostics.AssessedStudents(ids, topic)
	if err != nil {
		return nil, err
	}

	entries := make([]RosterEntry, 0, len(students))
	for _, st := range students {
		assessed := assessedSet[st.ID]

		switch filter {
		case RosterAssessed:
			if !assessed {
				continue
			}
		case RosterUnassessed:
			if assessed {
				continue
			}
		}

		level := model.DefaultLevel
		if assessed {
			level, _, err = s.diagnostics.LatestLevel(st.ID, topic)
			if err != nil {
				return nil, err
			}
		}

		entries = append(entries, RosterEntry{
			Student: model.StudentSelection{
				ID:        st.ID,
				FirstName: st.FirstName,
				LastName:  st.LastName,
				Level:     level,
			},
			Assessed: assessed,
		})
	}
	return entries, nil
}
