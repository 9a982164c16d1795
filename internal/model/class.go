package model

// swagger:model
type Class struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Grade     string    `gorm:"size:20" json:"grade"`
	TeacherID uint      `gorm:"index;not null" json:"teacherId"`
	Students  []Student `gorm:"foreignKey:ClassID" json:"students,omitempty"`
}

// Student is owned by a class. Worksheet generation and diagnostics read
// students but never mutate them.
// swagger:model
type Student struct {
	BaseModel
	FirstName string `gorm:"size:100;not null" json:"firstName"`
	LastName  string `gorm:"size:100;not null" json:"lastName"`
	ClassID   uint   `gorm:"index;not null" json:"classId"`
	// Position is the roster order within the class; form assignment walks
	// students in this order.
	Position int `gorm:"default:0" json:"position"`
}

func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
