package models

import "time"

type Student struct {
	StudentID      int        `gorm:"primaryKey;column:student_id" json:"student_id"`
	FirstName      string     `gorm:"column:first_name" json:"first_name"`
	LastName       string     `gorm:"column:last_name" json:"last_name"`
	Email          string     `gorm:"column:email;unique" json:"email"`
	RegistrationNo string     `gorm:"column:registration_no" json:"registration_no"`
	Program        string     `gorm:"column:program" json:"program"` // masters|phd
	AcademicYear   string     `gorm:"column:academic_year" json:"academic_year"`
	CreateAt       time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt       time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Proposals []Proposal `gorm:"foreignKey:StudentID" json:"proposals,omitempty"`
	Books     []Book     `gorm:"foreignKey:StudentID" json:"books,omitempty"`
}

func (Student) TableName() string {
	return "students"
}
