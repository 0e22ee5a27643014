package models

import "time"

// Book is the dissertation document tracked through examiner marking.
type Book struct {
	BookID             int        `gorm:"primaryKey;column:book_id" json:"book_id"`
	StudentID          int        `gorm:"column:student_id" json:"student_id"`
	Title              string     `gorm:"column:title" json:"title"`
	SubmissionDate     time.Time  `gorm:"column:submission_date" json:"submission_date"`
	ExaminationScore   *float64   `gorm:"column:examination_score" json:"examination_score,omitempty"`
	ExaminationOutcome *string    `gorm:"column:examination_outcome" json:"examination_outcome,omitempty"`
	SubmittedBy        int        `gorm:"column:submitted_by" json:"submitted_by"`
	CreateAt           time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt           time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt           *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Student  Student        `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Statuses []StatusRecord `gorm:"polymorphic:Entity;polymorphicValue:book" json:"statuses,omitempty"`
}

func (Book) TableName() string {
	return "books"
}
