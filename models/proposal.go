package models

import "time"

// Proposal is the research proposal a student submits and defends. Status
// history lives in status_records (entity_type = "proposal").
type Proposal struct {
	ProposalID           int        `gorm:"primaryKey;column:proposal_id" json:"proposal_id"`
	StudentID            int        `gorm:"column:student_id" json:"student_id"`
	Title                string     `gorm:"column:title" json:"title"`
	Description          string     `gorm:"column:description" json:"description"`
	ResearchArea         string     `gorm:"column:research_area" json:"research_area"`
	SubmissionDate       time.Time  `gorm:"column:submission_date" json:"submission_date"`
	DefenseDate          *time.Time `gorm:"column:defense_date" json:"defense_date,omitempty"`
	ComplianceReportDate *time.Time `gorm:"column:compliance_report_date" json:"compliance_report_date,omitempty"`
	FieldLetterDate      *time.Time `gorm:"column:field_letter_date" json:"field_letter_date,omitempty"`
	ReviewOutcome        *string    `gorm:"column:review_outcome" json:"review_outcome,omitempty"`
	SubmittedBy          int        `gorm:"column:submitted_by" json:"submitted_by"`
	CreateAt             time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt             time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt             *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Student  Student        `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Statuses []StatusRecord `gorm:"polymorphic:Entity;polymorphicValue:proposal" json:"statuses,omitempty"`
	Defense  *Defense       `gorm:"foreignKey:ProposalID" json:"defense,omitempty"`
}

func (Proposal) TableName() string {
	return "proposals"
}
