package models

import "time"

// Trackable entity kinds used by status_records, assignments and marks.
const (
	EntityProposal = "proposal"
	EntityBook     = "book"
)

// Proposal workflow status codes.
const (
	StatusProposalSubmitted = "SUBMITTED"
	StatusUnderReview       = "UNDER_REVIEW"
	StatusReviewPassed      = "REVIEW_PASSED"
	StatusReviewFailed      = "REVIEW_FAILED"
	StatusDefenseScheduled  = "DEFENSE_SCHEDULED"
	StatusDefendedPassed    = "DEFENDED_PASSED"
	StatusDefendedFailed    = "DEFENDED_FAILED"
)

// Book workflow status codes.
const (
	StatusBookSubmitted     = "SUBMITTED"
	StatusExaminersAssigned = "EXAMINERS_ASSIGNED"
	StatusExaminationPassed = "EXAMINATION_PASSED"
	StatusExaminationFailed = "EXAMINATION_FAILED"
)

// StatusDefinition is reference data describing one workflow stage. Codes are
// machine names used by the workflow engine; StatusName is what the faculty
// portal displays.
type StatusDefinition struct {
	DefinitionID         int        `gorm:"primaryKey;column:definition_id" json:"definition_id"`
	EntityType           string     `gorm:"column:entity_type;index:idx_definition_code,unique" json:"entity_type"`
	Code                 string     `gorm:"column:code;index:idx_definition_code,unique" json:"code"`
	StatusName           string     `gorm:"column:status_name" json:"status_name"`
	Color                string     `gorm:"column:color" json:"color"`
	ExpectedDurationDays *int       `gorm:"column:expected_duration_days" json:"expected_duration_days,omitempty"`
	CreateAt             time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt             time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt             *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (StatusDefinition) TableName() string {
	return "status_definitions"
}

// StatusRecord is one row of the append-only status ledger. Records are never
// deleted; a superseded record keeps its EndDate and loses is_current.
type StatusRecord struct {
	StatusID     int        `gorm:"primaryKey;column:status_id" json:"status_id"`
	EntityType   string     `gorm:"column:entity_type;index:idx_status_entity" json:"entity_type"`
	EntityID     int        `gorm:"column:entity_id;index:idx_status_entity" json:"entity_id"`
	DefinitionID int        `gorm:"column:definition_id" json:"definition_id"`
	StartDate    time.Time  `gorm:"column:start_date" json:"start_date"`
	EndDate      *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	IsCurrent    bool       `gorm:"column:is_current" json:"is_current"`
	ChangedBy    int        `gorm:"column:changed_by" json:"changed_by"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`

	// Relations
	Definition StatusDefinition `gorm:"foreignKey:DefinitionID" json:"definition,omitempty"`
}

func (StatusRecord) TableName() string {
	return "status_records"
}
