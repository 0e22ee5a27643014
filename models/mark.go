package models

import "time"

// Reviewer and defense verdict values.
const (
	VerdictPass      = "PASS"
	VerdictPassMinor = "PASS_WITH_MINOR_CORRECTIONS"
	VerdictPassMajor = "PASS_WITH_MAJOR_CORRECTIONS"
	VerdictFail      = "FAIL"
)

// ValidVerdict reports whether v is one of the enumerated verdict values.
func ValidVerdict(v string) bool {
	switch v {
	case VerdictPass, VerdictPassMinor, VerdictPassMajor, VerdictFail:
		return true
	}
	return false
}

// Mark is one grader's contribution for an assignment: either an enumerated
// verdict (reviewers, defense) or a numeric grade (panelists, examiners).
// At most one mark exists per assignment; resubmission updates in place.
type Mark struct {
	MarkID        int       `gorm:"primaryKey;column:mark_id" json:"mark_id"`
	EntityType    string    `gorm:"column:entity_type;index:idx_mark_entity" json:"entity_type"`
	EntityID      int       `gorm:"column:entity_id;index:idx_mark_entity" json:"entity_id"`
	AssignmentID  int       `gorm:"column:assignment_id;uniqueIndex" json:"assignment_id"`
	Verdict       *string   `gorm:"column:verdict" json:"verdict,omitempty"`
	Grade         *float64  `gorm:"column:grade" json:"grade,omitempty"`
	Feedback      string    `gorm:"column:feedback" json:"feedback"`
	GradedByID    int       `gorm:"column:graded_by_id" json:"graded_by_id"`       // the assignment's person
	SubmittedByID int       `gorm:"column:submitted_by_id" json:"submitted_by_id"` // the acting faculty user
	CreateAt      time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      time.Time `gorm:"column:update_at" json:"update_at"`
}

func (Mark) TableName() string {
	return "marks"
}
