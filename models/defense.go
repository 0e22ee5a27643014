package models

import "time"

// Defense records one proposal defense sitting. A proposal carries at most
// one defense; rescheduling before the verdict updates it in place, and a
// decided defense is immutable.
type Defense struct {
	DefenseID          int        `gorm:"primaryKey;column:defense_id" json:"defense_id"`
	ProposalID         int        `gorm:"column:proposal_id;uniqueIndex" json:"proposal_id"`
	Reference          string     `gorm:"column:reference" json:"reference"`
	ScheduledDate      time.Time  `gorm:"column:scheduled_date" json:"scheduled_date"`
	Location           string     `gorm:"column:location" json:"location"`
	ChairpersonID      int        `gorm:"column:chairperson_id" json:"chairperson_id"`
	MinutesSecretaryID int        `gorm:"column:minutes_secretary_id" json:"minutes_secretary_id"`
	Verdict            *string    `gorm:"column:verdict" json:"verdict,omitempty"`
	Comments           *string    `gorm:"column:comments" json:"comments,omitempty"`
	DecidedAt          *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`
	ScheduledBy        int        `gorm:"column:scheduled_by" json:"scheduled_by"`
	CreateAt           time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt           time.Time  `gorm:"column:update_at" json:"update_at"`

	// Relations
	Chairperson      Person               `gorm:"foreignKey:ChairpersonID" json:"chairperson,omitempty"`
	MinutesSecretary Person               `gorm:"foreignKey:MinutesSecretaryID" json:"minutes_secretary,omitempty"`
	Participants     []DefenseParticipant `gorm:"foreignKey:DefenseID" json:"participants,omitempty"`
}

func (Defense) TableName() string {
	return "defenses"
}

// Decided reports whether a verdict has been recorded.
func (d *Defense) Decided() bool {
	return d.Verdict != nil
}

// DefenseParticipant is a roster entry captured at scheduling time. Name and
// email are copies, not live references, so the sitting's composition stays
// accurate if the person record changes later.
type DefenseParticipant struct {
	ParticipantID int       `gorm:"primaryKey;column:participant_id" json:"participant_id"`
	DefenseID     int       `gorm:"column:defense_id;index" json:"defense_id"`
	Role          string    `gorm:"column:role" json:"role"` // panelist|reviewer
	PersonID      int       `gorm:"column:person_id" json:"person_id"`
	Name          string    `gorm:"column:name" json:"name"`
	Email         string    `gorm:"column:email" json:"email"`
	CreateAt      time.Time `gorm:"column:create_at" json:"create_at"`
}

func (DefenseParticipant) TableName() string {
	return "defense_participants"
}
