package models

import "time"

// Assignment links a person, in one grading role, to a proposal or book.
// At most one row exists per (entity, role, person); re-assigning the same
// person is coalesced by the assignment service.
type Assignment struct {
	AssignmentID int       `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	EntityType   string    `gorm:"column:entity_type;index:idx_assignment_entity" json:"entity_type"`
	EntityID     int       `gorm:"column:entity_id;index:idx_assignment_entity" json:"entity_id"`
	Role         string    `gorm:"column:role" json:"role"` // reviewer|panelist|examiner
	PersonID     int       `gorm:"column:person_id" json:"person_id"`
	AssignedBy   int       `gorm:"column:assigned_by" json:"assigned_by"`
	AssignedAt   time.Time `gorm:"column:assigned_at" json:"assigned_at"`
	CreateAt     time.Time `gorm:"column:create_at" json:"create_at"`

	// Relations
	Person Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	Mark   *Mark  `gorm:"foreignKey:AssignmentID" json:"mark,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}
