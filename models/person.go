package models

import "time"

// Academic contact roles. A person holds zero or more roles; converting a
// staff member to a reviewer grants a role, it never duplicates identity.
const (
	RoleReviewer         = "reviewer"
	RolePanelist         = "panelist"
	RoleExaminer         = "examiner"
	RoleChairperson      = "chairperson"
	RoleMinutesSecretary = "minutes_secretary"
	RoleStaff            = "staff"
)

// Person is an internal or external academic contact (reviewer, panelist,
// examiner, chairperson, minutes secretary, staff member). Identity is keyed
// by email.
type Person struct {
	PersonID    int        `gorm:"primaryKey;column:person_id" json:"person_id"`
	Name        string     `gorm:"column:name" json:"name"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Institution string     `gorm:"column:institution" json:"institution"`
	IsInternal  bool       `gorm:"column:is_internal" json:"is_internal"`
	CreateAt    time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt    time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Roles []PersonRole `gorm:"foreignKey:PersonID" json:"roles,omitempty"`
}

func (Person) TableName() string {
	return "persons"
}

// PersonRole is a capability grant attaching one role to a person.
type PersonRole struct {
	PersonRoleID int       `gorm:"primaryKey;column:person_role_id" json:"person_role_id"`
	PersonID     int       `gorm:"column:person_id;index:idx_person_role,unique" json:"person_id"`
	Role         string    `gorm:"column:role;index:idx_person_role,unique" json:"role"`
	GrantedBy    int       `gorm:"column:granted_by" json:"granted_by"`
	CreateAt     time.Time `gorm:"column:create_at" json:"create_at"`
}

func (PersonRole) TableName() string {
	return "person_roles"
}

// HasRole reports whether the loaded role set contains role.
func (p *Person) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}
