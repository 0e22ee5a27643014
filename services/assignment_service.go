package services

import (
	"errors"
	"strings"
	"time"

	"umi-faculty-api/models"
	"umi-faculty-api/utils"

	"gorm.io/gorm"
)

// PersonInput identifies the person being assigned, either by id or by
// name+email for contacts not yet on file.
type PersonInput struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Institution string `json:"institution"`
}

// AssignResult is one assignment outcome within a batch.
type AssignResult struct {
	Assignment *models.Assignment
	Created    bool
}

// AssignmentService is the assignment registry: it links graders to proposals
// and books, coalescing duplicates by person email.
type AssignmentService struct {
	db       *gorm.DB
	workflow *WorkflowService
	passMark float64
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db, workflow: NewWorkflowService(db), passMark: resolvePassMark()}
}

func (s *AssignmentService) resolvePerson(tx *gorm.DB, in PersonInput, role string, actor int) (*models.Person, error) {
	now := time.Now()

	if in.ID > 0 {
		var person models.Person
		err := tx.Preload("Roles").First(&person, "person_id = ? AND delete_at IS NULL", in.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("person %d not found", in.ID)
		}
		if err != nil {
			return nil, err
		}
		if err := s.grantRole(tx, &person, role, actor); err != nil {
			return nil, err
		}
		return &person, nil
	}

	email := strings.ToLower(utils.SanitizeInput(in.Email))
	if !utils.ValidateEmail(email) {
		return nil, validationErr("a valid email is required to assign %q", in.Name)
	}

	var person models.Person
	err := tx.Preload("Roles").First(&person, "email = ? AND delete_at IS NULL", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		person = models.Person{
			Name:        utils.SanitizeInput(in.Name),
			Email:       email,
			Institution: utils.SanitizeInput(in.Institution),
			CreateAt:    now,
			UpdateAt:    now,
		}
		if err := tx.Create(&person).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if err := s.grantRole(tx, &person, role, actor); err != nil {
		return nil, err
	}
	return &person, nil
}

// grantRole attaches role to the person if not already held. This is the
// staff-to-reviewer conversion path as well: same identity, extra capability.
func (s *AssignmentService) grantRole(tx *gorm.DB, person *models.Person, role string, actor int) error {
	if person.HasRole(role) {
		return nil
	}
	grant := models.PersonRole{
		PersonID:  person.PersonID,
		Role:      role,
		GrantedBy: actor,
		CreateAt:  time.Now(),
	}
	if err := tx.Where("person_id = ? AND role = ?", person.PersonID, role).
		FirstOrCreate(&grant).Error; err != nil {
		return err
	}
	person.Roles = append(person.Roles, grant)
	return nil
}

// Assign links a person to an entity in the given role. Idempotent by
// (entity, role, person): assigning the same person twice returns the
// existing assignment. The first assignment of a grading role on a freshly
// submitted entity advances the workflow; the returned status record is
// non-nil only when that happened.
func (s *AssignmentService) Assign(entityType string, entityID int, role string, in PersonInput, at time.Time, actor int) (*AssignResult, *models.StatusRecord, error) {
	var result AssignResult
	var status *models.StatusRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.workflow.LockEntity(tx, entityType, entityID); err != nil {
			return err
		}

		person, err := s.resolvePerson(tx, in, role, actor)
		if err != nil {
			return err
		}

		var existing models.Assignment
		err = tx.Preload("Person").
			Where("entity_type = ? AND entity_id = ? AND role = ? AND person_id = ?",
				entityType, entityID, role, person.PersonID).
			First(&existing).Error
		if err == nil {
			result.Assignment = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var existingOfRole int64
		err = tx.Model(&models.Assignment{}).
			Where("entity_type = ? AND entity_id = ? AND role = ?", entityType, entityID, role).
			Count(&existingOfRole).Error
		if err != nil {
			return err
		}

		assignment := models.Assignment{
			EntityType: entityType,
			EntityID:   entityID,
			Role:       role,
			PersonID:   person.PersonID,
			AssignedBy: actor,
			AssignedAt: at,
			CreateAt:   time.Now(),
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		assignment.Person = *person
		result.Assignment = &assignment
		result.Created = true

		if existingOfRole == 0 {
			status, err = s.workflow.FirstAssignment(tx, entityType, entityID, role, at, actor)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &result, status, nil
}

// AssignBatch assigns several people in one call, the shape the add-reviewers
// and add-panelists endpoints use. Coalesced duplicates are reported, not
// errors.
func (s *AssignmentService) AssignBatch(entityType string, entityID int, role string, people []PersonInput, at time.Time, actor int) ([]AssignResult, *models.StatusRecord, error) {
	if len(people) == 0 {
		return nil, nil, validationErr("at least one %s is required", role)
	}

	results := make([]AssignResult, 0, len(people))
	var status *models.StatusRecord
	for _, in := range people {
		res, rec, err := s.Assign(entityType, entityID, role, in, at, actor)
		if err != nil {
			return nil, nil, err
		}
		if rec != nil {
			status = rec
		}
		results = append(results, *res)
	}
	return results, status, nil
}

// Unassign hard-deletes an assignment and cascades to its mark. Grading must
// be re-entered against a later re-assignment. Removing an unmarked grader
// can leave every remaining grader of the role marked, so the round is
// re-settled; the returned status record is non-nil when that completed it.
func (s *AssignmentService) Unassign(entityType string, entityID int, personID int, role string, actor int) (*models.StatusRecord, error) {
	var status *models.StatusRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.workflow.LockEntity(tx, entityType, entityID); err != nil {
			return err
		}

		var assignment models.Assignment
		err := tx.Where("entity_type = ? AND entity_id = ? AND role = ? AND person_id = ?",
			entityType, entityID, role, personID).
			First(&assignment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("no %s assignment for person %d on %s %d", role, personID, entityType, entityID)
		}
		if err != nil {
			return err
		}

		if err := tx.Where("assignment_id = ?", assignment.AssignmentID).
			Delete(&models.Mark{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&assignment).Error; err != nil {
			return err
		}

		status, err = settleRole(tx, s.workflow, s.passMark, entityType, entityID, role, time.Now(), actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// List returns an entity's assignments for one role in creation order.
func (s *AssignmentService) List(entityType string, entityID int, role string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.db.Preload("Person").Preload("Mark").
		Where("entity_type = ? AND entity_id = ? AND role = ?", entityType, entityID, role).
		Order("assignment_id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}
