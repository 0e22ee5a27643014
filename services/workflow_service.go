package services

import (
	"errors"
	"fmt"
	"time"

	"umi-faculty-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkflowService applies workflow events to proposals and books. Every
// status-affecting write goes through Transition, which serializes per entity
// by locking the entity row, re-reads the current status, validates the guard
// and appends the superseding record inside one transaction.
type WorkflowService struct {
	db       *gorm.DB
	statuses *StatusService
}

func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{db: db, statuses: NewStatusService(db)}
}

// Statuses exposes the underlying ledger.
func (s *WorkflowService) Statuses() *StatusService {
	return s.statuses
}

// LockEntity takes the per-entity row lock that serializes concurrent status
// mutations, and doubles as the existence check. SQLite (tests) has no row
// locks; its single-writer transactions give the same guarantee.
func (s *WorkflowService) LockEntity(tx *gorm.DB, entityType string, entityID int) error {
	q := tx
	if tx.Dialector.Name() == "mysql" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var err error
	switch entityType {
	case models.EntityProposal:
		var row models.Proposal
		err = q.Select("proposal_id").First(&row, "proposal_id = ? AND delete_at IS NULL", entityID).Error
	case models.EntityBook:
		var row models.Book
		err = q.Select("book_id").First(&row, "book_id = ? AND delete_at IS NULL", entityID).Error
	default:
		return fmt.Errorf("unknown entity type %q", entityType)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr("%s %d not found", entityType, entityID)
	}
	return err
}

// Transition moves an entity to target if its current status code is one of
// allowedFrom. An empty string in allowedFrom permits the transition for
// entities with no status yet (initial submission). Re-applying the current
// status is a no-op returning the existing record.
func (s *WorkflowService) Transition(tx *gorm.DB, entityType string, entityID int, target string, at time.Time, actor int, allowedFrom ...string) (*models.StatusRecord, error) {
	if err := s.LockEntity(tx, entityType, entityID); err != nil {
		return nil, err
	}

	current, err := s.statuses.CurrentTx(tx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	currentCode := ""
	currentName := ""
	if current != nil {
		currentCode = current.Definition.Code
		currentName = current.Definition.StatusName
	}

	if currentCode == target {
		return current, nil
	}

	allowed := false
	for _, from := range allowedFrom {
		if from == currentCode {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, invalidTransitionErr(target, currentName)
	}

	return s.statuses.AppendStatus(tx, entityType, entityID, target, at, actor)
}

// MarkSubmitted records the initial status for a freshly created entity.
func (s *WorkflowService) MarkSubmitted(tx *gorm.DB, entityType string, entityID int, at time.Time, actor int) (*models.StatusRecord, error) {
	target := models.StatusProposalSubmitted
	if entityType == models.EntityBook {
		target = models.StatusBookSubmitted
	}
	return s.Transition(tx, entityType, entityID, target, at, actor, "")
}

// FirstAssignment reacts to the first assignment of a grading role. A
// submitted proposal moves to UNDER_REVIEW; a submitted book moves to
// EXAMINERS_ASSIGNED. In any later stage the assignment stands on its own
// and no transition fires.
func (s *WorkflowService) FirstAssignment(tx *gorm.DB, entityType string, entityID int, role string, at time.Time, actor int) (*models.StatusRecord, error) {
	current, err := s.statuses.CurrentTx(tx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	code := current.Definition.Code
	switch {
	case entityType == models.EntityProposal && code == models.StatusProposalSubmitted &&
		(role == models.RoleReviewer || role == models.RolePanelist):
		return s.Transition(tx, entityType, entityID, models.StatusUnderReview, at, actor, models.StatusProposalSubmitted)
	case entityType == models.EntityBook && code == models.StatusBookSubmitted && role == models.RoleExaminer:
		return s.Transition(tx, entityType, entityID, models.StatusExaminersAssigned, at, actor, models.StatusBookSubmitted)
	}
	return nil, nil
}

// ReviewCompleted reacts to the grading aggregator finishing the reviewer
// round on a proposal.
func (s *WorkflowService) ReviewCompleted(tx *gorm.DB, proposalID int, passed bool, at time.Time, actor int) (*models.StatusRecord, error) {
	target := models.StatusReviewFailed
	if passed {
		target = models.StatusReviewPassed
	}
	return s.Transition(tx, models.EntityProposal, proposalID, target, at, actor, models.StatusUnderReview)
}

// DefenseScheduled reacts to a defense being put on the calendar.
func (s *WorkflowService) DefenseScheduled(tx *gorm.DB, proposalID int, at time.Time, actor int) (*models.StatusRecord, error) {
	return s.Transition(tx, models.EntityProposal, proposalID, models.StatusDefenseScheduled, at, actor, models.StatusReviewPassed)
}

// DefenseDecided reacts to the defense verdict being recorded.
func (s *WorkflowService) DefenseDecided(tx *gorm.DB, proposalID int, passed bool, at time.Time, actor int) (*models.StatusRecord, error) {
	target := models.StatusDefendedFailed
	if passed {
		target = models.StatusDefendedPassed
	}
	return s.Transition(tx, models.EntityProposal, proposalID, target, at, actor, models.StatusDefenseScheduled)
}

// ExaminationCompleted reacts to the grading aggregator finishing the
// examiner round on a book.
func (s *WorkflowService) ExaminationCompleted(tx *gorm.DB, bookID int, passed bool, at time.Time, actor int) (*models.StatusRecord, error) {
	target := models.StatusExaminationFailed
	if passed {
		target = models.StatusExaminationPassed
	}
	return s.Transition(tx, models.EntityBook, bookID, target, at, actor, models.StatusExaminersAssigned)
}
