package services

import (
	"errors"
	"time"

	"umi-faculty-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleInput carries everything the defense form collects.
type ScheduleInput struct {
	ScheduledDate      time.Time
	Location           string
	ChairpersonID      int
	MinutesSecretaryID int
	PanelistIDs        []int
	ReviewerIDs        []int
	ScheduledBy        int
}

// ScheduleOutcome is the result of a scheduling call.
type ScheduleOutcome struct {
	Defense    *models.Defense
	Status     *models.StatusRecord // non-nil when the proposal just moved to defense-scheduled
	DateInPast bool                 // past dates are accepted but flagged
	Updated    bool                 // true when an existing sitting was rescheduled
}

// DefenseService schedules proposal defenses and records their verdicts. One
// defense per proposal: scheduling again before the verdict reschedules the
// same sitting.
type DefenseService struct {
	db       *gorm.DB
	workflow *WorkflowService
}

func NewDefenseService(db *gorm.DB) *DefenseService {
	return &DefenseService{db: db, workflow: NewWorkflowService(db)}
}

func (s *DefenseService) loadPerson(tx *gorm.DB, personID int, what string) (*models.Person, error) {
	var person models.Person
	err := tx.First(&person, "person_id = ? AND delete_at IS NULL", personID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("%s %d not found", what, personID)
	}
	if err != nil {
		return nil, err
	}
	return &person, nil
}

// snapshotRoster replaces the defense's participant rows with copies of the
// given people. The roster is frozen at scheduling time on purpose.
func (s *DefenseService) snapshotRoster(tx *gorm.DB, defenseID int, role string, personIDs []int, now time.Time) error {
	for _, id := range personIDs {
		person, err := s.loadPerson(tx, id, role)
		if err != nil {
			return err
		}
		participant := models.DefenseParticipant{
			DefenseID: defenseID,
			Role:      role,
			PersonID:  person.PersonID,
			Name:      person.Name,
			Email:     person.Email,
			CreateAt:  now,
		}
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}
	}
	return nil
}

// Schedule puts a proposal defense on the calendar, or reschedules the
// existing undecided one. The proposal must have passed review (first call)
// or already be defense-scheduled (reschedule); anything else is an invalid
// transition.
func (s *DefenseService) Schedule(proposalID int, in ScheduleInput) (*ScheduleOutcome, error) {
	if len(in.PanelistIDs) == 0 || len(in.ReviewerIDs) == 0 {
		return nil, validationErr("defense roster needs at least one panelist and one reviewer")
	}
	if in.Location == "" {
		return nil, validationErr("defense location is required")
	}

	outcome := &ScheduleOutcome{}
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.workflow.LockEntity(tx, models.EntityProposal, proposalID); err != nil {
			return err
		}

		var proposal models.Proposal
		if err := tx.First(&proposal, "proposal_id = ?", proposalID).Error; err != nil {
			return err
		}
		outcome.DateInPast = in.ScheduledDate.Before(now) || in.ScheduledDate.Before(proposal.SubmissionDate)

		if _, err := s.loadPerson(tx, in.ChairpersonID, "chairperson"); err != nil {
			return err
		}
		if _, err := s.loadPerson(tx, in.MinutesSecretaryID, "minutes secretary"); err != nil {
			return err
		}

		current, err := s.workflow.Statuses().CurrentTx(tx, models.EntityProposal, proposalID)
		if err != nil {
			return err
		}
		currentCode := ""
		currentName := ""
		if current != nil {
			currentCode = current.Definition.Code
			currentName = current.Definition.StatusName
		}

		var defense models.Defense
		err = tx.Where("proposal_id = ?", proposalID).First(&defense).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if currentCode != models.StatusReviewPassed {
				return invalidTransitionErr(models.StatusDefenseScheduled, currentName)
			}
			defense = models.Defense{
				ProposalID:         proposalID,
				Reference:          uuid.NewString(),
				ScheduledDate:      in.ScheduledDate,
				Location:           in.Location,
				ChairpersonID:      in.ChairpersonID,
				MinutesSecretaryID: in.MinutesSecretaryID,
				ScheduledBy:        in.ScheduledBy,
				CreateAt:           now,
				UpdateAt:           now,
			}
			if err := tx.Create(&defense).Error; err != nil {
				return err
			}
			outcome.Status, err = s.workflow.DefenseScheduled(tx, proposalID, now, in.ScheduledBy)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if defense.Decided() {
				return alreadyDecidedErr(defense.DefenseID)
			}
			if currentCode != models.StatusDefenseScheduled {
				return invalidTransitionErr(models.StatusDefenseScheduled, currentName)
			}
			defense.ScheduledDate = in.ScheduledDate
			defense.Location = in.Location
			defense.ChairpersonID = in.ChairpersonID
			defense.MinutesSecretaryID = in.MinutesSecretaryID
			defense.UpdateAt = now
			if err := tx.Save(&defense).Error; err != nil {
				return err
			}
			if err := tx.Where("defense_id = ?", defense.DefenseID).
				Delete(&models.DefenseParticipant{}).Error; err != nil {
				return err
			}
			outcome.Updated = true
		}

		if err := s.snapshotRoster(tx, defense.DefenseID, models.RolePanelist, in.PanelistIDs, now); err != nil {
			return err
		}
		if err := s.snapshotRoster(tx, defense.DefenseID, models.RoleReviewer, in.ReviewerIDs, now); err != nil {
			return err
		}

		// Keep the proposal's own defense date stamp in step with the sitting.
		err = tx.Model(&models.Proposal{}).
			Where("proposal_id = ?", proposalID).
			Updates(map[string]any{"defense_date": in.ScheduledDate, "update_at": now}).Error
		if err != nil {
			return err
		}

		return tx.Preload("Chairperson").Preload("MinutesSecretary").Preload("Participants").
			First(&defense, "defense_id = ?", defense.DefenseID).Error
	})
	if err != nil {
		return nil, err
	}

	var defense models.Defense
	err = s.db.Preload("Chairperson").Preload("MinutesSecretary").Preload("Participants").
		Where("proposal_id = ?", proposalID).First(&defense).Error
	if err != nil {
		return nil, err
	}
	outcome.Defense = &defense
	return outcome, nil
}

// RecordVerdict sets a defense's terminal verdict exactly once and moves the
// proposal to defended passed/failed.
func (s *DefenseService) RecordVerdict(defenseID int, verdict, comments string, actor int) (*models.Defense, *models.StatusRecord, error) {
	if !models.ValidVerdict(verdict) {
		return nil, nil, invalidVerdictErr(verdict)
	}

	var defense models.Defense
	var status *models.StatusRecord
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&defense, "defense_id = ?", defenseID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("defense %d not found", defenseID)
		}
		if err != nil {
			return err
		}

		if err := s.workflow.LockEntity(tx, models.EntityProposal, defense.ProposalID); err != nil {
			return err
		}
		// Re-read under the lock so two concurrent verdicts cannot both pass
		// the decided check.
		if err := tx.First(&defense, "defense_id = ?", defenseID).Error; err != nil {
			return err
		}
		if defense.Decided() {
			return alreadyDecidedErr(defense.DefenseID)
		}

		defense.Verdict = &verdict
		defense.Comments = &comments
		defense.DecidedAt = &now
		defense.UpdateAt = now
		if err := tx.Save(&defense).Error; err != nil {
			return err
		}

		passed := verdict != models.VerdictFail
		status, err = s.workflow.DefenseDecided(tx, defense.ProposalID, passed, now, actor)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &defense, status, nil
}
