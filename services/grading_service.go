package services

import (
	"errors"
	"os"
	"strconv"
	"time"

	"umi-faculty-api/models"

	"gorm.io/gorm"
)

// DefaultPassMark is the numeric pass threshold used when PASS_MARK is not
// configured. The mean is compared inclusively: exactly 60 passes.
const DefaultPassMark = 60.0

// GradingService is the grading aggregator: one mark per assignment, updated
// in place on resubmission, with the aggregate outcome derived once every
// grader of the role has submitted.
type GradingService struct {
	db       *gorm.DB
	workflow *WorkflowService
	passMark float64
}

func NewGradingService(db *gorm.DB) *GradingService {
	return &GradingService{db: db, workflow: NewWorkflowService(db), passMark: resolvePassMark()}
}

func resolvePassMark() float64 {
	passMark := DefaultPassMark
	if raw := os.Getenv("PASS_MARK"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			passMark = v
		}
	}
	return passMark
}

// PassMark returns the configured numeric pass threshold.
func (s *GradingService) PassMark() float64 {
	return s.passMark
}

// AggregateVerdicts combines reviewer verdicts: any FAIL fails the round;
// otherwise the strictest correction level (major > minor > none) is the
// aggregate outcome.
func AggregateVerdicts(verdicts []string) (outcome string, passed bool) {
	outcome = models.VerdictPass
	passed = true
	for _, v := range verdicts {
		switch v {
		case models.VerdictFail:
			return models.VerdictFail, false
		case models.VerdictPassMajor:
			outcome = models.VerdictPassMajor
		case models.VerdictPassMinor:
			if outcome != models.VerdictPassMajor {
				outcome = models.VerdictPassMinor
			}
		}
	}
	return outcome, passed
}

// MeanGrade is the arithmetic mean of numeric marks.
func MeanGrade(grades []float64) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g
	}
	return sum / float64(len(grades))
}

func (s *GradingService) findAssignment(tx *gorm.DB, entityType string, entityID int, role string, personID int) (*models.Assignment, error) {
	var assignment models.Assignment
	err := tx.Preload("Person").
		Where("entity_type = ? AND entity_id = ? AND role = ? AND person_id = ?",
			entityType, entityID, role, personID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundErr("no %s assignment for person %d on %s %d", role, personID, entityType, entityID)
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// upsertMark records or updates the single mark for an assignment. CreateAt
// is preserved on update; UpdateAt always moves.
func upsertMark(tx *gorm.DB, assignment *models.Assignment, verdict *string, grade *float64, feedback string, submittedBy int, now time.Time) (*models.Mark, error) {
	var mark models.Mark
	err := tx.Where("assignment_id = ?", assignment.AssignmentID).First(&mark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		mark = models.Mark{
			EntityType:    assignment.EntityType,
			EntityID:      assignment.EntityID,
			AssignmentID:  assignment.AssignmentID,
			Verdict:       verdict,
			Grade:         grade,
			Feedback:      feedback,
			GradedByID:    assignment.PersonID,
			SubmittedByID: submittedBy,
			CreateAt:      now,
			UpdateAt:      now,
		}
		if err := tx.Create(&mark).Error; err != nil {
			return nil, err
		}
		return &mark, nil
	}
	if err != nil {
		return nil, err
	}

	mark.Verdict = verdict
	mark.Grade = grade
	mark.Feedback = feedback
	mark.SubmittedByID = submittedBy
	mark.UpdateAt = now
	if err := tx.Save(&mark).Error; err != nil {
		return nil, err
	}
	return &mark, nil
}

// roleComplete reports whether every assignment of the role has a mark, along
// with the recorded marks.
func roleComplete(tx *gorm.DB, entityType string, entityID int, role string) (bool, []models.Mark, error) {
	var assignments []models.Assignment
	err := tx.Preload("Mark").
		Where("entity_type = ? AND entity_id = ? AND role = ?", entityType, entityID, role).
		Find(&assignments).Error
	if err != nil {
		return false, nil, err
	}
	if len(assignments) == 0 {
		return false, nil, nil
	}

	marks := make([]models.Mark, 0, len(assignments))
	for _, a := range assignments {
		if a.Mark == nil {
			return false, nil, nil
		}
		marks = append(marks, *a.Mark)
	}
	return true, marks, nil
}

// settleRole re-evaluates a grading round after its membership or marks
// change. When the entity is still in the round's active status and every
// remaining assignment of the role carries a mark, the aggregate outcome is
// stamped and the completing transition fires. Panelist rounds never settle;
// their marks only inform the defense.
func settleRole(tx *gorm.DB, workflow *WorkflowService, passMark float64, entityType string, entityID int, role string, at time.Time, actor int) (*models.StatusRecord, error) {
	current, err := workflow.Statuses().CurrentTx(tx, entityType, entityID)
	if err != nil || current == nil {
		return nil, err
	}

	switch {
	case entityType == models.EntityProposal && role == models.RoleReviewer &&
		current.Definition.Code == models.StatusUnderReview:
	case entityType == models.EntityBook && role == models.RoleExaminer &&
		current.Definition.Code == models.StatusExaminersAssigned:
	default:
		return nil, nil
	}

	complete, marks, err := roleComplete(tx, entityType, entityID, role)
	if err != nil || !complete {
		return nil, err
	}

	if role == models.RoleReviewer {
		verdicts := make([]string, 0, len(marks))
		for _, m := range marks {
			if m.Verdict != nil {
				verdicts = append(verdicts, *m.Verdict)
			}
		}
		outcome, passed := AggregateVerdicts(verdicts)

		err = tx.Model(&models.Proposal{}).
			Where("proposal_id = ?", entityID).
			Updates(map[string]any{"review_outcome": outcome, "update_at": at}).Error
		if err != nil {
			return nil, err
		}
		return workflow.ReviewCompleted(tx, entityID, passed, at, actor)
	}

	grades := make([]float64, 0, len(marks))
	for _, m := range marks {
		if m.Grade != nil {
			grades = append(grades, *m.Grade)
		}
	}
	mean := MeanGrade(grades)
	passed := mean >= passMark

	outcome := models.StatusExaminationFailed
	if passed {
		outcome = models.StatusExaminationPassed
	}
	err = tx.Model(&models.Book{}).
		Where("book_id = ?", entityID).
		Updates(map[string]any{
			"examination_score":   mean,
			"examination_outcome": outcome,
			"update_at":           at,
		}).Error
	if err != nil {
		return nil, err
	}
	return workflow.ExaminationCompleted(tx, entityID, passed, at, actor)
}

// RecordReviewerVerdict upserts one reviewer's verdict for a proposal. When
// the last outstanding reviewer submits, the review round completes and the
// proposal moves to passed/failed-graded; the returned status record is
// non-nil only then.
func (s *GradingService) RecordReviewerVerdict(proposalID, reviewerID int, verdict, feedback string, submittedBy int) (*models.Mark, *models.StatusRecord, error) {
	if !models.ValidVerdict(verdict) {
		return nil, nil, invalidVerdictErr(verdict)
	}

	var mark *models.Mark
	var status *models.StatusRecord
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.workflow.LockEntity(tx, models.EntityProposal, proposalID); err != nil {
			return err
		}

		assignment, err := s.findAssignment(tx, models.EntityProposal, proposalID, models.RoleReviewer, reviewerID)
		if err != nil {
			return err
		}

		mark, err = upsertMark(tx, assignment, &verdict, nil, feedback, submittedBy, now)
		if err != nil {
			return err
		}

		status, err = settleRole(tx, s.workflow, s.passMark,
			models.EntityProposal, proposalID, models.RoleReviewer, now, submittedBy)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return mark, status, nil
}

// PanelAggregate describes the running panelist round for a proposal.
type PanelAggregate struct {
	Complete bool     `json:"complete"`
	Mean     *float64 `json:"mean,omitempty"`
	Passed   *bool    `json:"passed,omitempty"`
}

// RecordPanelistMark upserts one panelist's numeric mark for a proposal.
// Panelist marks inform the defense; they never move the proposal status, so
// only the running aggregate is returned.
func (s *GradingService) RecordPanelistMark(proposalID, panelistID int, grade float64, feedback string, submittedBy int) (*models.Mark, *PanelAggregate, error) {
	if grade < 0 || grade > 100 {
		return nil, nil, invalidGradeErr(grade)
	}

	var mark *models.Mark
	aggregate := &PanelAggregate{}
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.workflow.LockEntity(tx, models.EntityProposal, proposalID); err != nil {
			return err
		}

		assignment, err := s.findAssignment(tx, models.EntityProposal, proposalID, models.RolePanelist, panelistID)
		if err != nil {
			return err
		}

		mark, err = upsertMark(tx, assignment, nil, &grade, feedback, submittedBy, now)
		if err != nil {
			return err
		}

		complete, marks, err := roleComplete(tx, models.EntityProposal, proposalID, models.RolePanelist)
		if err != nil || !complete {
			return err
		}

		grades := make([]float64, 0, len(marks))
		for _, m := range marks {
			if m.Grade != nil {
				grades = append(grades, *m.Grade)
			}
		}
		mean := MeanGrade(grades)
		passed := mean >= s.passMark
		aggregate.Complete = true
		aggregate.Mean = &mean
		aggregate.Passed = &passed
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return mark, aggregate, nil
}

// RecordExaminerMark upserts one examiner's numeric mark on a book, addressed
// by assignment id. When the last examiner submits, the examination completes
// and the book moves to passed/failed per the mean-vs-threshold rule.
func (s *GradingService) RecordExaminerMark(assignmentID int, grade float64, comments string, submittedBy int) (*models.Mark, *models.StatusRecord, error) {
	if grade < 0 || grade > 100 {
		return nil, nil, invalidGradeErr(grade)
	}

	var mark *models.Mark
	var status *models.StatusRecord
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		err := tx.Preload("Person").
			First(&assignment, "assignment_id = ? AND role = ?", assignmentID, models.RoleExaminer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundErr("examiner assignment %d not found", assignmentID)
		}
		if err != nil {
			return err
		}

		if err := s.workflow.LockEntity(tx, assignment.EntityType, assignment.EntityID); err != nil {
			return err
		}

		mark, err = upsertMark(tx, &assignment, nil, &grade, comments, submittedBy, now)
		if err != nil {
			return err
		}

		status, err = settleRole(tx, s.workflow, s.passMark,
			assignment.EntityType, assignment.EntityID, models.RoleExaminer, now, submittedBy)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return mark, status, nil
}
