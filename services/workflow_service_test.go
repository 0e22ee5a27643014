package services

import (
	"testing"
	"time"

	"umi-faculty-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProposalLifecycle(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db)
	proposal := submitProposal(t, db, student.StudentID)

	assert.Equal(t, models.StatusProposalSubmitted,
		currentStatusCode(t, db, models.EntityProposal, proposal.ProposalID))

	// First reviewer assignment moves the proposal under review.
	assignments := NewAssignmentService(db)
	res, rec, err := assignments.Assign(models.EntityProposal, proposal.ProposalID, models.RoleReviewer,
		PersonInput{Name: "Dr. Grace Nansubuga", Email: "grace@umi.ac.ug"}, time.Now(), 1)
	require.NoError(t, err)
	assert.True(t, res.Created)
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusUnderReview, rec.Definition.Code)

	// The second assignment is just an assignment.
	res2, rec2, err := assignments.Assign(models.EntityProposal, proposal.ProposalID, models.RoleReviewer,
		PersonInput{Name: "Prof. David Ssemwanga", Email: "david@umi.ac.ug"}, time.Now(), 1)
	require.NoError(t, err)
	assert.True(t, res2.Created)
	assert.Nil(t, rec2)

	// First verdict leaves the round open.
	grading := NewGradingService(db)
	_, status, err := grading.RecordReviewerVerdict(proposal.ProposalID, res.Assignment.PersonID,
		models.VerdictPass, "sound methodology", 1)
	require.NoError(t, err)
	assert.Nil(t, status)
	assert.Equal(t, models.StatusUnderReview,
		currentStatusCode(t, db, models.EntityProposal, proposal.ProposalID))

	// Last verdict completes the round; major corrections still pass.
	_, status, err = grading.RecordReviewerVerdict(proposal.ProposalID, res2.Assignment.PersonID,
		models.VerdictPassMajor, "rework chapter three", 1)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusReviewPassed, status.Definition.Code)

	var fresh models.Proposal
	require.NoError(t, db.First(&fresh, "proposal_id = ?", proposal.ProposalID).Error)
	require.NotNil(t, fresh.ReviewOutcome)
	assert.Equal(t, models.VerdictPassMajor, *fresh.ReviewOutcome)

	// Schedule and decide the defense.
	chair := createPerson(t, db, "Dr. Sarah Mbabazi", "sarah@umi.ac.ug", models.RoleChairperson)
	secretary := createPerson(t, db, "John Okot", "john@umi.ac.ug", models.RoleMinutesSecretary)
	panelist := assignPerson(t, db, models.EntityProposal, proposal.ProposalID, models.RolePanelist,
		"Dr. Peter Wandera", "peter@umi.ac.ug")

	defenses := NewDefenseService(db)
	outcome, err := defenses.Schedule(proposal.ProposalID, ScheduleInput{
		ScheduledDate:      time.Now().Add(14 * 24 * time.Hour),
		Location:           "Boardroom A",
		ChairpersonID:      chair.PersonID,
		MinutesSecretaryID: secretary.PersonID,
		PanelistIDs:        []int{panelist.PersonID},
		ReviewerIDs:        []int{res.Assignment.PersonID},
		ScheduledBy:        1,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome.Status)
	assert.Equal(t, models.StatusDefenseScheduled, outcome.Status.Definition.Code)

	_, status, err = defenses.RecordVerdict(outcome.Defense.DefenseID, models.VerdictPassMinor, "well defended", 1)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusDefendedPassed, status.Definition.Code)

	// The ledger keeps every step and exactly one current record.
	history, err := NewStatusService(db).History(models.EntityProposal, proposal.ProposalID)
	require.NoError(t, err)
	require.Len(t, history, 5)

	codes := make([]string, 0, len(history))
	currentCount := 0
	for i, record := range history {
		codes = append(codes, record.Definition.Code)
		if record.IsCurrent {
			currentCount++
			assert.Nil(t, record.EndDate)
		} else {
			assert.NotNil(t, record.EndDate, "superseded record %d should carry an end date", i)
		}
	}
	assert.Equal(t, []string{
		models.StatusProposalSubmitted,
		models.StatusUnderReview,
		models.StatusReviewPassed,
		models.StatusDefenseScheduled,
		models.StatusDefendedPassed,
	}, codes)
	assert.Equal(t, 1, currentCount)
}

func TestReviewFailShortCircuits(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db)
	proposal := submitProposal(t, db, student.StudentID)

	first := assignPerson(t, db, models.EntityProposal, proposal.ProposalID, models.RoleReviewer,
		"Dr. Grace Nansubuga", "grace@umi.ac.ug")
	second := assignPerson(t, db, models.EntityProposal, proposal.ProposalID, models.RoleReviewer,
		"Prof. David Ssemwanga", "david@umi.ac.ug")

	grading := NewGradingService(db)
	_, _, err := grading.RecordReviewerVerdict(proposal.ProposalID, first.PersonID, models.VerdictPass, "", 1)
	require.NoError(t, err)

	_, status, err := grading.RecordReviewerVerdict(proposal.ProposalID, second.PersonID, models.VerdictFail, "unsalvageable design", 1)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusReviewFailed, status.Definition.Code)

	var fresh models.Proposal
	require.NoError(t, db.First(&fresh, "proposal_id = ?", proposal.ProposalID).Error)
	require.NotNil(t, fresh.ReviewOutcome)
	assert.Equal(t, models.VerdictFail, *fresh.ReviewOutcome)
}

func TestScheduleBeforeReviewRejected(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db)
	proposal := submitProposal(t, db, student.StudentID)

	chair := createPerson(t, db, "Dr. Sarah Mbabazi", "sarah@umi.ac.ug", models.RoleChairperson)
	secretary := createPerson(t, db, "John Okot", "john@umi.ac.ug", models.RoleMinutesSecretary)
	panelist := createPerson(t, db, "Dr. Peter Wandera", "peter@umi.ac.ug", models.RolePanelist)
	reviewer := createPerson(t, db, "Dr. Grace Nansubuga", "grace@umi.ac.ug", models.RoleReviewer)

	_, err := NewDefenseService(db).Schedule(proposal.ProposalID, ScheduleInput{
		ScheduledDate:      time.Now().Add(24 * time.Hour),
		Location:           "Boardroom A",
		ChairpersonID:      chair.PersonID,
		MinutesSecretaryID: secretary.PersonID,
		PanelistIDs:        []int{panelist.PersonID},
		ReviewerIDs:        []int{reviewer.PersonID},
		ScheduledBy:        1,
	})
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "proposal submitted", werr.CurrentStatus)
}

func TestTransitionOnMissingEntity(t *testing.T) {
	db := newTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := NewWorkflowService(db).MarkSubmitted(tx, models.EntityProposal, 9999, time.Now(), 1)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReapplyCurrentStatusIsNoOp(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db)
	proposal := submitProposal(t, db, student.StudentID)

	workflow := NewWorkflowService(db)
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := workflow.MarkSubmitted(tx, models.EntityProposal, proposal.ProposalID, time.Now(), 1)
		return err
	})
	require.NoError(t, err)

	history, err := NewStatusService(db).History(models.EntityProposal, proposal.ProposalID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestBookLifecycle(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db)
	book := submitBook(t, db, student.StudentID)

	assert.Equal(t, models.StatusBookSubmitted,
		currentStatusCode(t, db, models.EntityBook, book.BookID))

	// First examiner assignment starts the examination.
	internal := assignPerson(t, db, models.EntityBook, book.BookID, models.RoleExaminer,
		"Dr. Peter Wandera", "peter@umi.ac.ug")
	assert.Equal(t, models.StatusExaminersAssigned,
		currentStatusCode(t, db, models.EntityBook, book.BookID))

	external := assignPerson(t, db, models.EntityBook, book.BookID, models.RoleExaminer,
		"Prof. Jane Achieng", "jane@external.ac.ke")

	grading := NewGradingService(db)
	_, status, err := grading.RecordExaminerMark(internal.AssignmentID, 55, "thin literature review", 1)
	require.NoError(t, err)
	assert.Nil(t, status)

	// 55 and 65 average to exactly the pass mark; the threshold is inclusive.
	_, status, err = grading.RecordExaminerMark(external.AssignmentID, 65, "acceptable", 1)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusExaminationPassed, status.Definition.Code)

	var fresh models.Book
	require.NoError(t, db.First(&fresh, "book_id = ?", book.BookID).Error)
	require.NotNil(t, fresh.ExaminationScore)
	assert.InDelta(t, 60.0, *fresh.ExaminationScore, 0.001)
	require.NotNil(t, fresh.ExaminationOutcome)
	assert.Equal(t, models.StatusExaminationPassed, *fresh.ExaminationOutcome)
}

func TestBookExaminationFailsBelowThreshold(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db)
	book := submitBook(t, db, student.StudentID)

	internal := assignPerson(t, db, models.EntityBook, book.BookID, models.RoleExaminer,
		"Dr. Peter Wandera", "peter@umi.ac.ug")
	external := assignPerson(t, db, models.EntityBook, book.BookID, models.RoleExaminer,
		"Prof. Jane Achieng", "jane@external.ac.ke")

	grading := NewGradingService(db)
	_, _, err := grading.RecordExaminerMark(internal.AssignmentID, 50, "", 1)
	require.NoError(t, err)
	_, status, err := grading.RecordExaminerMark(external.AssignmentID, 69.9, "", 1)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusExaminationFailed, status.Definition.Code)
}
