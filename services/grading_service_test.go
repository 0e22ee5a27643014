package services

import (
	"testing"

	"umi-faculty-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateVerdicts(t *testing.T) {
	tests := []struct {
		name     string
		verdicts []string
		outcome  string
		passed   bool
	}{
		{"all pass", []string{models.VerdictPass, models.VerdictPass}, models.VerdictPass, true},
		{"minor wins over clean pass", []string{models.VerdictPass, models.VerdictPassMinor}, models.VerdictPassMinor, true},
		{"major wins over minor", []string{models.VerdictPassMinor, models.VerdictPassMajor, models.VerdictPass}, models.VerdictPassMajor, true},
		{"any fail fails", []string{models.VerdictPass, models.VerdictFail, models.VerdictPassMinor}, models.VerdictFail, false},
		{"fail first short-circuits", []string{models.VerdictFail, models.VerdictPassMajor}, models.VerdictFail, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, passed := AggregateVerdicts(tt.verdicts)
			if outcome != tt.outcome {
				t.Errorf("outcome = %s, want %s", outcome, tt.outcome)
			}
			if passed != tt.passed {
				t.Errorf("passed = %v, want %v", passed, tt.passed)
			}
		})
	}
}

func TestMeanGrade(t *testing.T) {
	tests := []struct {
		name   string
		grades []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{72}, 72},
		{"boundary mean", []float64{55, 65}, 60},
		{"fractional", []float64{60, 61}, 60.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeanGrade(tt.grades); got != tt.want {
				t.Errorf("MeanGrade(%v) = %v, want %v", tt.grades, got, tt.want)
			}
		})
	}
}

func TestRecordReviewerVerdictRejectsUnknownVerdict(t *testing.T) {
	db := newTestDB(t)

	_, _, err := NewGradingService(db).RecordReviewerVerdict(1, 1, "MAYBE", "", 1)
	require.Error(t, err)
	assert.Equal(t, KindInvalidVerdict, KindOf(err))
}

func TestRecordPanelistMarkRejectsOutOfRangeGrade(t *testing.T) {
	db := newTestDB(t)

	_, _, err := NewGradingService(db).RecordPanelistMark(1, 1, 101, "", 1)
	require.Error(t, err)
	assert.Equal(t, KindInvalidGrade, KindOf(err))

	_, _, err = NewGradingService(db).RecordPanelistMark(1, 1, -1, "", 1)
	require.Error(t, err)
	assert.Equal(t, KindInvalidGrade, KindOf(err))
}

func TestReviewerVerdictUpsertsInPlace(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db)
	proposal := submitProposal(t, db, student.StudentID)

	first := assignPerson(t, db, models.EntityProposal, proposal.ProposalID, models.RoleReviewer,
		"Dr. Grace Nansubuga", "grace@umi.ac.ug")
	// A second reviewer keeps the round open across resubmissions.
	assignPerson(t, db, models.EntityProposal, proposal.ProposalID, models.RoleReviewer,
		"Prof. David Ssemwanga", "david@umi.ac.ug")

	grading := NewGradingService(db)
	mark1, _, err := grading.RecordReviewerVerdict(proposal.ProposalID, first.PersonID, models.VerdictFail, "first take", 1)
	require.NoError(t, err)

	mark2, _, err := grading.RecordReviewerVerdict(proposal.ProposalID, first.PersonID, models.VerdictPassMinor, "revised take", 2)
	require.NoError(t, err)

	assert.Equal(t, mark1.MarkID, mark2.MarkID)
	require.NotNil(t, mark2.Verdict)
	assert.Equal(t, models.VerdictPassMinor, *mark2.Verdict)
	assert.Equal(t, "revised take", mark2.Feedback)
	assert.Equal(t, 2, mark2.SubmittedByID)
	assert.Equal(t, mark1.CreateAt.Unix(), mark2.CreateAt.Unix())

	var count int64
	require.NoError(t, db.Model(&models.Mark{}).
		Where("assignment_id = ?", first.AssignmentID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPanelistMarksAggregateWithoutTransition(t *testing.T) {
	db := newTestDB(t)
	student := createStudent(t, db)
	proposal := submitProposal(t, db, student.StudentID)

	first := assignPerson(t, db, models.EntityProposal, proposal.ProposalID, models.RolePanelist,
		"Dr. Peter Wandera", "peter@umi.ac.ug")
	second := assignPerson(t, db, models.EntityProposal, proposal.ProposalID, models.RolePanelist,
		"Dr. Ruth Akello", "ruth@umi.ac.ug")

	grading := NewGradingService(db)
	_, aggregate, err := grading.RecordPanelistMark(proposal.ProposalID, first.PersonID, 70, "", 1)
	require.NoError(t, err)
	assert.False(t, aggregate.Complete)
	assert.Nil(t, aggregate.Mean)

	_, aggregate, err = grading.RecordPanelistMark(proposal.ProposalID, second.PersonID, 50, "", 1)
	require.NoError(t, err)
	assert.True(t, aggregate.Complete)
	require.NotNil(t, aggregate.Mean)
	assert.InDelta(t, 60.0, *aggregate.Mean, 0.001)
	require.NotNil(t, aggregate.Passed)
	assert.True(t, *aggregate.Passed)

	// Panelist marks never move the proposal on their own.
	assert.Equal(t, models.StatusUnderReview,
		currentStatusCode(t, db, models.EntityProposal, proposal.ProposalID))
}

func TestExaminerMarkForUnknownAssignment(t *testing.T) {
	db := newTestDB(t)

	_, _, err := NewGradingService(db).RecordExaminerMark(4242, 70, "", 1)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
