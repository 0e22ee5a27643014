package services

import (
	"testing"
	"time"

	"umi-faculty-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type defenseFixture struct {
	proposal  *models.Proposal
	chair     *models.Person
	secretary *models.Person
	panelist  *models.Assignment
	reviewer  *models.Assignment
}

// newDefenseFixture brings a proposal to review-passed with a full roster on
// file, ready to schedule.
func newDefenseFixture(t *testing.T, db *gorm.DB) *defenseFixture {
	t.Helper()

	student := createStudent(t, db)
	proposal := submitProposal(t, db, student.StudentID)
	reviewer, _ := passReview(t, db, proposal.ProposalID)
	panelist := assignPerson(t, db, models.EntityProposal, proposal.ProposalID, models.RolePanelist,
		"Dr. Peter Wandera", "peter@umi.ac.ug")

	return &defenseFixture{
		proposal:  proposal,
		chair:     createPerson(t, db, "Dr. Sarah Mbabazi", "sarah@umi.ac.ug", models.RoleChairperson),
		secretary: createPerson(t, db, "John Okot", "john@umi.ac.ug", models.RoleMinutesSecretary),
		panelist:  panelist,
		reviewer:  reviewer,
	}
}

func (f *defenseFixture) input(date time.Time) ScheduleInput {
	return ScheduleInput{
		ScheduledDate:      date,
		Location:           "Boardroom A",
		ChairpersonID:      f.chair.PersonID,
		MinutesSecretaryID: f.secretary.PersonID,
		PanelistIDs:        []int{f.panelist.PersonID},
		ReviewerIDs:        []int{f.reviewer.PersonID},
		ScheduledBy:        1,
	}
}

func TestScheduleDefense(t *testing.T) {
	db := newTestDB(t)
	f := newDefenseFixture(t, db)

	date := time.Now().Add(14 * 24 * time.Hour)
	outcome, err := NewDefenseService(db).Schedule(f.proposal.ProposalID, f.input(date))
	require.NoError(t, err)

	require.NotNil(t, outcome.Defense)
	assert.NotEmpty(t, outcome.Defense.Reference)
	assert.False(t, outcome.Updated)
	assert.False(t, outcome.DateInPast)
	require.NotNil(t, outcome.Status)
	assert.Equal(t, models.StatusDefenseScheduled, outcome.Status.Definition.Code)

	// Roster snapshot carries name and email copies.
	require.Len(t, outcome.Defense.Participants, 2)
	byRole := map[string]models.DefenseParticipant{}
	for _, p := range outcome.Defense.Participants {
		byRole[p.Role] = p
	}
	assert.Equal(t, "Dr. Peter Wandera", byRole[models.RolePanelist].Name)
	assert.Equal(t, "peter@umi.ac.ug", byRole[models.RolePanelist].Email)
	assert.Equal(t, f.reviewer.PersonID, byRole[models.RoleReviewer].PersonID)

	// The proposal's own defense date stamp follows the sitting.
	var fresh models.Proposal
	require.NoError(t, db.First(&fresh, "proposal_id = ?", f.proposal.ProposalID).Error)
	require.NotNil(t, fresh.DefenseDate)
	assert.Equal(t, date.Unix(), fresh.DefenseDate.Unix())
}

func TestRescheduleUpdatesSameSitting(t *testing.T) {
	db := newTestDB(t)
	f := newDefenseFixture(t, db)
	svc := NewDefenseService(db)

	first, err := svc.Schedule(f.proposal.ProposalID, f.input(time.Now().Add(7*24*time.Hour)))
	require.NoError(t, err)

	// Swap the panelist and move the date; same sitting, replaced roster.
	replacement := assignPerson(t, db, models.EntityProposal, f.proposal.ProposalID, models.RolePanelist,
		"Dr. Ruth Akello", "ruth@umi.ac.ug")
	in := f.input(time.Now().Add(21 * 24 * time.Hour))
	in.PanelistIDs = []int{replacement.PersonID}

	second, err := svc.Schedule(f.proposal.ProposalID, in)
	require.NoError(t, err)
	assert.True(t, second.Updated)
	assert.Nil(t, second.Status)
	assert.Equal(t, first.Defense.DefenseID, second.Defense.DefenseID)
	assert.Equal(t, first.Defense.Reference, second.Defense.Reference)

	require.Len(t, second.Defense.Participants, 2)
	for _, p := range second.Defense.Participants {
		if p.Role == models.RolePanelist {
			assert.Equal(t, replacement.PersonID, p.PersonID)
		}
	}

	history, err := NewStatusService(db).History(models.EntityProposal, f.proposal.ProposalID)
	require.NoError(t, err)
	assert.Len(t, history, 4) // submitted, under review, review passed, defense scheduled
}

func TestSchedulePastDateFlagged(t *testing.T) {
	db := newTestDB(t)
	f := newDefenseFixture(t, db)

	outcome, err := NewDefenseService(db).Schedule(f.proposal.ProposalID, f.input(time.Now().Add(-24*time.Hour)))
	require.NoError(t, err)
	assert.True(t, outcome.DateInPast)
	assert.Equal(t, models.StatusDefenseScheduled,
		currentStatusCode(t, db, models.EntityProposal, f.proposal.ProposalID))
}

func TestScheduleValidation(t *testing.T) {
	db := newTestDB(t)
	f := newDefenseFixture(t, db)
	svc := NewDefenseService(db)

	in := f.input(time.Now().Add(24 * time.Hour))
	in.PanelistIDs = nil
	_, err := svc.Schedule(f.proposal.ProposalID, in)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	in = f.input(time.Now().Add(24 * time.Hour))
	in.Location = ""
	_, err = svc.Schedule(f.proposal.ProposalID, in)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	in = f.input(time.Now().Add(24 * time.Hour))
	in.ChairpersonID = 9999
	_, err = svc.Schedule(f.proposal.ProposalID, in)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRecordVerdictOnce(t *testing.T) {
	db := newTestDB(t)
	f := newDefenseFixture(t, db)
	svc := NewDefenseService(db)

	outcome, err := svc.Schedule(f.proposal.ProposalID, f.input(time.Now().Add(24*time.Hour)))
	require.NoError(t, err)

	defense, status, err := svc.RecordVerdict(outcome.Defense.DefenseID, models.VerdictPass, "excellent defense", 1)
	require.NoError(t, err)
	require.NotNil(t, defense.Verdict)
	assert.Equal(t, models.VerdictPass, *defense.Verdict)
	assert.NotNil(t, defense.DecidedAt)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusDefendedPassed, status.Definition.Code)

	// The verdict is immutable.
	_, _, err = svc.RecordVerdict(outcome.Defense.DefenseID, models.VerdictFail, "", 1)
	require.Error(t, err)
	assert.Equal(t, KindAlreadyDecided, KindOf(err))

	// And so is the sitting.
	_, err = svc.Schedule(f.proposal.ProposalID, f.input(time.Now().Add(48*time.Hour)))
	require.Error(t, err)
	assert.Equal(t, KindAlreadyDecided, KindOf(err))
}

func TestRecordVerdictFail(t *testing.T) {
	db := newTestDB(t)
	f := newDefenseFixture(t, db)
	svc := NewDefenseService(db)

	outcome, err := svc.Schedule(f.proposal.ProposalID, f.input(time.Now().Add(24*time.Hour)))
	require.NoError(t, err)

	_, status, err := svc.RecordVerdict(outcome.Defense.DefenseID, models.VerdictFail, "did not defend the design", 1)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusDefendedFailed, status.Definition.Code)
}

func TestRecordVerdictUnknownDefense(t *testing.T) {
	db := newTestDB(t)

	_, _, err := NewDefenseService(db).RecordVerdict(9999, models.VerdictPass, "", 1)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}
