package services

import (
	"fmt"
	"testing"
	"time"

	"umi-faculty-api/config"
	"umi-faculty-api/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema and the
// default status definitions seeded.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:workflow_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	ClearStatusCache()
	if err := NewStatusService(db).EnsureDefinitions(); err != nil {
		t.Fatalf("failed to seed status definitions: %v", err)
	}
	t.Cleanup(ClearStatusCache)

	return db
}

func createStudent(t *testing.T, db *gorm.DB) *models.Student {
	t.Helper()

	now := time.Now()
	student := models.Student{
		FirstName:      "Amina",
		LastName:       "Okello",
		Email:          fmt.Sprintf("amina.okello+%d@students.umi.ac.ug", now.UnixNano()),
		RegistrationNo: "21/MMSPPM/041",
		Program:        "masters",
		CreateAt:       now,
		UpdateAt:       now,
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to create student: %v", err)
	}
	return &student
}

func submitProposal(t *testing.T, db *gorm.DB, studentID int) *models.Proposal {
	t.Helper()

	now := time.Now()
	proposal := models.Proposal{
		StudentID:      studentID,
		Title:          "Irrigation scheme governance in Northern Uganda",
		SubmissionDate: now,
		SubmittedBy:    1,
		CreateAt:       now,
		UpdateAt:       now,
	}

	workflow := NewWorkflowService(db)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}
		_, err := workflow.MarkSubmitted(tx, models.EntityProposal, proposal.ProposalID, now, 1)
		return err
	})
	if err != nil {
		t.Fatalf("failed to submit proposal: %v", err)
	}
	return &proposal
}

func submitBook(t *testing.T, db *gorm.DB, studentID int) *models.Book {
	t.Helper()

	now := time.Now()
	book := models.Book{
		StudentID:      studentID,
		Title:          "Dissertation: irrigation scheme governance",
		SubmissionDate: now,
		SubmittedBy:    1,
		CreateAt:       now,
		UpdateAt:       now,
	}

	workflow := NewWorkflowService(db)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&book).Error; err != nil {
			return err
		}
		_, err := workflow.MarkSubmitted(tx, models.EntityBook, book.BookID, now, 1)
		return err
	})
	if err != nil {
		t.Fatalf("failed to submit book: %v", err)
	}
	return &book
}

func createPerson(t *testing.T, db *gorm.DB, name, email string, roles ...string) *models.Person {
	t.Helper()

	now := time.Now()
	person := models.Person{
		Name:     name,
		Email:    email,
		CreateAt: now,
		UpdateAt: now,
	}
	if err := db.Create(&person).Error; err != nil {
		t.Fatalf("failed to create person %s: %v", name, err)
	}
	for _, role := range roles {
		grant := models.PersonRole{PersonID: person.PersonID, Role: role, CreateAt: now}
		if err := db.Create(&grant).Error; err != nil {
			t.Fatalf("failed to grant role %s: %v", role, err)
		}
	}
	return &person
}

func assignPerson(t *testing.T, db *gorm.DB, entityType string, entityID int, role, name, email string) *models.Assignment {
	t.Helper()

	svc := NewAssignmentService(db)
	res, _, err := svc.Assign(entityType, entityID, role, PersonInput{Name: name, Email: email}, time.Now(), 1)
	if err != nil {
		t.Fatalf("failed to assign %s %s: %v", role, name, err)
	}
	return res.Assignment
}

// passReview assigns two reviewers to the proposal and records passing
// verdicts for both, leaving the proposal at review-passed.
func passReview(t *testing.T, db *gorm.DB, proposalID int) (first, second *models.Assignment) {
	t.Helper()

	first = assignPerson(t, db, models.EntityProposal, proposalID, models.RoleReviewer,
		"Dr. Grace Nansubuga", fmt.Sprintf("grace.%d@umi.ac.ug", proposalID))
	second = assignPerson(t, db, models.EntityProposal, proposalID, models.RoleReviewer,
		"Prof. David Ssemwanga", fmt.Sprintf("david.%d@umi.ac.ug", proposalID))

	grading := NewGradingService(db)
	if _, _, err := grading.RecordReviewerVerdict(proposalID, first.PersonID, models.VerdictPass, "", 1); err != nil {
		t.Fatalf("failed to record first verdict: %v", err)
	}
	if _, _, err := grading.RecordReviewerVerdict(proposalID, second.PersonID, models.VerdictPass, "", 1); err != nil {
		t.Fatalf("failed to record second verdict: %v", err)
	}
	return first, second
}

func currentStatusCode(t *testing.T, db *gorm.DB, entityType string, entityID int) string {
	t.Helper()

	record, err := NewStatusService(db).Current(entityType, entityID)
	if err != nil {
		t.Fatalf("failed to read current status: %v", err)
	}
	if record == nil {
		return ""
	}
	return record.Definition.Code
}
