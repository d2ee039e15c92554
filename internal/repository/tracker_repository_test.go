package repository

import (
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"AssessmentTrackerService/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tracker.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(
		&models.User{},
		&models.Assessment{},
		&models.Reviewer{},
		&models.AssessmentTrackerEntry{},
		&models.Assertion{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		UserID:         uuid.New(),
		GithubUsername: username,
		Email:          username + "@example.com",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedAssessment(t *testing.T, db *gorm.DB, name string, reviewRequired bool) *models.Assessment {
	t.Helper()

	assessment := &models.Assessment{
		AssessmentID:   uuid.New(),
		Name:           name,
		ReviewRequired: reviewRequired,
	}
	if err := db.Create(assessment).Error; err != nil {
		t.Fatalf("seed assessment %s: %v", name, err)
	}
	return assessment
}

func TestCreateRejectsDuplicatePair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTrackerRepository(db)

	user := seedUser(t, db, "trainee")
	assessment := seedAssessment(t, db, "Test", true)

	first := &models.AssessmentTrackerEntry{
		EntryID:      uuid.New(),
		UserID:       user.UserID,
		AssessmentID: assessment.AssessmentID,
		Status:       models.StatusInitiated,
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create() first entry error = %v", err)
	}

	second := &models.AssessmentTrackerEntry{
		EntryID:      uuid.New(),
		UserID:       user.UserID,
		AssessmentID: assessment.AssessmentID,
		Status:       models.StatusInitiated,
	}
	err := repo.Create(second)
	if err == nil {
		t.Fatalf("Create() duplicate pair succeeded, unique index missing")
	}
	if !IsDuplicateKey(err) {
		t.Fatalf("Create() duplicate pair error = %v, not a duplicate-key error", err)
	}
}

func TestLatestCommitUniqueAcrossEntries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTrackerRepository(db)

	assessment := seedAssessment(t, db, "Test", true)
	commit := "abc123"

	first := &models.AssessmentTrackerEntry{
		EntryID:      uuid.New(),
		UserID:       seedUser(t, db, "alice").UserID,
		AssessmentID: assessment.AssessmentID,
		Status:       models.StatusInitiated,
		LatestCommit: &commit,
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create() first entry error = %v", err)
	}

	second := &models.AssessmentTrackerEntry{
		EntryID:      uuid.New(),
		UserID:       seedUser(t, db, "bob").UserID,
		AssessmentID: assessment.AssessmentID,
		Status:       models.StatusInitiated,
		LatestCommit: &commit,
	}
	err := repo.Create(second)
	if err == nil || !IsDuplicateKey(err) {
		t.Fatalf("Create() with shared commit error = %v, want duplicate-key error", err)
	}
}

func TestFindByCommit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTrackerRepository(db)

	user := seedUser(t, db, "trainee")
	assessment := seedAssessment(t, db, "Test", true)
	commit := "deadbeef"

	entry := &models.AssessmentTrackerEntry{
		EntryID:      uuid.New(),
		UserID:       user.UserID,
		AssessmentID: assessment.AssessmentID,
		Status:       models.StatusInitiated,
		LatestCommit: &commit,
	}
	if err := repo.Create(entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByCommit("deadbeef")
	if err != nil {
		t.Fatalf("FindByCommit() error = %v", err)
	}
	if found.EntryID != entry.EntryID {
		t.Fatalf("FindByCommit() entry = %s, want %s", found.EntryID, entry.EntryID)
	}

	if _, err := repo.FindByCommit("missing"); err != gorm.ErrRecordNotFound {
		t.Fatalf("FindByCommit(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func TestTransitionStatusGuardedUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTrackerRepository(db)

	user := seedUser(t, db, "trainee")
	assessment := seedAssessment(t, db, "Test", true)

	entry := &models.AssessmentTrackerEntry{
		EntryID:      uuid.New(),
		UserID:       user.UserID,
		AssessmentID: assessment.AssessmentID,
		Status:       models.StatusInitiated,
	}
	if err := repo.Create(entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	entry.Status = models.StatusUnderReview
	err := repo.Transaction(func(tx *gorm.DB) error {
		ok, err := repo.TransitionStatusInTx(tx, entry, models.StatusInitiated)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatalf("TransitionStatusInTx() = false on matching expected status")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}

	// A second writer still expecting INITIATED must lose.
	entry.Status = models.StatusApproved
	err = repo.Transaction(func(tx *gorm.DB) error {
		ok, err := repo.TransitionStatusInTx(tx, entry, models.StatusInitiated)
		if err != nil {
			return err
		}
		if ok {
			t.Fatalf("TransitionStatusInTx() = true on stale expected status")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}

	reloaded, err := repo.FindByID(entry.EntryID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if reloaded.Status != models.StatusUnderReview {
		t.Fatalf("status = %s, want UNDER_REVIEW after losing writer", reloaded.Status)
	}
}

func TestReviewerIDsForUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTrackerRepository(db)

	trainee := seedUser(t, db, "trainee")
	reviewerUser := seedUser(t, db, "reviewer")
	reviewer := &models.Reviewer{ReviewerID: uuid.New(), UserID: reviewerUser.UserID}
	if err := db.Create(reviewer).Error; err != nil {
		t.Fatalf("seed reviewer: %v", err)
	}

	assessmentA := seedAssessment(t, db, "A", true)
	assessmentB := seedAssessment(t, db, "B", true)

	commit := "c1"
	withReviewer := &models.AssessmentTrackerEntry{
		EntryID:      uuid.New(),
		UserID:       trainee.UserID,
		AssessmentID: assessmentA.AssessmentID,
		Status:       models.StatusUnderReview,
		LatestCommit: &commit,
		ReviewerID:   &reviewer.ReviewerID,
	}
	without := &models.AssessmentTrackerEntry{
		EntryID:      uuid.New(),
		UserID:       trainee.UserID,
		AssessmentID: assessmentB.AssessmentID,
		Status:       models.StatusInitiated,
	}
	if err := repo.Create(withReviewer); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(without); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ids, err := repo.ReviewerIDsForUser(trainee.UserID)
	if err != nil {
		t.Fatalf("ReviewerIDsForUser() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != reviewer.ReviewerID {
		t.Fatalf("ReviewerIDsForUser() = %v, want [%s]", ids, reviewer.ReviewerID)
	}
}
