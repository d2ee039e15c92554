package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"AssessmentTrackerService/internal/config"
	"AssessmentTrackerService/internal/models"
	"AssessmentTrackerService/internal/repository"
)

type stubIssuer struct {
	err   error
	calls int
}

func (s *stubIssuer) IssueBadge(ctx context.Context, badgeClassID, recipientEmail, narrative string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("assertion-%d", s.calls), nil
}

type stubNotifier struct {
	notified []string
}

func (s *stubNotifier) NotifyReviewRequested(ctx context.Context, reviewerUsername, traineeUsername, assessmentName string) error {
	s.notified = append(s.notified, reviewerUsername)
	return nil
}

type stubProvisioner struct {
	teardowns []string
}

func (s *stubProvisioner) TeardownRepository(ctx context.Context, username, assessmentName string) error {
	s.teardowns = append(s.teardowns, username+"/"+assessmentName)
	return nil
}

type trackerFixture struct {
	db          *gorm.DB
	service     *TrackerService
	issuer      *stubIssuer
	notifier    *stubNotifier
	provisioner *stubProvisioner
	trackerRepo *repository.TrackerRepository
}

func setupTracker(t *testing.T) *trackerFixture {
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

	trackerRepo := repository.NewTrackerRepository(db)
	userRepo := repository.NewUserRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	reviewerRepo := repository.NewReviewerRepository(db)
	assertionRepo := repository.NewAssertionRepository(db)

	issuer := &stubIssuer{}
	notifier := &stubNotifier{}
	provisioner := &stubProvisioner{}

	selector := NewReviewerSelector(reviewerRepo, trackerRepo, config.ReviewConfig{})
	badges := NewBadgeService(issuer, assertionRepo, map[string]string{"Test": "class-test"})

	service := NewTrackerService(
		trackerRepo,
		userRepo,
		assessmentRepo,
		reviewerRepo,
		assertionRepo,
		selector,
		badges,
		notifier,
		provisioner,
		"assessment-bot",
		slog.Default(),
	)

	return &trackerFixture{
		db:          db,
		service:     service,
		issuer:      issuer,
		notifier:    notifier,
		provisioner: provisioner,
		trackerRepo: trackerRepo,
	}
}

func (f *trackerFixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	user := &models.User{
		UserID:         uuid.New(),
		GithubUsername: username,
		Email:          username + "@example.com",
	}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func (f *trackerFixture) createAssessment(t *testing.T, name string, reviewRequired bool) *models.Assessment {
	t.Helper()

	assessment := &models.Assessment{
		AssessmentID:   uuid.New(),
		Name:           name,
		ReviewRequired: reviewRequired,
	}
	if err := f.db.Create(assessment).Error; err != nil {
		t.Fatalf("create assessment %s: %v", name, err)
	}
	return assessment
}

func (f *trackerFixture) createReviewer(t *testing.T, username string) *models.Reviewer {
	t.Helper()

	user := f.createUser(t, username)
	reviewer := &models.Reviewer{ReviewerID: uuid.New(), UserID: user.UserID}
	if err := f.db.Create(reviewer).Error; err != nil {
		t.Fatalf("create reviewer %s: %v", username, err)
	}
	reviewer.User = *user
	return reviewer
}

// advanceToChecked walks an entry through commit + passing check.
func (f *trackerFixture) advanceToChecked(t *testing.T, username, assessmentName, commit string) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.service.RecordCommit(ctx, username, assessmentName, commit, "pushed work"); err != nil {
		t.Fatalf("RecordCommit() error = %v", err)
	}
	if _, err := f.service.RecordCheckResult(ctx, commit, true); err != nil {
		t.Fatalf("RecordCheckResult() error = %v", err)
	}
}

func TestCreateEntrySucceedsAtMostOnce(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)

	entry, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID)
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if entry.Status != models.StatusInitiated {
		t.Fatalf("CreateEntry() status = %s, want INITIATED", entry.Status)
	}

	log, err := entry.DecodedLog()
	if err != nil {
		t.Fatalf("DecodedLog() error = %v", err)
	}
	if len(log) != 1 || log[0].Kind != models.LogInitiated {
		t.Fatalf("new entry log = %v, want one initiated record", log)
	}

	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); !errors.Is(err, models.ErrEntryAlreadyExists) {
		t.Fatalf("second CreateEntry() error = %v, want ErrEntryAlreadyExists", err)
	}
}

func TestCreateEntryUnknownUserOrAssessment(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	assessment := f.createAssessment(t, "Test", true)
	if _, err := f.service.CreateEntry(ctx, uuid.New(), assessment.AssessmentID); !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("CreateEntry() error = %v, want ErrUserNotFound", err)
	}

	user := f.createUser(t, "trainee")
	if _, err := f.service.CreateEntry(ctx, user.UserID, uuid.New()); !errors.Is(err, models.ErrAssessmentNotFound) {
		t.Fatalf("CreateEntry() error = %v, want ErrAssessmentNotFound", err)
	}
}

func TestRecordCommitUpdatesLatestCommitOnly(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	entry, err := f.service.RecordCommit(ctx, "trainee", "Test", "c1", "first push")
	if err != nil {
		t.Fatalf("RecordCommit() error = %v", err)
	}
	if entry.LatestCommit == nil || *entry.LatestCommit != "c1" {
		t.Fatalf("latest_commit = %v, want c1", entry.LatestCommit)
	}
	if entry.Status != models.StatusInitiated {
		t.Fatalf("status = %s, commit must not move the state machine", entry.Status)
	}
}

func TestRecordCheckResultLastWins(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if _, err := f.service.RecordCommit(ctx, "trainee", "Test", "c1", "work"); err != nil {
		t.Fatalf("RecordCommit() error = %v", err)
	}

	for _, passed := range []bool{true, false, true} {
		if _, err := f.service.RecordCheckResult(ctx, "c1", passed); err != nil {
			t.Fatalf("RecordCheckResult(%v) error = %v", passed, err)
		}
	}

	entry, err := f.service.GetEntryByCommit(ctx, "c1")
	if err != nil {
		t.Fatalf("GetEntryByCommit() error = %v", err)
	}
	passed, err := entry.LatestCheckPassed()
	if err != nil {
		t.Fatalf("LatestCheckPassed() error = %v", err)
	}
	if !passed {
		t.Fatalf("LatestCheckPassed() = false, want last appended result")
	}
}

func TestRecordCheckResultUnknownCommit(t *testing.T) {
	f := setupTracker(t)

	_, err := f.service.RecordCheckResult(context.Background(), "missing", true)
	if !errors.Is(err, models.ErrEntryNotFound) {
		t.Fatalf("RecordCheckResult() error = %v, want ErrEntryNotFound", err)
	}
	if err.Error() != "Assessment tracker entry unavailable." {
		t.Fatalf("RecordCheckResult() message = %q", err.Error())
	}
}

func TestRequestReviewRequiresPassingChecks(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	f.createReviewer(t, "mentor")
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if _, err := f.service.RecordCommit(ctx, "trainee", "Test", "c1", "work"); err != nil {
		t.Fatalf("RecordCommit() error = %v", err)
	}
	if _, err := f.service.RecordCheckResult(ctx, "c1", false); err != nil {
		t.Fatalf("RecordCheckResult() error = %v", err)
	}

	if _, err := f.service.RequestReview(ctx, "c1"); !errors.Is(err, models.ErrChecksNotPassed) {
		t.Fatalf("RequestReview() error = %v, want ErrChecksNotPassed", err)
	}
}

func TestRequestReviewAssignsEligibleReviewer(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	mentor := f.createReviewer(t, "mentor")
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")

	reviewer, err := f.service.RequestReview(ctx, "c1")
	if err != nil {
		t.Fatalf("RequestReview() error = %v", err)
	}
	if reviewer.UserID == user.UserID {
		t.Fatalf("RequestReview() picked the trainee as reviewer")
	}
	if reviewer.ReviewerID != mentor.ReviewerID {
		t.Fatalf("RequestReview() reviewer = %s, want %s", reviewer.ReviewerID, mentor.ReviewerID)
	}
	if len(f.notifier.notified) != 1 || f.notifier.notified[0] != "mentor" {
		t.Fatalf("notifier calls = %v, want [mentor]", f.notifier.notified)
	}

	entry, err := f.service.GetEntryByCommit(ctx, "c1")
	if err != nil {
		t.Fatalf("GetEntryByCommit() error = %v", err)
	}
	if entry.Status != models.StatusUnderReview {
		t.Fatalf("status = %s, want UNDER_REVIEW", entry.Status)
	}

	// A second request against the same entry must fail.
	if _, err := f.service.RequestReview(ctx, "c1"); !errors.Is(err, models.ErrAlreadyUnderReview) {
		t.Fatalf("second RequestReview() error = %v, want ErrAlreadyUnderReview", err)
	}
}

func TestRequestReviewNoReviewerAvailable(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")

	if _, err := f.service.RequestReview(ctx, "c1"); !errors.Is(err, models.ErrNoReviewerAvailable) {
		t.Fatalf("RequestReview() error = %v, want ErrNoReviewerAvailable", err)
	}
}

func TestApproveFullLifecycle(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	f.createReviewer(t, "mentor")
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")

	reviewer, err := f.service.RequestReview(ctx, "c1")
	if err != nil {
		t.Fatalf("RequestReview() error = %v", err)
	}

	if err := f.service.Approve(ctx, "c1", reviewer.User.GithubUsername); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	entry, err := f.service.GetEntryByCommit(ctx, "c1")
	if err != nil {
		t.Fatalf("GetEntryByCommit() error = %v", err)
	}
	if entry.Status != models.StatusApproved {
		t.Fatalf("status = %s, want APPROVED", entry.Status)
	}
	if f.issuer.calls != 1 {
		t.Fatalf("issuer calls = %d, want 1", f.issuer.calls)
	}

	var assertion models.Assertion
	if err := f.db.Where("entry_id = ?", entry.EntryID).First(&assertion).Error; err != nil {
		t.Fatalf("assertion not persisted: %v", err)
	}

	// Approved is terminal.
	err = f.service.Approve(ctx, "c1", reviewer.User.GithubUsername)
	if !errors.Is(err, models.ErrAlreadyApproved) && !errors.Is(err, models.ErrNotUnderReview) {
		t.Fatalf("second Approve() error = %v, want AlreadyApproved or NotUnderReview", err)
	}
	if _, err := f.service.RecordCheckResult(ctx, "c1", false); !errors.Is(err, models.ErrAlreadyApproved) {
		t.Fatalf("RecordCheckResult() after approval error = %v, want ErrAlreadyApproved", err)
	}
	if _, err := f.service.RequestReview(ctx, "c1"); !errors.Is(err, models.ErrAlreadyUnderReview) {
		t.Fatalf("RequestReview() after approval error = %v, want ErrAlreadyUnderReview", err)
	}
}

func TestApproveByTraineeFails(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	f.createReviewer(t, "mentor")
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")
	if _, err := f.service.RequestReview(ctx, "c1"); err != nil {
		t.Fatalf("RequestReview() error = %v", err)
	}

	if err := f.service.Approve(ctx, "c1", "trainee"); !errors.Is(err, models.ErrSameAsTrainee) {
		t.Fatalf("Approve() by trainee error = %v, want ErrSameAsTrainee", err)
	}
}

func TestApproveByWrongReviewerFails(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	f.createReviewer(t, "mentor")
	f.createUser(t, "bystander")
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")
	if _, err := f.service.RequestReview(ctx, "c1"); err != nil {
		t.Fatalf("RequestReview() error = %v", err)
	}

	if err := f.service.Approve(ctx, "c1", "bystander"); !errors.Is(err, models.ErrWrongReviewer) {
		t.Fatalf("Approve() by bystander error = %v, want ErrWrongReviewer", err)
	}
}

func TestApproveBeforeReviewFails(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	f.createReviewer(t, "mentor")
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")

	if err := f.service.Approve(ctx, "c1", "mentor"); !errors.Is(err, models.ErrNoReviewerAssigned) {
		t.Fatalf("Approve() without reviewer error = %v, want ErrNoReviewerAssigned", err)
	}
}

func TestApproveUnknownReviewerFails(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	f.createReviewer(t, "mentor")
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")
	if _, err := f.service.RequestReview(ctx, "c1"); err != nil {
		t.Fatalf("RequestReview() error = %v", err)
	}

	if err := f.service.Approve(ctx, "c1", "ghost"); !errors.Is(err, models.ErrReviewerNotFound) {
		t.Fatalf("Approve() by unknown user error = %v, want ErrReviewerNotFound", err)
	}
}

func TestApproveRollsBackWhenIssuerFails(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	f.createReviewer(t, "mentor")
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")
	reviewer, err := f.service.RequestReview(ctx, "c1")
	if err != nil {
		t.Fatalf("RequestReview() error = %v", err)
	}

	f.issuer.err = models.ErrIssuerUnavailable

	err = f.service.Approve(ctx, "c1", reviewer.User.GithubUsername)
	if !errors.Is(err, models.ErrIssuerUnavailable) {
		t.Fatalf("Approve() error = %v, want ErrIssuerUnavailable", err)
	}

	entry, err := f.service.GetEntryByCommit(ctx, "c1")
	if err != nil {
		t.Fatalf("GetEntryByCommit() error = %v", err)
	}
	if entry.Status != models.StatusUnderReview {
		t.Fatalf("status after failed issuance = %s, want UNDER_REVIEW (rolled back)", entry.Status)
	}

	var count int64
	if err := f.db.Model(&models.Assertion{}).Where("entry_id = ?", entry.EntryID).Count(&count).Error; err != nil {
		t.Fatalf("count assertions: %v", err)
	}
	if count != 0 {
		t.Fatalf("assertions = %d after rollback, want 0", count)
	}

	// The approval is retryable once the issuer recovers.
	f.issuer.err = nil
	if err := f.service.Approve(ctx, "c1", reviewer.User.GithubUsername); err != nil {
		t.Fatalf("retried Approve() error = %v", err)
	}
}

func TestApproveWithoutReviewRequirement(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", false)

	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")

	// No reviewer exists anywhere; the bot identity approves directly.
	if err := f.service.Approve(ctx, "c1", "assessment-bot"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	entry, err := f.service.GetEntryByCommit(ctx, "c1")
	if err != nil {
		t.Fatalf("GetEntryByCommit() error = %v", err)
	}
	if entry.Status != models.StatusApproved {
		t.Fatalf("status = %s, want APPROVED", entry.Status)
	}

	if err := f.service.Approve(ctx, "c1", "assessment-bot"); !errors.Is(err, models.ErrAlreadyApproved) {
		t.Fatalf("second Approve() error = %v, want ErrAlreadyApproved", err)
	}
}

func TestDeleteEntryCascadesAndNotifiesProvisioner(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)
	f.createReviewer(t, "mentor")
	if _, err := f.service.CreateEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	f.advanceToChecked(t, "trainee", "Test", "c1")
	reviewer, err := f.service.RequestReview(ctx, "c1")
	if err != nil {
		t.Fatalf("RequestReview() error = %v", err)
	}
	if err := f.service.Approve(ctx, "c1", reviewer.User.GithubUsername); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if err := f.service.DeleteEntry(ctx, user.UserID, assessment.AssessmentID); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}

	var entries, assertions int64
	if err := f.db.Model(&models.AssessmentTrackerEntry{}).Count(&entries).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if err := f.db.Model(&models.Assertion{}).Count(&assertions).Error; err != nil {
		t.Fatalf("count assertions: %v", err)
	}
	if entries != 0 || assertions != 0 {
		t.Fatalf("entries = %d, assertions = %d after delete, want 0/0", entries, assertions)
	}

	if len(f.provisioner.teardowns) != 1 || f.provisioner.teardowns[0] != "trainee/Test" {
		t.Fatalf("teardowns = %v, want [trainee/Test]", f.provisioner.teardowns)
	}
}

func TestDeleteEntryNotFound(t *testing.T) {
	f := setupTracker(t)
	ctx := context.Background()

	user := f.createUser(t, "trainee")
	assessment := f.createAssessment(t, "Test", true)

	if err := f.service.DeleteEntry(ctx, user.UserID, assessment.AssessmentID); !errors.Is(err, models.ErrEntryNotFound) {
		t.Fatalf("DeleteEntry() error = %v, want ErrEntryNotFound", err)
	}
}
