package services

import (
	"AssessmentTrackerService/internal/models"
	"AssessmentTrackerService/internal/repository"
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewNotifier pages a reviewer after assignment. Fire and forget.
type ReviewNotifier interface {
	NotifyReviewRequested(ctx context.Context, reviewerUsername, traineeUsername, assessmentName string) error
}

// RepositoryProvisioner tears down the trainee's backing repository
// after an entry is deleted. Best effort, not part of the transaction.
type RepositoryProvisioner interface {
	TeardownRepository(ctx context.Context, username, assessmentName string) error
}

// TrackerService owns the assessment lifecycle:
// INITIATED -> UNDER_REVIEW -> APPROVED, with APPROVED terminal.
type TrackerService struct {
	trackerRepository    *repository.TrackerRepository
	userRepository       *repository.UserRepository
	assessmentRepository *repository.AssessmentRepository
	reviewerRepository   *repository.ReviewerRepository
	assertionRepository  *repository.AssertionRepository
	selector             *ReviewerSelector
	badges               *BadgeService
	notifier             ReviewNotifier
	provisioner          RepositoryProvisioner
	botUsername          string
	logger               *slog.Logger
}

func NewTrackerService(
	trackerRepository *repository.TrackerRepository,
	userRepository *repository.UserRepository,
	assessmentRepository *repository.AssessmentRepository,
	reviewerRepository *repository.ReviewerRepository,
	assertionRepository *repository.AssertionRepository,
	selector *ReviewerSelector,
	badges *BadgeService,
	notifier ReviewNotifier,
	provisioner RepositoryProvisioner,
	botUsername string,
	logger *slog.Logger,
) *TrackerService {
	return &TrackerService{
		trackerRepository:    trackerRepository,
		userRepository:       userRepository,
		assessmentRepository: assessmentRepository,
		reviewerRepository:   reviewerRepository,
		assertionRepository:  assertionRepository,
		selector:             selector,
		badges:               badges,
		notifier:             notifier,
		provisioner:          provisioner,
		botUsername:          botUsername,
		logger:               logger,
	}
}

// CreateEntry opens a tracker entry for the (user, assessment) pair.
// The unique index on the pair is the authority; the prior existence
// check only produces a friendlier error for the common case.
func (s *TrackerService) CreateEntry(
	ctx context.Context,
	userID, assessmentID uuid.UUID,
) (*models.AssessmentTrackerEntry, error) {
	if _, err := s.lookupUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.lookupAssessment(assessmentID); err != nil {
		return nil, err
	}

	if _, err := s.trackerRepository.FindByPair(userID, assessmentID); err == nil {
		return nil, models.ErrEntryAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry := &models.AssessmentTrackerEntry{
		EntryID:      uuid.New(),
		UserID:       userID,
		AssessmentID: assessmentID,
		Status:       models.StatusInitiated,
	}
	if err := entry.AppendLog(models.NewInitiatedRecord()); err != nil {
		return nil, err
	}

	if err := s.trackerRepository.Create(entry); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, models.ErrEntryAlreadyExists
		}
		return nil, err
	}

	return entry, nil
}

// RecordCommit notes a new code revision for the trainee's entry. The
// status is untouched: a fresh commit never moves the state machine.
func (s *TrackerService) RecordCommit(
	ctx context.Context,
	username, assessmentName, commit, message string,
) (*models.AssessmentTrackerEntry, error) {
	user, err := s.lookupUserByUsername(username)
	if err != nil {
		return nil, err
	}

	assessment, err := s.lookupAssessmentByName(assessmentName)
	if err != nil {
		return nil, err
	}

	entry, err := s.trackerRepository.FindByPair(user.UserID, assessment.AssessmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := entry.AppendLog(models.NewCommitRecord(commit, message)); err != nil {
		return nil, err
	}
	entry.LatestCommit = &commit

	if err := s.trackerRepository.Update(entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// RecordCheckResult records a CI outcome for the entry owning the
// commit. CI only knows commits, so the lookup runs by commit. Results
// against an approved entry fail loudly instead of being dropped, which
// keeps a stale CI callback from touching a closed assessment.
func (s *TrackerService) RecordCheckResult(
	ctx context.Context,
	commit string,
	passed bool,
) (bool, error) {
	entry, err := s.lookupEntryByCommit(commit)
	if err != nil {
		return false, err
	}

	if entry.Status == models.StatusApproved {
		return false, models.ErrAlreadyApproved
	}

	if err := entry.AppendLog(models.NewCheckRunRecord(commit, passed)); err != nil {
		return false, err
	}

	if err := s.trackerRepository.Update(entry); err != nil {
		return false, err
	}

	return entry.Assessment.ReviewRequired, nil
}

// RequestReview moves an initiated entry under review: verifies the
// latest commit passed checks, selects a reviewer, then flips the
// status with a guard against concurrent requesters.
func (s *TrackerService) RequestReview(
	ctx context.Context,
	commit string,
) (*models.Reviewer, error) {
	entry, err := s.lookupEntryByCommit(commit)
	if err != nil {
		return nil, err
	}

	if entry.Status != models.StatusInitiated {
		return nil, models.ErrAlreadyUnderReview
	}

	passed, err := entry.LatestCheckPassed()
	if err != nil || !passed {
		return nil, models.ErrChecksNotPassed
	}

	reviewer, err := s.selector.SelectFor(entry)
	if err != nil {
		return nil, err
	}

	entry.Status = models.StatusUnderReview
	entry.ReviewerID = &reviewer.ReviewerID
	if err := entry.AppendLog(models.NewReviewerAssignedRecord(reviewer.ReviewerID, reviewer.User.GithubUsername)); err != nil {
		return nil, err
	}

	err = s.trackerRepository.Transaction(func(tx *gorm.DB) error {
		ok, err := s.trackerRepository.TransitionStatusInTx(tx, entry, models.StatusInitiated)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrAlreadyUnderReview
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyReviewRequested(
		ctx, reviewer.User.GithubUsername, entry.User.GithubUsername, entry.Assessment.Name,
	); err != nil {
		s.logger.Warn("Reviewer notification failed", "error", err, "reviewer", reviewer.User.GithubUsername)
	}

	return reviewer, nil
}

// Approve closes the assessment and issues the badge. The status flip,
// the log append and the issuance all share one transaction: if the
// issuer call fails, the entry reverts to its pre-approval state and
// the approval can be retried.
func (s *TrackerService) Approve(
	ctx context.Context,
	commit, reviewerUsername string,
) error {
	entry, err := s.lookupEntryByCommit(commit)
	if err != nil {
		return err
	}

	approvedBy := s.botUsername
	expected := entry.Status

	if entry.Assessment.ReviewRequired {
		if err := s.validateApprover(entry, reviewerUsername); err != nil {
			return err
		}
		approvedBy = reviewerUsername
		expected = models.StatusUnderReview
	} else {
		if entry.Status == models.StatusApproved {
			return models.ErrAlreadyApproved
		}
		if passed, err := entry.LatestCheckPassed(); err != nil || !passed {
			return models.ErrChecksFailed
		}
	}

	entry.Status = models.StatusApproved
	if err := entry.AppendLog(models.NewApprovedRecord(commit, approvedBy)); err != nil {
		return err
	}

	return s.trackerRepository.Transaction(func(tx *gorm.DB) error {
		ok, err := s.trackerRepository.TransitionStatusInTx(tx, entry, expected)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrNotUnderReview
		}

		_, err = s.badges.IssueForEntryInTx(ctx, tx, entry, &entry.User, &entry.Assessment)
		return err
	})
}

func (s *TrackerService) validateApprover(entry *models.AssessmentTrackerEntry, reviewerUsername string) error {
	approver, err := s.lookupUserByUsername(reviewerUsername)
	if err != nil {
		return models.ErrReviewerNotFound
	}

	if approver.UserID == entry.UserID {
		return models.ErrSameAsTrainee
	}

	if entry.ReviewerID == nil {
		return models.ErrNoReviewerAssigned
	}

	if entry.Status == models.StatusApproved {
		return models.ErrAlreadyApproved
	}
	if entry.Status != models.StatusUnderReview {
		return models.ErrNotUnderReview
	}

	if passed, err := entry.LatestCheckPassed(); err != nil || !passed {
		return models.ErrChecksFailed
	}

	if entry.Reviewer == nil || entry.Reviewer.User.GithubUsername != reviewerUsername {
		return models.ErrWrongReviewer
	}

	return nil
}

// DeleteEntry removes the entry and its assertion, then asks the
// provisioning bot to tear down the backing repository. The teardown is
// a compensating action outside the transaction; its failure is logged,
// not rolled back.
func (s *TrackerService) DeleteEntry(
	ctx context.Context,
	userID, assessmentID uuid.UUID,
) error {
	user, err := s.lookupUser(userID)
	if err != nil {
		return err
	}

	assessment, err := s.lookupAssessment(assessmentID)
	if err != nil {
		return err
	}

	entry, err := s.trackerRepository.FindByPair(userID, assessmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrEntryNotFound
	}
	if err != nil {
		return err
	}

	err = s.trackerRepository.Transaction(func(tx *gorm.DB) error {
		if err := s.assertionRepository.DeleteByEntryIDInTx(tx, entry.EntryID); err != nil {
			return err
		}
		return s.trackerRepository.DeleteInTx(tx, entry.EntryID)
	})
	if err != nil {
		return err
	}

	if err := s.provisioner.TeardownRepository(ctx, user.GithubUsername, assessment.Name); err != nil {
		s.logger.Warn("Repository teardown failed", "error", err,
			"user", user.GithubUsername, "assessment", assessment.Name)
	}

	return nil
}

// GetEntryByCommit is the read path for the bot and web UI.
func (s *TrackerService) GetEntryByCommit(ctx context.Context, commit string) (*models.AssessmentTrackerEntry, error) {
	return s.lookupEntryByCommit(commit)
}

func (s *TrackerService) lookupUser(userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepository.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrUserNotFound
	}
	return user, err
}

func (s *TrackerService) lookupUserByUsername(username string) (*models.User, error) {
	user, err := s.userRepository.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrUserNotFound
	}
	return user, err
}

func (s *TrackerService) lookupAssessment(assessmentID uuid.UUID) (*models.Assessment, error) {
	assessment, err := s.assessmentRepository.FindByID(assessmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAssessmentNotFound
	}
	return assessment, err
}

func (s *TrackerService) lookupAssessmentByName(name string) (*models.Assessment, error) {
	assessment, err := s.assessmentRepository.FindByName(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAssessmentNotFound
	}
	return assessment, err
}

func (s *TrackerService) lookupEntryByCommit(commit string) (*models.AssessmentTrackerEntry, error) {
	entry, err := s.trackerRepository.FindByCommitWithRelations(commit)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrEntryNotFound
	}
	return entry, err
}
