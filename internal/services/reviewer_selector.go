package services

import (
	"AssessmentTrackerService/internal/config"
	"AssessmentTrackerService/internal/models"
	"AssessmentTrackerService/internal/repository"
	"errors"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// ReviewerSelector picks a reviewer for an entry. Eligible reviewers are
// everyone with a reviewer record except the trainee and reviewers
// already attached to another of the trainee's entries.
type ReviewerSelector struct {
	reviewerRepository *repository.ReviewerRepository
	trackerRepository  *repository.TrackerRepository
	reviewConfig       config.ReviewConfig
	randomizer         *rand.Rand
}

func NewReviewerSelector(
	reviewerRepository *repository.ReviewerRepository,
	trackerRepository *repository.TrackerRepository,
	reviewConfig config.ReviewConfig,
) *ReviewerSelector {
	return &ReviewerSelector{
		reviewerRepository: reviewerRepository,
		trackerRepository:  trackerRepository,
		reviewConfig:       reviewConfig,
		//nolint:gosec // math/rand is enough for spreading review load
		randomizer: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *ReviewerSelector) SelectFor(entry *models.AssessmentTrackerEntry) (*models.Reviewer, error) {
	if s.reviewConfig.Testing && s.reviewConfig.FixedReviewer != "" {
		return s.selectFixed(entry)
	}

	excludeIDs, err := s.trackerRepository.ReviewerIDsForUser(entry.UserID)
	if err != nil {
		return nil, err
	}

	eligible, err := s.reviewerRepository.GetEligibleReviewers(entry.UserID, excludeIDs)
	if err != nil {
		return nil, err
	}

	if len(eligible) == 0 {
		return nil, models.ErrNoReviewerAvailable
	}

	chosen := eligible[s.randomizer.Intn(len(eligible))]
	return &chosen, nil
}

func (s *ReviewerSelector) selectFixed(entry *models.AssessmentTrackerEntry) (*models.Reviewer, error) {
	reviewer, err := s.reviewerRepository.FindByUsername(s.reviewConfig.FixedReviewer)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNoReviewerAvailable
	}
	if err != nil {
		return nil, err
	}

	// The fixed reviewer still may not review their own work.
	if reviewer.UserID == entry.UserID {
		return nil, models.ErrNoReviewerAvailable
	}

	return reviewer, nil
}
