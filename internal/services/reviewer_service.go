package services

import (
	"AssessmentTrackerService/internal/models"
	"AssessmentTrackerService/internal/repository"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewerService struct {
	reviewerRepository *repository.ReviewerRepository
	userRepository     *repository.UserRepository
}

func NewReviewerService(
	reviewerRepository *repository.ReviewerRepository,
	userRepository *repository.UserRepository,
) *ReviewerService {
	return &ReviewerService{
		reviewerRepository: reviewerRepository,
		userRepository:     userRepository,
	}
}

// Add grants the reviewer capability to an existing user.
func (s *ReviewerService) Add(githubUsername string) (*models.Reviewer, error) {
	if githubUsername == "" {
		return nil, errors.New("github_username cannot be empty")
	}

	user, err := s.userRepository.FindByUsername(githubUsername)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	reviewer := &models.Reviewer{
		ReviewerID: uuid.New(),
		UserID:     user.UserID,
		User:       *user,
	}

	if err := s.reviewerRepository.Create(reviewer); err != nil {
		if repository.IsDuplicateKey(err) {
			return s.findExisting(user.UserID)
		}
		return nil, err
	}

	return reviewer, nil
}

func (s *ReviewerService) List() ([]models.Reviewer, error) {
	return s.reviewerRepository.List()
}

func (s *ReviewerService) findExisting(userID uuid.UUID) (*models.Reviewer, error) {
	reviewer, err := s.reviewerRepository.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrReviewerNotFound
	}
	return reviewer, err
}
