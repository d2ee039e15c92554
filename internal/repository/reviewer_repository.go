package repository

import (
	"AssessmentTrackerService/internal/models"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewerRepository struct {
	database *gorm.DB
}

func NewReviewerRepository(database *gorm.DB) *ReviewerRepository {
	return &ReviewerRepository{
		database: database,
	}
}

func (r *ReviewerRepository) FindByID(reviewerID uuid.UUID) (*models.Reviewer, error) {
	var reviewer models.Reviewer
	result := r.database.Preload("User").Where("reviewer_id = ?", reviewerID).First(&reviewer)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &reviewer, nil
}

func (r *ReviewerRepository) FindByUserID(userID uuid.UUID) (*models.Reviewer, error) {
	var reviewer models.Reviewer
	result := r.database.Preload("User").Where("user_id = ?", userID).First(&reviewer)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &reviewer, nil
}

func (r *ReviewerRepository) FindByUsername(githubUsername string) (*models.Reviewer, error) {
	var reviewer models.Reviewer
	result := r.database.
		Preload("User").
		Joins("JOIN users ON users.user_id = reviewers.user_id").
		Where("users.github_username = ?", githubUsername).
		First(&reviewer)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &reviewer, nil
}

func (r *ReviewerRepository) Create(reviewer *models.Reviewer) error {
	return r.database.Create(reviewer).Error
}

func (r *ReviewerRepository) List() ([]models.Reviewer, error) {
	var reviewers []models.Reviewer
	err := r.database.Preload("User").Find(&reviewers).Error

	return reviewers, err
}

// GetEligibleReviewers returns reviewers whose user is not the trainee
// and who are not in the excluded reviewer set.
func (r *ReviewerRepository) GetEligibleReviewers(
	traineeUserID uuid.UUID,
	excludeReviewerIDs []uuid.UUID,
) ([]models.Reviewer, error) {
	var reviewers []models.Reviewer
	query := r.database.
		Preload("User").
		Where("user_id != ?", traineeUserID)

	if len(excludeReviewerIDs) > 0 {
		query = query.Where("reviewer_id NOT IN (?)", excludeReviewerIDs)
	}

	err := query.Find(&reviewers).Error
	return reviewers, err
}
