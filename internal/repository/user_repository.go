package repository

import (
	"AssessmentTrackerService/internal/models"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{
		database: database,
	}
}

func (r *UserRepository) FindByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	result := r.database.Where("user_id = ?", userID).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *UserRepository) FindByUsername(githubUsername string) (*models.User, error) {
	var user models.User
	result := r.database.Where("github_username = ?", githubUsername).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *UserRepository) Create(user *models.User) error {
	return r.database.Create(user).Error
}

func (r *UserRepository) Update(user *models.User) error {
	return r.database.Save(user).Error
}
