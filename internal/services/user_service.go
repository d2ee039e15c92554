package services

import (
	"AssessmentTrackerService/internal/models"
	"AssessmentTrackerService/internal/repository"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	userRepository *repository.UserRepository
}

func NewUserService(userRepository *repository.UserRepository) *UserService {
	return &UserService{
		userRepository: userRepository,
	}
}

// Register creates a user on first login or explicit registration. The
// github username is the identity key and is immutable afterwards.
func (s *UserService) Register(githubUsername, name, email string) (*models.User, error) {
	if githubUsername == "" {
		return nil, errors.New("github_username cannot be empty")
	}

	if existing, err := s.userRepository.FindByUsername(githubUsername); err == nil {
		// Registration is idempotent on the identity key; profile
		// fields are refreshed from the latest login payload.
		existing.Name = name
		existing.Email = email
		if err := s.userRepository.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{
		UserID:         uuid.New(),
		GithubUsername: githubUsername,
		Name:           name,
		Email:          email,
	}

	if err := s.userRepository.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) GetByUsername(githubUsername string) (*models.User, error) {
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

	return user, nil
}
