package services

import (
	"AssessmentTrackerService/internal/models"
	"AssessmentTrackerService/internal/repository"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssessmentService is the write path for the administrative sync
// process. The tracker itself only ever reads assessments.
type AssessmentService struct {
	assessmentRepository *repository.AssessmentRepository
}

func NewAssessmentService(assessmentRepository *repository.AssessmentRepository) *AssessmentService {
	return &AssessmentService{
		assessmentRepository: assessmentRepository,
	}
}

func (s *AssessmentService) Upsert(input *models.Assessment) (*models.Assessment, error) {
	if input.Name == "" {
		return nil, errors.New("assessment name cannot be empty")
	}

	existing, err := s.assessmentRepository.FindByName(input.Name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		input.AssessmentID = uuid.New()
		if err := s.assessmentRepository.Create(input); err != nil {
			return nil, err
		}
		return input, nil
	}
	if err != nil {
		return nil, err
	}

	existing.ReviewRequired = input.ReviewRequired
	existing.TemplateRepo = input.TemplateRepo
	existing.Organization = input.Organization
	existing.RepoPrefix = input.RepoPrefix

	if err := s.assessmentRepository.Update(existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *AssessmentService) GetByName(name string) (*models.Assessment, error) {
	if name == "" {
		return nil, errors.New("assessment name cannot be empty")
	}

	assessment, err := s.assessmentRepository.FindByName(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}

	return assessment, nil
}

func (s *AssessmentService) List() ([]models.Assessment, error) {
	return s.assessmentRepository.List()
}
