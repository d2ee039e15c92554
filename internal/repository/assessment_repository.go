package repository

import (
	"AssessmentTrackerService/internal/models"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssessmentRepository struct {
	database *gorm.DB
}

func NewAssessmentRepository(database *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{
		database: database,
	}
}

func (r *AssessmentRepository) FindByID(assessmentID uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	result := r.database.Where("assessment_id = ?", assessmentID).First(&assessment)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &assessment, nil
}

func (r *AssessmentRepository) FindByName(name string) (*models.Assessment, error) {
	var assessment models.Assessment
	result := r.database.Where("name = ?", name).First(&assessment)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &assessment, nil
}

func (r *AssessmentRepository) Create(assessment *models.Assessment) error {
	return r.database.Create(assessment).Error
}

func (r *AssessmentRepository) Update(assessment *models.Assessment) error {
	return r.database.Save(assessment).Error
}

func (r *AssessmentRepository) List() ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := r.database.Order("name").Find(&assessments).Error

	return assessments, err
}
