package repository

import (
	"AssessmentTrackerService/internal/models"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssertionRepository struct {
	database *gorm.DB
}

func NewAssertionRepository(database *gorm.DB) *AssertionRepository {
	return &AssertionRepository{
		database: database,
	}
}

func (r *AssertionRepository) FindByEntryID(entryID uuid.UUID) (*models.Assertion, error) {
	var assertion models.Assertion
	result := r.database.Where("entry_id = ?", entryID).First(&assertion)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &assertion, nil
}

func (r *AssertionRepository) Create(assertion *models.Assertion) error {
	return r.database.Create(assertion).Error
}

func (r *AssertionRepository) CreateInTx(tx *gorm.DB, assertion *models.Assertion) error {
	return tx.Create(assertion).Error
}

func (r *AssertionRepository) DeleteByEntryIDInTx(tx *gorm.DB, entryID uuid.UUID) error {
	return tx.
		Where("entry_id = ?", entryID).
		Delete(&models.Assertion{}).Error
}
