package repository

import (
	"AssessmentTrackerService/internal/models"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrackerRepository struct {
	database *gorm.DB
}

func NewTrackerRepository(database *gorm.DB) *TrackerRepository {
	return &TrackerRepository{
		database: database,
	}
}

func (r *TrackerRepository) FindByPair(userID, assessmentID uuid.UUID) (*models.AssessmentTrackerEntry, error) {
	var entry models.AssessmentTrackerEntry
	result := r.database.
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

func (r *TrackerRepository) FindByID(entryID uuid.UUID) (*models.AssessmentTrackerEntry, error) {
	var entry models.AssessmentTrackerEntry
	result := r.database.Where("entry_id = ?", entryID).First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

func (r *TrackerRepository) FindByCommit(commit string) (*models.AssessmentTrackerEntry, error) {
	var entry models.AssessmentTrackerEntry
	result := r.database.Where("latest_commit = ?", commit).First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

func (r *TrackerRepository) FindByCommitWithRelations(commit string) (*models.AssessmentTrackerEntry, error) {
	var entry models.AssessmentTrackerEntry
	result := r.database.
		Preload("User").
		Preload("Assessment").
		Preload("Reviewer.User").
		Where("latest_commit = ?", commit).
		First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

func (r *TrackerRepository) Create(entry *models.AssessmentTrackerEntry) error {
	return r.database.Create(entry).Error
}

func (r *TrackerRepository) Update(entry *models.AssessmentTrackerEntry) error {
	return r.database.Save(entry).Error
}

// TransitionStatusInTx flips the entry's status with a guard on the
// expected current status. It reports false when another writer already
// moved the entry away from the expected status.
func (r *TrackerRepository) TransitionStatusInTx(
	tx *gorm.DB,
	entry *models.AssessmentTrackerEntry,
	expected models.EntryStatus,
) (bool, error) {
	result := tx.Model(&models.AssessmentTrackerEntry{}).
		Where("entry_id = ? AND status = ?", entry.EntryID, expected).
		Updates(map[string]interface{}{
			"status":       entry.Status,
			"reviewer_id":  entry.ReviewerID,
			"log":          entry.Log,
			"last_updated": time.Now().UTC(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ReviewerIDsForUser lists reviewers already attached to any of the
// trainee's entries.
func (r *TrackerRepository) ReviewerIDsForUser(userID uuid.UUID) ([]uuid.UUID, error) {
	var reviewerIDs []uuid.UUID
	err := r.database.
		Model(&models.AssessmentTrackerEntry{}).
		Where("user_id = ? AND reviewer_id IS NOT NULL", userID).
		Distinct().
		Pluck("reviewer_id", &reviewerIDs).Error

	return reviewerIDs, err
}

func (r *TrackerRepository) DeleteInTx(tx *gorm.DB, entryID uuid.UUID) error {
	return tx.
		Where("entry_id = ?", entryID).
		Delete(&models.AssessmentTrackerEntry{}).Error
}

func (r *TrackerRepository) Transaction(fn func(*gorm.DB) error) error {
	return r.database.Transaction(fn)
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// The store-level unique indexes are the authority for the
// one-entry-per-pair and one-commit-per-entry invariants, so services
// map this onto the matching conflict sentinel.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
