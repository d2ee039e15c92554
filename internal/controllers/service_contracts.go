package controllers

import (
	"AssessmentTrackerService/internal/models"
	"context"

	"github.com/google/uuid"
)

type TrackerService interface {
	CreateEntry(ctx context.Context, userID, assessmentID uuid.UUID) (*models.AssessmentTrackerEntry, error)
	RecordCommit(ctx context.Context, username, assessmentName, commit, message string) (*models.AssessmentTrackerEntry, error)
	RecordCheckResult(ctx context.Context, commit string, passed bool) (bool, error)
	RequestReview(ctx context.Context, commit string) (*models.Reviewer, error)
	Approve(ctx context.Context, commit, reviewerUsername string) error
	DeleteEntry(ctx context.Context, userID, assessmentID uuid.UUID) error
	GetEntryByCommit(ctx context.Context, commit string) (*models.AssessmentTrackerEntry, error)
}

type UserService interface {
	Register(githubUsername, name, email string) (*models.User, error)
	GetByUsername(githubUsername string) (*models.User, error)
}

type ReviewerService interface {
	Add(githubUsername string) (*models.Reviewer, error)
	List() ([]models.Reviewer, error)
}

type AssessmentService interface {
	Upsert(assessment *models.Assessment) (*models.Assessment, error)
	GetByName(name string) (*models.Assessment, error)
	List() ([]models.Assessment, error)
}
