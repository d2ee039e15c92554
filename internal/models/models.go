package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"userId"`
	GithubUsername  string    `gorm:"not null;uniqueIndex;column:github_username" json:"githubUsername"`
	Name            string    `gorm:"column:name" json:"name"`
	Email           string    `gorm:"column:email" json:"email"`
	IsEmailVerified bool      `gorm:"default:false;column:is_email_verified" json:"isEmailVerified"`
	IsOnboarded     bool      `gorm:"default:false;column:is_onboarded" json:"isOnboarded"`
}

type Assessment struct {
	AssessmentID   uuid.UUID `gorm:"type:uuid;primaryKey;column:assessment_id" json:"assessmentId"`
	Name           string    `gorm:"not null;uniqueIndex;column:name" json:"name"`
	ReviewRequired bool      `gorm:"default:true;column:review_required" json:"reviewRequired"`
	TemplateRepo   string    `gorm:"column:template_repo" json:"templateRepo"`
	Organization   string    `gorm:"column:organization" json:"organization"`
	RepoPrefix     string    `gorm:"column:repo_prefix" json:"repoPrefix"`
}

type Reviewer struct {
	ReviewerID uuid.UUID `gorm:"type:uuid;primaryKey;column:reviewer_id" json:"reviewerId"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"userId"`
	User       User      `gorm:"foreignKey:UserID;references:UserID" json:"user"`
}

type EntryStatus string

const (
	StatusPreAssessment EntryStatus = "PRE_ASSESSMENT"
	StatusInitiated     EntryStatus = "INITIATED"
	StatusUnderReview   EntryStatus = "UNDER_REVIEW"
	StatusApproved      EntryStatus = "APPROVED"
)

type AssessmentTrackerEntry struct {
	EntryID      uuid.UUID      `gorm:"type:uuid;primaryKey;column:entry_id" json:"entryId"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_assessment;column:user_id" json:"userId"`
	AssessmentID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_assessment;column:assessment_id" json:"assessmentId"`
	Status       EntryStatus    `gorm:"not null;default:'INITIATED';column:status" json:"status"`
	LatestCommit *string        `gorm:"uniqueIndex;column:latest_commit" json:"latestCommit,omitempty"`
	ReviewerID   *uuid.UUID     `gorm:"type:uuid;column:reviewer_id" json:"reviewerId,omitempty"`
	Log          datatypes.JSON `gorm:"column:log" json:"log"`
	LastUpdated  time.Time      `gorm:"autoUpdateTime;column:last_updated" json:"lastUpdated"`

	User       User       `gorm:"foreignKey:UserID;references:UserID" json:"-"`
	Assessment Assessment `gorm:"foreignKey:AssessmentID;references:AssessmentID" json:"-"`
	Reviewer   *Reviewer  `gorm:"foreignKey:ReviewerID;references:ReviewerID" json:"-"`
}

type Assertion struct {
	AssertionID uuid.UUID `gorm:"type:uuid;primaryKey;column:assertion_id" json:"assertionId"`
	EntryID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:entry_id" json:"entryId"`
	ExternalID  string    `gorm:"not null;uniqueIndex;column:external_id" json:"externalId"`
	BadgeName   string    `gorm:"not null;column:badge_name" json:"badgeName"`
	IssuedAt    time.Time `gorm:"autoCreateTime;column:issued_at" json:"issuedAt"`
}

func (User) TableName() string {
	return "users"
}

func (Assessment) TableName() string {
	return "assessments"
}

func (Reviewer) TableName() string {
	return "reviewers"
}

func (AssessmentTrackerEntry) TableName() string {
	return "assessment_tracker_entries"
}

func (Assertion) TableName() string {
	return "assertions"
}
