package models

import "github.com/google/uuid"

type EntryDTO struct {
	EntryID          string      `json:"entryId"`
	UserID           string      `json:"userId"`
	AssessmentID     string      `json:"assessmentId"`
	Status           EntryStatus `json:"status"`
	LatestCommit     string      `json:"latestCommit,omitempty"`
	ReviewerID       string      `json:"reviewerId,omitempty"`
	Log              EntryLog    `json:"log"`
	ReviewerUsername string      `json:"reviewerUsername,omitempty"`
}

func (e *AssessmentTrackerEntry) ToResponse() EntryDTO {
	dto := EntryDTO{
		EntryID:      e.EntryID.String(),
		UserID:       e.UserID.String(),
		AssessmentID: e.AssessmentID.String(),
		Status:       e.Status,
	}

	if e.LatestCommit != nil {
		dto.LatestCommit = *e.LatestCommit
	}
	if e.ReviewerID != nil {
		dto.ReviewerID = e.ReviewerID.String()
	}
	if e.Reviewer != nil {
		dto.ReviewerUsername = e.Reviewer.User.GithubUsername
	}
	if log, err := e.DecodedLog(); err == nil {
		dto.Log = log
	}

	return dto
}

type ReviewerDTO struct {
	ReviewerID     string `json:"reviewerId"`
	UserID         string `json:"userId"`
	GithubUsername string `json:"githubUsername"`
}

func (r *Reviewer) ToResponse() ReviewerDTO {
	return ReviewerDTO{
		ReviewerID:     r.ReviewerID.String(),
		UserID:         r.UserID.String(),
		GithubUsername: r.User.GithubUsername,
	}
}

type ResponseInit struct {
	Initiated bool     `json:"initiated"`
	Entry     EntryDTO `json:"entry"`
}

type ResponseRecordCommit struct {
	Updated bool `json:"updated"`
}

type ResponseCheck struct {
	Checked        bool `json:"checked"`
	ReviewRequired bool `json:"reviewRequired"`
}

type ResponseRequestReview struct {
	ReviewerID       uuid.UUID `json:"reviewerId"`
	ReviewerUsername string    `json:"reviewerUsername"`
}

type ResponseApprove struct {
	Approved bool `json:"approved"`
}

type ResponseDelete struct {
	Deleted bool `json:"deleted"`
}

type ResponseEntry struct {
	Entry EntryDTO `json:"entry"`
}

type ResponseRegisterUser struct {
	User User `json:"user"`
}

type ResponseAddReviewer struct {
	Reviewer ReviewerDTO `json:"reviewer"`
}

type ResponseListReviewers struct {
	Reviewers []ReviewerDTO `json:"reviewers"`
}

type ResponseUpsertAssessment struct {
	Assessment Assessment `json:"assessment"`
}
