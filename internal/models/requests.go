package models

type RequestInit struct {
	UserID       string `json:"userId"`
	AssessmentID string `json:"assessmentId"`
}

type RequestRecordCommit struct {
	Username       string `json:"username"`
	AssessmentName string `json:"assessmentName"`
	Commit         string `json:"commit"`
	Log            string `json:"log"`
}

type RequestCheck struct {
	Commit string `json:"commit"`
	Passed bool   `json:"passed"`
}

type RequestRequestReview struct {
	Commit string `json:"commit"`
}

type RequestApprove struct {
	Commit           string `json:"commit"`
	ReviewerUsername string `json:"reviewerUsername"`
}

type RequestDelete struct {
	UserID       string `json:"userId"`
	AssessmentID string `json:"assessmentId"`
}

type RequestRegisterUser struct {
	GithubUsername string `json:"githubUsername"`
	Name           string `json:"name"`
	Email          string `json:"email"`
}

type RequestAddReviewer struct {
	Username string `json:"username"`
}

type RequestUpsertAssessment struct {
	Name           string `json:"name"`
	ReviewRequired bool   `json:"reviewRequired"`
	TemplateRepo   string `json:"templateRepo"`
	Organization   string `json:"organization"`
	RepoPrefix     string `json:"repoPrefix"`
}
