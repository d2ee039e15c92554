package models

import "errors"

// Not-found sentinels. The messages are part of the contract: the bot
// and web UI match on them to pick a response, so each entity kind gets
// a distinct message.
var (
	ErrUserNotFound       = errors.New("User unavailable.")
	ErrAssessmentNotFound = errors.New("Assessment unavailable.")
	ErrReviewerNotFound   = errors.New("Reviewer unavailable.")
	ErrEntryNotFound      = errors.New("Assessment tracker entry unavailable.")
)

// State-machine precondition failures.
var (
	ErrEntryAlreadyExists = errors.New("assessment tracker entry already exists")
	ErrAlreadyApproved    = errors.New("assessment already approved")
	ErrAlreadyUnderReview = errors.New("assessment already under review or approved")
	ErrNotUnderReview     = errors.New("assessment is not under review")
	ErrNoReviewerAssigned = errors.New("no reviewer assigned to this assessment")
	ErrWrongReviewer      = errors.New("approver is not the assigned reviewer")
	ErrSameAsTrainee      = errors.New("reviewer cannot approve their own assessment")
	ErrChecksNotPassed    = errors.New("checks have not passed for the latest commit")
	ErrChecksFailed       = errors.New("checks failed for the latest commit")
)

// Log verification failures.
var (
	ErrNoLogs          = errors.New("no log records for this entry")
	ErrNoLogsForCommit = errors.New("no log records for the latest commit")
	ErrNoCheckResult   = errors.New("no check result recorded for the latest commit")
)

// Operational failures, retryable by an operator rather than the caller.
var (
	ErrNoReviewerAvailable = errors.New("no eligible reviewer available")
	ErrIssuerUnavailable   = errors.New("badge issuer unavailable")
	ErrUnknownBadgeClass   = errors.New("no badge class mapped for assessment")
	ErrAssertionExists     = errors.New("assertion already issued for this entry")
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
