package controllers

import (
	"AssessmentTrackerService/internal/models"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type TrackerController struct {
	service TrackerService
	logger  *slog.Logger
}

func NewTrackerController(service TrackerService, logger *slog.Logger) *TrackerController {
	return &TrackerController{
		service: service,
		logger:  logger,
	}
}

func (ctrl *TrackerController) Init(w http.ResponseWriter, r *http.Request) {
	var req models.RequestInit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(ctrl.logger, w, "Invalid request body", http.StatusBadRequest)
		ctrl.logger.Error("Failed to decode request body", "error", err)
		return
	}

	userID, assessmentID, ok := ctrl.parsePairIDs(w, req.UserID, req.AssessmentID)
	if !ok {
		return
	}

	entry, err := ctrl.service.CreateEntry(r.Context(), userID, assessmentID)

	if errors.Is(err, models.ErrEntryAlreadyExists) {
		ctrl.logger.Error("Entry already exists", "userID", req.UserID, "assessmentID", req.AssessmentID)
		sendConflictResponse(ctrl.logger, w, "ENTRY_EXISTS", err.Error())
		return
	}

	if errors.Is(err, models.ErrUserNotFound) || errors.Is(err, models.ErrAssessmentNotFound) {
		ctrl.logger.Error("User or assessment not found", "userID", req.UserID, "assessmentID", req.AssessmentID)
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return
	}

	if err != nil {
		ctrl.logger.Error("Failed to create entry", "error", err, "userID", req.UserID)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseInit{
		Initiated: true,
		Entry:     entry.ToResponse(),
	}, http.StatusCreated)
}

func (ctrl *TrackerController) RecordCommit(w http.ResponseWriter, r *http.Request) {
	var req models.RequestRecordCommit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(ctrl.logger, w, "Invalid request body", http.StatusBadRequest)
		ctrl.logger.Error("Failed to decode request body", "error", err)
		return
	}

	_, err := ctrl.service.RecordCommit(r.Context(), req.Username, req.AssessmentName, req.Commit, req.Log)

	if errors.Is(err, models.ErrUserNotFound) ||
		errors.Is(err, models.ErrAssessmentNotFound) ||
		errors.Is(err, models.ErrEntryNotFound) {
		ctrl.logger.Error("Commit target not found", "username", req.Username, "assessment", req.AssessmentName)
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return
	}

	if err != nil {
		ctrl.logger.Error("Failed to record commit", "error", err, "commit", req.Commit)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseRecordCommit{Updated: true}, http.StatusOK)
}

func (ctrl *TrackerController) RecordCheckResult(w http.ResponseWriter, r *http.Request) {
	var req models.RequestCheck
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(ctrl.logger, w, "Invalid request body", http.StatusBadRequest)
		ctrl.logger.Error("Failed to decode request body", "error", err)
		return
	}

	reviewRequired, err := ctrl.service.RecordCheckResult(r.Context(), req.Commit, req.Passed)

	if errors.Is(err, models.ErrEntryNotFound) {
		ctrl.logger.Error("No entry for commit", "commit", req.Commit)
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return
	}

	if errors.Is(err, models.ErrAlreadyApproved) {
		ctrl.logger.Error("Check result against approved entry", "commit", req.Commit)
		sendConflictResponse(ctrl.logger, w, "ALREADY_APPROVED", err.Error())
		return
	}

	if err != nil {
		ctrl.logger.Error("Failed to record check result", "error", err, "commit", req.Commit)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseCheck{
		Checked:        true,
		ReviewRequired: reviewRequired,
	}, http.StatusOK)
}

func (ctrl *TrackerController) RequestReview(w http.ResponseWriter, r *http.Request) {
	var req models.RequestRequestReview
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(ctrl.logger, w, "Invalid request body", http.StatusBadRequest)
		ctrl.logger.Error("Failed to decode request body", "error", err)
		return
	}

	reviewer, err := ctrl.service.RequestReview(r.Context(), req.Commit)

	if errors.Is(err, models.ErrEntryNotFound) {
		ctrl.logger.Error("No entry for commit", "commit", req.Commit)
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return
	}

	if errors.Is(err, models.ErrAlreadyUnderReview) {
		ctrl.logger.Error("Entry already under review or approved", "commit", req.Commit)
		sendConflictResponse(ctrl.logger, w, "ALREADY_UNDER_REVIEW", err.Error())
		return
	}

	if errors.Is(err, models.ErrChecksNotPassed) {
		ctrl.logger.Error("Checks not passed for latest commit", "commit", req.Commit)
		sendPreconditionResponse(ctrl.logger, w, "CHECKS_NOT_PASSED", err.Error())
		return
	}

	if errors.Is(err, models.ErrNoReviewerAvailable) {
		ctrl.logger.Error("No eligible reviewer available", "commit", req.Commit)
		sendUnavailableResponse(ctrl.logger, w, err.Error())
		return
	}

	if err != nil {
		ctrl.logger.Error("Failed to request review", "error", err, "commit", req.Commit)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseRequestReview{
		ReviewerID:       reviewer.ReviewerID,
		ReviewerUsername: reviewer.User.GithubUsername,
	}, http.StatusOK)
}

func (ctrl *TrackerController) Approve(w http.ResponseWriter, r *http.Request) {
	var req models.RequestApprove
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(ctrl.logger, w, "Invalid request body", http.StatusBadRequest)
		ctrl.logger.Error("Failed to decode request body", "error", err)
		return
	}

	err := ctrl.service.Approve(r.Context(), req.Commit, req.ReviewerUsername)

	switch {
	case errors.Is(err, models.ErrEntryNotFound), errors.Is(err, models.ErrReviewerNotFound):
		ctrl.logger.Error("Entry or reviewer not found", "commit", req.Commit, "reviewer", req.ReviewerUsername)
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return

	case errors.Is(err, models.ErrSameAsTrainee):
		sendConflictResponse(ctrl.logger, w, "SAME_AS_TRAINEE", err.Error())
		return

	case errors.Is(err, models.ErrWrongReviewer):
		sendConflictResponse(ctrl.logger, w, "WRONG_REVIEWER", err.Error())
		return

	case errors.Is(err, models.ErrAlreadyApproved):
		sendConflictResponse(ctrl.logger, w, "ALREADY_APPROVED", err.Error())
		return

	case errors.Is(err, models.ErrNotUnderReview):
		sendConflictResponse(ctrl.logger, w, "NOT_UNDER_REVIEW", err.Error())
		return

	case errors.Is(err, models.ErrNoReviewerAssigned):
		sendPreconditionResponse(ctrl.logger, w, "NO_REVIEWER_ASSIGNED", err.Error())
		return

	case errors.Is(err, models.ErrChecksFailed):
		sendPreconditionResponse(ctrl.logger, w, "CHECKS_FAILED", err.Error())
		return

	case errors.Is(err, models.ErrIssuerUnavailable):
		ctrl.logger.Error("Badge issuer unavailable, approval rolled back", "commit", req.Commit)
		sendUnavailableResponse(ctrl.logger, w, err.Error())
		return

	case err != nil:
		ctrl.logger.Error("Failed to approve", "error", err, "commit", req.Commit)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseApprove{Approved: true}, http.StatusOK)
}

func (ctrl *TrackerController) Delete(w http.ResponseWriter, r *http.Request) {
	var req models.RequestDelete
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(ctrl.logger, w, "Invalid request body", http.StatusBadRequest)
		ctrl.logger.Error("Failed to decode request body", "error", err)
		return
	}

	userID, assessmentID, ok := ctrl.parsePairIDs(w, req.UserID, req.AssessmentID)
	if !ok {
		return
	}

	err := ctrl.service.DeleteEntry(r.Context(), userID, assessmentID)

	if errors.Is(err, models.ErrUserNotFound) ||
		errors.Is(err, models.ErrAssessmentNotFound) ||
		errors.Is(err, models.ErrEntryNotFound) {
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return
	}

	if err != nil {
		ctrl.logger.Error("Failed to delete entry", "error", err, "userID", req.UserID)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseDelete{Deleted: true}, http.StatusOK)
}

func (ctrl *TrackerController) GetEntry(w http.ResponseWriter, r *http.Request) {
	commit := r.URL.Query().Get("commit")
	if commit == "" {
		sendErrorResponse(ctrl.logger, w, "commit parameter is required", http.StatusBadRequest)
		return
	}

	entry, err := ctrl.service.GetEntryByCommit(r.Context(), commit)

	if errors.Is(err, models.ErrEntryNotFound) {
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return
	}

	if err != nil {
		ctrl.logger.Error("Failed to load entry", "error", err, "commit", commit)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseEntry{Entry: entry.ToResponse()}, http.StatusOK)
}

func (ctrl *TrackerController) parsePairIDs(w http.ResponseWriter, rawUserID, rawAssessmentID string) (uuid.UUID, uuid.UUID, bool) {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		sendErrorResponse(ctrl.logger, w, "invalid user id", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}

	assessmentID, err := uuid.Parse(rawAssessmentID)
	if err != nil {
		sendErrorResponse(ctrl.logger, w, "invalid assessment id", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, assessmentID, true
}
