package controllers

import (
	"AssessmentTrackerService/internal/models"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type ReviewerController struct {
	service ReviewerService
	logger  *slog.Logger
}

func NewReviewerController(service ReviewerService, logger *slog.Logger) *ReviewerController {
	return &ReviewerController{
		service: service,
		logger:  logger,
	}
}

func (ctrl *ReviewerController) Add(w http.ResponseWriter, r *http.Request) {
	var req models.RequestAddReviewer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(ctrl.logger, w, "Invalid request body", http.StatusBadRequest)
		ctrl.logger.Error("Failed to decode request body", "error", err)
		return
	}

	reviewer, err := ctrl.service.Add(req.Username)

	if errors.Is(err, models.ErrUserNotFound) {
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return
	}

	if err != nil {
		ctrl.logger.Error("Failed to add reviewer", "error", err, "username", req.Username)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseAddReviewer{Reviewer: reviewer.ToResponse()}, http.StatusCreated)
}

func (ctrl *ReviewerController) List(w http.ResponseWriter, r *http.Request) {
	reviewers, err := ctrl.service.List()
	if err != nil {
		ctrl.logger.Error("Failed to list reviewers", "error", err)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	dtos := make([]models.ReviewerDTO, len(reviewers))
	for i := range reviewers {
		dtos[i] = reviewers[i].ToResponse()
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseListReviewers{Reviewers: dtos}, http.StatusOK)
}
