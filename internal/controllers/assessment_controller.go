package controllers

import (
	"AssessmentTrackerService/internal/models"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type AssessmentController struct {
	service AssessmentService
	logger  *slog.Logger
}

func NewAssessmentController(service AssessmentService, logger *slog.Logger) *AssessmentController {
	return &AssessmentController{
		service: service,
		logger:  logger,
	}
}

func (ctrl *AssessmentController) Upsert(w http.ResponseWriter, r *http.Request) {
	var req models.RequestUpsertAssessment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(ctrl.logger, w, "Invalid request body", http.StatusBadRequest)
		ctrl.logger.Error("Failed to decode request body", "error", err)
		return
	}

	assessment, err := ctrl.service.Upsert(&models.Assessment{
		Name:           req.Name,
		ReviewRequired: req.ReviewRequired,
		TemplateRepo:   req.TemplateRepo,
		Organization:   req.Organization,
		RepoPrefix:     req.RepoPrefix,
	})

	if err != nil {
		ctrl.logger.Error("Failed to upsert assessment", "error", err, "name", req.Name)
		sendErrorResponse(ctrl.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseUpsertAssessment{Assessment: *assessment}, http.StatusOK)
}

func (ctrl *AssessmentController) Get(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		sendErrorResponse(ctrl.logger, w, "name parameter is required", http.StatusBadRequest)
		return
	}

	assessment, err := ctrl.service.GetByName(name)

	if errors.Is(err, models.ErrAssessmentNotFound) {
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return
	}

	if err != nil {
		ctrl.logger.Error("Failed to load assessment", "error", err, "name", name)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseUpsertAssessment{Assessment: *assessment}, http.StatusOK)
}

func (ctrl *AssessmentController) List(w http.ResponseWriter, r *http.Request) {
	assessments, err := ctrl.service.List()
	if err != nil {
		ctrl.logger.Error("Failed to list assessments", "error", err)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, assessments, http.StatusOK)
}
