package controllers

import (
	"AssessmentTrackerService/internal/models"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type UserController struct {
	service UserService
	logger  *slog.Logger
}

func NewUserController(service UserService, logger *slog.Logger) *UserController {
	return &UserController{
		service: service,
		logger:  logger,
	}
}

func (ctrl *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RequestRegisterUser
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(ctrl.logger, w, "Invalid request body", http.StatusBadRequest)
		ctrl.logger.Error("Failed to decode request body", "error", err)
		return
	}

	user, err := ctrl.service.Register(req.GithubUsername, req.Name, req.Email)
	if err != nil {
		ctrl.logger.Error("Failed to register user", "error", err, "username", req.GithubUsername)
		sendErrorResponse(ctrl.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseRegisterUser{User: *user}, http.StatusCreated)
}

func (ctrl *UserController) Get(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		sendErrorResponse(ctrl.logger, w, "username parameter is required", http.StatusBadRequest)
		return
	}

	user, err := ctrl.service.GetByUsername(username)

	if errors.Is(err, models.ErrUserNotFound) {
		sendNotFoundResponse(ctrl.logger, w, err.Error())
		return
	}

	if err != nil {
		ctrl.logger.Error("Failed to load user", "error", err, "username", username)
		sendErrorResponse(ctrl.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSONResponse(ctrl.logger, w, models.ResponseRegisterUser{User: *user}, http.StatusOK)
}
