package controllers

import (
	"AssessmentTrackerService/internal/models"
	"encoding/json"
	"log/slog"
	"net/http"
)

func sendJSONResponse(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func sendErrorResponse(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	sendJSONResponse(logger, w, models.Error{
		Code:    "ERROR",
		Message: message,
	}, statusCode)
}

func sendNotFoundResponse(logger *slog.Logger, w http.ResponseWriter, message string) {
	sendJSONResponse(logger, w, models.Error{
		Code:    "NOT_FOUND",
		Message: message,
	}, http.StatusNotFound)
}

func sendConflictResponse(logger *slog.Logger, w http.ResponseWriter, code, message string) {
	sendJSONResponse(logger, w, models.Error{
		Code:    code,
		Message: message,
	}, http.StatusConflict)
}

func sendPreconditionResponse(logger *slog.Logger, w http.ResponseWriter, code, message string) {
	sendJSONResponse(logger, w, models.Error{
		Code:    code,
		Message: message,
	}, http.StatusUnprocessableEntity)
}

func sendUnavailableResponse(logger *slog.Logger, w http.ResponseWriter, message string) {
	sendJSONResponse(logger, w, models.Error{
		Code:    "UNAVAILABLE",
		Message: message,
	}, http.StatusServiceUnavailable)
}
