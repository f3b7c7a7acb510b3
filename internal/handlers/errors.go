package handlers

import (
	"errors"
	"net/http"

	"todoList/internal/logger"
	rep "todoList/internal/repository"
	"todoList/internal/service"

	"go.uber.org/zap"
)

const internalErrorMessage = "something went wrong, please try again"

func handleBusinessError(w http.ResponseWriter, err error) bool {
	businessErr, ok := service.AsBusinessError(err)
	if !ok {
		return false
	}
	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: business error",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// handleServiceError answers business errors with their own status and
// everything else with one generic message.
func handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if handleBusinessError(w, err) {
		return
	}
	if errors.Is(err, rep.ErrAlreadyExists) {
		responseWithError(w, http.StatusConflict, "task id already exists")
		return
	}
	logger.Error("HTTP: service error", err,
		zap.String("operation", op),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, internalErrorMessage)
}
