package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"todoList/internal/auth"
	"todoList/internal/handlers/dto"
	"todoList/internal/logger"
	"todoList/internal/middleware"
	"todoList/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{Auth: a}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("HTTP: invalid JSON", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	session, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		handleBusinessError(w, loginError(err))
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: session.Token, Email: session.Email})
}

func loginError(err error) *service.BusinessError {
	switch {
	case errors.Is(err, auth.ErrEmptyEmail):
		return service.NewValidationError("email", "please enter an email")
	case errors.Is(err, auth.ErrEmptyPassword):
		return service.NewValidationError("password", "please enter a password")
	default:
		return service.NewInvalidCredentials(err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Auth.Logout(middleware.GetToken(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Auth.Users())
}
