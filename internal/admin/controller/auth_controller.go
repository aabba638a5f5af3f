package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fournil/internal/admin/service"
	apperrors "fournil/internal/errors"
)

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*service.Session, error)
	SignIn(ctx context.Context, email, password string) (*service.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	RequestMagicLink(ctx context.Context, email string) error
	RedeemMagicLink(ctx context.Context, token string) (*service.Session, error)
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type TokenRequest struct {
	Token    string `json:"token"`
	Password string `json:"password,omitempty"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
}

type AuthController struct {
	auth   AuthService
	logger *zap.Logger
}

func NewAuthController(auth AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{
		auth:   auth,
		logger: logger,
	}
}

func (c *AuthController) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	session, err := c.auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		c.handleAuthError(w, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, sessionResponse(session))
}

func (c *AuthController) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	session, err := c.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		c.handleAuthError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, sessionResponse(session))
}

func (c *AuthController) HandleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	if err := c.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		c.handleAuthError(w, err)
		return
	}

	// Always the same response, whether or not the email exists.
	c.writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

func (c *AuthController) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	if err := c.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		c.handleAuthError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (c *AuthController) HandleRequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	if err := c.auth.RequestMagicLink(r.Context(), req.Email); err != nil {
		c.handleAuthError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"message": "magic link sent"})
}

func (c *AuthController) HandleRedeemMagicLink(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	session, err := c.auth.RedeemMagicLink(r.Context(), req.Token)
	if err != nil {
		c.handleAuthError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, sessionResponse(session))
}

// HandleSession echoes the principal RequireAdmin already resolved, so the
// client can confirm its stored token is still good.
func (c *AuthController) HandleSession(w http.ResponseWriter, r *http.Request) {
	principal := service.PrincipalFrom(r.Context())
	if principal == nil {
		c.writeError(w, http.StatusUnauthorized, "AUTH_ERROR", "authentication required", nil)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{
		"userId":  principal.UserID,
		"email":   principal.Email,
		"isAdmin": principal.IsAdmin,
	})
}

// HandleSignOut is a no-op on the server side. Sessions are stateless
// tokens; the client discards its copy.
func (c *AuthController) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (c *AuthController) handleAuthError(w http.ResponseWriter, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}

	if ae, ok := apperrors.IsAuthError(err); ok {
		c.writeError(w, http.StatusUnauthorized, "AUTH_ERROR", ae.Message, nil)
		return
	}

	if ce, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, http.StatusConflict, "CONFLICT", ce.Message, nil)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusUnauthorized, "AUTH_ERROR", "invalid or expired session", nil)
		return
	}

	c.logger.Error("unexpected auth error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func sessionResponse(session *service.Session) SessionResponse {
	return SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		UserID:    session.Principal.UserID,
		Email:     session.Principal.Email,
		IsAdmin:   session.Principal.IsAdmin,
	}
}

func (c *AuthController) writeError(w http.ResponseWriter, statusCode int, code, message string, details []apperrors.ValidationDetail) {
	body := map[string]any{
		"error":   code,
		"message": message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	c.writeJSON(w, statusCode, body)
}

func (c *AuthController) writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("writing response failed", zap.Error(err))
	}
}
