package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/authnode/authnode/internal/logger"
)

// ResetRequester defines the interface for issuing password-reset codes.
type ResetRequester interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

// ForgotPasswordRequest represents the JSON body for a reset request
// swagger:model ForgotPasswordRequest
type ForgotPasswordRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`
}

// ForgotPasswordResponse represents the reset-request response. It is the
// same whether or not the email is registered.
// swagger:model ForgotPasswordResponse
type ForgotPasswordResponse struct {
	// Message
	// default: If the email is registered, a reset code has been sent
	Message string `json:"message"`
}

// ForgotPasswordErrorResponse represents an error response for reset requests
// swagger:model ForgotPasswordErrorResponse
type ForgotPasswordErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewForgotPasswordHandler returns an HTTP handler for requesting a
// password-reset code.
// @Summary Request a password reset code
// @Description Sends a one-time reset code to the given email. The response never reveals whether the email is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param forgotPasswordRequest body handlers.ForgotPasswordRequest true "Reset request"
// @Success 200 {object} handlers.ForgotPasswordResponse "Reset code sent if the account exists"
// @Failure 400 {object} handlers.ForgotPasswordErrorResponse "Invalid request body"
// @Failure 500 {object} handlers.ForgotPasswordErrorResponse "Internal server error"
// @Router /api/auth/forgot-password [post]
func NewForgotPasswordHandler(svc ResetRequester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ForgotPasswordRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ForgotPasswordErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		if err := svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ForgotPasswordErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ForgotPasswordResponse{
			Message: "If the email is registered, a reset code has been sent",
		})
	}
}
