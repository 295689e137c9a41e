package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/authnode/authnode/internal/logger"
	"github.com/authnode/authnode/internal/services"
)

// ResetConfirmer defines the interface for confirming a password reset.
type ResetConfirmer interface {
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
}

// ResetPasswordRequest represents the JSON body for confirming a reset
// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// One-time code from the reset notification
	// required: true
	// default: 123456
	OTP string `json:"otp"`

	// New password
	// required: true
	// default: newsecret123
	NewPassword string `json:"new_password"`
}

// ResetPasswordResponse represents a successful reset confirmation
// swagger:model ResetPasswordResponse
type ResetPasswordResponse struct {
	// Success message
	// default: Password has been reset
	Message string `json:"message"`
}

// ResetPasswordErrorResponse represents an error response for reset confirmation
// swagger:model ResetPasswordErrorResponse
type ResetPasswordErrorResponse struct {
	// Error message
	// default: Invalid or expired reset code
	Error string `json:"error"`
}

// NewResetPasswordHandler returns an HTTP handler for confirming a
// password reset with a one-time code.
// @Summary Confirm a password reset
// @Description Verifies the one-time code and sets the new password. The code is single-use and expires.
// @Tags auth
// @Accept json
// @Produce json
// @Param resetPasswordRequest body handlers.ResetPasswordRequest true "Reset confirmation"
// @Success 200 {object} handlers.ResetPasswordResponse "Password reset"
// @Failure 400 {object} handlers.ResetPasswordErrorResponse "Invalid or expired reset code / invalid request"
// @Failure 500 {object} handlers.ResetPasswordErrorResponse "Internal server error"
// @Router /api/auth/reset-password [post]
func NewResetPasswordHandler(svc ResetConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetPasswordRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ResetPasswordErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ResetPasswordErrorResponse{
				Error: "email, otp and new_password are required",
			})
			return
		}

		if err := svc.ConfirmPasswordReset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidResetRequest):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ResetPasswordErrorResponse{
					Error: "Invalid or expired reset code",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ResetPasswordErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ResetPasswordResponse{
			Message: "Password has been reset",
		})
	}
}
