package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/authnode/authnode/internal/logger"
	"github.com/authnode/authnode/internal/middlewares"
	"github.com/authnode/authnode/internal/models"
	"github.com/authnode/authnode/internal/services"
	"github.com/google/uuid"
)

// ProfileGetter defines the interface for reading a user profile.
type ProfileGetter interface {
	Profile(ctx context.Context, userID uuid.UUID) (*models.UserPublic, error)
}

// ProfileResponse represents a profile response
// swagger:model ProfileResponse
type ProfileResponse struct {
	// Authenticated user
	User models.UserPublic `json:"user"`
}

// ProfileErrorResponse represents an error response for profile retrieval
// swagger:model ProfileErrorResponse
type ProfileErrorResponse struct {
	// Error message
	// default: User not found
	Error string `json:"error"`
}

// NewProfileHandler returns an HTTP handler for retrieving the
// authenticated user's profile.
// @Summary Get own profile
// @Description Returns the profile of the user identified by the bearer token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handlers.ProfileResponse "User profile"
// @Failure 401 "Missing or invalid token"
// @Failure 404 {object} handlers.ProfileErrorResponse "User not found"
// @Failure 500 {object} handlers.ProfileErrorResponse "Internal server error"
// @Router /api/auth/profile [get]
func NewProfileHandler(svc ProfileGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		user, err := svc.Profile(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "User not found",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ProfileResponse{
			User: *user,
		})
	}
}
