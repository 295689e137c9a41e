package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/authnode/authnode/internal/logger"
	"github.com/authnode/authnode/internal/models"
	"github.com/authnode/authnode/internal/services"
)

// Registerer defines the interface that the signup service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password, email string) (*models.UserPublic, error)
}

// SignupRequest represents the JSON body for user signup
// swagger:model SignupRequest
type SignupRequest struct {
	// Username
	// required: true
	// default: john_doe
	Username string `json:"username"`

	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// SignupResponse represents a successful signup response
// swagger:model SignupResponse
type SignupResponse struct {
	// Success message
	// default: User registered successfully
	Message string `json:"message"`

	// Created user
	User models.UserPublic `json:"user"`
}

// SignupErrorResponse represents an error response for signup
// swagger:model SignupErrorResponse
type SignupErrorResponse struct {
	// Error message
	// default: Username or email already exists
	Error string `json:"error"`
}

// NewSignupHandler returns an HTTP handler for user signup.
// @Summary Register a new user
// @Description Creates a new user account. Ensures unique username and email. Password is hashed before storing.
// @Tags auth
// @Accept json
// @Produce json
// @Param signupRequest body handlers.SignupRequest true "User signup request"
// @Success 201 {object} handlers.SignupResponse "User successfully registered"
// @Failure 400 {object} handlers.SignupErrorResponse "Username or email already exists / invalid request"
// @Failure 500 {object} handlers.SignupErrorResponse "Internal server error"
// @Router /api/auth/signup [post]
func NewSignupHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SignupErrorResponse{
				Error: "invalid request body",
			})
			return
		}

		if req.Username == "" || req.Email == "" || req.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SignupErrorResponse{
				Error: "username, email and password are required",
			})
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Password, req.Email)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserAlreadyExists):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(SignupErrorResponse{
					Error: "Username or email already exists",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(SignupErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SignupResponse{
			Message: "User registered successfully",
			User:    *user,
		})
	}
}
