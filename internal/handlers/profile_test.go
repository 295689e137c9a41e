package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/authnode/authnode/internal/middlewares"
	"github.com/authnode/authnode/internal/models"
	"github.com/authnode/authnode/internal/services"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProfileHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockProfileGetter(ctrl)
	userID := uuid.New()

	newRequest := func(withUser bool) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		if withUser {
			req = req.WithContext(middlewares.ContextWithUserID(req.Context(), userID))
		}
		return req
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.EXPECT().
			Profile(gomock.Any(), userID).
			Return(&models.UserPublic{ID: userID, Username: "john", Email: "john@example.com"}, nil)

		rec := httptest.NewRecorder()
		NewProfileHandler(mockSvc)(rec, newRequest(true))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ProfileResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "john", resp.User.Username)
		assert.NotContains(t, rec.Body.String(), "password")
		assert.NotContains(t, rec.Body.String(), "reset_otp")
	})

	t.Run("no user in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewProfileHandler(mockSvc)(rec, newRequest(false))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("user not found", func(t *testing.T) {
		mockSvc.EXPECT().
			Profile(gomock.Any(), userID).
			Return(nil, services.ErrUserNotFound)

		rec := httptest.NewRecorder()
		NewProfileHandler(mockSvc)(rec, newRequest(true))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("internal error", func(t *testing.T) {
		mockSvc.EXPECT().
			Profile(gomock.Any(), userID).
			Return(nil, errors.New("storage error"))

		rec := httptest.NewRecorder()
		NewProfileHandler(mockSvc)(rec, newRequest(true))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
