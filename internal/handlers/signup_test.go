package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/authnode/authnode/internal/models"
	"github.com/authnode/authnode/internal/services"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSignupHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockRegisterer(ctrl)
	userID := uuid.New()

	tests := []struct {
		name         string
		inputBody    interface{}
		mockSetup    func()
		expectedCode int
	}{
		{
			name: "success",
			inputBody: SignupRequest{
				Username: "john",
				Email:    "john@example.com",
				Password: "pass123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "john", "pass123", "john@example.com").
					Return(&models.UserPublic{ID: userID, Username: "john", Email: "john@example.com"}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "invalid JSON",
			inputBody:    "{invalid json}",
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "missing fields",
			inputBody: SignupRequest{
				Username: "john",
			},
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "duplicate user",
			inputBody: SignupRequest{
				Username: "john",
				Email:    "john@example.com",
				Password: "pass123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "john", "pass123", "john@example.com").
					Return(nil, services.ErrUserAlreadyExists)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "internal error",
			inputBody: SignupRequest{
				Username: "john",
				Email:    "john@example.com",
				Password: "pass123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Register(gomock.Any(), "john", "pass123", "john@example.com").
					Return(nil, errors.New("storage error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			var bodyBytes []byte
			switch v := tt.inputBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, _ = json.Marshal(v)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(bodyBytes))
			rec := httptest.NewRecorder()

			NewSignupHandler(mockSvc)(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)

			if tt.expectedCode == http.StatusCreated {
				var resp SignupResponse
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, userID, resp.User.ID)
				assert.NotContains(t, rec.Body.String(), "password")
			}
		})
	}
}
