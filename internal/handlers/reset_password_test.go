package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/authnode/authnode/internal/services"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestResetPasswordHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockResetConfirmer(ctrl)

	tests := []struct {
		name         string
		inputBody    interface{}
		mockSetup    func()
		expectedCode int
	}{
		{
			name: "success",
			inputBody: ResetPasswordRequest{
				Email:       "john@example.com",
				OTP:         "123456",
				NewPassword: "newpass",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					ConfirmPasswordReset(gomock.Any(), "john@example.com", "123456", "newpass").
					Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "invalid JSON",
			inputBody:    "{invalid json}",
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "missing fields",
			inputBody: ResetPasswordRequest{
				Email: "john@example.com",
			},
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "invalid or expired code",
			inputBody: ResetPasswordRequest{
				Email:       "john@example.com",
				OTP:         "000000",
				NewPassword: "newpass",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					ConfirmPasswordReset(gomock.Any(), "john@example.com", "000000", "newpass").
					Return(services.ErrInvalidResetRequest)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "internal error",
			inputBody: ResetPasswordRequest{
				Email:       "john@example.com",
				OTP:         "123456",
				NewPassword: "newpass",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					ConfirmPasswordReset(gomock.Any(), "john@example.com", "123456", "newpass").
					Return(errors.New("storage error"))
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

			req := httptest.NewRequest(http.MethodPost, "/api/auth/reset-password", bytes.NewReader(bodyBytes))
			rec := httptest.NewRecorder()

			NewResetPasswordHandler(mockSvc)(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}
