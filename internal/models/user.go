package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor applied to every stored password.
const PasswordHashCost = 10

// UserDB represents a user record as persisted in the store file.
type UserDB struct {
	ID           uuid.UUID `json:"id"`            // Primary key, immutable
	Username     string    `json:"username"`      // Unique username
	Email        string    `json:"email"`         // Unique email
	PasswordHash string    `json:"password_hash"` // bcrypt hash, never exposed

	// ResetOTP holds the pending password-reset code in plaintext.
	// It is short-lived (see the expiry field) and cleared on a
	// successful reset, so it is stored as-is rather than hashed.
	// Both reset fields are set together or nil together.
	ResetOTP          *string    `json:"reset_otp,omitempty"`
	ResetOTPExpiresAt *time.Time `json:"reset_otp_expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"` // Creation timestamp
	UpdatedAt time.Time `json:"updated_at"` // Refreshed on every mutation
}

// UserPublic is the externally visible projection of a user record.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPatch describes a partial update to a user record. Nil fields are
// left untouched. ClearResetOTP removes both reset fields at once so the
// pair invariant holds.
type UserPatch struct {
	PasswordHash      *string
	ResetOTP          *string
	ResetOTPExpiresAt *time.Time
	ClearResetOTP     bool
}

// HashPassword produces a salted one-way hash of the given plaintext.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *UserDB) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

// HasPendingReset reports whether a reset OTP pair is currently stored.
func (u *UserDB) HasPendingReset() bool {
	return u.ResetOTP != nil && u.ResetOTPExpiresAt != nil
}

// Public returns a copy of the record without the password hash and
// reset OTP fields.
func (u *UserDB) Public() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
