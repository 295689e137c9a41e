package services

import (
	"context"
	"errors"
	"time"

	"github.com/authnode/authnode/internal/logger"
	"github.com/authnode/authnode/internal/models"
	"github.com/authnode/authnode/internal/repositories"
	"github.com/google/uuid"
)

// Error variables
var (
	ErrUserAlreadyExists   = errors.New("username or email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidResetRequest = errors.New("invalid or expired reset code")
	ErrUserNotFound        = errors.New("user not found")
)

// OTPTTL is how long an issued reset code stays valid.
const OTPTTL = 10 * time.Minute

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (*models.UserDB, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Create(ctx context.Context, user models.UserDB) (*models.UserDB, error)
	Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.UserDB, error)
}

// JWTGenerator defines an interface for generating session tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, error)
}

// OTPNotifier delivers a one-time code to the user out-of-band. The
// delivered flag and reference describe the handoff outcome; callers of
// the reset flow never see either.
type OTPNotifier interface {
	SendOneTimeCode(ctx context.Context, destination, code string) (delivered bool, reference string)
}

// AuthService handles signup, login, password reset and profile lookups.
type AuthService struct {
	reader   UserReader
	writer   UserWriter
	jwt      JWTGenerator
	notifier OTPNotifier
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator, notifier OTPNotifier) *AuthService {
	return &AuthService{
		reader:   reader,
		writer:   writer,
		jwt:      jwt,
		notifier: notifier,
	}
}

// Register creates a new user with a hashed password and returns its
// public view.
func (svc *AuthService) Register(ctx context.Context, username, password, email string) (*models.UserPublic, error) {
	existing, err := svc.reader.GetByEmailOrUsername(ctx, email, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return nil, err
	}
	if existing != nil {
		logger.Log.Infow("registration rejected, user exists", "username", username)
		return nil, ErrUserAlreadyExists
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Create(ctx, models.UserDB{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// The store re-checks uniqueness under its lock; a racing signup
		// surfaces here rather than in the lookup above.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}

// Login authenticates a user by email or username and returns a session
// token. Unknown identifiers and wrong passwords are deliberately
// indistinguishable.
func (svc *AuthService) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := svc.reader.GetByEmailOrUsername(ctx, identifier, identifier)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil || !user.CheckPassword(password) {
		logger.Log.Infow("login rejected")
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return "", err
	}

	return token, nil
}

// RequestPasswordReset issues a one-time reset code for the given email and
// hands it to the notifier. An unknown email succeeds without side effects,
// and delivery failures are ignored, so responses never reveal whether an
// account exists.
func (svc *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return err
	}
	if user == nil {
		return nil
	}

	code, err := generateOTP(otpLength)
	if err != nil {
		logger.Log.Errorw("failed to generate reset code", "err", err)
		return err
	}
	expiresAt := time.Now().Add(OTPTTL).UTC()

	if _, err := svc.writer.Update(ctx, user.ID, models.UserPatch{
		ResetOTP:          &code,
		ResetOTPExpiresAt: &expiresAt,
	}); err != nil {
		logger.Log.Errorw("failed to store reset code", "err", err)
		return err
	}

	// Fire-and-forget: the caller gets success regardless of delivery.
	delivered, reference := svc.notifier.SendOneTimeCode(ctx, user.Email, code)
	logger.Log.Infow("reset code handed off", "delivered", delivered, "reference", reference)

	return nil
}

// ConfirmPasswordReset verifies the submitted code and replaces the
// password. The stored pair is cleared on success; a mismatch leaves it
// untouched and an expired code never succeeds.
func (svc *AuthService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return err
	}
	if user == nil || !user.HasPendingReset() {
		return ErrInvalidResetRequest
	}
	if *user.ResetOTP != code {
		logger.Log.Infow("reset code mismatch", "user_id", user.ID)
		return ErrInvalidResetRequest
	}
	if time.Now().After(*user.ResetOTPExpiresAt) {
		logger.Log.Infow("reset code expired", "user_id", user.ID)
		return ErrInvalidResetRequest
	}

	hash, err := models.HashPassword(newPassword)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	if _, err := svc.writer.Update(ctx, user.ID, models.UserPatch{
		PasswordHash:  &hash,
		ClearResetOTP: true,
	}); err != nil {
		logger.Log.Errorw("failed to update password", "err", err)
		return err
	}

	logger.Log.Infow("password reset completed", "user_id", user.ID)
	return nil
}

// Profile returns the public view of the user with the given id.
func (svc *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.UserPublic, error) {
	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	pub := user.Public()
	return &pub, nil
}
