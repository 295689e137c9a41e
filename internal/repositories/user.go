package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/authnode/authnode/internal/logger"
	"github.com/authnode/authnode/internal/models"
	"github.com/google/uuid"
)

// ErrDuplicate is returned when a create would violate username or email
// uniqueness.
var ErrDuplicate = errors.New("username or email already taken")

// UserRepository is a file-backed collection of user records. The whole
// collection is kept in memory and rewritten to the backing file on every
// mutation. All operations are serialized behind a single mutex, so at most
// one read-modify-persist cycle is in flight at a time.
type UserRepository struct {
	mu          sync.Mutex
	path        string
	users       []models.UserDB
	initialized bool
}

// NewUserRepository creates a repository backed by the file at path.
// The file is not touched until Init or the first operation.
func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

// Init loads all records from the backing file. It is idempotent: repeated
// calls are no-ops. A missing file is created with an empty collection; an
// unreadable or malformed file is an error.
func (r *UserRepository) Init(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initLocked()
}

func (r *UserRepository) initLocked() error {
	if r.initialized {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read user store %s: %w", r.path, err)
		}
		r.users = []models.UserDB{}
		if err := r.persistLocked(); err != nil {
			return err
		}
		r.initialized = true
		logger.Log.Infow("user store created", "path", r.path)
		return nil
	}

	var users []models.UserDB
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("decode user store %s: %w", r.path, err)
	}

	r.users = users
	r.initialized = true
	logger.Log.Infow("user store loaded", "path", r.path, "users", len(users))
	return nil
}

func (r *UserRepository) persistLocked() error {
	data, err := json.MarshalIndent(r.users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user store: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("write user store %s: %w", r.path, err)
	}
	return nil
}

// findLocked returns the index of the first record matching the predicate,
// or -1 if none matches.
func (r *UserRepository) findLocked(match func(*models.UserDB) bool) int {
	for i := range r.users {
		if match(&r.users[i]) {
			return i
		}
	}
	return -1
}

func (r *UserRepository) getLocked(match func(*models.UserDB) bool) *models.UserDB {
	i := r.findLocked(match)
	if i < 0 {
		return nil
	}
	u := r.users[i] // copy; callers hold a point-in-time snapshot
	return &u
}

// GetByEmail returns the user with the given email, or nil if absent.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.UserDB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return nil, err
	}
	return r.getLocked(func(u *models.UserDB) bool { return u.Email == email }), nil
}

// GetByUsername returns the user with the given username, or nil if absent.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.UserDB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return nil, err
	}
	return r.getLocked(func(u *models.UserDB) bool { return u.Username == username }), nil
}

// GetByID returns the user with the given id, or nil if absent.
func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.UserDB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return nil, err
	}
	return r.getLocked(func(u *models.UserDB) bool { return u.ID == id }), nil
}

// GetByEmailOrUsername returns the first user matching either field,
// or nil if none matches.
func (r *UserRepository) GetByEmailOrUsername(_ context.Context, email, username string) (*models.UserDB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return nil, err
	}
	return r.getLocked(func(u *models.UserDB) bool {
		return u.Email == email || u.Username == username
	}), nil
}

// Create assigns a fresh id and timestamps, appends the record and persists
// the collection. Uniqueness of username and email is re-checked under the
// lock, so two racing signups cannot both commit. If the write fails the
// in-memory append is rolled back.
func (r *UserRepository) Create(_ context.Context, user models.UserDB) (*models.UserDB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return nil, err
	}

	if i := r.findLocked(func(u *models.UserDB) bool {
		return u.Email == user.Email || u.Username == user.Username
	}); i >= 0 {
		return nil, ErrDuplicate
	}

	now := time.Now().UTC()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users = append(r.users, user)
	if err := r.persistLocked(); err != nil {
		r.users = r.users[:len(r.users)-1]
		return nil, err
	}

	logger.Log.Infow("user created", "id", user.ID, "username", user.Username)
	return &user, nil
}

// Update merges the patch into the matching record, refreshes UpdatedAt and
// persists. It returns nil without error when no record matches. A failed
// write restores the previous record.
func (r *UserRepository) Update(_ context.Context, id uuid.UUID, patch models.UserPatch) (*models.UserDB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return nil, err
	}

	i := r.findLocked(func(u *models.UserDB) bool { return u.ID == id })
	if i < 0 {
		return nil, nil
	}

	prev := r.users[i]
	u := &r.users[i]

	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.ClearResetOTP {
		u.ResetOTP = nil
		u.ResetOTPExpiresAt = nil
	} else if patch.ResetOTP != nil && patch.ResetOTPExpiresAt != nil {
		u.ResetOTP = patch.ResetOTP
		u.ResetOTPExpiresAt = patch.ResetOTPExpiresAt
	}
	u.UpdatedAt = time.Now().UTC()

	if err := r.persistLocked(); err != nil {
		r.users[i] = prev
		return nil, err
	}

	updated := *u
	logger.Log.Infow("user updated", "id", id)
	return &updated, nil
}

// Delete removes the matching record and persists. It reports whether a
// record was removed.
func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return false, err
	}

	i := r.findLocked(func(u *models.UserDB) bool { return u.ID == id })
	if i < 0 {
		return false, nil
	}

	prev := r.users
	r.users = append(append([]models.UserDB{}, r.users[:i]...), r.users[i+1:]...)
	if err := r.persistLocked(); err != nil {
		r.users = prev
		return false, err
	}

	logger.Log.Infow("user deleted", "id", id)
	return true, nil
}

// Clear empties the collection and persists. Intended for tests and
// administrative use.
func (r *UserRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.initLocked(); err != nil {
		return err
	}

	prev := r.users
	r.users = []models.UserDB{}
	if err := r.persistLocked(); err != nil {
		r.users = prev
		return err
	}

	logger.Log.Infow("user store cleared", "path", r.path)
	return nil
}
