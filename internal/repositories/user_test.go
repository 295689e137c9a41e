package repositories

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/authnode/authnode/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestRepo(t *testing.T) *UserRepository {
	t.Helper()
	return NewUserRepository(filepath.Join(t.TempDir(), "users.json"))
}

func TestUserRepository_InitCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	repo := NewUserRepository(path)

	err := repo.Init(context.Background())
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	var users []models.UserDB
	assert.NoError(t, json.Unmarshal(data, &users))
	assert.Empty(t, users)

	// second call is a no-op
	assert.NoError(t, repo.Init(context.Background()))
}

func TestUserRepository_InitMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	repo := NewUserRepository(path)
	err := repo.Init(context.Background())
	assert.Error(t, err)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.UserDB{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, byEmail)
	assert.Equal(t, created.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.NotNil(t, byUsername)

	byID, err := repo.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.NotNil(t, byID)

	either, err := repo.GetByEmailOrUsername(ctx, "nobody@example.com", "alice")
	assert.NoError(t, err)
	assert.NotNil(t, either)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, models.UserDB{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	assert.NoError(t, err)

	_, err = repo.Create(ctx, models.UserDB{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.Create(ctx, models.UserDB{Username: "other", Email: "alice@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepository_CreateRollbackOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	repo := NewUserRepository(path)
	ctx := context.Background()

	assert.NoError(t, repo.Init(ctx))

	// Replace the backing file with a directory so the next write fails.
	assert.NoError(t, os.Remove(path))
	assert.NoError(t, os.Mkdir(path, 0700))

	_, err := repo.Create(ctx, models.UserDB{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	assert.Error(t, err)

	// In-memory state must be rolled back.
	u, err := repo.GetByEmail(ctx, "alice@example.com")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepository_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.UserDB{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	assert.NoError(t, err)

	otp := "123456"
	exp := time.Now().Add(10 * time.Minute).UTC()
	updated, err := repo.Update(ctx, created.ID, models.UserPatch{
		ResetOTP:          &otp,
		ResetOTPExpiresAt: &exp,
	})
	assert.NoError(t, err)
	assert.NotNil(t, updated)
	assert.True(t, updated.HasPendingReset())
	assert.Equal(t, otp, *updated.ResetOTP)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))

	newHash := "newhash"
	updated, err = repo.Update(ctx, created.ID, models.UserPatch{
		PasswordHash:  &newHash,
		ClearResetOTP: true,
	})
	assert.NoError(t, err)
	assert.NotNil(t, updated)
	assert.Equal(t, "newhash", updated.PasswordHash)
	assert.False(t, updated.HasPendingReset())

	// id is immutable and unknown ids are not an error
	missing, err := repo.Update(ctx, uuid.New(), models.UserPatch{PasswordHash: &newHash})
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.UserDB{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	assert.NoError(t, err)

	removed, err := repo.Delete(ctx, created.ID)
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, created.ID)
	assert.NoError(t, err)
	assert.False(t, removed)

	u, err := repo.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepository_Clear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, models.UserDB{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	assert.NoError(t, err)
	_, err = repo.Create(ctx, models.UserDB{Username: "bob", Email: "bob@example.com", PasswordHash: "h"})
	assert.NoError(t, err)

	assert.NoError(t, repo.Clear(ctx))

	for _, email := range []string{"alice@example.com", "bob@example.com"} {
		u, err := repo.GetByEmail(ctx, email)
		assert.NoError(t, err)
		assert.Nil(t, u)
	}
}

func TestUserRepository_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	repo := NewUserRepository(path)
	created, err := repo.Create(ctx, models.UserDB{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	assert.NoError(t, err)

	reopened := NewUserRepository(path)
	u, err := reopened.GetByEmail(ctx, "alice@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, u)
	assert.Equal(t, created.ID, u.ID)
	assert.Equal(t, "h", u.PasswordHash)
}

func TestUserRepository_SnapshotCopies(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.UserDB{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	assert.NoError(t, err)

	// Mutating a returned record must not leak into the store.
	created.Username = "mallory"

	u, err := repo.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}
