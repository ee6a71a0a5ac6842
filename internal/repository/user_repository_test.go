package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avisions/backoffice/internal/model"
)

func newTestUserRepo(t *testing.T) *UserRepo {
	t.Helper()
	return NewUserRepo(NewMemoryStore())
}

func TestCreateAndVerifyPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestUserRepo(t)

	created, err := repo.Create(ctx, "Alice", "Alice@Example.com", model.RoleAdmin, "s3cret-pass", true)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", created.Email, "email must be normalized on create")
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.CreatedAt)

	u, err := repo.VerifyPassword(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotNil(t, u, "correct password must verify")
	require.Equal(t, created.ID, u.ID)

	u, err = repo.VerifyPassword(ctx, "alice@example.com", "wrong-pass")
	require.NoError(t, err)
	require.Nil(t, u, "wrong password must not verify")

	u, err = repo.VerifyPassword(ctx, "nobody@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Nil(t, u, "unknown email must not verify")
}

func TestCreateDuplicateEmailCaseInsensitive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestUserRepo(t)

	_, err := repo.Create(ctx, "A", "A@x.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "B", "a@X.COM", model.RoleEditor, "password2", true)
	require.ErrorIs(t, err, ErrEmailExists)

	// The failed create must not have written anything.
	require.Equal(t, 1, repo.Count(ctx))
}

func TestUpdatePasswordRotatesSalt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestUserRepo(t)

	created, err := repo.Create(ctx, "Alice", "alice@x.com", model.RoleAdmin, "first-pass", true)
	require.NoError(t, err)

	before, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, before)

	newPass := "second-pass"
	_, err = repo.Update(ctx, created.ID, model.UserPatch{Password: &newPass})
	require.NoError(t, err)

	after, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, after)

	require.NotEqual(t, before.PasswordSalt, after.PasswordSalt, "password change must regenerate the salt")
	require.NotEqual(t, before.PasswordHash, after.PasswordHash, "password change must regenerate the hash")

	u, err := repo.VerifyPassword(ctx, "alice@x.com", "second-pass")
	require.NoError(t, err)
	require.NotNil(t, u)
	u, err = repo.VerifyPassword(ctx, "alice@x.com", "first-pass")
	require.NoError(t, err)
	require.Nil(t, u, "old password must stop verifying")
}

func TestUpdateEmailUniqueness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestUserRepo(t)

	a, err := repo.Create(ctx, "A", "a@x.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "B", "b@x.com", model.RoleEditor, "password2", true)
	require.NoError(t, err)

	taken := "B@x.com"
	_, err = repo.Update(ctx, a.ID, model.UserPatch{Email: &taken})
	require.ErrorIs(t, err, ErrEmailExists)

	// Re-saving the user's own email in a different case is not a conflict.
	own := "A@X.com"
	updated, err := repo.Update(ctx, a.ID, model.UserPatch{Email: &own})
	require.NoError(t, err)
	require.Equal(t, "a@x.com", updated.Email)
}

func TestUpdateRefreshesTimestamp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestUserRepo(t)

	created, err := repo.Create(ctx, "Alice", "alice@x.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)

	inactive := false
	updated, err := repo.Update(ctx, created.ID, model.UserPatch{Active: &inactive})
	require.NoError(t, err)
	require.False(t, updated.Active)
	require.Equal(t, created.CreatedAt, updated.CreatedAt, "CreatedAt is immutable")
}

func TestUpdateUnknownID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestUserRepo(t)

	name := "X"
	_, err := repo.Update(ctx, "no-such-id", model.UserPatch{Name: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRemoveDistinguishesNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestUserRepo(t)

	created, err := repo.Create(ctx, "Alice", "alice@x.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(ctx, created.ID))
	require.ErrorIs(t, repo.Remove(ctx, created.ID), ErrUserNotFound, "second delete must report not-found")
	require.ErrorIs(t, repo.Remove(ctx, "never-existed"), ErrUserNotFound)
}

func TestListNeverExposesCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestUserRepo(t)

	_, err := repo.Create(ctx, "Alice", "alice@x.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "Bob", "bob@x.com", model.RoleEditor, "password2", false)
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	raw, err := json.Marshal(users)
	require.NoError(t, err)
	body := strings.ToLower(string(raw))
	require.NotContains(t, body, "passwordhash")
	require.NotContains(t, body, "passwordsalt")
}

func TestCountFailsOpenToZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := NewUserRepo(failingStore{})
	require.Equal(t, 0, repo.Count(ctx), "store errors must resolve to an empty count")
}

// failingStore errors on every operation, standing in for an unreachable
// Redis.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", errStoreDown }
func (failingStore) Set(context.Context, string, string) error   { return errStoreDown }
func (failingStore) Del(context.Context, ...string) (int64, error) {
	return 0, errStoreDown
}
func (failingStore) SAdd(context.Context, string, ...string) error { return errStoreDown }
func (failingStore) SRem(context.Context, string, ...string) (int64, error) {
	return 0, errStoreDown
}
func (failingStore) SMembers(context.Context, string) ([]string, error) { return nil, errStoreDown }
func (failingStore) HSet(context.Context, string, map[string]string) error {
	return errStoreDown
}
func (failingStore) HGetAll(context.Context, string) (map[string]string, error) {
	return nil, errStoreDown
}

var errStoreDown = errors.New("store down")
