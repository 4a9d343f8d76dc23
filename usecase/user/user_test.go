package user_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/pkg/password"
	"github.com/fastygo/eventhub/repository"
	boltrepo "github.com/fastygo/eventhub/repository/bolt"
	"github.com/fastygo/eventhub/usecase/user"
)

func newUseCase(t *testing.T) (*user.UseCase, repository.UserRepository) {
	t.Helper()
	store, err := boltrepo.Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	users := boltrepo.NewUserRepository(store)
	return user.New(users, nil, nil), users
}

func seed(t *testing.T, users repository.UserRepository, name string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestDeleteUserRefusesAdminTarget(t *testing.T) {
	uc, users := newUseCase(t)
	ctx := context.Background()

	root := seed(t, users, "root", domain.RoleAdmin)
	other := seed(t, users, "other", domain.RoleAdmin)

	err := uc.DeleteUser(ctx, root.Principal(), other.ID)
	assert.ErrorIs(t, err, domain.ErrForbiddenAdminDeletion)

	_, err = users.GetByID(ctx, other.ID)
	require.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	uc, users := newUseCase(t)
	ctx := context.Background()

	root := seed(t, users, "root", domain.RoleAdmin)
	alice := seed(t, users, "alice", domain.RoleUser)
	bob := seed(t, users, "bob", domain.RoleUser)

	assert.ErrorIs(t, uc.DeleteUser(ctx, alice.Principal(), bob.ID), domain.ErrForbidden)
	assert.ErrorIs(t, uc.DeleteUser(ctx, root.Principal(), "missing"), domain.ErrUserNotFound)

	require.NoError(t, uc.DeleteUser(ctx, root.Principal(), bob.ID))
	_, err := users.GetByID(ctx, bob.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListAndGetUsers(t *testing.T) {
	uc, users := newUseCase(t)
	ctx := context.Background()

	root := seed(t, users, "root", domain.RoleAdmin)
	alice := seed(t, users, "alice", domain.RoleUser)
	bob := seed(t, users, "bob", domain.RoleUser)

	_, err := uc.ListUsers(ctx, alice.Principal(), repository.UserFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	all, err := uc.ListUsers(ctx, root.Principal(), repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	self, err := uc.GetUser(ctx, alice.Principal(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", self.Name)

	_, err = uc.GetUser(ctx, alice.Principal(), bob.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.GetUser(ctx, root.Principal(), bob.ID)
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	uc, users := newUseCase(t)
	ctx := context.Background()

	alice := seed(t, users, "alice", domain.RoleUser)
	bob := seed(t, users, "bob", domain.RoleUser)

	name := "Alice Liddell"
	email := "ALICE@wonderland.example"
	secret := "rabbit-hole"
	updated, err := uc.UpdateProfile(ctx, alice.Principal(), alice.ID, domain.UserPatch{
		Name:     &name,
		Email:    &email,
		Password: &secret,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "alice@wonderland.example", updated.Email)

	stored, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, password.Matches(stored.PasswordHash, secret))

	taken := bob.Email
	_, err = uc.UpdateProfile(ctx, alice.Principal(), alice.ID, domain.UserPatch{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	short := "abc"
	_, err = uc.UpdateProfile(ctx, alice.Principal(), alice.ID, domain.UserPatch{Password: &short})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	long := strings.Repeat("x", password.MaxLength+8)
	_, err = uc.UpdateProfile(ctx, alice.Principal(), alice.ID, domain.UserPatch{Password: &long})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	stored, err = users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, password.Matches(stored.PasswordHash, secret))

	_, err = uc.UpdateProfile(ctx, bob.Principal(), alice.ID, domain.UserPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
