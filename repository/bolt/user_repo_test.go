package bolt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/repository"
)

func TestUserRepositoryEmailIsUniqueAndCaseInsensitive(t *testing.T) {
	repo := NewUserRepository(openTestStore(t))
	ctx := context.Background()

	alice := &domain.User{Name: "Alice", Email: "Alice@Example.com", PasswordHash: "hash", Role: domain.RoleUser}
	require.NoError(t, repo.Create(ctx, alice))
	assert.Equal(t, "alice@example.com", alice.Email)

	err := repo.Create(ctx, &domain.User{Name: "Other", Email: "ALICE@example.com", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	loaded, err := repo.GetByEmail(ctx, " alice@EXAMPLE.com ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, loaded.ID)
	assert.Equal(t, "hash", loaded.PasswordHash)
}

func TestUserRepositoryUpdateMovesEmailIndex(t *testing.T) {
	repo := NewUserRepository(openTestStore(t))
	ctx := context.Background()

	alice := &domain.User{Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser}
	bob := &domain.User{Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser}
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	alice.Email = "bob@example.com"
	assert.ErrorIs(t, repo.Update(ctx, alice), domain.ErrEmailTaken)

	alice.Email = "alice@new.example.com"
	require.NoError(t, repo.Update(ctx, alice))

	_, err := repo.GetByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	loaded, err := repo.GetByEmail(ctx, "alice@new.example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, loaded.ID)
}

func TestUserRepositoryListAndDelete(t *testing.T) {
	repo := NewUserRepository(openTestStore(t))
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, repo.Create(ctx, &domain.User{Name: email, Email: email, Role: domain.RoleUser}))
	}

	users, err := repo.List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 3)

	paged, err := repo.List(ctx, repository.UserFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	require.NoError(t, repo.Delete(ctx, users[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, users[0].ID), domain.ErrUserNotFound)

	_, err = repo.GetByID(ctx, users[0].ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, repo.Create(ctx, &domain.User{Name: "again", Email: users[0].Email, Role: domain.RoleUser}))
}
