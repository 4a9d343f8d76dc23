package bolt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/repository"
)

func TestActivityRepositoryOrdersAndFilters(t *testing.T) {
	repo := NewActivityRepository(openTestStore(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	entries := []domain.Activity{
		{ID: "a2", EventID: "e1", UserID: "u1", Action: domain.ActionRegistrationRemoved, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "a1", EventID: "e1", UserID: "u1", Action: domain.ActionRegistrationAdded, CreatedAt: base.Add(time.Minute)},
		{ID: "a3", EventID: "e2", UserID: "u2", Action: domain.ActionRegistrationAdded, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, a := range entries {
		require.NoError(t, repo.Append(ctx, a))
	}
	// replaying an entry leaves a single copy
	require.NoError(t, repo.Append(ctx, entries[0]))

	list, err := repo.List(ctx, repository.ActivityFilter{EventID: "e1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a1", list[0].ID)
	assert.Equal(t, "a2", list[1].ID)

	byUser, err := repo.List(ctx, repository.ActivityFilter{UserID: "u2"})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "a3", byUser[0].ID)
}
