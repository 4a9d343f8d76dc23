package bolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/eventhub/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "eventhub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleEvent(title string, capacity int) *domain.Event {
	return &domain.Event{
		Title:       title,
		Description: "An evening of talks",
		Date:        "2026-11-20",
		Time:        "18:00",
		Location:    "Berlin",
		Category:    domain.CategoryTechnology,
		Image:       "https://img.example.com/1.png",
		Organizer:   "Go Meetup",
		Capacity:    capacity,
	}
}
