package registration_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/repository"
	boltrepo "github.com/fastygo/eventhub/repository/bolt"
	"github.com/fastygo/eventhub/usecase/registration"
)

type recordedActivities struct {
	mu    sync.Mutex
	items []domain.Activity
}

func (r *recordedActivities) Record(ctx context.Context, activity domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, activity)
	return nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveRegistration(action, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[action+"/"+outcome]++
}

type fixture struct {
	events   repository.EventRepository
	uc       *registration.UseCase
	recorder *recordedActivities
	observer *countingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := boltrepo.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		events:   boltrepo.NewEventRepository(store),
		recorder: &recordedActivities{},
		observer: &countingObserver{},
	}
	f.uc = registration.New(f.events, nil, f.recorder, f.observer, nil)
	return f
}

func (f *fixture) createEvent(t *testing.T, capacity int) *domain.Event {
	t.Helper()
	event, err := f.events.Create(context.Background(), &domain.Event{
		Title:       "Intro to Go",
		Description: "Hands-on session",
		Date:        "2026-12-01",
		Time:        "10:00",
		Location:    "Online",
		Category:    domain.CategoryWorkshop,
		Image:       "intro.png",
		Organizer:   "Gophers",
		Capacity:    capacity,
	})
	require.NoError(t, err)
	return event
}

func member(id string) domain.Principal {
	return domain.Principal{UserID: id, Role: domain.RoleUser}
}

func TestRegisterFillsLastSeatThenRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1)

	updated, err := f.uc.Register(ctx, member("u1"), event.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, updated.RegisteredUsers)

	_, err = f.uc.Register(ctx, member("u2"), event.ID, "u2")
	require.Error(t, err)
	assert.True(t, domain.HasReason(err, domain.ReasonEventFull))

	loaded, err := f.events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, loaded.RegisteredUsers)
}

func TestRegisterTwiceIsRejectedWithoutChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 5)

	_, err := f.uc.Register(ctx, member("u1"), event.ID, "u1")
	require.NoError(t, err)

	_, err = f.uc.Register(ctx, member("u1"), event.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	loaded, err := f.events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, loaded.RegisteredUsers)
}

func TestRegisterOnBehalfOfAnotherUserIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 5)

	_, err := f.uc.Register(ctx, member("u1"), event.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := domain.Principal{UserID: "admin", Role: domain.RoleAdmin}
	_, err = f.uc.Register(ctx, admin, event.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	loaded, err := f.events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.RegisteredUsers)
}

func TestRegisterRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 5)

	_, err := f.uc.Register(context.Background(), domain.Principal{}, event.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterUnknownEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Register(context.Background(), member("u1"), "nope", "u1")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	_, err = f.uc.Unregister(context.Background(), member("u1"), "nope", "u1")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestRegisterUnregisterRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 3)

	_, err := f.uc.Register(ctx, member("u1"), event.ID, "u1")
	require.NoError(t, err)

	updated, err := f.uc.Unregister(ctx, member("u1"), event.ID, "u1")
	require.NoError(t, err)
	assert.Empty(t, updated.RegisteredUsers)

	// unregistering again is a no-op
	updated, err = f.uc.Unregister(ctx, member("u1"), event.ID, "u1")
	require.NoError(t, err)
	assert.Empty(t, updated.RegisteredUsers)

	_, err = f.uc.Register(ctx, member("u1"), event.ID, "u1")
	require.NoError(t, err)

	// the no-op unregister leaves no trace in the ledger
	actions := make([]string, 0, len(f.recorder.items))
	for _, item := range f.recorder.items {
		actions = append(actions, item.Action)
	}
	assert.Equal(t, []string{
		domain.ActionRegistrationAdded,
		domain.ActionRegistrationRemoved,
		domain.ActionRegistrationAdded,
	}, actions)
	assert.Equal(t, "u1", f.recorder.items[0].UserID)
	assert.NotEmpty(t, f.recorder.items[0].ID)
}

func TestUnregisterWithoutRegistrationRecordsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 2)

	updated, err := f.uc.Unregister(ctx, member("u1"), event.ID, "u1")
	require.NoError(t, err)
	assert.Empty(t, updated.RegisteredUsers)
	assert.Empty(t, f.recorder.items)
	assert.Equal(t, 1, f.observer.counts["unregister/ok"])
}

func TestConcurrentRegistrationsNeverExceedCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 3)

	const users = 20
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%02d", i)
			_, _ = f.uc.Register(ctx, member(id), event.ID, id)
		}(i)
	}
	wg.Wait()

	loaded, err := f.events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.RegisteredUsers, 3)

	assert.Equal(t, 3, f.observer.counts["register/ok"])
	assert.Equal(t, users-3, f.observer.counts["register/event_full"])
}

func TestObserverSeesRejectionReasons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 2)

	_, _ = f.uc.Register(ctx, member("u1"), event.ID, "u1")
	_, _ = f.uc.Register(ctx, member("u1"), event.ID, "u1")
	_, _ = f.uc.Register(ctx, member("u1"), event.ID, "u2")
	_, _ = f.uc.Unregister(ctx, member("u1"), event.ID, "u1")

	assert.Equal(t, 1, f.observer.counts["register/ok"])
	assert.Equal(t, 1, f.observer.counts["register/already_registered"])
	assert.Equal(t, 1, f.observer.counts["register/forbidden"])
	assert.Equal(t, 1, f.observer.counts["unregister/ok"])
}
