package bolt

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/repository"
)

type eventRepository struct {
	store *Store
}

// NewEventRepository returns a bbolt-backed implementation of EventRepository.
func NewEventRepository(store *Store) repository.EventRepository {
	return &eventRepository{store: store}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	err := r.store.db.View(func(tx *bolt.Tx) error {
		return loadEvent(tx, id, &event)
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	search := strings.ToLower(filter.Search)

	var events []domain.Event
	err := r.store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEvents).ForEach(func(k, v []byte) error {
			var event domain.Event
			if err := unmarshal(v, &event); err != nil {
				return err
			}
			if filter.CategoryFilterActive() && string(event.Category) != filter.Category {
				return nil
			}
			if search != "" && !matchesSearch(&event, search) {
				return nil
			}
			if filter.RegisteredUser != "" && !event.IsRegistered(filter.RegisteredUser) {
				return nil
			}
			normalizeRegistrants(&event)
			events = append(events, event)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return page(events, repository.ClampLimit(filter.Limit), filter.Offset), nil
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if event == nil {
		return nil, domain.ErrInvalidPayload
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	normalizeRegistrants(event)
	event.Touch(time.Now().UTC())

	err := r.store.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketEvents), event.ID, event)
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Update writes the admin-editable fields and keeps the stored registrant set.
func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}
	return r.store.db.Update(func(tx *bolt.Tx) error {
		var current domain.Event
		if err := loadEvent(tx, event.ID, &current); err != nil {
			return err
		}
		event.RegisteredUsers = current.RegisteredUsers
		event.CreatedBy = current.CreatedBy
		event.CreatedAt = current.CreatedAt
		event.Touch(time.Now().UTC())
		return putJSON(tx.Bucket(bucketEvents), event.ID, event)
	})
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		if b.Get([]byte(id)) == nil {
			return domain.ErrEventNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (r *eventRepository) AddRegistrant(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	var event domain.Event
	err := r.store.db.Update(func(tx *bolt.Tx) error {
		if err := loadEvent(tx, eventID, &event); err != nil {
			return err
		}
		if event.IsRegistered(userID) {
			return domain.ErrAlreadyRegistered
		}
		if event.IsFull() {
			return domain.ErrEventFull
		}
		event.RegisteredUsers = append(event.RegisteredUsers, userID)
		event.UpdatedAt = time.Now().UTC()
		return putJSON(tx.Bucket(bucketEvents), event.ID, &event)
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) RemoveRegistrant(ctx context.Context, eventID, userID string) (*domain.Event, bool, error) {
	var (
		event   domain.Event
		removed bool
	)
	err := r.store.db.Update(func(tx *bolt.Tx) error {
		if err := loadEvent(tx, eventID, &event); err != nil {
			return err
		}
		if !event.IsRegistered(userID) {
			return nil
		}
		kept := make([]string, 0, len(event.RegisteredUsers))
		for _, id := range event.RegisteredUsers {
			if id != userID {
				kept = append(kept, id)
			}
		}
		event.RegisteredUsers = kept
		event.UpdatedAt = time.Now().UTC()
		removed = true
		return putJSON(tx.Bucket(bucketEvents), event.ID, &event)
	})
	if err != nil {
		return nil, false, err
	}
	return &event, removed, nil
}

func loadEvent(tx *bolt.Tx, id string, out *domain.Event) error {
	found, err := getJSON(tx.Bucket(bucketEvents), id, out)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrEventNotFound
	}
	normalizeRegistrants(out)
	return nil
}

func normalizeRegistrants(event *domain.Event) {
	if event.RegisteredUsers == nil {
		event.RegisteredUsers = []string{}
	}
}

func matchesSearch(event *domain.Event, needle string) bool {
	return strings.Contains(strings.ToLower(event.Title), needle) ||
		strings.Contains(strings.ToLower(event.Description), needle) ||
		strings.Contains(strings.ToLower(event.Location), needle)
}
