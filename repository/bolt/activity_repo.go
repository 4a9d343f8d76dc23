package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/repository"
)

type activityRepository struct {
	store *Store
}

// NewActivityRepository returns a bbolt-backed registration ledger.
func NewActivityRepository(store *Store) repository.ActivityRepository {
	return &activityRepository{store: store}
}

// Append keys entries by creation time and id; replaying the same activity overwrites itself.
func (r *activityRepository) Append(ctx context.Context, activity domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	return r.store.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketActivities), activityKey(activity), activity)
	})
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := r.store.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketActivities).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var a domain.Activity
			if err := unmarshal(v, &a); err != nil {
				return err
			}
			if filter.EventID != "" && a.EventID != filter.EventID {
				continue
			}
			if filter.UserID != "" && a.UserID != filter.UserID {
				continue
			}
			activities = append(activities, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(activities, repository.ClampLimit(filter.Limit), filter.Offset), nil
}

func activityKey(a domain.Activity) string {
	return fmt.Sprintf("%020d_%s", a.CreatedAt.UnixNano(), a.ID)
}
