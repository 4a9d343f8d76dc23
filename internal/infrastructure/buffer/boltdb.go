package buffer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultBucket holds spooled activity writes.
const DefaultBucket = "activity_spool"

// Store is the on-disk spool for ledger writes that could not reach primary
// storage. Entries are read back ordered by priority, then by age. A second
// bucket maps item IDs to their ordering key so an ID is spooled at most once.
type Store struct {
	db    *bolt.DB
	items []byte
	index []byte
}

// Open creates the spool file and its buckets.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open spool: %w", err)
	}

	s := &Store{
		db:    db,
		items: []byte(bucket),
		index: []byte(bucket + "_ids"),
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{s.items, s.index} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Push spools an item. Pushing an ID that is already queued replaces the
// earlier entry.
func (s *Store) Push(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize()
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.put(tx, item)
	})
}

// Peek returns up to limit items in drain order without removing them.
// Entries that no longer decode are skipped.
func (s *Store) Peek(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	items := make([]Item, 0, limit)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.items).Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			items = append(items, item)
		}
		return nil
	})
	return items, err
}

// Ack removes the item with the given ID. Unknown IDs are ignored.
func (s *Store) Ack(id string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.drop(tx, id)
	})
}

// Retry bumps the retry counter of a queued item and moves it behind the
// items of the same priority. It returns the new retry count.
func (s *Store) Retry(id string) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var retries int
	err := s.db.Update(func(tx *bolt.Tx) error {
		key := tx.Bucket(s.index).Get([]byte(id))
		if key == nil {
			return nil
		}
		var item Item
		if err := json.Unmarshal(tx.Bucket(s.items).Get(key), &item); err != nil {
			return s.drop(tx, id)
		}
		item.Retries++
		item.Timestamp = time.Now()
		retries = item.Retries
		return s.put(tx, item)
	})
	return retries, err
}

// Len returns the number of queued items.
func (s *Store) Len() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.index).Stats().KeyN
		return nil
	})
	return count, err
}

// Prune drops items spooled before cutoff and returns how many were removed.
func (s *Store) Prune(cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var stale []string
	err := s.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(s.items).ForEach(func(_, v []byte) error {
			var item Item
			if err := json.Unmarshal(v, &item); err == nil && item.Timestamp.Before(cutoff) {
				stale = append(stale, item.ID)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, id := range stale {
			if err := s.drop(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	return len(stale), err
}

// Ping reports whether the spool file is usable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(s.items) == nil || tx.Bucket(s.index) == nil {
			return bolt.ErrBucketNotFound
		}
		return nil
	})
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) put(tx *bolt.Tx, item Item) error {
	if err := s.drop(tx, item.ID); err != nil {
		return err
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	key := orderKey(item)
	if err := tx.Bucket(s.items).Put(key, payload); err != nil {
		return err
	}
	return tx.Bucket(s.index).Put([]byte(item.ID), key)
}

func (s *Store) drop(tx *bolt.Tx, id string) error {
	index := tx.Bucket(s.index)
	key := index.Get([]byte(id))
	if key == nil {
		return nil
	}
	if err := tx.Bucket(s.items).Delete(key); err != nil {
		return err
	}
	return index.Delete([]byte(id))
}

func orderKey(item Item) []byte {
	return []byte(fmt.Sprintf("%d_%020d_%s", item.Priority, item.Timestamp.UnixNano(), item.ID))
}
