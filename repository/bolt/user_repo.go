package bolt

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/repository"
)

type userRepository struct {
	store *Store
}

// NewUserRepository returns a bbolt-backed user repository.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.store.db.View(func(tx *bolt.Tx) error {
		found, err := getUser(tx, id, &user)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.store.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketUserEmails).Get([]byte(domain.NormalizeEmail(email)))
		if id == nil {
			return domain.ErrUserNotFound
		}
		found, err := getUser(tx, string(id), &user)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var users []domain.User
	err := r.store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUsers).ForEach(func(k, v []byte) error {
			var stored storedUser
			if err := unmarshal(v, &stored); err != nil {
				return err
			}
			users = append(users, stored.toDomain())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return page(users, repository.ClampLimit(filter.Limit), filter.Offset), nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = domain.NormalizeEmail(user.Email)
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	return r.store.db.Update(func(tx *bolt.Tx) error {
		emails := tx.Bucket(bucketUserEmails)
		if emails.Get([]byte(user.Email)) != nil {
			return domain.ErrEmailTaken
		}
		if err := emails.Put([]byte(user.Email), []byte(user.ID)); err != nil {
			return err
		}
		return putJSON(tx.Bucket(bucketUsers), user.ID, newStoredUser(user))
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	user.Email = domain.NormalizeEmail(user.Email)

	return r.store.db.Update(func(tx *bolt.Tx) error {
		var current domain.User
		found, err := getUser(tx, user.ID, &current)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrUserNotFound
		}

		emails := tx.Bucket(bucketUserEmails)
		if current.Email != user.Email {
			if owner := emails.Get([]byte(user.Email)); owner != nil && string(owner) != user.ID {
				return domain.ErrEmailTaken
			}
			if err := emails.Delete([]byte(current.Email)); err != nil {
				return err
			}
			if err := emails.Put([]byte(user.Email), []byte(user.ID)); err != nil {
				return err
			}
		}

		user.CreatedAt = current.CreatedAt
		user.UpdatedAt = time.Now().UTC()
		return putJSON(tx.Bucket(bucketUsers), user.ID, newStoredUser(user))
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.store.db.Update(func(tx *bolt.Tx) error {
		var current domain.User
		found, err := getUser(tx, id, &current)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrUserNotFound
		}
		if err := tx.Bucket(bucketUserEmails).Delete([]byte(current.Email)); err != nil {
			return err
		}
		return tx.Bucket(bucketUsers).Delete([]byte(id))
	})
}

// storedUser keeps the password hash, which domain.User hides from JSON.
type storedUser struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"password_hash"`
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func newStoredUser(u *domain.User) storedUser {
	return storedUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (s storedUser) toDomain() domain.User {
	return domain.User{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		Role:         s.Role,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func getUser(tx *bolt.Tx, id string, out *domain.User) (bool, error) {
	var stored storedUser
	found, err := getJSON(tx.Bucket(bucketUsers), id, &stored)
	if err != nil || !found {
		return found, err
	}
	*out = stored.toDomain()
	return true, nil
}
