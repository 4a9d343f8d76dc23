package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/repository"
)

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a Postgres-backed implementation of EventRepository.
func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

const eventColumns = `id, title, description, event_date, event_time, location, category, image, organizer,
	capacity, registered_users, created_by, created_at, updated_at`

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (r *eventRepository) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	const query = `
	SELECT ` + eventColumns + `
	FROM events
	WHERE ($1 = '' OR category = $1)
	  AND ($2 = ''
		OR strpos(lower(title), lower($2)) > 0
		OR strpos(lower(description), lower($2)) > 0
		OR strpos(lower(location), lower($2)) > 0)
	  AND ($3 = '' OR $3 = ANY(registered_users))
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`

	category := ""
	if filter.CategoryFilterActive() {
		category = filter.Category
	}

	rows, err := r.pool.Query(ctx, query,
		category,
		filter.Search,
		filter.RegisteredUser,
		repository.ClampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if event == nil {
		return nil, domain.ErrInvalidPayload
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.RegisteredUsers == nil {
		event.RegisteredUsers = []string{}
	}

	const query = `
	INSERT INTO events (id, title, description, event_date, event_time, location, category, image, organizer,
		capacity, registered_users, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.Location,
		string(event.Category),
		event.Image,
		event.Organizer,
		event.Capacity,
		event.RegisteredUsers,
		event.CreatedBy,
	).Scan(&event.CreatedAt, &event.UpdatedAt); err != nil {
		return nil, err
	}

	return event, nil
}

// Update writes the admin-editable fields. registered_users is never written here;
// the current set is read back so the caller sees registrations made concurrently.
func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE events
	SET title = $2,
		description = $3,
		event_date = $4,
		event_time = $5,
		location = $6,
		category = $7,
		image = $8,
		organizer = $9,
		capacity = $10,
		updated_at = NOW()
	WHERE id = $1
	RETURNING registered_users, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.Location,
		string(event.Category),
		event.Image,
		event.Organizer,
		event.Capacity,
	).Scan(&event.RegisteredUsers, &event.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return err
	}

	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// AddRegistrant relies on the row lock taken by UPDATE: concurrent callers queue on
// the same row and the WHERE clause is re-evaluated against the latest version.
func (r *eventRepository) AddRegistrant(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	const query = `
	UPDATE events
	SET registered_users = array_append(registered_users, $2::text),
		updated_at = NOW()
	WHERE id = $1
	  AND NOT ($2::text = ANY(registered_users))
	  AND cardinality(registered_users) < capacity
	RETURNING ` + eventColumns

	event, err := scanEvent(r.pool.QueryRow(ctx, query, eventID, userID))
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, domain.ErrEventNotFound) {
		return nil, err
	}

	// The conditional update matched nothing; find out which condition failed.
	current, err := r.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if current.IsRegistered(userID) {
		return nil, domain.ErrAlreadyRegistered
	}
	return nil, domain.ErrEventFull
}

// RemoveRegistrant only touches the row when userID is present; a miss is told
// apart from an unknown event by a follow-up read.
func (r *eventRepository) RemoveRegistrant(ctx context.Context, eventID, userID string) (*domain.Event, bool, error) {
	const query = `
	UPDATE events
	SET registered_users = array_remove(registered_users, $2::text),
		updated_at = NOW()
	WHERE id = $1
	  AND $2::text = ANY(registered_users)
	RETURNING ` + eventColumns

	event, err := scanEvent(r.pool.QueryRow(ctx, query, eventID, userID))
	if err == nil {
		return event, true, nil
	}
	if !errors.Is(err, domain.ErrEventNotFound) {
		return nil, false, err
	}
	current, err := r.GetByID(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func scanEvent(row scanner) (*domain.Event, error) {
	var (
		event    domain.Event
		category string
	)

	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.Location,
		&category,
		&event.Image,
		&event.Organizer,
		&event.Capacity,
		&event.RegisteredUsers,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	event.Category = domain.Category(category)
	if event.RegisteredUsers == nil {
		event.RegisteredUsers = []string{}
	}
	return &event, nil
}
