package event

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/internal/authz"
	"github.com/fastygo/eventhub/repository"
	"github.com/fastygo/eventhub/usecase"
)

type UseCase struct {
	events     repository.EventRepository
	activities repository.ActivityRepository
	gate       *authz.Gate
	recorder   usecase.ActivityRecorder
	logger     *zap.Logger
}

func New(
	events repository.EventRepository,
	activities repository.ActivityRepository,
	gate *authz.Gate,
	recorder usecase.ActivityRecorder,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = authz.New(logger)
	}
	return &UseCase{
		events:     events,
		activities: activities,
		gate:       gate,
		recorder:   recorder,
		logger:     logger,
	}
}

func (uc *UseCase) ListEvents(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return uc.events.List(ctx, filter)
}

func (uc *UseCase) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return uc.events.GetByID(ctx, id)
}

// ListRegistered returns the events the principal currently holds a registration for.
func (uc *UseCase) ListRegistered(ctx context.Context, actor domain.Principal, limit, offset int) ([]domain.Event, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return uc.events.List(ctx, repository.EventFilter{
		RegisteredUser: actor.UserID,
		Limit:          limit,
		Offset:         offset,
	})
}

func (uc *UseCase) CreateEvent(ctx context.Context, actor domain.Principal, event *domain.Event) (*domain.Event, error) {
	if err := uc.gate.Authorize(actor, authz.EventCreate, ""); err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrInvalidPayload
	}

	event.ID = ""
	event.Title = strings.TrimSpace(event.Title)
	event.CreatedBy = actor.UserID
	event.RegisteredUsers = []string{}
	if err := domain.ValidateEvent(event); err != nil {
		return nil, err
	}

	created, err := uc.events.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("event created", zap.String("event_id", created.ID), zap.String("actor_id", actor.UserID))
	usecase.RecordActivity(ctx, uc.recorder, uc.logger, domain.Activity{
		EventID: created.ID,
		ActorID: actor.UserID,
		Action:  domain.ActionEventCreated,
	})
	return created, nil
}

func (uc *UseCase) UpdateEvent(ctx context.Context, actor domain.Principal, id string, patch domain.EventPatch) (*domain.Event, error) {
	if err := uc.gate.Authorize(actor, authz.EventUpdate, ""); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	event, err := uc.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(event)

	if err := uc.events.Update(ctx, event); err != nil {
		return nil, err
	}

	if len(event.RegisteredUsers) > event.Capacity {
		// Existing registrants are kept; only new registrations are refused.
		uc.logger.Warn("capacity lowered below registrant count",
			zap.String("event_id", event.ID),
			zap.Int("capacity", event.Capacity),
			zap.Int("registrants", len(event.RegisteredUsers)))
	}

	usecase.RecordActivity(ctx, uc.recorder, uc.logger, domain.Activity{
		EventID: event.ID,
		ActorID: actor.UserID,
		Action:  domain.ActionEventUpdated,
	})
	return event, nil
}

func (uc *UseCase) DeleteEvent(ctx context.Context, actor domain.Principal, id string) error {
	if err := uc.gate.Authorize(actor, authz.EventDelete, ""); err != nil {
		return err
	}
	if err := uc.events.Delete(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("event deleted", zap.String("event_id", id), zap.String("actor_id", actor.UserID))
	usecase.RecordActivity(ctx, uc.recorder, uc.logger, domain.Activity{
		EventID: id,
		ActorID: actor.UserID,
		Action:  domain.ActionEventDeleted,
	})
	return nil
}

// ListActivity returns the ledger entries of one event, oldest first.
func (uc *UseCase) ListActivity(ctx context.Context, actor domain.Principal, eventID string, limit, offset int) ([]domain.Activity, error) {
	if err := uc.gate.Authorize(actor, authz.ActivityRead, ""); err != nil {
		return nil, err
	}
	if uc.activities == nil {
		return []domain.Activity{}, nil
	}
	return uc.activities.List(ctx, repository.ActivityFilter{
		EventID: eventID,
		Limit:   limit,
		Offset:  offset,
	})
}
