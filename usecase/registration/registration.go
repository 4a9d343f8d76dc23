package registration

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/internal/authz"
	"github.com/fastygo/eventhub/pkg/logger"
	"github.com/fastygo/eventhub/repository"
	"github.com/fastygo/eventhub/usecase"
)

const (
	ActionRegister   = "register"
	ActionUnregister = "unregister"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Observer receives the outcome of every registration attempt.
type Observer interface {
	ObserveRegistration(action, outcome string)
}

type UseCase struct {
	events   repository.EventRepository
	gate     *authz.Gate
	recorder usecase.ActivityRecorder
	observer Observer
	logger   *zap.Logger
}

func New(
	events repository.EventRepository,
	gate *authz.Gate,
	recorder usecase.ActivityRecorder,
	observer Observer,
	log *zap.Logger,
) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	if gate == nil {
		gate = authz.New(log)
	}
	return &UseCase{
		events:   events,
		gate:     gate,
		recorder: recorder,
		observer: observer,
		logger:   log,
	}
}

// Register moves (eventID, userID) from NotRegistered to Registered. The capacity and
// uniqueness checks run inside the store's atomic conditional update.
func (uc *UseCase) Register(ctx context.Context, actor domain.Principal, eventID, userID string) (*domain.Event, error) {
	if err := uc.gate.Authorize(actor, authz.EventRegister, userID); err != nil {
		uc.observe(ActionRegister, err)
		return nil, err
	}

	event, err := uc.events.AddRegistrant(ctx, eventID, userID)
	uc.observe(ActionRegister, err)
	if err != nil {
		logger.WithRequestID(ctx, uc.logger).Debug("registration refused",
			zap.String("event_id", eventID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	usecase.RecordActivity(ctx, uc.recorder, uc.logger, domain.Activity{
		EventID: eventID,
		UserID:  userID,
		ActorID: actor.UserID,
		Action:  domain.ActionRegistrationAdded,
	})
	return event, nil
}

// Unregister moves (eventID, userID) back to NotRegistered. Unregistering a user who
// holds no registration succeeds without a change.
func (uc *UseCase) Unregister(ctx context.Context, actor domain.Principal, eventID, userID string) (*domain.Event, error) {
	if err := uc.gate.Authorize(actor, authz.EventUnregister, userID); err != nil {
		uc.observe(ActionUnregister, err)
		return nil, err
	}

	event, removed, err := uc.events.RemoveRegistrant(ctx, eventID, userID)
	uc.observe(ActionUnregister, err)
	if err != nil {
		return nil, err
	}
	if !removed {
		return event, nil
	}

	usecase.RecordActivity(ctx, uc.recorder, uc.logger, domain.Activity{
		EventID: eventID,
		UserID:  userID,
		ActorID: actor.UserID,
		Action:  domain.ActionRegistrationRemoved,
	})
	return event, nil
}

func (uc *UseCase) observe(action string, err error) {
	if uc.observer == nil {
		return
	}
	uc.observer.ObserveRegistration(action, outcome(err))
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return strings.ToLower(dErr.Kind())
	}
	return OutcomeError
}
