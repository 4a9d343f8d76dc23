package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/internal/authz"
	"github.com/fastygo/eventhub/repository"
	"github.com/fastygo/eventhub/usecase"
)

type UseCase struct {
	users  repository.UserRepository
	gate   *authz.Gate
	logger *zap.Logger
}

func New(users repository.UserRepository, gate *authz.Gate, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = authz.New(logger)
	}
	return &UseCase{
		users:  users,
		gate:   gate,
		logger: logger,
	}
}

func (uc *UseCase) ListUsers(ctx context.Context, actor domain.Principal, filter repository.UserFilter) ([]domain.User, error) {
	if err := uc.gate.Authorize(actor, authz.UserList, ""); err != nil {
		return nil, err
	}
	return uc.users.List(ctx, filter)
}

func (uc *UseCase) GetUser(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	if err := uc.gate.Authorize(actor, authz.UserRead, id); err != nil {
		return nil, err
	}
	return uc.users.GetByID(ctx, id)
}

// UpdateProfile changes name, email or password of the target user.
func (uc *UseCase) UpdateProfile(ctx context.Context, actor domain.Principal, id string, patch domain.UserPatch) (*domain.User, error) {
	if err := uc.gate.Authorize(actor, authz.UserUpdate, id); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.ValidationError("name must not be empty")
		}
		user.Name = name
	}

	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if !strings.Contains(email, "@") {
			return nil, domain.ValidationError("invalid email address")
		}
		if email != user.Email {
			existing, err := uc.users.GetByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, domain.ErrEmailTaken
			case err != nil && !errors.Is(err, domain.ErrUserNotFound):
				return nil, err
			}
		}
		user.Email = email
	}

	if patch.Password != nil {
		hashed, err := usecase.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a non-admin user. Events the user registered for are left untouched.
func (uc *UseCase) DeleteUser(ctx context.Context, actor domain.Principal, id string) error {
	if err := uc.gate.Authorize(actor, authz.UserDelete, id); err != nil {
		return err
	}

	target, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.gate.CheckDeletable(target); err != nil {
		return err
	}

	if err := uc.users.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", actor.UserID))
	return nil
}
