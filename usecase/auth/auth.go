package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/internal/token"
	"github.com/fastygo/eventhub/pkg/logger"
	"github.com/fastygo/eventhub/pkg/password"
	"github.com/fastygo/eventhub/repository"
	"github.com/fastygo/eventhub/usecase"
)

// TokenIssuer mints bearer credentials for a user id.
type TokenIssuer interface {
	Issue(userID string) (token.Token, error)
}

// IdentityVerifier checks an identity-provider ID token.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (domain.ExternalIdentity, error)
}

type Config struct {
	MaxLoginAttempts int
	AdminEmails      []string
}

// Session is what a successful sign-up or login hands back to the client.
type Session struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type UseCase struct {
	users    repository.UserRepository
	tokens   TokenIssuer
	attempts repository.AttemptCounter
	identity IdentityVerifier
	cfg      Config
	admins   map[string]struct{}
	now      func() time.Time
	logger   *zap.Logger
}

func New(
	users repository.UserRepository,
	tokens TokenIssuer,
	attempts repository.AttemptCounter,
	identity IdentityVerifier,
	cfg Config,
	log *zap.Logger,
) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		if email = domain.NormalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &UseCase{
		users:    users,
		tokens:   tokens,
		attempts: attempts,
		identity: identity,
		cfg:      cfg,
		admins:   admins,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log,
	}
}

// IdentityEnabled reports whether identity-provider login is configured.
func (uc *UseCase) IdentityEnabled() bool {
	return uc.identity != nil
}

// SignUp creates a user with the default role and signs them in.
func (uc *UseCase) SignUp(ctx context.Context, name, email, plain string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" {
		return nil, domain.ValidationError("name and email are required")
	}

	hashed, err := usecase.HashPassword(plain)
	if err != nil {
		return nil, err
	}

	user, err := uc.createUser(ctx, name, email, hashed, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("user signed up", zap.String("user_id", user.ID))
	return uc.issue(user)
}

// Login checks a password credential. Attempts are counted per email and
// refused once the configured limit is exceeded within the window.
func (uc *UseCase) Login(ctx context.Context, email, plain string) (*Session, error) {
	email = domain.NormalizeEmail(email)
	log := logger.WithRequestID(ctx, uc.logger)

	if uc.attempts != nil && uc.cfg.MaxLoginAttempts > 0 {
		count, err := uc.attempts.Hit(ctx, email)
		if err != nil {
			log.Warn("login throttle unavailable", zap.Error(err))
		} else if count > int64(uc.cfg.MaxLoginAttempts) {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Matches(user.PasswordHash, plain) {
		return nil, domain.ErrInvalidCredentials
	}

	if uc.attempts != nil {
		if err := uc.attempts.Reset(ctx, email); err != nil {
			log.Warn("failed to reset login attempts", zap.Error(err))
		}
	}
	return uc.issue(user)
}

// LoginWithIdentity signs in through an identity-provider ID token, creating
// the user on first sight.
func (uc *UseCase) LoginWithIdentity(ctx context.Context, rawIDToken string) (*Session, error) {
	if uc.identity == nil {
		return nil, domain.NewError(domain.ErrCodeNotFound, "identity login is not enabled")
	}

	identity, err := uc.identity.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(identity.Email)
	if email == "" || !identity.EmailVerified {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound):
		role := domain.RoleUser
		if _, ok := uc.admins[email]; ok {
			role = domain.RoleAdmin
		}
		name := strings.TrimSpace(identity.Name)
		if name == "" {
			name = email
		}
		user, err = uc.createUser(ctx, name, email, "", role)
		if err != nil {
			return nil, err
		}
		logger.WithRequestID(ctx, uc.logger).Info("user created from identity provider",
			zap.String("user_id", user.ID),
			zap.String("role", string(role)))
	default:
		return nil, err
	}
	return uc.issue(user)
}

// Me returns the fresh user record behind a principal.
func (uc *UseCase) Me(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	if !principal.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return uc.users.GetByID(ctx, principal.UserID)
}

// EnsureAdmin creates the bootstrap admin when no user owns the email yet.
// An existing user with that email is promoted to admin.
func (uc *UseCase) EnsureAdmin(ctx context.Context, name, email, plain string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.ValidationError("admin email is required")
	}

	existing, err := uc.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, nil
		}
		existing.Role = domain.RoleAdmin
		if err := uc.users.Update(ctx, existing); err != nil {
			return nil, err
		}
		uc.logger.Info("promoted existing user to admin", zap.String("user_id", existing.ID))
		return existing, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hashed, err := usecase.HashPassword(plain)
	if err != nil {
		return nil, fmt.Errorf("bootstrap admin password (ADMIN_PASSWORD): %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}
	user, err := uc.createUser(ctx, strings.TrimSpace(name), email, hashed, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("bootstrap admin created", zap.String("user_id", user.ID))
	return user, nil
}

func (uc *UseCase) createUser(ctx context.Context, name, email, hash string, role domain.Role) (*domain.User, error) {
	now := uc.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UseCase) issue(user *domain.User) (*Session, error) {
	tok, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "issue token", err)
	}
	return &Session{User: user, Token: tok.Value, ExpiresAt: tok.ExpiresAt}, nil
}
