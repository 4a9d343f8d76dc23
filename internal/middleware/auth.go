package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/eventhub/api/transport"
	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/pkg/httpcontext"
	appLogger "github.com/fastygo/eventhub/pkg/logger"
	"github.com/fastygo/eventhub/repository"
)

const principalKey = "middleware.principal"

var (
	ErrMissingCredential = domain.NewReasonError(domain.ErrCodeUnauthorized, domain.ReasonCredentialMissing, "missing bearer credential")
	ErrNoSuchUser        = domain.NewReasonError(domain.ErrCodeUnauthorized, domain.ReasonNoSuchUser, "credential subject no longer exists")
)

// TokenVerifier validates a bearer credential and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Resolver turns an Authorization header into a Principal.
type Resolver struct {
	tokens TokenVerifier
	users  repository.UserRepository
}

func NewResolver(tokens TokenVerifier, users repository.UserRepository) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve verifies the bearer credential and loads the user behind it. The role
// always comes from the stored user, never from the credential.
func (r *Resolver) Resolve(ctx context.Context, header string) (domain.Principal, error) {
	raw := extractToken(header)
	if raw == "" {
		return domain.Principal{}, ErrMissingCredential
	}

	userID, err := r.tokens.Verify(raw)
	if err != nil {
		return domain.Principal{}, err
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Principal{}, ErrNoSuchUser
		}
		return domain.Principal{}, err
	}
	return user.Principal(), nil
}

// Authenticate rejects requests without a valid bearer credential and stores the
// resolved principal on the request for the handler.
func Authenticate(resolver *Resolver, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			stdCtx, cancel := adapter.Attach(ctx)
			principal, err := resolver.Resolve(stdCtx, string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
			cancel()

			if err != nil {
				log := appLogger.WithRequestID(stdCtx, logger)
				var dErr *domain.Error
				if errors.As(err, &dErr) && dErr.Code == domain.ErrCodeUnauthorized {
					log.Debug("request not authenticated", zap.String("reason", dErr.Kind()))
					reject(ctx, fasthttp.StatusUnauthorized, dErr.Kind(), dErr.Message)
					return
				}
				log.Error("principal resolution failed", zap.Error(err))
				reject(ctx, fasthttp.StatusInternalServerError, string(domain.ErrCodeInternal), "internal error")
				return
			}

			ctx.SetUserValue(principalKey, principal)
			next(ctx)
		}
	}
}

// PrincipalFrom returns the principal stored by Authenticate, or the zero
// (anonymous) principal.
func PrincipalFrom(ctx *fasthttp.RequestCtx) domain.Principal {
	if ctx == nil {
		return domain.Principal{}
	}
	principal, _ := ctx.UserValue(principalKey).(domain.Principal)
	return principal
}

func extractToken(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func reject(ctx *fasthttp.RequestCtx, status int, code, message string) {
	body, _ := json.Marshal(transport.NewError(code, message, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
