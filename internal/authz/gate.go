// Package authz decides which principal may invoke which mutation.
package authz

import (
	"go.uber.org/zap"

	"github.com/fastygo/eventhub/domain"
)

// Operation names a guarded entry point.
type Operation string

const (
	EventCreate     Operation = "event.create"
	EventUpdate     Operation = "event.update"
	EventDelete     Operation = "event.delete"
	EventRegister   Operation = "event.register"
	EventUnregister Operation = "event.unregister"
	ActivityRead    Operation = "activity.read"
	UserList        Operation = "user.list"
	UserRead        Operation = "user.read"
	UserUpdate      Operation = "user.update"
	UserDelete      Operation = "user.delete"
)

type requirement int

const (
	requireAdmin requirement = iota + 1
	requireSelf
	requireSelfOrAdmin
)

var policy = map[Operation]requirement{
	EventCreate:     requireAdmin,
	EventUpdate:     requireAdmin,
	EventDelete:     requireAdmin,
	EventRegister:   requireSelf,
	EventUnregister: requireSelf,
	ActivityRead:    requireAdmin,
	UserList:        requireAdmin,
	UserRead:        requireSelfOrAdmin,
	UserUpdate:      requireSelfOrAdmin,
	UserDelete:      requireAdmin,
}

// Gate applies the static policy table.
type Gate struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{logger: logger}
}

// Authorize checks principal against op. targetUserID is the identity acted upon,
// empty for operations that do not target a user.
func (g *Gate) Authorize(principal domain.Principal, op Operation, targetUserID string) error {
	if !principal.Authenticated() {
		return domain.ErrUnauthorized
	}

	req, ok := policy[op]
	if !ok {
		return g.deny(principal, op, "unknown operation")
	}

	switch req {
	case requireAdmin:
		if principal.IsAdmin() {
			return nil
		}
	case requireSelf:
		if targetUserID != "" && targetUserID == principal.UserID {
			return nil
		}
	case requireSelfOrAdmin:
		if principal.IsAdmin() || (targetUserID != "" && targetUserID == principal.UserID) {
			return nil
		}
	}
	return g.deny(principal, op, "policy")
}

// CheckDeletable applies the rule that admins are never removed through the standard path.
func (g *Gate) CheckDeletable(target *domain.User) error {
	if target.IsAdmin() {
		g.logger.Info("admin deletion refused", zap.String("target_id", target.ID))
		return domain.ErrForbiddenAdminDeletion
	}
	return nil
}

func (g *Gate) deny(principal domain.Principal, op Operation, why string) error {
	g.logger.Debug("authorization denied",
		zap.String("operation", string(op)),
		zap.String("user_id", principal.UserID),
		zap.String("role", string(principal.Role)),
		zap.String("rule", why))
	return domain.ErrForbidden
}
