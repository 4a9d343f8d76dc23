package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/eventhub/pkg/httpcontext"
	registrationUC "github.com/fastygo/eventhub/usecase/registration"
)

// RegistrationHandler registers the calling user for events. The target user is
// always the principal.
type RegistrationHandler struct {
	baseHandler
	uc *registrationUC.UseCase
}

func NewRegistrationHandler(uc *registrationUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register for an event
// @Tags registrations
// @Router /api/v1/events/{id}/register [post]
func (h *RegistrationHandler) Register(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor := h.principal(ctx)
	event, err := h.uc.Register(stdCtx, actor, pathParam(ctx, "id"), actor.UserID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, event)
}

// @Summary Cancel a registration
// @Tags registrations
// @Router /api/v1/events/{id}/register [delete]
func (h *RegistrationHandler) Unregister(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	actor := h.principal(ctx)
	event, err := h.uc.Unregister(stdCtx, actor, pathParam(ctx, "id"), actor.UserID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, event)
}
