package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/eventhub/api/transport"
	"github.com/fastygo/eventhub/pkg/httpcontext"
	"github.com/fastygo/eventhub/repository"
	eventUC "github.com/fastygo/eventhub/usecase/event"
)

type EventHandler struct {
	baseHandler
	uc *eventUC.UseCase
}

func NewEventHandler(uc *eventUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List events
// @Tags events
// @Param category query string false "category or All"
// @Param search query string false "substring of title, description or location"
// @Router /api/v1/events [get]
func (h *EventHandler) ListEvents(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	args := ctx.QueryArgs()
	limit, offset := pagination(ctx)
	events, err := h.uc.ListEvents(stdCtx, repository.EventFilter{
		Category: string(args.Peek("category")),
		Search:   string(args.Peek("search")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondPage(ctx, events, transport.Page{Limit: repository.ClampLimit(limit), Offset: offset, Count: len(events)})
}

// @Summary Get an event
// @Tags events
// @Router /api/v1/events/{id} [get]
func (h *EventHandler) GetEvent(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	event, err := h.uc.GetEvent(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, event)
}

// @Summary Create an event (admin)
// @Tags events
// @Router /api/v1/events [post]
func (h *EventHandler) CreateEvent(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.EventRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	created, err := h.uc.CreateEvent(stdCtx, h.principal(ctx), req.ToDomain())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update an event (admin)
// @Tags events
// @Router /api/v1/events/{id} [put]
func (h *EventHandler) UpdateEvent(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.EventPatchRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	updated, err := h.uc.UpdateEvent(stdCtx, h.principal(ctx), pathParam(ctx, "id"), req.ToDomain())
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete an event (admin)
// @Tags events
// @Router /api/v1/events/{id} [delete]
func (h *EventHandler) DeleteEvent(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id := pathParam(ctx, "id")
	if err := h.uc.DeleteEvent(stdCtx, h.principal(ctx), id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"id": id})
}

// @Summary Events the current user is registered for
// @Tags events
// @Router /api/v1/me/events [get]
func (h *EventHandler) ListRegistered(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	limit, offset := pagination(ctx)
	events, err := h.uc.ListRegistered(stdCtx, h.principal(ctx), limit, offset)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondPage(ctx, events, transport.Page{Limit: repository.ClampLimit(limit), Offset: offset, Count: len(events)})
}

// @Summary Activity ledger of an event (admin)
// @Tags events
// @Router /api/v1/events/{id}/activity [get]
func (h *EventHandler) ListActivity(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	limit, offset := pagination(ctx)
	activity, err := h.uc.ListActivity(stdCtx, h.principal(ctx), pathParam(ctx, "id"), limit, offset)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondPage(ctx, activity, transport.Page{Limit: repository.ClampLimit(limit), Offset: offset, Count: len(activity)})
}

func pagination(ctx *fasthttp.RequestCtx) (int, int) {
	args := ctx.QueryArgs()
	return args.GetUintOrZero("limit"), args.GetUintOrZero("offset")
}
