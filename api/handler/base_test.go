package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/eventhub/api/transport"
	"github.com/fastygo/eventhub/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"already registered", domain.ErrAlreadyRegistered, http.StatusBadRequest, domain.ReasonAlreadyRegistered},
		{"event full", domain.ErrEventFull, http.StatusBadRequest, domain.ReasonEventFull},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict, domain.ReasonEmailTaken},
		{"event not found", domain.ErrEventNotFound, http.StatusNotFound, domain.ReasonEventNotFound},
		{"admin deletion", domain.ErrForbiddenAdminDeletion, http.StatusForbidden, domain.ReasonForbiddenAdminDeletion},
		{"plain forbidden", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, domain.ReasonInvalidCredentials},
		{"throttled", domain.ErrTooManyAttempts, http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"validation", domain.ValidationError("capacity must be at least 1"), http.StatusBadRequest, "INVALID"},
		{"wrapped", fmt.Errorf("register: %w", domain.ErrEventFull), http.StatusBadRequest, domain.ReasonEventFull},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestRespondErrorMasksInternalErrors(t *testing.T) {
	h := newBaseHandler(nil, nil)
	ctx := &fasthttp.RequestCtx{}

	h.respondError(ctx, context.Background(), errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	var env transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	assert.Equal(t, transport.StatusError, env.Status)
	assert.Equal(t, "INTERNAL", env.Code)
	assert.Equal(t, "internal error", env.Error)
}

func TestDecodeReportsFirstFieldError(t *testing.T) {
	h := newBaseHandler(nil, nil)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetBodyString(`{"email":"ada@example.com"}`)
	var req transport.LoginRequest
	err := h.decode(ctx, &req)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Contains(t, err.Error(), "password is required")

	ctx = &fasthttp.RequestCtx{}
	ctx.Request.SetBodyString(`{not json`)
	err = h.decode(ctx, &req)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
