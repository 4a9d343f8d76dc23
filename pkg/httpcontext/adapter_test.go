package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/eventhub/pkg/logger"
)

func TestAttachReusesRequestID(t *testing.T) {
	adapter := NewAdapter(time.Second)
	var reqCtx fasthttp.RequestCtx

	first, cancel := adapter.Attach(&reqCtx)
	defer cancel()
	second, cancel2 := adapter.Attach(&reqCtx)
	defer cancel2()

	id := appLogger.RequestIDFromContext(first)
	require.NotEmpty(t, id)
	assert.Equal(t, id, appLogger.RequestIDFromContext(second))
	assert.Equal(t, id, string(reqCtx.Response.Header.Peek(HeaderRequestID)))

	_, hasDeadline := first.Deadline()
	assert.True(t, hasDeadline)
}

func TestAttachHonoursIncomingHeader(t *testing.T) {
	adapter := NewAdapter(0)
	var reqCtx fasthttp.RequestCtx
	reqCtx.Request.Header.Set(HeaderRequestID, "req-42")

	stdCtx, cancel := adapter.Attach(&reqCtx)
	defer cancel()

	assert.Equal(t, "req-42", appLogger.RequestIDFromContext(stdCtx))
}
