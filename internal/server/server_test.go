package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/xin0nix/road-n-roll/router"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(zap.NewNop(), 30*time.Second)
}

func makeRequest(s *Server, method, path string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)

	s.HandleRequest(&ctx)
	return &ctx
}

func TestDispatchWithCaptures(t *testing.T) {
	s := newTestServer(t)

	var gotID string
	err := s.GET("/games/{gameId}", func(ctx *fasthttp.RequestCtx, matches *router.Matches) bool {
		gotID, _ = matches.Get("gameId")
		ctx.SetBodyString(`{"ok":true}`)
		return true
	})
	require.NoError(t, err)

	ctx := makeRequest(s, fasthttp.MethodGet, "/games/42")

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "42", gotID)
	assert.Equal(t, `{"ok":true}`, string(ctx.Response.Body()))
	assert.Equal(t, "Core", string(ctx.Response.Header.Peek(fasthttp.HeaderServer)))
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
}

func TestNotFoundPolicy(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.GET("/games", func(ctx *fasthttp.RequestCtx, _ *router.Matches) bool {
		ctx.SetBodyString(`{"games":[]}`)
		return true
	}))

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "unknown path", method: fasthttp.MethodGet, path: "/nope"},
		{name: "wrong verb", method: fasthttp.MethodDelete, path: "/games"},
		{name: "unregistered method", method: fasthttp.MethodPatch, path: "/games"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := makeRequest(s, tt.method, tt.path)

			assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
			assert.Equal(t, "{}", string(ctx.Response.Body()))
			assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
			assert.Equal(t, "Core", string(ctx.Response.Header.Peek(fasthttp.HeaderServer)))
		})
	}
}

func TestHandlerDeclinesToRespond(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.GET("/games/{gameId}", func(_ *fasthttp.RequestCtx, _ *router.Matches) bool {
		return false
	}))

	ctx := makeRequest(s, fasthttp.MethodGet, "/games/42")

	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, "{}", string(ctx.Response.Body()))
}

func TestRegistrationErrorSurfaces(t *testing.T) {
	s := newTestServer(t)

	err := s.POST("/games/{", func(_ *fasthttp.RequestCtx, _ *router.Matches) bool { return true })
	require.Error(t, err)
}

func TestVerbsAreIsolated(t *testing.T) {
	s := newTestServer(t)

	require.NoError(t, s.POST("/games", func(ctx *fasthttp.RequestCtx, _ *router.Matches) bool {
		ctx.SetStatusCode(fasthttp.StatusCreated)
		ctx.SetBodyString(`{"url":"/games/1"}`)
		return true
	}))

	ctx := makeRequest(s, fasthttp.MethodPost, "/games")
	assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())

	ctx = makeRequest(s, fasthttp.MethodGet, "/games")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}
