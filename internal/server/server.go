// Package server is the HTTP layer: a fasthttp server dispatching through
// one router per verb, with the not-found policy the API promises.
package server

import (
	"context"
	"time"

	"github.com/savsgio/gotils/strconv"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/xin0nix/road-n-roll/router"
)

const serverName = "Core"

// Handler handles one matched request. Returning false means the handler
// produced no response and the request falls through to the 404 policy.
type Handler func(ctx *fasthttp.RequestCtx, matches *router.Matches) bool

// Server routes requests to registered handlers. Registration must finish
// before ListenAndServe; after that the routing state is read-only and shared by every
// connection.
type Server struct {
	mux *router.Mux[Handler]
	srv *fasthttp.Server
	log *zap.Logger
}

// New builds a server with the given idle timeout applied to reads and
// keep-alive waits.
func New(log *zap.Logger, idleTimeout time.Duration) *Server {
	s := &Server{
		mux: router.NewMux[Handler](),
		log: log,
	}

	s.srv = &fasthttp.Server{
		Handler:     s.handleRequest,
		Name:        serverName,
		ReadTimeout: idleTimeout,
		IdleTimeout: idleTimeout,
		Logger:      &printfLogger{log: log.Sugar()},
	}

	return s
}

// GET registers a handler for GET requests on the pattern.
func (s *Server) GET(pattern string, h Handler) error {
	return s.mux.Handle(fasthttp.MethodGet, pattern, h)
}

// PUT registers a handler for PUT requests on the pattern.
func (s *Server) PUT(pattern string, h Handler) error {
	return s.mux.Handle(fasthttp.MethodPut, pattern, h)
}

// POST registers a handler for POST requests on the pattern.
func (s *Server) POST(pattern string, h Handler) error {
	return s.mux.Handle(fasthttp.MethodPost, pattern, h)
}

// DELETE registers a handler for DELETE requests on the pattern.
func (s *Server) DELETE(pattern string, h Handler) error {
	return s.mux.Handle(fasthttp.MethodDelete, pattern, h)
}

// ListenAndServe serves until the listener is closed by Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("listening", zap.String("addr", "http://"+addr))
	return s.srv.ListenAndServe(addr)
}

// Shutdown drains open connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	return s.srv.ShutdownWithContext(ctx)
}

// HandleRequest processes one request. Exposed so tests can drive the
// server with a bare RequestCtx.
func (s *Server) HandleRequest(ctx *fasthttp.RequestCtx) {
	s.handleRequest(ctx)
}

func (s *Server) handleRequest(ctx *fasthttp.RequestCtx) {
	method := strconv.B2S(ctx.Method())
	path := strconv.B2S(ctx.Path())

	ctx.Response.Header.SetServer(serverName)
	ctx.SetContentType("application/json")

	var matches router.Matches
	handler, ok := s.mux.Lookup(method, router.SplitPath(path), &matches)
	if ok && (*handler)(ctx, &matches) {
		s.log.Info("request handled",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", ctx.Response.StatusCode()),
		)
		return
	}

	s.log.Info("no handler for route",
		zap.String("method", method),
		zap.String("path", path),
	)
	s.notFound(ctx)
}

func (s *Server) notFound(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetContentType("application/json")
	ctx.SetBodyString("{}")
}

// printfLogger adapts zap to the fasthttp logging interface, so session
// errors land in the structured log.
type printfLogger struct {
	log *zap.SugaredLogger
}

func (l *printfLogger) Printf(format string, args ...any) {
	l.log.Errorf(format, args...)
}
