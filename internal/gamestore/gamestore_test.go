package gamestore

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/xin0nix/road-n-roll/internal/database"
	"github.com/xin0nix/road-n-roll/internal/server"
)

// fakeDB keeps the two tables in memory and answers the exact queries the
// store issues.
type fakeDB struct {
	ids      []uuid.UUID
	games    map[uuid.UUID]int32
	statuses map[int32]string

	failWith error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		games:    make(map[uuid.UUID]int32),
		statuses: map[int32]string{1: "Активна"},
	}
}

func (f *fakeDB) Insert(_ context.Context, table string, fields database.RowFields) error {
	if f.failWith != nil {
		return f.failWith
	}
	if table != "games" {
		return fmt.Errorf("unexpected table %q", table)
	}

	id := fields["game_id"].(uuid.UUID)
	f.ids = append(f.ids, id)
	f.games[id] = fields["status_id"].(int32)
	return nil
}

func (f *fakeDB) Rows(_ context.Context, q database.Query) ([]database.RowFields, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}

	switch {
	case q.SQL == "SELECT game_id FROM games":
		rows := make([]database.RowFields, 0, len(f.ids))
		for _, id := range f.ids {
			rows = append(rows, database.RowFields{"game_id": id})
		}
		return rows, nil

	case strings.Contains(q.SQL, "JOIN game_statuses"):
		id := q.Args[0].(uuid.UUID)
		statusID, ok := f.games[id]
		if !ok {
			return nil, nil
		}
		return []database.RowFields{{
			"game_id":     id,
			"status_name": f.statuses[statusID],
		}}, nil
	}

	return nil, fmt.Errorf("unexpected query %q", q.SQL)
}

func (f *fakeDB) Exec(_ context.Context, q database.Query) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	if !strings.HasPrefix(q.SQL, "DELETE FROM games") {
		return 0, fmt.Errorf("unexpected statement %q", q.SQL)
	}

	id := q.Args[0].(uuid.UUID)
	if _, ok := f.games[id]; !ok {
		return 0, nil
	}

	delete(f.games, id)
	for i, known := range f.ids {
		if known == id {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			break
		}
	}
	return 1, nil
}

func newTestStack(t *testing.T) (*fakeDB, *server.Server) {
	t.Helper()

	db := newFakeDB()
	srv := server.New(zap.NewNop(), 30*time.Second)
	require.NoError(t, New(db, zap.NewNop()).AttachTo(srv))

	return db, srv
}

func doRequest(srv *server.Server, method, path string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)

	srv.HandleRequest(&ctx)
	return &ctx
}

func TestCreateThenList(t *testing.T) {
	db, srv := newTestStack(t)

	ctx := doRequest(srv, fasthttp.MethodPost, "/games")
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())

	require.Len(t, db.ids, 1, "create must insert a row")
	id := db.ids[0]
	assert.Equal(t, int32(1), db.games[id], "new games start active")
	assert.JSONEq(t, fmt.Sprintf(`{"url": "/games/%s"}`, id), string(ctx.Response.Body()))

	ctx = doRequest(srv, fasthttp.MethodGet, "/games")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t,
		fmt.Sprintf(`{"games": [{"url": "/games/%s"}]}`, id),
		string(ctx.Response.Body()))
}

func TestListEmpty(t *testing.T) {
	_, srv := newTestStack(t)

	ctx := doRequest(srv, fasthttp.MethodGet, "/games")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"games": []}`, string(ctx.Response.Body()))
}

func TestGameStatus(t *testing.T) {
	db, srv := newTestStack(t)

	doRequest(srv, fasthttp.MethodPost, "/games")
	id := db.ids[0]

	ctx := doRequest(srv, fasthttp.MethodGet, "/games/"+id.String())
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t,
		fmt.Sprintf(`{"url": "/games/%s", "status": "Активна"}`, id),
		string(ctx.Response.Body()))
}

func TestGameStatusNotFound(t *testing.T) {
	_, srv := newTestStack(t)

	ctx := doRequest(srv, fasthttp.MethodGet, "/games/00000000-0000-0000-0000-000000000000")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, "{}", string(ctx.Response.Body()))
}

func TestGameStatusBadID(t *testing.T) {
	_, srv := newTestStack(t)

	ctx := doRequest(srv, fasthttp.MethodGet, "/games/not-a-uuid")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, "{}", string(ctx.Response.Body()))
}

func TestDeleteGame(t *testing.T) {
	db, srv := newTestStack(t)

	doRequest(srv, fasthttp.MethodPost, "/games")
	id := db.ids[0]

	ctx := doRequest(srv, fasthttp.MethodDelete, "/games/"+id.String())
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
	assert.Empty(t, ctx.Response.Body())
	assert.Empty(t, db.ids)

	// Deleting the same game again removes no row.
	ctx = doRequest(srv, fasthttp.MethodDelete, "/games/"+id.String())
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, "{}", string(ctx.Response.Body()))
}

func TestUnregisteredMethod(t *testing.T) {
	_, srv := newTestStack(t)

	ctx := doRequest(srv, fasthttp.MethodPatch, "/games")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.Equal(t, "{}", string(ctx.Response.Body()))
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
}

func TestDatabaseFailure(t *testing.T) {
	db, srv := newTestStack(t)
	db.failWith = fmt.Errorf("connection refused")

	ctx := doRequest(srv, fasthttp.MethodGet, "/games")
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.Equal(t, "{}", string(ctx.Response.Body()))
}
