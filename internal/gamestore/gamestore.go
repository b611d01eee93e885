// Package gamestore exposes the /games resource on top of the database
// layer.
package gamestore

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/xin0nix/road-n-roll/internal/database"
	"github.com/xin0nix/road-n-roll/internal/server"
	"github.com/xin0nix/road-n-roll/router"
)

// activeStatusID is the status a freshly created game starts in.
const activeStatusID = int32(1)

var errBadRow = errors.New("unexpected row shape")

// Game is one row of the games table.
type Game struct {
	GameID   uuid.UUID `db:"game_id"`
	StatusID int32     `db:"status_id"`
}

type gameStatus struct {
	GameID     uuid.UUID `db:"game_id"`
	StatusName string    `db:"status_name"`
}

type gameRef struct {
	URL string `json:"url"`
}

// Store wires the /games routes to the database.
type Store struct {
	db      database.Store
	builder database.QueryBuilder
	log     *zap.Logger
}

// New returns a store over the given database.
func New(db database.Store, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// AttachTo registers the /games routes.
func (s *Store) AttachTo(srv *server.Server) error {
	s.log.Info("registering routes")

	if err := srv.GET("/games", s.list); err != nil {
		return err
	}
	if err := srv.POST("/games", s.create); err != nil {
		return err
	}
	if err := srv.GET("/games/{gameId}", s.status); err != nil {
		return err
	}
	return srv.DELETE("/games/{gameId}", s.remove)
}

func (s *Store) list(ctx *fasthttp.RequestCtx, _ *router.Matches) bool {
	rows, err := s.db.Rows(ctx, s.builder.Select("games", "game_id"))
	if err != nil {
		return s.fail(ctx, "list games", err)
	}

	games := make([]gameRef, 0, len(rows))
	for _, row := range rows {
		id, ok := row["game_id"].(uuid.UUID)
		if !ok {
			return s.fail(ctx, "list games", errBadRow)
		}
		games = append(games, gameRef{URL: "/games/" + id.String()})
	}

	s.log.Info("listed games", zap.Int("count", len(games)))
	return s.writeJSON(ctx, fasthttp.StatusOK, map[string]any{"games": games})
}

func (s *Store) create(ctx *fasthttp.RequestCtx, _ *router.Matches) bool {
	game := Game{GameID: uuid.New(), StatusID: activeStatusID}

	fields, err := database.Pack(game)
	if err != nil {
		return s.fail(ctx, "create game", err)
	}
	if err := s.db.Insert(ctx, "games", fields); err != nil {
		return s.fail(ctx, "create game", err)
	}

	s.log.Info("created game", zap.String("game_id", game.GameID.String()))
	return s.writeJSON(ctx, fasthttp.StatusCreated, gameRef{URL: "/games/" + game.GameID.String()})
}

func (s *Store) status(ctx *fasthttp.RequestCtx, matches *router.Matches) bool {
	raw, _ := matches.Get("gameId")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.log.Info("game not found", zap.String("game_id", raw))
		return false
	}

	q := s.builder.Generic(
		"SELECT g.game_id, s.status_name FROM games g "+
			"JOIN game_statuses s ON s.status_id = g.status_id "+
			"WHERE g.game_id = $1", id)

	rows, err := s.db.Rows(ctx, q)
	if err != nil {
		return s.fail(ctx, "query game", err)
	}
	if len(rows) == 0 {
		s.log.Info("game not found", zap.String("game_id", raw))
		return false
	}

	game, err := database.Unpack[gameStatus](rows[0])
	if err != nil {
		return s.fail(ctx, "query game", err)
	}

	s.log.Info("queried game status", zap.String("game_id", raw))
	return s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{
		"url":    "/games/" + game.GameID.String(),
		"status": game.StatusName,
	})
}

func (s *Store) remove(ctx *fasthttp.RequestCtx, matches *router.Matches) bool {
	raw, _ := matches.Get("gameId")
	id, err := uuid.Parse(raw)
	if err != nil {
		s.log.Info("game not found", zap.String("game_id", raw))
		return false
	}

	affected, err := s.db.Exec(ctx, s.builder.Delete("games", "game_id", id))
	if err != nil {
		return s.fail(ctx, "delete game", err)
	}
	if affected == 0 {
		s.log.Info("game not found", zap.String("game_id", raw))
		return false
	}

	s.log.Info("deleted game", zap.String("game_id", raw))
	ctx.SetStatusCode(fasthttp.StatusNoContent)
	ctx.Response.ResetBody()
	return true
}

func (s *Store) writeJSON(ctx *fasthttp.RequestCtx, status int, body any) bool {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return s.fail(ctx, "encode response", err)
	}

	ctx.SetStatusCode(status)
	ctx.SetBody(buf.Bytes())
	return true
}

func (s *Store) fail(ctx *fasthttp.RequestCtx, what string, err error) bool {
	s.log.Error(what, zap.Error(err))
	ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	ctx.SetBodyString("{}")
	return true
}
