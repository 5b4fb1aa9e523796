// Package mazeapi exposes maze games over HTTP and WebSocket.
package mazeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/beka-birhanu/vinom-maze/api/identity"
	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
	defaultTokenTTL  = 24 * time.Hour
)

var (
	ErrMissingSessions  = errors.New("session manager is required")
	ErrMissingHistory   = errors.New("history repository is required")
	ErrMissingTokenizer = errors.New("tokenizer is required")
	ErrMissingLogger    = errors.New("logger is required")
)

// Config holds the dependencies of a Controller.
type Config struct {
	Sessions    i.GameSessionManager
	History     i.HistoryRepo
	Leaderboard i.Leaderboard // Optional; the leaderboard route answers 503 without it.
	Tokenizer   i.Tokenizer
	TokenTTL    time.Duration
	Logger      i.Logger
}

// Controller serves the game routes.
type Controller struct {
	sessions    i.GameSessionManager
	history     i.HistoryRepo
	leaderboard i.Leaderboard
	tokenizer   i.Tokenizer
	tokenTTL    time.Duration
	logger      i.Logger
}

// NewController initializes a Controller.
func NewController(c *Config) (*Controller, error) {
	switch {
	case c.Sessions == nil:
		return nil, ErrMissingSessions
	case c.History == nil:
		return nil, ErrMissingHistory
	case c.Tokenizer == nil:
		return nil, ErrMissingTokenizer
	case c.Logger == nil:
		return nil, ErrMissingLogger
	}

	ttl := c.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Controller{
		sessions:    c.Sessions,
		history:     c.History,
		leaderboard: c.Leaderboard,
		tokenizer:   c.Tokenizer,
		tokenTTL:    ttl,
		logger:      c.Logger,
	}, nil
}

// RegisterPublic registers public routes.
func (mc *Controller) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/games", mc.create)
	route.GET("/history", mc.recent)
	route.GET("/leaderboard", mc.top)
}

// RegisterProtected registers routes that need the game token.
func (mc *Controller) RegisterProtected(route *gin.RouterGroup) {
	games := route.Group("/games/:ID")
	{
		games.GET("", mc.state)
		games.POST("/moves", mc.move)
		games.POST("/restart", mc.restart)
		games.DELETE("", mc.abandon)
		games.GET("/ws", mc.stream)
	}
}

// create handles new game requests.
func (mc *Controller) create(ctx *gin.Context) {
	var request CreateGameRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := mc.sessions.NewSession(request.PlayerName, request.mazeConfig())
	if err != nil {
		respondError(ctx, err)
		return
	}

	token, err := mc.tokenizer.Issue(session.ID(), mc.tokenTTL)
	if err != nil {
		mc.logger.Error(fmt.Sprintf("issuing token for session %s: %s", session.ID(), err))
		_ = mc.sessions.Abandon(session.ID())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while creating game"})
		return
	}

	ctx.JSON(http.StatusCreated, &CreateGameResponse{
		Game:  session.Snapshot(),
		Token: token,
	})
}

// state returns the current state of a game.
func (mc *Controller) state(ctx *gin.Context) {
	id, ok := gameID(ctx)
	if !ok {
		return
	}

	session, err := mc.sessions.Session(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, session.Snapshot())
}

// move applies a single move.
func (mc *Controller) move(ctx *gin.Context) {
	id, ok := gameID(ctx)
	if !ok {
		return
	}

	var request MoveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dir, err := game.ParseDirection(request.Direction)
	if err != nil {
		respondError(ctx, err)
		return
	}

	response, err := mc.applyMove(ctx, id, dir)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// restart deals a new maze for the game.
func (mc *Controller) restart(ctx *gin.Context) {
	id, ok := gameID(ctx)
	if !ok {
		return
	}

	state, err := mc.sessions.Restart(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// abandon ends the game without recording it.
func (mc *Controller) abandon(ctx *gin.Context) {
	id, ok := gameID(ctx)
	if !ok {
		return
	}

	if err := mc.sessions.Abandon(id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// recent lists recently finished runs.
func (mc *Controller) recent(ctx *gin.Context) {
	limit, ok := listLimit(ctx)
	if !ok {
		return
	}

	results, err := mc.history.Recent(ctx, limit)
	if err != nil {
		mc.logger.Error(fmt.Sprintf("listing history: %s", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading history"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": results})
}

// top lists the best scores.
func (mc *Controller) top(ctx *gin.Context) {
	if mc.leaderboard == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard disabled"})
		return
	}

	limit, ok := listLimit(ctx)
	if !ok {
		return
	}

	rankings, err := mc.leaderboard.Top(ctx, int64(limit))
	if err != nil {
		mc.logger.Error(fmt.Sprintf("reading leaderboard: %s", err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading leaderboard"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"rankings": rankings})
}

// applyMove moves the player and attaches the final state on a winning move.
func (mc *Controller) applyMove(ctx *gin.Context, id uuid.UUID, dir game.Direction) (*MoveResponse, error) {
	res, err := mc.sessions.Move(ctx, id, dir)
	if err != nil {
		return nil, err
	}

	response := &MoveResponse{MoveResult: res}
	if res.Moved && res.Won {
		if session, err := mc.sessions.Session(id); err == nil {
			state := session.Snapshot()
			response.Game = &state
		}
	}
	return response, nil
}

// gameID returns the session ID checked by the authorization middleware, or parses the
// route parameter when the middleware is not installed.
func gameID(ctx *gin.Context) (uuid.UUID, bool) {
	if id, ok := identity.SessionID(ctx); ok {
		return id, true
	}

	id, err := uuid.Parse(ctx.Param("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return uuid.Nil, false
	}
	return id, true
}

func listLimit(ctx *gin.Context) (int, bool) {
	raw := ctx.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return min(limit, maxListLimit), true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, game.ErrInvalidDirection),
		errors.Is(err, game.ErrInvalidPlayerName),
		errors.Is(err, maze.ErrInvalidDimensions),
		errors.Is(err, maze.ErrUnknownAlgorithm):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	ctx.JSON(status, gin.H{"error": message})
}
