package mazeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	maxMessageSize = 1024
	idleTimeout    = 10 * time.Minute
	writeTimeout   = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// stream upgrades to a WebSocket carrying moves from the player and results back.
// The current state is sent first. Swipes shorter than the gesture threshold get no reply.
func (mc *Controller) stream(ctx *gin.Context) {
	id, ok := gameID(ctx)
	if !ok {
		return
	}

	session, err := mc.sessions.Session(id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		mc.logger.Warning(fmt.Sprintf("upgrading game %s: %s", id, err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	state := session.Snapshot()
	if err := writeMessage(conn, &ServerMessage{Type: MessageState, Game: &state}); err != nil {
		return
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(idleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				mc.logger.Warning(fmt.Sprintf("reading game %s stream: %s", id, err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if writeMessage(conn, &ServerMessage{Type: MessageError, Error: "malformed message"}) != nil {
				return
			}
			continue
		}

		reply, closing := mc.handleMessage(ctx, id, &msg)
		if reply == nil {
			continue
		}
		if err := writeMessage(conn, reply); err != nil || closing {
			return
		}
	}
}

// handleMessage applies one client frame. A nil reply means the frame is ignored;
// closing reports that the game is gone and the stream should end.
func (mc *Controller) handleMessage(ctx *gin.Context, id uuid.UUID, msg *ClientMessage) (reply *ServerMessage, closing bool) {
	if msg.Restart {
		state, err := mc.sessions.Restart(id)
		if err != nil {
			return errorMessage(err), errors.Is(err, service.ErrSessionNotFound)
		}
		return &ServerMessage{Type: MessageState, Game: &state}, false
	}

	var dir game.Direction
	if msg.Swipe != nil {
		var ok bool
		if dir, ok = game.DirectionFromSwipe(msg.Swipe.DX, msg.Swipe.DY); !ok {
			return nil, false
		}
	} else {
		var err error
		if dir, err = game.ParseDirection(msg.Direction); err != nil {
			return errorMessage(err), false
		}
	}

	response, err := mc.applyMove(ctx, id, dir)
	if err != nil {
		return errorMessage(err), errors.Is(err, service.ErrSessionNotFound)
	}
	return &ServerMessage{Type: MessageMove, Move: response}, false
}

func errorMessage(err error) *ServerMessage {
	return &ServerMessage{Type: MessageError, Error: err.Error()}
}

func writeMessage(conn *websocket.Conn, msg *ServerMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}
