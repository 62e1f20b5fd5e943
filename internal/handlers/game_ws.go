// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/sushigo/server/internal/auth"
	"github.com/sushigo/server/internal/game"
	"github.com/sushigo/server/internal/middleware"
)

// clientMessage is the single inbound frame shape. Fields beyond Type
// are read only by the message kinds that need them.
type clientMessage struct {
	Type          string `json:"type"`
	CardID        string `json:"card_id,omitempty"`
	UseChopsticks bool   `json:"use_chopsticks,omitempty"`
	SecondCardID  string `json:"second_card_id,omitempty"`
}

// GameWSHandler upgrades /game/ws/{code}/{player_id} to a WebSocket,
// authenticates the player token, and pumps inbound commands into the
// session until the connection drops.
func (gs *GameServer) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	code, playerID, ok := parseWSPath(r.URL.Path)
	if !ok {
		http.Error(w, "malformed path", http.StatusBadRequest)
		return
	}

	s, found := gs.Registry.Lookup(code)
	if !found {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		if c, err := r.Cookie("auth_token"); err == nil {
			token = c.Value
		}
	}
	tokenPlayer, tokenGame, err := auth.AuthenticatePlayerToken(token)
	if err != nil || tokenPlayer != playerID.String() || tokenGame != code {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:       []string{"game"},
		InsecureSkipVerify: true,
	})
	if err != nil {
		gs.logger.WithError(err).Warn("websocket accept failed")
		return
	}
	middleware.LogWebSocketConnect(gs.logger, r.RemoteAddr, r.URL.Path)

	gs.Conns.Register(code, playerID, conn)
	if err := s.HandleConnect(playerID); err != nil {
		gs.Conns.Unregister(code, playerID, conn)
		conn.Close(websocket.StatusPolicyViolation, "unknown player")
		return
	}

	readErr := gs.readLoop(r.Context(), conn, s, code, playerID)

	gs.Conns.Unregister(code, playerID, conn)
	s.HandleDisconnect(playerID)
	middleware.LogWebSocketDisconnect(gs.logger, r.RemoteAddr, r.URL.Path, readErr)
	conn.Close(websocket.StatusNormalClosure, "")
}

// readLoop drains inbound frames until the peer goes away. Rule
// violations are reported back to the offender only; they never close
// the connection.
func (gs *GameServer) readLoop(ctx context.Context, conn *websocket.Conn, s *game.GameSession, code string, playerID uuid.UUID) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			gs.sendError(code, playerID, "bad_request", "malformed message")
			continue
		}
		if err := gs.dispatch(s, playerID, msg); err != nil {
			if ue, ok := game.AsUserError(err); ok {
				gs.sendError(code, playerID, string(ue.Kind), ue.Message)
				continue
			}
			gs.sendError(code, playerID, "internal_error", err.Error())
		}
	}
}

func (gs *GameServer) dispatch(s *game.GameSession, playerID uuid.UUID, msg clientMessage) error {
	switch msg.Type {
	case "start_game":
		return s.Start(playerID)
	case "select_card":
		cardID, err := uuid.Parse(msg.CardID)
		if err != nil {
			return game.NewUserError(game.ErrCardNotInHand, "card_id is not a valid id")
		}
		secondID := uuid.Nil
		if msg.UseChopsticks {
			secondID, err = uuid.Parse(msg.SecondCardID)
			if err != nil {
				return game.NewUserError(game.ErrInvalidSecondCard, "second_card_id is not a valid id")
			}
		}
		return s.Select(playerID, cardID, msg.UseChopsticks, secondID)
	case "next_round":
		return s.NextRound(playerID)
	case "ping":
		return nil
	default:
		return game.NewUserError(game.ErrInvalidPhase, "unknown message type "+msg.Type)
	}
}

func (gs *GameServer) sendError(code string, playerID uuid.UUID, kind, message string) {
	gs.Conns.SendToPlayer(code, playerID, game.GameEvent{
		Type: game.EventError,
		Data: game.ErrorPayload{Kind: game.ErrorKind(kind), Message: message},
	})
}

// parseWSPath splits /game/ws/{code}/{player_id}.
func parseWSPath(path string) (string, uuid.UUID, bool) {
	rest := strings.TrimPrefix(path, "/game/ws/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", uuid.Nil, false
	}
	playerID, err := uuid.Parse(parts[1])
	if err != nil {
		return "", uuid.Nil, false
	}
	return strings.ToUpper(parts[0]), playerID, true
}
