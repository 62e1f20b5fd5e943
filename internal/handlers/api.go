// internal/handlers/api.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sushigo/server/internal/auth"
	"github.com/sushigo/server/internal/game"
)

type createGameRequest struct {
	Name string `json:"name"`
}

type joinGameRequest struct {
	GameCode string `json:"game_code"`
	Name     string `json:"name"`
}

type gameCredentials struct {
	Success  bool   `json:"success"`
	GameCode string `json:"game_code"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
	IsHost   bool   `json:"is_host"`
}

// CreateGameHandler makes a new game with the caller seated as host and
// returns the code plus a token for the WebSocket connection.
func (gs *GameServer) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "a player name is required")
		return
	}

	s, hostID := gs.Registry.Create(strings.TrimSpace(req.Name))
	token, err := auth.CreatePlayerToken(s.Code, hostID.String())
	if err != nil {
		gs.logger.WithError(err).Error("failed to sign player token")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, gameCredentials{
		Success:  true,
		GameCode: s.Code,
		PlayerID: hostID.String(),
		Token:    token,
		IsHost:   true,
	})
}

// JoinGameHandler seats a player in an existing lobby.
func (gs *GameServer) JoinGameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}
	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "a game code and player name are required")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.GameCode))

	s, ok := gs.Registry.Lookup(code)
	if !ok {
		writeError(w, http.StatusNotFound, string(game.ErrGameNotFound), "no game with that code")
		return
	}
	playerID, err := s.Join(strings.TrimSpace(req.Name))
	if err != nil {
		writeUserError(w, err)
		return
	}
	token, err := auth.CreatePlayerToken(code, playerID.String())
	if err != nil {
		gs.logger.WithError(err).Error("failed to sign player token")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, gameCredentials{
		Success:  true,
		GameCode: code,
		PlayerID: playerID.String(),
		Token:    token,
		IsHost:   false,
	})
}

// GameInfoHandler returns the public view of a game: no hands, only
// counts. Path: /api/game/{code}.
func (gs *GameServer) GameInfoHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/api/game/"))
	if code == "" || strings.Contains(code, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed game code")
		return
	}
	s, ok := gs.Registry.Lookup(code)
	if !ok {
		writeError(w, http.StatusNotFound, string(game.ErrGameNotFound), "no game with that code")
		return
	}
	snap, err := s.Snapshot(uuid.Nil)
	if err != nil {
		writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   kind,
		"message": message,
	})
}

// writeUserError maps an engine error onto an HTTP status. Rule
// violations are the caller's fault; anything else is ours.
func writeUserError(w http.ResponseWriter, err error) {
	ue, ok := game.AsUserError(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	status := http.StatusBadRequest
	switch ue.Kind {
	case game.ErrGameNotFound:
		status = http.StatusNotFound
	case game.ErrGameFull, game.ErrDuplicateName:
		status = http.StatusConflict
	case game.ErrNotHost:
		status = http.StatusForbidden
	case game.ErrGameOver:
		status = http.StatusGone
	}
	writeError(w, status, string(ue.Kind), ue.Message)
}
