// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"github.com/sushigo/server/internal/models"
)

// GameEventType is an enum-like type for events produced to the
// transport layer.
type GameEventType string

const (
	EventGameState          GameEventType = "game_state" // personalized snapshot, own hand only
	EventPlayerConnected    GameEventType = "player_connected"
	EventPlayerDisconnected GameEventType = "player_disconnected"
	EventPlayerReady        GameEventType = "player_ready" // selection recorded, not yet revealed
	EventGameStarted        GameEventType = "game_started"
	EventNewRound           GameEventType = "new_round"
	EventCardsRevealed      GameEventType = "cards_revealed"
	EventRoundEnd           GameEventType = "round_end"
	EventGameEnd            GameEventType = "game_end"
	EventError              GameEventType = "error"
)

// GameEvent is the envelope broadcast to clients. Data carries one of
// the payload structs below, or a Snapshot for game_state.
type GameEvent struct {
	Type GameEventType `json:"type"`
	Data interface{}   `json:"data,omitempty"`
}

// PlayerEventPayload identifies the player a connection event concerns.
type PlayerEventPayload struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
}

// RoundPayload announces a new round and its pass direction.
type RoundPayload struct {
	Round         int    `json:"round"`
	PassDirection string `json:"pass_direction"`
}

// PlayerReveal is the deterministic per-player record emitted when the
// selection barrier commits: the cards played this turn, with tripled
// flags already resolved, and whether chopsticks were spent.
type PlayerReveal struct {
	PlayerID       uuid.UUID      `json:"player_id"`
	CardsPlayed    []*models.Card `json:"cards_played"`
	UsedChopsticks bool           `json:"used_chopsticks"`
}

// RevealPayload carries every player's reveal for one turn.
type RevealPayload struct {
	Turn    int            `json:"turn"`
	Reveals []PlayerReveal `json:"reveals"`
}

// RoundEndPayload carries per-player score breakdowns for the round.
type RoundEndPayload struct {
	Round  int                          `json:"round"`
	Scores map[uuid.UUID]ScoreBreakdown `json:"scores"`
}

// GameEndPayload carries the final reckoning: pudding bonuses, final
// scores, and the ranking.
type GameEndPayload struct {
	PuddingBonus map[uuid.UUID]int `json:"pudding_bonus"`
	Rankings     []RankingEntry    `json:"rankings"`
	Winner       string            `json:"winner,omitempty"`
}

// ErrorPayload is sent only to the offending caller.
type ErrorPayload struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}
