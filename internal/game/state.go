// internal/game/state.go
package game

import (
	"github.com/google/uuid"

	"github.com/sushigo/server/internal/models"
)

// PlayerView is one player's state as seen by the requesting player.
// Hand is populated only for the viewer themselves; opponents are
// reduced to public information. This is the information-hiding
// boundary: nothing below this struct ever leaves the engine.
type PlayerView struct {
	PlayerID      uuid.UUID      `json:"player_id"`
	Name          string         `json:"name"`
	Score         int            `json:"score"`
	RoundScores   [3]int         `json:"round_scores"`
	PlayedCards   []*models.Card `json:"played_cards"`
	PuddingCount  int            `json:"pudding_count"`
	HandCount     int            `json:"hand_count"`
	Ready         bool           `json:"is_ready"`
	Connected     bool           `json:"is_connected"`
	HasChopsticks bool           `json:"has_chopsticks"`
	Hand          []*models.Card `json:"hand,omitempty"`
}

// Snapshot is the full session view pushed as a game_state event.
type Snapshot struct {
	Code          string       `json:"game_code"`
	Phase         GamePhase    `json:"phase"`
	Round         int          `json:"current_round"`
	Turn          int          `json:"current_turn"`
	PassDirection string       `json:"pass_direction"`
	HostID        uuid.UUID    `json:"host_id"`
	PlayerCount   int          `json:"player_count"`
	Players       []PlayerView `json:"players"`
}

// snapshotFor builds the session view for one player. Pass uuid.Nil
// for the public (no hands) view. Runs on the session goroutine.
func (s *GameSession) snapshotFor(forPlayer uuid.UUID) Snapshot {
	snap := Snapshot{
		Code:          s.Code,
		Phase:         s.phase,
		Round:         s.round,
		Turn:          s.turn,
		PassDirection: s.passDirection(),
		HostID:        s.HostID,
		PlayerCount:   len(s.players),
	}
	for _, p := range s.players {
		view := PlayerView{
			PlayerID:      p.ID,
			Name:          p.Name,
			Score:         p.Score,
			RoundScores:   p.RoundScores,
			PlayedCards:   p.PlayedCards,
			PuddingCount:  p.PuddingCount,
			HandCount:     len(p.Hand),
			Ready:         s.coordinator.HasSelected(p.ID),
			Connected:     p.Connected,
			HasChopsticks: p.HasChopsticks(),
		}
		if p.ID == forPlayer {
			view.Hand = p.Hand
		}
		snap.Players = append(snap.Players, view)
	}
	return snap
}
