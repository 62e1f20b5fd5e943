// internal/models/player.go
package models

import "github.com/google/uuid"

// Player holds all per-player state for one game session. Hand and
// PlayedCards are mutated exclusively by the session's turn commit;
// the player itself carries no turn logic.
type Player struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Hand        []*Card   `json:"hand"`
	PlayedCards []*Card   `json:"played_cards"`

	// PuddingCount persists across all three rounds and is only ever
	// incremented; the end-game bonus reads it after round 3.
	PuddingCount int `json:"pudding_count"`

	// UnusedWasabi counts wasabi cards in the played area that have not
	// yet received a sushi card. Reset when the played area is cleared.
	UnusedWasabi int `json:"-"`

	Score       int    `json:"score"`
	RoundScores [3]int `json:"round_scores"`
	Connected   bool   `json:"is_connected"`
}

// HasChopsticks reports whether a chopsticks card sits in the played
// area and is therefore available for a two-card selection.
func (p *Player) HasChopsticks() bool {
	for _, c := range p.PlayedCards {
		if c.Type == CardChopsticks {
			return true
		}
	}
	return false
}

// CountType counts played cards of the given type.
func (p *Player) CountType(t CardType) int {
	n := 0
	for _, c := range p.PlayedCards {
		if c.Type == t {
			n++
		}
	}
	return n
}

// MakiSymbols sums the maki symbols across the played area.
func (p *Player) MakiSymbols() int {
	n := 0
	for _, c := range p.PlayedCards {
		if c.Type == CardMaki {
			n += c.MakiValue
		}
	}
	return n
}

// CardInHand returns the card with the given ID, or nil.
func (p *Player) CardInHand(id uuid.UUID) *Card {
	for _, c := range p.Hand {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ResetForRound clears the round-scoped piles. Pudding count, score
// and connection status survive.
func (p *Player) ResetForRound() {
	p.Hand = nil
	p.PlayedCards = nil
	p.UnusedWasabi = 0
}
