// internal/game/coordinator.go
package game

import (
	"github.com/google/uuid"

	"github.com/sushigo/server/internal/models"
)

// coordinatorState tracks where the coordinator sits inside a round.
type coordinatorState int

const (
	awaitingSelections coordinatorState = iota
	committing
	roundComplete
)

// pendingSelection is one player's recorded (not yet committed) choice.
type pendingSelection struct {
	CardID        uuid.UUID
	UseChopsticks bool
	SecondCardID  uuid.UUID
}

// TurnCoordinator collects per-turn selections, enforces the
// all-selected barrier, and commits hand mutations as a single
// indivisible step. It is driven exclusively from the session's
// command loop, so none of its methods need locking.
type TurnCoordinator struct {
	state   coordinatorState
	pending map[uuid.UUID]pendingSelection
}

func newTurnCoordinator() *TurnCoordinator {
	return &TurnCoordinator{
		state:   awaitingSelections,
		pending: make(map[uuid.UUID]pendingSelection),
	}
}

// Reset prepares the coordinator for a fresh round.
func (tc *TurnCoordinator) Reset() {
	tc.state = awaitingSelections
	tc.pending = make(map[uuid.UUID]pendingSelection)
}

// HasSelected reports whether the player has a recorded selection for
// the current turn.
func (tc *TurnCoordinator) HasSelected(playerID uuid.UUID) bool {
	_, ok := tc.pending[playerID]
	return ok
}

// Select validates and records a player's selection. A later call
// overwrites the earlier one until the barrier fires; players may
// change their mind while peers are still thinking. The hand itself
// is not touched here.
func (tc *TurnCoordinator) Select(p *models.Player, cardID uuid.UUID, useChopsticks bool, secondCardID uuid.UUID) error {
	if tc.state != awaitingSelections {
		return newUserError(ErrInvalidPhase, "selections are not being accepted right now")
	}
	if p.CardInHand(cardID) == nil {
		return newUserError(ErrCardNotInHand, "selected card is not in your hand")
	}
	sel := pendingSelection{CardID: cardID}
	if useChopsticks {
		if !p.HasChopsticks() {
			return newUserError(ErrChopsticksUnavailable, "no chopsticks in your played cards")
		}
		if secondCardID == cardID {
			return newUserError(ErrInvalidSecondCard, "second card must differ from the first")
		}
		if p.CardInHand(secondCardID) == nil {
			return newUserError(ErrInvalidSecondCard, "second card is not in your hand")
		}
		sel.UseChopsticks = true
		sel.SecondCardID = secondCardID
	}
	tc.pending[p.ID] = sel
	return nil
}

// BarrierReady reports whether every connected player has a recorded
// selection. Disconnected players do not hold the barrier open; they
// are auto-played at commit time.
func (tc *TurnCoordinator) BarrierReady(players []*models.Player) bool {
	if tc.state != awaitingSelections {
		return false
	}
	anyConnected := false
	for _, p := range players {
		if !p.Connected {
			continue
		}
		anyConnected = true
		if _, ok := tc.pending[p.ID]; !ok {
			return false
		}
	}
	return anyConnected
}

// Commit atomically applies every player's selection, resolves wasabi
// pairing, returns chopsticks, rotates the remaining hands, and clears
// the pending map. It returns the per-player reveal records (in seat
// order) and whether the round is complete. No observer sees a
// partially committed turn: Commit runs to completion inside the
// session's single-threaded loop.
func (tc *TurnCoordinator) Commit(players []*models.Player, passLeft bool) ([]PlayerReveal, bool, error) {
	tc.state = committing

	// Disconnected players retain no selection; auto-play their first
	// card so every hand still shrinks by exactly one.
	for _, p := range players {
		if _, ok := tc.pending[p.ID]; ok {
			continue
		}
		if len(p.Hand) == 0 {
			return nil, false, newIntegrityError("player %s has an empty hand at commit", p.ID)
		}
		tc.pending[p.ID] = pendingSelection{CardID: p.Hand[0].ID}
	}

	reveals := make([]PlayerReveal, 0, len(players))
	for _, p := range players {
		sel := tc.pending[p.ID]
		handBefore := len(p.Hand)

		first := takeFromHand(p, sel.CardID)
		if first == nil {
			return nil, false, newIntegrityError("selected card %s vanished from hand of %s", sel.CardID, p.ID)
		}
		playCard(p, first)
		played := []*models.Card{first}

		if sel.UseChopsticks {
			second := takeFromHand(p, sel.SecondCardID)
			if second == nil {
				return nil, false, newIntegrityError("second card %s vanished from hand of %s", sel.SecondCardID, p.ID)
			}
			playCard(p, second)
			played = append(played, second)

			// The spent chopsticks leaves the played area and rejoins
			// the hand, so it travels on with the pass.
			if !returnChopsticks(p) {
				return nil, false, newIntegrityError("chopsticks missing from played area of %s", p.ID)
			}
		}

		if len(p.Hand) != handBefore-1 {
			return nil, false, newIntegrityError("hand of %s changed by %d, want -1", p.ID, len(p.Hand)-handBefore)
		}

		reveals = append(reveals, PlayerReveal{
			PlayerID:       p.ID,
			CardsPlayed:    played,
			UsedChopsticks: sel.UseChopsticks,
		})
	}

	rotateHands(players, passLeft)
	tc.pending = make(map[uuid.UUID]pendingSelection)

	if len(players[0].Hand) == 0 {
		tc.state = roundComplete
		return reveals, true, nil
	}
	tc.state = awaitingSelections
	return reveals, false, nil
}

// playCard appends a card to the player's played area, resolving
// wasabi pairing and the pudding tally at append time.
func playCard(p *models.Player, c *models.Card) {
	switch c.Type {
	case models.CardWasabi:
		p.UnusedWasabi++
	case models.CardSalmon, models.CardSquid, models.CardEgg:
		if p.UnusedWasabi > 0 {
			c.Tripled = true
			p.UnusedWasabi--
		}
	case models.CardPudding:
		p.PuddingCount++
	}
	p.PlayedCards = append(p.PlayedCards, c)
}

// takeFromHand removes and returns the card with the given ID, or nil.
func takeFromHand(p *models.Player, id uuid.UUID) *models.Card {
	for i, c := range p.Hand {
		if c.ID == id {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c
		}
	}
	return nil
}

// returnChopsticks moves one chopsticks card from the played area back
// into the hand.
func returnChopsticks(p *models.Player) bool {
	for i, c := range p.PlayedCards {
		if c.Type == models.CardChopsticks {
			p.PlayedCards = append(p.PlayedCards[:i], p.PlayedCards[i+1:]...)
			p.Hand = append(p.Hand, c)
			return true
		}
	}
	return false
}

// rotateHands passes every post-removal hand one seat along the pass
// direction. Passing left means seat i receives the hand of seat i+1.
func rotateHands(players []*models.Player, passLeft bool) {
	n := len(players)
	if n < 2 {
		return
	}
	hands := make([][]*models.Card, n)
	for i, p := range players {
		hands[i] = p.Hand
	}
	for i := range players {
		if passLeft {
			players[i].Hand = hands[(i+1)%n]
		} else {
			players[i].Hand = hands[(i-1+n)%n]
		}
	}
}
