// internal/game/deck.go
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/sushigo/server/internal/models"
)

// DeckSize is the fixed number of cards in a freshly built deck.
const DeckSize = 108

// HandSizes maps player count to cards dealt per player.
var HandSizes = map[int]int{
	2: 10,
	3: 9,
	4: 8,
	5: 7,
}

// deckComposition is the official card distribution, 108 cards total.
// Maki cards additionally carry a symbol value of 1, 2 or 3.
var deckComposition = []struct {
	cardType  models.CardType
	makiValue int
	count     int
}{
	{models.CardTempura, 0, 14},
	{models.CardSashimi, 0, 14},
	{models.CardDumpling, 0, 14},
	{models.CardMaki, 1, 6},
	{models.CardMaki, 2, 12},
	{models.CardMaki, 3, 8},
	{models.CardSalmon, 0, 10},
	{models.CardSquid, 0, 5},
	{models.CardEgg, 0, 5},
	{models.CardPudding, 0, 10},
	{models.CardWasabi, 0, 6},
	{models.CardChopsticks, 0, 4},
}

// Deck is the card pool for a single round. It is built fresh and
// reshuffled at every round start; cards dealt out of it never return.
type Deck struct {
	Cards []*models.Card
}

// NewDeck builds and shuffles the full 108-card deck.
func NewDeck() *Deck {
	cards := make([]*models.Card, 0, DeckSize)
	for _, entry := range deckComposition {
		for i := 0; i < entry.count; i++ {
			id, _ := uuid.NewRandom()
			cards = append(cards, &models.Card{
				ID:        id,
				Type:      entry.cardType,
				MakiValue: entry.makiValue,
			})
		}
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{Cards: cards}
}

// Deal removes numPlayers hands of the appropriate size from the deck
// and returns them in seat order. The remainder stays in the deck, set
// aside unused for the round.
func (d *Deck) Deal(numPlayers int) ([][]*models.Card, error) {
	size, ok := HandSizes[numPlayers]
	if !ok {
		return nil, newUserError(ErrInvalidPlayerCount, "game requires 2 to 5 players")
	}

	hands := make([][]*models.Card, numPlayers)
	for i := 0; i < numPlayers; i++ {
		hands[i] = d.Cards[:size]
		d.Cards = d.Cards[size:]
	}
	return hands, nil
}

// Remaining reports how many undealt cards are set aside in the deck.
func (d *Deck) Remaining() int {
	return len(d.Cards)
}
