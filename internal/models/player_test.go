// internal/models/player_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func card(t CardType) *Card {
	return &Card{ID: uuid.New(), Type: t}
}

func TestPlayerCounters(t *testing.T) {
	p := &Player{ID: uuid.New(), Name: "a"}
	p.PlayedCards = []*Card{
		card(CardTempura),
		card(CardTempura),
		{ID: uuid.New(), Type: CardMaki, MakiValue: 3},
		{ID: uuid.New(), Type: CardMaki, MakiValue: 2},
		card(CardChopsticks),
	}

	assert.Equal(t, 2, p.CountType(CardTempura))
	assert.Equal(t, 0, p.CountType(CardSashimi))
	assert.Equal(t, 5, p.MakiSymbols())
	assert.True(t, p.HasChopsticks())
}

func TestCardInHand(t *testing.T) {
	p := &Player{ID: uuid.New()}
	c := card(CardSquid)
	p.Hand = []*Card{c, card(CardEgg)}

	assert.Same(t, c, p.CardInHand(c.ID))
	assert.Nil(t, p.CardInHand(uuid.New()))
}

func TestResetForRoundKeepsPersistentState(t *testing.T) {
	p := &Player{ID: uuid.New(), Connected: true, Score: 21, PuddingCount: 3, UnusedWasabi: 1}
	p.Hand = []*Card{card(CardEgg)}
	p.PlayedCards = []*Card{card(CardPudding)}

	p.ResetForRound()
	assert.Empty(t, p.Hand)
	assert.Empty(t, p.PlayedCards)
	assert.Equal(t, 0, p.UnusedWasabi)
	assert.Equal(t, 21, p.Score)
	assert.Equal(t, 3, p.PuddingCount)
	assert.True(t, p.Connected)
}

func TestNigiriValues(t *testing.T) {
	assert.Equal(t, 1, card(CardEgg).NigiriValue())
	assert.Equal(t, 2, card(CardSalmon).NigiriValue())
	assert.Equal(t, 3, card(CardSquid).NigiriValue())
	assert.Equal(t, 0, card(CardMaki).NigiriValue())
	assert.True(t, card(CardSalmon).IsNigiri())
	assert.False(t, card(CardWasabi).IsNigiri())
}
