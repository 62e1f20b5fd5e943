// internal/models/card.go
package models

import "github.com/google/uuid"

// CardType enumerates every card printed in the Sushi Go deck.
type CardType string

const (
	CardMaki       CardType = "maki"
	CardTempura    CardType = "tempura"
	CardSashimi    CardType = "sashimi"
	CardDumpling   CardType = "dumpling"
	CardSalmon     CardType = "salmon"
	CardSquid      CardType = "squid"
	CardEgg        CardType = "egg"
	CardWasabi     CardType = "wasabi"
	CardChopsticks CardType = "chopsticks"
	CardPudding    CardType = "pudding"
)

// Card is a single physical card instance. The ID is unique per
// instance, not per type, so clients can reference an exact card even
// when a hand holds duplicates. Type and MakiValue never change after
// deck construction; Tripled is set once, at play time, when the card
// lands on an unused wasabi.
type Card struct {
	ID        uuid.UUID `json:"id"`
	Type      CardType  `json:"type"`
	MakiValue int       `json:"maki_value,omitempty"` // 1, 2 or 3; maki only
	Tripled   bool      `json:"tripled,omitempty"`
}

// IsNigiri reports whether the card is a sushi card that can sit on wasabi.
func (c *Card) IsNigiri() bool {
	switch c.Type {
	case CardSalmon, CardSquid, CardEgg:
		return true
	}
	return false
}

// NigiriValue returns the base point value for sushi cards, 0 otherwise.
func (c *Card) NigiriValue() int {
	switch c.Type {
	case CardEgg:
		return 1
	case CardSalmon:
		return 2
	case CardSquid:
		return 3
	}
	return 0
}
