// internal/game/scoring_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushigo/server/internal/models"
)

func newTestPlayer(name string) *models.Player {
	id, _ := uuid.NewRandom()
	return &models.Player{ID: id, Name: name, Connected: true}
}

func newCard(t models.CardType) *models.Card {
	id, _ := uuid.NewRandom()
	return &models.Card{ID: id, Type: t}
}

func newMaki(value int) *models.Card {
	id, _ := uuid.NewRandom()
	return &models.Card{ID: id, Type: models.CardMaki, MakiValue: value}
}

// playAll routes cards through the same play path the commit uses, so
// wasabi pairing and pudding tallies resolve as in a real game.
func playAll(p *models.Player, cards ...*models.Card) {
	for _, c := range cards {
		playCard(p, c)
	}
}

func TestScoreMakiUniqueLeader(t *testing.T) {
	a, b, c := newTestPlayer("a"), newTestPlayer("b"), newTestPlayer("c")
	playAll(a, newMaki(3), newMaki(2)) // 5 symbols
	playAll(b, newMaki(3))             // 3 symbols
	playAll(c, newMaki(2), newMaki(1)) // 3 symbols

	scores := scoreMaki([]*models.Player{a, b, c})
	assert.Equal(t, 6, scores[a.ID])
	assert.Equal(t, 1, scores[b.ID], "3/2 discards the remainder")
	assert.Equal(t, 1, scores[c.ID])
}

func TestScoreMakiTieForFirstAbsorbsSecond(t *testing.T) {
	a, b, c := newTestPlayer("a"), newTestPlayer("b"), newTestPlayer("c")
	playAll(a, newMaki(3), newMaki(2))
	playAll(b, newMaki(2), newMaki(3))
	playAll(c, newMaki(2))

	scores := scoreMaki([]*models.Player{a, b, c})
	assert.Equal(t, 3, scores[a.ID])
	assert.Equal(t, 3, scores[b.ID])
	assert.Equal(t, 0, scores[c.ID], "second place is not awarded when first is tied")
}

func TestScoreMakiNobodyPlayed(t *testing.T) {
	a, b := newTestPlayer("a"), newTestPlayer("b")
	scores := scoreMaki([]*models.Player{a, b})
	assert.Equal(t, 0, scores[a.ID])
	assert.Equal(t, 0, scores[b.ID])
}

func TestScoreTempuraAndSashimiSets(t *testing.T) {
	players := make([]*models.Player, 4)
	tempura := []int{1, 2, 3, 4}
	sashimi := []int{1, 2, 3, 6}
	for i := range players {
		players[i] = newTestPlayer(string(rune('a' + i)))
		for j := 0; j < tempura[i]; j++ {
			playAll(players[i], newCard(models.CardTempura))
		}
		for j := 0; j < sashimi[i]; j++ {
			playAll(players[i], newCard(models.CardSashimi))
		}
	}

	results := ScoreRound(players)
	wantTempura := []int{0, 5, 5, 10}
	wantSashimi := []int{0, 0, 10, 20}
	for i, p := range players {
		assert.Equal(t, wantTempura[i], results[p.ID].Tempura)
		assert.Equal(t, wantSashimi[i], results[p.ID].Sashimi)
	}
}

func TestScoreDumplingTable(t *testing.T) {
	want := map[int]int{0: 0, 1: 1, 2: 3, 3: 6, 4: 10, 5: 15, 6: 15, 9: 15}
	for count, pts := range want {
		assert.Equal(t, pts, scoreDumpling(count), "dumplings=%d", count)
	}
}

func TestScoreSushiWasabiPairing(t *testing.T) {
	p := newTestPlayer("a")
	// Wasabi triples the next sushi played, not a later one.
	playAll(p, newCard(models.CardWasabi), newCard(models.CardSquid), newCard(models.CardSalmon))
	assert.Equal(t, 9+2, scoreSushi(p))

	q := newTestPlayer("b")
	// Sushi before the wasabi is never tripled.
	playAll(q, newCard(models.CardSalmon), newCard(models.CardWasabi), newCard(models.CardEgg))
	assert.Equal(t, 2+3, scoreSushi(q))

	r := newTestPlayer("c")
	// A wasabi that never receives sushi is worth nothing.
	playAll(r, newCard(models.CardWasabi))
	assert.Equal(t, 0, scoreSushi(r))
}

func TestScorePuddingTwoPlayers(t *testing.T) {
	a, b := newTestPlayer("a"), newTestPlayer("b")
	a.PuddingCount, b.PuddingCount = 7, 3
	scores := ScorePudding([]*models.Player{a, b})
	assert.Equal(t, 6, scores[a.ID])
	assert.Equal(t, 0, scores[b.ID], "no penalty at two players")

	a.PuddingCount, b.PuddingCount = 5, 5
	scores = ScorePudding([]*models.Player{a, b})
	assert.Equal(t, 0, scores[a.ID])
	assert.Equal(t, 0, scores[b.ID])
}

func TestScorePuddingTies(t *testing.T) {
	players := make([]*models.Player, 4)
	for i := range players {
		players[i] = newTestPlayer(string(rune('a' + i)))
	}
	counts := []int{2, 2, 0, 1}
	for i, n := range counts {
		players[i].PuddingCount = n
	}
	scores := ScorePudding(players)
	assert.Equal(t, 3, scores[players[0].ID])
	assert.Equal(t, 3, scores[players[1].ID])
	assert.Equal(t, -6, scores[players[2].ID])
	assert.Equal(t, 0, scores[players[3].ID])

	counts = []int{3, 0, 0, 1}
	for i, n := range counts {
		players[i].PuddingCount = n
	}
	scores = ScorePudding(players)
	assert.Equal(t, 6, scores[players[0].ID])
	assert.Equal(t, -3, scores[players[1].ID])
	assert.Equal(t, -3, scores[players[2].ID])
	assert.Equal(t, 0, scores[players[3].ID])
}

func TestScorePuddingAllTied(t *testing.T) {
	players := make([]*models.Player, 3)
	for i := range players {
		players[i] = newTestPlayer(string(rune('a' + i)))
		players[i].PuddingCount = 4
	}
	scores := ScorePudding(players)
	for _, p := range players {
		assert.Equal(t, 0, scores[p.ID])
	}
}

func TestRankingsStableOnTies(t *testing.T) {
	a, b, c := newTestPlayer("a"), newTestPlayer("b"), newTestPlayer("c")
	a.Score, b.Score, c.Score = 30, 42, 30

	rankings := Rankings([]*models.Player{a, b, c})
	require.Len(t, rankings, 3)
	assert.Equal(t, b.ID, rankings[0].PlayerID)
	assert.Equal(t, 1, rankings[0].Rank)
	assert.Equal(t, a.ID, rankings[1].PlayerID, "ties keep seating order")
	assert.Equal(t, c.ID, rankings[2].PlayerID)
	assert.Equal(t, 3, rankings[2].Rank)
}

func TestScoreRoundTotals(t *testing.T) {
	a, b := newTestPlayer("a"), newTestPlayer("b")
	playAll(a,
		newMaki(3), newMaki(2),
		newCard(models.CardTempura), newCard(models.CardTempura),
		newCard(models.CardWasabi), newCard(models.CardSquid),
	)
	playAll(b,
		newCard(models.CardDumpling), newCard(models.CardDumpling), newCard(models.CardDumpling),
		newCard(models.CardSalmon),
		newCard(models.CardPudding),
	)

	results := ScoreRound([]*models.Player{a, b})
	// a: maki 6, tempura 5, squid on wasabi 9 = 20
	assert.Equal(t, 20, results[a.ID].Total)
	// b: dumplings 6, salmon 2; pudding scores nothing during the round
	assert.Equal(t, 8, results[b.ID].Total)
	assert.Equal(t, 1, b.PuddingCount)
}
