// internal/game/scoring.go
//
// Pure scoring functions mapping played-card sets to points, per the
// official rulebook. Nothing here mutates player state; the session
// applies the returned numbers.
package game

import (
	"sort"

	"github.com/google/uuid"

	"github.com/sushigo/server/internal/models"
)

// ScoreBreakdown is the per-player result of scoring one round.
type ScoreBreakdown struct {
	Maki     int `json:"maki"`
	Tempura  int `json:"tempura"`
	Sashimi  int `json:"sashimi"`
	Dumpling int `json:"dumpling"`
	Sushi    int `json:"sushi"`
	Total    int `json:"total"`
}

// RankingEntry is one row of the end-game standings.
type RankingEntry struct {
	Rank        int       `json:"rank"`
	PlayerID    uuid.UUID `json:"player_id"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	Pudding     int       `json:"pudding"`
	RoundScores [3]int    `json:"round_scores"`
}

// ScoreRound computes every player's breakdown for the cards played
// this round. Maki is comparative across the table; the other
// categories are independent per player.
func ScoreRound(players []*models.Player) map[uuid.UUID]ScoreBreakdown {
	makiScores := scoreMaki(players)

	results := make(map[uuid.UUID]ScoreBreakdown, len(players))
	for _, p := range players {
		b := ScoreBreakdown{
			Maki:     makiScores[p.ID],
			Tempura:  (p.CountType(models.CardTempura) / 2) * 5,
			Sashimi:  (p.CountType(models.CardSashimi) / 3) * 10,
			Dumpling: scoreDumpling(p.CountType(models.CardDumpling)),
			Sushi:    scoreSushi(p),
		}
		b.Total = b.Maki + b.Tempura + b.Sashimi + b.Dumpling + b.Sushi
		results[p.ID] = b
	}
	return results
}

// scoreMaki awards 6 points to the most maki symbols and 3 to the
// second most. A tie for first splits 6 and absorbs the second-place
// award; a tie for second splits 3. Integer division discards the
// remainder. Players with zero symbols never place.
func scoreMaki(players []*models.Player) map[uuid.UUID]int {
	scores := make(map[uuid.UUID]int, len(players))
	for _, p := range players {
		scores[p.ID] = 0
	}

	type entry struct {
		id    uuid.UUID
		count int
	}
	counts := make([]entry, 0, len(players))
	best := 0
	for _, p := range players {
		n := p.MakiSymbols()
		counts = append(counts, entry{p.ID, n})
		if n > best {
			best = n
		}
	}
	if best == 0 {
		return scores
	}

	var first []uuid.UUID
	for _, e := range counts {
		if e.count == best {
			first = append(first, e.id)
		}
	}

	if len(first) > 1 {
		// Tie for first: split 6, second place is not awarded.
		pts := 6 / len(first)
		for _, id := range first {
			scores[id] = pts
		}
		return scores
	}

	scores[first[0]] = 6

	secondBest := 0
	for _, e := range counts {
		if e.count < best && e.count > secondBest {
			secondBest = e.count
		}
	}
	if secondBest == 0 {
		return scores
	}
	var second []uuid.UUID
	for _, e := range counts {
		if e.count == secondBest {
			second = append(second, e.id)
		}
	}
	pts := 3 / len(second)
	for _, id := range second {
		scores[id] = pts
	}
	return scores
}

// scoreDumpling applies the progressive dumpling table.
func scoreDumpling(count int) int {
	switch count {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return 3
	case 3:
		return 6
	case 4:
		return 10
	default:
		return 15
	}
}

// scoreSushi sums sushi card values, tripling cards that landed on
// wasabi. The switch is exhaustive over the card types that score
// here; everything else is worth nothing in this category.
func scoreSushi(p *models.Player) int {
	total := 0
	for _, c := range p.PlayedCards {
		switch c.Type {
		case models.CardEgg, models.CardSalmon, models.CardSquid:
			v := c.NigiriValue()
			if c.Tripled {
				v *= 3
			}
			total += v
		case models.CardMaki, models.CardTempura, models.CardSashimi,
			models.CardDumpling, models.CardWasabi, models.CardChopsticks,
			models.CardPudding:
			// scored elsewhere or worth nothing
		}
	}
	return total
}

// ScorePudding computes the end-game pudding bonus. The most puddings
// earn +6 and the fewest lose 6, each split across ties with the
// remainder discarded. With exactly two players no penalty is ever
// applied, and a full-table tie awards nothing to anyone.
func ScorePudding(players []*models.Player) map[uuid.UUID]int {
	scores := make(map[uuid.UUID]int, len(players))
	for _, p := range players {
		scores[p.ID] = 0
	}
	if len(players) == 0 {
		return scores
	}

	most, least := players[0].PuddingCount, players[0].PuddingCount
	for _, p := range players {
		if p.PuddingCount > most {
			most = p.PuddingCount
		}
		if p.PuddingCount < least {
			least = p.PuddingCount
		}
	}
	if most == least {
		return scores
	}

	var top []uuid.UUID
	for _, p := range players {
		if p.PuddingCount == most {
			top = append(top, p.ID)
		}
	}
	for _, id := range top {
		scores[id] = 6 / len(top)
	}

	if len(players) == 2 {
		return scores
	}

	var bottom []uuid.UUID
	for _, p := range players {
		if p.PuddingCount == least {
			bottom = append(bottom, p.ID)
		}
	}
	for _, id := range bottom {
		scores[id] = -(6 / len(bottom))
	}
	return scores
}

// Rankings sorts players by final score descending. Ties keep seating
// order, which is the input order.
func Rankings(players []*models.Player) []RankingEntry {
	ordered := make([]*models.Player, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	entries := make([]RankingEntry, len(ordered))
	for i, p := range ordered {
		entries[i] = RankingEntry{
			Rank:        i + 1,
			PlayerID:    p.ID,
			Name:        p.Name,
			Score:       p.Score,
			Pudding:     p.PuddingCount,
			RoundScores: p.RoundScores,
		}
	}
	return entries
}
