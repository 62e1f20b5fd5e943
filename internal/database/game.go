// internal/database/game.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sushigo/server/internal/game"
)

// RecordGameResults persists the final outcome of a finished game in
// one transaction: the game row plus one result row per player. The
// winner is the ranking's first entry; ties on score share rank 1 in
// the rankings but only the stable-order leader is flagged.
func RecordGameResults(ctx context.Context, code string, rankings []game.RankingEntry) error {
	if DB == nil {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (code, status, player_count)
			VALUES ($1, 'completed', $2)
			ON CONFLICT (code) DO UPDATE SET status = 'completed'
		`
		if _, e := tx.Exec(ctx, upsertGame, code, len(rankings)); e != nil {
			return e
		}

		for _, entry := range rankings {
			q := `
				INSERT INTO game_results (game_code, player_id, player_name, rank, score, pudding, did_win)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (game_code, player_id)
				DO UPDATE SET rank=$4, score=$5, pudding=$6, did_win=$7
			`
			didWin := entry.Rank == 1
			if _, e := tx.Exec(ctx, q, code, entry.PlayerID, entry.Name, entry.Rank, entry.Score, entry.Pudding, didWin); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}
