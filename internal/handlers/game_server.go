// internal/handlers/game_server.go
package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sushigo/server/internal/cache"
	"github.com/sushigo/server/internal/config"
	"github.com/sushigo/server/internal/database"
	"github.com/sushigo/server/internal/game"
	"github.com/sushigo/server/internal/models"
)

// GameServer glues the game engine to the outside world: it owns the
// session registry and the connection table, and wires every new
// session's callbacks (broadcasts, action log, archiving) before its
// command loop starts.
type GameServer struct {
	Registry *game.SessionRegistry
	Conns    *ConnManager

	logger         *logrus.Logger
	historianQueue string
}

// NewGameServer builds the server and installs the session wiring.
func NewGameServer(logger *logrus.Logger, cfg config.Config) *GameServer {
	if logger == nil {
		logger = logrus.New()
	}
	gs := &GameServer{
		Registry:       game.NewSessionRegistry(logger),
		Conns:          NewConnManager(logger),
		logger:         logger,
		historianQueue: cfg.HistorianQueue,
	}
	if gs.historianQueue == "" {
		gs.historianQueue = cache.DefaultQueueName
	}
	gs.Registry.Configure = gs.configureSession
	return gs
}

// configureSession hooks a fresh session into the connection table, the
// historian queue, and the results archive. Everything that leaves the
// session loop is dispatched on its own goroutine so a slow sink never
// stalls a turn.
func (gs *GameServer) configureSession(s *game.GameSession) {
	code := s.Code

	s.BroadcastFn = func(ev game.GameEvent) {
		gs.Conns.Broadcast(code, ev)
	}
	s.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) {
		gs.Conns.SendToPlayer(code, playerID, ev)
	}

	s.LogActionFn = func(code string, index int, actor uuid.UUID, actionType string, payload map[string]interface{}) {
		record := cache.GameActionRecord{
			GameCode:      code,
			ActionIndex:   index,
			ActorID:       actor,
			ActionType:    actionType,
			ActionPayload: payload,
			Timestamp:     time.Now().Unix(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cache.PublishGameAction(ctx, gs.historianQueue, record); err != nil {
				gs.logger.WithError(err).WithField("game", code).Warn("failed to publish game action")
			}
		}()
	}

	s.OnGameEnd = func(code string, players []*models.Player, rankings []game.RankingEntry) {
		go gs.archiveAndExpire(code, rankings)
	}

	s.OnTerminate = func(code string, err error) {
		go func() {
			gs.Registry.Expire(code)
			gs.Conns.CloseGame(code, "session terminated")
		}()
	}
}

// archiveAndExpire persists the final standings, then tears the session
// down. Runs off the session loop; the loop is already idle in GameEnd.
func (gs *GameServer) archiveAndExpire(code string, rankings []game.RankingEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.RecordGameResults(ctx, code, rankings); err != nil {
		gs.logger.WithError(err).WithField("game", code).Error("failed to archive game results")
	}
	gs.Registry.Expire(code)
	gs.Conns.CloseGame(code, "game over")
}
