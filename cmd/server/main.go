// cmd/server/main.go
package main

import (
	"context"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/sushigo/server/internal/auth"
	"github.com/sushigo/server/internal/cache"
	"github.com/sushigo/server/internal/config"
	"github.com/sushigo/server/internal/database"
	"github.com/sushigo/server/internal/handlers"
	"github.com/sushigo/server/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	auth.Init()

	if cfg.PostgresDSN != "" {
		if err := database.Connect(context.Background(), cfg.PostgresDSN); err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		logger.Info("connected to postgres")
	} else {
		logger.Info("POSTGRES_DSN not set; result archiving disabled")
	}

	if cfg.RedisAddr != "" {
		if err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisDB); err != nil {
			logger.WithError(err).Fatal("failed to connect to redis")
		}
		logger.Info("connected to redis")
	} else {
		logger.Info("REDIS_ADDR not set; action historian disabled")
	}

	gs := handlers.NewGameServer(logger, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/create-game", gs.CreateGameHandler)
	mux.HandleFunc("/api/join-game", gs.JoinGameHandler)
	mux.HandleFunc("/api/game/", gs.GameInfoHandler)
	mux.HandleFunc("/game/ws/", gs.GameWSHandler)

	handler := middleware.LogMiddleware(logger)(mux)

	logger.WithField("addr", cfg.Addr).Info("sushi go server listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}
