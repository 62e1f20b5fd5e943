// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application
// startup; when nil, action logging is silently disabled.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for game action logs.
var DefaultQueueName = "sushigo_actions"

// GameActionRecord is one processed session command, pushed to the
// historian queue so finished games can be replayed or audited.
type GameActionRecord struct {
	GameCode      string                 `json:"game_code"`
	ActionIndex   int                    `json:"action_index"`
	ActorID       uuid.UUID              `json:"actor_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client and verifies the
// connection.
func ConnectRedis(addr string, db int) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishGameAction serializes the record and pushes it to the queue.
// A no-op when Redis was never connected.
func PublishGameAction(ctx context.Context, queueName string, record GameActionRecord) error {
	if Rdb == nil {
		return nil
	}
	if queueName == "" {
		queueName = DefaultQueueName
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal GameActionRecord: %w", err)
	}
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}
