// internal/handlers/connections.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// writeTimeout bounds a single WebSocket write so one stalled client
// cannot back up a broadcast.
const writeTimeout = 3 * time.Second

// ConnManager routes outbound events to WebSocket connections, keyed
// by game code and player ID. The game engine never sees a connection;
// it only calls the broadcast callbacks that land here.
type ConnManager struct {
	mu     sync.Mutex
	conns  map[string]map[uuid.UUID]*websocket.Conn
	logger *logrus.Logger
}

// NewConnManager returns an empty connection table.
func NewConnManager(logger *logrus.Logger) *ConnManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &ConnManager{
		conns:  make(map[string]map[uuid.UUID]*websocket.Conn),
		logger: logger,
	}
}

// Register attaches a player's connection. An existing connection for
// the same player is replaced; reconnects win.
func (cm *ConnManager) Register(code string, playerID uuid.UUID, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.conns[code] == nil {
		cm.conns[code] = make(map[uuid.UUID]*websocket.Conn)
	}
	cm.conns[code][playerID] = conn
}

// Unregister detaches a player's connection, but only if it is still
// the one given: a reconnect may have replaced it already.
func (cm *ConnManager) Unregister(code string, playerID uuid.UUID, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if current, ok := cm.conns[code][playerID]; ok && current == conn {
		delete(cm.conns[code], playerID)
		if len(cm.conns[code]) == 0 {
			delete(cm.conns, code)
		}
	}
}

// SendToPlayer marshals the message and writes it to one player,
// asynchronously with a write timeout.
func (cm *ConnManager) SendToPlayer(code string, playerID uuid.UUID, message interface{}) {
	cm.mu.Lock()
	conn := cm.conns[code][playerID]
	cm.mu.Unlock()
	if conn == nil {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		cm.logger.Errorf("failed to marshal message for player %s in game %s: %v", playerID, code, err)
		return
	}
	go cm.write(conn, data, code, playerID)
}

// Broadcast marshals the message once and writes it to every connected
// player in the game.
func (cm *ConnManager) Broadcast(code string, message interface{}) {
	cm.mu.Lock()
	targets := make(map[uuid.UUID]*websocket.Conn, len(cm.conns[code]))
	for pid, conn := range cm.conns[code] {
		targets[pid] = conn
	}
	cm.mu.Unlock()
	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		cm.logger.Errorf("failed to marshal broadcast for game %s: %v", code, err)
		return
	}
	for pid, conn := range targets {
		go cm.write(conn, data, code, pid)
	}
}

// CloseGame closes every connection for a finished game and drops the
// table entry.
func (cm *ConnManager) CloseGame(code string, reason string) {
	cm.mu.Lock()
	conns := cm.conns[code]
	delete(cm.conns, code)
	cm.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.StatusNormalClosure, reason)
	}
}

func (cm *ConnManager) write(conn *websocket.Conn, data []byte, code string, playerID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		cm.logger.Warnf("failed to write to player %s in game %s: %v", playerID, code, err)
	}
}
