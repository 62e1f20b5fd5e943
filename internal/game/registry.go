// internal/game/registry.go
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// SessionRegistry owns every live session, keyed by game code. Codes
// are unique for as long as the session lives; expired codes can be
// reissued.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*GameSession
	rand     *rand.Rand
	logger   *logrus.Logger

	// Configure, if set, is applied to every new session before its
	// command loop starts. The server wires broadcast and archive
	// callbacks here.
	Configure func(s *GameSession)
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry(logger *logrus.Logger) *SessionRegistry {
	if logger == nil {
		logger = logrus.New()
	}
	return &SessionRegistry{
		sessions: make(map[string]*GameSession),
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger,
	}
}

// Create makes a new session with a fresh unique code, seats the host,
// and starts the command loop. Returns the session and the host's
// player ID.
func (r *SessionRegistry) Create(hostName string) (*GameSession, uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateCode()
	for _, taken := r.sessions[code]; taken; _, taken = r.sessions[code] {
		code = r.generateCode()
	}

	s := NewGameSession(code, hostName, r.logger)
	if r.Configure != nil {
		r.Configure(s)
	}
	r.sessions[code] = s
	go s.Run()

	r.logger.WithFields(logrus.Fields{"game": code, "host": hostName}).Info("session created")
	return s, s.HostID
}

// Lookup retrieves a live session by code.
func (r *SessionRegistry) Lookup(code string) (*GameSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[code]
	return s, ok
}

// Expire removes a session from the registry and stops its loop.
// Called after GameEnd or on a terminal error.
func (r *SessionRegistry) Expire(code string) {
	r.mu.Lock()
	s, ok := r.sessions[code]
	delete(r.sessions, code)
	r.mu.Unlock()

	if ok {
		s.Close()
		r.logger.WithField("game", code).Info("session expired")
	}
}

// Count reports the number of live sessions.
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) generateCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[r.rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
