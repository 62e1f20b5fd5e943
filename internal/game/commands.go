// internal/game/commands.go
//
// Commands are the only way into a session's state. Handlers build a
// command object, the session loop applies it, and the reply channel
// carries the synchronous result back. This keeps the engine free of
// any connection abstraction.
package game

import "github.com/google/uuid"

type sessionCommand interface {
	apply(s *GameSession)
}

type joinCmd struct {
	name     string
	playerID uuid.UUID
	reply    chan error
}

func (c *joinCmd) apply(s *GameSession) {
	id, err := s.applyJoin(c.name)
	c.playerID = id
	c.reply <- err
}

type startCmd struct {
	requesterID uuid.UUID
	reply       chan error
}

func (c *startCmd) apply(s *GameSession) {
	c.reply <- s.applyStart(c.requesterID)
}

type selectCmd struct {
	playerID      uuid.UUID
	cardID        uuid.UUID
	useChopsticks bool
	secondCardID  uuid.UUID
	reply         chan error
}

func (c *selectCmd) apply(s *GameSession) {
	c.reply <- s.applySelect(c.playerID, c.cardID, c.useChopsticks, c.secondCardID)
}

type nextRoundCmd struct {
	requesterID uuid.UUID
	reply       chan error
}

func (c *nextRoundCmd) apply(s *GameSession) {
	c.reply <- s.applyNextRound(c.requesterID)
}

type connectCmd struct {
	playerID  uuid.UUID
	connected bool
	reply     chan error
}

func (c *connectCmd) apply(s *GameSession) {
	c.reply <- s.applyConnect(c.playerID, c.connected)
}

type snapshotCmd struct {
	forPlayer uuid.UUID
	snapshot  Snapshot
	reply     chan error
}

func (c *snapshotCmd) apply(s *GameSession) {
	c.snapshot = s.snapshotFor(c.forPlayer)
	c.reply <- nil
}

type closeCmd struct {
	reply chan error
}

func (c *closeCmd) apply(s *GameSession) {
	s.stopped = true
	c.reply <- nil
}
