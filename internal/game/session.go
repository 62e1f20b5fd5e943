// internal/game/session.go
package game

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sushigo/server/internal/models"
)

// GamePhase is the discrete lifecycle state of a session.
type GamePhase string

const (
	PhaseLobby     GamePhase = "lobby"
	PhaseDealing   GamePhase = "dealing"
	PhaseSelecting GamePhase = "selecting"
	PhaseRevealing GamePhase = "revealing"
	PhaseRoundEnd  GamePhase = "round_end"
	PhaseGameEnd   GamePhase = "game_end"
)

const (
	maxPlayers  = 5
	minPlayers  = 2
	totalRounds = 3
)

// OnGameEndFunc receives the final standings when a game completes.
// It is invoked synchronously from the session loop, so long work
// (archiving, registry expiry) belongs in a goroutine.
type OnGameEndFunc func(code string, players []*models.Player, rankings []RankingEntry)

// GameSession is the aggregate root for one game: it owns the players,
// the deck, the phase machine and the turn coordinator. All commands
// are drained one at a time by a single goroutine, so commands
// targeting the same session are serialized and the commit step is
// never observed half-done. Different sessions run fully in parallel.
type GameSession struct {
	Code   string
	HostID uuid.UUID

	players     []*models.Player
	deck        *Deck
	phase       GamePhase
	round       int
	turn        int
	passLeft    bool
	coordinator *TurnCoordinator

	commands    chan sessionCommand
	done        chan struct{}
	stopped     bool
	actionIndex int

	logger *logrus.Entry

	// BroadcastFn sends an event to every connected player. If nil, no
	// broadcast is done.
	BroadcastFn func(ev GameEvent)

	// BroadcastToPlayerFn sends an event to a single specific player.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)

	// OnGameEnd is invoked once when the session reaches GameEnd.
	OnGameEnd OnGameEndFunc

	// OnTerminate is invoked when the session dies on an integrity
	// violation, before the loop stops.
	OnTerminate func(code string, err error)

	// LogActionFn receives one record per processed command, for the
	// historian queue. Optional.
	LogActionFn func(code string, index int, actor uuid.UUID, actionType string, payload map[string]interface{})
}

// NewGameSession builds a session in the Lobby phase with the host
// already seated. The command loop is not running yet; the registry
// starts it after wiring callbacks.
func NewGameSession(code, hostName string, logger *logrus.Logger) *GameSession {
	if logger == nil {
		logger = logrus.New()
	}
	hostID, _ := uuid.NewRandom()
	s := &GameSession{
		Code:        code,
		HostID:      hostID,
		phase:       PhaseLobby,
		coordinator: newTurnCoordinator(),
		commands:    make(chan sessionCommand, 32),
		done:        make(chan struct{}),
		logger:      logger.WithField("game", code),
	}
	s.players = append(s.players, &models.Player{ID: hostID, Name: hostName})
	return s
}

// Run drains the command queue until the session is closed. It must be
// called exactly once, on its own goroutine.
func (s *GameSession) Run() {
	defer close(s.done)
	for !s.stopped {
		cmd := <-s.commands
		cmd.apply(s)
	}
}

// Close stops the command loop. A session can only be torn down
// between barrier commits, which holds by construction: the stop
// command waits its turn in the queue like any other.
func (s *GameSession) Close() {
	s.submit(&closeCmd{reply: make(chan error, 1)})
}

// submit enqueues a command unless the session is already closed.
func (s *GameSession) submit(cmd sessionCommand) error {
	select {
	case s.commands <- cmd:
		return nil
	case <-s.done:
		return newUserError(ErrGameOver, "game session is closed")
	}
}

// await collects a command's reply, bailing out if the loop dies first.
func (s *GameSession) await(reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return newUserError(ErrGameOver, "game session is closed")
	}
}

// Join adds a player in the Lobby phase and returns the new player ID.
func (s *GameSession) Join(name string) (uuid.UUID, error) {
	cmd := &joinCmd{name: name, reply: make(chan error, 1)}
	if err := s.submit(cmd); err != nil {
		return uuid.Nil, err
	}
	if err := s.await(cmd.reply); err != nil {
		return uuid.Nil, err
	}
	return cmd.playerID, nil
}

// Start begins round 1. Only the host may start, with 2-5 players.
func (s *GameSession) Start(requesterID uuid.UUID) error {
	cmd := &startCmd{requesterID: requesterID, reply: make(chan error, 1)}
	if err := s.submit(cmd); err != nil {
		return err
	}
	return s.await(cmd.reply)
}

// Select records a player's card choice for the current turn. It never
// blocks on other players; if it completes the barrier, the commit
// runs before the call returns.
func (s *GameSession) Select(playerID, cardID uuid.UUID, useChopsticks bool, secondCardID uuid.UUID) error {
	cmd := &selectCmd{
		playerID:      playerID,
		cardID:        cardID,
		useChopsticks: useChopsticks,
		secondCardID:  secondCardID,
		reply:         make(chan error, 1),
	}
	if err := s.submit(cmd); err != nil {
		return err
	}
	return s.await(cmd.reply)
}

// NextRound advances past a RoundEnd; after round 3 it performs the
// end-game scoring instead.
func (s *GameSession) NextRound(requesterID uuid.UUID) error {
	cmd := &nextRoundCmd{requesterID: requesterID, reply: make(chan error, 1)}
	if err := s.submit(cmd); err != nil {
		return err
	}
	return s.await(cmd.reply)
}

// HandleConnect marks a player connected and pushes fresh state to the
// whole table.
func (s *GameSession) HandleConnect(playerID uuid.UUID) error {
	cmd := &connectCmd{playerID: playerID, connected: true, reply: make(chan error, 1)}
	if err := s.submit(cmd); err != nil {
		return err
	}
	return s.await(cmd.reply)
}

// HandleDisconnect marks a player disconnected. The player is never
// removed mid-game; if the barrier no longer waits on anyone, the turn
// commits with the absentee auto-played.
func (s *GameSession) HandleDisconnect(playerID uuid.UUID) {
	cmd := &connectCmd{playerID: playerID, connected: false, reply: make(chan error, 1)}
	if err := s.submit(cmd); err != nil {
		return
	}
	s.await(cmd.reply)
}

// Snapshot returns the session state as seen by forPlayer: their own
// hand included, every other hand reduced to a count. Pass uuid.Nil
// for the public view.
func (s *GameSession) Snapshot(forPlayer uuid.UUID) (Snapshot, error) {
	cmd := &snapshotCmd{forPlayer: forPlayer, reply: make(chan error, 1)}
	if err := s.submit(cmd); err != nil {
		return Snapshot{}, err
	}
	if err := s.await(cmd.reply); err != nil {
		return Snapshot{}, err
	}
	return cmd.snapshot, nil
}

// --- loop-side logic; everything below runs on the session goroutine ---

func (s *GameSession) playerByID(id uuid.UUID) *models.Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *GameSession) applyJoin(name string) (uuid.UUID, error) {
	if s.phase != PhaseLobby {
		return uuid.Nil, newUserError(ErrInvalidPhase, "game has already started")
	}
	if len(s.players) >= maxPlayers {
		return uuid.Nil, newUserError(ErrGameFull, "game already has 5 players")
	}
	for _, p := range s.players {
		if p.Name == name {
			return uuid.Nil, newUserError(ErrDuplicateName, "name is already taken in this game")
		}
	}
	id, _ := uuid.NewRandom()
	s.players = append(s.players, &models.Player{ID: id, Name: name})
	s.logger.WithFields(logrus.Fields{"player": id, "name": name}).Info("player joined")
	s.logAction(id, "player_join", map[string]interface{}{"name": name})
	s.pushStateToAll()
	return id, nil
}

func (s *GameSession) applyStart(requesterID uuid.UUID) error {
	if requesterID != s.HostID {
		return newUserError(ErrNotHost, "only the host can start the game")
	}
	if s.phase != PhaseLobby {
		return newUserError(ErrInvalidPhase, "game has already started")
	}
	if len(s.players) < minPlayers {
		return newUserError(ErrNotEnoughPlayers, "need at least 2 players to start")
	}
	s.round = 1
	if err := s.startRound(); err != nil {
		return err
	}
	s.logger.WithField("players", len(s.players)).Info("game started")
	s.logAction(requesterID, "game_start", nil)
	s.fireEvent(GameEvent{Type: EventGameStarted})
	s.fireEvent(GameEvent{Type: EventNewRound, Data: RoundPayload{Round: s.round, PassDirection: s.passDirection()}})
	s.pushStateToAll()
	return nil
}

// startRound builds a fresh deck, deals, and enters Selecting. Round
// cards are never carried over: the previous round's deck remainder
// and played piles are simply dropped with the old deck.
func (s *GameSession) startRound() error {
	s.phase = PhaseDealing
	for _, p := range s.players {
		p.ResetForRound()
	}
	s.deck = NewDeck()
	hands, err := s.deck.Deal(len(s.players))
	if err != nil {
		return err
	}
	for i, p := range s.players {
		p.Hand = hands[i]
	}
	// Hands pass left on rounds 1 and 3, right on round 2.
	s.passLeft = s.round != 2
	s.turn = 1
	s.coordinator.Reset()
	s.phase = PhaseSelecting
	if err := s.checkIntegrity(); err != nil {
		s.fatal(err)
		return err
	}
	s.logger.WithFields(logrus.Fields{"round": s.round, "pass": s.passDirection()}).Info("round dealt")
	return nil
}

func (s *GameSession) applySelect(playerID, cardID uuid.UUID, useChopsticks bool, secondCardID uuid.UUID) error {
	if s.phase != PhaseSelecting {
		return newUserError(ErrInvalidPhase, "cards can only be selected during the selecting phase")
	}
	p := s.playerByID(playerID)
	if p == nil {
		return newUserError(ErrUnknownPlayer, "player is not part of this game")
	}
	if err := s.coordinator.Select(p, cardID, useChopsticks, secondCardID); err != nil {
		return err
	}
	s.logAction(playerID, "card_select", map[string]interface{}{
		"card_id":        cardID,
		"use_chopsticks": useChopsticks,
	})
	s.fireEvent(GameEvent{Type: EventPlayerReady, Data: PlayerEventPayload{PlayerID: playerID, Name: p.Name}})
	if s.coordinator.BarrierReady(s.players) {
		s.commitTurn()
	}
	return nil
}

// commitTurn crosses the barrier: all pending selections are applied
// as one indivisible step, the reveal is broadcast before anyone sees
// the rotated hands, and the phase moves on.
func (s *GameSession) commitTurn() {
	s.phase = PhaseRevealing
	reveals, roundDone, err := s.coordinator.Commit(s.players, s.passLeft)
	if err != nil {
		s.fatal(err)
		return
	}
	if err := s.checkIntegrity(); err != nil {
		s.fatal(err)
		return
	}
	s.fireEvent(GameEvent{Type: EventCardsRevealed, Data: RevealPayload{Turn: s.turn, Reveals: reveals}})
	s.logAction(uuid.Nil, "turn_commit", map[string]interface{}{"turn": s.turn})

	if roundDone {
		s.finishRound()
		return
	}
	s.turn++
	s.phase = PhaseSelecting
	s.pushStateToAll()
}

func (s *GameSession) finishRound() {
	s.phase = PhaseRoundEnd
	scores := ScoreRound(s.players)
	for _, p := range s.players {
		total := scores[p.ID].Total
		p.RoundScores[s.round-1] = total
		p.Score += total
	}
	s.logger.WithField("round", s.round).Info("round complete")
	s.logAction(uuid.Nil, "round_end", map[string]interface{}{"round": s.round})
	s.fireEvent(GameEvent{Type: EventRoundEnd, Data: RoundEndPayload{Round: s.round, Scores: scores}})
	s.pushStateToAll()
}

func (s *GameSession) applyNextRound(requesterID uuid.UUID) error {
	if requesterID != s.HostID {
		return newUserError(ErrNotHost, "only the host can advance rounds")
	}
	if s.phase != PhaseRoundEnd {
		return newUserError(ErrRoundNotComplete, "the current round is not finished")
	}
	if s.round >= totalRounds {
		s.endGame()
		return nil
	}
	s.round++
	if err := s.startRound(); err != nil {
		return err
	}
	s.logAction(requesterID, "next_round", map[string]interface{}{"round": s.round})
	s.fireEvent(GameEvent{Type: EventNewRound, Data: RoundPayload{Round: s.round, PassDirection: s.passDirection()}})
	s.pushStateToAll()
	return nil
}

// endGame applies the pudding bonus exactly once, publishes the final
// standings, and leaves the session in GameEnd for the registry to
// expire.
func (s *GameSession) endGame() {
	bonus := ScorePudding(s.players)
	for _, p := range s.players {
		p.Score += bonus[p.ID]
	}
	rankings := Rankings(s.players)
	s.phase = PhaseGameEnd

	payload := GameEndPayload{PuddingBonus: bonus, Rankings: rankings}
	if len(rankings) > 0 {
		payload.Winner = rankings[0].Name
	}
	s.logger.WithField("winner", payload.Winner).Info("game complete")
	s.logAction(uuid.Nil, "game_end", nil)
	s.fireEvent(GameEvent{Type: EventGameEnd, Data: payload})
	s.pushStateToAll()

	if s.OnGameEnd != nil {
		s.OnGameEnd(s.Code, s.players, rankings)
	}
}

func (s *GameSession) applyConnect(playerID uuid.UUID, connected bool) error {
	p := s.playerByID(playerID)
	if p == nil {
		return newUserError(ErrUnknownPlayer, "player is not part of this game")
	}
	p.Connected = connected
	if connected {
		s.logAction(playerID, "player_connect", nil)
		s.fireEvent(GameEvent{Type: EventPlayerConnected, Data: PlayerEventPayload{PlayerID: playerID, Name: p.Name}})
	} else {
		s.logAction(playerID, "player_disconnect", nil)
		s.fireEvent(GameEvent{Type: EventPlayerDisconnected, Data: PlayerEventPayload{PlayerID: playerID, Name: p.Name}})
	}
	s.pushStateToAll()

	// A departure can complete the barrier for everyone left.
	if !connected && s.phase == PhaseSelecting && s.coordinator.BarrierReady(s.players) {
		s.commitTurn()
	}
	return nil
}

// checkIntegrity asserts the card-count invariants that hold at every
// instant of a round: the round population sums to 108, card IDs are
// unique, and all hands are the same size.
func (s *GameSession) checkIntegrity() error {
	if s.deck == nil {
		return nil
	}
	total := s.deck.Remaining()
	seen := make(map[uuid.UUID]bool, DeckSize)
	for _, c := range s.deck.Cards {
		if seen[c.ID] {
			return newIntegrityError("duplicate card id %s in deck", c.ID)
		}
		seen[c.ID] = true
	}
	handSize := -1
	for _, p := range s.players {
		total += len(p.Hand) + len(p.PlayedCards)
		if handSize == -1 {
			handSize = len(p.Hand)
		} else if len(p.Hand) != handSize {
			return newIntegrityError("hand sizes diverged: %d vs %d", len(p.Hand), handSize)
		}
		for _, c := range p.Hand {
			if seen[c.ID] {
				return newIntegrityError("duplicate card id %s in hand of %s", c.ID, p.ID)
			}
			seen[c.ID] = true
		}
		for _, c := range p.PlayedCards {
			if seen[c.ID] {
				return newIntegrityError("duplicate card id %s in played area of %s", c.ID, p.ID)
			}
			seen[c.ID] = true
		}
	}
	if total != DeckSize {
		return newIntegrityError("round card population is %d, want %d", total, DeckSize)
	}
	return nil
}

// fatal terminates the session on an integrity violation. The
// condition is a core defect, never silently tolerated: the error is
// published, the registry is told, and the loop stops.
func (s *GameSession) fatal(err error) {
	s.logger.WithError(err).Error("session terminated on integrity violation")
	s.fireEvent(GameEvent{Type: EventError, Data: ErrorPayload{Kind: "integrity_error", Message: err.Error()}})
	if s.OnTerminate != nil {
		s.OnTerminate(s.Code, err)
	}
	s.stopped = true
}

func (s *GameSession) passDirection() string {
	if s.passLeft {
		return "left"
	}
	return "right"
}

func (s *GameSession) fireEvent(ev GameEvent) {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
	}
}

// pushStateToAll sends each connected player their personalized view.
func (s *GameSession) pushStateToAll() {
	if s.BroadcastToPlayerFn == nil {
		return
	}
	for _, p := range s.players {
		if p.Connected {
			s.BroadcastToPlayerFn(p.ID, GameEvent{Type: EventGameState, Data: s.snapshotFor(p.ID)})
		}
	}
}

func (s *GameSession) logAction(actor uuid.UUID, actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if s.LogActionFn == nil {
		return
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	s.LogActionFn(s.Code, s.actionIndex, actor, actionType, payload)
}
