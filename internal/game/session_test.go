// internal/game/session_test.go
package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster records every event a session fires, so tests can
// assert on the outbound stream without a transport.
type mockBroadcaster struct {
	mu        sync.Mutex
	events    []GameEvent
	perPlayer map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{perPlayer: make(map[uuid.UUID][]GameEvent)}
}

func (m *mockBroadcaster) broadcast(ev GameEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockBroadcaster) sendToPlayer(playerID uuid.UUID, ev GameEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perPlayer[playerID] = append(m.perPlayer[playerID], ev)
}

func (m *mockBroadcaster) lastOfType(t GameEventType) (GameEvent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].Type == t {
			return m.events[i], true
		}
	}
	return GameEvent{}, false
}

func (m *mockBroadcaster) countOfType(t GameEventType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// newRunningSession builds a session with the mock wired in and its
// command loop running.
func newRunningSession(t *testing.T, hostName string) (*GameSession, *mockBroadcaster) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	s := NewGameSession("TEST01", hostName, logger)
	mock := newMockBroadcaster()
	s.BroadcastFn = mock.broadcast
	s.BroadcastToPlayerFn = mock.sendToPlayer
	go s.Run()
	t.Cleanup(s.Close)
	return s, mock
}

func TestJoinRules(t *testing.T) {
	s, _ := newRunningSession(t, "host")

	_, err := s.Join("host")
	ue, ok := AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, ErrDuplicateName, ue.Kind)

	for _, name := range []string{"b", "c", "d", "e"} {
		_, err := s.Join(name)
		require.NoError(t, err)
	}
	_, err = s.Join("f")
	ue, ok = AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, ErrGameFull, ue.Kind)
}

func TestStartRules(t *testing.T) {
	s, _ := newRunningSession(t, "host")

	err := s.Start(s.HostID)
	ue, ok := AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, ErrNotEnoughPlayers, ue.Kind)

	guestID, err := s.Join("guest")
	require.NoError(t, err)

	err = s.Start(guestID)
	ue, ok = AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, ErrNotHost, ue.Kind)

	require.NoError(t, s.Start(s.HostID))

	// No joining once the game is underway.
	_, err = s.Join("late")
	ue, ok = AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, ErrInvalidPhase, ue.Kind)

	// No double start.
	err = s.Start(s.HostID)
	ue, ok = AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, ErrInvalidPhase, ue.Kind)
}

func TestSelectOutsideSelectingPhase(t *testing.T) {
	s, _ := newRunningSession(t, "host")
	err := s.Select(s.HostID, uuid.New(), false, uuid.Nil)
	ue, ok := AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, ErrInvalidPhase, ue.Kind)
}

func TestNextRoundOutsideRoundEnd(t *testing.T) {
	s, _ := newRunningSession(t, "host")
	err := s.NextRound(s.HostID)
	ue, ok := AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, ErrRoundNotComplete, ue.Kind)
}

// handOf fetches the viewer's own hand from a personalized snapshot.
func handOf(t *testing.T, s *GameSession, playerID uuid.UUID) []uuid.UUID {
	t.Helper()
	snap, err := s.Snapshot(playerID)
	require.NoError(t, err)
	for _, pv := range snap.Players {
		if pv.PlayerID == playerID {
			ids := make([]uuid.UUID, len(pv.Hand))
			for i, c := range pv.Hand {
				ids[i] = c.ID
			}
			return ids
		}
	}
	t.Fatalf("player %s not in snapshot", playerID)
	return nil
}

func phaseOf(t *testing.T, s *GameSession) GamePhase {
	t.Helper()
	snap, err := s.Snapshot(uuid.Nil)
	require.NoError(t, err)
	return snap.Phase
}

// playOutRound has every player select their first card until the round
// completes.
func playOutRound(t *testing.T, s *GameSession, playerIDs []uuid.UUID, turns int) {
	t.Helper()
	for turn := 0; turn < turns; turn++ {
		for _, pid := range playerIDs {
			hand := handOf(t, s, pid)
			require.NotEmpty(t, hand)
			require.NoError(t, s.Select(pid, hand[0], false, uuid.Nil))
		}
	}
}

func TestFullGameTwoPlayers(t *testing.T) {
	s, mock := newRunningSession(t, "host")
	guestID, err := s.Join("guest")
	require.NoError(t, err)
	require.NoError(t, s.HandleConnect(s.HostID))
	require.NoError(t, s.HandleConnect(guestID))

	require.NoError(t, s.Start(s.HostID))
	assert.Equal(t, PhaseSelecting, phaseOf(t, s))

	players := []uuid.UUID{s.HostID, guestID}
	for round := 1; round <= 3; round++ {
		snap, err := s.Snapshot(uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, round, snap.Round)
		if round == 2 {
			assert.Equal(t, "right", snap.PassDirection)
		} else {
			assert.Equal(t, "left", snap.PassDirection)
		}

		playOutRound(t, s, players, HandSizes[2])
		assert.Equal(t, PhaseRoundEnd, phaseOf(t, s))

		// Hands are exhausted; everyone played one card per turn.
		snap, err = s.Snapshot(uuid.Nil)
		require.NoError(t, err)
		for _, pv := range snap.Players {
			assert.Equal(t, 0, pv.HandCount)
			assert.Len(t, pv.PlayedCards, HandSizes[2])
		}

		require.NoError(t, s.NextRound(s.HostID))
	}

	assert.Equal(t, PhaseGameEnd, phaseOf(t, s))
	assert.Equal(t, 3, mock.countOfType(EventRoundEnd))
	assert.Equal(t, 1, mock.countOfType(EventGameEnd), "pudding bonus is applied exactly once")

	ev, ok := mock.lastOfType(EventGameEnd)
	require.True(t, ok)
	payload, ok := ev.Data.(GameEndPayload)
	require.True(t, ok)
	require.Len(t, payload.Rankings, 2)
	assert.Equal(t, payload.Rankings[0].Name, payload.Winner)

	// Final score decomposes into round scores plus the pudding bonus.
	for _, entry := range payload.Rankings {
		sum := entry.RoundScores[0] + entry.RoundScores[1] + entry.RoundScores[2]
		assert.Equal(t, sum+payload.PuddingBonus[entry.PlayerID], entry.Score)
	}

	// The session is spent: nothing else may happen.
	err = s.NextRound(s.HostID)
	ue, uok := AsUserError(err)
	require.True(t, uok)
	assert.Equal(t, ErrRoundNotComplete, ue.Kind)
}

func TestTurnAdvancesOnBarrier(t *testing.T) {
	s, mock := newRunningSession(t, "host")
	guestID, err := s.Join("guest")
	require.NoError(t, err)
	require.NoError(t, s.HandleConnect(s.HostID))
	require.NoError(t, s.HandleConnect(guestID))
	require.NoError(t, s.Start(s.HostID))

	hostHand := handOf(t, s, s.HostID)
	require.NoError(t, s.Select(s.HostID, hostHand[0], false, uuid.Nil))

	// Barrier not crossed yet: still turn 1, nothing revealed.
	snap, err := s.Snapshot(uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Turn)
	assert.Equal(t, 0, mock.countOfType(EventCardsRevealed))

	guestHand := handOf(t, s, guestID)
	require.NoError(t, s.Select(guestID, guestHand[0], false, uuid.Nil))

	snap, err = s.Snapshot(uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Turn)
	assert.Equal(t, 1, mock.countOfType(EventCardsRevealed))
	for _, pv := range snap.Players {
		assert.Equal(t, HandSizes[2]-1, pv.HandCount, "hand sizes stay uniform")
	}
}

func TestDisconnectCompletesBarrier(t *testing.T) {
	s, mock := newRunningSession(t, "host")
	guestID, err := s.Join("guest")
	require.NoError(t, err)
	require.NoError(t, s.HandleConnect(s.HostID))
	require.NoError(t, s.HandleConnect(guestID))
	require.NoError(t, s.Start(s.HostID))

	hostHand := handOf(t, s, s.HostID)
	require.NoError(t, s.Select(s.HostID, hostHand[0], false, uuid.Nil))

	// The guest leaves without selecting; the turn commits with their
	// first card auto-played.
	s.HandleDisconnect(guestID)

	snap, err := s.Snapshot(uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Turn)
	assert.Equal(t, 1, mock.countOfType(EventCardsRevealed))
}

func TestSelectLastWriteWinsThroughSession(t *testing.T) {
	s, mock := newRunningSession(t, "host")
	guestID, err := s.Join("guest")
	require.NoError(t, err)
	require.NoError(t, s.HandleConnect(s.HostID))
	require.NoError(t, s.HandleConnect(guestID))
	require.NoError(t, s.Start(s.HostID))

	hostHand := handOf(t, s, s.HostID)
	require.NoError(t, s.Select(s.HostID, hostHand[0], false, uuid.Nil))
	require.NoError(t, s.Select(s.HostID, hostHand[1], false, uuid.Nil))

	guestHand := handOf(t, s, guestID)
	require.NoError(t, s.Select(guestID, guestHand[0], false, uuid.Nil))

	ev, ok := mock.lastOfType(EventCardsRevealed)
	require.True(t, ok)
	payload, ok := ev.Data.(RevealPayload)
	require.True(t, ok)
	require.Len(t, payload.Reveals, 2)
	assert.Equal(t, hostHand[1], payload.Reveals[0].CardsPlayed[0].ID)
}

func TestUnknownPlayerRejected(t *testing.T) {
	s, _ := newRunningSession(t, "host")
	guestID, err := s.Join("guest")
	require.NoError(t, err)
	require.NoError(t, s.HandleConnect(s.HostID))
	require.NoError(t, s.HandleConnect(guestID))
	require.NoError(t, s.Start(s.HostID))

	err = s.Select(uuid.New(), uuid.New(), false, uuid.Nil)
	ue, ok := AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, ErrUnknownPlayer, ue.Kind)
}
