package chat

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhub/internal/auth"
)

func testSession(userID int64) *Session {
	return &Session{
		identity: auth.Identity{ID: userID, Name: "u"},
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		log:      discardLogger(),
	}
}

func drain(t *testing.T, s *Session) []Event {
	t.Helper()
	var events []Event
	for {
		select {
		case payload := <-s.send:
			var ev Event
			require.NoError(t, json.Unmarshal(payload, &ev))
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestJoinRegistersSessionInOneRoom(t *testing.T) {
	h := NewHub()
	s := testSession(1)

	h.Join(7, s)

	assert.Equal(t, 1, h.roomSize(7))
	assert.Equal(t, 0, h.roomSize(8))
}

func TestBroadcastReachesEveryRoomMemberIncludingSender(t *testing.T) {
	h := NewHub()
	a, b := testSession(1), testSession(2)
	other := testSession(3)
	h.Join(7, a)
	h.Join(7, b)
	h.Join(9, other)

	h.Broadcast(7, Event{MessageID: 42, Content: "hello", Sender: "A", UserID: 1})

	for _, s := range []*Session{a, b} {
		events := drain(t, s)
		require.Len(t, events, 1)
		assert.Equal(t, int64(42), events[0].MessageID)
		assert.Equal(t, "hello", events[0].Content)
	}
	assert.Empty(t, drain(t, other), "sessions in other rooms must not receive the event")
}

func TestBroadcastToUnknownRoomIsNoop(t *testing.T) {
	h := NewHub()
	h.Broadcast(123, Event{Content: "nobody home"})
	assert.Equal(t, 0, h.roomSize(123))
}

func TestLeaveIsIdempotent(t *testing.T) {
	h := NewHub()
	a, b := testSession(1), testSession(2)
	h.Join(7, a)
	h.Join(7, b)

	h.Leave(7, a)
	h.Leave(7, a)                // second leave is a no-op
	h.Leave(7, testSession(99))  // never joined
	h.Leave(55, testSession(98)) // room never existed

	assert.Equal(t, 1, h.roomSize(7))

	h.Broadcast(7, Event{Content: "still here"})
	assert.Len(t, drain(t, b), 1)
	assert.Empty(t, drain(t, a))
}

func TestEmptyRoomIsRemoved(t *testing.T) {
	h := NewHub()
	s := testSession(1)
	h.Join(7, s)
	h.Leave(7, s)

	h.mu.Lock()
	_, ok := h.rooms[7]
	h.mu.Unlock()
	assert.False(t, ok, "last leave should remove the room")
}

func TestSlowConsumerIsDroppedNotBlocking(t *testing.T) {
	h := NewHub()
	slow := testSession(1)
	slow.send = make(chan []byte) // unbuffered and never read
	healthy := testSession(2)
	h.Join(7, slow)
	h.Join(7, healthy)

	h.Broadcast(7, Event{Content: "x"})

	assert.Equal(t, 1, h.roomSize(7))
	assert.Len(t, drain(t, healthy), 1)
	select {
	case <-slow.done:
	default:
		t.Fatal("stalled session should have been shut down")
	}
}

func TestConcurrentJoinLeaveBroadcast(t *testing.T) {
	h := NewHub()
	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			room := int64(n % 2)
			s := testSession(int64(n))
			for j := 0; j < 100; j++ {
				h.Join(room, s)
				h.Broadcast(room, Event{MessageID: int64(j), Content: "c"})
				flush(s)
				h.Leave(room, s)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, h.roomSize(0))
	assert.Equal(t, 0, h.roomSize(1))
}
