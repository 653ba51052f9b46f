// Package chat is the real-time core: a per-group fan-out hub and the
// session state machine that runs one live websocket connection. The hub
// is the only shared mutable state; persistence goes through the
// collaborator interfaces in handler.go.
package chat

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub tracks which live sessions belong to which group room and
// broadcasts events to them. Rooms are created lazily on first join and
// removed when the last member leaves; an absent room costs nothing.
type Hub struct {
	mu    sync.Mutex
	rooms map[int64]map[*Session]struct{}
	log   *logrus.Entry
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int64]map[*Session]struct{}),
		log:   logrus.WithField("component", "chat.hub"),
	}
}

// Join registers s under groupID. A session is registered in at most one
// room; the session owns that invariant by joining exactly once.
func (h *Hub) Join(groupID int64, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[groupID]
	if !ok {
		room = make(map[*Session]struct{})
		h.rooms[groupID] = room
	}
	room[s] = struct{}{}
	h.log.WithFields(logrus.Fields{"group_id": groupID, "user_id": s.identity.ID}).Debug("session joined")
}

// Leave deregisters s. Idempotent: leaving twice, or leaving a session
// that never joined, is a no-op.
func (h *Hub) Leave(groupID int64, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[groupID]
	if !ok {
		return
	}
	if _, ok := room[s]; !ok {
		return
	}
	delete(room, s)
	if len(room) == 0 {
		delete(h.rooms, groupID)
	}
	h.log.WithFields(logrus.Fields{"group_id": groupID, "user_id": s.identity.ID}).Debug("session left")
}

// Broadcast delivers ev to every session currently in the room,
// including the sender. Delivery is independent per session: a slow
// consumer is dropped rather than blocking its siblings, and broadcasts
// to other rooms never contend.
func (h *Hub) Broadcast(groupID int64, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).Error("marshal broadcast event")
		return
	}

	h.mu.Lock()
	var stalled []*Session
	for s := range h.rooms[groupID] {
		select {
		case s.send <- payload:
		default:
			stalled = append(stalled, s)
		}
	}
	for _, s := range stalled {
		delete(h.rooms[groupID], s)
	}
	if room, ok := h.rooms[groupID]; ok && len(room) == 0 {
		delete(h.rooms, groupID)
	}
	h.mu.Unlock()

	for _, s := range stalled {
		h.log.WithFields(logrus.Fields{"group_id": groupID, "user_id": s.identity.ID}).
			Warn("send buffer full, dropping session")
		s.shutdown()
	}
}

// roomSize reports how many sessions are registered under groupID.
func (h *Hub) roomSize(groupID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[groupID])
}
