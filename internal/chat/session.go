package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"studyhub/internal/auth"
)

const sendBufferSize = 256

// Session runs one live client connection from handshake to teardown.
// It owns exactly one authenticated identity and belongs to at most one
// room. Its lifecycle: the caller authorizes and joins it, readPump
// consumes inbound frames until the connection dies, and teardown always
// deregisters it before the socket is released.
type Session struct {
	conn     *websocket.Conn
	hub      *Hub
	messages MessageAppender
	identity auth.Identity
	groupID  int64

	send chan []byte
	done chan struct{}
	once sync.Once

	log *logrus.Entry
}

func newSession(conn *websocket.Conn, hub *Hub, messages MessageAppender, identity auth.Identity, groupID int64) *Session {
	return &Session{
		conn:     conn,
		hub:      hub,
		messages: messages,
		identity: identity,
		groupID:  groupID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		log: logrus.WithFields(logrus.Fields{
			"component": "chat.session",
			"group_id":  groupID,
			"user_id":   identity.ID,
		}),
	}
}

// run joins the room and pumps frames until the connection closes.
func (s *Session) run() {
	s.hub.Join(s.groupID, s)
	go s.writePump()
	s.readPump()
}

func (s *Session) readPump() {
	defer s.teardown()
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.log.WithError(err).Debug("dropping malformed frame")
			continue
		}
		if strings.TrimSpace(frame.Message) == "" {
			s.log.Debug("dropping frame with empty message")
			continue
		}

		msg, err := s.messages.Append(context.Background(), s.groupID, s.identity.ID, frame.Message)
		if err != nil {
			// no retry: the frame is dropped, the session stays open
			s.log.WithError(err).Warn("message not persisted, dropping")
			continue
		}

		s.hub.Broadcast(s.groupID, NewEvent(msg))
	}
}

func (s *Session) writePump() {
	defer s.conn.Close()
	for {
		select {
		case payload := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// teardown deregisters the session and releases the socket. Safe to
// reach from any state; leave is idempotent.
func (s *Session) teardown() {
	s.hub.Leave(s.groupID, s)
	s.shutdown()
}

func (s *Session) shutdown() {
	s.once.Do(func() { close(s.done) })
	if s.conn != nil {
		s.conn.Close()
	}
}
