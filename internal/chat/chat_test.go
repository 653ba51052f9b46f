package chat

// Shared fakes for the hub and handler tests. The chat core only sees
// the collaborator interfaces, so the fakes stand in for the MySQL
// stores without a database.

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"studyhub/internal/models"
	"studyhub/internal/store"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// flush discards anything queued on a session's outbound channel.
func flush(s *Session) {
	for {
		select {
		case <-s.send:
		default:
			return
		}
	}
}

type fakeUsers struct {
	users map[int64]models.User
}

func (f *fakeUsers) ByID(ctx context.Context, id int64) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

type fakeOracle struct {
	groups  map[int64]models.Group
	members map[string]bool
}

func memberKey(groupID, userID int64) string {
	return fmt.Sprintf("%d:%d", groupID, userID)
}

func (f *fakeOracle) ByID(ctx context.Context, groupID int64) (models.Group, error) {
	g, ok := f.groups[groupID]
	if !ok {
		return models.Group{}, store.ErrNotFound
	}
	return g, nil
}

func (f *fakeOracle) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return f.members[memberKey(groupID, userID)], nil
}

type fakeAppender struct {
	mu       sync.Mutex
	nextID   int64
	fail     bool
	attempts int
	senders  map[int64]string
	log      []models.Message
}

func (f *fakeAppender) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeAppender) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeAppender) Append(ctx context.Context, groupID, userID int64, content string) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.fail {
		return models.Message{}, fmt.Errorf("append: store unavailable")
	}
	f.nextID++
	m := models.Message{
		ID:        f.nextID,
		GroupID:   groupID,
		UserID:    userID,
		Content:   content,
		Timestamp: time.Now(),
		Sender:    f.senders[userID],
	}
	f.log = append(f.log, m)
	return m, nil
}
