package group_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authn "studyhub/internal/auth"
	"studyhub/internal/chat"
	"studyhub/internal/handlers/group"
	"studyhub/internal/middleware"
	"studyhub/internal/models"
	"studyhub/internal/store"
)

type fakeGroups struct {
	groups  map[int64]models.Group
	members map[string]bool
}

func key(groupID, userID int64) string { return fmt.Sprintf("%d:%d", groupID, userID) }

func (f *fakeGroups) ByID(ctx context.Context, groupID int64) (models.Group, error) {
	g, ok := f.groups[groupID]
	if !ok {
		return models.Group{}, store.ErrNotFound
	}
	return g, nil
}

func (f *fakeGroups) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	return f.members[key(groupID, userID)], nil
}

type fakeMessages struct {
	mu     sync.Mutex
	nextID int64
	log    []models.Message
}

func (f *fakeMessages) Append(ctx context.Context, groupID, userID int64, content string) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := models.Message{
		ID:        f.nextID,
		GroupID:   groupID,
		UserID:    userID,
		Content:   content,
		Timestamp: time.Now(),
		Sender:    "alice",
	}
	f.log = append(f.log, m)
	return m, nil
}

func (f *fakeMessages) ListByGroup(ctx context.Context, groupID int64) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Message{}
	for _, m := range f.log {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []chat.Event
}

func (b *recordingBroadcaster) Broadcast(groupID int64, ev chat.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

type messagesFixture struct {
	router   chi.Router
	messages *fakeMessages
	hub      *recordingBroadcaster
}

// newMessagesFixture routes the message endpoints with user 1 as a
// member of group 7 and user 3 as an outsider.
func newMessagesFixture() *messagesFixture {
	groups := &fakeGroups{
		groups:  map[int64]models.Group{7: {ID: 7, Title: "algorithms"}},
		members: map[string]bool{key(7, 1): true},
	}
	messages := &fakeMessages{}
	hub := &recordingBroadcaster{}

	r := chi.NewRouter()
	r.Get("/groups/{groupID}/messages", (&group.HistoryHandler{Groups: groups, Messages: messages}).ServeHTTP)
	r.Post("/groups/{groupID}/messages", (&group.SendHandler{Groups: groups, Messages: messages, Hub: hub}).ServeHTTP)

	return &messagesFixture{router: r, messages: messages, hub: hub}
}

func (f *messagesFixture) do(t *testing.T, method, path string, body interface{}, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(middleware.WithIdentity(req.Context(), authn.Identity{ID: userID, Name: "alice"}))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHistoryUnknownGroup(t *testing.T) {
	f := newMessagesFixture()
	rec := f.do(t, "GET", "/groups/999/messages", nil, 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryNonMember(t *testing.T) {
	f := newMessagesFixture()
	rec := f.do(t, "GET", "/groups/7/messages", nil, 3)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHistoryReturnsOrderedMessages(t *testing.T) {
	f := newMessagesFixture()
	for _, content := range []string{"first", "second", "third"} {
		rec := f.do(t, "POST", "/groups/7/messages", map[string]string{"content": content}, 1)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, "GET", "/groups/7/messages", nil, 1)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []struct {
		MessageID int64  `json:"message_id"`
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
		Sender    string `json:"sender"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "first", out[0].Content)
	assert.Equal(t, "third", out[2].Content)
	assert.Less(t, out[0].MessageID, out[2].MessageID)
	assert.Equal(t, "alice", out[0].Sender)
}

func TestHistoryEmptyGroupIsEmptyArray(t *testing.T) {
	f := newMessagesFixture()
	rec := f.do(t, "GET", "/groups/7/messages", nil, 1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSendPersistsAndBroadcasts(t *testing.T) {
	f := newMessagesFixture()

	rec := f.do(t, "POST", "/groups/7/messages", map[string]string{"content": "hello"}, 1)
	require.Equal(t, http.StatusCreated, rec.Code)

	var ev chat.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, "hello", ev.Content)
	assert.Equal(t, int64(1), ev.UserID)
	assert.NotZero(t, ev.MessageID)

	require.Len(t, f.hub.events, 1)
	assert.Equal(t, ev, f.hub.events[0])
}

func TestConcurrentSendsAllPersistWithUniqueIDs(t *testing.T) {
	f := newMessagesFixture()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.do(t, "POST", "/groups/7/messages", map[string]string{"content": fmt.Sprintf("msg-%d", i)}, 1)
		}(i)
	}
	wg.Wait()

	rec := f.do(t, "GET", "/groups/7/messages", nil, 1)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []struct {
		MessageID int64  `json:"message_id"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, n)

	seen := map[int64]bool{}
	var prev time.Time
	for _, m := range out {
		assert.False(t, seen[m.MessageID], "duplicate message id %d", m.MessageID)
		seen[m.MessageID] = true
		ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
		require.NoError(t, err)
		assert.False(t, ts.Before(prev), "timestamps must be non-decreasing")
		prev = ts
	}
}

func TestSendRejectsEmptyContent(t *testing.T) {
	f := newMessagesFixture()

	rec := f.do(t, "POST", "/groups/7/messages", map[string]string{"content": "   "}, 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.hub.events)
	assert.Empty(t, f.messages.log)
}

func TestSendNonMember(t *testing.T) {
	f := newMessagesFixture()

	rec := f.do(t, "POST", "/groups/7/messages", map[string]string{"content": "hi"}, 3)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.messages.log)
}
