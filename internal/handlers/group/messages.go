package group

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	authn "studyhub/internal/auth"
	"studyhub/internal/chat"
	"studyhub/internal/middleware"
	"studyhub/internal/models"
	"studyhub/internal/store"
	"studyhub/internal/utils"
)

// The message endpoints share the chat subsystem's data and enforce the
// same membership boundary the websocket handshake does.

type GroupStore interface {
	ByID(ctx context.Context, groupID int64) (models.Group, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

type MessageStore interface {
	Append(ctx context.Context, groupID, userID int64, content string) (models.Message, error)
	ListByGroup(ctx context.Context, groupID int64) ([]models.Message, error)
}

// Broadcaster lets HTTP-appended messages reach live sessions; satisfied
// by *chat.Hub.
type Broadcaster interface {
	Broadcast(groupID int64, ev chat.Event)
}

// historyEntry mirrors the history response shape, which omits user_id.
type historyEntry struct {
	MessageID int64  `json:"message_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
}

// HistoryHandler handles GET /groups/{groupID}/messages.
type HistoryHandler struct {
	Groups   GroupStore
	Messages MessageStore
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	groupID, _, ok := authorizeMember(w, r, h.Groups)
	if !ok {
		return
	}

	messages, err := h.Messages.ListByGroup(r.Context(), groupID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	out := make([]historyEntry, 0, len(messages))
	for _, m := range messages {
		out = append(out, historyEntry{
			MessageID: m.ID,
			Content:   m.Content,
			Timestamp: m.Timestamp.Format(time.RFC3339Nano),
			Sender:    m.Sender,
		})
	}
	utils.JSON(w, http.StatusOK, out)
}

// SendHandler handles POST /groups/{groupID}/messages with {"content"}.
// The created message is also broadcast to the live room, so HTTP
// senders and websocket senders feed the same fan-out.
type SendHandler struct {
	Groups   GroupStore
	Messages MessageStore
	Hub      Broadcaster
}

func (h *SendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	groupID, identity, ok := authorizeMember(w, r, h.Groups)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		utils.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	msg, err := h.Messages.Append(r.Context(), groupID, identity.ID, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "group not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	h.Hub.Broadcast(groupID, chat.NewEvent(msg))

	utils.JSON(w, http.StatusCreated, chat.NewEvent(msg))
}

// authorizeMember resolves the group and requires membership, writing
// the error response itself when the request may not proceed.
func authorizeMember(w http.ResponseWriter, r *http.Request, groups GroupStore) (int64, authn.Identity, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return 0, authn.Identity{}, false
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid group id")
		return 0, authn.Identity{}, false
	}

	if _, err := groups.ByID(r.Context(), groupID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "group not found")
			return 0, authn.Identity{}, false
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return 0, authn.Identity{}, false
	}

	member, err := groups.IsMember(r.Context(), groupID, identity.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return 0, authn.Identity{}, false
	}
	if !member {
		utils.Error(w, http.StatusForbidden, "you are not a member of this group")
		return 0, authn.Identity{}, false
	}

	return groupID, identity, true
}
