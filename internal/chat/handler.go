package chat

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"studyhub/internal/auth"
	"studyhub/internal/models"
	"studyhub/internal/store"
	"studyhub/internal/utils"
)

// The chat core consumes capabilities, not concrete stores, so the
// fan-out machinery stays decoupled from MySQL.

type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (auth.Identity, error)
}

type MembershipOracle interface {
	ByID(ctx context.Context, groupID int64) (models.Group, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

type MessageAppender interface {
	Append(ctx context.Context, groupID, userID int64, content string) (models.Message, error)
}

// Handler is the connection upgrade endpoint: GET /ws/chat/{groupID}?token=...
// Authorization happens before the upgrade; a refused connection never
// touches a room.
type Handler struct {
	Hub      *Hub
	Auth     Authenticator
	Groups   MembershipOracle
	Messages MessageAppender

	upgrader websocket.Upgrader
	log      *logrus.Entry
}

func NewHandler(hub *Hub, a Authenticator, groups MembershipOracle, messages MessageAppender) *Handler {
	return &Handler{
		Hub:      hub,
		Auth:     a,
		Groups:   groups,
		Messages: messages,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logrus.WithField("component", "chat.handler"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	identity, err := h.Auth.Authenticate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}

	group, err := h.Groups.ByID(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "group not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	member, err := h.Groups.IsMember(r.Context(), group.ID, identity.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !member {
		utils.Error(w, http.StatusForbidden, "not a member of this group")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the handshake error
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	newSession(conn, h.Hub, h.Messages, identity, group.ID).run()
}
