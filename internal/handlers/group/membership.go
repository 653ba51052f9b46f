package group

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"studyhub/internal/middleware"
	"studyhub/internal/store"
	"studyhub/internal/utils"
)

// JoinHandler handles POST /groups/join with {"group_id": n}.
type JoinHandler struct {
	Groups *store.Groups
}

func (h *JoinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		GroupID int64 `json:"group_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.Groups.ByID(r.Context(), req.GroupID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "group not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	member, err := h.Groups.IsMember(r.Context(), req.GroupID, identity.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if member {
		utils.Error(w, http.StatusBadRequest, "already a member of this group")
		return
	}

	if err := h.Groups.Join(r.Context(), req.GroupID, identity.ID); err != nil {
		utils.Error(w, http.StatusBadRequest, "failed to join group")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "successfully joined group"})
}

// LeaveHandler handles DELETE /groups/{groupID}/leave.
type LeaveHandler struct {
	Groups *store.Groups
}

func (h *LeaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if _, err := h.Groups.ByID(r.Context(), groupID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "group not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := h.Groups.Leave(r.Context(), groupID, identity.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusBadRequest, "not a member of this group")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "successfully left group"})
}

// InviteHandler handles POST /groups/{groupID}/invite with {"email": ...}.
// Only existing members may invite.
type InviteHandler struct {
	Groups *store.Groups
}

func (h *InviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		utils.Error(w, http.StatusBadRequest, "email address is required")
		return
	}

	if _, err := h.Groups.ByID(r.Context(), groupID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "group not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	member, err := h.Groups.IsMember(r.Context(), groupID, identity.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if !member {
		utils.Error(w, http.StatusForbidden, "you are not a member of this group")
		return
	}

	userID, err := h.Groups.InviteByEmail(r.Context(), groupID, req.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.Error(w, http.StatusBadRequest, "user with this email not found")
	case errors.Is(err, store.ErrAlreadyMember):
		utils.Error(w, http.StatusBadRequest, "user is already a member of this group")
	case err != nil:
		utils.Error(w, http.StatusInternalServerError, "failed to add user to group")
	default:
		utils.JSON(w, http.StatusOK, map[string]interface{}{"user_id": userID})
	}
}
