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

// ListHandler handles GET /groups (the caller's groups) and POST /groups
// (create a group, auto-joining the creator).
type ListHandler struct {
	Groups *store.Groups
}

func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		groups, err := h.Groups.ForUser(r.Context(), identity.ID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, groups)

	case http.MethodPost:
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Title == "" {
			utils.Error(w, http.StatusBadRequest, "title is required")
			return
		}

		id, err := h.Groups.Create(r.Context(), req.Title)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to create group")
			return
		}
		if err := h.Groups.Join(r.Context(), id, identity.ID); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to join created group")
			return
		}

		group, err := h.Groups.ByID(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusCreated, group)

	default:
		utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// DetailHandler handles GET /groups/{groupID}: the group plus its member
// list, members only.
type DetailHandler struct {
	Groups *store.Groups
}

func (h *DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	group, err := h.Groups.ByID(r.Context(), groupID)
	if err != nil {
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

	members, err := h.Groups.Members(r.Context(), groupID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"group":   group,
		"members": members,
	})
}
