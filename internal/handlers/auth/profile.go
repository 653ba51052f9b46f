package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"studyhub/internal/middleware"
	"studyhub/internal/store"
	"studyhub/internal/utils"
)

type ProfileHandler struct {
	Users UserStore
}

// ServeHTTP handles GET and PUT /auth/profile.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := h.Users.ByID(r.Context(), identity.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Error(w, http.StatusNotFound, "user not found")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, user)

	case http.MethodPut:
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			utils.Error(w, http.StatusBadRequest, "name is required")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			utils.Error(w, http.StatusBadRequest, "a valid email is required")
			return
		}

		if err := h.Users.Update(r.Context(), identity.ID, req.Name, req.Email); err != nil {
			utils.Error(w, http.StatusBadRequest, "failed to update user")
			return
		}

		user, err := h.Users.ByID(r.Context(), identity.ID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, user)

	default:
		utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
