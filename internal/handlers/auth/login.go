package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	authn "studyhub/internal/auth"
	"studyhub/internal/store"
	"studyhub/internal/utils"
)

type LoginHandler struct {
	Users UserStore
	Auth  *authn.Authenticator
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP handles POST /auth/login.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.Users.ByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	hashed := store.HashPassword(req.Password)
	if subtle.ConstantTimeCompare([]byte(hashed), []byte(user.PasswordHash)) != 1 {
		utils.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.Auth.Issue(user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}
