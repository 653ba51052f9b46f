package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	authn "studyhub/internal/auth"
	"studyhub/internal/models"
	"studyhub/internal/store"
	"studyhub/internal/utils"
)

// UserStore is what the registration/login flow needs from persistence.
type UserStore interface {
	ByID(ctx context.Context, id int64) (models.User, error)
	ByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, name, email, password string, isAdmin bool) (int64, error)
	Update(ctx context.Context, id int64, name, email string) error
}

type RegisterHandler struct {
	Users UserStore
	Auth  *authn.Authenticator
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// ServeHTTP handles POST /auth/register.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateRegistration(req); msg != "" {
		utils.Error(w, http.StatusBadRequest, msg)
		return
	}

	if _, err := h.Users.ByEmail(r.Context(), req.Email); err == nil {
		utils.Error(w, http.StatusBadRequest, "user with this email already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	id, err := h.Users.Create(r.Context(), req.Name, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not create user")
		return
	}

	user, err := h.Users.ByID(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	token, err := h.Auth.Issue(user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func validateRegistration(req RegisterRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "a valid email is required"
	}
	if len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	return ""
}
