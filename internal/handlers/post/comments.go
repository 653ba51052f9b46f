package post

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

// CommentListHandler handles GET and POST /posts/{postID}/comments.
type CommentListHandler struct {
	Posts *store.Posts
}

func (h *CommentListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if _, err := h.Posts.ByID(r.Context(), postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	switch r.Method {
	case http.MethodGet:
		comments, err := h.Posts.Comments(r.Context(), postID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, comments)

	case http.MethodPost:
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
			utils.Error(w, http.StatusBadRequest, "content is required")
			return
		}

		id, err := h.Posts.CreateComment(r.Context(), postID, identity.ID, req.Content)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to create comment")
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]int64{"comment_id": id})

	default:
		utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// CommentDetailHandler handles PUT and DELETE /posts/comments/{commentID};
// only the author or an admin may modify a comment.
type CommentDetailHandler struct {
	Posts *store.Posts
}

func (h *CommentDetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
			utils.Error(w, http.StatusBadRequest, "content is required")
			return
		}

		if err := h.Posts.UpdateComment(r.Context(), commentID, identity.ID, req.Content, identity.IsAdmin); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Error(w, http.StatusForbidden, "you may only edit your own comments")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"message": "comment updated"})

	case http.MethodDelete:
		if err := h.Posts.DeleteComment(r.Context(), commentID, identity.ID, identity.IsAdmin); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Error(w, http.StatusForbidden, "you may only delete your own comments")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})

	default:
		utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
