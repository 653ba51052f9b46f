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

// ListHandler handles GET /posts (optional ?course_id= filter) and
// POST /posts.
type ListHandler struct {
	Posts *store.Posts
}

func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		var courseID *int64
		if raw := r.URL.Query().Get("course_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				utils.Error(w, http.StatusBadRequest, "invalid course_id")
				return
			}
			courseID = &id
		}

		posts, err := h.Posts.List(r.Context(), courseID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, posts)

	case http.MethodPost:
		var req struct {
			Content  string `json:"content"`
			CourseID *int64 `json:"course_id"`
			PostType string `json:"post_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Content == "" {
			utils.Error(w, http.StatusBadRequest, "content is required")
			return
		}
		if req.PostType == "" {
			req.PostType = "seeking"
		}
		if req.PostType != "seeking" && req.PostType != "offering" {
			utils.Error(w, http.StatusBadRequest, "post_type must be seeking or offering")
			return
		}

		id, err := h.Posts.Create(r.Context(), identity.ID, req.CourseID, req.Content, req.PostType)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to create post")
			return
		}
		created, err := h.Posts.ByID(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusCreated, created)

	default:
		utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// DetailHandler handles PUT and DELETE /posts/{postID}; only the owner
// or an admin may modify a post.
type DetailHandler struct {
	Posts *store.Posts
}

func (h *DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
	case http.MethodPut:
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
			utils.Error(w, http.StatusBadRequest, "content is required")
			return
		}

		if err := h.Posts.Update(r.Context(), postID, identity.ID, req.Content, identity.IsAdmin); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Error(w, http.StatusForbidden, "you may only edit your own posts")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		updated, err := h.Posts.ByID(r.Context(), postID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := h.Posts.Delete(r.Context(), postID, identity.ID, identity.IsAdmin); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Error(w, http.StatusForbidden, "you may only delete your own posts")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"message": "post deleted"})

	default:
		utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// ReportHandler handles POST /posts/{postID}/report.
type ReportHandler struct {
	Posts *store.Posts
}

func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.Posts.Report(r.Context(), postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "post reported"})
}

// ReportedHandler handles GET /posts/reported, admins only.
type ReportedHandler struct {
	Posts *store.Posts
}

func (h *ReportedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Posts.Reported(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	type reportedPost struct {
		PostID  int64  `json:"post_id"`
		Content string `json:"content"`
		UserID  int64  `json:"user_id"`
		Author  string `json:"author"`
	}
	out := make([]reportedPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, reportedPost{PostID: p.ID, Content: p.Content, UserID: p.UserID, Author: p.Author})
	}
	utils.JSON(w, http.StatusOK, out)
}
