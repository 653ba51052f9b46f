package course

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

// ListHandler handles GET /courses (catalog) and POST /courses (admin).
type ListHandler struct {
	Courses *store.Courses
}

func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		courses, err := h.Courses.All(r.Context())
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusOK, courses)

	case http.MethodPost:
		var req struct {
			Name string `json:"course_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			utils.Error(w, http.StatusBadRequest, "course_name is required")
			return
		}

		id, err := h.Courses.Create(r.Context(), req.Name)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to create course")
			return
		}
		course, err := h.Courses.ByID(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		utils.JSON(w, http.StatusCreated, course)

	default:
		utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// MineHandler handles GET /courses/mine: the caller's enrollments.
type MineHandler struct {
	Courses *store.Courses
}

func (h *MineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	courses, err := h.Courses.ForUser(r.Context(), identity.ID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	utils.JSON(w, http.StatusOK, courses)
}

// EnrollHandler handles POST /courses/enrol with {"course_id": n}.
type EnrollHandler struct {
	Courses *store.Courses
}

func (h *EnrollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		CourseID int64 `json:"course_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.Courses.ByID(r.Context(), req.CourseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "course not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := h.Courses.Enroll(r.Context(), identity.ID, req.CourseID); err != nil {
		utils.Error(w, http.StatusBadRequest, "already enrolled in this course")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "successfully enrolled"})
}

// UnenrollHandler handles DELETE /courses/enrol/{courseID}.
type UnenrollHandler struct {
	Courses *store.Courses
}

func (h *UnenrollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	courseID, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid course id")
		return
	}

	if err := h.Courses.Unenroll(r.Context(), identity.ID, courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusBadRequest, "not enrolled in this course")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "successfully unenrolled"})
}
