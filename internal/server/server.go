package server

import (
	"database/sql"
	"net/http"
	"strings"

	logger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	authn "studyhub/internal/auth"
	"studyhub/internal/chat"
	"studyhub/internal/config"
	"studyhub/internal/handlers"
	authhandlers "studyhub/internal/handlers/auth"
	"studyhub/internal/handlers/course"
	"studyhub/internal/handlers/group"
	"studyhub/internal/handlers/post"
	"studyhub/internal/middleware"
	"studyhub/internal/store"
)

type Server struct {
	cfg *config.Config

	users    *store.Users
	groups   *store.Groups
	messages *store.Messages
	courses  *store.Courses
	posts    *store.Posts

	auth *authn.Authenticator
	hub  *chat.Hub
}

func New(cfg *config.Config, db *sql.DB) *Server {
	users := store.NewUsers(db)
	return &Server{
		cfg:      cfg,
		users:    users,
		groups:   store.NewGroups(db),
		messages: store.NewMessages(db),
		courses:  store.NewCourses(db),
		posts:    store.NewPosts(db),
		auth:     authn.New(cfg.JWTSecret, cfg.JWTTTLHrs, users),
		hub:      chat.NewHub(),
	}
}

func handlerFunc(h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(logger.Logger("router", logrus.StandardLogger()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(s.cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/health", handlers.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handlerFunc(&authhandlers.RegisterHandler{Users: s.users, Auth: s.auth}))
		r.Post("/login", handlerFunc(&authhandlers.LoginHandler{Users: s.users, Auth: s.auth}))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.auth))
			profile := handlerFunc(&authhandlers.ProfileHandler{Users: s.users})
			r.Get("/profile", profile)
			r.Put("/profile", profile)
		})
	})

	r.Route("/courses", func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.auth))
		list := &course.ListHandler{Courses: s.courses}
		r.Get("/", handlerFunc(list))
		r.With(middleware.AdminOnly).Post("/", handlerFunc(list))
		r.Get("/mine", handlerFunc(&course.MineHandler{Courses: s.courses}))
		r.Post("/enrol", handlerFunc(&course.EnrollHandler{Courses: s.courses}))
		r.Delete("/enrol/{courseID}", handlerFunc(&course.UnenrollHandler{Courses: s.courses}))
	})

	r.Route("/groups", func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.auth))
		list := handlerFunc(&group.ListHandler{Groups: s.groups})
		r.Get("/", list)
		r.Post("/", list)
		r.Post("/join", handlerFunc(&group.JoinHandler{Groups: s.groups}))
		r.Get("/{groupID}", handlerFunc(&group.DetailHandler{Groups: s.groups}))
		r.Delete("/{groupID}/leave", handlerFunc(&group.LeaveHandler{Groups: s.groups}))
		r.Post("/{groupID}/invite", handlerFunc(&group.InviteHandler{Groups: s.groups}))
		r.Get("/{groupID}/messages", handlerFunc(&group.HistoryHandler{Groups: s.groups, Messages: s.messages}))
		r.Post("/{groupID}/messages", handlerFunc(&group.SendHandler{Groups: s.groups, Messages: s.messages, Hub: s.hub}))
	})

	r.Route("/posts", func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.auth))
		list := handlerFunc(&post.ListHandler{Posts: s.posts})
		r.Get("/", list)
		r.Post("/", list)
		r.With(middleware.AdminOnly).Get("/reported", handlerFunc(&post.ReportedHandler{Posts: s.posts}))
		detail := handlerFunc(&post.DetailHandler{Posts: s.posts})
		r.Put("/{postID}", detail)
		r.Delete("/{postID}", detail)
		r.Post("/{postID}/report", handlerFunc(&post.ReportHandler{Posts: s.posts}))
		comments := handlerFunc(&post.CommentListHandler{Posts: s.posts})
		r.Get("/{postID}/comments", comments)
		r.Post("/{postID}/comments", comments)
		commentDetail := handlerFunc(&post.CommentDetailHandler{Posts: s.posts})
		r.Put("/comments/{commentID}", commentDetail)
		r.Delete("/comments/{commentID}", commentDetail)
	})

	// websocket handshake authenticates via ?token= itself, so no
	// RequireAuth middleware here
	r.Get("/ws/chat/{groupID}", handlerFunc(chat.NewHandler(s.hub, s.auth, s.groups, s.messages)))

	return r
}

func (s *Server) Run() error {
	addr := ":" + s.cfg.Port
	logrus.WithField("addr", addr).Info("server listening")
	return http.ListenAndServe(addr, s.Router())
}
