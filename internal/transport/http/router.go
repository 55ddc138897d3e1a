package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"openlab/internal/handler"
	"openlab/internal/httputil"
	authmw "openlab/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	FollowHandler   *handler.FollowHandler
	ProjectHandler  *handler.ProjectHandler
	CommentHandler  *handler.CommentHandler
	GroupHandler    *handler.GroupHandler
	RankingHandler  *handler.RankingHandler
	ActivityHandler *handler.ActivityHandler
	FeedHandler     *handler.FeedHandler
	MediaHandler    *handler.MediaHandler
	JWTSecret       string
	AllowedOrigin   string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	optionalAuth := authmw.OptionalAuthMiddleware(cfg.JWTSecret)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Public reads with optional authentication. A valid token enriches
	// responses with viewer-specific fields; anonymous access still works.
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)

		r.Route("/users", func(r chi.Router) {
			r.Get("/search", cfg.UserHandler.Search)
			r.Get("/{userID}", cfg.UserHandler.GetProfile)
			r.Get("/{userID}/followers", cfg.FollowHandler.GetFollowers)
			r.Get("/{userID}/following", cfg.FollowHandler.GetFollowing)
			r.Get("/{userID}/projects", cfg.ProjectHandler.ListByAuthor)
			r.Get("/{userID}/activity", cfg.ActivityHandler.Recent)
		})

		r.Get("/projects", cfg.ProjectHandler.List)
		r.Get("/projects/{projectID}", cfg.ProjectHandler.GetByID)
		r.Get("/projects/{projectID}/comments", cfg.CommentHandler.ListByProject)

		r.Get("/groups", cfg.GroupHandler.List)
		r.Get("/groups/{groupID}", cfg.GroupHandler.GetByID)
		r.Get("/groups/{groupID}/discussions", cfg.GroupHandler.ListDiscussions)
		r.Get("/groups/{groupID}/discussions/{discussionID}/comments", cfg.GroupHandler.ListDiscussionComments)

		r.Get("/ranking", cfg.RankingHandler.Leaderboard)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Put("/me/profile", cfg.UserHandler.UpdateProfile)
		r.Get("/me/saved", cfg.ProjectHandler.ListSaved)
		r.Post("/me/avatar", cfg.MediaHandler.UploadAvatar)
		r.Post("/me/header", cfg.MediaHandler.UploadHeader)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Follow/unfollow actions
		r.Post("/users/{userID}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{userID}/follow", cfg.FollowHandler.Unfollow)

		// Feed endpoint
		r.Get("/feed", cfg.FeedHandler.GetFeed)

		// Project mutations and engagement
		r.Post("/projects", cfg.ProjectHandler.Create)
		r.Put("/projects/{projectID}", cfg.ProjectHandler.Update)
		r.Delete("/projects/{projectID}", cfg.ProjectHandler.Delete)
		r.Post("/projects/{projectID}/like", cfg.ProjectHandler.Like)
		r.Delete("/projects/{projectID}/like", cfg.ProjectHandler.Unlike)
		r.Post("/projects/{projectID}/save", cfg.ProjectHandler.Save)
		r.Delete("/projects/{projectID}/save", cfg.ProjectHandler.Unsave)
		r.Post("/projects/{projectID}/comments", cfg.CommentHandler.Create)

		// Group membership, projects and discussions
		r.Post("/groups", cfg.GroupHandler.Create)
		r.Post("/groups/{groupID}/join", cfg.GroupHandler.Join)
		r.Post("/groups/{groupID}/leave", cfg.GroupHandler.Leave)
		r.Post("/groups/{groupID}/projects", cfg.GroupHandler.AssociateProject)
		r.Delete("/groups/{groupID}/projects/{projectID}", cfg.GroupHandler.RemoveProject)
		r.Post("/groups/{groupID}/discussions", cfg.GroupHandler.CreateDiscussion)
		r.Post("/groups/{groupID}/discussions/{discussionID}/comments", cfg.GroupHandler.CreateDiscussionComment)
	})

	return r
}
