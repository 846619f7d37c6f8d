package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tweetledger/internal/handler"
	"tweetledger/internal/httputil"
	"tweetledger/internal/metrics"
	authmw "tweetledger/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	TweetHandler   *handler.TweetHandler
	CommentHandler *handler.CommentHandler
	FollowHandler  *handler.FollowHandler
	ProfileHandler *handler.ProfileHandler
	MediaHandler   *handler.MediaHandler
	SchemaHandler  *handler.SchemaHandler
	JWTSecret      string
	IsOperator     func(account string) bool
	Logger         *zap.Logger
	Metrics        *metrics.Collector // optional
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(authmw.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
	})

	r.Get("/timeline", cfg.TweetHandler.Timeline)
	r.Get("/tweets/{id}", cfg.TweetHandler.GetByID)
	r.Get("/tweets/{id}/comments", cfg.CommentHandler.List)

	r.Get("/users/{account}/tweets", cfg.TweetHandler.UserTweets)
	r.Get("/users/{account}/likes", cfg.TweetHandler.GetLikes)
	r.Get("/users/{account}/followings", cfg.FollowHandler.GetFollowings)
	r.Get("/users/{account}/followers", cfg.FollowHandler.GetFollowers)
	r.Get("/users/{account}/icon", cfg.ProfileHandler.GetIcon)
	r.Get("/users/{account}/profile", cfg.ProfileHandler.GetProfile)

	// Protected routes - the caller is the principal in the token
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret, cfg.IsOperator))

		r.Post("/tweets", cfg.TweetHandler.Create)
		r.Post("/tweets/{id}/likes", cfg.TweetHandler.Like)
		r.Post("/tweets/{id}/comments", cfg.CommentHandler.Create)

		r.Post("/users/{account}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{account}/follow", cfg.FollowHandler.Unfollow)
		r.Get("/users/{account}/following-status", cfg.FollowHandler.Status)

		r.Put("/me/icon", cfg.ProfileHandler.ChangeIcon)
		r.Post("/me/icon/upload", cfg.ProfileHandler.UploadIcon)

		r.Post("/media/attachments/presign", cfg.MediaHandler.PresignAttachment)

		r.Get("/admin/schema", cfg.SchemaHandler.Status)
		r.Post("/admin/schema/{version}", cfg.SchemaHandler.Initialize)
	})

	return r
}
