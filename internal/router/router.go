package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-community-api/internal/config"
	"go-community-api/internal/handler"
	"go-community-api/internal/middleware"
	"go-community-api/internal/model"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", authHandler.Register)
			auth.Post("/login", authHandler.Login)
			auth.Post("/refresh", authHandler.Refresh)
			auth.Post("/logout", authHandler.Logout)
			auth.With(authMiddleware.VerifyToken(false)).Get("/session", authHandler.Session)
		})

		api.Route("/users", func(users chi.Router) {
			users.With(authMiddleware.VerifyToken(true)).Get("/me", userHandler.Me)
			users.With(authMiddleware.VerifyToken(true), authMiddleware.RequireRoles(model.RoleAdmin)).Get("/", userHandler.List)
		})
	})

	return r
}
