package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gamearena/gamearena/handlers"
	"github.com/gamearena/gamearena/middleware"
)

// SetupRoutes mounts the full HTTP API. Write endpoints carry user identity
// in the request body, matching the mobile client; session-token endpoints
// (/api/auth/me, admin surface) sit behind Authenticate, and tournament
// detail uses optional auth so joined players see room credentials.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	tournamentHandler *handlers.TournamentHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(middleware.Authenticate(jwtSecret)).Get("/me", authHandler.Me)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.With(middleware.Maybe(jwtSecret)).Get("/{id}", tournamentHandler.Get)
			r.Post("/{id}/join", tournamentHandler.Join)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Maybe(jwtSecret))
				r.Post("/", tournamentHandler.Create)
				r.Put("/{id}", tournamentHandler.Update)
				r.Delete("/{id}", tournamentHandler.Delete)
			})
		})

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", userHandler.GetProfile)
			r.Get("/tournaments", userHandler.ListTournaments)
			r.Get("/transactions", userHandler.ListTransactions)
			r.Post("/deposit", userHandler.Deposit)
			r.Post("/withdraw", userHandler.Withdraw)
			r.Post("/avatar", userHandler.UploadAvatar)
		})

		r.Get("/leaderboard", leaderboardHandler.Get)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Maybe(jwtSecret))
			r.Get("/stats", adminHandler.Stats)
			r.Put("/tournaments/{id}/update-results", adminHandler.UpdateResults)
		})
	})

	router.Get("/ws/tournaments/{id}", webSocketHandler.ServeWs)
}
