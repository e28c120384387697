package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dom/webdesk-core/internal/api/handlers"
	"github.com/dom/webdesk-core/internal/api/middleware"
	"github.com/dom/webdesk-core/internal/service"
	"github.com/dom/webdesk-core/internal/ws"
)

func NewRouter(services *service.Services, hub *ws.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth)
	roomHandler := handlers.NewRoomHandler(services.Room)
	listenHandler := handlers.NewListenHandler(services.Listen)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Grace-tolerant: a just-rotated token still authenticates here.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth, true))
				r.Post("/refresh", authHandler.Refresh)
				r.Post("/logout", authHandler.Logout)
				r.Post("/logout-all", authHandler.LogoutAll)
				r.Get("/sessions", authHandler.Sessions)
			})

			// Password changes require a live token.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth, false))
				r.Post("/password", authHandler.ChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth, true))

			r.Route("/rooms", func(r chi.Router) {
				r.Post("/", roomHandler.Create)
				r.Get("/", roomHandler.List)
				r.Post("/{id}/join", roomHandler.Join)
				r.Post("/{id}/leave", roomHandler.Leave)
				r.Post("/{id}/heartbeat", roomHandler.Heartbeat)
			})

			r.Route("/listen", func(r chi.Router) {
				r.Post("/", listenHandler.Create)
				r.Get("/{id}", listenHandler.Get)
				r.Post("/{id}/touch", listenHandler.Touch)
				r.Post("/{id}/join", listenHandler.Join)
				r.Post("/{id}/leave", listenHandler.Leave)
				r.Post("/{id}/reaction", listenHandler.Reaction)
				r.Post("/{id}/sync", listenHandler.Sync)
				r.Post("/{id}/dj", listenHandler.SetDJ)
				r.Post("/{id}/end", listenHandler.End)
			})
		})
	})

	r.Get("/ws", wsHandler.Handle)

	return r
}
