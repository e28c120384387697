package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	gws "github.com/gorilla/websocket"

	"github.com/dom/webdesk-core/internal/service"
	"github.com/dom/webdesk-core/internal/ws"
)

var upgrader = gws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub         *ws.Hub
	authService *service.AuthService
}

func NewWebSocketHandler(hub *ws.Hub, authService *service.AuthService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, authService: authService}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	username := strings.ToLower(r.URL.Query().Get("username"))
	token := r.URL.Query().Get("token")
	if username == "" || token == "" {
		http.Error(w, "username and token required", http.StatusUnauthorized)
		return
	}

	if _, err := h.authService.Authenticate(r.Context(), username, token, true); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, username)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
