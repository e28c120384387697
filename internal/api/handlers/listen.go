package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dom/webdesk-core/internal/api/middleware"
	"github.com/dom/webdesk-core/internal/service"
)

type ListenHandler struct {
	listenService *service.ListenService
}

func NewListenHandler(listenService *service.ListenService) *ListenHandler {
	return &ListenHandler{listenService: listenService}
}

func (h *ListenHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	session, err := h.listenService.CreateSession(r.Context(), identity.Username)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *ListenHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.listenService.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *ListenHandler) Touch(w http.ResponseWriter, r *http.Request) {
	if err := h.listenService.TouchSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ListenHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	session, err := h.listenService.JoinSession(r.Context(), chi.URLParam(r, "id"), identity.Username)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *ListenHandler) Leave(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.listenService.LeaveSession(r.Context(), chi.URLParam(r, "id"), identity.Username); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

func (h *ListenHandler) Reaction(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.listenService.PostReaction(r.Context(), chi.URLParam(r, "id"), identity.Username, req.Emoji); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type SyncRequest struct {
	Track    string  `json:"track"`
	Position float64 `json:"position"`
}

func (h *ListenHandler) Sync(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.listenService.UpdateSync(r.Context(), chi.URLParam(r, "id"), identity.Username, req.Track, req.Position); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type SetDJRequest struct {
	DJ string `json:"dj"`
}

func (h *ListenHandler) SetDJ(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req SetDJRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.listenService.SetDJ(r.Context(), chi.URLParam(r, "id"), identity.Username, req.DJ); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ListenHandler) End(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.listenService.EndSession(r.Context(), chi.URLParam(r, "id"), identity.Username); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
